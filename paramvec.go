/*
 * paramvec.go, part of gonstate.
 *
 * Copyright 2024 The gonstate developers
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package nstate

import "math"

//The parameter vector layout is a strict contract between this codec, the
//scaling matrix, the constraint builder and the target function:
//
//	[5 tensor components per alignment tensor, when RDC or PCS data
//	 drives the fit][probabilities of states 0..N-2][alpha, beta, gamma
//	 per state, 2-domain model only]
//
//All four walk this layout with the same three helpers below; nothing
//else may hardcode offsets.

//NoSim is the simIndex value selecting the live parameters instead of a
//Monte Carlo replica.
const NoSim = -1

//tensorParamNum returns the number of leading tensor parameters.
func tensorParamNum(st *State, dataTypes []DataType) int {
	if !hasData(dataTypes, DataRDC) && !hasData(dataTypes, DataPCS) {
		return 0
	}
	return 5 * len(st.AlignTensors())
}

//probParamNum returns the number of free probability parameters.
func probParamNum(st *State) int {
	if st.Model.Kind == ModelFixed {
		return 0
	}
	return st.Model.N - 1
}

//ParamNum returns the total number of model parameters for the given data
//types.
func ParamNum(st *State, dataTypes []DataType) (int, error) {
	if st.Model == nil {
		return 0, Errorf(ErrNoModel, "ParamNum: no N-state model has been selected")
	}
	n := tensorParamNum(st, dataTypes) + probParamNum(st)
	if st.Model.Kind == Model2Domain {
		n += 3 * st.Model.N
	}
	return n, nil
}

//AssembleParamVector walks the model parameters in layout order and
//returns them as a flat vector. With simIndex >= 0 the Monte Carlo
//replica values are read instead of the live ones. Unset (NaN) entries
//are coerced to 0.0: the optimizer must never see a non-numeric
//sentinel. This coercion is deliberate and documented, not a repair of
//bad data.
func AssembleParamVector(st *State, dataTypes []DataType, simIndex int) ([]float64, error) {
	if st.Model == nil {
		return nil, Errorf(ErrNoModel, "AssembleParamVector: no N-state model has been selected")
	}
	m := st.Model
	var vector []float64
	if tensorParamNum(st, dataTypes) > 0 {
		for _, t := range st.AlignTensors() {
			if simIndex >= 0 {
				vector = append(vector, t.A5Sim(simIndex)...)
			} else {
				vector = append(vector, t.A5()...)
			}
		}
	}
	probs, alpha, beta, gamma := m.paramArrays(simIndex)
	if m.Kind != ModelFixed {
		vector = append(vector, probs[:m.N-1]...)
	}
	if m.Kind == Model2Domain {
		for c := 0; c < m.N; c++ {
			vector = append(vector, alpha[c], beta[c], gamma[c])
		}
	}
	for i, v := range vector {
		if math.IsNaN(v) {
			vector[i] = 0.0
		}
	}
	return vector, nil
}

//DisassembleParamVector is the strict inverse walk: it writes the tensor
//components back into the alignment tensor containers, the free
//probabilities into the model, and recomputes the last probability as
//1 minus the sum of the others. The complement is recomputed on every
//call; the stored value of the last probability is never trusted. For
//the 2-domain model the per-state Euler angles follow.
func DisassembleParamVector(st *State, vector []float64, dataTypes []DataType, simIndex int) error {
	if st.Model == nil {
		return Errorf(ErrNoModel, "DisassembleParamVector: no N-state model has been selected")
	}
	n, err := ParamNum(st, dataTypes)
	if err != nil {
		return errDecorate(err, "DisassembleParamVector")
	}
	if len(vector) != n {
		panic(ErrParamVectorLength)
	}
	m := st.Model
	i := 0
	if tensorParamNum(st, dataTypes) > 0 {
		for _, t := range st.AlignTensors() {
			if simIndex >= 0 {
				t.SetA5Sim(simIndex, vector[i:i+5])
			} else {
				t.SetA5(vector[i : i+5])
			}
			i += 5
		}
	}
	probs, alpha, beta, gamma := m.paramArrays(simIndex)
	if m.Kind != ModelFixed {
		sum := 0.0
		for c := 0; c < m.N-1; c++ {
			probs[c] = vector[i]
			sum += vector[i]
			i++
		}
		probs[m.N-1] = 1.0 - sum
	}
	if m.Kind == Model2Domain {
		for c := 0; c < m.N; c++ {
			alpha[c] = vector[i]
			beta[c] = vector[i+1]
			gamma[c] = vector[i+2]
			i += 3
		}
	}
	return nil
}

//paramArrays resolves the live or replica-indexed parameter arrays.
func (M *Model) paramArrays(simIndex int) (probs, alpha, beta, gamma []float64) {
	if simIndex >= 0 {
		return M.ProbsSim[simIndex], simSlice(M.AlphaSim, simIndex), simSlice(M.BetaSim, simIndex), simSlice(M.GammaSim, simIndex)
	}
	return M.Probs, M.Alpha, M.Beta, M.Gamma
}

func simSlice(s [][]float64, i int) []float64 {
	if s == nil {
		return nil
	}
	return s[i]
}
