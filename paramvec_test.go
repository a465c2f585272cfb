/*
 * paramvec_test.go, part of gonstate.
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

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

//The vector layout contract: tensor components first (only when RDC or
//PCS data drives the fit), then the free probabilities, then the Euler
//angles of the 2-domain model.
func TestParamVectorLayout(Te *testing.T) {
	a5 := []float64{2e-4, -1e-4, 5e-5, 1e-5, -3e-5}
	st := rdcState(Te, 3, []float64{0.5, 0.5}, a5)
	types := st.DataTypes()

	n, err := ParamNum(st, types)
	require.NoError(Te, err)
	require.Equal(Te, 6, n)

	v, err := AssembleParamVector(st, types, NoSim)
	require.NoError(Te, err)
	require.Len(Te, v, 6)
	require.Equal(Te, a5, v[:5])
	require.InDelta(Te, 0.5, v[5], 1e-15)
}

//With tensor data alone the alignment tensors are the data, not
//parameters: the vector holds only probabilities and angles.
func TestParamVectorTensorOnly(Te *testing.T) {
	st := new(State)
	st.Tensors = []*AlignTensor{
		{Name: "full", Domain: "N", Axx: 0.5, Ayy: -0.2},
		{Name: "red", Domain: "C", Red: true},
	}
	require.NoError(Te, SetupModel(st, Model2Domain, 2, "N"))
	require.NoError(Te, st.Model.SetDefaults())
	types := []DataType{DataTensor}

	n, err := ParamNum(st, types)
	require.NoError(Te, err)
	require.Equal(Te, 7, n) //p0 plus two sets of three angles

	v, err := AssembleParamVector(st, types, NoSim)
	require.NoError(Te, err)
	require.InDelta(Te, 0.5, v[0], 1e-15)
	require.InDelta(Te, st.Model.Alpha[0], v[1], 1e-15)
	require.InDelta(Te, st.Model.Gamma[1], v[6], 1e-15)
}

//Unset parameters are NaN in the model arrays and must reach the
//optimizer as 0.0. The coercion makes assemble-then-disassemble
//deliberately non-identical for unset values.
func TestAssembleCoercesNaN(Te *testing.T) {
	st := rdcState(Te, 2, []float64{0.3, 0.7}, []float64{2e-4, -1e-4, 5e-5, 1e-5, -3e-5})
	st.Model.Probs[0] = math.NaN()
	v, err := AssembleParamVector(st, st.DataTypes(), NoSim)
	require.NoError(Te, err)
	for i, x := range v {
		require.False(Te, math.IsNaN(x), "entry %d is NaN", i)
	}
	require.Equal(Te, 0.0, v[5])
}

//The dependent probability is always recomputed as the complement, never
//read back from storage.
func TestDisassembleComplement(Te *testing.T) {
	st := rdcState(Te, 2, []float64{0.3, 0.7}, []float64{2e-4, -1e-4, 5e-5, 1e-5, -3e-5})
	types := st.DataTypes()
	st.Model.Probs[1] = 0.123 //stale value that must be overwritten

	a5 := []float64{1e-4, 2e-4, 3e-4, 4e-4, 5e-4}
	v := append(append([]float64{}, a5...), 0.25)
	require.NoError(Te, DisassembleParamVector(st, v, types, NoSim))
	require.InDelta(Te, 0.25, st.Model.Probs[0], 1e-15)
	require.InDelta(Te, 0.75, st.Model.Probs[1], 1e-15)
	require.Equal(Te, a5, st.Tensors[0].A5())
}

func TestParamVectorRoundTrip(Te *testing.T) {
	st := new(State)
	st.Tensors = []*AlignTensor{
		{Name: "full", Domain: "N", Axx: 0.3, Ayy: 0.1, Axy: -0.2},
		{Name: "red", Domain: "C", Red: true},
	}
	require.NoError(Te, SetupModel(st, Model2Domain, 2, "N"))
	require.NoError(Te, st.Model.SetDefaults())
	types := []DataType{DataTensor}

	v1, err := AssembleParamVector(st, types, NoSim)
	require.NoError(Te, err)
	require.NoError(Te, DisassembleParamVector(st, v1, types, NoSim))
	v2, err := AssembleParamVector(st, types, NoSim)
	require.NoError(Te, err)
	require.Equal(Te, v1, v2)
}

func TestParamVectorNoModel(Te *testing.T) {
	st := new(State)
	_, err := AssembleParamVector(st, []DataType{DataRDC}, NoSim)
	require.ErrorIs(Te, err, ErrNoModel)
	err = DisassembleParamVector(st, []float64{0.5}, []DataType{DataRDC}, NoSim)
	require.ErrorIs(Te, err, ErrNoModel)
	_, err = ParamNum(st, nil)
	require.ErrorIs(Te, err, ErrNoModel)
}

//A vector of the wrong length means the caller broke the layout contract.
func TestDisassembleLengthPanics(Te *testing.T) {
	st := rdcState(Te, 2, []float64{0.3, 0.7}, []float64{2e-4, -1e-4, 5e-5, 1e-5, -3e-5})
	require.PanicsWithError(Te, string(ErrParamVectorLength), func() {
		DisassembleParamVector(st, []float64{1, 2, 3}, st.DataTypes(), NoSim)
	})
}

//Replica-indexed assembly and disassembly touch only that replica's
//slots.
func TestParamVectorReplicas(Te *testing.T) {
	st := rdcState(Te, 2, []float64{0.3, 0.7}, []float64{2e-4, -1e-4, 5e-5, 1e-5, -3e-5})
	types := st.DataTypes()
	require.NoError(Te, SetupSim(st, 3))

	v, err := AssembleParamVector(st, types, 1)
	require.NoError(Te, err)
	require.InDelta(Te, 0.3, v[5], 1e-15) //replicas start from the live values

	v[5] = 0.6
	require.NoError(Te, DisassembleParamVector(st, v, types, 1))
	require.InDelta(Te, 0.6, st.Model.ProbsSim[1][0], 1e-15)
	require.InDelta(Te, 0.4, st.Model.ProbsSim[1][1], 1e-15)
	//the live parameters and the other replicas stay put
	require.InDelta(Te, 0.3, st.Model.Probs[0], 1e-15)
	require.InDelta(Te, 0.3, st.Model.ProbsSim[0][0], 1e-15)
}
