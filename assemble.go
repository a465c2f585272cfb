/*
 * assemble.go, part of gonstate.
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
	"log/slog"
)

//The data assembler turns the per-spin containers into the fixed-shape
//dense arrays the target function iterates over. Missing entries are
//masked, never dropped: every included spin occupies the same row index
//in the RDC and PCS sets, so heterogeneous data coverage cannot
//desynchronize the arrays.

//RDCSet is the assembled residual dipolar coupling data.
type RDCSet struct {
	AlignIDs []string

	//Val and Err are indexed [alignment][spin], in Hz.
	Val  [][]float64
	Err  [][]float64
	Mask [][]bool

	//Vect is indexed [spin][state], each entry a unit bond vector of
	//len 3. VectOK marks spins whose bond vectors could be resolved.
	Vect   [][][]float64
	VectOK []bool

	//Const holds the per-spin dipolar constant, in Hz.
	Const []float64

	//SpinIdx maps a row back to the index in State.Spins.
	SpinIdx []int
}

//PCSSet is the assembled pseudo-contact shift data. Values are converted
//from ppm to dimensionless units on assembly.
type PCSSet struct {
	AlignIDs []string

	Val  [][]float64 //[alignment][spin], dimensionless
	Err  [][]float64
	Mask [][]bool

	//Vect is indexed [spin][state]: the unit vector from the
	//paramagnetic centre to the state's atomic position.
	Vect [][][]float64

	//Const is indexed [alignment][spin][state]: the distance- and
	//field-dependent PCS constant.
	Const [][][]float64

	SpinIdx []int
}

//TensorSet is the assembled full/reduced tensor pairs of the 2-domain
//reduction model. Pair k couples Full[k] with the 5 components starting
//at Red[5k].
type TensorSet struct {
	//Full holds the 5-component representation of each full tensor.
	Full [][]float64
	//FullInRefFrame marks the full tensors defined in the reference
	//domain frame.
	FullInRefFrame []bool

	//Red and RedErr are the reduced tensor components and their errors,
	//flattened 5 per pair.
	Red    []float64
	RedErr []float64

	//RedNames holds the names of the reduced tensors, for committing
	//back-calculated values.
	RedNames []string
}

//assembleSpins returns the indices of the selected spins that carry RDC
//or PCS data. The union is deliberate: a spin with only PCS data still
//gets a fully masked RDC row (and vice versa) so both sets share one row
//numbering.
func assembleSpins(st *State) []int {
	var idx []int
	for i, s := range st.Spins {
		if !s.Select {
			continue
		}
		if s.RDC == nil && s.PCS == nil {
			continue
		}
		idx = append(idx, i)
	}
	return idx
}

//AssembleRDC gathers the RDC values, errors, bond vectors and dipolar
//constants for the selected spins. A spin with RDC data but no resolvable
//bond vector is warned about and masked out rather than dropped. A
//zero-valued RDC error is rejected: chi-squared weighting divides by it.
func AssembleRDC(st *State, lg *slog.Logger) (*RDCSet, error) {
	if lg == nil {
		lg = slog.Default()
	}
	if st.Model == nil {
		return nil, Errorf(ErrNoModel, "AssembleRDC: no model set up")
	}
	n := st.Model.N
	aligns := st.AlignTensors()
	set := &RDCSet{SpinIdx: assembleSpins(st)}
	for _, t := range aligns {
		set.AlignIDs = append(set.AlignIDs, t.Name)
	}
	nspin := len(set.SpinIdx)
	set.Val = zeroGrid(len(aligns), nspin)
	set.Err = zeroGrid(len(aligns), nspin)
	set.Mask = falseGrid(len(aligns), nspin)
	set.Vect = make([][][]float64, nspin)
	set.VectOK = make([]bool, nspin)
	set.Const = make([]float64, nspin)

	for row, si := range set.SpinIdx {
		spin := st.Spins[si]
		if spin.RDC == nil {
			continue //fully masked row, kept for index alignment with the PCS set
		}
		//The bond vectors.
		if len(spin.BondVect) == 0 {
			lg.Warn("spin has RDC data but no bond vector, excluding it from the RDC target",
				"molecule", spin.Molecule, "residue", spin.ResNum, "spin", spin.Name)
			continue
		}
		if len(spin.BondVect) != 1 && len(spin.BondVect) != n {
			return nil, Errorf(ErrPosMismatch, "AssembleRDC: spin %s:%d %s has %d bond vectors for %d states",
				spin.Molecule, spin.ResNum, spin.Name, len(spin.BondVect), n)
		}
		vects := make([][]float64, n)
		for c := 0; c < n; c++ {
			u := make([]float64, 3)
			if unitVector(u, spin.stateVect(c)) == 0 {
				return nil, Errorf(ErrPosMismatch, "AssembleRDC: zero-length bond vector on spin %s:%d %s",
					spin.Molecule, spin.ResNum, spin.Name)
			}
			vects[c] = u
		}
		set.Vect[row] = vects
		set.VectOK[row] = true
		//The dipolar constant.
		gI, err := GyromagneticRatio(spin.HeteronucType)
		if err != nil {
			return nil, errDecorate(err, "AssembleRDC")
		}
		gS, err := GyromagneticRatio(spin.ProtonType)
		if err != nil {
			return nil, errDecorate(err, "AssembleRDC")
		}
		r := spin.R
		if r == 0 {
			r = NHBondLength
		}
		set.Const[row] = DipolarConstant(gI, gS, r)
		//The values and errors per alignment.
		for ai, id := range set.AlignIDs {
			val, ok := spin.RDC.Val[id]
			if !ok {
				continue
			}
			e := spin.RDC.Err[id]
			if e == 0 {
				return nil, Errorf(ErrZeroError, "AssembleRDC: RDC of spin %s:%d %s, alignment %q has an error of zero",
					spin.Molecule, spin.ResNum, spin.Name, id)
			}
			set.Val[ai][row] = val
			set.Err[ai][row] = e
			set.Mask[ai][row] = true
		}
	}
	return set, nil
}

//AssemblePCS gathers the PCS values, errors, paramagnetic-centre vectors
//and PCS constants for the selected spins. The paramagnetic centre and
//the per-alignment temperatures and frequencies must already be set;
//their absence is a configuration error raised before any optimization.
func AssemblePCS(st *State, lg *slog.Logger) (*PCSSet, error) {
	if lg == nil {
		lg = slog.Default()
	}
	if st.Model == nil {
		return nil, Errorf(ErrNoModel, "AssemblePCS: no model set up")
	}
	if len(st.ParamagCentre) != 3 {
		return nil, Errorf(ErrNoParamagCentre, "AssemblePCS: the paramagnetic centre must be set before PCS optimization")
	}
	n := st.Model.N
	aligns := st.AlignTensors()
	set := &PCSSet{SpinIdx: assembleSpins(st)}
	for _, t := range aligns {
		set.AlignIDs = append(set.AlignIDs, t.Name)
		if _, ok := st.Temperature[t.Name]; !ok {
			return nil, Errorf(ErrNoTemperature, "AssemblePCS: no temperature set for alignment %q", t.Name)
		}
		if _, ok := st.Frequency[t.Name]; !ok {
			return nil, Errorf(ErrNoFrequency, "AssemblePCS: no spectrometer frequency set for alignment %q", t.Name)
		}
	}
	nspin := len(set.SpinIdx)
	set.Val = zeroGrid(len(aligns), nspin)
	set.Err = zeroGrid(len(aligns), nspin)
	set.Mask = falseGrid(len(aligns), nspin)
	set.Vect = make([][][]float64, nspin)
	set.Const = make([][][]float64, len(aligns))
	for ai := range set.Const {
		set.Const[ai] = zeroGrid(nspin, n)
	}

	for row, si := range set.SpinIdx {
		spin := st.Spins[si]
		if spin.PCS == nil {
			continue
		}
		if len(spin.Pos) == 0 {
			lg.Warn("spin has PCS data but no position, excluding it from the PCS target",
				"molecule", spin.Molecule, "residue", spin.ResNum, "spin", spin.Name)
			continue
		}
		if len(spin.Pos) != 1 && len(spin.Pos) != n {
			return nil, Errorf(ErrPosMismatch, "AssemblePCS: spin %s:%d %s has %d positions for %d states",
				spin.Molecule, spin.ResNum, spin.Name, len(spin.Pos), n)
		}
		//Per-state unit vectors and distances from the paramagnetic
		//centre.
		vects := make([][]float64, n)
		dists := make([]float64, n)
		for c := 0; c < n; c++ {
			pos := spin.statePos(c)
			if len(pos) != 3 {
				panic(ErrNotLength3)
			}
			d := []float64{pos[0] - st.ParamagCentre[0], pos[1] - st.ParamagCentre[1], pos[2] - st.ParamagCentre[2]}
			u := make([]float64, 3)
			r := unitVector(u, d)
			if r == 0 {
				return nil, Errorf(ErrPosMismatch, "AssemblePCS: spin %s:%d %s sits exactly on the paramagnetic centre",
					spin.Molecule, spin.ResNum, spin.Name)
			}
			vects[c] = u
			dists[c] = r
		}
		set.Vect[row] = vects
		//The PCS constants, per alignment and state.
		for ai, id := range set.AlignIDs {
			b0 := FieldStrength(st.Frequency[id])
			for c := 0; c < n; c++ {
				set.Const[ai][row][c] = PCSConstant(st.Temperature[id], b0, dists[c])
			}
		}
		//The values and errors, converted from ppm.
		for ai, id := range set.AlignIDs {
			val, ok := spin.PCS.Val[id]
			if !ok {
				continue
			}
			e := spin.PCS.Err[id]
			if e == 0 {
				return nil, Errorf(ErrZeroError, "AssemblePCS: PCS of spin %s:%d %s, alignment %q has an error of zero",
					spin.Molecule, spin.ResNum, spin.Name, id)
			}
			set.Val[ai][row] = val * 1e-6
			set.Err[ai][row] = e * 1e-6
			set.Mask[ai][row] = true
		}
	}
	return set, nil
}

//AssembleTensors packs the full and reduced tensor pairs of the 2-domain
//reduction model. The k-th full tensor is paired with the k-th reduced
//tensor in loading order; a count mismatch is a data error. Reduced
//tensors without errors get errors of 1.0, which turns their chi-squared
//contribution into a plain sum of squared errors.
func AssembleTensors(st *State) (*TensorSet, error) {
	if st.Model == nil {
		return nil, Errorf(ErrNoModel, "AssembleTensors: no model set up")
	}
	if st.Model.Kind == Model2Domain && st.Model.RefDomain == "" {
		return nil, Errorf(ErrNoRefDomain, "AssembleTensors: the reference domain has not been set")
	}
	set := new(TensorSet)
	var nfull, nred int
	for _, t := range st.Tensors {
		if t.Red {
			set.Red = append(set.Red, t.A5()...)
			set.RedErr = append(set.RedErr, t.Err5()...)
			set.RedNames = append(set.RedNames, t.Name)
			nred++
			continue
		}
		set.Full = append(set.Full, t.A5())
		set.FullInRefFrame = append(set.FullInRefFrame, t.Domain == st.Model.RefDomain)
		nfull++
	}
	if nfull != nred {
		return nil, Errorf(ErrNoTensor, "AssembleTensors: %d full tensors cannot be paired with %d reduced tensors", nfull, nred)
	}
	if nfull == 0 {
		return nil, Errorf(ErrNoData, "AssembleTensors: no tensor pairs loaded")
	}
	return set, nil
}

func zeroGrid(r, c int) [][]float64 {
	g := make([][]float64, r)
	for i := range g {
		g[i] = make([]float64, c)
	}
	return g
}

func falseGrid(r, c int) [][]bool {
	g := make([][]bool, r)
	for i := range g {
		g[i] = make([]bool, c)
	}
	return g
}
