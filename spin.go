/*
 * spin.go, part of gonstate.
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

//RDCData holds the residual dipolar couplings measured for one spin,
//keyed by alignment ID, in Hz. A spin without RDC data simply carries a
//nil *RDCData, so the assembler can branch on the field instead of probing
//for attribute presence.
type RDCData struct {
	Val map[string]float64
	Err map[string]float64
}

//PCSData holds the pseudo-contact shifts measured for one spin, keyed by
//alignment ID, in ppm.
type PCSData struct {
	Val map[string]float64
	Err map[string]float64
}

//Spin is one observed nucleus. It is created by the external
//sequence/structure loaders and read, never written, by the assembler.
//The only fields this package writes are the back-calculated caches,
//which the evaluator overwrites after each committed optimization.
type Spin struct {
	//Identity.
	Molecule string
	ResNum   int
	ResName  string
	Name     string

	//Select marks the spin as participating in the optimization.
	Select bool

	//Measured data. Either or both may be nil.
	RDC *RDCData
	PCS *PCSData

	//Pos holds one cartesian position (len 3, meters) per ensemble state.
	//A single-element slice means the position is shared by every state.
	Pos [][]float64

	//BondVect holds the heteronucleus-proton bond vector per ensemble
	//state. As with Pos, a single-element slice is shared by all states.
	//A nil slice means no structural vector could be resolved.
	BondVect [][]float64

	//Isotope types of the heteronucleus and its attached proton, e.g.
	//"15N" and "1H", and the bond length in meters.
	HeteronucType string
	ProtonType    string
	R             float64

	//Back-calculated observables, keyed by alignment ID. RDCBC is in Hz,
	//PCSBC in ppm. Transient: rewritten by every committed evaluation.
	RDCBC map[string]float64
	PCSBC map[string]float64
}

//Copy returns a deep copy of the spin, including the measured data but
//not the transient back-calculated caches.
func (S *Spin) Copy() *Spin {
	if S == nil {
		panic(PanicMsg("nstate: attempted to copy a nil spin"))
	}
	n := new(Spin)
	*n = *S
	n.RDCBC = nil
	n.PCSBC = nil
	if S.RDC != nil {
		n.RDC = &RDCData{Val: copyFloatMap(S.RDC.Val), Err: copyFloatMap(S.RDC.Err)}
	}
	if S.PCS != nil {
		n.PCS = &PCSData{Val: copyFloatMap(S.PCS.Val), Err: copyFloatMap(S.PCS.Err)}
	}
	n.Pos = copyVectors(S.Pos)
	n.BondVect = copyVectors(S.BondVect)
	return n
}

func copyFloatMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	n := make(map[string]float64, len(m))
	for k, v := range m {
		n[k] = v
	}
	return n
}

func copyVectors(v [][]float64) [][]float64 {
	if v == nil {
		return nil
	}
	n := make([][]float64, len(v))
	for i, x := range v {
		n[i] = append([]float64{}, x...)
	}
	return n
}

//statePos returns the position of the spin for ensemble state c,
//resolving the shared single-position case.
func (S *Spin) statePos(c int) []float64 {
	if len(S.Pos) == 1 {
		return S.Pos[0]
	}
	return S.Pos[c]
}

//stateVect is the bond-vector analogue of statePos.
func (S *Spin) stateVect(c int) []float64 {
	if len(S.BondVect) == 1 {
		return S.BondVect[0]
	}
	return S.BondVect[c]
}
