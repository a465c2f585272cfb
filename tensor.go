/*
 * tensor.go, part of gonstate.
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
	"sort"

	"gonum.org/v1/gonum/mat"
)

//AlignTensor is one alignment tensor: a symmetric, traceless 3x3 matrix
//described by its 5 independent components. Azz is never stored, it is
//always derived as -Axx-Ayy, which keeps the traceless invariant exact.
//The parameter-vector codec mutates the components in place on every
//disassembly, so a tensor belongs to exactly one optimization run at a
//time.
type AlignTensor struct {
	Name   string
	Domain string
	//Red marks the tensor as the reduced (moving-domain) member of a
	//full/reduced pair in the 2-domain model.
	Red bool

	Axx, Ayy, Axy, Axz, Ayz float64

	//Per-component errors. HasErr false means no errors were loaded and
	//the tensor chi-squared degenerates to a sum of squared errors.
	HasErr                                      bool
	AxxErr, AyyErr, AxyErr, AxzErr, AyzErr float64

	//Monte Carlo simulation replicas of the 5 components, one inner
	//slice per component, indexed by replica.
	Sim [5][]float64
}

//Azz returns the derived zz component.
func (T *AlignTensor) Azz() float64 {
	return -T.Axx - T.Ayy
}

//A5 returns the 5 independent components in the fixed package order
//Axx, Ayy, Axy, Axz, Ayz.
func (T *AlignTensor) A5() []float64 {
	return []float64{T.Axx, T.Ayy, T.Axy, T.Axz, T.Ayz}
}

//SetA5 sets the 5 independent components from a slice in the fixed
//package order. Panics if the slice does not have 5 elements.
func (T *AlignTensor) SetA5(v []float64) {
	if len(v) != 5 {
		panic(ErrParamVectorLength)
	}
	T.Axx, T.Ayy, T.Axy, T.Axz, T.Ayz = v[0], v[1], v[2], v[3], v[4]
}

//A5Sim returns the components of Monte Carlo replica i.
func (T *AlignTensor) A5Sim(i int) []float64 {
	return []float64{T.Sim[0][i], T.Sim[1][i], T.Sim[2][i], T.Sim[3][i], T.Sim[4][i]}
}

//SetA5Sim sets the components of Monte Carlo replica i.
func (T *AlignTensor) SetA5Sim(i int, v []float64) {
	if len(v) != 5 {
		panic(ErrParamVectorLength)
	}
	for k := 0; k < 5; k++ {
		T.Sim[k][i] = v[k]
	}
}

//SimInit allocates n Monte Carlo replicas per component, each starting
//from the live component value.
func (T *AlignTensor) SimInit(n int) {
	live := T.A5()
	for k := 0; k < 5; k++ {
		T.Sim[k] = make([]float64, n)
		for i := range T.Sim[k] {
			T.Sim[k][i] = live[k]
		}
	}
}

//Err5 returns the component errors in package order, or five 1.0 entries
//when no errors were loaded, which turns the chi-squared of this tensor
//into an unweighted sum of squared errors.
func (T *AlignTensor) Err5() []float64 {
	if !T.HasErr {
		return []float64{1.0, 1.0, 1.0, 1.0, 1.0}
	}
	return []float64{T.AxxErr, T.AyyErr, T.AxyErr, T.AxzErr, T.AyzErr}
}

//Matrix expands the 5 components into the full symmetric 3x3 tensor.
func (T *AlignTensor) Matrix() *mat.SymDense {
	return mat.NewSymDense(3, []float64{
		T.Axx, T.Axy, T.Axz,
		T.Axy, T.Ayy, T.Ayz,
		T.Axz, T.Ayz, T.Azz(),
	})
}

//Eigenvalues returns the three eigenvalues of the tensor ordered by
//increasing absolute value, so the last entry is the zz eigenvalue of the
//principal axis system convention used for anisotropy and rhombicity.
func (T *AlignTensor) Eigenvalues() ([3]float64, error) {
	var eig mat.EigenSym
	if ok := eig.Factorize(T.Matrix(), false); !ok {
		return [3]float64{}, Errorf(ErrNaN, "Eigenvalues: eigendecomposition of tensor %q failed", T.Name)
	}
	vals := eig.Values(nil)
	sort.Slice(vals, func(i, j int) bool { return math.Abs(vals[i]) < math.Abs(vals[j]) })
	return [3]float64{vals[0], vals[1], vals[2]}, nil
}

//Anisotropy returns Da and the rhombicity R for the tensor, given the
//dipolar constant dj (Hz) of the bond type whose couplings the tensor
//aligns. With eigenvalues ordered |Axx| <= |Ayy| <= |Azz|:
//
//	Da = dj * Azz / 2
//	R  = (2/3) * (Axx - Ayy) / Azz
//
//A degenerate tensor (Azz == 0) returns Da = 0 and R = 0; the Q-factor
//code clamps the resulting normalization rather than skipping the
//alignment.
func (T *AlignTensor) Anisotropy(dj float64) (da, r float64, err error) {
	vals, err := T.Eigenvalues()
	if err != nil {
		return 0, 0, errDecorate(err, "Anisotropy")
	}
	if vals[2] == 0 {
		return 0, 0, nil
	}
	da = dj * vals[2] / 2.0
	r = 2.0 / 3.0 * (vals[0] - vals[1]) / vals[2]
	return da, r, nil
}

//Copy returns a deep copy of the tensor, replicas included.
func (T *AlignTensor) Copy() *AlignTensor {
	n := new(AlignTensor)
	*n = *T
	for k := 0; k < 5; k++ {
		if T.Sim[k] != nil {
			n.Sim[k] = append([]float64{}, T.Sim[k]...)
		}
	}
	return n
}
