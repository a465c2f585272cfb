/*
 * scaling.go, part of gonstate.
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

import "gonum.org/v1/gonum/mat"

//probScaleFactor rescales the probability parameters, whose natural range
//of 0-1 sits far from the roughly 1e-3 magnitude of the tensor
//components. Without it the step-size heuristics of most minimizers
//condition badly across the two blocks.
const probScaleFactor = 100.0

//ScalingMatrix builds the diagonal matrix S that maps scaled parameters
//back to raw ones: x = S * x_scaled, x_scaled = S^-1 * x. With scaling
//disabled it returns the identity. Probability diagonal entries get
//probScaleFactor; tensor components and Euler angles stay at 1.0. Every
//entry is positive, so the matrix is always invertible elementwise. A
//model without parameters (fixed populations against tensor data alone)
//has nothing to scale and returns a nil matrix.
func ScalingMatrix(st *State, dataTypes []DataType, scaling bool) (*mat.DiagDense, error) {
	n, err := ParamNum(st, dataTypes)
	if err != nil {
		return nil, errDecorate(err, "ScalingMatrix")
	}
	if n == 0 {
		return nil, nil
	}
	d := make([]float64, n)
	for i := range d {
		d[i] = 1.0
	}
	if scaling {
		off := tensorParamNum(st, dataTypes)
		for i := 0; i < probParamNum(st); i++ {
			d[off+i] = probScaleFactor
		}
	}
	return mat.NewDiagDense(n, d), nil
}

//scaleVector returns S^-1 * x, the optimizer-space representation of x.
func scaleVector(s *mat.DiagDense, x []float64) []float64 {
	ret := make([]float64, len(x))
	for i := range x {
		ret[i] = x[i] / s.At(i, i)
	}
	return ret
}

//unscaleVector returns S * x, mapping an optimizer-space vector back to
//raw parameters.
func unscaleVector(s *mat.DiagDense, x []float64) []float64 {
	ret := make([]float64, len(x))
	for i := range x {
		ret[i] = x[i] * s.At(i, i)
	}
	return ret
}
