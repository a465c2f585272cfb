/*
 * constraints.go, part of gonstate.
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

//LinearConstraints builds the linear inequality system A.x >= b keeping
//the state populations on the probability simplex. In the notation of a
//3-state model with free probabilities p0 and p1 (and unit scaling):
//
//	| 1  0 |             |  0 |
//	|-1  0 |   | p0 |    | -1 |
//	| 0  1 | . |    | >= |  0 |
//	| 0 -1 |   | p1 |    | -1 |
//	|-1 -1 |             | -1 |
//	| 1  1 |             |  0 |
//
//The first two row pairs bound each free probability to [0, 1]; the last
//two rows bound the dependent probability pN-1 = 1 - sum(pc) to the same
//interval. Tensor and Euler angle parameters contribute columns of
//zeroes. Because the optimizer works in scaled space, the bounds are
//expressed in scaled units: upper-bound b entries and the complement-row
//coefficients pick up the diagonal scaling factors. A model without
//population parameters has no constraints and returns nil matrices.
func LinearConstraints(st *State, dataTypes []DataType, scale *mat.DiagDense) (*mat.Dense, []float64, error) {
	total, err := ParamNum(st, dataTypes)
	if err != nil {
		return nil, nil, errDecorate(err, "LinearConstraints")
	}
	nprob := probParamNum(st)
	if nprob == 0 {
		return nil, nil, nil
	}
	off := tensorParamNum(st, dataTypes)

	var rows [][]float64
	var b []float64
	for i := 0; i < nprob; i++ {
		//0 <= pc.
		row := make([]float64, total)
		row[off+i] = 1.0
		rows = append(rows, row)
		b = append(b, 0.0)
		//pc <= 1.
		row = make([]float64, total)
		row[off+i] = -1.0
		rows = append(rows, row)
		b = append(b, -1.0/scale.At(off+i, off+i))
	}
	//0 <= pN-1, via -sum(pc) >= -1.
	row := make([]float64, total)
	for i := 0; i < nprob; i++ {
		row[off+i] = -scale.At(off+i, off+i)
	}
	rows = append(rows, row)
	b = append(b, -1.0)
	//pN-1 <= 1, via sum(pc) >= 0.
	row = make([]float64, total)
	for i := 0; i < nprob; i++ {
		row[off+i] = scale.At(off+i, off+i)
	}
	rows = append(rows, row)
	b = append(b, 0.0)

	flat := make([]float64, 0, len(rows)*total)
	for _, r := range rows {
		flat = append(flat, r...)
	}
	return mat.NewDense(len(rows), total, flat), b, nil
}

//constraintsSatisfied reports whether A.x >= b holds for x.
func constraintsSatisfied(A *mat.Dense, b []float64, x []float64) bool {
	if A == nil {
		return true
	}
	rows, cols := A.Dims()
	if cols != len(x) || rows != len(b) {
		panic(ErrParamVectorLength)
	}
	for j := 0; j < rows; j++ {
		dot := 0.0
		for i := 0; i < cols; i++ {
			dot += A.At(j, i) * x[i]
		}
		if dot < b[j] {
			return false
		}
	}
	return true
}

//constraintPenalty returns the squared magnitude of every constraint
//violation of x. Gradient-based minimizers that cannot handle linear
//constraints directly minimize chi-squared plus a large multiple of this
//exterior penalty.
func constraintPenalty(A *mat.Dense, b []float64, x []float64) float64 {
	if A == nil {
		return 0
	}
	rows, cols := A.Dims()
	pen := 0.0
	for j := 0; j < rows; j++ {
		dot := 0.0
		for i := 0; i < cols; i++ {
			dot += A.At(j, i) * x[i]
		}
		if dot < b[j] {
			v := b[j] - dot
			pen += v * v
		}
	}
	return pen
}
