/*
 * constraints_test.go, part of gonstate.
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
	"testing"

	"github.com/stretchr/testify/require"
)

//threeStateVector builds a raw parameter vector for the 3-state RDC
//state: 5 tensor components followed by the two free probabilities.
func threeStateVector(p0, p1 float64) []float64 {
	return []float64{2e-4, -1e-4, 5e-5, 1e-5, -3e-5, p0, p1}
}

func TestLinearConstraintsSimplex(Te *testing.T) {
	st := rdcState(Te, 2, []float64{0.3, 0.3, 0.4}, []float64{2e-4, -1e-4, 5e-5, 1e-5, -3e-5})
	types := st.DataTypes()
	s, err := ScalingMatrix(st, types, false) //identity, so raw vectors can be tested directly
	require.NoError(Te, err)
	A, b, err := LinearConstraints(st, types, s)
	require.NoError(Te, err)

	rows, cols := A.Dims()
	require.Equal(Te, 6, rows) //two per free probability plus two for the complement
	require.Equal(Te, 7, cols)
	require.Len(Te, b, 6)

	//free probabilities of 0.3 and 0.3 leave p2 = 0.4: feasible
	require.True(Te, constraintsSatisfied(A, b, threeStateVector(0.3, 0.3)))
	//0.6 and 0.6 drive p2 to -0.2: infeasible
	require.False(Te, constraintsSatisfied(A, b, threeStateVector(0.6, 0.6)))
	//a negative free probability is infeasible on its own
	require.False(Te, constraintsSatisfied(A, b, threeStateVector(-0.1, 0.5)))
	//the boundary itself is feasible
	require.True(Te, constraintsSatisfied(A, b, threeStateVector(1.0, 0.0)))
	require.True(Te, constraintsSatisfied(A, b, threeStateVector(0.0, 0.0)))
}

//The constraint system is expressed in the optimizer's scaled space: a
//feasible raw vector stays feasible after scaling.
func TestLinearConstraintsScaled(Te *testing.T) {
	st := rdcState(Te, 2, []float64{0.3, 0.3, 0.4}, []float64{2e-4, -1e-4, 5e-5, 1e-5, -3e-5})
	types := st.DataTypes()
	s, err := ScalingMatrix(st, types, true)
	require.NoError(Te, err)
	A, b, err := LinearConstraints(st, types, s)
	require.NoError(Te, err)

	require.True(Te, constraintsSatisfied(A, b, scaleVector(s, threeStateVector(0.3, 0.3))))
	require.False(Te, constraintsSatisfied(A, b, scaleVector(s, threeStateVector(0.6, 0.6))))
}

//A model without free populations has no constraints.
func TestLinearConstraintsFixedModel(Te *testing.T) {
	st := rdcState(Te, 2, []float64{0.3, 0.7}, []float64{2e-4, -1e-4, 5e-5, 1e-5, -3e-5})
	st.Model.Kind = ModelFixed
	types := st.DataTypes()
	s, err := ScalingMatrix(st, types, true)
	require.NoError(Te, err)
	A, b, err := LinearConstraints(st, types, s)
	require.NoError(Te, err)
	require.Nil(Te, A)
	require.Nil(Te, b)
	//nil constraints accept everything
	require.True(Te, constraintsSatisfied(A, b, []float64{42}))
}

func TestConstraintPenalty(Te *testing.T) {
	st := rdcState(Te, 2, []float64{0.3, 0.7}, []float64{2e-4, -1e-4, 5e-5, 1e-5, -3e-5})
	types := st.DataTypes()
	s, err := ScalingMatrix(st, types, false)
	require.NoError(Te, err)
	A, b, err := LinearConstraints(st, types, s)
	require.NoError(Te, err)

	feasible := []float64{2e-4, -1e-4, 5e-5, 1e-5, -3e-5, 0.3}
	require.Zero(Te, constraintPenalty(A, b, feasible))

	//p0 = 1.2 violates p0 <= 1 by 0.2 and sum <= 1 by 0.2
	infeasible := []float64{2e-4, -1e-4, 5e-5, 1e-5, -3e-5, 1.2}
	require.InDelta(Te, 2.0*0.2*0.2, constraintPenalty(A, b, infeasible), 1e-12)
}
