/*
 * montecarlo_test.go, part of gonstate.
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

func TestSetupSim(Te *testing.T) {
	st := rdcState(Te, 3, []float64{0.3, 0.7}, testA5)
	require.NoError(Te, SetupSim(st, 4))
	require.Len(Te, st.Model.ProbsSim, 4)
	require.Len(Te, st.Chi2Sim, 4)
	require.Len(Te, st.WarningSim, 4)
	require.Len(Te, st.Tensors[0].Sim[0], 4)
	//replicas start from the live values
	require.InDelta(Te, 0.3, st.Model.ProbsSim[2][0], 1e-15)
	require.Equal(Te, testA5, st.Tensors[0].A5Sim(3))
	//a population model has no angle replicas
	require.Nil(Te, st.Model.AlphaSim)

	require.ErrorIs(Te, SetupSim(new(State), 4), ErrNoModel)
}

//Optimizing a replica writes its Chi2Sim slot and leaves the live
//parameters and statistics alone.
func TestMinimiseReplica(Te *testing.T) {
	st := rdcState(Te, 5, []float64{0.3, 0.7}, testA5)
	require.NoError(Te, SetupSim(st, 2))
	//perturb replica 0's starting populations
	st.Model.ProbsSim[0][0] = 0.6
	st.Model.ProbsSim[0][1] = 0.4

	opts := DefaultMinimiseOptions()
	opts.Logger = testLogger()
	opts.SimIndex = 0
	opts.Lower = append(append([]float64{}, testA5...), 0.0)
	opts.Upper = append(append([]float64{}, testA5...), 1.0)
	opts.Algorithm = "grid"
	opts.GridIncs = []int{1, 1, 1, 1, 1, 11}
	err := Minimise(st, opts)
	require.NoError(Te, err)

	require.InDelta(Te, 0.3, st.Model.ProbsSim[0][0], 1e-9)
	require.Less(Te, st.Chi2Sim[0], 1e-12)
	//replica 1 and the live slots are untouched
	require.InDelta(Te, 0.3, st.Model.ProbsSim[1][0], 1e-15)
	require.InDelta(Te, 0.3, st.Model.Probs[0], 1e-15)
	require.Zero(Te, st.Chi2)
	require.Zero(Te, st.FCount)
}

//Optimizing a replica that was never allocated is an invariant violation.
func TestMinimiseReplicaUnallocated(Te *testing.T) {
	st := rdcState(Te, 3, []float64{0.3, 0.7}, testA5)
	require.NoError(Te, SetupSim(st, 1))
	opts := DefaultMinimiseOptions()
	opts.Logger = testLogger()
	opts.SimIndex = 5
	err := Minimise(st, opts)
	require.ErrorIs(Te, err, ErrInvalidParam)
}
