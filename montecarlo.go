/*
 * montecarlo.go, part of gonstate.
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

//SetupSim allocates n Monte Carlo replicas of every model parameter and
//of the per-run statistics, each replica starting from the live values.
//The replica-indexed APIs (AssembleParamVector, Minimise with
//SimIndex >= 0) then read and write only their replica's slots, so
//independent replicas can be sharded across workers as long as each
//worker operates on its own State.Copy.
func SetupSim(st *State, n int) error {
	if st.Model == nil {
		return Errorf(ErrNoModel, "SetupSim: no N-state model has been set up")
	}
	m := st.Model
	m.ProbsSim = replicate(m.Probs, n)
	if m.Kind == Model2Domain {
		m.AlphaSim = replicate(m.Alpha, n)
		m.BetaSim = replicate(m.Beta, n)
		m.GammaSim = replicate(m.Gamma, n)
	}
	for _, t := range st.Tensors {
		t.SimInit(n)
	}
	st.Chi2Sim = make([]float64, n)
	st.WarningSim = make([]string, n)
	return nil
}

func replicate(live []float64, n int) [][]float64 {
	if live == nil {
		return nil
	}
	r := make([][]float64, n)
	for i := range r {
		r[i] = append([]float64{}, live...)
	}
	return r
}
