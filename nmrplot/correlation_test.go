/*
 * correlation_test.go, part of gonstate.
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

package nmrplot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gonstate/nstate"
	"github.com/stretchr/testify/require"
)

func fittedState() *nstate.State {
	st := new(nstate.State)
	for i := 0; i < 6; i++ {
		meas := -4.0 + 1.7*float64(i)
		st.Spins = append(st.Spins, &nstate.Spin{
			Molecule: "mol",
			ResNum:   i + 1,
			Name:     "N",
			Select:   true,
			RDC: &nstate.RDCData{
				Val: map[string]float64{"dy": meas, "tb": meas * 0.5},
				Err: map[string]float64{"dy": 1.0, "tb": 1.0},
			},
			RDCBC: map[string]float64{"dy": meas + 0.3, "tb": meas*0.5 - 0.2},
			PCS: &nstate.PCSData{
				Val: map[string]float64{"dy": 0.1 * meas},
				Err: map[string]float64{"dy": 0.01},
			},
			PCSBC: map[string]float64{"dy": 0.1*meas + 0.02},
		})
	}
	return st
}

func TestRDCCorrelation(Te *testing.T) {
	st := fittedState()
	name := filepath.Join(Te.TempDir(), "rdc_corr")
	require.NoError(Te, RDCCorrelation(st, "RDC correlation", name))
	info, err := os.Stat(name + ".png")
	require.NoError(Te, err)
	require.Greater(Te, info.Size(), int64(0))
}

func TestPCSCorrelation(Te *testing.T) {
	st := fittedState()
	name := filepath.Join(Te.TempDir(), "pcs_corr")
	require.NoError(Te, PCSCorrelation(st, "PCS correlation", name))
	_, err := os.Stat(name + ".png")
	require.NoError(Te, err)
}

//A state without committed back-calculated values has nothing to plot.
func TestCorrelationNoData(Te *testing.T) {
	st := new(nstate.State)
	st.Spins = []*nstate.Spin{{Name: "N", Select: true}}
	name := filepath.Join(Te.TempDir(), "empty")
	require.Error(Te, RDCCorrelation(st, "empty", name))
}
