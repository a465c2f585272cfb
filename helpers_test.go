/*
 * helpers_test.go, part of gonstate.
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
	"io"
	"log/slog"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

//testLogger keeps the expected assembler warnings out of the test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

//testVect returns a deterministic, non-degenerate bond vector for spin i
//in ensemble state c.
func testVect(i, c int) []float64 {
	t := float64(i) + 0.7*float64(c)
	return []float64{math.Cos(t), math.Sin(t), 0.3 + 0.15*float64(i) + 0.4*float64(c)}
}

//rdcTruth back-calculates the coupling of one spin under the given tensor
//and populations, normalizing the state vectors the same way the
//assembler does.
func rdcTruth(tb testing.TB, spin int, probs, a5 []float64) float64 {
	tb.Helper()
	gN, err := GyromagneticRatio("15N")
	if err != nil {
		tb.Fatal(err)
	}
	gH, err := GyromagneticRatio("1H")
	if err != nil {
		tb.Fatal(err)
	}
	dj := DipolarConstant(gN, gH, NHBondLength)
	ave := 0.0
	for c, p := range probs {
		u := make([]float64, 3)
		unitVector(u, testVect(spin, c))
		ave += p * projection(u, a5)
	}
	return dj * ave
}

//rdcState builds a population model with one state per entry of probs
//and nspin selected spins carrying one alignment of RDC data generated
//exactly from the given tensor components and populations, so the truth
//parameters give a chi-squared of zero.
func rdcState(tb testing.TB, nspin int, probs, a5 []float64) *State {
	tb.Helper()
	st := new(State)
	tens := &AlignTensor{Name: "dy", Domain: "N"}
	tens.SetA5(a5)
	st.Tensors = []*AlignTensor{tens}
	for i := 0; i < nspin; i++ {
		s := &Spin{
			Molecule:      "mol",
			ResNum:        i + 1,
			ResName:       "GLY",
			Name:          "N",
			Select:        true,
			HeteronucType: "15N",
			ProtonType:    "1H",
		}
		for c := range probs {
			s.BondVect = append(s.BondVect, testVect(i, c))
		}
		s.RDC = &RDCData{
			Val: map[string]float64{"dy": rdcTruth(tb, i, probs, a5)},
			Err: map[string]float64{"dy": 1.0},
		}
		st.Spins = append(st.Spins, s)
	}
	if err := SetupModel(st, ModelPopulation, len(probs), ""); err != nil {
		tb.Fatal(err)
	}
	for c := 0; c < len(probs)-1; c++ {
		if err := st.Model.SetParam(paramName("p", c), probs[c]); err != nil {
			tb.Fatal(err)
		}
	}
	return st
}

func paramName(base string, idx int) string {
	return base + string(rune('0'+idx))
}

//reducedFrom rotates a full tensor by the z-y-z Euler angles in the
//reference frame and packs the result as its reduced partner.
func reducedFrom(full *AlignTensor, alpha, beta, gamma float64) *AlignTensor {
	R := mat.NewDense(3, 3, nil)
	EulerZYZ(R, alpha, beta, gamma)
	A := mat.NewDense(3, 3, nil)
	fill3x3(A, full.A5())
	rot := mat.NewDense(3, 3, nil)
	rot.Product(R, A, R.T())
	red := &AlignTensor{Name: full.Name + "-red", Domain: "C", Red: true}
	red.SetA5([]float64{rot.At(0, 0), rot.At(1, 1), rot.At(0, 1), rot.At(0, 2), rot.At(1, 2)})
	return red
}

//testPos returns a position roughly 10 to 20 Angstrom from the origin.
func testPos(i, c int) []float64 {
	t := float64(i)*1.1 + 0.5*float64(c)
	r := 1.2e-9 + 1e-10*float64(i)
	return []float64{r * math.Cos(t), r * math.Sin(t), r * (0.4 + 0.1*float64(c))}
}

//pcsTruth back-calculates the shift (in ppm) of one spin at the given
//temperature and proton frequency.
func pcsTruth(spin int, probs, a5 []float64, temp, frq float64) float64 {
	b0 := FieldStrength(frq)
	bc := 0.0
	for c, p := range probs {
		u := make([]float64, 3)
		r := unitVector(u, testPos(spin, c))
		bc += p * PCSConstant(temp, b0, r) * projection(u, a5)
	}
	return bc * 1e6
}

//pcsState builds a population model with nspin spins carrying one
//alignment of PCS data generated exactly from the given parameters. The
//paramagnetic centre sits at the origin.
func pcsState(tb testing.TB, nspin int, probs, a5 []float64) *State {
	tb.Helper()
	const temp = 298.0
	const frq = 600e6
	st := new(State)
	tens := &AlignTensor{Name: "tb", Domain: "N"}
	tens.SetA5(a5)
	st.Tensors = []*AlignTensor{tens}
	st.ParamagCentre = []float64{0, 0, 0}
	st.Temperature = map[string]float64{"tb": temp}
	st.Frequency = map[string]float64{"tb": frq}
	for i := 0; i < nspin; i++ {
		s := &Spin{
			Molecule: "mol",
			ResNum:   i + 1,
			Name:     "H",
			Select:   true,
		}
		for c := range probs {
			s.Pos = append(s.Pos, testPos(i, c))
		}
		s.PCS = &PCSData{
			Val: map[string]float64{"tb": pcsTruth(i, probs, a5, temp, frq)},
			Err: map[string]float64{"tb": 0.01},
		}
		st.Spins = append(st.Spins, s)
	}
	if err := SetupModel(st, ModelPopulation, len(probs), ""); err != nil {
		tb.Fatal(err)
	}
	for c := 0; c < len(probs)-1; c++ {
		if err := st.Model.SetParam(paramName("p", c), probs[c]); err != nil {
			tb.Fatal(err)
		}
	}
	return st
}
