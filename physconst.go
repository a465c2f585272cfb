/*
 * physconst.go, part of gonstate.
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

import "math"

//Physical constants, SI units throughout.
const (
	//Planck's constant and its reduced form.
	Planck    = 6.62606876e-34
	PlanckBar = Planck / (2.0 * math.Pi)

	//The magnetic constant (the permeability of vacuum).
	Mu0 = 4.0 * math.Pi * 1e-7

	//Boltzmann's constant.
	Boltzmann = 1.380650424e-23

	//The default NH bond length of the amide group, in meters.
	NHBondLength = 1.02e-10
)

//A map for assigning gyromagnetic ratios (rad/s/T) to isotopes.
//Note that just the isotopes commonly observed in biomolecular
//NMR are present.
var isotopeGyromagnetic = map[string]float64{
	"1H":  26.7522212e7,
	"2H":  4.10662791e7,
	"13C": 6.728e7,
	"15N": -2.7126e7,
	"17O": -3.628e7,
	"31P": 10.841e7,
}

//GyromagneticRatio returns the gyromagnetic ratio of the given isotope
//(e.g. "15N") in rad/s/T, or an error if the isotope is not in the table.
func GyromagneticRatio(isotope string) (float64, error) {
	g, ok := isotopeGyromagnetic[isotope]
	if !ok {
		return 0, Errorf(ErrUnknownIsotope, "GyromagneticRatio: no gyromagnetic ratio for isotope %q", isotope)
	}
	return g, nil
}

//DipolarConstant calculates the RDC dipolar constant, in Hz,
//
//	d = - (3/(2pi)) * (mu0/(4pi)) * (gI*gS*hbar) / r^3
//
//where gI and gS are the gyromagnetic ratios of the two coupled nuclei and
//r is the internuclear distance in meters. The factor 3/(2pi) converts from
//angular frequency and folds in the alignment-tensor normalization, so the
//back-calculated coupling is simply d times the population-averaged
//uT*A*u projection.
func DipolarConstant(gI, gS, r float64) float64 {
	if r == 0 {
		panic(ErrWeightByZero) //a zero bond length corrupts every coupling of the spin
	}
	return -3.0 / (2.0 * math.Pi) * Mu0 / (4.0 * math.Pi) * gI * gS * PlanckBar / (r * r * r)
}

//PCSConstant calculates the pseudo-contact shift constant (dimensionless,
//multiply by 1e6 for ppm),
//
//	c = (mu0/(4pi)) * B0^2 / (15*kB*T) / r^3
//
//for an experiment at temperature T (K) and field strength B0 (Tesla),
//with r the paramagnetic centre to nucleus distance in meters.
func PCSConstant(temp, b0, r float64) float64 {
	if temp == 0 || r == 0 {
		panic(ErrWeightByZero)
	}
	return Mu0 / (4.0 * math.Pi) * b0 * b0 / (15.0 * Boltzmann * temp) / (r * r * r)
}

//FieldStrength converts a proton spectrometer frequency in Hz into the
//magnetic field strength in Tesla.
func FieldStrength(protonFrqHz float64) float64 {
	return protonFrqHz * 2.0 * math.Pi / isotopeGyromagnetic["1H"]
}
