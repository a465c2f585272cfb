/*
 * rotation.go, part of gonstate.
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

	"gonum.org/v1/gonum/mat"
)

//EulerZYZ fills R with the rotation matrix for the z-y-z Euler angle
//convention: a rotation by alpha around z, then beta around the new y,
//then gamma around the new z. This is the convention the 2-domain model
//uses for the per-state domain orientations.
func EulerZYZ(R *mat.Dense, alpha, beta, gamma float64) {
	sina, cosa := math.Sincos(alpha)
	sinb, cosb := math.Sincos(beta)
	sing, cosg := math.Sincos(gamma)
	R.Set(0, 0, -sina*sing+cosa*cosb*cosg)
	R.Set(0, 1, -sina*cosg-cosa*cosb*sing)
	R.Set(0, 2, cosa*sinb)
	R.Set(1, 0, cosa*sing+sina*cosb*cosg)
	R.Set(1, 1, cosa*cosg-sina*cosb*sing)
	R.Set(1, 2, sina*sinb)
	R.Set(2, 0, -sinb*cosg)
	R.Set(2, 1, sinb*sing)
	R.Set(2, 2, cosb)
}

//unitVector normalizes v into dst (both len 3) and returns the original
//length. A zero-length vector is left untouched and reported as 0.
func unitVector(dst, v []float64) float64 {
	if len(v) != 3 || len(dst) != 3 {
		panic(ErrNotLength3)
	}
	r := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if r == 0 {
		return 0
	}
	dst[0], dst[1], dst[2] = v[0]/r, v[1]/r, v[2]/r
	return r
}

//projection returns u^T*A*u for a unit vector u (len 3) and the 3x3
//symmetric tensor given by its 5 independent components in package order.
//The expansion is written out because this product sits in the innermost
//loop of the target function.
func projection(u []float64, a5 []float64) float64 {
	axx, ayy, axy, axz, ayz := a5[0], a5[1], a5[2], a5[3], a5[4]
	azz := -axx - ayy
	return axx*u[0]*u[0] + ayy*u[1]*u[1] + azz*u[2]*u[2] +
		2.0*(axy*u[0]*u[1]+axz*u[0]*u[2]+ayz*u[1]*u[2])
}
