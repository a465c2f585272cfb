/*
 * statistics.go, part of gonstate.
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

//daEpsilon replaces a degenerate (zero) Da in the RDC Q-factor
//normalization. The clamp keeps the alignment in the statistics with an
//effectively infinite Q instead of silently skipping it.
const daEpsilon = 1e-15

//QFactorsRDC computes, from the back-calculated couplings cached by the
//last evaluation, the Q-factor of each alignment and the aggregate
//Q-factor, defined as the square root of the mean of the squared
//per-alignment factors. Each per-alignment factor is
//
//	Q = sqrt( sum (D - Dbc)^2 / (n * 2*Da^2*(4+3R^2)/5) )
//
//with Da and R the anisotropy and rhombicity of that alignment's tensor
//under the mean dipolar constant of the contributing spins.
func (t *TargetFunction) QFactorsRDC() (map[string]float64, float64, error) {
	if t.rdc == nil {
		return nil, 0, Errorf(ErrNoData, "QFactorsRDC: no RDC data assembled")
	}
	perAlign := make(map[string]float64, len(t.rdc.AlignIDs))
	sum2 := 0.0
	for ai, id := range t.rdc.AlignIDs {
		sse := 0.0
		djSum := 0.0
		n := 0
		for row := range t.rdc.SpinIdx {
			if !t.rdc.Mask[ai][row] || !t.rdc.VectOK[row] {
				continue
			}
			d := t.rdc.Val[ai][row] - t.RDCBC[ai][row]
			sse += d * d
			djSum += t.rdc.Const[row]
			n++
		}
		if n == 0 {
			perAlign[id] = 0
			continue
		}
		tens, err := t.st.Tensor(id)
		if err != nil {
			return nil, 0, errDecorate(err, "QFactorsRDC")
		}
		da, r, err := tens.Anisotropy(djSum / float64(n))
		if err != nil {
			return nil, 0, errDecorate(err, "QFactorsRDC")
		}
		if da == 0 {
			da = daEpsilon
		}
		norm := 2.0 * da * da * (4.0 + 3.0*r*r) / 5.0
		q := math.Sqrt(sse / (float64(n) * norm))
		perAlign[id] = q
		sum2 += q * q
	}
	return perAlign, math.Sqrt(sum2 / float64(len(perAlign))), nil
}

//QFactorsPCS is the PCS analogue. The per-alignment normalization is the
//sum of the squared measured shifts:
//
//	Q = sqrt( sum (delta - delta_bc)^2 / sum delta^2 )
func (t *TargetFunction) QFactorsPCS() (map[string]float64, float64, error) {
	if t.pcs == nil {
		return nil, 0, Errorf(ErrNoData, "QFactorsPCS: no PCS data assembled")
	}
	perAlign := make(map[string]float64, len(t.pcs.AlignIDs))
	sum2 := 0.0
	for ai, id := range t.pcs.AlignIDs {
		sse := 0.0
		norm := 0.0
		n := 0
		for row := range t.pcs.SpinIdx {
			if !t.pcs.Mask[ai][row] || t.pcs.Vect[row] == nil {
				continue
			}
			d := t.pcs.Val[ai][row] - t.PCSBC[ai][row]
			sse += d * d
			norm += t.pcs.Val[ai][row] * t.pcs.Val[ai][row]
			n++
		}
		if n == 0 || norm == 0 {
			perAlign[id] = 0
			continue
		}
		q := math.Sqrt(sse / norm)
		perAlign[id] = q
		sum2 += q * q
	}
	return perAlign, math.Sqrt(sum2 / float64(len(perAlign))), nil
}
