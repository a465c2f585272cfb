/*
 * correlation.go, part of gonstate.
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

/*Package nmrplot draws measured-versus-back-calculated correlation plots
for RDC and PCS data after an optimization has been committed.*/
package nmrplot

import (
	"fmt"
	"image/color"
	"math"

	"github.com/gonstate/nstate"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//point colors cycle per alignment ID.
var palette = []color.RGBA{
	{R: 31, G: 119, B: 180, A: 255},
	{R: 255, G: 127, B: 14, A: 255},
	{R: 44, G: 160, B: 44, A: 255},
	{R: 214, G: 39, B: 40, A: 255},
	{R: 148, G: 103, B: 189, A: 255},
}

func basicCorrPlot(title, unit string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = fmt.Sprintf("Measured (%s)", unit)
	p.Y.Label.Text = fmt.Sprintf("Back-calculated (%s)", unit)
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	p.Legend.Left = true
	return p
}

//correlate collects the (measured, back-calculated) pairs of one data
//kind, grouped by alignment ID.
func correlate(spins []*nstate.Spin, rdc bool) (map[string]plotter.XYs, []string) {
	byAlign := make(map[string]plotter.XYs)
	var order []string
	for _, s := range spins {
		if !s.Select {
			continue
		}
		var meas, bc map[string]float64
		if rdc {
			if s.RDC == nil || s.RDCBC == nil {
				continue
			}
			meas, bc = s.RDC.Val, s.RDCBC
		} else {
			if s.PCS == nil || s.PCSBC == nil {
				continue
			}
			meas, bc = s.PCS.Val, s.PCSBC
		}
		for id, m := range meas {
			b, ok := bc[id]
			if !ok {
				continue
			}
			if _, seen := byAlign[id]; !seen {
				order = append(order, id)
			}
			byAlign[id] = append(byAlign[id], plotter.XY{X: m, Y: b})
		}
	}
	return byAlign, order
}

func plotPairs(p *plot.Plot, byAlign map[string]plotter.XYs, order []string) error {
	lo := math.Inf(1)
	hi := math.Inf(-1)
	for i, id := range order {
		pts := byAlign[id]
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		s.GlyphStyle.Color = palette[i%len(palette)]
		p.Add(s)
		p.Legend.Add(id, s)
		for _, xy := range pts {
			lo = math.Min(lo, math.Min(xy.X, xy.Y))
			hi = math.Max(hi, math.Max(xy.X, xy.Y))
		}
	}
	if lo > hi {
		return fmt.Errorf("nmrplot: no data points to plot")
	}
	//identity line marking perfect agreement
	diag := plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}}
	l, err := plotter.NewLine(diag)
	if err != nil {
		return err
	}
	l.LineStyle.Color = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	l.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(l)
	return nil
}

//RDCCorrelation plots measured against back-calculated RDCs, one scatter
//series per alignment, with the identity line. The plot is saved as
//plotname.png. The state must have been through a committed optimization
//so the back-calculated caches are filled.
func RDCCorrelation(st *nstate.State, title, plotname string) error {
	byAlign, order := correlate(st.Spins, true)
	p := basicCorrPlot(title, "Hz")
	if err := plotPairs(p, byAlign, order); err != nil {
		return err
	}
	return p.Save(5*vg.Inch, 5*vg.Inch, fmt.Sprintf("%s.png", plotname))
}

//PCSCorrelation is the PCS analogue of RDCCorrelation.
func PCSCorrelation(st *nstate.State, title, plotname string) error {
	byAlign, order := correlate(st.Spins, false)
	p := basicCorrPlot(title, "ppm")
	if err := plotPairs(p, byAlign, order); err != nil {
		return err
	}
	return p.Save(5*vg.Inch, 5*vg.Inch, fmt.Sprintf("%s.png", plotname))
}
