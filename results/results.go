/*
 * results.go, part of gonstate.
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

/*Package results serializes the outcome of an N-state optimization to a
gzip-compressed JSON snapshot, and reads such snapshots back. Only the
optimized parameters and fit statistics travel; experimental data stays
with its loaders.*/
package results

import (
	"encoding/json"
	"io"
	"os"

	"github.com/gonstate/nstate"
	"github.com/klauspost/compress/gzip"
)

//Tensor is the ready-to-serialize container for one alignment tensor.
type Tensor struct {
	Name    string
	Domain  string
	Reduced bool
	A       [5]float64 //Axx, Ayy, Axy, Axz, Ayz
}

//SpinBC holds the back-calculated observables of one spin, keyed by
//alignment ID (RDC in Hz, PCS in ppm).
type SpinBC struct {
	Molecule string
	ResNum   int
	Name     string
	RDC      map[string]float64 `json:",omitempty"`
	PCS      map[string]float64 `json:",omitempty"`
}

//Results is the serializable snapshot of an optimized model.
type Results struct {
	Model     string
	N         int
	RefDomain string `json:",omitempty"`

	Probs               []float64
	Alpha, Beta, Gamma []float64 `json:",omitempty"`

	Tensors []Tensor

	Chi2    float64
	Iter    int
	FCount  int
	Warning string `json:",omitempty"`

	QRDC      float64            `json:",omitempty"`
	QPCS      float64            `json:",omitempty"`
	QRDCAlign map[string]float64 `json:",omitempty"`
	QPCSAlign map[string]float64 `json:",omitempty"`

	BackCalc []SpinBC `json:",omitempty"`
}

//FromState snapshots the optimized parameters and statistics of a state.
func FromState(st *nstate.State) *Results {
	r := &Results{
		Chi2:    st.Chi2,
		Iter:    st.Iter,
		FCount:  st.FCount,
		Warning: st.Warning,
		QRDC:    st.QRDC,
		QPCS:    st.QPCS,
	}
	if st.Model != nil {
		r.Model = st.Model.Kind.String()
		r.N = st.Model.N
		r.RefDomain = st.Model.RefDomain
		r.Probs = append([]float64{}, st.Model.Probs...)
		r.Alpha = append([]float64(nil), st.Model.Alpha...)
		r.Beta = append([]float64(nil), st.Model.Beta...)
		r.Gamma = append([]float64(nil), st.Model.Gamma...)
	}
	for _, t := range st.Tensors {
		var a [5]float64
		copy(a[:], t.A5())
		r.Tensors = append(r.Tensors, Tensor{Name: t.Name, Domain: t.Domain, Reduced: t.Red, A: a})
	}
	r.QRDCAlign = copyMap(st.QRDCAlign)
	r.QPCSAlign = copyMap(st.QPCSAlign)
	for _, s := range st.Spins {
		if s.RDCBC == nil && s.PCSBC == nil {
			continue
		}
		r.BackCalc = append(r.BackCalc, SpinBC{
			Molecule: s.Molecule,
			ResNum:   s.ResNum,
			Name:     s.Name,
			RDC:      copyMap(s.RDCBC),
			PCS:      copyMap(s.PCSBC),
		})
	}
	return r
}

//Write serializes the results as gzip-compressed JSON.
func (R *Results) Write(w io.Writer) error {
	gz := gzip.NewWriter(w)
	enc := json.NewEncoder(gz)
	enc.SetIndent("", " ")
	if err := enc.Encode(R); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}

//Read deserializes a snapshot written by Write.
func Read(r io.Reader) (*Results, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer gz.Close()
	ret := new(Results)
	if err := json.NewDecoder(gz).Decode(ret); err != nil {
		return nil, err
	}
	return ret, nil
}

//Save writes the snapshot of a state to the named file.
func Save(name string, st *nstate.State) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return FromState(st).Write(f)
}

//Load reads a snapshot from the named file.
func Load(name string) (*Results, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

func copyMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	n := make(map[string]float64, len(m))
	for k, v := range m {
		n[k] = v
	}
	return n
}
