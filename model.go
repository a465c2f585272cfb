/*
 * model.go, part of gonstate.
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
	"fmt"
	"math"
)

//ModelKind is the closed set of N-state model variants. Each variant
//carries exactly the parameters it needs: the population model has free
//probabilities, the 2-domain model adds per-state Euler angles, and the
//fixed model optimizes only the alignment tensors with the populations
//held at their preset values.
type ModelKind int

const (
	ModelFixed ModelKind = iota
	ModelPopulation
	Model2Domain
)

//String satisfies fmt.Stringer.
func (k ModelKind) String() string {
	switch k {
	case ModelFixed:
		return "fixed"
	case ModelPopulation:
		return "population"
	case Model2Domain:
		return "2-domain"
	}
	return fmt.Sprintf("ModelKind(%d)", int(k))
}

//Model is the N-state model container. Probs always has length N and the
//last element is, by invariant, 1 minus the sum of the others: it is
//recomputed on every parameter-vector disassembly and never trusted as a
//stored value. Unassigned parameters hold NaN, the package's "unset"
//sentinel.
type Model struct {
	Kind      ModelKind
	N         int
	RefDomain string

	Probs               []float64
	Alpha, Beta, Gamma []float64

	//Parameter names, in vector order past the tensor block:
	//p0..p(N-2), then alpha0,beta0,gamma0,... for the 2-domain model.
	Params []string

	//Monte Carlo replicas, indexed [replica][state].
	ProbsSim               [][]float64
	AlphaSim, BetaSim, GammaSim [][]float64
}

//State is the explicit model-state aggregate that every operation of this
//package takes; there is no process-wide "current pipe". A State is owned
//by a single optimization run for the run's duration: the codec mutates
//the model and tensors in place. Monte Carlo replicas that run in
//parallel must each use their own Copy.
type State struct {
	Spins   []*Spin
	Tensors []*AlignTensor
	Model   *Model

	//PCS experiment setup: the paramagnetic centre position (len 3,
	//meters), and per-alignment temperature (K) and proton frequency
	//(Hz), keyed by alignment ID.
	ParamagCentre []float64
	Temperature   map[string]float64
	Frequency     map[string]float64

	//Optimization statistics, written by Minimise.
	Chi2    float64
	Iter    int
	FCount  int
	GCount  int
	HCount  int
	Warning string

	//Q-factors, per alignment ID and aggregated.
	QRDCAlign map[string]float64
	QPCSAlign map[string]float64
	QRDC      float64
	QPCS      float64

	//Monte Carlo replicas of the statistics.
	Chi2Sim    []float64
	WarningSim []string
}

//SetupModel initializes the N-state model on the state. For the 2-domain
//model the reference domain must name the domain of at least one loaded
//tensor, and at most two distinct domains may be present. Probability and
//angle arrays are allocated to length N and filled with NaN until values
//are assigned or optimization writes them.
func SetupModel(st *State, kind ModelKind, n int, refDomain string) error {
	if n < 1 {
		return Errorf(ErrNoModel, "SetupModel: invalid number of states %d", n)
	}
	if kind == Model2Domain {
		if refDomain == "" {
			return Errorf(ErrNoRefDomain, "SetupModel: the 2-domain model requires a reference domain")
		}
		domains := make(map[string]bool)
		found := false
		for _, t := range st.Tensors {
			domains[t.Domain] = true
			if t.Domain == refDomain {
				found = true
			}
		}
		if !found {
			return Errorf(ErrNoTensor, "SetupModel: the reference domain %q cannot be found within any of the loaded tensors", refDomain)
		}
		if len(domains) > 2 {
			return Errorf(ErrTooManyDomains, "SetupModel: %d domains defined, the 2-domain model allows only 2", len(domains))
		}
	}
	m := &Model{Kind: kind, N: n, RefDomain: refDomain}
	m.Probs = nanSlice(n)
	if kind == Model2Domain {
		m.Alpha = nanSlice(n)
		m.Beta = nanSlice(n)
		m.Gamma = nanSlice(n)
	}
	if kind != ModelFixed {
		for i := 0; i < n-1; i++ {
			m.Params = append(m.Params, fmt.Sprintf("p%d", i))
		}
	}
	if kind == Model2Domain {
		for i := 0; i < n; i++ {
			m.Params = append(m.Params, fmt.Sprintf("alpha%d", i), fmt.Sprintf("beta%d", i), fmt.Sprintf("gamma%d", i))
		}
	}
	st.Model = m
	return nil
}

//DefaultValue returns the default starting value for the named model
//parameter: 1/N for the probabilities and (c+1)*pi/(N+1) for the Euler
//angles of state c, so no two states start equal.
func (M *Model) DefaultValue(param string) (float64, error) {
	name, idx, err := parseParamName(param)
	if err != nil {
		return 0, errDecorate(err, "DefaultValue")
	}
	switch name {
	case "p":
		return 1.0 / float64(M.N), nil
	case "alpha", "beta", "gamma":
		return float64(idx+1) * math.Pi / float64(M.N+1), nil
	}
	return 0, Errorf(ErrInvalidParam, "DefaultValue: unknown parameter %q", param)
}

//SetParam assigns a value to a named parameter ("p1", "beta0", ...).
//Asking for a parameter the model kind does not carry (e.g. Euler angles
//on a population model) is an invariant violation, rejected before any
//computation. Setting pN-1 is rejected too: the last probability is the
//complement of the others, not an independent value.
func (M *Model) SetParam(param string, value float64) error {
	name, idx, err := parseParamName(param)
	if err != nil {
		return errDecorate(err, "SetParam")
	}
	if idx < 0 || idx >= M.N {
		return Errorf(ErrInvalidParam, "SetParam: state index %d of parameter %q out of range", idx, param)
	}
	switch name {
	case "p":
		if M.Kind == ModelFixed {
			//The fixed model still carries preset populations.
			M.Probs[idx] = value
			return nil
		}
		if idx == M.N-1 {
			return Errorf(ErrInvalidParam, "SetParam: p%d is 1 minus the sum of the other probabilities and cannot be set", idx)
		}
		M.Probs[idx] = value
	case "alpha", "beta", "gamma":
		if M.Kind != Model2Domain {
			return Errorf(ErrInvalidParam, "SetParam: the %s model has no Euler angle parameters", M.Kind)
		}
		switch name {
		case "alpha":
			M.Alpha[idx] = value
		case "beta":
			M.Beta[idx] = value
		case "gamma":
			M.Gamma[idx] = value
		}
	}
	return nil
}

//SetDefaults assigns the default starting value to every free parameter
//of the model.
func (M *Model) SetDefaults() error {
	for _, p := range M.Params {
		v, err := M.DefaultValue(p)
		if err != nil {
			return errDecorate(err, "SetDefaults")
		}
		if err := M.SetParam(p, v); err != nil {
			return errDecorate(err, "SetDefaults")
		}
	}
	return nil
}

//parseParamName splits a parameter name into its base ("p", "alpha",
//"beta" or "gamma") and state index.
func parseParamName(param string) (string, int, error) {
	for _, base := range []string{"alpha", "beta", "gamma", "p"} {
		if len(param) > len(base) && param[:len(base)] == base {
			idx := 0
			n, err := fmt.Sscanf(param[len(base):], "%d", &idx)
			if err != nil || n != 1 {
				return "", 0, Errorf(ErrInvalidParam, "parseParamName: cannot parse state index of %q", param)
			}
			return base, idx, nil
		}
	}
	return "", 0, Errorf(ErrInvalidParam, "parseParamName: unknown parameter %q", param)
}

//Copy returns a deep copy of the state, giving a Monte Carlo worker its
//own spins, tensors and model to mutate.
func (st *State) Copy() *State {
	n := new(State)
	*n = *st
	n.Spins = make([]*Spin, len(st.Spins))
	for i, s := range st.Spins {
		n.Spins[i] = s.Copy()
	}
	n.Tensors = make([]*AlignTensor, len(st.Tensors))
	for i, t := range st.Tensors {
		n.Tensors[i] = t.Copy()
	}
	if st.Model != nil {
		m := *st.Model
		m.Probs = append([]float64{}, st.Model.Probs...)
		m.Alpha = append([]float64(nil), st.Model.Alpha...)
		m.Beta = append([]float64(nil), st.Model.Beta...)
		m.Gamma = append([]float64(nil), st.Model.Gamma...)
		m.Params = append([]string(nil), st.Model.Params...)
		m.ProbsSim = copyVectors(st.Model.ProbsSim)
		m.AlphaSim = copyVectors(st.Model.AlphaSim)
		m.BetaSim = copyVectors(st.Model.BetaSim)
		m.GammaSim = copyVectors(st.Model.GammaSim)
		n.Model = &m
	}
	n.ParamagCentre = append([]float64(nil), st.ParamagCentre...)
	n.Temperature = copyFloatMap(st.Temperature)
	n.Frequency = copyFloatMap(st.Frequency)
	n.QRDCAlign = copyFloatMap(st.QRDCAlign)
	n.QPCSAlign = copyFloatMap(st.QPCSAlign)
	n.Chi2Sim = append([]float64(nil), st.Chi2Sim...)
	n.WarningSim = append([]string(nil), st.WarningSim...)
	return n
}

//Tensor returns the alignment tensor with the given name, or an error if
//no tensor carries it.
func (st *State) Tensor(name string) (*AlignTensor, error) {
	for _, t := range st.Tensors {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, Errorf(ErrNoTensor, "Tensor: no alignment tensor named %q", name)
}

//AlignTensors returns the non-reduced tensors, whose components enter the
//parameter vector, in their loading order. That order defines the
//alignment index used by every assembled data array.
func (st *State) AlignTensors() []*AlignTensor {
	var ret []*AlignTensor
	for _, t := range st.Tensors {
		if !t.Red {
			ret = append(ret, t)
		}
	}
	return ret
}

//DataTypes reports which base data types are present on the state, in the
//fixed order tensor, rdc, pcs. An empty return means there is nothing to
//optimize.
func (st *State) DataTypes() []DataType {
	var ret []DataType
	for _, t := range st.Tensors {
		if t.Red {
			ret = append(ret, DataTensor)
			break
		}
	}
	rdc, pcs := false, false
	for _, s := range st.Spins {
		if !s.Select {
			continue
		}
		if s.RDC != nil {
			rdc = true
		}
		if s.PCS != nil {
			pcs = true
		}
	}
	if rdc {
		ret = append(ret, DataRDC)
	}
	if pcs {
		ret = append(ret, DataPCS)
	}
	return ret
}

//DataType tags the base data types handled by the target function.
type DataType string

const (
	DataRDC    DataType = "rdc"
	DataPCS    DataType = "pcs"
	DataTensor DataType = "tensor"
)

func hasData(types []DataType, d DataType) bool {
	for _, t := range types {
		if t == d {
			return true
		}
	}
	return false
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}
