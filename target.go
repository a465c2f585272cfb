/*
 * target.go, part of gonstate.
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
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"
)

//TargetFunction is the chi-squared objective over RDC, PCS and
//tensor-reduction data. Func is a pure function of the parameter vector:
//it decodes into private buffers and never touches the State it was
//built from. The optimizer's final answer reaches the State only through
//the explicit Commit step. The one documented side effect of every
//evaluation is the refresh of the back-calculated caches (RDCBC, PCSBC,
//RedBC), which the Q-factor code reads after optimization.
type TargetFunction struct {
	st        *State
	dataTypes []DataType
	scale     *mat.DiagDense //nil when scaling is disabled

	kind    ModelKind
	nState  int
	nTensor int //leading tensor parameters in the vector

	rdc  *RDCSet
	pcs  *PCSSet
	tens *TensorSet

	//Decoded parameter buffers, rewritten on every call.
	a5    [][]float64
	probs []float64
	alpha []float64
	beta  []float64
	gamma []float64

	//Back-calculated caches, rewritten on every call.
	RDCBC [][]float64 //[alignment][spin], Hz
	PCSBC [][]float64 //[alignment][spin], dimensionless
	RedBC []float64   //5 components per reduced tensor

	fCount, gCount, hCount int
}

//NewTargetFunction assembles the experimental data for the given data
//types and returns the ready-to-evaluate objective. The scale matrix must
//be the one the caller uses to scale the starting vector; pass nil for an
//unscaled fit.
func NewTargetFunction(st *State, dataTypes []DataType, scale *mat.DiagDense, lg *slog.Logger) (*TargetFunction, error) {
	if st.Model == nil {
		return nil, Errorf(ErrNoModel, "NewTargetFunction: no N-state model has been selected")
	}
	if len(dataTypes) == 0 {
		return nil, Errorf(ErrNoData, "NewTargetFunction: no data types to optimize against")
	}
	t := &TargetFunction{
		st:        st,
		dataTypes: dataTypes,
		scale:     scale,
		kind:      st.Model.Kind,
		nState:    st.Model.N,
		nTensor:   tensorParamNum(st, dataTypes),
	}
	var err error
	if hasData(dataTypes, DataRDC) {
		if t.rdc, err = AssembleRDC(st, lg); err != nil {
			return nil, errDecorate(err, "NewTargetFunction")
		}
		t.RDCBC = zeroGrid(len(t.rdc.AlignIDs), len(t.rdc.SpinIdx))
	}
	if hasData(dataTypes, DataPCS) {
		if t.pcs, err = AssemblePCS(st, lg); err != nil {
			return nil, errDecorate(err, "NewTargetFunction")
		}
		t.PCSBC = zeroGrid(len(t.pcs.AlignIDs), len(t.pcs.SpinIdx))
	}
	if hasData(dataTypes, DataTensor) {
		if t.tens, err = AssembleTensors(st); err != nil {
			return nil, errDecorate(err, "NewTargetFunction")
		}
		t.RedBC = make([]float64, len(t.tens.Red))
	}
	t.a5 = make([][]float64, len(st.AlignTensors()))
	for i, tens := range st.AlignTensors() {
		t.a5[i] = tens.A5() //overwritten by decode when the tensors are fitted
	}
	t.probs = make([]float64, t.nState)
	//Zero angles mean identity rotations for the models without
	//orientation parameters.
	t.alpha = make([]float64, t.nState)
	t.beta = make([]float64, t.nState)
	t.gamma = make([]float64, t.nState)
	return t, nil
}

//decode unpacks a raw (unscaled) parameter vector into the private
//buffers, following the codec layout exactly.
func (t *TargetFunction) decode(params []float64) {
	i := 0
	if t.nTensor > 0 {
		for k := range t.a5 {
			t.a5[k] = params[i : i+5]
			i += 5
		}
	}
	switch t.kind {
	case ModelFixed:
		//Preset populations; unset entries mean a uniform distribution.
		for c := 0; c < t.nState; c++ {
			p := t.st.Model.Probs[c]
			if math.IsNaN(p) {
				p = 1.0 / float64(t.nState)
			}
			t.probs[c] = p
		}
	default:
		sum := 0.0
		for c := 0; c < t.nState-1; c++ {
			t.probs[c] = params[i]
			sum += params[i]
			i++
		}
		t.probs[t.nState-1] = 1.0 - sum
	}
	if t.kind == Model2Domain {
		for c := 0; c < t.nState; c++ {
			t.alpha[c] = params[i]
			t.beta[c] = params[i+1]
			t.gamma[c] = params[i+2]
			i += 3
		}
	}
}

//Func evaluates the chi-squared statistic for a parameter vector in
//optimizer (scaled) space. Missing data points contribute exactly zero.
func (t *TargetFunction) Func(params []float64) float64 {
	if t.scale != nil {
		params = unscaleVector(t.scale, params)
	}
	return t.evaluate(params)
}

//evaluate is Func for a raw-space vector.
func (t *TargetFunction) evaluate(params []float64) float64 {
	t.fCount++
	t.decode(params)
	chi2 := 0.0
	if t.tens != nil {
		chi2 += t.tensorChi2()
	}
	if t.rdc != nil {
		chi2 += t.rdcChi2()
	}
	if t.pcs != nil {
		chi2 += t.pcsChi2()
	}
	return chi2
}

//tensorChi2 predicts each reduced tensor from its full partner under the
//current per-state rotations and populations, caching the prediction and
//accumulating the weighted residuals of the 5 components.
func (t *TargetFunction) tensorChi2() float64 {
	R := mat.NewDense(3, 3, nil)
	full := mat.NewDense(3, 3, nil)
	rot := mat.NewDense(3, 3, nil)
	ave := mat.NewDense(3, 3, nil)
	chi2 := 0.0
	for k, f5 := range t.tens.Full {
		fill3x3(full, f5)
		ave.Zero()
		for c := 0; c < t.nState; c++ {
			EulerZYZ(R, t.alpha[c], t.beta[c], t.gamma[c])
			//The rotation direction depends on which domain's frame the
			//full tensor is expressed in.
			if t.tens.FullInRefFrame[k] {
				rot.Product(R, full, R.T())
			} else {
				rot.Product(R.T(), full, R)
			}
			rot.Scale(t.probs[c], rot)
			ave.Add(ave, rot)
		}
		bc := []float64{ave.At(0, 0), ave.At(1, 1), ave.At(0, 1), ave.At(0, 2), ave.At(1, 2)}
		for j := 0; j < 5; j++ {
			t.RedBC[5*k+j] = bc[j]
			d := (t.tens.Red[5*k+j] - bc[j]) / t.tens.RedErr[5*k+j]
			chi2 += d * d
		}
	}
	return chi2
}

//rdcChi2 back-calculates every coupling as the dipolar constant times the
//population-weighted uT*A*u projection over the ensemble states.
func (t *TargetFunction) rdcChi2() float64 {
	chi2 := 0.0
	for ai := range t.rdc.AlignIDs {
		a5 := t.a5[ai]
		for row := range t.rdc.SpinIdx {
			if !t.rdc.VectOK[row] {
				t.RDCBC[ai][row] = 0
				continue
			}
			ave := 0.0
			for c := 0; c < t.nState; c++ {
				ave += t.probs[c] * projection(t.rdc.Vect[row][c], a5)
			}
			bc := t.rdc.Const[row] * ave
			t.RDCBC[ai][row] = bc
			if !t.rdc.Mask[ai][row] {
				continue
			}
			d := (t.rdc.Val[ai][row] - bc) / t.rdc.Err[ai][row]
			chi2 += d * d
		}
	}
	return chi2
}

//pcsChi2 is the PCS analogue, with the distance- and field-dependent
//constant varying per state.
func (t *TargetFunction) pcsChi2() float64 {
	chi2 := 0.0
	for ai := range t.pcs.AlignIDs {
		a5 := t.a5[ai]
		for row := range t.pcs.SpinIdx {
			if t.pcs.Vect[row] == nil {
				t.PCSBC[ai][row] = 0
				continue
			}
			bc := 0.0
			for c := 0; c < t.nState; c++ {
				bc += t.probs[c] * t.pcs.Const[ai][row][c] * projection(t.pcs.Vect[row][c], a5)
			}
			t.PCSBC[ai][row] = bc
			if !t.pcs.Mask[ai][row] {
				continue
			}
			d := (t.pcs.Val[ai][row] - bc) / t.pcs.Err[ai][row]
			chi2 += d * d
		}
	}
	return chi2
}

//DFunc returns the gradient of the chi-squared by central differences, in
//the same (scaled) space as Func. Analytic gradients could replace this
//without changing the optimizer contract.
func (t *TargetFunction) DFunc(params []float64) []float64 {
	t.gCount++
	grad := make([]float64, len(params))
	x := append([]float64{}, params...)
	for i := range x {
		h := diffStep * math.Max(1.0, math.Abs(x[i]))
		orig := x[i]
		x[i] = orig + h
		fp := t.Func(x)
		x[i] = orig - h
		fm := t.Func(x)
		x[i] = orig
		grad[i] = (fp - fm) / (2.0 * h)
	}
	return grad
}

//D2Func returns the Hessian of the chi-squared by central differences of
//the gradient, symmetrized by averaging the two off-diagonal estimates.
func (t *TargetFunction) D2Func(params []float64) *mat.SymDense {
	t.hCount++
	n := len(params)
	rough := mat.NewDense(n, n, nil)
	x := append([]float64{}, params...)
	for i := 0; i < n; i++ {
		h := diffStep * math.Max(1.0, math.Abs(x[i]))
		orig := x[i]
		x[i] = orig + h
		gp := t.DFunc(x)
		x[i] = orig - h
		gm := t.DFunc(x)
		x[i] = orig
		for j := 0; j < n; j++ {
			rough.Set(i, j, (gp[j]-gm[j])/(2.0*h))
		}
	}
	hess := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			hess.SetSym(i, j, (rough.At(i, j)+rough.At(j, i))/2.0)
		}
	}
	return hess
}

const diffStep = 1e-6

//Commit writes a final (scaled-space) parameter vector into the live
//State: tensors, probabilities and Euler angles through the codec, and
//the freshly back-calculated observables into the spin caches (RDC in
//Hz, PCS converted back to ppm). It returns the chi-squared at those
//parameters. This is the single mutation point of the evaluator; Func
//itself stays pure for gradient checks and tests.
func (t *TargetFunction) Commit(params []float64, simIndex int) (float64, error) {
	if t.scale != nil {
		params = unscaleVector(t.scale, params)
	}
	chi2 := t.evaluate(params)
	if err := DisassembleParamVector(t.st, params, t.dataTypes, simIndex); err != nil {
		return 0, errDecorate(err, "Commit")
	}
	if simIndex >= 0 {
		//Replica results only update the replica-indexed arrays; the
		//live back-calculated caches belong to the live fit.
		return chi2, nil
	}
	if t.rdc != nil {
		for row, si := range t.rdc.SpinIdx {
			if !t.rdc.VectOK[row] {
				continue
			}
			spin := t.st.Spins[si]
			if spin.RDCBC == nil {
				spin.RDCBC = make(map[string]float64, len(t.rdc.AlignIDs))
			}
			for ai, id := range t.rdc.AlignIDs {
				spin.RDCBC[id] = t.RDCBC[ai][row]
			}
		}
	}
	if t.pcs != nil {
		for row, si := range t.pcs.SpinIdx {
			if t.pcs.Vect[row] == nil {
				continue
			}
			spin := t.st.Spins[si]
			if spin.PCSBC == nil {
				spin.PCSBC = make(map[string]float64, len(t.pcs.AlignIDs))
			}
			for ai, id := range t.pcs.AlignIDs {
				spin.PCSBC[id] = t.PCSBC[ai][row] * 1e6
			}
		}
	}
	return chi2, nil
}

//fill3x3 expands 5 independent components (package order) into the full
//symmetric traceless matrix.
func fill3x3(dst *mat.Dense, a5 []float64) {
	axx, ayy, axy, axz, ayz := a5[0], a5[1], a5[2], a5[3], a5[4]
	dst.Set(0, 0, axx)
	dst.Set(0, 1, axy)
	dst.Set(0, 2, axz)
	dst.Set(1, 0, axy)
	dst.Set(1, 1, ayy)
	dst.Set(1, 2, ayz)
	dst.Set(2, 0, axz)
	dst.Set(2, 1, ayz)
	dst.Set(2, 2, -axx-ayy)
}

//Counts returns the accumulated function, gradient and Hessian
//evaluation counts.
func (t *TargetFunction) Counts() (f, g, h int) {
	return t.fCount, t.gCount, t.hCount
}
