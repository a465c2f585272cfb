/*
 * minimise.go, part of gonstate.
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
	"gonum.org/v1/gonum/optimize"
)

//MinimiseOptions configures a single optimization run.
type MinimiseOptions struct {
	//Algorithm selects the minimizer: "simplex" (Nelder-Mead), "bfgs",
	//"newton", or "grid".
	Algorithm string
	//FuncTol terminates the optimization when the chi-squared stops
	//improving by more than this amount.
	FuncTol float64
	//GradTol, when > 0, adds a gradient-threshold termination test.
	GradTol float64
	//MaxIterations caps the iteration count. Hitting the cap is a
	//warning, not a failure: the best parameters found are kept.
	MaxIterations int
	//Constraints applies the probability-simplex constraint system.
	Constraints bool
	//Scaling enables diagonal parameter scaling.
	Scaling bool
	//SimIndex selects the Monte Carlo replica to optimize, or NoSim for
	//the live parameters.
	SimIndex int
	//Lower, Upper and GridIncs configure the grid search. Nil bounds
	//fall back to the per-parameter defaults.
	Lower, Upper []float64
	GridIncs     []int

	Logger *slog.Logger
}

//DefaultMinimiseOptions returns reasonable options: constrained,
//scaled Nelder-Mead.
func DefaultMinimiseOptions() *MinimiseOptions {
	r := new(MinimiseOptions)
	r.Algorithm = "simplex"
	r.FuncTol = 1e-10
	r.MaxIterations = 10000
	r.Constraints = true
	r.Scaling = true
	r.SimIndex = NoSim
	return r
}

//penaltyWeight multiplies the exterior constraint penalty handed to
//minimizers without native linear-constraint support. Violations of the
//simplex are of order 1 while chi-squared values span many orders of
//magnitude, hence the large factor.
const penaltyWeight = 1e9

//Minimise optimizes the N-state model parameters of the state against
//all data present on it. The final parameters, chi-squared, evaluation
//counts, optimizer warning and Q-factors are stored on the state (in the
//replica slots when opts.SimIndex >= 0). A chi-squared of NaN or
//infinity is a fatal error, reported distinctly from an optimizer
//warning such as an iteration limit.
func Minimise(st *State, opts *MinimiseOptions) error {
	if opts == nil {
		opts = DefaultMinimiseOptions()
	}
	lg := opts.Logger
	if lg == nil {
		lg = slog.Default()
	}
	if st.Model == nil {
		return Errorf(ErrNoModel, "Minimise: no N-state model has been set up")
	}
	if st.Model.Kind == Model2Domain && st.Model.RefDomain == "" {
		return Errorf(ErrNoRefDomain, "Minimise: the 2-domain model requires a reference domain")
	}
	dataTypes := st.DataTypes()
	if len(dataTypes) == 0 {
		return Errorf(ErrNoData, "Minimise: neither RDC, PCS nor tensor data is present for the selected spins")
	}
	if opts.SimIndex >= len(st.Chi2Sim) {
		return Errorf(ErrInvalidParam, "Minimise: Monte Carlo replica %d has not been set up", opts.SimIndex)
	}

	scale, err := ScalingMatrix(st, dataTypes, opts.Scaling)
	if err != nil {
		return errDecorate(err, "Minimise")
	}
	x0, err := AssembleParamVector(st, dataTypes, opts.SimIndex)
	if err != nil {
		return errDecorate(err, "Minimise")
	}
	var A *mat.Dense
	var b []float64
	if opts.Constraints {
		if A, b, err = LinearConstraints(st, dataTypes, scale); err != nil {
			return errDecorate(err, "Minimise")
		}
	}
	tf, err := NewTargetFunction(st, dataTypes, scale, lg)
	if err != nil {
		return errDecorate(err, "Minimise")
	}

	var best []float64
	warning := ""
	iters := 0
	switch {
	case len(x0) == 0:
		//A fixed model against tensor data alone has nothing to
		//optimize; evaluate and store.
		best = x0
	case opts.Algorithm == "grid":
		best, iters, err = gridSearch(tf, st, dataTypes, scale, A, b, opts)
		if err != nil {
			return errDecorate(err, "Minimise")
		}
	default:
		best, warning, iters, err = driverMinimise(tf, scaleVector(scale, x0), A, b, opts)
		if err != nil {
			return errDecorate(err, "Minimise")
		}
	}

	chi2, err := tf.Commit(best, opts.SimIndex)
	if err != nil {
		return errDecorate(err, "Minimise")
	}
	if math.IsInf(chi2, 0) {
		return Errorf(ErrInf, "Minimise: the chi-squared value is infinite")
	}
	if math.IsNaN(chi2) {
		return Errorf(ErrNaN, "Minimise: the chi-squared value is NaN")
	}
	if warning != "" {
		lg.Warn("optimization did not fully converge", "warning", warning)
	}

	f, g, h := tf.Counts()
	if opts.SimIndex >= 0 {
		st.Chi2Sim[opts.SimIndex] = chi2
		st.WarningSim[opts.SimIndex] = warning
		return nil
	}
	st.Chi2 = chi2
	st.Iter = iters
	st.FCount = f
	st.GCount = g
	st.HCount = h
	st.Warning = warning
	if hasData(dataTypes, DataRDC) {
		if st.QRDCAlign, st.QRDC, err = tf.QFactorsRDC(); err != nil {
			return errDecorate(err, "Minimise")
		}
	}
	if hasData(dataTypes, DataPCS) {
		if st.QPCSAlign, st.QPCS, err = tf.QFactorsPCS(); err != nil {
			return errDecorate(err, "Minimise")
		}
	}
	return nil
}

//driverMinimise runs one of the gonum minimizers in scaled space.
//Linear constraints are enforced through an exterior quadratic penalty;
//the penalty vanishes on the feasible set, so a feasible optimum is
//unbiased.
func driverMinimise(tf *TargetFunction, xs0 []float64, A *mat.Dense, b []float64, opts *MinimiseOptions) ([]float64, string, int, error) {
	objective := func(x []float64) float64 {
		chi2 := tf.Func(x)
		if A != nil {
			chi2 += penaltyWeight * constraintPenalty(A, b, x)
		}
		return chi2
	}
	problem := optimize.Problem{
		Func: objective,
		Grad: func(grad, x []float64) {
			copy(grad, numericalGradient(objective, x))
			tf.gCount++
		},
		Hess: func(hess *mat.SymDense, x []float64) {
			hess.CopySym(tf.D2Func(x))
		},
	}

	var method optimize.Method
	switch opts.Algorithm {
	case "", "simplex":
		method = &optimize.NelderMead{}
	case "bfgs":
		method = &optimize.BFGS{}
	case "newton":
		method = &optimize.Newton{}
	default:
		return nil, "", 0, Errorf(ErrInvalidParam, "driverMinimise: unknown minimization algorithm %q", opts.Algorithm)
	}

	settings := &optimize.Settings{
		MajorIterations:   opts.MaxIterations,
		GradientThreshold: opts.GradTol,
		Converger: &optimize.FunctionConverge{
			Absolute:   opts.FuncTol,
			Iterations: 50,
		},
	}

	result, err := optimize.Minimize(problem, xs0, settings, method)
	if result == nil {
		return nil, "", 0, Errorf(ErrNaN, "driverMinimise: the minimizer failed outright: %v", err)
	}
	//A non-nil error alongside a usable result is a non-convergence
	//warning: the parameters are accepted and stored.
	warning := ""
	if err != nil {
		warning = err.Error()
	} else if result.Status == optimize.IterationLimit || result.Status == optimize.FunctionEvaluationLimit {
		warning = "maximum iterations reached"
	}
	return result.X, warning, result.Stats.MajorIterations, nil
}

//numericalGradient is a plain central-difference gradient of an
//arbitrary closure, used when the penalty term makes the cached DFunc
//inapplicable.
func numericalGradient(f func([]float64) float64, params []float64) []float64 {
	grad := make([]float64, len(params))
	x := append([]float64{}, params...)
	for i := range x {
		h := diffStep * math.Max(1.0, math.Abs(x[i]))
		orig := x[i]
		x[i] = orig + h
		fp := f(x)
		x[i] = orig - h
		fm := f(x)
		x[i] = orig
		grad[i] = (fp - fm) / (2.0 * h)
	}
	return grad
}

//GridSearch runs a constrained grid search over the model parameters.
//inc gives the number of grid nodes per dimension; a single-element
//slice is broadcast to every dimension. Nil lower/upper bounds use the
//per-parameter defaults: probabilities in [0,1], alpha and gamma in
//[0,2pi], beta in [0,pi] and tensor components in [-1e-3,1e-3].
func GridSearch(st *State, inc []int, opts *MinimiseOptions) error {
	if opts == nil {
		opts = DefaultMinimiseOptions()
	}
	opts.Algorithm = "grid"
	opts.GridIncs = inc
	return errDecorate(Minimise(st, opts), "GridSearch")
}

//gridSearch walks the cartesian grid in scaled space, skipping nodes
//that violate the constraints, and returns the best node.
func gridSearch(tf *TargetFunction, st *State, dataTypes []DataType, scale *mat.DiagDense, A *mat.Dense, b []float64, opts *MinimiseOptions) ([]float64, int, error) {
	lower, upper := opts.Lower, opts.Upper
	if lower == nil || upper == nil {
		dl, du, err := paramBounds(st, dataTypes)
		if err != nil {
			return nil, 0, errDecorate(err, "gridSearch")
		}
		if lower == nil {
			lower = dl
		}
		if upper == nil {
			upper = du
		}
	}
	n := len(lower)
	if len(upper) != n {
		panic(ErrParamVectorLength)
	}
	incs := opts.GridIncs
	if len(incs) == 1 {
		bc := incs[0]
		incs = make([]int, n)
		for i := range incs {
			incs[i] = bc
		}
	}
	if len(incs) != n {
		return nil, 0, Errorf(ErrInvalidParam, "gridSearch: %d increments for %d parameters", len(incs), n)
	}
	lower = scaleVector(scale, lower)
	upper = scaleVector(scale, upper)

	idx := make([]int, n)
	x := make([]float64, n)
	var best []float64
	fbest := math.Inf(1)
	points := 0
	for {
		for i := range x {
			if incs[i] < 2 {
				x[i] = lower[i]
			} else {
				x[i] = lower[i] + float64(idx[i])*(upper[i]-lower[i])/float64(incs[i]-1)
			}
		}
		if constraintsSatisfied(A, b, x) {
			points++
			if f := tf.Func(x); f < fbest {
				fbest = f
				best = append(best[:0:0], x...)
			}
		}
		//Odometer increment.
		k := 0
		for ; k < n; k++ {
			idx[k]++
			if idx[k] < incs[k] {
				break
			}
			idx[k] = 0
		}
		if k == n {
			break
		}
	}
	if best == nil {
		return nil, 0, Errorf(ErrNoData, "gridSearch: no grid node satisfies the constraints")
	}
	return best, points, nil
}

//paramBounds returns the default grid bounds, walking the parameter
//layout in codec order.
func paramBounds(st *State, dataTypes []DataType) (lower, upper []float64, err error) {
	if st.Model == nil {
		return nil, nil, Errorf(ErrNoModel, "paramBounds: no N-state model has been selected")
	}
	for i := 0; i < tensorParamNum(st, dataTypes); i++ {
		lower = append(lower, -1e-3)
		upper = append(upper, 1e-3)
	}
	for i := 0; i < probParamNum(st); i++ {
		lower = append(lower, 0.0)
		upper = append(upper, 1.0)
	}
	if st.Model.Kind == Model2Domain {
		for c := 0; c < st.Model.N; c++ {
			lower = append(lower, 0.0, 0.0, 0.0)
			upper = append(upper, 2.0*math.Pi, math.Pi, 2.0*math.Pi)
		}
	}
	return lower, upper, nil
}
