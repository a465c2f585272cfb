/*
 * errors.go, part of gonstate.
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
	"errors"
	"fmt"
)

//Sentinel error kinds. Every error returned by this package wraps one of
//these, so callers can classify failures with errors.Is without parsing
//messages. The split follows the package contract: configuration and data
//errors abort before any optimization, numerical errors abort a finished
//optimization, and invariant violations mean the caller asked for a
//parameter that does not exist in the selected model.
var (
	//Configuration errors.
	ErrNoModel        = errors.New("no N-state model has been set up")
	ErrNoTensor       = errors.New("alignment tensor not found")
	ErrNoRefDomain    = errors.New("the reference domain has not been set")
	ErrTooManyDomains = errors.New("more than two domains defined for a 2-domain model")
	ErrNoParamagCentre = errors.New("the paramagnetic centre has not been set")
	ErrNoTemperature   = errors.New("the experiment temperature has not been set")
	ErrNoFrequency     = errors.New("the spectrometer frequency has not been set")

	//Data errors.
	ErrNoData        = errors.New("neither RDC, PCS nor tensor data is present for the selected spins")
	ErrPosMismatch   = errors.New("ensemble position counts do not match")
	ErrUnknownIsotope = errors.New("unknown isotope type")
	ErrZeroError      = errors.New("measurement with an error of exactly zero")

	//Numerical errors.
	ErrInf = errors.New("the chi-squared value is infinite")
	ErrNaN = errors.New("the chi-squared value is not a number (NaN)")

	//Invariant violations.
	ErrInvalidParam = errors.New("parameter does not exist for the selected model")
)

//Error is the concrete error type of the package. It pairs a message with
//the sentinel kind it wraps and a decoration trace that accumulates the
//names of the functions the error passed through.
type Error struct {
	message string
	kind    error
	deco    []string
}

//Error returns a string with an error message.
func (err *Error) Error() string {
	return err.message
}

//Unwrap returns the sentinel kind of the error, for use with errors.Is.
func (err *Error) Unwrap() error {
	return err.kind
}

//Decorate will add the dec string to the decoration slice of strings of the
//error and return the resulting slice. If passed an empty string it only
//returns the current trace.
func (err *Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//Errorf builds an *Error of the given kind with an fmt-style message.
func Errorf(kind error, format string, a ...interface{}) *Error {
	return &Error{message: fmt.Sprintf(format, a...), kind: kind}
}

//errDecorate adds the caller's name to the trace of err when err is an
//*Error, and returns err unchanged otherwise.
func errDecorate(err error, caller string) error {
	err2, ok := err.(*Error)
	if !ok {
		return err
	}
	err2.Decorate(caller)
	return err2
}

//PanicMsg is the type used for programming-contract violations, where
//continuing would silently corrupt results. It satisfies error so the
//messages can be matched in recover blocks of the tests.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrParamVectorLength = PanicMsg("nstate: parameter vector length does not match the model layout")
	ErrNotLength3        = PanicMsg("nstate: a cartesian vector must have 3 elements")
	ErrWeightByZero      = PanicMsg("nstate: chi-squared weighting by an error of zero")
	ErrRaggedData        = PanicMsg("nstate: assembled data arrays are not rectangular")
)
