// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package activity

import (
	"fmt"

	"github.com/gx-org/diffir/build/fmterr"
	"github.com/gx-org/diffir/build/ir"
)

// Signature is the classification of the parameters and the result of a function.
type Signature struct {
	Params []Activity
	Result Activity
}

// ClassifySignature classifies the parameters and the result of a function type.
// A void result is Inert. Errors of all parameters are reported.
func ClassifySignature(ft *ir.FuncType) (*Signature, error) {
	sig := &Signature{Params: make([]Activity, ft.NumParams())}
	var errs fmterr.Errors
	for i, param := range ft.Params() {
		act, err := Classify(param)
		if err != nil {
			errs.Append(fmterr.PrefixWith("parameter %d: ", i)(err))
			continue
		}
		sig.Params[i] = act
	}
	if !ir.IsVoid(ft.Result()) {
		act, err := Classify(ft.Result())
		if err != nil {
			errs.Append(fmterr.PrefixWith("result: ")(err))
		}
		sig.Result = act
	}
	if !errs.Empty() {
		return nil, fmterr.At(ft, errs.ToError())
	}
	return sig, nil
}

func (sig *Signature) String() string {
	return fmt.Sprintf("%v -> %v", sig.Params, sig.Result)
}

// ReturnType describes the values returned by a generated derivative function.
type ReturnType int

// Shapes of the values returned by a derivative function.
// The tape is the data the forward pass records for the reverse pass.
const (
	// Args returns only the derivatives of the arguments.
	Args ReturnType = iota
	// ArgsWithReturn also returns one value computed by the primal function.
	ArgsWithReturn
	// ArgsWithTwoReturns also returns the primal result and its shadow.
	ArgsWithTwoReturns
	// Tape returns the tape.
	Tape
	// TapeAndReturn returns the tape and one value.
	TapeAndReturn
	// TapeAndTwoReturns returns the tape, the primal result, and its shadow.
	TapeAndTwoReturns
)

var returnTypeNames = [...]string{
	Args:               "args",
	ArgsWithReturn:     "args_with_return",
	ArgsWithTwoReturns: "args_with_two_returns",
	Tape:               "tape",
	TapeAndReturn:      "tape_and_return",
	TapeAndTwoReturns:  "tape_and_two_returns",
}

func (r ReturnType) String() string {
	if r < Args || r > TapeAndTwoReturns {
		return fmt.Sprintf("ReturnType(%d)", int(r))
	}
	return returnTypeNames[r]
}

// NumReturns returns the number of values, excluding the tape, returned by the derivative function.
func (r ReturnType) NumReturns() int {
	switch r {
	case ArgsWithReturn, TapeAndReturn:
		return 1
	case ArgsWithTwoReturns, TapeAndTwoReturns:
		return 2
	}
	return 0
}

// HasTape returns true if the derivative function returns a tape.
func (r ReturnType) HasTape() bool {
	return r >= Tape
}

// ReturnTypeOf returns the shape of the values returned by a derivative function.
// The function returns the primal result if returnPrimal is true, and the
// shadow of the result if the result is Shadowed.
func ReturnTypeOf(ret Activity, returnPrimal, withTape bool) ReturnType {
	n := 0
	if returnPrimal {
		n++
	}
	if ret == Shadowed {
		n++
	}
	base := Args
	if withTape {
		base = Tape
	}
	return base + ReturnType(n)
}
