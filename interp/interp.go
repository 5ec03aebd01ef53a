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

// Package interp evaluates functions of the IR.
//
// The interpreter is used to check the behavior of generated functions.
// Memory is modelled as typed buffers (see [Buffer]) addressed by
// (buffer, index) pointers. Calls to debug and lifetime intrinsics are
// ignored. Calls to functions without a body fail.
package interp

import (
	"github.com/gx-org/diffir/build/fmterr"
	"github.com/gx-org/diffir/build/ir"
)

// DefaultMaxSteps is the default number of instructions executed before
// the interpreter aborts a call.
const DefaultMaxSteps = 1 << 20

// Option configures an interpreter.
type Option func(*Interpreter)

// WithMaxSteps sets the maximum number of instructions executed by a call.
func WithMaxSteps(n int) Option {
	return func(itp *Interpreter) {
		itp.maxSteps = n
	}
}

// Interpreter runs IR functions.
type Interpreter struct {
	maxSteps int
	steps    int
	allocs   int
}

// New returns a new interpreter.
func New(opts ...Option) *Interpreter {
	itp := &Interpreter{maxSteps: DefaultMaxSteps}
	for _, opt := range opts {
		opt(itp)
	}
	return itp
}

// Steps returns the number of instructions executed by the last call.
func (itp *Interpreter) Steps() int {
	return itp.steps
}

// Call runs a function given its arguments and returns the result.
// The result is nil for functions returning void.
func (itp *Interpreter) Call(fn *ir.Function, args ...any) (any, error) {
	itp.steps = 0
	return itp.call(fn, args)
}

func (itp *Interpreter) call(fn *ir.Function, args []any) (any, error) {
	if fn.IsDeclaration() {
		return nil, fmterr.Errorf(nil, "cannot call %s: function has no body", fn.Ident())
	}
	ft := fn.FuncType()
	if len(args) != ft.NumParams() {
		return nil, fmterr.Errorf(nil, "%s expects %d arguments but got %d", fn.Ident(), ft.NumParams(), len(args))
	}
	fr := newFrame(itp, fn)
	for i, param := range fn.Params() {
		fr.values[param] = args[i]
	}
	return fr.run()
}
