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

package ir

import (
	"github.com/pkg/errors"
	"github.com/gx-org/diffir/build/fmterr"
	"github.com/gx-org/diffir/build/ir/irkind"
)

var (
	// ErrUnsupportedBitWidth is returned when a type has no equal-width
	// reinterpretation between floating-point and integer.
	ErrUnsupportedBitWidth = errors.New("unsupported bit width")

	// ErrNotFloat is returned when a floating-point type (or vector of) was expected.
	ErrNotFloat = errors.New("not a floating-point type")

	// ErrNotInt is returned when an integer type (or vector of) was expected.
	ErrNotInt = errors.New("not an integer type")
)

// FloatToIntType returns the integer type with the same bit width as a
// floating-point type. Vectors are converted element-wise.
// Only IEEE half, float, and double are supported.
func (ctx *Context) FloatToIntType(typ Type) (Type, error) {
	if vec, ok := typ.(*VectorType); ok {
		elem, err := ctx.FloatToIntType(vec.elem)
		if err != nil {
			return nil, err
		}
		return ctx.Vector(vec.len, elem), nil
	}
	if !irkind.IsFloatKind(typ.Kind()) {
		return nil, fmterr.At(typ, ErrNotFloat)
	}
	switch typ.Kind() {
	case irkind.Half:
		return ctx.Int(16), nil
	case irkind.Float:
		return ctx.Int(32), nil
	case irkind.Double:
		return ctx.Int(64), nil
	}
	return nil, fmterr.At(typ, errors.Wrapf(ErrUnsupportedBitWidth, "%s to integer", typ.Kind()))
}

// IntToFloatType returns the floating-point type with the same bit width as an
// integer type. Vectors are converted element-wise.
// Only 16, 32, and 64-bit integers are supported.
func (ctx *Context) IntToFloatType(typ Type) (Type, error) {
	if vec, ok := typ.(*VectorType); ok {
		elem, err := ctx.IntToFloatType(vec.elem)
		if err != nil {
			return nil, err
		}
		return ctx.Vector(vec.len, elem), nil
	}
	intType, ok := typ.(*IntType)
	if !ok {
		return nil, fmterr.At(typ, ErrNotInt)
	}
	switch intType.bits {
	case 16:
		return ctx.Half(), nil
	case 32:
		return ctx.Float(), nil
	case 64:
		return ctx.Double(), nil
	}
	return nil, fmterr.At(typ, errors.Wrapf(ErrUnsupportedBitWidth, "i%d to floating-point", intType.bits))
}
