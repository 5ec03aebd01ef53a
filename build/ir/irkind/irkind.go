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

// Package irkind defines kinds of the IR types.
package irkind

import "github.com/gx-org/backend/dtype"

// Kind of a type.
type Kind uint

// Kinds of IR types.
const (
	Invalid Kind = iota

	// Void is the type of instructions producing no value.
	Void
	// Label is the type of basic blocks.
	Label
	// Metadata is the type of metadata operands.
	Metadata
	// Token is an opaque type used by some intrinsics.
	Token

	// Half is a 16-bit IEEE floating-point.
	Half
	// BFloat is a 16-bit brain floating-point.
	BFloat
	// Float is a 32-bit IEEE floating-point.
	Float
	// Double is a 64-bit IEEE floating-point.
	Double
	// X86FP80 is the 80-bit x87 extended precision floating-point.
	X86FP80
	// FP128 is a 128-bit IEEE floating-point.
	FP128

	// Integer of arbitrary bit width.
	Integer

	Pointer
	Array
	Vector
	Struct
	Func

	// Max value for a Kind constant.
	Max
)

// String returns a string representation of a kind.
func (k Kind) String() string {
	switch k {
	case Void:
		return "void"
	case Label:
		return "label"
	case Metadata:
		return "metadata"
	case Token:
		return "token"
	case Half:
		return "half"
	case BFloat:
		return "bfloat"
	case Float:
		return "float"
	case Double:
		return "double"
	case X86FP80:
		return "x86_fp80"
	case FP128:
		return "fp128"
	case Integer:
		return "integer"
	case Pointer:
		return "pointer"
	case Array:
		return "array"
	case Vector:
		return "vector"
	case Struct:
		return "struct"
	case Func:
		return "func"
	}
	return "invalid"
}

// KindFromString returns the kind of a keyword type.
// Integer, derived, and aggregate types have no keyword and return Invalid.
func KindFromString(ident string) Kind {
	switch ident {
	case "void":
		return Void
	case "label":
		return Label
	case "metadata":
		return Metadata
	case "token":
		return Token
	case "half":
		return Half
	case "bfloat":
		return BFloat
	case "float":
		return Float
	case "double":
		return Double
	case "x86_fp80":
		return X86FP80
	case "fp128":
		return FP128
	default:
		return Invalid
	}
}

// IsFloatKind returns true if the kind is a floating-point scalar.
func IsFloatKind(k Kind) bool {
	switch k {
	case Half, BFloat, Float, Double, X86FP80, FP128:
		return true
	}
	return false
}

// IsAggregateKind returns true if values of the kind are made of several elements.
func IsAggregateKind(k Kind) bool {
	switch k {
	case Array, Vector, Struct:
		return true
	}
	return false
}

// FloatBits returns the size in bits of a floating-point kind, 0 for other kinds.
func FloatBits(k Kind) int {
	switch k {
	case Half, BFloat:
		return 16
	case Float:
		return 32
	case Double:
		return 64
	case X86FP80:
		return 80
	case FP128:
		return 128
	}
	return 0
}

// DType converts a floating-point kind into a backend array data type.
// Kinds the backend cannot store return dtype.Invalid.
func (k Kind) DType() dtype.DataType {
	switch k {
	case BFloat:
		return dtype.Bfloat16
	case Float:
		return dtype.Float32
	case Double:
		return dtype.Float64
	}
	return dtype.Invalid
}
