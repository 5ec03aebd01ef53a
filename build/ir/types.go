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
	"fmt"
	"math/bits"

	"github.com/gx-org/diffir/base/stringseq"
	"github.com/gx-org/diffir/build/fmterr"
	"github.com/gx-org/diffir/build/ir/irkind"
)

// Type of an IR value.
//
// Types are immutable and uniqued by a Context: two types with the same
// shape created by the same context are the same pointer, so types can be
// compared with == and used as map keys.
type Type interface {
	// Kind of the type.
	Kind() irkind.Kind
	// String returns the textual form of the type.
	String() string

	irType()
}

type (
	// keywordType is a type with no parameter which cannot hold data
	// (void, label, metadata, token).
	keywordType struct {
		kind irkind.Kind
	}

	// FloatType is a floating-point scalar type.
	FloatType struct {
		kind irkind.Kind
	}

	// IntType is an integer type of arbitrary bit width.
	IntType struct {
		bits int
	}

	// PointerType is a pointer to an element type.
	PointerType struct {
		elem Type
	}

	// ArrayType is a fixed-size array.
	ArrayType struct {
		len  uint64
		elem Type
	}

	// VectorType is a fixed-size vector.
	VectorType struct {
		len  uint64
		elem Type
	}

	// StructType is a structure, either literal (uniqued by its fields)
	// or identified by a name. Named structures may be opaque until their
	// body is set, which is the only way to build a recursive type.
	StructType struct {
		name   string
		fields []Type
		packed bool
		opaque bool
	}

	// FuncType is the type of a function.
	FuncType struct {
		ret      Type
		params   []Type
		variadic bool
	}
)

var (
	_ Type = (*keywordType)(nil)
	_ Type = (*FloatType)(nil)
	_ Type = (*IntType)(nil)
	_ Type = (*PointerType)(nil)
	_ Type = (*ArrayType)(nil)
	_ Type = (*VectorType)(nil)
	_ Type = (*StructType)(nil)
	_ Type = (*FuncType)(nil)
)

func (*keywordType) irType() {}

// Kind of the type.
func (t *keywordType) Kind() irkind.Kind { return t.kind }

func (t *keywordType) String() string { return t.kind.String() }

func (*FloatType) irType() {}

// Kind of the floating-point type.
func (t *FloatType) Kind() irkind.Kind { return t.kind }

// Bits returns the size of the type in bits.
func (t *FloatType) Bits() int { return irkind.FloatBits(t.kind) }

func (t *FloatType) String() string { return t.kind.String() }

func (*IntType) irType() {}

// Kind returns irkind.Integer.
func (*IntType) Kind() irkind.Kind { return irkind.Integer }

// Bits returns the bit width of the integer.
func (t *IntType) Bits() int { return t.bits }

func (t *IntType) String() string { return fmt.Sprintf("i%d", t.bits) }

func (*PointerType) irType() {}

// Kind returns irkind.Pointer.
func (*PointerType) Kind() irkind.Kind { return irkind.Pointer }

// Elem returns the type the pointer points to.
func (t *PointerType) Elem() Type { return t.elem }

func (t *PointerType) String() string { return t.elem.String() + "*" }

func (*ArrayType) irType() {}

// Kind returns irkind.Array.
func (*ArrayType) Kind() irkind.Kind { return irkind.Array }

// Len returns the number of elements in the array.
func (t *ArrayType) Len() uint64 { return t.len }

// Elem returns the type of the array elements.
func (t *ArrayType) Elem() Type { return t.elem }

func (t *ArrayType) String() string { return fmt.Sprintf("[%d x %s]", t.len, t.elem) }

func (*VectorType) irType() {}

// Kind returns irkind.Vector.
func (*VectorType) Kind() irkind.Kind { return irkind.Vector }

// Len returns the number of elements in the vector.
func (t *VectorType) Len() uint64 { return t.len }

// Elem returns the type of the vector elements.
func (t *VectorType) Elem() Type { return t.elem }

func (t *VectorType) String() string { return fmt.Sprintf("<%d x %s>", t.len, t.elem) }

func (*StructType) irType() {}

// Kind returns irkind.Struct.
func (*StructType) Kind() irkind.Kind { return irkind.Struct }

// Name of the structure. Literal structures have no name.
func (t *StructType) Name() string { return t.name }

// IsLiteral returns true if the structure is identified by its fields.
func (t *StructType) IsLiteral() bool { return t.name == "" }

// Opaque returns true if the structure is named and has no body yet.
func (t *StructType) Opaque() bool { return t.opaque }

// Packed returns true if the fields are laid out without padding.
func (t *StructType) Packed() bool { return t.packed }

// NumFields returns the number of fields.
func (t *StructType) NumFields() int { return len(t.fields) }

// Field returns the type of the ith field.
func (t *StructType) Field(i int) Type { return t.fields[i] }

// Fields returns the types of all the fields.
func (t *StructType) Fields() []Type { return append([]Type{}, t.fields...) }

// SetBody sets the fields of an opaque named structure.
func (t *StructType) SetBody(packed bool, fields ...Type) error {
	if t.IsLiteral() {
		return fmterr.Errorf(t, "cannot set the body of a literal structure")
	}
	if !t.opaque {
		return fmterr.Errorf(t, "body of structure %%%s has already been set", t.name)
	}
	t.fields = append([]Type{}, fields...)
	t.packed = packed
	t.opaque = false
	return nil
}

// Body returns the textual form of the structure fields.
func (t *StructType) Body() string {
	if t.opaque {
		return "opaque"
	}
	if len(t.fields) == 0 {
		if t.packed {
			return "<{}>"
		}
		return "{}"
	}
	body := "{ " + stringseq.JoinSlice(t.fields, ", ") + " }"
	if t.packed {
		body = "<" + body + ">"
	}
	return body
}

func (t *StructType) String() string {
	if !t.IsLiteral() {
		return "%" + t.name
	}
	return t.Body()
}

func (*FuncType) irType() {}

// Kind returns irkind.Func.
func (*FuncType) Kind() irkind.Kind { return irkind.Func }

// Result returns the type returned by the function.
func (t *FuncType) Result() Type { return t.ret }

// NumParams returns the number of fixed parameters.
func (t *FuncType) NumParams() int { return len(t.params) }

// Param returns the type of the ith parameter.
func (t *FuncType) Param(i int) Type { return t.params[i] }

// Params returns the types of the fixed parameters.
func (t *FuncType) Params() []Type { return append([]Type{}, t.params...) }

// Variadic returns true if the function accepts a variable number of arguments.
func (t *FuncType) Variadic() bool { return t.variadic }

// ParamsString returns the textual form of the parameter list, without parenthesis.
func (t *FuncType) ParamsString() string {
	params := stringseq.JoinSlice(t.params, ", ")
	if !t.variadic {
		return params
	}
	if params == "" {
		return "..."
	}
	return params + ", ..."
}

func (t *FuncType) String() string {
	return fmt.Sprintf("%s (%s)", t.ret, t.ParamsString())
}

// IsFPOrFPVector returns true if the type is a floating-point scalar
// or a vector of floating-point scalars.
func IsFPOrFPVector(typ Type) bool {
	return irkind.IsFloatKind(ScalarType(typ).Kind())
}

// IsIntOrIntVector returns true if the type is an integer
// or a vector of integers.
func IsIntOrIntVector(typ Type) bool {
	return ScalarType(typ).Kind() == irkind.Integer
}

// ScalarType returns the element type of a vector or the type itself.
func ScalarType(typ Type) Type {
	if vec, ok := typ.(*VectorType); ok {
		return vec.elem
	}
	return typ
}

// PointerSize is the size of a pointer in bytes.
const PointerSize = 8

// StoreSize returns the number of bytes written when storing a value of the type.
// It returns false for types with no fixed size or with a target-dependent layout
// (void, label, functions, non-packed structures).
func StoreSize(typ Type) (uint64, bool) {
	switch t := typ.(type) {
	case *FloatType:
		return uint64(t.Bits()+7) / 8, true
	case *IntType:
		return uint64(t.bits+7) / 8, true
	case *PointerType:
		return PointerSize, true
	case *VectorType:
		size, ok := StoreSize(t.elem)
		return size * t.len, ok
	case *ArrayType:
		size, ok := StoreSize(t.elem)
		return size * t.len, ok
	case *StructType:
		if !t.packed || t.opaque {
			return 0, false
		}
		var total uint64
		for _, field := range t.fields {
			size, ok := StoreSize(field)
			if !ok {
				return 0, false
			}
			total += size
		}
		return total, true
	}
	return 0, false
}

// AllocSize returns the distance in bytes between two consecutive values of
// the type in memory. Scalars and vectors are padded to the next power of two.
// It returns false when StoreSize does.
func AllocSize(typ Type) (uint64, bool) {
	switch t := typ.(type) {
	case *ArrayType:
		size, ok := AllocSize(t.elem)
		return size * t.len, ok
	case *StructType:
		return StoreSize(t)
	}
	size, ok := StoreSize(typ)
	if !ok || size == 0 {
		return size, ok
	}
	return 1 << bits.Len64(size-1), true
}

func isKeyword(typ Type, kind irkind.Kind) bool {
	kw, ok := typ.(*keywordType)
	return ok && kw.kind == kind
}

// IsVoid returns true if the type is void.
func IsVoid(typ Type) bool {
	return isKeyword(typ, irkind.Void)
}
