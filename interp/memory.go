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

package interp

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/gx-org/diffir/build/ir"
)

// Buffer is a contiguous block of memory holding elements of the same type.
//
// Elements are stored as interpreter values: float64 for floating-point
// scalars, int64 for integers, Pointer for pointers, *ir.Function for
// function pointers, and []any for vectors, arrays, and structures.
type Buffer struct {
	name string
	elem ir.Type
	data []any
}

// NewBuffer returns a buffer of n elements initialized to zero.
func NewBuffer(name string, elem ir.Type, n int) *Buffer {
	buf := &Buffer{name: name, elem: elem, data: make([]any, n)}
	for i := range buf.data {
		buf.data[i] = zeroOf(elem)
	}
	return buf
}

// NewFloats returns a buffer of floating-point values.
func NewFloats(name string, elem *ir.FloatType, vals ...float64) *Buffer {
	buf := &Buffer{name: name, elem: elem, data: make([]any, len(vals))}
	for i, val := range vals {
		buf.data[i] = roundFloat(elem, val)
	}
	return buf
}

// Name of the buffer.
func (buf *Buffer) Name() string { return buf.name }

// Elem returns the type of the elements stored in the buffer.
func (buf *Buffer) Elem() ir.Type { return buf.elem }

// Len returns the number of elements in the buffer.
func (buf *Buffer) Len() int { return len(buf.data) }

// At returns a pointer to the ith element of the buffer.
func (buf *Buffer) At(i int) Pointer {
	return Pointer{Buf: buf, Index: int64(i)}
}

// Values returns a copy of the elements of the buffer.
func (buf *Buffer) Values() []any {
	return append([]any{}, buf.data...)
}

// Set the ith element of the buffer.
func (buf *Buffer) Set(i int, val any) error {
	return buf.At(i).store(val)
}

// Floats returns the elements of a buffer of floating-point scalars.
func (buf *Buffer) Floats() ([]float64, error) {
	vals := make([]float64, len(buf.data))
	for i, v := range buf.data {
		f, ok := v.(float64)
		if !ok {
			return nil, errors.Errorf("element %d of buffer %s is a %T, not a float64", i, buf.name, v)
		}
		vals[i] = f
	}
	return vals, nil
}

// Pointer is the address of an element in a buffer.
// The zero value is the null pointer.
type Pointer struct {
	Buf   *Buffer
	Index int64
}

// IsNull returns true for the null pointer.
func (p Pointer) IsNull() bool {
	return p.Buf == nil
}

func (p Pointer) String() string {
	if p.IsNull() {
		return "null"
	}
	return fmt.Sprintf("&%s[%d]", p.Buf.name, p.Index)
}

func (p Pointer) offset(n int64) Pointer {
	return Pointer{Buf: p.Buf, Index: p.Index + n}
}

func (p Pointer) check() error {
	if p.IsNull() {
		return errors.Errorf("null pointer dereference")
	}
	if p.Index < 0 || p.Index >= int64(len(p.Buf.data)) {
		return errors.Errorf("access to %s out of bounds [0, %d)", p, len(p.Buf.data))
	}
	return nil
}

func (p Pointer) load() (any, error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	return p.Buf.data[p.Index], nil
}

func (p Pointer) store(val any) error {
	if err := p.check(); err != nil {
		return err
	}
	p.Buf.data[p.Index] = val
	return nil
}

func zeroOf(typ ir.Type) any {
	switch typT := typ.(type) {
	case *ir.FloatType:
		return float64(0)
	case *ir.IntType:
		return int64(0)
	case *ir.PointerType:
		return Pointer{}
	case *ir.VectorType:
		return zeros(typT.Len(), typT.Elem())
	case *ir.ArrayType:
		return zeros(typT.Len(), typT.Elem())
	case *ir.StructType:
		fields := typT.Fields()
		vals := make([]any, len(fields))
		for i, field := range fields {
			vals[i] = zeroOf(field)
		}
		return vals
	}
	return nil
}

func zeros(n uint64, elem ir.Type) []any {
	vals := make([]any, n)
	for i := range vals {
		vals[i] = zeroOf(elem)
	}
	return vals
}
