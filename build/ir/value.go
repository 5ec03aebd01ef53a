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
	"strconv"

	"github.com/gx-org/diffir/build/ir/irkind"
)

// Value is an operand of an instruction.
type Value interface {
	// Type of the value.
	Type() Type
	// Ident returns how the value is spelled when used as an operand.
	Ident() string
}

// Operand returns the textual form of a value used as an operand,
// that is its type followed by its identifier.
func Operand(v Value) string {
	return v.Type().String() + " " + v.Ident()
}

type (
	// ConstInt is an integer constant.
	ConstInt struct {
		Typ *IntType
		Val int64
	}

	// ConstFloat is a floating-point scalar constant.
	ConstFloat struct {
		Typ *FloatType
		Val float64
	}

	// ConstZero is the zero value of any type.
	ConstZero struct {
		Typ Type
	}

	// MetadataString is an opaque metadata operand, passed to debug intrinsics.
	MetadataString struct {
		Typ  Type
		Text string
	}

	// Param is a parameter of a function.
	Param struct {
		name  string
		typ   Type
		fn    *Function
		index int
	}
)

var (
	_ Value = (*ConstInt)(nil)
	_ Value = (*ConstFloat)(nil)
	_ Value = (*ConstZero)(nil)
	_ Value = (*MetadataString)(nil)
	_ Value = (*Param)(nil)
)

// Type of the constant.
func (c *ConstInt) Type() Type { return c.Typ }

// Ident returns the decimal representation of the constant.
func (c *ConstInt) Ident() string {
	if c.Typ.bits == 1 {
		return strconv.FormatBool(c.Val != 0)
	}
	return strconv.FormatInt(c.Val, 10)
}

// Type of the constant.
func (c *ConstFloat) Type() Type { return c.Typ }

// Ident returns the constant in scientific notation.
func (c *ConstFloat) Ident() string { return formatFloat(c.Val) }

func formatFloat(x float64) string {
	return fmt.Sprintf("%e", x)
}

// Type of the constant.
func (c *ConstZero) Type() Type { return c.Typ }

// Ident returns the spelling of zero for the constant type.
func (c *ConstZero) Ident() string {
	switch c.Typ.Kind() {
	case irkind.Integer:
		if c.Typ.(*IntType).bits == 1 {
			return "false"
		}
		return "0"
	case irkind.Pointer:
		return "null"
	}
	if irkind.IsFloatKind(c.Typ.Kind()) {
		return formatFloat(0)
	}
	return "zeroinitializer"
}

// Type returns the metadata type.
func (m *MetadataString) Type() Type { return m.Typ }

// Ident returns the metadata text.
func (m *MetadataString) Ident() string { return m.Text }

// Name of the parameter.
func (p *Param) Name() string { return p.name }

// Type of the parameter.
func (p *Param) Type() Type { return p.typ }

// Ident returns the parameter name as a local identifier.
func (p *Param) Ident() string { return "%" + p.name }

// Function owning the parameter.
func (p *Param) Function() *Function { return p.fn }

// Index of the parameter in the function signature.
func (p *Param) Index() int { return p.index }

func (p *Param) String() string { return Operand(p) }
