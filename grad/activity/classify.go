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
	"github.com/pkg/errors"
	"github.com/gx-org/diffir/build/fmterr"
	"github.com/gx-org/diffir/build/ir"
)

var (
	// ErrUnsupportedType is returned when a type has no differentiability rule.
	ErrUnsupportedType = errors.New("unsupported type shape")

	// ErrRecursiveType is returned when a type contains itself.
	ErrRecursiveType = errors.New("recursive type")
)

type classifier struct {
	// path is the set of types being classified from the root to the current type.
	path map[ir.Type]bool
}

// Classify returns how values of a given type carry derivatives.
//
// Floating-point scalars and vectors are Accumulated, integers and functions
// are Inert. A pointer is Shadowed if its pointee is not Inert. Arrays and
// vectors are classified like their element. A structure combines the
// classification of its fields.
//
// Classification fails for types with no differentiability rule (void,
// label, metadata, token) and for types containing themselves.
func Classify(typ ir.Type) (Activity, error) {
	c := classifier{path: make(map[ir.Type]bool)}
	return c.classify(typ)
}

func (c *classifier) classify(typ ir.Type) (Activity, error) {
	if c.path[typ] {
		return Inert, fmterr.At(typ, errors.WithStack(ErrRecursiveType))
	}
	c.path[typ] = true
	defer delete(c.path, typ)
	switch typT := typ.(type) {
	case *ir.PointerType:
		elem, err := c.classify(typT.Elem())
		if err != nil {
			return Inert, err
		}
		if elem == Inert {
			return Inert, nil
		}
		return Shadowed, nil
	case *ir.ArrayType:
		return c.classify(typT.Elem())
	case *ir.VectorType:
		return c.classify(typT.Elem())
	case *ir.StructType:
		return c.classifyStruct(typT)
	case *ir.IntType, *ir.FuncType:
		return Inert, nil
	case *ir.FloatType:
		return Accumulated, nil
	}
	return Inert, fmterr.At(typ, errors.WithStack(ErrUnsupportedType))
}

func (c *classifier) classifyStruct(typ *ir.StructType) (Activity, error) {
	res := Inert
	for _, field := range typ.Fields() {
		act, err := c.classify(field)
		if err != nil {
			return Inert, err
		}
		if res = Combine(res, act); res == Shadowed {
			return Shadowed, nil
		}
	}
	return res, nil
}
