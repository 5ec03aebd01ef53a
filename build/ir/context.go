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
	"iter"
	"strings"

	"github.com/gx-org/diffir/base/ordered"
	"github.com/gx-org/diffir/base/uname"
	"github.com/gx-org/diffir/build/ir/irkind"
)

type seqKey struct {
	len  uint64
	elem Type
}

// Context owns and uniques types.
//
// A context is not safe for concurrent use: types are created lazily
// and cached. Independent modules should use independent contexts.
type Context struct {
	keywords map[irkind.Kind]*keywordType
	floats   map[irkind.Kind]*FloatType
	ints     map[int]*IntType
	pointers map[Type]*PointerType
	arrays   map[seqKey]*ArrayType
	vectors  map[seqKey]*VectorType
	literals map[string]*StructType
	funcs    map[string]*FuncType

	named     *ordered.Map[string, *StructType]
	typeNames *uname.Unique

	ids    map[Type]int
	nextID int
}

// NewContext returns a new type context.
func NewContext() *Context {
	return &Context{
		keywords:  make(map[irkind.Kind]*keywordType),
		floats:    make(map[irkind.Kind]*FloatType),
		ints:      make(map[int]*IntType),
		pointers:  make(map[Type]*PointerType),
		arrays:    make(map[seqKey]*ArrayType),
		vectors:   make(map[seqKey]*VectorType),
		literals:  make(map[string]*StructType),
		funcs:     make(map[string]*FuncType),
		named:     ordered.NewMap[string, *StructType](),
		typeNames: uname.New(),
		ids:       make(map[Type]int),
	}
}

func (ctx *Context) register(typ Type) {
	ctx.ids[typ] = ctx.nextID
	ctx.nextID++
}

// id returns the identity number of a type created by the context.
// Types from other contexts get a new number so that they never collide.
func (ctx *Context) id(typ Type) int {
	id, ok := ctx.ids[typ]
	if !ok {
		ctx.register(typ)
		id = ctx.ids[typ]
	}
	return id
}

func (ctx *Context) keyOf(types []Type) string {
	var b strings.Builder
	for _, typ := range types {
		fmt.Fprintf(&b, "%d,", ctx.id(typ))
	}
	return b.String()
}

func (ctx *Context) keyword(kind irkind.Kind) Type {
	if t, ok := ctx.keywords[kind]; ok {
		return t
	}
	t := &keywordType{kind: kind}
	ctx.keywords[kind] = t
	ctx.register(t)
	return t
}

// Void returns the void type.
func (ctx *Context) Void() Type { return ctx.keyword(irkind.Void) }

// Label returns the type of basic blocks.
func (ctx *Context) Label() Type { return ctx.keyword(irkind.Label) }

// Metadata returns the metadata type.
func (ctx *Context) Metadata() Type { return ctx.keyword(irkind.Metadata) }

// Token returns the token type.
func (ctx *Context) Token() Type { return ctx.keyword(irkind.Token) }

// FloatOf returns the floating-point type of a given kind.
// It returns nil if the kind is not a floating-point kind.
func (ctx *Context) FloatOf(kind irkind.Kind) *FloatType {
	if !irkind.IsFloatKind(kind) {
		return nil
	}
	if t, ok := ctx.floats[kind]; ok {
		return t
	}
	t := &FloatType{kind: kind}
	ctx.floats[kind] = t
	ctx.register(t)
	return t
}

// Half returns the 16-bit IEEE floating-point type.
func (ctx *Context) Half() *FloatType { return ctx.FloatOf(irkind.Half) }

// BFloat returns the 16-bit brain floating-point type.
func (ctx *Context) BFloat() *FloatType { return ctx.FloatOf(irkind.BFloat) }

// Float returns the 32-bit IEEE floating-point type.
func (ctx *Context) Float() *FloatType { return ctx.FloatOf(irkind.Float) }

// Double returns the 64-bit IEEE floating-point type.
func (ctx *Context) Double() *FloatType { return ctx.FloatOf(irkind.Double) }

// X86FP80 returns the 80-bit x87 floating-point type.
func (ctx *Context) X86FP80() *FloatType { return ctx.FloatOf(irkind.X86FP80) }

// FP128 returns the 128-bit IEEE floating-point type.
func (ctx *Context) FP128() *FloatType { return ctx.FloatOf(irkind.FP128) }

// Int returns the integer type of a given bit width.
func (ctx *Context) Int(bits int) *IntType {
	if t, ok := ctx.ints[bits]; ok {
		return t
	}
	t := &IntType{bits: bits}
	ctx.ints[bits] = t
	ctx.register(t)
	return t
}

// Pointer returns the type of pointers to elem.
func (ctx *Context) Pointer(elem Type) *PointerType {
	if t, ok := ctx.pointers[elem]; ok {
		return t
	}
	t := &PointerType{elem: elem}
	ctx.pointers[elem] = t
	ctx.register(t)
	return t
}

// Array returns the type of arrays of n elements.
func (ctx *Context) Array(n uint64, elem Type) *ArrayType {
	key := seqKey{len: n, elem: elem}
	if t, ok := ctx.arrays[key]; ok {
		return t
	}
	t := &ArrayType{len: n, elem: elem}
	ctx.arrays[key] = t
	ctx.register(t)
	return t
}

// Vector returns the type of vectors of n elements.
func (ctx *Context) Vector(n uint64, elem Type) *VectorType {
	key := seqKey{len: n, elem: elem}
	if t, ok := ctx.vectors[key]; ok {
		return t
	}
	t := &VectorType{len: n, elem: elem}
	ctx.vectors[key] = t
	ctx.register(t)
	return t
}

func (ctx *Context) literal(packed bool, fields []Type) *StructType {
	key := fmt.Sprintf("%t:%s", packed, ctx.keyOf(fields))
	if t, ok := ctx.literals[key]; ok {
		return t
	}
	t := &StructType{fields: append([]Type{}, fields...), packed: packed}
	ctx.literals[key] = t
	ctx.register(t)
	return t
}

// Struct returns a literal structure type.
func (ctx *Context) Struct(fields ...Type) *StructType {
	return ctx.literal(false, fields)
}

// PackedStruct returns a literal packed structure type.
func (ctx *Context) PackedStruct(fields ...Type) *StructType {
	return ctx.literal(true, fields)
}

// NamedStruct creates a new opaque named structure.
// If the name is already used, a numerical suffix is appended to make it unique.
func (ctx *Context) NamedStruct(name string) *StructType {
	t := &StructType{name: ctx.typeNames.Name(name), opaque: true}
	ctx.named.Store(t.name, t)
	ctx.register(t)
	return t
}

// LookupStruct returns a named structure given its name, nil if none exists.
func (ctx *Context) LookupStruct(name string) *StructType {
	t, _ := ctx.named.Load(name)
	return t
}

// NamedStructs iterates over named structures in creation order.
func (ctx *Context) NamedStructs() iter.Seq[*StructType] {
	return ctx.named.Values()
}

// Func returns a function type.
func (ctx *Context) Func(ret Type, params []Type, variadic bool) *FuncType {
	key := fmt.Sprintf("%d(%s)%t", ctx.id(ret), ctx.keyOf(params), variadic)
	if t, ok := ctx.funcs[key]; ok {
		return t
	}
	t := &FuncType{ret: ret, params: append([]Type{}, params...), variadic: variadic}
	ctx.funcs[key] = t
	ctx.register(t)
	return t
}
