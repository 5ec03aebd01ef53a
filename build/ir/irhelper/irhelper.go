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

// Package irhelper provides helper functions to build IR programmatically.
package irhelper

import (
	"github.com/gx-org/diffir/build/ir"
)

// Builder appends instructions at the end of a block.
//
// The first error encountered is recorded and returned by Err. Instructions
// built after an error are still returned but are not inserted.
type Builder struct {
	ctx   *ir.Context
	block *ir.Block
	err   error
}

// NewBuilder returns a builder appending instructions to a block.
func NewBuilder(block *ir.Block) *Builder {
	return &Builder{
		ctx:   block.Function().Module().Context(),
		block: block,
	}
}

// Context returns the type context of the module being built.
func (b *Builder) Context() *ir.Context { return b.ctx }

// Block returns the current insertion block.
func (b *Builder) Block() *ir.Block { return b.block }

// SetInsertPoint moves the builder at the end of another block.
func (b *Builder) SetInsertPoint(block *ir.Block) {
	b.block = block
}

// Err returns the first error encountered while building.
func (b *Builder) Err() error { return b.err }

func appendTo[T ir.Instruction](b *Builder, inst T, name string) T {
	if b.err != nil {
		return inst
	}
	b.err = b.block.Append(inst, name)
	return inst
}

// Int64 returns a 64-bit integer constant.
func (b *Builder) Int64(v int64) *ir.ConstInt {
	return Int(b.ctx, 64, v)
}

// Zero returns the zero value of a type.
func (b *Builder) Zero(typ ir.Type) *ir.ConstZero {
	return &ir.ConstZero{Typ: typ}
}

// Alloca allocates count elements on the stack. A nil count allocates one element.
func (b *Builder) Alloca(name string, elem ir.Type, count ir.Value, align uint) *ir.Alloca {
	return appendTo(b, &ir.Alloca{Elem: elem, Count: count, Align: align}, name)
}

// Load reads a value from memory.
func (b *Builder) Load(name string, ptr ir.Value, align uint) *ir.Load {
	return appendTo(b, &ir.Load{Ptr: ptr, Align: align}, name)
}

// Store writes a value to memory.
func (b *Builder) Store(val, ptr ir.Value, align uint) *ir.Store {
	return appendTo(b, &ir.Store{Val: val, Ptr: ptr, Align: align}, "")
}

// InBoundsGEP computes the address of the element at index from ptr.
func (b *Builder) InBoundsGEP(name string, ptr, index ir.Value) *ir.GEP {
	return appendTo(b, &ir.GEP{Ptr: ptr, Index: index, InBounds: true}, name)
}

// FAdd adds two floating-point values with the given fast-math flags.
func (b *Builder) FAdd(name string, x, y ir.Value, flags ir.FastMathFlags) *ir.BinOp {
	return appendTo(b, &ir.BinOp{Op: ir.FAddOp, X: x, Y: y, Flags: flags}, name)
}

// FMul multiplies two floating-point values with the given fast-math flags.
func (b *Builder) FMul(name string, x, y ir.Value, flags ir.FastMathFlags) *ir.BinOp {
	return appendTo(b, &ir.BinOp{Op: ir.FMulOp, X: x, Y: y, Flags: flags}, name)
}

// AddNUW adds two integers which cannot wrap.
func (b *Builder) AddNUW(name string, x, y ir.Value) *ir.BinOp {
	return appendTo(b, &ir.BinOp{Op: ir.AddOp, X: x, Y: y, NUW: true}, name)
}

// ICmp compares two integers.
func (b *Builder) ICmp(name string, pred ir.Predicate, x, y ir.Value) *ir.ICmp {
	return appendTo(b, &ir.ICmp{Pred: pred, X: x, Y: y}, name)
}

// Phi creates a phi node. Incoming values are added with AddIncoming.
func (b *Builder) Phi(name string, typ ir.Type) *ir.Phi {
	return appendTo(b, &ir.Phi{Typ: typ}, name)
}

// Br jumps to a block.
func (b *Builder) Br(dest *ir.Block) *ir.Br {
	return appendTo(b, &ir.Br{Dest: dest}, "")
}

// CondBr jumps to then if cond is true, to els otherwise.
func (b *Builder) CondBr(cond ir.Value, then, els *ir.Block) *ir.CondBr {
	return appendTo(b, &ir.CondBr{Cond: cond, Then: then, Else: els}, "")
}

// RetVoid returns from a function returning void.
func (b *Builder) RetVoid() *ir.Ret {
	return appendTo(b, &ir.Ret{}, "")
}

// Ret returns a value.
func (b *Builder) Ret(val ir.Value) *ir.Ret {
	return appendTo(b, &ir.Ret{Val: val}, "")
}

// Call calls a function.
func (b *Builder) Call(name string, callee ir.Value, args ...ir.Value) *ir.Call {
	return appendTo(b, &ir.Call{Callee: callee, Args: args}, name)
}

// Int returns an integer constant.
func Int(ctx *ir.Context, bits int, v int64) *ir.ConstInt {
	return &ir.ConstInt{Typ: ctx.Int(bits), Val: v}
}

// Float returns a floating-point constant.
func Float(typ *ir.FloatType, v float64) *ir.ConstFloat {
	return &ir.ConstFloat{Typ: typ, Val: v}
}

// Metadata returns a metadata operand.
func Metadata(ctx *ir.Context, text string) *ir.MetadataString {
	return &ir.MetadataString{Typ: ctx.Metadata(), Text: text}
}

// Declare returns the declaration of a function in a module, creating it if required.
func Declare(m *ir.Module, name string, ret ir.Type, params ...ir.Type) (*ir.Function, error) {
	return m.GetOrInsertFunction(name, m.Context().Func(ret, params, false))
}

// DeclareVariadic returns the declaration of a variadic function in a module,
// creating it if required.
func DeclareVariadic(m *ir.Module, name string, ret ir.Type, params ...ir.Type) (*ir.Function, error) {
	return m.GetOrInsertFunction(name, m.Context().Func(ret, params, true))
}
