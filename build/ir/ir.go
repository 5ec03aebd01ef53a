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

// Package ir is the intermediate representation rewritten by the
// differentiation passes.
//
// A Module owns functions, a Function owns basic blocks, and a Block owns
// an ordered list of instructions. Types are owned and uniqued by a Context.
package ir

import (
	"fmt"
	"iter"
	"slices"

	"github.com/gx-org/diffir/base/ordered"
	"github.com/gx-org/diffir/base/uname"
	"github.com/gx-org/diffir/build/fmterr"
)

// Linkage of a function.
type Linkage string

// Linkage types.
const (
	ExternalLinkage Linkage = ""
	InternalLinkage Linkage = "internal"
	PrivateLinkage  Linkage = "private"
)

// Block is a basic block: a list of instructions with a single entry point.
type Block struct {
	name  string
	fn    *Function
	insts []Instruction
}

// Name of the block.
func (blk *Block) Name() string { return blk.name }

// Ident returns the block name as a local identifier.
func (blk *Block) Ident() string { return "%" + blk.name }

// Function owning the block.
func (blk *Block) Function() *Function { return blk.fn }

// Len returns the number of instructions in the block.
func (blk *Block) Len() int { return len(blk.insts) }

// Instructions iterates over the instructions of the block.
func (blk *Block) Instructions() iter.Seq[Instruction] {
	return slices.Values(blk.insts)
}

// At returns the ith instruction of the block.
func (blk *Block) At(i int) Instruction { return blk.insts[i] }

// Index returns the position of an instruction in the block, -1 if the
// instruction does not belong to the block.
func (blk *Block) Index(inst Instruction) int {
	if inst.Block() != blk {
		return -1
	}
	return slices.Index(blk.insts, inst)
}

// Terminator returns the last instruction of the block if it is a terminator.
func (blk *Block) Terminator() Instruction {
	if len(blk.insts) == 0 {
		return nil
	}
	last := blk.insts[len(blk.insts)-1]
	switch last.(type) {
	case *Br, *CondBr, *Ret:
		return last
	}
	return nil
}

func (blk *Block) prepare(inst Instruction, name string) error {
	base := inst.base()
	if base.block != nil {
		return fmterr.Errorf(inst, "instruction already belongs to block %s", base.block.Ident())
	}
	typ, err := inst.resultType(blk.fn.module.ctx)
	if err != nil {
		return err
	}
	base.typ = typ
	if !IsVoid(typ) {
		if name == "" {
			name = "tmp"
		}
		base.name = blk.fn.names.Name(name)
	}
	base.block = blk
	return nil
}

// Append adds an instruction at the end of the block.
// The name is made unique within the function; it is ignored for
// instructions producing no value.
func (blk *Block) Append(inst Instruction, name string) error {
	if err := blk.prepare(inst, name); err != nil {
		return err
	}
	blk.insts = append(blk.insts, inst)
	return nil
}

// InsertBefore inserts an instruction before another instruction of the block.
func (blk *Block) InsertBefore(pos, inst Instruction, name string) error {
	i := blk.Index(pos)
	if i < 0 {
		return fmterr.Errorf(pos, "instruction does not belong to block %s", blk.Ident())
	}
	if err := blk.prepare(inst, name); err != nil {
		return err
	}
	blk.insts = slices.Insert(blk.insts, i, inst)
	return nil
}

func (blk *Block) String() string {
	return blockString(blk)
}

// Function is a function of a module: a declaration when it has no block,
// a definition otherwise.
type Function struct {
	name      string
	typ       *FuncType
	ptr       *PointerType
	module    *Module
	params    []*Param
	blocks    []*Block
	names     *uname.Unique
	intrinsic Intrinsic
	md        map[string]string

	// Linkage of the function in the module.
	Linkage Linkage
	// Attrs are function attributes (nounwind, alwaysinline, ...).
	Attrs []string
}

var _ Value = (*Function)(nil)

// Name of the function.
func (fn *Function) Name() string { return fn.name }

// Ident returns the function name as a global identifier.
func (fn *Function) Ident() string { return "@" + fn.name }

// Type of the function when used as a value, that is a pointer to its signature.
func (fn *Function) Type() Type { return fn.ptr }

// FuncType returns the signature of the function.
func (fn *Function) FuncType() *FuncType { return fn.typ }

// Module owning the function.
func (fn *Function) Module() *Module { return fn.module }

// Intrinsic returns the identity of the intrinsic implemented by the function.
func (fn *Function) Intrinsic() Intrinsic { return fn.intrinsic }

// Params returns the parameters of the function.
func (fn *Function) Params() []*Param { return append([]*Param{}, fn.params...) }

// Param returns the ith parameter of the function.
func (fn *Function) Param(i int) *Param { return fn.params[i] }

// Blocks returns the basic blocks of the function.
func (fn *Function) Blocks() []*Block { return append([]*Block{}, fn.blocks...) }

// Entry returns the entry block, nil for a declaration.
func (fn *Function) Entry() *Block {
	if len(fn.blocks) == 0 {
		return nil
	}
	return fn.blocks[0]
}

// IsDeclaration returns true if the function has no body.
func (fn *Function) IsDeclaration() bool { return len(fn.blocks) == 0 }

// NewBlock appends a new basic block to the function.
func (fn *Function) NewBlock(name string) *Block {
	if name == "" {
		name = "bb"
	}
	blk := &Block{name: fn.names.Name(name), fn: fn}
	fn.blocks = append(fn.blocks, blk)
	return blk
}

// SetMetadata attaches a metadata to the function.
func (fn *Function) SetMetadata(kind, val string) {
	if fn.md == nil {
		fn.md = make(map[string]string)
	}
	fn.md[kind] = val
}

// Metadata returns the metadata attached to the function given its kind.
func (fn *Function) Metadata(kind string) (string, bool) {
	val, ok := fn.md[kind]
	return val, ok
}

// HasMetadata returns true if a metadata of the given kind is attached to the function.
func (fn *Function) HasMetadata(kind string) bool {
	_, ok := fn.md[kind]
	return ok
}

func (fn *Function) String() string {
	return funcString(fn)
}

// Module is a compilation unit: a set of functions sharing a type context.
type Module struct {
	name  string
	ctx   *Context
	funcs *ordered.Map[string, *Function]
}

// NewModule returns a new empty module.
// A new type context is created if ctx is nil.
func NewModule(name string, ctx *Context) *Module {
	if ctx == nil {
		ctx = NewContext()
	}
	return &Module{
		name:  name,
		ctx:   ctx,
		funcs: ordered.NewMap[string, *Function](),
	}
}

// Name of the module.
func (m *Module) Name() string { return m.name }

// Context returns the type context of the module.
func (m *Module) Context() *Context { return m.ctx }

// Function returns a function given its name, nil if the module has none.
func (m *Module) Function(name string) *Function {
	fn, _ := m.funcs.Load(name)
	return fn
}

// Functions iterates over the functions of the module in creation order.
func (m *Module) Functions() iter.Seq[*Function] {
	return m.funcs.Values()
}

// NumFunctions returns the number of functions in the module.
func (m *Module) NumFunctions() int {
	return m.funcs.Size()
}

// NewFunction creates a function in the module.
// Parameters are named after paramNames; missing names are generated.
func (m *Module) NewFunction(name string, typ *FuncType, paramNames ...string) (*Function, error) {
	if prev := m.Function(name); prev != nil {
		return nil, fmterr.Errorf(nil, "function @%s already defined in module %s", name, m.name)
	}
	if len(paramNames) > len(typ.params) {
		return nil, fmterr.Errorf(typ, "%d parameter names given for %d parameters", len(paramNames), len(typ.params))
	}
	fn := &Function{
		name:      name,
		typ:       typ,
		ptr:       m.ctx.Pointer(typ),
		module:    m,
		names:     uname.New(),
		intrinsic: LookupIntrinsic(name),
	}
	fn.params = make([]*Param, len(typ.params))
	for i, paramType := range typ.params {
		root := fmt.Sprintf("arg%d", i)
		if i < len(paramNames) && paramNames[i] != "" {
			root = paramNames[i]
		}
		fn.params[i] = &Param{
			name:  fn.names.Name(root),
			typ:   paramType,
			fn:    fn,
			index: i,
		}
	}
	m.funcs.Store(name, fn)
	return fn, nil
}

// GetOrInsertFunction returns the function with the given name if it exists.
// Else, it creates a declaration with the given signature.
func (m *Module) GetOrInsertFunction(name string, typ *FuncType) (*Function, error) {
	if fn := m.Function(name); fn != nil {
		if fn.typ != typ {
			return nil, fmterr.Errorf(nil, "function @%s has type %s but want %s", name, fn.typ, typ)
		}
		return fn, nil
	}
	return m.NewFunction(name, typ)
}

func (m *Module) String() string {
	return moduleString(m)
}
