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
	"strings"

	"github.com/gx-org/diffir/base/stringseq"
	"github.com/gx-org/diffir/build/fmterr"
)

// Opcode of an instruction.
type Opcode int

// Instruction opcodes.
const (
	InvalidOp Opcode = iota
	AllocaOp
	LoadOp
	StoreOp
	GEPOp
	FAddOp
	FSubOp
	FMulOp
	FDivOp
	AddOp
	SubOp
	MulOp
	ICmpOp
	PhiOp
	BrOp
	RetOp
	CallOp
)

var opcodeNames = map[Opcode]string{
	AllocaOp: "alloca",
	LoadOp:   "load",
	StoreOp:  "store",
	GEPOp:    "getelementptr",
	FAddOp:   "fadd",
	FSubOp:   "fsub",
	FMulOp:   "fmul",
	FDivOp:   "fdiv",
	AddOp:    "add",
	SubOp:    "sub",
	MulOp:    "mul",
	ICmpOp:   "icmp",
	PhiOp:    "phi",
	BrOp:     "br",
	RetOp:    "ret",
	CallOp:   "call",
}

func (op Opcode) String() string {
	name, ok := opcodeNames[op]
	if !ok {
		return "invalid"
	}
	return name
}

// IsFloatBinary returns true for floating-point binary operators.
func (op Opcode) IsFloatBinary() bool {
	switch op {
	case FAddOp, FSubOp, FMulOp, FDivOp:
		return true
	}
	return false
}

// IsIntBinary returns true for integer binary operators.
func (op Opcode) IsIntBinary() bool {
	switch op {
	case AddOp, SubOp, MulOp:
		return true
	}
	return false
}

// Predicate of an integer comparison.
type Predicate int

// Integer comparison predicates.
const (
	EQ Predicate = iota
	NE
	ULT
	ULE
	UGT
	UGE
	SLT
	SLE
	SGT
	SGE
)

var predicateNames = [...]string{"eq", "ne", "ult", "ule", "ugt", "uge", "slt", "sle", "sgt", "sge"}

func (p Predicate) String() string {
	if int(p) < 0 || int(p) >= len(predicateNames) {
		return "invalid"
	}
	return predicateNames[p]
}

// FastMathFlags relax floating-point semantics of an operation.
type FastMathFlags uint8

// Fast-math flags.
const (
	AllowReassoc FastMathFlags = 1 << iota
	NoNaNs
	NoInfs
	NoSignedZeros
	AllowReciprocal
	AllowContract
	ApproxFunc
)

var fastMathNames = []string{"reassoc", "nnan", "ninf", "nsz", "arcp", "contract", "afn"}

// AllFast returns the set of all fast-math flags.
func AllFast() FastMathFlags {
	return AllowReassoc | NoNaNs | NoInfs | NoSignedZeros | AllowReciprocal | AllowContract | ApproxFunc
}

func (f FastMathFlags) String() string {
	if f == AllFast() {
		return "fast"
	}
	var flags []string
	for i, name := range fastMathNames {
		if f&(1<<i) != 0 {
			flags = append(flags, name)
		}
	}
	return strings.Join(flags, " ")
}

// Instruction is an instruction of a basic block.
type Instruction interface {
	Value
	// Name of the value computed by the instruction, empty if the instruction produces no value.
	Name() string
	// Block owning the instruction, nil if the instruction has not been inserted yet.
	Block() *Block
	// Opcode of the instruction.
	Opcode() Opcode
	// Operands read by the instruction.
	Operands() []Value
	// HasMetadata returns true if a metadata of the given kind is attached to the instruction.
	HasMetadata(kind string) bool
	// String returns the textual form of the instruction.
	String() string

	base() *instBase
	resultType(*Context) (Type, error)
}

type instBase struct {
	name  string
	typ   Type
	block *Block
	md    map[string]string
}

func (b *instBase) base() *instBase { return b }

// Name of the value computed by the instruction.
func (b *instBase) Name() string { return b.name }

// Type of the value computed by the instruction.
func (b *instBase) Type() Type { return b.typ }

// Ident returns the instruction name as a local identifier.
func (b *instBase) Ident() string { return "%" + b.name }

// Block owning the instruction.
func (b *instBase) Block() *Block { return b.block }

// SetMetadata attaches a metadata to the instruction.
func (b *instBase) SetMetadata(kind, val string) {
	if b.md == nil {
		b.md = make(map[string]string)
	}
	b.md[kind] = val
}

// Metadata returns the metadata attached to the instruction given its kind.
func (b *instBase) Metadata(kind string) (string, bool) {
	val, ok := b.md[kind]
	return val, ok
}

// HasMetadata returns true if a metadata of the given kind is attached to the instruction.
func (b *instBase) HasMetadata(kind string) bool {
	_, ok := b.md[kind]
	return ok
}

func (b *instBase) assign(format string, a ...any) string {
	s := fmt.Sprintf(format, a...)
	if b.name == "" {
		return s
	}
	return "%" + b.name + " = " + s
}

func alignSuffix(align uint) string {
	if align == 0 {
		return ""
	}
	return fmt.Sprintf(", align %d", align)
}

func pointee(node fmterr.Node, ptr Value) (Type, error) {
	ptrType, ok := ptr.Type().(*PointerType)
	if !ok {
		return nil, fmterr.Errorf(node, "operand %s is not a pointer", Operand(ptr))
	}
	return ptrType.elem, nil
}

type (
	// Alloca allocates memory on the stack frame of the function.
	Alloca struct {
		instBase
		Elem Type
		// Count is the number of elements to allocate. Nil allocates one element.
		Count Value
		Align uint
	}

	// Load reads a value from memory.
	Load struct {
		instBase
		Ptr   Value
		Align uint
	}

	// Store writes a value to memory.
	Store struct {
		instBase
		Val   Value
		Ptr   Value
		Align uint
	}

	// GEP computes the address of an element from a base pointer and an index.
	GEP struct {
		instBase
		Ptr      Value
		Index    Value
		InBounds bool
	}

	// BinOp is a binary arithmetic operation.
	BinOp struct {
		instBase
		Op    Opcode
		X, Y  Value
		Flags FastMathFlags
		// NUW (no unsigned wrap) only applies to integer operations.
		NUW bool
	}

	// ICmp compares two integers.
	ICmp struct {
		instBase
		Pred Predicate
		X, Y Value
	}

	// Incoming is a value flowing into a phi node from a predecessor block.
	Incoming struct {
		Value Value
		Block *Block
	}

	// Phi selects a value depending on the predecessor block.
	Phi struct {
		instBase
		Typ      Type
		Incoming []Incoming
	}

	// Br jumps unconditionally to a block.
	Br struct {
		instBase
		Dest *Block
	}

	// CondBr jumps to one of two blocks depending on a condition.
	CondBr struct {
		instBase
		Cond       Value
		Then, Else *Block
	}

	// Ret returns from the function. Val is nil when returning void.
	Ret struct {
		instBase
		Val Value
	}

	// Call calls a function. The callee is a *Function for a direct call
	// or any other pointer to a function for an indirect call.
	Call struct {
		instBase
		Callee Value
		Args   []Value
	}
)

var (
	_ Instruction = (*Alloca)(nil)
	_ Instruction = (*Load)(nil)
	_ Instruction = (*Store)(nil)
	_ Instruction = (*GEP)(nil)
	_ Instruction = (*BinOp)(nil)
	_ Instruction = (*ICmp)(nil)
	_ Instruction = (*Phi)(nil)
	_ Instruction = (*Br)(nil)
	_ Instruction = (*CondBr)(nil)
	_ Instruction = (*Ret)(nil)
	_ Instruction = (*Call)(nil)
)

// Opcode returns AllocaOp.
func (*Alloca) Opcode() Opcode { return AllocaOp }

// Operands returns the element count, if any.
func (inst *Alloca) Operands() []Value {
	if inst.Count == nil {
		return nil
	}
	return []Value{inst.Count}
}

func (inst *Alloca) resultType(ctx *Context) (Type, error) {
	return ctx.Pointer(inst.Elem), nil
}

func (inst *Alloca) String() string {
	count := ""
	if inst.Count != nil {
		count = ", " + Operand(inst.Count)
	}
	return inst.assign("alloca %s%s%s", inst.Elem, count, alignSuffix(inst.Align))
}

// Opcode returns LoadOp.
func (*Load) Opcode() Opcode { return LoadOp }

// Operands returns the pointer.
func (inst *Load) Operands() []Value { return []Value{inst.Ptr} }

func (inst *Load) resultType(*Context) (Type, error) {
	return pointee(inst, inst.Ptr)
}

func (inst *Load) String() string {
	elem := "<invalid>"
	if ptr, ok := inst.Ptr.Type().(*PointerType); ok {
		elem = ptr.elem.String()
	}
	return inst.assign("load %s, %s%s", elem, Operand(inst.Ptr), alignSuffix(inst.Align))
}

// Opcode returns StoreOp.
func (*Store) Opcode() Opcode { return StoreOp }

// Operands returns the value and the pointer.
func (inst *Store) Operands() []Value { return []Value{inst.Val, inst.Ptr} }

func (inst *Store) resultType(ctx *Context) (Type, error) {
	elem, err := pointee(inst, inst.Ptr)
	if err != nil {
		return nil, err
	}
	if elem != inst.Val.Type() {
		return nil, fmterr.Errorf(inst, "cannot store %s through %s", inst.Val.Type(), inst.Ptr.Type())
	}
	return ctx.Void(), nil
}

func (inst *Store) String() string {
	return inst.assign("store %s, %s%s", Operand(inst.Val), Operand(inst.Ptr), alignSuffix(inst.Align))
}

// Opcode returns GEPOp.
func (*GEP) Opcode() Opcode { return GEPOp }

// Operands returns the pointer and the index.
func (inst *GEP) Operands() []Value { return []Value{inst.Ptr, inst.Index} }

func (inst *GEP) resultType(*Context) (Type, error) {
	if _, err := pointee(inst, inst.Ptr); err != nil {
		return nil, err
	}
	if !IsIntOrIntVector(inst.Index.Type()) {
		return nil, fmterr.Errorf(inst, "index %s is not an integer", Operand(inst.Index))
	}
	return inst.Ptr.Type(), nil
}

func (inst *GEP) String() string {
	inBounds := ""
	if inst.InBounds {
		inBounds = "inbounds "
	}
	elem := "<invalid>"
	if ptr, ok := inst.Ptr.Type().(*PointerType); ok {
		elem = ptr.elem.String()
	}
	return inst.assign("getelementptr %s%s, %s, %s", inBounds, elem, Operand(inst.Ptr), Operand(inst.Index))
}

// Opcode returns the arithmetic operator.
func (inst *BinOp) Opcode() Opcode { return inst.Op }

// Operands returns both operands.
func (inst *BinOp) Operands() []Value { return []Value{inst.X, inst.Y} }

func (inst *BinOp) resultType(*Context) (Type, error) {
	if inst.X.Type() != inst.Y.Type() {
		return nil, fmterr.Errorf(inst, "operand types %s and %s differ", inst.X.Type(), inst.Y.Type())
	}
	switch {
	case inst.Op.IsFloatBinary():
		if !IsFPOrFPVector(inst.X.Type()) {
			return nil, fmterr.Errorf(inst, "%s requires floating-point operands", inst.Op)
		}
	case inst.Op.IsIntBinary():
		if !IsIntOrIntVector(inst.X.Type()) {
			return nil, fmterr.Errorf(inst, "%s requires integer operands", inst.Op)
		}
	default:
		return nil, fmterr.Errorf(inst, "%s is not a binary operator", inst.Op)
	}
	return inst.X.Type(), nil
}

func (inst *BinOp) String() string {
	var flags string
	if inst.Op.IsFloatBinary() && inst.Flags != 0 {
		flags = inst.Flags.String() + " "
	}
	if inst.Op.IsIntBinary() && inst.NUW {
		flags = "nuw "
	}
	return inst.assign("%s %s%s, %s", inst.Op, flags, Operand(inst.X), inst.Y.Ident())
}

// Opcode returns ICmpOp.
func (*ICmp) Opcode() Opcode { return ICmpOp }

// Operands returns both operands.
func (inst *ICmp) Operands() []Value { return []Value{inst.X, inst.Y} }

func (inst *ICmp) resultType(ctx *Context) (Type, error) {
	if inst.X.Type() != inst.Y.Type() {
		return nil, fmterr.Errorf(inst, "operand types %s and %s differ", inst.X.Type(), inst.Y.Type())
	}
	if _, ok := inst.X.Type().(*IntType); !ok {
		return nil, fmterr.Errorf(inst, "icmp requires integer operands")
	}
	return ctx.Int(1), nil
}

func (inst *ICmp) String() string {
	return inst.assign("icmp %s %s, %s", inst.Pred, Operand(inst.X), inst.Y.Ident())
}

// Opcode returns PhiOp.
func (*Phi) Opcode() Opcode { return PhiOp }

// Operands returns the incoming values.
func (inst *Phi) Operands() []Value {
	vals := make([]Value, len(inst.Incoming))
	for i, in := range inst.Incoming {
		vals[i] = in.Value
	}
	return vals
}

// AddIncoming adds a value flowing from a predecessor block.
func (inst *Phi) AddIncoming(val Value, from *Block) {
	inst.Incoming = append(inst.Incoming, Incoming{Value: val, Block: from})
}

// ValueFrom returns the value flowing from a given predecessor.
func (inst *Phi) ValueFrom(from *Block) (Value, bool) {
	for _, in := range inst.Incoming {
		if in.Block == from {
			return in.Value, true
		}
	}
	return nil, false
}

func (inst *Phi) resultType(*Context) (Type, error) {
	return inst.Typ, nil
}

func (inst *Phi) String() string {
	return inst.assign("phi %s %s", inst.Typ, stringseq.Map(inst.Incoming, ", ", func(in Incoming) string {
		return fmt.Sprintf("[ %s, %s ]", in.Value.Ident(), in.Block.Ident())
	}))
}

// Opcode returns BrOp.
func (*Br) Opcode() Opcode { return BrOp }

// Operands returns nil.
func (*Br) Operands() []Value { return nil }

func (inst *Br) resultType(ctx *Context) (Type, error) {
	return ctx.Void(), nil
}

func (inst *Br) String() string {
	return fmt.Sprintf("br label %s", inst.Dest.Ident())
}

// Opcode returns BrOp.
func (*CondBr) Opcode() Opcode { return BrOp }

// Operands returns the condition.
func (inst *CondBr) Operands() []Value { return []Value{inst.Cond} }

func (inst *CondBr) resultType(ctx *Context) (Type, error) {
	if inst.Cond.Type() != ctx.Int(1) {
		return nil, fmterr.Errorf(inst, "condition %s is not a boolean", Operand(inst.Cond))
	}
	return ctx.Void(), nil
}

func (inst *CondBr) String() string {
	return fmt.Sprintf("br %s, label %s, label %s", Operand(inst.Cond), inst.Then.Ident(), inst.Else.Ident())
}

// Opcode returns RetOp.
func (*Ret) Opcode() Opcode { return RetOp }

// Operands returns the returned value, if any.
func (inst *Ret) Operands() []Value {
	if inst.Val == nil {
		return nil
	}
	return []Value{inst.Val}
}

func (inst *Ret) resultType(ctx *Context) (Type, error) {
	return ctx.Void(), nil
}

func (inst *Ret) String() string {
	if inst.Val == nil {
		return "ret void"
	}
	return "ret " + Operand(inst.Val)
}

// Opcode returns CallOp.
func (*Call) Opcode() Opcode { return CallOp }

// Operands returns the callee followed by the arguments.
func (inst *Call) Operands() []Value {
	return append([]Value{inst.Callee}, inst.Args...)
}

// CalledFunction returns the callee of a direct call, nil for an indirect call.
func (inst *Call) CalledFunction() *Function {
	fn, _ := inst.Callee.(*Function)
	return fn
}

func (inst *Call) funcType() (*FuncType, error) {
	elem, err := pointee(inst, inst.Callee)
	if err != nil {
		return nil, err
	}
	ft, ok := elem.(*FuncType)
	if !ok {
		return nil, fmterr.Errorf(inst, "callee %s is not a function", Operand(inst.Callee))
	}
	return ft, nil
}

func (inst *Call) resultType(*Context) (Type, error) {
	ft, err := inst.funcType()
	if err != nil {
		return nil, err
	}
	if len(inst.Args) < len(ft.params) || (!ft.variadic && len(inst.Args) != len(ft.params)) {
		return nil, fmterr.Errorf(inst, "%s expects %d arguments but got %d", inst.Callee.Ident(), len(ft.params), len(inst.Args))
	}
	for i, param := range ft.params {
		if inst.Args[i].Type() != param {
			return nil, fmterr.Errorf(inst, "argument %d of %s has type %s but want %s", i, inst.Callee.Ident(), inst.Args[i].Type(), param)
		}
	}
	return ft.ret, nil
}

func (inst *Call) String() string {
	ret := "<invalid>"
	if ft, err := inst.funcType(); err == nil {
		ret = ft.ret.String()
	}
	return inst.assign("call %s %s(%s)", ret, inst.Callee.Ident(), stringseq.Map(inst.Args, ", ", Operand))
}
