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

package ir_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/gx-org/diffir/build/ir"
	"github.com/gx-org/diffir/build/ir/irhelper"
)

type squareFixture struct {
	module *ir.Module
	fn     *ir.Function
	sq     ir.Instruction
	dbg    ir.Instruction
	ret    ir.Instruction
}

func newSquare(t *testing.T) squareFixture {
	t.Helper()
	m := ir.NewModule("test", nil)
	ctx := m.Context()
	dbgValue, err := irhelper.Declare(m, "llvm.dbg.value", ctx.Void(), ctx.Metadata(), ctx.Metadata(), ctx.Metadata())
	if err != nil {
		t.Fatal(err)
	}
	fn, err := m.NewFunction("square", ctx.Func(ctx.Double(), []ir.Type{ctx.Double()}, false), "x")
	if err != nil {
		t.Fatal(err)
	}
	b := irhelper.NewBuilder(fn.NewBlock("entry"))
	md := irhelper.Metadata(ctx, "!{}")
	sq := b.FMul("sq", fn.Param(0), fn.Param(0), ir.AllFast())
	dbg := b.Call("", dbgValue, md, md, md)
	b.Call("", dbgValue, md, md, md)
	ret := b.Ret(sq)
	if err := b.Err(); err != nil {
		t.Fatal(err)
	}
	return squareFixture{module: m, fn: fn, sq: sq, dbg: dbg, ret: ret}
}

func TestModuleString(t *testing.T) {
	fix := newSquare(t)
	want := `; ModuleID = 'test'

declare void @llvm.dbg.value(metadata, metadata, metadata)

define double @square(double %x) {
entry:
  %sq = fmul fast double %x, %x
  call void @llvm.dbg.value(metadata !{}, metadata !{}, metadata !{})
  call void @llvm.dbg.value(metadata !{}, metadata !{}, metadata !{})
  ret double %sq
}
`
	if diff := cmp.Diff(want, fix.module.String()); diff != "" {
		t.Errorf("unexpected module text (-want +got):\n%s", diff)
	}
}

func TestNextExecutable(t *testing.T) {
	fix := newSquare(t)
	if got := ir.NextExecutable(fix.sq); got != fix.ret {
		t.Errorf("next executable after %s is %v but want %s", fix.sq, got, fix.ret)
	}
	if got := ir.NextExecutable(fix.dbg); got != fix.ret {
		t.Errorf("next executable after %s is %v but want %s", fix.dbg, got, fix.ret)
	}
	if got := ir.NextExecutable(fix.ret); got != nil {
		t.Errorf("next executable after %s is %s but want nil", fix.ret, got)
	}
	next, err := ir.RequireNextExecutable(fix.sq)
	if err != nil {
		t.Fatal(err)
	}
	if next != fix.ret {
		t.Errorf("got %s but want %s", next, fix.ret)
	}
	_, err = ir.RequireNextExecutable(fix.ret)
	if !errors.Is(err, ir.ErrNoSubsequentInstruction) {
		t.Fatalf("got error %v but want %v", err, ir.ErrNoSubsequentInstruction)
	}
	if !strings.Contains(err.Error(), "in block:\nentry:") {
		t.Errorf("error %q does not print the block", err.Error())
	}
}

func TestNextExecutableSkipsConsecutiveDebugCalls(t *testing.T) {
	m := ir.NewModule("test", nil)
	ctx := m.Context()
	dptr := ctx.Pointer(ctx.Double())
	md := irhelper.Metadata(ctx, "!{}")
	dbgDeclare, err := irhelper.Declare(m, "llvm.dbg.declare", ctx.Void(), ctx.Metadata(), ctx.Metadata(), ctx.Metadata())
	if err != nil {
		t.Fatal(err)
	}
	dbgValue, err := irhelper.Declare(m, "llvm.dbg.value", ctx.Void(), ctx.Metadata(), ctx.Metadata(), ctx.Metadata())
	if err != nil {
		t.Fatal(err)
	}
	lifetimeStart, err := irhelper.Declare(m, "llvm.lifetime.start.p0f64", ctx.Void(), ctx.Int(64), dptr)
	if err != nil {
		t.Fatal(err)
	}
	fn, err := m.NewFunction("slot", ctx.Func(ctx.Void(), nil, false))
	if err != nil {
		t.Fatal(err)
	}
	b := irhelper.NewBuilder(fn.NewBlock("entry"))
	slot := b.Alloca("slot", ctx.Double(), nil, 8)
	declare := b.Call("", dbgDeclare, md, md, md)
	value := b.Call("", dbgValue, md, md, md)
	lifetime := b.Call("", lifetimeStart, b.Int64(8), slot)
	store := b.Store(irhelper.Float(ctx.Double(), 1), slot, 8)
	last := b.Call("", dbgValue, md, md, md)
	ret := b.RetVoid()
	b.SetInsertPoint(fn.NewBlock("tail"))
	load := b.Load("v", slot, 8)
	tail := []ir.Instruction{b.Call("", dbgValue, md, md, md), b.Call("", dbgDeclare, md, md, md)}
	if err := b.Err(); err != nil {
		t.Fatal(err)
	}

	if ir.IsDebugInfo(lifetime) {
		t.Errorf("%s should not be debug info", lifetime)
	}
	tests := []struct {
		inst ir.Instruction
		want ir.Instruction
	}{
		{inst: slot, want: lifetime},
		{inst: declare, want: lifetime},
		{inst: value, want: lifetime},
		{inst: lifetime, want: store},
		{inst: store, want: ret},
		{inst: last, want: ret},
		{inst: ret, want: nil},
		{inst: load, want: nil},
		{inst: tail[0], want: nil},
	}
	for i, test := range tests {
		got := ir.NextExecutable(test.inst)
		if got != test.want {
			t.Errorf("test %d: next executable after %s is %v but want %v", i, test.inst, got, test.want)
		}
		next, err := ir.RequireNextExecutable(test.inst)
		if test.want == nil {
			if !errors.Is(err, ir.ErrNoSubsequentInstruction) {
				t.Errorf("test %d: got error %v but want %v", i, err, ir.ErrNoSubsequentInstruction)
			}
			continue
		}
		if err != nil {
			t.Errorf("test %d: unexpected error: %v", i, err)
			continue
		}
		if next != test.want {
			t.Errorf("test %d: got %s but want %s", i, next, test.want)
		}
	}
}

func TestIsDebugInfo(t *testing.T) {
	fix := newSquare(t)
	if !ir.IsDebugInfo(fix.dbg) {
		t.Errorf("%s is not debug info", fix.dbg)
	}
	for _, inst := range []ir.Instruction{fix.sq, fix.ret} {
		if ir.IsDebugInfo(inst) {
			t.Errorf("%s is debug info", inst)
		}
	}
}

func TestIsReturned(t *testing.T) {
	fix := newSquare(t)
	if !ir.IsReturned(fix.sq) {
		t.Errorf("%s should be returned", fix.sq)
	}
	if ir.IsReturned(fix.dbg) {
		t.Errorf("%s should not be returned", fix.dbg)
	}
	var users []string
	for user := range ir.Users(fix.fn.Param(0), fix.fn) {
		users = append(users, user.String())
	}
	if diff := cmp.Diff([]string{"%sq = fmul fast double %x, %x"}, users); diff != "" {
		t.Errorf("unexpected users of %%x (-want +got):\n%s", diff)
	}
}

func TestLookupIntrinsic(t *testing.T) {
	tests := []struct {
		name string
		want ir.Intrinsic
		dbg  bool
	}{
		{name: "llvm.dbg.declare", want: ir.DbgDeclare, dbg: true},
		{name: "llvm.dbg.value", want: ir.DbgValue, dbg: true},
		{name: "llvm.dbg.label", want: ir.DbgLabel, dbg: true},
		{name: "llvm.lifetime.start.p0i8", want: ir.LifetimeStart},
		{name: "llvm.lifetime.end.p0i8", want: ir.LifetimeEnd},
		{name: "llvm.memcpy.p0i8.p0i8.i64", want: ir.Memcpy},
		{name: "memcpy", want: ir.NotIntrinsic},
		{name: "printf", want: ir.NotIntrinsic},
	}
	for _, test := range tests {
		got := ir.LookupIntrinsic(test.name)
		if got != test.want {
			t.Errorf("LookupIntrinsic(%q) = %v but want %v", test.name, got, test.want)
		}
		if got.IsDebugInfo() != test.dbg {
			t.Errorf("%v.IsDebugInfo() = %v but want %v", got, got.IsDebugInfo(), test.dbg)
		}
	}
	if !ir.LifetimeEnd.IsLifetimeMarker() || ir.DbgValue.IsLifetimeMarker() {
		t.Errorf("incorrect lifetime markers")
	}
}

func TestFunctionErrors(t *testing.T) {
	m := ir.NewModule("test", nil)
	ctx := m.Context()
	voidFn := ctx.Func(ctx.Void(), nil, false)
	if _, err := m.NewFunction("f", voidFn); err != nil {
		t.Fatal(err)
	}
	if _, err := m.NewFunction("f", voidFn); err == nil {
		t.Errorf("defining @f twice should fail")
	}
	if _, err := m.GetOrInsertFunction("f", ctx.Func(ctx.Double(), nil, false)); err == nil {
		t.Errorf("getting @f with a different type should fail")
	}
	fn, err := m.GetOrInsertFunction("f", voidFn)
	if err != nil {
		t.Fatal(err)
	}
	if fn != m.Function("f") {
		t.Errorf("GetOrInsertFunction returned a different function")
	}
	if m.NumFunctions() != 1 {
		t.Errorf("module has %d functions but want 1", m.NumFunctions())
	}
	if _, err := m.NewFunction("g", voidFn, "x"); err == nil {
		t.Errorf("naming more parameters than declared should fail")
	}
}

func TestAppendErrors(t *testing.T) {
	m := ir.NewModule("test", nil)
	ctx := m.Context()
	fn, err := m.NewFunction("f", ctx.Func(ctx.Void(), []ir.Type{ctx.Pointer(ctx.Double()), ctx.Int(64)}, false), "p", "n")
	if err != nil {
		t.Fatal(err)
	}
	blk := fn.NewBlock("entry")
	p, n := fn.Param(0), fn.Param(1)
	tests := []struct {
		name string
		inst ir.Instruction
	}{
		{name: "load from integer", inst: &ir.Load{Ptr: n}},
		{name: "store mismatched", inst: &ir.Store{Val: n, Ptr: p}},
		{name: "fadd on integers", inst: &ir.BinOp{Op: ir.FAddOp, X: n, Y: n}},
		{name: "add on pointers", inst: &ir.BinOp{Op: ir.AddOp, X: p, Y: p}},
		{name: "mixed operands", inst: &ir.ICmp{Pred: ir.EQ, X: n, Y: irhelper.Int(ctx, 32, 0)}},
		{name: "branch on integer", inst: &ir.CondBr{Cond: n, Then: blk, Else: blk}},
		{name: "call non-function", inst: &ir.Call{Callee: p}},
		{name: "call with missing argument", inst: &ir.Call{Callee: fn, Args: []ir.Value{p}}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if err := blk.Append(test.inst, "x"); err == nil {
				t.Errorf("appending %s should fail", test.inst)
			}
		})
	}
	if blk.Len() != 0 {
		t.Errorf("block has %d instructions but want 0", blk.Len())
	}
}

func TestNames(t *testing.T) {
	m := ir.NewModule("test", nil)
	ctx := m.Context()
	fn, err := m.NewFunction("f", ctx.Func(ctx.Int(64), []ir.Type{ctx.Int(64)}, false), "x")
	if err != nil {
		t.Fatal(err)
	}
	b := irhelper.NewBuilder(fn.NewBlock("entry"))
	x := fn.Param(0)
	one := b.AddNUW("x", x, irhelper.Int(ctx, 64, 1))
	two := b.AddNUW("x", one, one)
	anon := b.AddNUW("", two, two)
	ret := b.Ret(anon)
	if err := b.Err(); err != nil {
		t.Fatal(err)
	}
	got := []string{one.Name(), two.Name(), anon.Name(), ret.Name()}
	if diff := cmp.Diff([]string{"x1", "x2", "tmp", ""}, got); diff != "" {
		t.Errorf("unexpected names (-want +got):\n%s", diff)
	}
	zero := &ir.BinOp{Op: ir.AddOp, X: x, Y: x}
	if err := fn.Entry().InsertBefore(one, zero, "zero"); err != nil {
		t.Fatal(err)
	}
	if fn.Entry().At(0) != zero {
		t.Errorf("%s not inserted at the beginning of the block", zero)
	}
	if fn.Entry().Terminator() != ret {
		t.Errorf("incorrect terminator")
	}
}
