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

	"github.com/gx-org/diffir/build/fmterr"
	"github.com/gx-org/diffir/build/ir"
)

type frame struct {
	itp    *Interpreter
	fn     *ir.Function
	values map[ir.Value]any
}

func newFrame(itp *Interpreter, fn *ir.Function) *frame {
	return &frame{
		itp:    itp,
		fn:     fn,
		values: make(map[ir.Value]any),
	}
}

func (fr *frame) run() (any, error) {
	var prev *ir.Block
	blk := fr.fn.Entry()
	for {
		if err := fr.enter(blk, prev); err != nil {
			return nil, err
		}
		next, ret, done, err := fr.exec(blk)
		if err != nil {
			return nil, err
		}
		if done {
			return ret, nil
		}
		prev, blk = blk, next
	}
}

// enter evaluates the phi nodes at the beginning of a block.
// All phi nodes read their value before any of them is assigned.
func (fr *frame) enter(blk, prev *ir.Block) error {
	type assign struct {
		phi *ir.Phi
		val any
	}
	var assigns []assign
	for inst := range blk.Instructions() {
		phi, ok := inst.(*ir.Phi)
		if !ok {
			break
		}
		in, ok := phi.ValueFrom(prev)
		if !ok {
			return fmterr.Errorf(phi, "no incoming value from %s", blockName(prev))
		}
		val, err := fr.eval(in)
		if err != nil {
			return err
		}
		assigns = append(assigns, assign{phi: phi, val: val})
	}
	for _, a := range assigns {
		fr.values[a.phi] = a.val
	}
	return nil
}

func blockName(blk *ir.Block) string {
	if blk == nil {
		return "function entry"
	}
	return blk.Ident()
}

func (fr *frame) step(inst ir.Instruction) error {
	fr.itp.steps++
	if fr.itp.maxSteps > 0 && fr.itp.steps > fr.itp.maxSteps {
		return fmterr.Errorf(inst, "maximum number of steps (%d) exceeded", fr.itp.maxSteps)
	}
	return nil
}

func (fr *frame) exec(blk *ir.Block) (next *ir.Block, ret any, done bool, err error) {
	for inst := range blk.Instructions() {
		if err := fr.step(inst); err != nil {
			return nil, nil, false, err
		}
		switch instT := inst.(type) {
		case *ir.Phi:
			continue
		case *ir.Br:
			return instT.Dest, nil, false, nil
		case *ir.CondBr:
			cond, err := fr.evalInt(instT.Cond)
			if err != nil {
				return nil, nil, false, err
			}
			if cond != 0 {
				return instT.Then, nil, false, nil
			}
			return instT.Else, nil, false, nil
		case *ir.Ret:
			if instT.Val == nil {
				return nil, nil, true, nil
			}
			val, err := fr.eval(instT.Val)
			return nil, val, err == nil, err
		}
		val, err := fr.execInst(inst)
		if err != nil {
			return nil, nil, false, err
		}
		if val != nil {
			fr.values[inst] = val
		}
	}
	return nil, nil, false, fmterr.Errorf(nil, "block %s of %s has no terminator", blk.Ident(), fr.fn.Ident())
}

func (fr *frame) execInst(inst ir.Instruction) (any, error) {
	switch instT := inst.(type) {
	case *ir.Alloca:
		return fr.execAlloca(instT)
	case *ir.Load:
		ptr, err := fr.evalPointer(instT.Ptr)
		if err != nil {
			return nil, err
		}
		val, err := ptr.load()
		return val, fmterr.At(inst, err)
	case *ir.Store:
		ptr, err := fr.evalPointer(instT.Ptr)
		if err != nil {
			return nil, err
		}
		val, err := fr.eval(instT.Val)
		if err != nil {
			return nil, err
		}
		return nil, fmterr.At(inst, ptr.store(val))
	case *ir.GEP:
		ptr, err := fr.evalPointer(instT.Ptr)
		if err != nil {
			return nil, err
		}
		index, err := fr.evalInt(instT.Index)
		if err != nil {
			return nil, err
		}
		return ptr.offset(index), nil
	case *ir.BinOp:
		x, err := fr.eval(instT.X)
		if err != nil {
			return nil, err
		}
		y, err := fr.eval(instT.Y)
		if err != nil {
			return nil, err
		}
		val, err := binary(instT.Op, instT.Type(), x, y)
		return val, fmterr.At(inst, err)
	case *ir.ICmp:
		x, err := fr.evalInt(instT.X)
		if err != nil {
			return nil, err
		}
		y, err := fr.evalInt(instT.Y)
		if err != nil {
			return nil, err
		}
		return compare(instT.Pred, instT.X.Type().(*ir.IntType), x, y), nil
	case *ir.Call:
		return fr.execCall(instT)
	}
	return nil, fmterr.Internalf(inst, "instruction %s not supported", inst.Opcode())
}

func (fr *frame) execAlloca(inst *ir.Alloca) (any, error) {
	n := int64(1)
	if inst.Count != nil {
		var err error
		if n, err = fr.evalInt(inst.Count); err != nil {
			return nil, err
		}
	}
	if n < 0 {
		return nil, fmterr.Errorf(inst, "negative allocation size %d", n)
	}
	fr.itp.allocs++
	buf := NewBuffer(fmt.Sprintf("%s.%d", inst.Name(), fr.itp.allocs), inst.Elem, int(n))
	return buf.At(0), nil
}

func (fr *frame) execCall(call *ir.Call) (any, error) {
	fn := call.CalledFunction()
	if fn == nil {
		callee, err := fr.eval(call.Callee)
		if err != nil {
			return nil, err
		}
		var ok bool
		if fn, ok = callee.(*ir.Function); !ok {
			return nil, fmterr.Errorf(call, "callee %s is not a function", call.Callee.Ident())
		}
	}
	if id := fn.Intrinsic(); id.IsDebugInfo() || id.IsLifetimeMarker() {
		return nil, nil
	}
	args := make([]any, len(call.Args))
	for i, arg := range call.Args {
		var err error
		if args[i], err = fr.eval(arg); err != nil {
			return nil, err
		}
	}
	ret, err := fr.itp.call(fn, args)
	if err != nil {
		return nil, fmterr.PrefixWith("in call %s:\n", call)(err)
	}
	return ret, nil
}

func (fr *frame) eval(v ir.Value) (any, error) {
	switch vT := v.(type) {
	case *ir.ConstInt:
		return vT.Val, nil
	case *ir.ConstFloat:
		return roundFloat(vT.Typ, vT.Val), nil
	case *ir.ConstZero:
		return zeroOf(vT.Typ), nil
	case *ir.Function:
		return vT, nil
	case *ir.MetadataString:
		return vT.Text, nil
	}
	val, ok := fr.values[v]
	if !ok {
		return nil, fmterr.Errorf(nil, "value %s has not been computed in %s", v.Ident(), fr.fn.Ident())
	}
	return val, nil
}

func (fr *frame) evalInt(v ir.Value) (int64, error) {
	val, err := fr.eval(v)
	if err != nil {
		return 0, err
	}
	i, ok := val.(int64)
	if !ok {
		return 0, fmterr.Errorf(nil, "value %s is a %T, not an integer", v.Ident(), val)
	}
	return i, nil
}

func (fr *frame) evalPointer(v ir.Value) (Pointer, error) {
	val, err := fr.eval(v)
	if err != nil {
		return Pointer{}, err
	}
	ptr, ok := val.(Pointer)
	if !ok {
		return Pointer{}, fmterr.Errorf(nil, "value %s is a %T, not a pointer", v.Ident(), val)
	}
	return ptr, nil
}
