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
	"iter"

	"github.com/pkg/errors"
	"github.com/gx-org/diffir/build/fmterr"
)

// ErrNoSubsequentInstruction is returned when an instruction is expected
// to be followed by an executable instruction in its block but is not.
var ErrNoSubsequentInstruction = errors.New("no subsequent non-debug instruction")

// IsDebugInfo returns true if the instruction is a call to a debug intrinsic.
// Such instructions carry no runtime semantics.
func IsDebugInfo(inst Instruction) bool {
	call, ok := inst.(*Call)
	if !ok {
		return false
	}
	fn := call.CalledFunction()
	return fn != nil && fn.intrinsic.IsDebugInfo()
}

// NextExecutable returns the first instruction following inst in its block
// which is not a debug intrinsic. It returns nil if there is none.
func NextExecutable(inst Instruction) Instruction {
	blk := inst.Block()
	if blk == nil {
		return nil
	}
	i := blk.Index(inst)
	if i < 0 {
		return nil
	}
	for _, next := range blk.insts[i+1:] {
		if !IsDebugInfo(next) {
			return next
		}
	}
	return nil
}

// RequireNextExecutable returns the first executable instruction following inst.
// It returns an error wrapping ErrNoSubsequentInstruction if there is none.
func RequireNextExecutable(inst Instruction) (Instruction, error) {
	if next := NextExecutable(inst); next != nil {
		return next, nil
	}
	err := fmterr.At(inst, ErrNoSubsequentInstruction)
	if blk := inst.Block(); blk != nil {
		err = fmterr.PrefixWith("in block:\n%s", blk)(err)
	}
	return nil, err
}

// Users iterates over the instructions of a function reading v.
func Users(v Value, fn *Function) iter.Seq[Instruction] {
	return func(yield func(Instruction) bool) {
		for _, blk := range fn.blocks {
			for _, inst := range blk.insts {
				for _, op := range inst.Operands() {
					if op != v {
						continue
					}
					if !yield(inst) {
						return
					}
					break
				}
			}
		}
	}
}

// IsReturned returns true if the value computed by inst is returned by its function.
func IsReturned(inst Instruction) bool {
	blk := inst.Block()
	if blk == nil {
		return false
	}
	for user := range Users(inst, blk.fn) {
		if _, ok := user.(*Ret); ok {
			return true
		}
	}
	return false
}
