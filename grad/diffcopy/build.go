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

package diffcopy

import (
	"github.com/gx-org/diffir/build/fmterr"
	"github.com/gx-org/diffir/build/ir"
	"github.com/gx-org/diffir/build/ir/irhelper"
)

type builder struct {
	*irhelper.Builder
	fn       *ir.Function
	elem     ir.Type
	dstAlign uint
	srcAlign uint
}

func (s *Session) build(name string, ptr *ir.PointerType, dstAlign, srcAlign uint, kind Kind) (*ir.Function, error) {
	fn, err := s.module.NewFunction(name, signature(s.module.Context(), ptr), "dst", "src", "num")
	if err != nil {
		return nil, err
	}
	fn.Linkage = ir.InternalLinkage
	fn.Attrs = []string{"alwaysinline", "nounwind"}
	fn.SetMetadata(MetadataKind, kind.String())
	b := &builder{
		Builder:  irhelper.NewBuilder(fn.NewBlock("entry")),
		fn:       fn,
		elem:     ptr.Elem(),
		dstAlign: elemAlign(ptr.Elem(), dstAlign),
		srcAlign: elemAlign(ptr.Elem(), srcAlign),
	}
	if kind == Move {
		b.buildMove()
	} else {
		b.buildCopy()
	}
	if err := b.Err(); err != nil {
		return nil, fmterr.Internal(err)
	}
	return fn, nil
}

func (b *builder) dst() ir.Value { return b.fn.Param(0) }
func (b *builder) src() ir.Value { return b.fn.Param(1) }
func (b *builder) num() ir.Value { return b.fn.Param(2) }

// accumulate builds src[i] += x.
func (b *builder) accumulate(srcI, x ir.Value) {
	s := b.Load("s", srcI, b.srcAlign)
	sum := b.FAdd("sum", s, x, ir.AllFast())
	b.Store(sum, srcI, b.srcAlign)
}

// buildCopy builds:
//
//	for i := 0; i < num; i++ {
//		src[i] += dst[i]
//		dst[i] = 0
//	}
func (b *builder) buildCopy() {
	entry := b.Block()
	body := b.fn.NewBlock("body")
	end := b.fn.NewBlock("end")
	empty := b.ICmp("empty", ir.EQ, b.num(), b.Int64(0))
	b.CondBr(empty, end, body)
	b.SetInsertPoint(body)
	i := b.Phi("i", b.Context().Int(64))
	dstI := b.InBoundsGEP("dst.i", b.dst(), i)
	srcI := b.InBoundsGEP("src.i", b.src(), i)
	d := b.Load("d", dstI, b.dstAlign)
	b.accumulate(srcI, d)
	b.Store(b.Zero(b.elem), dstI, b.dstAlign)
	next := b.AddNUW("next", i, b.Int64(1))
	done := b.ICmp("done", ir.EQ, next, b.num())
	i.AddIncoming(b.Int64(0), entry)
	i.AddIncoming(next, body)
	b.CondBr(done, end, body)
	b.SetInsertPoint(end)
	b.RetVoid()
}

// buildMove builds:
//
//	tmp := alloca(num)
//	for i := 0; i < num; i++ {
//		tmp[i] = dst[i]
//		dst[i] = 0
//	}
//	for i := 0; i < num; i++ {
//		src[i] += tmp[i]
//	}
//
// The shadow of dst is cleared before any element of src is written,
// which supports overlapping buffers.
func (b *builder) buildMove() {
	tmp := b.Alloca("tmp", b.elem, b.num(), 0)
	empty := b.ICmp("empty", ir.EQ, b.num(), b.Int64(0))
	save := b.fn.NewBlock("save")
	accumulate := b.fn.NewBlock("accumulate")
	end := b.fn.NewBlock("end")
	b.CondBr(empty, end, save)

	b.SetInsertPoint(save)
	i := b.Phi("i", b.Context().Int(64))
	dstI := b.InBoundsGEP("dst.i", b.dst(), i)
	tmpI := b.InBoundsGEP("tmp.i", tmp, i)
	d := b.Load("d", dstI, b.dstAlign)
	b.Store(d, tmpI, 0)
	b.Store(b.Zero(b.elem), dstI, b.dstAlign)
	nextI := b.AddNUW("i.next", i, b.Int64(1))
	doneI := b.ICmp("i.done", ir.EQ, nextI, b.num())
	i.AddIncoming(b.Int64(0), b.fn.Entry())
	i.AddIncoming(nextI, save)
	b.CondBr(doneI, accumulate, save)

	b.SetInsertPoint(accumulate)
	j := b.Phi("j", b.Context().Int(64))
	tmpJ := b.InBoundsGEP("tmp.j", tmp, j)
	srcJ := b.InBoundsGEP("src.j", b.src(), j)
	t := b.Load("t", tmpJ, 0)
	b.accumulate(srcJ, t)
	nextJ := b.AddNUW("j.next", j, b.Int64(1))
	doneJ := b.ICmp("j.done", ir.EQ, nextJ, b.num())
	j.AddIncoming(b.Int64(0), save)
	j.AddIncoming(nextJ, accumulate)
	b.CondBr(doneJ, end, accumulate)

	b.SetInsertPoint(end)
	b.RetVoid()
}
