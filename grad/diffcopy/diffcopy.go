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

// Package diffcopy generates the derivative of buffer copies.
//
// The derivative of a copy from src to dst over floating-point memory
// accumulates the shadow of dst into the shadow of src, then zeroes the
// shadow of dst. A Session generates one function per element type,
// alignments, and kind of copy, and reuses it for all the copies of a module.
package diffcopy

import (
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/gx-org/diffir/build/fmterr"
	"github.com/gx-org/diffir/build/ir"
	"github.com/gx-org/diffir/build/ir/irkind"
)

// MetadataKind is the kind of the metadata attached to generated functions.
// Its value is the name of the copy being differentiated (memcpy or memmove).
const MetadataKind = "diffe.copy"

// ErrNotFloatBuffer is returned when the elements of a buffer are not floating-point values.
var ErrNotFloatBuffer = errors.New("not a floating-point buffer")

// Kind of copy being differentiated.
type Kind int

const (
	// Copy assumes that the source and destination buffers do not overlap.
	Copy Kind = iota
	// Move supports overlapping source and destination buffers.
	Move
)

func (k Kind) String() string {
	switch k {
	case Copy:
		return "memcpy"
	case Move:
		return "memmove"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type key struct {
	elem               ir.Type
	dstAlign, srcAlign uint
	kind               Kind
}

// Option configures a session.
type Option func(*Session)

// WithLogger sets the logger of a session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// Session generates derivative copy functions into a module.
//
// A session is not safe for concurrent use: the module it writes to is
// assumed to have a single writer.
type Session struct {
	module *ir.Module
	logger *slog.Logger
	cache  map[key]*ir.Function
}

// NewSession returns a new session generating functions into a module.
func NewSession(module *ir.Module, opts ...Option) *Session {
	s := &Session{
		module: module,
		logger: slog.Default(),
		cache:  make(map[key]*ir.Function),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Module returns the module the session writes to.
func (s *Session) Module() *ir.Module { return s.module }

// GetOrInsert returns the function computing the derivative of a copy of
// buffers pointed by ptr. The function has the signature:
//
//	void (T* dst, T* src, i64 num)
//
// where T is the element type of ptr and num the number of elements.
// The function is generated the first time it is requested and
// returned unchanged afterwards.
func (s *Session) GetOrInsert(ptr *ir.PointerType, dstAlign, srcAlign uint, kind Kind) (*ir.Function, error) {
	elem := ptr.Elem()
	if !ir.IsFPOrFPVector(elem) {
		return nil, fmterr.At(ptr, errors.WithStack(ErrNotFloatBuffer))
	}
	if kind != Copy && kind != Move {
		return nil, fmterr.Errorf(ptr, "invalid copy kind %s", kind)
	}
	k := key{elem: elem, dstAlign: dstAlign, srcAlign: srcAlign, kind: kind}
	if fn := s.cache[k]; fn != nil {
		s.logger.Debug("derivative copy cache hit", "function", fn.Name())
		return fn, nil
	}
	name := Name(elem, dstAlign, srcAlign, kind)
	fn, err := s.lookup(name, ptr, kind)
	if err != nil {
		return nil, err
	}
	if fn != nil {
		s.logger.Debug("derivative copy found in module", "function", name)
		s.cache[k] = fn
		return fn, nil
	}
	if fn, err = s.build(name, ptr, dstAlign, srcAlign, kind); err != nil {
		return nil, err
	}
	s.logger.Info("derivative copy generated",
		"function", name,
		"elem", elem.String(),
		"kind", kind.String(),
		"dst_align", dstAlign,
		"src_align", srcAlign)
	s.cache[k] = fn
	return fn, nil
}

// lookup returns a function previously generated into the module, nil if there is none.
func (s *Session) lookup(name string, ptr *ir.PointerType, kind Kind) (*ir.Function, error) {
	fn := s.module.Function(name)
	if fn == nil {
		return nil, nil
	}
	if md, ok := fn.Metadata(MetadataKind); !ok || md != kind.String() {
		return nil, fmterr.Errorf(nil, "function %s exists but is not a derivative %s", fn.Ident(), kind)
	}
	if fn.FuncType() != signature(s.module.Context(), ptr) {
		return nil, fmterr.Errorf(nil, "function %s has type %s but want %s", fn.Ident(), fn.FuncType(), signature(s.module.Context(), ptr))
	}
	return fn, nil
}

func signature(ctx *ir.Context, ptr *ir.PointerType) *ir.FuncType {
	return ctx.Func(ctx.Void(), []ir.Type{ptr, ptr, ctx.Int(64)}, false)
}

// Name returns the name of the derivative copy function for a given element
// type, alignments, and kind, for example __diffe_memcpy_f64_da8sa8.
func Name(elem ir.Type, dstAlign, srcAlign uint, kind Kind) string {
	return fmt.Sprintf("__diffe_%s_%s_da%dsa%d", kind, mangle(elem), dstAlign, srcAlign)
}

var floatNames = map[irkind.Kind]string{
	irkind.Half:    "f16",
	irkind.BFloat:  "bf16",
	irkind.Float:   "f32",
	irkind.Double:  "f64",
	irkind.X86FP80: "f80",
	irkind.FP128:   "f128",
}

func mangle(typ ir.Type) string {
	if vec, ok := typ.(*ir.VectorType); ok {
		return fmt.Sprintf("v%d%s", vec.Len(), mangle(vec.Elem()))
	}
	if name, ok := floatNames[typ.Kind()]; ok {
		return name
	}
	return typ.String()
}

// elemAlign returns the alignment of the elements of a buffer
// given the alignment of the buffer: the largest power of two dividing
// both the buffer alignment and the element stride.
func elemAlign(elem ir.Type, align uint) uint {
	if align == 0 {
		return 0
	}
	align &= -align
	size, ok := ir.AllocSize(elem)
	if !ok || size == 0 {
		return align
	}
	return min(align, uint(size&-size))
}
