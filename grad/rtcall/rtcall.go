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

// Package rtcall recognizes calls to runtime functions which must not be
// differentiated.
//
// Memory allocation, printing, and debug or lifetime markers have no
// differentiable arithmetic. Calls to these functions are kept as opaque
// side effects by the differentiation passes.
package rtcall

import (
	"strings"

	"golang.org/x/exp/slices"
	"github.com/gx-org/diffir/api/options"
	"github.com/gx-org/diffir/build/ir"
)

// Category of a runtime symbol.
type Category int

// Categories of runtime symbols.
const (
	Allocator Category = iota
	Deallocator
	Printer
	Marker
)

func (c Category) String() string {
	switch c {
	case Allocator:
		return "allocator"
	case Deallocator:
		return "deallocator"
	case Printer:
		return "printer"
	case Marker:
		return "marker"
	}
	return "unknown"
}

// Symbol is an entry of the runtime symbol table.
type Symbol struct {
	Name     string
	Category Category
}

// labelVersion is the first IR version in which debug labels are exempted.
const labelVersion = "v7"

// Filter classifies callees given a runtime symbol table.
// A filter is immutable and can be used concurrently.
type Filter struct {
	symbols map[string]Category
	markers map[ir.Intrinsic]bool
}

// Default returns a filter using the default options.
func Default() *Filter {
	return New(options.Default())
}

// New returns a filter for the runtime symbols of some options.
func New(opts *options.Options) *Filter {
	f := &Filter{
		symbols: make(map[string]Category),
		markers: map[ir.Intrinsic]bool{
			ir.DbgDeclare:    true,
			ir.DbgValue:      true,
			ir.DbgAddr:       true,
			ir.LifetimeStart: true,
			ir.LifetimeEnd:   true,
		},
	}
	if opts.IRAtLeast(labelVersion) {
		f.markers[ir.DbgLabel] = true
	}
	for _, name := range opts.Allocators {
		f.symbols[name] = Allocator
	}
	for _, name := range opts.Deallocators {
		f.symbols[name] = Deallocator
	}
	for _, name := range opts.Printers {
		f.symbols[name] = Printer
	}
	return f
}

func (f *Filter) category(fn *ir.Function) (Category, bool) {
	if fn == nil {
		return 0, false
	}
	if f.markers[fn.Intrinsic()] {
		return Marker, true
	}
	cat, ok := f.symbols[fn.Name()]
	return cat, ok
}

func (f *Filter) is(fn *ir.Function, cats ...Category) bool {
	cat, ok := f.category(fn)
	return ok && (cat == Marker || slices.Contains(cats, cat))
}

// IsAllocOrFree returns true if fn allocates or releases memory or is a debug or lifetime marker.
// Printers are included: their calls are exempted everywhere allocations are.
// It returns false for a nil function.
func (f *Filter) IsAllocOrFree(fn *ir.Function) bool {
	return f.is(fn, Allocator, Deallocator, Printer)
}

// IsPrintOrFree returns true if fn prints or releases memory or is a debug or lifetime marker.
// It returns false for a nil function.
func (f *Filter) IsPrintOrFree(fn *ir.Function) bool {
	return f.is(fn, Printer, Deallocator)
}

// IsPrintAllocOrFree returns true if fn is a runtime function of any category.
// It returns false for a nil function.
func (f *Filter) IsPrintAllocOrFree(fn *ir.Function) bool {
	return f.is(fn, Allocator, Deallocator, Printer)
}

// Symbols returns the symbol table of the filter sorted by name.
// Markers are listed with the name of their intrinsic.
func (f *Filter) Symbols() []Symbol {
	syms := make([]Symbol, 0, len(f.symbols)+len(f.markers))
	for name, cat := range f.symbols {
		syms = append(syms, Symbol{Name: name, Category: cat})
	}
	for id := range f.markers {
		syms = append(syms, Symbol{Name: id.String(), Category: Marker})
	}
	slices.SortFunc(syms, func(a, b Symbol) int {
		return strings.Compare(a.Name, b.Name)
	})
	return syms
}

// CalledFunction returns the function called by a direct call, nil otherwise.
func CalledFunction(call *ir.Call) *ir.Function {
	if call == nil {
		return nil
	}
	return call.CalledFunction()
}

// IsExemptCall returns true if an instruction is a call to a runtime
// function which must not be differentiated.
func IsExemptCall(f *Filter, inst ir.Instruction) bool {
	call, ok := inst.(*ir.Call)
	if !ok {
		return false
	}
	return f.IsPrintAllocOrFree(CalledFunction(call))
}
