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
)

func blockString(blk *Block) string {
	var b strings.Builder
	b.WriteString(blk.name + ":\n")
	for _, inst := range blk.insts {
		b.WriteString("  " + inst.String() + "\n")
	}
	return b.String()
}

func funcHeader(fn *Function, withNames bool) string {
	var b strings.Builder
	if fn.IsDeclaration() {
		b.WriteString("declare ")
	} else {
		b.WriteString("define ")
	}
	if fn.Linkage != ExternalLinkage {
		b.WriteString(string(fn.Linkage) + " ")
	}
	fmt.Fprintf(&b, "%s %s(", fn.typ.ret, fn.Ident())
	if withNames {
		b.WriteString(stringseq.Map(fn.params, ", ", func(p *Param) string { return Operand(p) }))
		if fn.typ.variadic {
			if len(fn.params) > 0 {
				b.WriteString(", ")
			}
			b.WriteString("...")
		}
	} else {
		b.WriteString(fn.typ.ParamsString())
	}
	b.WriteString(")")
	if len(fn.Attrs) > 0 {
		b.WriteString(" " + strings.Join(fn.Attrs, " "))
	}
	return b.String()
}

func funcString(fn *Function) string {
	if fn.IsDeclaration() {
		return funcHeader(fn, false) + "\n"
	}
	var b strings.Builder
	b.WriteString(funcHeader(fn, true) + " {\n")
	for i, blk := range fn.blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(blockString(blk))
	}
	b.WriteString("}\n")
	return b.String()
}

func moduleString(m *Module) string {
	var b strings.Builder
	fmt.Fprintf(&b, "; ModuleID = '%s'\n", m.name)
	first := true
	for st := range m.ctx.NamedStructs() {
		if first {
			b.WriteString("\n")
			first = false
		}
		fmt.Fprintf(&b, "%s = type %s\n", st, st.Body())
	}
	for fn := range m.Functions() {
		b.WriteString("\n")
		b.WriteString(funcString(fn))
	}
	return b.String()
}
