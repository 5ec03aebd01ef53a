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

package irtext_test

import (
	"strings"
	"testing"

	"github.com/gx-org/diffir/build/ir"
	"github.com/gx-org/diffir/build/ir/irtext"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{src: "double", want: "double"},
		{src: "half", want: "half"},
		{src: "  i32 ", want: "i32"},
		{src: "i1", want: "i1"},
		{src: "double**", want: "double**"},
		{src: "[4 x float]", want: "[4 x float]"},
		{src: "<2 x half>", want: "<2 x half>"},
		{src: "<2 x double*>", want: "<2 x double*>"},
		{src: "{}", want: "{}"},
		{src: "{double,i32}", want: "{ double, i32 }"},
		{src: "<{ i8, float }>", want: "<{ i8, float }>"},
		{src: "{ [2 x <4 x float>], { i64, double* } }", want: "{ [2 x <4 x float>], { i64, double* } }"},
		{src: "double (double*, i64)", want: "double (double*, i64)"},
		{src: "i32 (i8*, ...)*", want: "i32 (i8*, ...)*"},
		{src: "void ()*", want: "void ()*"},
		{src: "void (...)", want: "void (...)"},
		{src: "%struct.Foo*", want: "%struct.Foo*"},
		{src: "x86_fp80 ; trailing comment", want: "x86_fp80"},
	}
	for _, test := range tests {
		ctx := ir.NewContext()
		got, err := irtext.ParseType(ctx, test.src)
		if err != nil {
			t.Errorf("cannot parse %q: %v", test.src, err)
			continue
		}
		if got.String() != test.want {
			t.Errorf("ParseType(%q) = %s but want %s", test.src, got, test.want)
		}
	}
}

func TestParseTypeUniqued(t *testing.T) {
	ctx := ir.NewContext()
	a := irtext.MustParseType(ctx, "{ double, [2 x i32] }*")
	b := irtext.MustParseType(ctx, "{double, [2 x i32]}*")
	if a != b {
		t.Errorf("parsing the same type twice returned two different types")
	}
	want := ctx.Pointer(ctx.Struct(ctx.Double(), ctx.Array(2, ctx.Int(32))))
	if a != want {
		t.Errorf("parsed type %s is not the type built by the context", a)
	}
}

func TestParseTypeErrors(t *testing.T) {
	tests := []struct {
		src string
		err string
	}{
		{src: "", err: "unexpected end of input"},
		{src: "dbl", err: `unknown type "dbl"`},
		{src: "i0", err: `unknown type "i0"`},
		{src: "[4 float]", err: `expected "x"`},
		{src: "[x x float]", err: "expected a number of elements"},
		{src: "{ double", err: `expected ","`},
		{src: "double double", err: `unexpected "double" after type double`},
		{src: "void (..., i32)", err: `expected ")"`},
	}
	for _, test := range tests {
		_, err := irtext.ParseType(ir.NewContext(), test.src)
		if err == nil {
			t.Errorf("ParseType(%q): expected an error but got nil", test.src)
			continue
		}
		if !strings.Contains(err.Error(), test.err) {
			t.Errorf("ParseType(%q): error %q does not contain %q", test.src, err.Error(), test.err)
		}
	}
}

func TestParseTypeDefs(t *testing.T) {
	ctx := ir.NewContext()
	const src = `
; A linked list of doubles.
%list = type { double, %list* }
%tree = type { %node*, %node* }
%node = type { %tree, float }
%handle = type opaque
`
	if err := irtext.ParseTypeDefs(ctx, "defs.ll", src); err != nil {
		t.Fatal(err)
	}
	list := ctx.LookupStruct("list")
	if list == nil {
		t.Fatalf("struct %%list has not been defined")
	}
	if got, want := list.Body(), "{ double, %list* }"; got != want {
		t.Errorf("got body %s but want %s", got, want)
	}
	if list.Field(1) != ctx.Pointer(list) {
		t.Errorf("second field of %%list is not a pointer to %%list")
	}
	node := ctx.LookupStruct("node")
	if got, want := node.Body(), "{ %tree, float }"; got != want {
		t.Errorf("got body %s but want %s", got, want)
	}
	if handle := ctx.LookupStruct("handle"); handle == nil || !handle.Opaque() {
		t.Errorf("%%handle should be an opaque struct")
	}
}

func TestParseTypeDefsErrors(t *testing.T) {
	tests := []struct {
		src string
		err string
	}{
		{src: "%a = type { i32 }\n%a = type { i64 }", err: "type %a redefined"},
		{src: "%a = type i32", err: "must be a literal structure"},
		{src: "%a = { i32 }", err: `expected "type"`},
		{src: "a = type { i32 }", err: `expected "%"`},
	}
	for _, test := range tests {
		err := irtext.ParseTypeDefs(ir.NewContext(), "defs.ll", test.src)
		if err == nil {
			t.Errorf("ParseTypeDefs(%q): expected an error but got nil", test.src)
			continue
		}
		if !strings.Contains(err.Error(), test.err) {
			t.Errorf("ParseTypeDefs(%q): error %q does not contain %q", test.src, err.Error(), test.err)
		}
	}
}
