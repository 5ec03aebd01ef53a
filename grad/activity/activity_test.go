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

package activity_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/gx-org/diffir/build/ir"
	"github.com/gx-org/diffir/build/ir/irtext"
	"github.com/gx-org/diffir/grad/activity"
)

var all = []activity.Activity{activity.Inert, activity.Accumulated, activity.Shadowed}

func TestCombineLaws(t *testing.T) {
	for _, a := range all {
		if got := activity.Combine(activity.Inert, a); got != a {
			t.Errorf("Combine(inert, %s) = %s but want %s", a, got, a)
		}
		if got := activity.Combine(a, a); got != a {
			t.Errorf("Combine(%s, %s) = %s but want %s", a, a, got, a)
		}
		if got := activity.Combine(activity.Shadowed, a); got != activity.Shadowed {
			t.Errorf("Combine(shadowed, %s) = %s but want shadowed", a, got)
		}
		for _, b := range all {
			if activity.Combine(a, b) != activity.Combine(b, a) {
				t.Errorf("Combine(%s, %s) is not commutative", a, b)
			}
			for _, c := range all {
				left := activity.Combine(activity.Combine(a, b), c)
				right := activity.Combine(a, activity.Combine(b, c))
				if left != right {
					t.Errorf("Combine is not associative for %s, %s, %s", a, b, c)
				}
			}
		}
	}
}

func TestString(t *testing.T) {
	got := []string{activity.Inert.String(), activity.Accumulated.String(), activity.Shadowed.String(), activity.Activity(7).String()}
	want := []string{"inert", "accumulated", "shadowed", "Activity(7)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected names (-want +got):\n%s", diff)
	}
}

func TestClassify(t *testing.T) {
	ctx := ir.NewContext()
	if err := irtext.ParseTypeDefs(ctx, "defs.ll", `
%empty = type {}
%handle = type opaque
%point = type { double, double }
%buffer = type { i64, float* }
`); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		src  string
		want activity.Activity
	}{
		// Floating-point scalars and vectors.
		{src: "half", want: activity.Accumulated},
		{src: "bfloat", want: activity.Accumulated},
		{src: "float", want: activity.Accumulated},
		{src: "double", want: activity.Accumulated},
		{src: "x86_fp80", want: activity.Accumulated},
		{src: "fp128", want: activity.Accumulated},
		{src: "<4 x float>", want: activity.Accumulated},
		// Integers and functions.
		{src: "i1", want: activity.Inert},
		{src: "i64", want: activity.Inert},
		{src: "<2 x i32>", want: activity.Inert},
		{src: "double (double)", want: activity.Inert},
		{src: "void (...)", want: activity.Inert},
		// Pointers.
		{src: "double*", want: activity.Shadowed},
		{src: "double**", want: activity.Shadowed},
		{src: "i8*", want: activity.Inert},
		{src: "double (double)*", want: activity.Inert},
		{src: "<2 x float>*", want: activity.Shadowed},
		{src: "%point*", want: activity.Shadowed},
		{src: "%handle*", want: activity.Inert},
		// Arrays and vectors.
		{src: "[3 x double]", want: activity.Accumulated},
		{src: "[3 x i8]", want: activity.Inert},
		{src: "[3 x double*]", want: activity.Shadowed},
		{src: "<2 x double*>", want: activity.Shadowed},
		{src: "[0 x double]", want: activity.Accumulated},
		// Structures.
		{src: "{}", want: activity.Inert},
		{src: "%empty", want: activity.Inert},
		{src: "%handle", want: activity.Inert},
		{src: "{ i32, i64 }", want: activity.Inert},
		{src: "{ i32, double }", want: activity.Accumulated},
		{src: "%point", want: activity.Accumulated},
		{src: "%buffer", want: activity.Shadowed},
		{src: "{ double, double* }", want: activity.Shadowed},
		{src: "{ double*, double }", want: activity.Shadowed},
		{src: "<{ i8, half }>", want: activity.Accumulated},
		{src: "{ { i32 }, [2 x { float }] }", want: activity.Accumulated},
	}
	for _, test := range tests {
		typ := irtext.MustParseType(ctx, test.src)
		got, err := activity.Classify(typ)
		if err != nil {
			t.Errorf("%s: %v", test.src, err)
			continue
		}
		if got != test.want {
			t.Errorf("Classify(%s) = %s but want %s", test.src, got, test.want)
		}
	}
}

func TestElementClassification(t *testing.T) {
	ctx := ir.NewContext()
	elems := []ir.Type{
		ctx.Double(),
		ctx.Int(32),
		ctx.Pointer(ctx.Float()),
		ctx.Pointer(ctx.Int(8)),
		ctx.Struct(ctx.Int(8), ctx.Half()),
	}
	for _, elem := range elems {
		want, err := activity.Classify(elem)
		if err != nil {
			t.Fatal(err)
		}
		for _, aggr := range []ir.Type{ctx.Array(5, elem), ctx.Vector(2, elem)} {
			got, err := activity.Classify(aggr)
			if err != nil {
				t.Fatal(err)
			}
			if got != want {
				t.Errorf("Classify(%s) = %s but Classify(%s) = %s", aggr, got, elem, want)
			}
		}
	}
}

func permutations(fields []ir.Type) [][]ir.Type {
	if len(fields) <= 1 {
		return [][]ir.Type{fields}
	}
	var perms [][]ir.Type
	for i, first := range fields {
		rest := append(append([]ir.Type{}, fields[:i]...), fields[i+1:]...)
		for _, perm := range permutations(rest) {
			perms = append(perms, append([]ir.Type{first}, perm...))
		}
	}
	return perms
}

func TestStructOrderIndependence(t *testing.T) {
	ctx := ir.NewContext()
	tests := []struct {
		fields []ir.Type
		want   activity.Activity
	}{
		{
			fields: []ir.Type{ctx.Int(32), ctx.Double(), ctx.Pointer(ctx.Float())},
			want:   activity.Shadowed,
		},
		{
			fields: []ir.Type{ctx.Double(), ctx.Int(64), ctx.Array(2, ctx.Float()), ctx.Int(1)},
			want:   activity.Accumulated,
		},
		{
			fields: []ir.Type{ctx.Int(8), ctx.Pointer(ctx.Int(8)), ctx.Func(ctx.Void(), nil, false)},
			want:   activity.Inert,
		},
	}
	for _, test := range tests {
		for _, perm := range permutations(test.fields) {
			for _, st := range []ir.Type{ctx.Struct(perm...), ctx.PackedStruct(perm...)} {
				got, err := activity.Classify(st)
				if err != nil {
					t.Fatal(err)
				}
				if got != test.want {
					t.Errorf("Classify(%s) = %s but want %s", st, got, test.want)
				}
			}
		}
	}
}

func TestClassifyErrors(t *testing.T) {
	ctx := ir.NewContext()
	if err := irtext.ParseTypeDefs(ctx, "defs.ll", `
%list = type { double, %list* }
%a = type { %b* }
%b = type { i32, %a* }
%withLabel = type { double, label }
`); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		src  string
		want error
	}{
		{src: "void", want: activity.ErrUnsupportedType},
		{src: "label", want: activity.ErrUnsupportedType},
		{src: "metadata", want: activity.ErrUnsupportedType},
		{src: "token", want: activity.ErrUnsupportedType},
		{src: "[2 x metadata]", want: activity.ErrUnsupportedType},
		{src: "%withLabel", want: activity.ErrUnsupportedType},
		{src: "%list", want: activity.ErrRecursiveType},
		{src: "%list*", want: activity.ErrRecursiveType},
		{src: "%a", want: activity.ErrRecursiveType},
		{src: "[4 x %b]", want: activity.ErrRecursiveType},
	}
	for _, test := range tests {
		typ := irtext.MustParseType(ctx, test.src)
		_, err := activity.Classify(typ)
		if !errors.Is(err, test.want) {
			t.Errorf("Classify(%s): got error %v but want %v", test.src, err, test.want)
		}
	}
}

func TestSiblingReuseIsNotACycle(t *testing.T) {
	ctx := ir.NewContext()
	point := ctx.Struct(ctx.Double(), ctx.Double())
	pair := ctx.Struct(point, point, ctx.Pointer(point))
	got, err := activity.Classify(pair)
	if err != nil {
		t.Fatal(err)
	}
	if got != activity.Shadowed {
		t.Errorf("Classify(%s) = %s but want shadowed", pair, got)
	}
}
