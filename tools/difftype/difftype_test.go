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

package main

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/gx-org/diffir/api/options"
)

func fields(out string) [][]string {
	var lines [][]string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		lines = append(lines, strings.Fields(line))
	}
	return lines
}

func TestRunTypes(t *testing.T) {
	path := filepath.Join("testdata", "defs.ll")
	src, err := os.ReadFile(path)
	require.NoError(t, err)
	var out strings.Builder
	err = run(&out, request{
		opts:    options.Default(),
		defs:    path,
		defsSrc: string(src),
		types:   []string{"double", "i32*", "%particle", "%system"},
	})
	require.NoError(t, err)
	want := [][]string{
		{"double", "accumulated"},
		{"i32*", "inert"},
		{"%particle", "accumulated"},
		{"%system", "shadowed"},
	}
	if diff := cmp.Diff(want, fields(out.String())); diff != "" {
		t.Errorf("unexpected output (-want +got):\n%s", diff)
	}
}

func TestRunCallees(t *testing.T) {
	var out strings.Builder
	err := run(&out, request{
		opts:    options.Default(),
		callees: []string{"malloc", "puts", "llvm.dbg.value", "square"},
	})
	require.NoError(t, err)
	want := [][]string{
		{"malloc", "alloc_or_free=true", "print_or_free=false", "exempt=true"},
		{"puts", "alloc_or_free=true", "print_or_free=true", "exempt=true"},
		{"llvm.dbg.value", "alloc_or_free=true", "print_or_free=true", "exempt=true"},
		{"square", "alloc_or_free=false", "print_or_free=false", "exempt=false"},
	}
	if diff := cmp.Diff(want, fields(out.String())); diff != "" {
		t.Errorf("unexpected output (-want +got):\n%s", diff)
	}
}

func TestRunErrors(t *testing.T) {
	var out strings.Builder
	err := run(&out, request{opts: options.Default(), types: []string{"{ double"}})
	require.ErrorContains(t, err, "but got end of input")

	err = run(&out, request{opts: options.Default(), types: []string{"label*"}})
	require.ErrorContains(t, err, "unsupported type shape")
}

func TestUsageListsFlags(t *testing.T) {
	flag.CommandLine.VisitAll(func(f *flag.Flag) {
		if strings.HasPrefix(f.Name, "test.") {
			return
		}
		require.Contains(t, usage, "[-"+f.Name, "usage does not document flag -%s", f.Name)
	})
}
