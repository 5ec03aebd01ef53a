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

// Package stringseq joins sequences of values into strings.
package stringseq

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// AppendStringer appends the stringified elements of seq to b,
// placing sep between elements.
func AppendStringer[T fmt.Stringer](b *strings.Builder, seq iter.Seq[T], sep string) {
	n := 0
	for item := range seq {
		if n > 0 {
			b.WriteString(sep)
		}
		b.WriteString(item.String())
		n++
	}
}

// JoinStringer concatenates the stringified elements of seq, placing sep between elements.
func JoinStringer[T fmt.Stringer](seq iter.Seq[T], sep string) string {
	var b strings.Builder
	AppendStringer(&b, seq, sep)
	return b.String()
}

// JoinSlice concatenates the stringified elements of a slice.
func JoinSlice[T fmt.Stringer](xs []T, sep string) string {
	return JoinStringer(slices.Values(xs), sep)
}

// Map returns the string produced by f for every element of xs, joined with sep.
func Map[T any](xs []T, sep string, f func(T) string) string {
	ss := make([]string, len(xs))
	for i, x := range xs {
		ss[i] = f(x)
	}
	return strings.Join(ss, sep)
}
