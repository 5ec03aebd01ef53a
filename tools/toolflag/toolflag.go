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

// Package toolflag provides flag types for the command-line tools.
package toolflag

import (
	"flag"
	"strings"

	"github.com/pkg/errors"
)

// Symbols is a list of symbol names set from the command line as a
// comma-separated list. The flag can be repeated: names accumulate and
// a name given more than once is kept once.
type Symbols []string

var _ flag.Getter = (*Symbols)(nil)

// String returns the names joined by commas.
func (s *Symbols) String() string {
	if s == nil {
		return ""
	}
	return strings.Join(*s, ",")
}

// Set appends the comma-separated names of a flag value.
// Empty names are ignored.
func (s *Symbols) Set(value string) error {
	for _, name := range strings.Split(value, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if strings.ContainsAny(name, " \t\n") {
			return errors.Errorf("invalid symbol name %q", name)
		}
		if s.contains(name) {
			continue
		}
		*s = append(*s, name)
	}
	return nil
}

func (s *Symbols) contains(name string) bool {
	for _, other := range *s {
		if other == name {
			return true
		}
	}
	return false
}

// Get returns the names as a []string.
func (s *Symbols) Get() any { return []string(*s) }

// SymbolsFlag defines a symbol list flag on the command line.
func SymbolsFlag(name, doc string) *Symbols {
	return SymbolsVar(flag.CommandLine, name, doc)
}

// SymbolsVar defines a symbol list flag in a flag set.
func SymbolsVar(fs *flag.FlagSet, name, doc string) *Symbols {
	s := &Symbols{}
	fs.Var(s, name, doc)
	return s
}
