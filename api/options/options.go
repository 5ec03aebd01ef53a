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

// Package options specifies the options of the differentiation passes.
//
// Options are usually loaded from a YAML file:
//
//	ir_version: v7
//	allocators: [malloc, _Znwm, my_alloc]
//	deallocators: [free, _ZdlPv, _ZdlPvm]
//	printers: [printf, puts]
//
// Fields missing from the file keep their default value.
package options

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// Options of the differentiation passes.
type Options struct {
	// IRVersion is the version of the IR being differentiated, for example v7.
	// Empty means the latest version.
	IRVersion string `yaml:"ir_version"`
	// Allocators are the runtime functions allocating memory.
	Allocators []string `yaml:"allocators"`
	// Deallocators are the runtime functions releasing memory.
	Deallocators []string `yaml:"deallocators"`
	// Printers are the runtime functions writing to an output stream.
	Printers []string `yaml:"printers"`
}

// Default returns the default options: the C allocator and the
// C++ operators new and delete.
func Default() *Options {
	return &Options{
		Allocators:   []string{"malloc", "_Znwm"},
		Deallocators: []string{"free", "_ZdlPv", "_ZdlPvm"},
		Printers:     []string{"printf", "puts"},
	}
}

// Load options from a YAML file.
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read options")
	}
	opts, err := Parse(data)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s", path)
	}
	return opts, nil
}

// Parse options from YAML. Unknown fields are rejected.
// An empty document returns the default options.
func Parse(data []byte) (*Options, error) {
	opts := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(opts); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrapf(err, "cannot parse options")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts.normalize()
	return opts, nil
}

// Validate checks that the options are consistent.
func (opts *Options) Validate() error {
	if opts.IRVersion != "" && !semver.IsValid(canonicalVersion(opts.IRVersion)) {
		return errors.Errorf("invalid IR version %q", opts.IRVersion)
	}
	categories := []struct {
		name    string
		symbols []string
	}{
		{name: "allocators", symbols: opts.Allocators},
		{name: "deallocators", symbols: opts.Deallocators},
		{name: "printers", symbols: opts.Printers},
	}
	owner := make(map[string]string)
	for _, cat := range categories {
		for i, sym := range cat.symbols {
			if strings.TrimSpace(sym) == "" {
				return errors.Errorf("%s[%d]: empty symbol name", cat.name, i)
			}
			prev, ok := owner[sym]
			if ok && prev != cat.name {
				return errors.Errorf("%s[%d]: symbol %q already listed in %s", cat.name, i, sym, prev)
			}
			owner[sym] = cat.name
		}
	}
	return nil
}

func (opts *Options) normalize() {
	opts.IRVersion = canonicalVersion(opts.IRVersion)
	for _, syms := range []*[]string{&opts.Allocators, &opts.Deallocators, &opts.Printers} {
		slices.Sort(*syms)
		*syms = slices.Compact(*syms)
	}
}

func canonicalVersion(v string) string {
	if v == "" || strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

// IRAtLeast returns true if the IR version is greater than or equal to a
// given version. An empty IR version is the latest and is always greater.
func (opts *Options) IRAtLeast(version string) bool {
	if opts.IRVersion == "" {
		return true
	}
	return semver.Compare(canonicalVersion(opts.IRVersion), canonicalVersion(version)) >= 0
}
