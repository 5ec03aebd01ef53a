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

// Utility difftype prints how values of IR types carry derivatives.
//
// Usage:
//
//	difftype [-config options.yaml] [-defs types.ll] [-callees malloc,printf] [-symbols] [-v] TYPE...
//
// For each type, difftype prints its activity. For each callee, it prints
// whether the call is exempted from differentiation. With -symbols, it
// prints the runtime symbol table. -v logs debug messages on stderr.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/gx-org/diffir/api/options"
	"github.com/gx-org/diffir/build/ir"
	"github.com/gx-org/diffir/build/ir/irhelper"
	"github.com/gx-org/diffir/build/ir/irtext"
	"github.com/gx-org/diffir/grad/activity"
	"github.com/gx-org/diffir/grad/rtcall"
	"github.com/gx-org/diffir/tools/toolflag"
)

const usage = "difftype [-config options.yaml] [-defs types.ll] [-callees malloc,printf] [-symbols] [-v] TYPE..."

var (
	config  = flag.String("config", "", "YAML file with the options of the differentiation passes")
	defs    = flag.String("defs", "", "file defining named structures")
	callees = toolflag.SymbolsFlag("callees", "comma-separated list of callee names to check")
	symbols = flag.Bool("symbols", false, "print the runtime symbol table")
	verbose = flag.Bool("v", false, "log debug messages")
)

type request struct {
	opts    *options.Options
	defs    string
	defsSrc string
	types   []string
	callees toolflag.Symbols
	symbols bool
}

func exit(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format, a...)
	fmt.Fprintln(os.Stderr)
	os.Exit(1)
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s\n", usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	req := request{
		opts:    options.Default(),
		types:   flag.Args(),
		callees: *callees,
		symbols: *symbols,
	}
	if *config != "" {
		var err error
		if req.opts, err = options.Load(*config); err != nil {
			exit("%+v", err)
		}
	}
	if *defs != "" {
		src, err := os.ReadFile(*defs)
		if err != nil {
			exit("cannot read type definitions: %v", err)
		}
		req.defs, req.defsSrc = *defs, string(src)
	}
	if err := run(os.Stdout, req); err != nil {
		exit("%+v", err)
	}
}

func run(out io.Writer, req request) error {
	ctx := ir.NewContext()
	if req.defsSrc != "" {
		if err := irtext.ParseTypeDefs(ctx, req.defs, req.defsSrc); err != nil {
			return err
		}
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, src := range req.types {
		typ, err := irtext.ParseType(ctx, src)
		if err != nil {
			return err
		}
		act, err := activity.Classify(typ)
		if err != nil {
			return err
		}
		slog.Debug("type classified", "type", typ.String(), "activity", act.String())
		fmt.Fprintf(w, "%s\t%s\n", typ, act)
	}
	filter := rtcall.New(req.opts)
	if len(req.callees) > 0 {
		m := ir.NewModule("difftype", ctx)
		for _, name := range req.callees {
			fn, err := irhelper.DeclareVariadic(m, name, ctx.Void())
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\talloc_or_free=%t\tprint_or_free=%t\texempt=%t\n",
				name,
				filter.IsAllocOrFree(fn),
				filter.IsPrintOrFree(fn),
				filter.IsPrintAllocOrFree(fn))
		}
	}
	if req.symbols {
		for _, sym := range filter.Symbols() {
			fmt.Fprintf(w, "%s\t%s\n", sym.Name, sym.Category)
		}
	}
	return w.Flush()
}
