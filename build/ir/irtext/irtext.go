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

// Package irtext parses the textual form of IR types.
//
// The syntax is the one printed by the ir package:
//
//	double
//	i32
//	{ double, [4 x float], <2 x half>* }
//	<{ i8, i32 }>
//	double (double*, i64, ...)*
//	%node = type { double, %node* }
package irtext

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"
	"unicode"

	"github.com/pkg/errors"
	"github.com/gx-org/diffir/build/ir"
	"github.com/gx-org/diffir/build/ir/irkind"
)

type parser struct {
	ctx *ir.Context
	s   scanner.Scanner
	tok rune
}

func newParser(ctx *ir.Context, name, src string) *parser {
	p := &parser{ctx: ctx}
	p.s.Init(strings.NewReader(src))
	p.s.Filename = name
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts
	p.s.Error = func(*scanner.Scanner, string) {}
	p.next()
	return p
}

func (p *parser) next() {
	p.tok = p.s.Scan()
	for p.tok == ';' {
		for ch := p.s.Next(); ch != '\n' && ch != scanner.EOF; ch = p.s.Next() {
		}
		p.tok = p.s.Scan()
	}
}

func (p *parser) errorf(format string, a ...any) error {
	return errors.Errorf("%s: %s", p.s.Position, fmt.Sprintf(format, a...))
}

func (p *parser) tokString() string {
	if p.tok == scanner.EOF {
		return "end of input"
	}
	return strconv.Quote(p.s.TokenText())
}

func (p *parser) expect(tok rune) error {
	if p.tok != tok {
		return p.errorf("expected %s but got %s", scanner.TokenString(tok), p.tokString())
	}
	p.next()
	return nil
}

func (p *parser) expectKeyword(kw string) error {
	if p.tok != scanner.Ident || p.s.TokenText() != kw {
		return p.errorf("expected %q but got %s", kw, p.tokString())
	}
	p.next()
	return nil
}

func (p *parser) parseType() (ir.Type, error) {
	typ, err := p.parseBase()
	if err != nil {
		return nil, err
	}
	for {
		switch p.tok {
		case '*':
			p.next()
			typ = p.ctx.Pointer(typ)
		case '(':
			if typ, err = p.parseFunc(typ); err != nil {
				return nil, err
			}
		default:
			return typ, nil
		}
	}
}

func (p *parser) parseBase() (ir.Type, error) {
	switch p.tok {
	case scanner.Ident:
		return p.parseKeyword()
	case '[':
		p.next()
		n, elem, err := p.parseSeq(']')
		if err != nil {
			return nil, err
		}
		return p.ctx.Array(n, elem), nil
	case '<':
		p.next()
		if p.tok == '{' {
			fields, err := p.parseFields()
			if err != nil {
				return nil, err
			}
			if err := p.expect('>'); err != nil {
				return nil, err
			}
			return p.ctx.PackedStruct(fields...), nil
		}
		n, elem, err := p.parseSeq('>')
		if err != nil {
			return nil, err
		}
		return p.ctx.Vector(n, elem), nil
	case '{':
		fields, err := p.parseFields()
		if err != nil {
			return nil, err
		}
		return p.ctx.Struct(fields...), nil
	case '%':
		name, err := p.parseName()
		if err != nil {
			return nil, err
		}
		return p.namedStruct(name), nil
	}
	return nil, p.errorf("unexpected %s", p.tokString())
}

func (p *parser) parseKeyword() (ir.Type, error) {
	text := p.s.TokenText()
	kind := irkind.KindFromString(text)
	switch {
	case kind == irkind.Void:
		p.next()
		return p.ctx.Void(), nil
	case kind == irkind.Label:
		p.next()
		return p.ctx.Label(), nil
	case kind == irkind.Metadata:
		p.next()
		return p.ctx.Metadata(), nil
	case kind == irkind.Token:
		p.next()
		return p.ctx.Token(), nil
	case irkind.IsFloatKind(kind):
		p.next()
		return p.ctx.FloatOf(kind), nil
	}
	if strings.HasPrefix(text, "i") {
		bits, err := strconv.Atoi(text[1:])
		if err == nil && bits > 0 {
			p.next()
			return p.ctx.Int(bits), nil
		}
	}
	return nil, p.errorf("unknown type %s", p.tokString())
}

// parseSeq parses the content of an array or a vector after its opening bracket.
func (p *parser) parseSeq(closing rune) (uint64, ir.Type, error) {
	if p.tok != scanner.Int {
		return 0, nil, p.errorf("expected a number of elements but got %s", p.tokString())
	}
	n, err := strconv.ParseUint(p.s.TokenText(), 10, 64)
	if err != nil {
		return 0, nil, p.errorf("invalid number of elements: %v", err)
	}
	p.next()
	if err := p.expectKeyword("x"); err != nil {
		return 0, nil, err
	}
	elem, err := p.parseType()
	if err != nil {
		return 0, nil, err
	}
	if err := p.expect(closing); err != nil {
		return 0, nil, err
	}
	return n, elem, nil
}

func (p *parser) parseFields() ([]ir.Type, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}
	var fields []ir.Type
	if p.tok == '}' {
		p.next()
		return fields, nil
	}
	for {
		field, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
		if p.tok == '}' {
			p.next()
			return fields, nil
		}
		if err := p.expect(','); err != nil {
			return nil, err
		}
	}
}

func (p *parser) parseEllipsis() error {
	for range 3 {
		if err := p.expect('.'); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) parseFunc(ret ir.Type) (ir.Type, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	var params []ir.Type
	variadic := false
	for p.tok != ')' {
		if p.tok == '.' {
			if err := p.parseEllipsis(); err != nil {
				return nil, err
			}
			variadic = true
			break
		}
		param, err := p.parseType()
		if err != nil {
			return nil, err
		}
		params = append(params, param)
		if p.tok == ')' {
			break
		}
		if err := p.expect(','); err != nil {
			return nil, err
		}
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return p.ctx.Func(ret, params, variadic), nil
}

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

func (p *parser) parseName() (string, error) {
	if err := p.expect('%'); err != nil {
		return "", err
	}
	if p.tok != scanner.Ident && p.tok != scanner.Int {
		return "", p.errorf("expected a type name but got %s", p.tokString())
	}
	name := p.s.TokenText()
	p.next()
	for p.tok == '.' && isIdentStart(p.s.Peek()) {
		p.next()
		name += "." + p.s.TokenText()
		p.next()
	}
	return name, nil
}

func (p *parser) namedStruct(name string) *ir.StructType {
	if st := p.ctx.LookupStruct(name); st != nil {
		return st
	}
	return p.ctx.NamedStruct(name)
}

// ParseType parses a type. Named structures referenced by the type are
// created as opaque structures if they do not exist yet.
func ParseType(ctx *ir.Context, src string) (ir.Type, error) {
	p := newParser(ctx, "", src)
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if p.tok != scanner.EOF {
		return nil, p.errorf("unexpected %s after type %s", p.tokString(), typ)
	}
	return typ, nil
}

// MustParseType parses a type and panics if the source is invalid.
// It is meant for tests and package-level variables.
func MustParseType(ctx *ir.Context, src string) ir.Type {
	typ, err := ParseType(ctx, src)
	if err != nil {
		panic(err)
	}
	return typ
}

// ParseTypeDefs parses a list of named structure definitions:
//
//	%name = type { ... }
//	%other = type opaque
//
// Definitions can reference each other in any order, which is how
// recursive types are declared. Lines starting with ';' are comments.
func ParseTypeDefs(ctx *ir.Context, filename, src string) error {
	p := newParser(ctx, filename, src)
	for p.tok != scanner.EOF {
		name, err := p.parseName()
		if err != nil {
			return err
		}
		if err := p.expect('='); err != nil {
			return err
		}
		if err := p.expectKeyword("type"); err != nil {
			return err
		}
		st := p.namedStruct(name)
		if !st.Opaque() {
			return p.errorf("type %%%s redefined", name)
		}
		if p.tok == scanner.Ident && p.s.TokenText() == "opaque" {
			p.next()
			continue
		}
		body, err := p.parseType()
		if err != nil {
			return err
		}
		lit, ok := body.(*ir.StructType)
		if !ok || !lit.IsLiteral() {
			return p.errorf("body of %%%s must be a literal structure but got %s", name, body)
		}
		if err := st.SetBody(lit.Packed(), lit.Fields()...); err != nil {
			return err
		}
	}
	return nil
}
