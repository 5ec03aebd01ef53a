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

// Package fmterr formats errors attached to IR nodes.
//
// Errors returned by the IR packages identify the type or the instruction
// they were raised for, so that the caller can report a diagnostic and decide
// whether to abort the function, the module, or the whole compilation.
package fmterr

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/pkg/errors"
)

type (
	// Node is an IR node an error can be attached to.
	// Types and instructions of the IR implement it.
	Node interface {
		String() string
	}

	// ErrorWithNode is an error attached to an IR node.
	ErrorWithNode interface {
		error
		Node() Node
		Err() error
	}

	errorAt struct {
		node Node
		err  error
	}
)

// At attaches an error to an IR node.
func At(node Node, err error) error {
	if err == nil {
		return nil
	}
	return errorAt{node: node, err: err}
}

// Errorf returns a formatted error attached to an IR node.
// The error records the stack trace at the point it was created.
func Errorf(node Node, format string, a ...any) error {
	return At(node, errors.Errorf(format, a...))
}

// Internal marks an error as a bug in the toolkit rather than in its input.
func Internal(err error) error {
	return fmt.Errorf("diffir internal error. This is a bug. Please report it. Error:\n%+v", err)
}

// Internalf returns an internal error attached to an IR node.
func Internalf(node Node, format string, a ...any) error {
	return Internal(Errorf(node, format, a...))
}

func (err errorAt) Error() (s string) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		s = fmt.Sprintf("recovered from panic when building error message: %T:\n%v", err.err, string(debug.Stack()))
	}()
	if err.node == nil {
		return err.err.Error()
	}
	return err.node.String() + ": " + err.err.Error()
}

func (err errorAt) Unwrap() error {
	return err.err
}

func (err errorAt) Node() Node {
	return err.node
}

func (err errorAt) Err() error {
	return err.err
}

func (err errorAt) Format(s fmt.State, verb rune) {
	format(err, s, verb)
}

// NodeOf returns the innermost IR node an error has been attached to, or nil.
func NodeOf(err error) Node {
	var node Node
	for err != nil {
		if withNode, ok := err.(ErrorWithNode); ok {
			node = withNode.Node()
		}
		err = errors.Unwrap(err)
	}
	return node
}

func formatVerbose(err error, s fmt.State) {
	io.WriteString(s, err.Error())
	var withSt interface {
		StackTrace() errors.StackTrace
	}
	if !errors.As(err, &withSt) {
		return
	}
	fmt.Fprintf(s, "\nError generated at:%+v\n", withSt.StackTrace())
}

func format(err error, s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			formatVerbose(err, s)
			return
		}
		fallthrough
	case 's':
		io.WriteString(s, err.Error())
	case 'q':
		fmt.Fprintf(s, "%q", err.Error())
	}
}

// PrefixWith returns a function prefixing an error with a message.
// The original error can still be matched with errors.Is.
func PrefixWith(s string, o ...any) func(err error) error {
	return func(err error) error {
		if err == nil {
			return nil
		}
		return fmt.Errorf("%s%w", fmt.Sprintf(s, o...), err)
	}
}
