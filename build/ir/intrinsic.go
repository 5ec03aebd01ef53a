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

import "strings"

// Intrinsic identifies a function implemented by the compiler.
type Intrinsic int

// Intrinsics known to the IR.
const (
	NotIntrinsic Intrinsic = iota
	DbgDeclare
	DbgValue
	DbgLabel
	DbgAddr
	LifetimeStart
	LifetimeEnd
	Memcpy
	Memmove
	Memset
)

const intrinsicPrefix = "llvm."

var intrinsicNames = map[Intrinsic]string{
	DbgDeclare:    "llvm.dbg.declare",
	DbgValue:      "llvm.dbg.value",
	DbgLabel:      "llvm.dbg.label",
	DbgAddr:       "llvm.dbg.addr",
	LifetimeStart: "llvm.lifetime.start",
	LifetimeEnd:   "llvm.lifetime.end",
	Memcpy:        "llvm.memcpy",
	Memmove:       "llvm.memmove",
	Memset:        "llvm.memset",
}

var intrinsicIDs = func() map[string]Intrinsic {
	ids := make(map[string]Intrinsic, len(intrinsicNames))
	for id, name := range intrinsicNames {
		ids[name] = id
	}
	return ids
}()

// String returns the base name of the intrinsic.
func (id Intrinsic) String() string {
	name, ok := intrinsicNames[id]
	if !ok {
		return "not_intrinsic"
	}
	return name
}

// IsDebugInfo returns true if the intrinsic only carries debug information.
// Lifetime markers are not debug information.
func (id Intrinsic) IsDebugInfo() bool {
	switch id {
	case DbgDeclare, DbgValue, DbgLabel, DbgAddr:
		return true
	}
	return false
}

// IsLifetimeMarker returns true if the intrinsic marks the beginning or end of a stack object lifetime.
func (id Intrinsic) IsLifetimeMarker() bool {
	return id == LifetimeStart || id == LifetimeEnd
}

// LookupIntrinsic returns the intrinsic given a function name.
// Overloaded intrinsics carry type suffixes (llvm.memcpy.p0i8.p0i8.i64)
// which are ignored.
func LookupIntrinsic(name string) Intrinsic {
	if !strings.HasPrefix(name, intrinsicPrefix) {
		return NotIntrinsic
	}
	for len(name) > len(intrinsicPrefix) {
		if id, ok := intrinsicIDs[name]; ok {
			return id
		}
		dot := strings.LastIndexByte(name, '.')
		if dot < len(intrinsicPrefix) {
			break
		}
		name = name[:dot]
	}
	return NotIntrinsic
}
