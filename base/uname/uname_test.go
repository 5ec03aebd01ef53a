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

package uname_test

import (
	"testing"

	"github.com/gx-org/diffir/base/uname"
)

func TestName(t *testing.T) {
	tests := []struct {
		name, want string
	}{
		{name: "i", want: "i"},
		{name: "i", want: "i1"},
		{name: "i", want: "i2"},
		{name: "ptr", want: "ptr"},
		{name: "ptr", want: "ptr1"},
		{name: "i", want: "i3"},
	}
	unames := uname.New()
	for i, test := range tests {
		got := unames.Name(test.name)
		if got != test.want {
			t.Errorf("test %d: for name %s, got %s but want %s", i, test.name, got, test.want)
		}
	}
}

func TestRegister(t *testing.T) {
	unames := uname.New()
	unames.Register("x")
	unames.Register("x1")
	if !unames.Taken("x1") {
		t.Errorf("x1 has been registered but is not reported as taken")
	}
	if got, want := unames.Name("x"), "x2"; got != want {
		t.Errorf("got %s but want %s", got, want)
	}
	if got, want := unames.Name("y"), "y"; got != want {
		t.Errorf("got %s but want %s", got, want)
	}
}
