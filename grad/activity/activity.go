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

// Package activity classifies IR types by how their values carry derivatives.
//
// A differentiation pass queries the classification of the parameters and
// results of a function to decide which derivative values to thread through
// the generated code:
//   - Inert values carry no derivative,
//   - Shadowed values are paired with a shadow of the same shape and their
//     derivative is written in place through the shadow,
//   - Accumulated values produce their derivative as an extra output.
package activity

import "fmt"

// Activity is the differentiability classification of a type.
type Activity int

// Classifications, from the weakest to the strongest.
const (
	// Inert types carry no derivative (integers, functions).
	Inert Activity = iota
	// Accumulated types return their derivative as an additional output (floating-point values).
	Accumulated
	// Shadowed types carry their derivative in a parallel shadow value (pointers to floating-point values).
	Shadowed
)

var activityNames = [...]string{
	Inert:       "inert",
	Accumulated: "accumulated",
	Shadowed:    "shadowed",
}

func (a Activity) String() string {
	if !a.valid() {
		return fmt.Sprintf("Activity(%d)", int(a))
	}
	return activityNames[a]
}

func (a Activity) valid() bool {
	return a >= Inert && a <= Shadowed
}

// combineTable[a][b] is the classification of an aggregate with
// two members classified as a and b.
var combineTable = [3][3]Activity{
	Inert:       {Inert: Inert, Accumulated: Accumulated, Shadowed: Shadowed},
	Accumulated: {Inert: Accumulated, Accumulated: Accumulated, Shadowed: Shadowed},
	Shadowed:    {Inert: Shadowed, Accumulated: Shadowed, Shadowed: Shadowed},
}

// Combine returns the classification of an aggregate given the classification of two of its members.
// Combine is commutative and associative. Inert is its
// identity and Shadowed absorbs everything.
func Combine(a, b Activity) Activity {
	return combineTable[a][b]
}
