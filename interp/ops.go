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

package interp

import (
	"github.com/pkg/errors"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/diffir/build/ir"
)

// roundFloat rounds a value to the precision of a floating-point type.
// Types the backend cannot store (half and types wider than double)
// are computed in double precision.
func roundFloat(typ *ir.FloatType, x float64) float64 {
	switch typ.Kind().DType() {
	case dtype.Bfloat16:
		return float64(dtype.BFloat16FromFloat64(x).Float32())
	case dtype.Float32:
		return float64(float32(x))
	}
	return x
}

// wrapInt truncates an integer to a bit width, sign-extending the result.
func wrapInt(bits int, x int64) int64 {
	if bits >= 64 {
		return x
	}
	shift := 64 - bits
	return (x << shift) >> shift
}

func unsigned(bits int, x int64) uint64 {
	if bits >= 64 {
		return uint64(x)
	}
	return uint64(x) & (1<<bits - 1)
}

func binary(op ir.Opcode, typ ir.Type, x, y any) (any, error) {
	if vec, ok := typ.(*ir.VectorType); ok {
		xs, xok := x.([]any)
		ys, yok := y.([]any)
		if !xok || !yok || len(xs) != len(ys) {
			return nil, errors.Errorf("invalid vector operands %v and %v", x, y)
		}
		res := make([]any, len(xs))
		for i := range xs {
			var err error
			if res[i], err = binary(op, vec.Elem(), xs[i], ys[i]); err != nil {
				return nil, err
			}
		}
		return res, nil
	}
	switch typT := typ.(type) {
	case *ir.FloatType:
		xf, xok := x.(float64)
		yf, yok := y.(float64)
		if !xok || !yok {
			return nil, errors.Errorf("invalid floating-point operands %v and %v", x, y)
		}
		res, err := floatBinary(op, xf, yf)
		if err != nil {
			return nil, err
		}
		return roundFloat(typT, res), nil
	case *ir.IntType:
		xi, xok := x.(int64)
		yi, yok := y.(int64)
		if !xok || !yok {
			return nil, errors.Errorf("invalid integer operands %v and %v", x, y)
		}
		res, err := intBinary(op, xi, yi)
		if err != nil {
			return nil, err
		}
		return wrapInt(typT.Bits(), res), nil
	}
	return nil, errors.Errorf("cannot compute %s on %s", op, typ)
}

func floatBinary(op ir.Opcode, x, y float64) (float64, error) {
	switch op {
	case ir.FAddOp:
		return x + y, nil
	case ir.FSubOp:
		return x - y, nil
	case ir.FMulOp:
		return x * y, nil
	case ir.FDivOp:
		return x / y, nil
	}
	return 0, errors.Errorf("%s is not a floating-point operator", op)
}

func intBinary(op ir.Opcode, x, y int64) (int64, error) {
	switch op {
	case ir.AddOp:
		return x + y, nil
	case ir.SubOp:
		return x - y, nil
	case ir.MulOp:
		return x * y, nil
	}
	return 0, errors.Errorf("%s is not an integer operator", op)
}

func compare(pred ir.Predicate, typ *ir.IntType, x, y int64) int64 {
	bits := typ.Bits()
	sx, sy := wrapInt(bits, x), wrapInt(bits, y)
	ux, uy := unsigned(bits, x), unsigned(bits, y)
	var res bool
	switch pred {
	case ir.EQ:
		res = ux == uy
	case ir.NE:
		res = ux != uy
	case ir.ULT:
		res = ux < uy
	case ir.ULE:
		res = ux <= uy
	case ir.UGT:
		res = ux > uy
	case ir.UGE:
		res = ux >= uy
	case ir.SLT:
		res = sx < sy
	case ir.SLE:
		res = sx <= sy
	case ir.SGT:
		res = sx > sy
	case ir.SGE:
		res = sx >= sy
	}
	if res {
		return 1
	}
	return 0
}
