// Copyright 2024 The irvm Authors
// This file is part of the irvm library.
//
// The irvm library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The irvm library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the irvm library. If not, see <http://www.gnu.org/licenses/>.

package vm

import (
	"math"

	"github.com/irvm/irvm/core/ir"
)

// isConditionTrue evaluates cond over a and b compared at size bytes. Integer
// predicates see the operands as unsigned or signed integers of that size,
// float predicates as binary32 (size 4) or binary64 (size 8).
func isConditionTrue(cond ir.CondClass, size uint8, a, b uint64) (bool, error) {
	w, err := checkWidth(ir.OpSelect, size, w4|w8)
	if err != nil {
		return false, err
	}
	switch cond {
	case ir.CondEQ:
		return w.trunc(a) == w.trunc(b), nil
	case ir.CondNEQ:
		return w.trunc(a) != w.trunc(b), nil
	case ir.CondSGE:
		return w.sext(a) >= w.sext(b), nil
	case ir.CondSLT:
		return w.sext(a) < w.sext(b), nil
	case ir.CondSGT:
		return w.sext(a) > w.sext(b), nil
	case ir.CondSLE:
		return w.sext(a) <= w.sext(b), nil
	case ir.CondUGE:
		return w.trunc(a) >= w.trunc(b), nil
	case ir.CondULT:
		return w.trunc(a) < w.trunc(b), nil
	case ir.CondUGT:
		return w.trunc(a) > w.trunc(b), nil
	case ir.CondULE:
		return w.trunc(a) <= w.trunc(b), nil
	}

	var fa, fb float64
	if size == 4 {
		fa = float64(math.Float32frombits(uint32(a)))
		fb = float64(math.Float32frombits(uint32(b)))
	} else {
		fa = math.Float64frombits(a)
		fb = math.Float64frombits(b)
	}
	unordered := math.IsNaN(fa) || math.IsNaN(fb)
	switch cond {
	case ir.CondFLU:
		return fa < fb || unordered, nil
	case ir.CondFGE:
		return fa >= fb && !unordered, nil
	case ir.CondFLEU:
		return fa <= fb || unordered, nil
	case ir.CondFGT:
		return fa > fb && !unordered, nil
	case ir.CondFU:
		return unordered, nil
	case ir.CondFNU:
		return !unordered, nil
	}
	return false, fault(ErrUnsupportedCondition, ir.OpSelect, "unsupported condition %v", cond)
}
