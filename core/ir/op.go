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

package ir

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// OpKind is the operation tag carried by every IR node.
type OpKind byte

// 0x0 range - materialisation.
const (
	OpInvalid OpKind = iota
	OpTruncElementPair
	OpConstant
	OpEntrypointOffset
	OpInlineConstant
	OpInlineEntrypointOffset
	OpCycleCounter
)

// 0x10 range - integer arithmetic.
const (
	OpAdd OpKind = 0x10 + iota
	OpSub
	OpNeg
	OpMul
	OpUMul
	OpDiv
	OpUDiv
	OpRem
	OpURem
	OpMulH
	OpUMulH
)

// 0x20 range - bitwise logic and shifts.
const (
	OpOr OpKind = 0x20 + iota
	OpAnd
	OpAndn
	OpXor
	OpLshl
	OpLshr
	OpAshr
	OpRor
	OpExtr
	OpNot
)

// 0x30 range - widening divide.
const (
	OpLDiv OpKind = 0x30 + iota
	OpLUDiv
	OpLRem
	OpLURem
)

// 0x40 range - bit scans and bitfields.
const (
	OpPopcount OpKind = 0x40 + iota
	OpFindLSB
	OpFindMSB
	OpFindTrailingZeros
	OpCountLeadingZeroes
	OpRev
	OpBfi
	OpBfe
	OpSbfe
)

// 0x50 range - select, vector extract and float conversion.
const (
	OpSelect OpKind = 0x50 + iota
	OpVExtractToGPR
	OpFloatToGPRZS
	OpFloatToGPRS
	OpFCmp
)

// OpCount bounds the operation space; every OpKind is below it.
const OpCount = 256

var opKindToString = map[OpKind]string{
	OpInvalid:                "Invalid",
	OpTruncElementPair:       "TruncElementPair",
	OpConstant:               "Constant",
	OpEntrypointOffset:       "EntrypointOffset",
	OpInlineConstant:         "InlineConstant",
	OpInlineEntrypointOffset: "InlineEntrypointOffset",
	OpCycleCounter:           "CycleCounter",

	OpAdd:   "Add",
	OpSub:   "Sub",
	OpNeg:   "Neg",
	OpMul:   "Mul",
	OpUMul:  "UMul",
	OpDiv:   "Div",
	OpUDiv:  "UDiv",
	OpRem:   "Rem",
	OpURem:  "URem",
	OpMulH:  "MulH",
	OpUMulH: "UMulH",

	OpOr:   "Or",
	OpAnd:  "And",
	OpAndn: "Andn",
	OpXor:  "Xor",
	OpLshl: "Lshl",
	OpLshr: "Lshr",
	OpAshr: "Ashr",
	OpRor:  "Ror",
	OpExtr: "Extr",
	OpNot:  "Not",

	OpLDiv:  "LDiv",
	OpLUDiv: "LUDiv",
	OpLRem:  "LRem",
	OpLURem: "LURem",

	OpPopcount:           "Popcount",
	OpFindLSB:            "FindLSB",
	OpFindMSB:            "FindMSB",
	OpFindTrailingZeros:  "FindTrailingZeros",
	OpCountLeadingZeroes: "CountLeadingZeroes",
	OpRev:                "Rev",
	OpBfi:                "Bfi",
	OpBfe:                "Bfe",
	OpSbfe:               "Sbfe",

	OpSelect:        "Select",
	OpVExtractToGPR: "VExtractToGPR",
	OpFloatToGPRZS:  "Float_ToGPR_ZS",
	OpFloatToGPRS:   "Float_ToGPR_S",
	OpFCmp:          "FCmp",
}

func (op OpKind) String() string {
	if s, ok := opKindToString[op]; ok {
		return s
	}
	return fmt.Sprintf("opkind %#x not defined", byte(op))
}

var stringToOpKind map[string]OpKind

func init() {
	stringToOpKind = make(map[string]OpKind, len(opKindToString))
	for op, name := range opKindToString {
		stringToOpKind[name] = op
	}
}

// ParseOpKind returns the operation named s. The invalid kind is not
// parseable.
func ParseOpKind(s string) (OpKind, bool) {
	op, ok := stringToOpKind[s]
	if !ok || op == OpInvalid {
		return OpInvalid, false
	}
	return op, true
}

// MarshalText implements encoding.TextMarshaler.
func (op OpKind) MarshalText() ([]byte, error) {
	if _, ok := opKindToString[op]; !ok || op == OpInvalid {
		return nil, errors.Newf("undefined opkind %#x", byte(op))
	}
	return []byte(op.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (op *OpKind) UnmarshalText(text []byte) error {
	v, ok := ParseOpKind(string(text))
	if !ok {
		return errors.Newf("unknown operation %q", text)
	}
	*op = v
	return nil
}

// Kinds returns every defined operation kind except OpInvalid, in tag order.
func Kinds() []OpKind {
	kinds := make([]OpKind, 0, len(opKindToString))
	for i := 1; i < OpCount; i++ {
		if _, ok := opKindToString[OpKind(i)]; ok {
			kinds = append(kinds, OpKind(i))
		}
	}
	return kinds
}
