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

// Ref identifies an SSA value. Refs are 1-based; the zero Ref never names a
// value.
type Ref uint32

// InvalidRef is the reserved zero reference.
const InvalidRef Ref = 0

func (r Ref) IsValid() bool { return r != InvalidRef }

func (r Ref) String() string { return fmt.Sprintf("%%%d", uint32(r)) }

// Node is one IR instruction. Nodes are immutable after construction; the
// interpreter only reads them.
type Node struct {
	Op          OpKind
	Size        uint8 // result width in bytes
	ElementSize uint8 // per-lane width for vector metadata
	Args        []Ref

	Constant       uint64    // Constant
	Offset         uint64    // EntrypointOffset
	LSB            uint8     // Extr, Bfi, Bfe, Sbfe
	Width          uint8     // Bfi, Bfe, Sbfe
	Idx            uint8     // VExtractToGPR lane
	Cond           CondClass // Select
	CompareSize    uint8     // Select
	SrcElementSize uint8     // Float_ToGPR_*
	Flags          uint32    // FCmp requested flags
}

func (n *Node) String() string {
	return fmt.Sprintf("%v.%d %v", n.Op, n.Size, n.Args)
}

// CondClass is the predicate evaluated by Select.
type CondClass uint8

const (
	CondEQ CondClass = iota
	CondNEQ
	CondSGE
	CondSLT
	CondSGT
	CondSLE
	CondUGE
	CondULT
	CondUGT
	CondULE
	CondFLU  // less than or unordered
	CondFGE  // greater or equal, ordered
	CondFLEU // less or equal, or unordered
	CondFGT  // greater than, ordered
	CondFU   // unordered
	CondFNU  // ordered

	condCount
)

var condNames = [condCount]string{
	"EQ", "NEQ", "SGE", "SLT", "SGT", "SLE", "UGE", "ULT", "UGT", "ULE",
	"FLU", "FGE", "FLEU", "FGT", "FU", "FNU",
}

func (c CondClass) String() string {
	if c < condCount {
		return condNames[c]
	}
	return fmt.Sprintf("cond(%d)", uint8(c))
}

// ParseCond returns the condition named s.
func ParseCond(s string) (CondClass, bool) {
	for i, name := range condNames {
		if name == s {
			return CondClass(i), true
		}
	}
	return 0, false
}

// MarshalText implements encoding.TextMarshaler.
func (c CondClass) MarshalText() ([]byte, error) {
	if c >= condCount {
		return nil, errors.Newf("undefined condition %d", uint8(c))
	}
	return []byte(condNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *CondClass) UnmarshalText(text []byte) error {
	v, ok := ParseCond(string(text))
	if !ok {
		return errors.Newf("unknown condition %q", text)
	}
	*c = v
	return nil
}

// FCmp result and request flag bit positions.
const (
	FCmpFlagEQ        = 0
	FCmpFlagLT        = 1
	FCmpFlagUnordered = 2
)
