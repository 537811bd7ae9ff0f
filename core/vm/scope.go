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
	"encoding/binary"
	"math"

	"github.com/irvm/irvm/core/ir"
)

// ScopeContext carries what one handler invocation may touch: the node being
// executed, its result slot and the store it reads operands from.
type ScopeContext struct {
	Node  *ir.Node
	Dest  ir.Ref
	Store ValueStore
	Entry uint64 // entry address of the block being interpreted
}

func (s *ScopeContext) arg(i int) []byte { return s.Store.Load(s.Node.Args[i]) }

// argSize returns the result width of the node that defined argument i.
func (s *ScopeContext) argSize(i int) uint8 { return s.Store.SizeOf(s.Node.Args[i]) }

func (s *ScopeContext) u64(i int) uint64 { return binary.LittleEndian.Uint64(s.arg(i)) }

func (s *ScopeContext) u128(i int) (lo, hi uint64) {
	b := s.arg(i)
	return binary.LittleEndian.Uint64(b), binary.LittleEndian.Uint64(b[8:])
}

func (s *ScopeContext) f32(i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(s.arg(i)))
}

func (s *ScopeContext) f64(i int) float64 {
	return math.Float64frombits(s.u64(i))
}

// set stores v as the result, truncated or zero-extended to the node size.
func (s *ScopeContext) set(v uint64) { s.setN(s.Node.Size, v, 0) }

// set128 stores the 128-bit value hi:lo at the node size.
func (s *ScopeContext) set128(lo, hi uint64) { s.setN(s.Node.Size, lo, hi) }

// setN stores size bytes of hi:lo.
func (s *ScopeContext) setN(size uint8, lo, hi uint64) {
	var buf [slotSize]byte
	binary.LittleEndian.PutUint64(buf[:8], lo)
	binary.LittleEndian.PutUint64(buf[8:], hi)
	s.Store.Store(s.Dest, size, buf[:])
}
