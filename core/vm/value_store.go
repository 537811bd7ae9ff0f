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

	"github.com/irvm/irvm/core/ir"
)

// slotSize is the byte capacity of one SSA value; the widest operand is 16
// bytes.
const slotSize = 16

// ValueStore holds the results of previously executed nodes. The interpreter
// does not own it; handlers read operand bytes from it and write the result
// of the node being executed.
type ValueStore interface {
	// Load returns the raw little-endian bytes of ref. The slice is at least
	// slotSize long; bytes past SizeOf(ref) carry no meaning.
	Load(ref ir.Ref) []byte
	// SizeOf returns the result width recorded for ref.
	SizeOf(ref ir.Ref) uint8
	// Store records data as the size-byte result of ref.
	Store(ref ir.Ref, size uint8, data []byte)
}

// SSAData is a ValueStore with one fixed slot per ref. Distinct refs never
// share storage, so results of independent nodes may be stored concurrently.
type SSAData struct {
	slots [][slotSize]byte
	sizes []uint8
}

// NewSSAData returns a store for refs 1..n.
func NewSSAData(n int) *SSAData {
	return &SSAData{
		slots: make([][slotSize]byte, n+1),
		sizes: make([]uint8, n+1),
	}
}

// NewSSADataForBlock returns a store sized for every node of block.
func NewSSADataForBlock(block *ir.Block) *SSAData {
	return NewSSAData(block.Len())
}

// Len returns the highest ref the store can hold.
func (d *SSAData) Len() int { return len(d.slots) - 1 }

func (d *SSAData) Load(ref ir.Ref) []byte { return d.slots[ref][:] }

func (d *SSAData) SizeOf(ref ir.Ref) uint8 { return d.sizes[ref] }

func (d *SSAData) Store(ref ir.Ref, size uint8, data []byte) {
	slot := &d.slots[ref]
	n := copy(slot[:], data[:size])
	clear(slot[n:])
	d.sizes[ref] = size
}

// SetUint64 seeds ref with an integer of the given width.
func (d *SSAData) SetUint64(ref ir.Ref, size uint8, v uint64) {
	var buf [slotSize]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	d.Store(ref, size, buf[:])
}

// SetUint128 seeds ref with a 16-byte value.
func (d *SSAData) SetUint128(ref ir.Ref, lo, hi uint64) {
	var buf [slotSize]byte
	binary.LittleEndian.PutUint64(buf[:8], lo)
	binary.LittleEndian.PutUint64(buf[8:], hi)
	d.Store(ref, slotSize, buf[:])
}

// Uint64 returns the low eight bytes of ref.
func (d *SSAData) Uint64(ref ir.Ref) uint64 {
	return binary.LittleEndian.Uint64(d.slots[ref][:8])
}

// Uint128 returns both halves of ref.
func (d *SSAData) Uint128(ref ir.Ref) (lo, hi uint64) {
	return binary.LittleEndian.Uint64(d.slots[ref][:8]), binary.LittleEndian.Uint64(d.slots[ref][8:])
}

// Bytes returns a copy of the meaningful bytes of ref.
func (d *SSAData) Bytes(ref ir.Ref) []byte {
	return append([]byte(nil), d.slots[ref][:d.sizes[ref]]...)
}
