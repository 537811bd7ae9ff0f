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

import "github.com/irvm/irvm/core/ir"

// widthSet is the set of operand sizes an operation accepts; bit n stands for
// an n-byte operand. Sets differ per operation and mirror the guest
// instruction coverage, so they are spelled out at every handler.
type widthSet uint32

const (
	w1  widthSet = 1 << 1
	w2  widthSet = 1 << 2
	w4  widthSet = 1 << 4
	w8  widthSet = 1 << 8
	w16 widthSet = 1 << 16

	wScalar = w1 | w2 | w4 | w8
	wAll    = wScalar | w16
)

func (ws widthSet) has(size uint8) bool {
	return size < 32 && ws&(1<<size) != 0
}

// width describes an integer operand of at most eight bytes.
type width struct {
	bytes uint8
	bits  uint
	mask  uint64
}

func widthOf(size uint8) width {
	bits := uint(size) * 8
	if bits >= 64 {
		return width{bytes: size, bits: bits, mask: allOnes}
	}
	return width{bytes: size, bits: bits, mask: 1<<bits - 1}
}

const allOnes = ^uint64(0)

// trunc zero-extends the low bits of v.
func (w width) trunc(v uint64) uint64 { return v & w.mask }

// sext sign-extends the low bits of v.
func (w width) sext(v uint64) int64 {
	shift := 64 - w.bits
	return int64(v<<shift) >> shift
}

// countMask masks a shift or rotate count the way the hardware does.
func (w width) countMask(n uint64) uint64 { return n & uint64(w.bits-1) }

// width validates the node size against set and describes it.
func (s *ScopeContext) width(set widthSet) (width, error) {
	return checkWidth(s.Node.Op, s.Node.Size, set)
}

func checkWidth(op ir.OpKind, size uint8, set widthSet) (width, error) {
	if !set.has(size) {
		return width{}, errUnsupportedWidth(op, size)
	}
	return widthOf(size), nil
}

// unary evaluates fn over argument 0 at one of the widths in set.
func (s *ScopeContext) unary(set widthSet, fn func(a uint64, w width) uint64) error {
	w, err := s.width(set)
	if err != nil {
		return err
	}
	s.set(w.trunc(fn(s.u64(0), w)))
	return nil
}

// binary evaluates fn over arguments 0 and 1 at one of the widths in set.
func (s *ScopeContext) binary(set widthSet, fn func(a, b uint64, w width) uint64) error {
	w, err := s.width(set)
	if err != nil {
		return err
	}
	s.set(w.trunc(fn(s.u64(0), s.u64(1), w)))
	return nil
}
