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

import "github.com/holiman/uint256"

// 128-bit arithmetic is carried out on 256-bit words: operands are zero- or
// sign-extended into the word and the low two limbs of the result are kept.

var signByte128 = uint256.NewInt(15)

// u128 zero-extends hi:lo.
func u128(lo, hi uint64) *uint256.Int {
	return &uint256.Int{lo, hi, 0, 0}
}

// s128 sign-extends the two's complement value hi:lo.
func s128(lo, hi uint64) *uint256.Int {
	z := u128(lo, hi)
	return z.ExtendSign(z, signByte128)
}

// s64 sign-extends a 64-bit value.
func s64(v uint64) *uint256.Int {
	return s128(v, uint64(int64(v)>>63))
}

// low128 returns the low 128 bits of z.
func low128(z *uint256.Int) (lo, hi uint64) {
	return z[0], z[1]
}
