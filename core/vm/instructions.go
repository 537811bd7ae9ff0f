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
	"math/bits"
	"time"

	"github.com/holiman/uint256"

	"github.com/irvm/irvm/core/ir"
)

func opNop(in *Interpreter, scope *ScopeContext) error {
	return nil
}

func opTruncElementPair(in *Interpreter, scope *ScopeContext) error {
	if _, err := scope.width(w4); err != nil {
		return err
	}
	lo, hi := scope.u128(0)
	// Both 32-bit lanes land in one 64-bit result.
	scope.setN(8, lo&0xffffffff|hi<<32, 0)
	return nil
}

func opConstant(in *Interpreter, scope *ScopeContext) error {
	if _, err := scope.width(wAll); err != nil {
		return err
	}
	scope.set(scope.Node.Constant)
	return nil
}

func opEntrypointOffset(in *Interpreter, scope *ScopeContext) error {
	if _, err := scope.width(wAll); err != nil {
		return err
	}
	scope.set(scope.Entry + scope.Node.Offset)
	return nil
}

func opCycleCounter(in *Interpreter, scope *ScopeContext) error {
	if _, err := scope.width(wScalar); err != nil {
		return err
	}
	if in.cfg.DeterministicCycles {
		scope.set(0)
		return nil
	}
	scope.set(uint64(time.Now().UnixNano()))
	return nil
}

func opAdd(in *Interpreter, scope *ScopeContext) error {
	return scope.binary(w4|w8, func(a, b uint64, _ width) uint64 { return a + b })
}

func opSub(in *Interpreter, scope *ScopeContext) error {
	return scope.binary(w4|w8, func(a, b uint64, _ width) uint64 { return a - b })
}

func opNeg(in *Interpreter, scope *ScopeContext) error {
	return scope.unary(w4|w8, func(a uint64, _ width) uint64 { return -a })
}

func opMul(in *Interpreter, scope *ScopeContext) error {
	if scope.Node.Size == 16 {
		p := s64(scope.u64(0))
		p.Mul(p, s64(scope.u64(1)))
		scope.set128(low128(p))
		return nil
	}
	return scope.binary(w4|w8, func(a, b uint64, w width) uint64 {
		return uint64(w.sext(a) * w.sext(b))
	})
}

func opUMul(in *Interpreter, scope *ScopeContext) error {
	if scope.Node.Size == 16 {
		hi, lo := bits.Mul64(scope.u64(0), scope.u64(1))
		scope.set128(lo, hi)
		return nil
	}
	return scope.binary(w4|w8, func(a, b uint64, w width) uint64 {
		return w.trunc(a) * w.trunc(b)
	})
}

// The divide family does not check for a zero divisor: the front end only
// emits these after the guest divide-by-zero check. At widths up to 8 bytes a
// zero divisor panics like the host instruction; 128-bit quotients computed
// on uint256 words come out as zero.

func opDiv(in *Interpreter, scope *ScopeContext) error {
	if scope.Node.Size == 16 {
		q := s128(scope.u128(0))
		q.SDiv(q, s128(scope.u128(1)))
		scope.set128(low128(q))
		return nil
	}
	return scope.binary(wScalar, func(a, b uint64, w width) uint64 {
		return uint64(w.sext(a) / w.sext(b))
	})
}

func opUDiv(in *Interpreter, scope *ScopeContext) error {
	if scope.Node.Size == 16 {
		q := u128(scope.u128(0))
		q.Div(q, u128(scope.u128(1)))
		scope.set128(low128(q))
		return nil
	}
	return scope.binary(wScalar, func(a, b uint64, w width) uint64 {
		return w.trunc(a) / w.trunc(b)
	})
}

func opRem(in *Interpreter, scope *ScopeContext) error {
	if scope.Node.Size == 16 {
		r := s128(scope.u128(0))
		r.SMod(r, s128(scope.u128(1)))
		scope.set128(low128(r))
		return nil
	}
	return scope.binary(wScalar, func(a, b uint64, w width) uint64 {
		return uint64(w.sext(a) % w.sext(b))
	})
}

func opURem(in *Interpreter, scope *ScopeContext) error {
	if scope.Node.Size == 16 {
		r := u128(scope.u128(0))
		r.Mod(r, u128(scope.u128(1)))
		scope.set128(low128(r))
		return nil
	}
	return scope.binary(wScalar, func(a, b uint64, w width) uint64 {
		return w.trunc(a) % w.trunc(b)
	})
}

func opMulH(in *Interpreter, scope *ScopeContext) error {
	switch scope.Node.Size {
	case 4:
		w := widthOf(4)
		scope.set(uint64((w.sext(scope.u64(0)) * w.sext(scope.u64(1))) >> 32))
	case 8:
		p := s64(scope.u64(0))
		p.Mul(p, s64(scope.u64(1)))
		scope.set(p[1])
	default:
		return errUnsupportedWidth(scope.Node.Op, scope.Node.Size)
	}
	return nil
}

func opUMulH(in *Interpreter, scope *ScopeContext) error {
	switch scope.Node.Size {
	case 4:
		a, b := scope.u64(0)&0xffffffff, scope.u64(1)&0xffffffff
		scope.set(a * b >> 32)
	case 8:
		hi, _ := bits.Mul64(scope.u64(0), scope.u64(1))
		scope.set(hi)
	case 16:
		// XXX: wrong for 128-bit operands. Only the low halves are multiplied
		// and the high 64 bits of that product are returned, zero-extended.
		// Kept as is because existing translations depend on this value.
		hi, _ := bits.Mul64(scope.u64(0), scope.u64(1))
		scope.set(hi)
	default:
		return errUnsupportedWidth(scope.Node.Op, scope.Node.Size)
	}
	return nil
}

func opOr(in *Interpreter, scope *ScopeContext) error {
	if scope.Node.Size == 16 {
		alo, ahi := scope.u128(0)
		blo, bhi := scope.u128(1)
		scope.set128(alo|blo, ahi|bhi)
		return nil
	}
	return scope.binary(wScalar, func(a, b uint64, _ width) uint64 { return a | b })
}

func opAnd(in *Interpreter, scope *ScopeContext) error {
	return scope.binary(wScalar, func(a, b uint64, _ width) uint64 { return a & b })
}

func opAndn(in *Interpreter, scope *ScopeContext) error {
	return scope.binary(wScalar, func(a, b uint64, _ width) uint64 { return a &^ b })
}

func opXor(in *Interpreter, scope *ScopeContext) error {
	return scope.binary(wScalar, func(a, b uint64, _ width) uint64 { return a ^ b })
}

func opLshl(in *Interpreter, scope *ScopeContext) error {
	return scope.binary(w4|w8, func(a, b uint64, w width) uint64 {
		return a << w.countMask(b)
	})
}

func opLshr(in *Interpreter, scope *ScopeContext) error {
	return scope.binary(w4|w8, func(a, b uint64, w width) uint64 {
		return w.trunc(a) >> w.countMask(b)
	})
}

func opAshr(in *Interpreter, scope *ScopeContext) error {
	return scope.binary(w4|w8, func(a, b uint64, w width) uint64 {
		return uint64(w.sext(a) >> w.countMask(b))
	})
}

func opRor(in *Interpreter, scope *ScopeContext) error {
	return scope.binary(w4|w8, func(a, b uint64, w width) uint64 {
		x, r := w.trunc(a), w.countMask(b)
		return x>>r | x<<(uint64(w.bits)-r)
	})
}

// opExtr shifts the concatenation arg0:arg1 right by LSB bits.
func opExtr(in *Interpreter, scope *ScopeContext) error {
	lsb := uint(scope.Node.LSB)
	switch scope.Node.Size {
	case 4:
		hi, lo := scope.u64(0)&0xffffffff, scope.u64(1)&0xffffffff
		scope.set((hi<<32 | lo) >> lsb)
	case 8:
		v := u128(scope.u64(1), scope.u64(0))
		v.Rsh(v, lsb)
		scope.set(v[0])
	default:
		return errUnsupportedWidth(scope.Node.Op, scope.Node.Size)
	}
	return nil
}

// Long divides take the dividend as two operands (low, high) of the node
// size and a divisor of the node size. Only the low half of the quotient or
// remainder is kept.

// longDividend assembles the double-width dividend for sizes 2 and 4.
func longDividend(scope *ScopeContext, w width) uint64 {
	return w.trunc(scope.u64(1))<<w.bits | w.trunc(scope.u64(0))
}

func opLDiv(in *Interpreter, scope *ScopeContext) error {
	return longSigned(scope, func(n, d int64) int64 { return n / d }, (*uint256.Int).SDiv)
}

func opLRem(in *Interpreter, scope *ScopeContext) error {
	return longSigned(scope, func(n, d int64) int64 { return n % d }, (*uint256.Int).SMod)
}

func opLUDiv(in *Interpreter, scope *ScopeContext) error {
	return longUnsigned(scope, func(n, d uint64) uint64 { return n / d }, (*uint256.Int).Div)
}

func opLURem(in *Interpreter, scope *ScopeContext) error {
	return longUnsigned(scope, func(n, d uint64) uint64 { return n % d }, (*uint256.Int).Mod)
}

func longSigned(scope *ScopeContext, native func(n, d int64) int64, wide func(z, x, y *uint256.Int) *uint256.Int) error {
	w, err := scope.width(w2 | w4 | w8)
	if err != nil {
		return err
	}
	if w.bytes == 8 {
		n := s128(scope.u64(0), scope.u64(1))
		wide(n, n, s64(scope.u64(2)))
		scope.set(n[0])
		return nil
	}
	dw := widthOf(2 * w.bytes)
	n := dw.sext(longDividend(scope, w))
	scope.set(uint64(native(n, w.sext(scope.u64(2)))))
	return nil
}

func longUnsigned(scope *ScopeContext, native func(n, d uint64) uint64, wide func(z, x, y *uint256.Int) *uint256.Int) error {
	w, err := scope.width(w2 | w4 | w8)
	if err != nil {
		return err
	}
	if w.bytes == 8 {
		n := u128(scope.u64(0), scope.u64(1))
		wide(n, n, u128(scope.u64(2), 0))
		scope.set(n[0])
		return nil
	}
	scope.set(native(longDividend(scope, w), w.trunc(scope.u64(2))))
	return nil
}

func opNot(in *Interpreter, scope *ScopeContext) error {
	return scope.unary(wScalar, func(a uint64, _ width) uint64 { return ^a })
}

func opPopcount(in *Interpreter, scope *ScopeContext) error {
	return scope.unary(wScalar, func(a uint64, w width) uint64 {
		return uint64(bits.OnesCount64(w.trunc(a)))
	})
}

// opFindLSB yields the index of the lowest set bit, or all ones for zero.
func opFindLSB(in *Interpreter, scope *ScopeContext) error {
	return scope.unary(wScalar, func(a uint64, w width) uint64 {
		var ffs uint64 // 1-based position of the first set bit
		if x := w.trunc(a); x != 0 {
			ffs = uint64(bits.TrailingZeros64(x)) + 1
		}
		return ffs - 1
	})
}

// opFindMSB yields the index of the highest set bit, or all ones for zero.
func opFindMSB(in *Interpreter, scope *ScopeContext) error {
	return scope.unary(wScalar, func(a uint64, w width) uint64 {
		return uint64(bits.Len64(w.trunc(a))) - 1
	})
}

func opFindTrailingZeros(in *Interpreter, scope *ScopeContext) error {
	return scope.unary(wScalar, func(a uint64, w width) uint64 {
		x := w.trunc(a)
		if x == 0 {
			return uint64(w.bits)
		}
		return uint64(bits.TrailingZeros64(x))
	})
}

func opCountLeadingZeroes(in *Interpreter, scope *ScopeContext) error {
	return scope.unary(wScalar, func(a uint64, w width) uint64 {
		return uint64(bits.LeadingZeros64(w.trunc(a)) - (64 - int(w.bits)))
	})
}

func opRev(in *Interpreter, scope *ScopeContext) error {
	switch scope.Node.Size {
	case 2:
		scope.set(uint64(bits.ReverseBytes16(uint16(scope.u64(0)))))
	case 4:
		scope.set(uint64(bits.ReverseBytes32(uint32(scope.u64(0)))))
	case 8:
		scope.set(bits.ReverseBytes64(scope.u64(0)))
	default:
		return errUnsupportedWidth(scope.Node.Op, scope.Node.Size)
	}
	return nil
}

// bitfield validates the Width/LSB immediates and returns the unshifted
// field mask.
func bitfield(scope *ScopeContext) (uint64, error) {
	if _, err := scope.width(wScalar); err != nil {
		return 0, err
	}
	n := scope.Node
	if n.Width == 0 || uint(n.Width)+uint(n.LSB) > 64 {
		return 0, fault(ErrInvalidBitfield, n.Op, "%v: width %d at lsb %d", n.Op, n.Width, n.LSB)
	}
	if n.Width == 64 {
		return allOnes, nil
	}
	return 1<<n.Width - 1, nil
}

func opBfi(in *Interpreter, scope *ScopeContext) error {
	mask, err := bitfield(scope)
	if err != nil {
		return err
	}
	lsb := scope.Node.LSB
	dst, src := scope.u64(0), scope.u64(1)
	scope.set(dst&^(mask<<lsb) | (src&mask)<<lsb)
	return nil
}

func opBfe(in *Interpreter, scope *ScopeContext) error {
	mask, err := bitfield(scope)
	if err != nil {
		return err
	}
	lsb := scope.Node.LSB
	scope.set((scope.u64(0) & (mask << lsb)) >> lsb)
	return nil
}

// opSbfe sign-extends the field by moving its top bit into bit 63 and
// shifting back arithmetically.
func opSbfe(in *Interpreter, scope *ScopeContext) error {
	if _, err := bitfield(scope); err != nil {
		return err
	}
	n := scope.Node
	left := 64 - (uint(n.Width) + uint(n.LSB))
	right := left + uint(n.LSB)
	scope.set(uint64(int64(scope.u64(0)) << left >> right))
	return nil
}

// opSelect picks arg2 when the condition over arg0 and arg1 holds, arg3
// otherwise.
func opSelect(in *Interpreter, scope *ScopeContext) error {
	if _, err := scope.width(w4 | w8); err != nil {
		return err
	}
	n := scope.Node
	ok, err := isConditionTrue(n.Cond, n.CompareSize, scope.u64(0), scope.u64(1))
	if err != nil {
		return err
	}
	if ok {
		scope.set(scope.u64(2))
	} else {
		scope.set(scope.u64(3))
	}
	return nil
}

func opVExtractToGPR(in *Interpreter, scope *ScopeContext) error {
	if _, err := scope.width(wAll); err != nil {
		return err
	}
	n := scope.Node
	es, err := checkWidth(n.Op, n.ElementSize, wScalar)
	if err != nil {
		return err
	}
	srcSize := scope.argSize(0)
	if srcSize != 8 && srcSize != 16 {
		return errUnsupportedWidth(n.Op, srcSize)
	}
	if uint(n.ElementSize)*(uint(n.Idx)+1) > uint(srcSize) {
		return fault(ErrUnsupportedWidth, n.Op, "%v: lane %d of %d-byte elements outside %d-byte source",
			n.Op, n.Idx, n.ElementSize, srcSize)
	}
	shift := uint(n.ElementSize) * uint(n.Idx) * 8
	if srcSize == 16 {
		v := u128(scope.u128(0))
		v.Rsh(v, shift)
		scope.set(es.trunc(v[0]))
		return nil
	}
	scope.set(es.trunc(scope.u64(0) >> shift))
	return nil
}

// Float conversions are keyed by destination size in the high byte and
// source element size in the low byte.
const (
	convI64F32 = 0x0804
	convI64F64 = 0x0808
	convI32F32 = 0x0404
	convI32F64 = 0x0408
)

// floatToGPR converts argument 0 to a signed integer after applying round.
func floatToGPR(scope *ScopeContext, round func(float64) float64) error {
	n := scope.Node
	switch uint16(n.Size)<<8 | uint16(n.SrcElementSize) {
	case convI64F32:
		scope.set(uint64(int64(round(float64(scope.f32(0))))))
	case convI64F64:
		scope.set(uint64(int64(round(scope.f64(0)))))
	case convI32F32:
		scope.set(uint64(int32(round(float64(scope.f32(0))))))
	case convI32F64:
		scope.set(uint64(int32(round(scope.f64(0)))))
	default:
		return fault(ErrUnsupportedWidth, n.Op, "%v: no conversion to %d bytes from %d-byte float",
			n.Op, n.Size, n.SrcElementSize)
	}
	return nil
}

func opFloatToGPRZS(in *Interpreter, scope *ScopeContext) error {
	return floatToGPR(scope, math.Trunc)
}

// opFloatToGPRS rounds to nearest, ties to even, the default host rounding
// mode.
func opFloatToGPRS(in *Interpreter, scope *ScopeContext) error {
	return floatToGPR(scope, math.RoundToEven)
}

// opFCmp sets the requested flags. An unordered comparison forces LT and EQ
// on, matching the guest flag semantics.
func opFCmp(in *Interpreter, scope *ScopeContext) error {
	if _, err := scope.width(wScalar); err != nil {
		return err
	}
	n := scope.Node
	var a, b float64
	switch n.ElementSize {
	case 4:
		a, b = float64(scope.f32(0)), float64(scope.f32(1))
	case 8:
		a, b = scope.f64(0), scope.f64(1)
	default:
		return errUnsupportedWidth(n.Op, n.ElementSize)
	}
	unordered := math.IsNaN(a) || math.IsNaN(b)

	var result uint64
	if n.Flags&(1<<ir.FCmpFlagLT) != 0 && (unordered || a < b) {
		result |= 1 << ir.FCmpFlagLT
	}
	if n.Flags&(1<<ir.FCmpFlagUnordered) != 0 && unordered {
		result |= 1 << ir.FCmpFlagUnordered
	}
	if n.Flags&(1<<ir.FCmpFlagEQ) != 0 && (unordered || a == b) {
		result |= 1 << ir.FCmpFlagEQ
	}
	scope.set(result)
	return nil
}
