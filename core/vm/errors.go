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
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/log"

	"github.com/irvm/irvm/core/ir"
)

// List of interpreter faults. All of them are internal invariant violations:
// the front end never emits such nodes, so they are reported as assertion
// failures and must abort interpretation of the block.
var (
	ErrUnsupportedWidth     = errors.New("unsupported operand width")
	ErrMissingHandler       = errors.New("no handler registered")
	ErrInvalidBitfield      = errors.New("invalid bitfield")
	ErrUnsupportedCondition = errors.New("unsupported select condition")
	ErrMissingOperand       = errors.New("missing operand")
)

// fault builds an assertion failure marked with kind and logs it. Faults are
// counted so that a misbehaving front end shows up in metrics even when the
// caller swallows the error.
func fault(kind error, op ir.OpKind, format string, args ...interface{}) error {
	err := errors.Mark(errors.AssertionFailedf(format, args...), kind)
	faultCounter.Inc(1)
	log.Error("IR interpreter fault", "op", op, "kind", kind, "err", err)
	return err
}

// errUnsupportedWidth reports a width outside the set the operation accepts.
func errUnsupportedWidth(op ir.OpKind, size uint8) error {
	return fault(ErrUnsupportedWidth, op, "%v: unsupported size %d", op, size)
}

// errMissingHandler reports an operation kind without a registered handler.
func errMissingHandler(op ir.OpKind) error {
	return fault(ErrMissingHandler, op, "no handler for %v", op)
}
