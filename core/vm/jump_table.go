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
	"fmt"
	"sync"

	"github.com/irvm/irvm/core/ir"
)

// ExecutionFunc computes the result of one node and stores it in the node's
// slot.
type ExecutionFunc func(in *Interpreter, scope *ScopeContext) error

type operation struct {
	execute ExecutionFunc
	numArgs int // operands the handler reads
}

// JumpTable maps every operation kind to its handler. A table is filled once
// and never written afterwards, so it may be shared by any number of
// interpreters running concurrently.
type JumpTable [ir.OpCount]*operation

// aluInstructions is the full set of ALU operations.
var aluInstructions = []struct {
	op      ir.OpKind
	numArgs int
	execute ExecutionFunc
}{
	{ir.OpTruncElementPair, 1, opTruncElementPair},
	{ir.OpConstant, 0, opConstant},
	{ir.OpEntrypointOffset, 0, opEntrypointOffset},
	{ir.OpInlineConstant, 0, opNop},
	{ir.OpInlineEntrypointOffset, 0, opNop},
	{ir.OpCycleCounter, 0, opCycleCounter},
	{ir.OpAdd, 2, opAdd},
	{ir.OpSub, 2, opSub},
	{ir.OpNeg, 1, opNeg},
	{ir.OpMul, 2, opMul},
	{ir.OpUMul, 2, opUMul},
	{ir.OpDiv, 2, opDiv},
	{ir.OpUDiv, 2, opUDiv},
	{ir.OpRem, 2, opRem},
	{ir.OpURem, 2, opURem},
	{ir.OpMulH, 2, opMulH},
	{ir.OpUMulH, 2, opUMulH},
	{ir.OpOr, 2, opOr},
	{ir.OpAnd, 2, opAnd},
	{ir.OpAndn, 2, opAndn},
	{ir.OpXor, 2, opXor},
	{ir.OpLshl, 2, opLshl},
	{ir.OpLshr, 2, opLshr},
	{ir.OpAshr, 2, opAshr},
	{ir.OpRor, 2, opRor},
	{ir.OpExtr, 2, opExtr},
	{ir.OpLDiv, 3, opLDiv},
	{ir.OpLUDiv, 3, opLUDiv},
	{ir.OpLRem, 3, opLRem},
	{ir.OpLURem, 3, opLURem},
	{ir.OpNot, 1, opNot},
	{ir.OpPopcount, 1, opPopcount},
	{ir.OpFindLSB, 1, opFindLSB},
	{ir.OpFindMSB, 1, opFindMSB},
	{ir.OpFindTrailingZeros, 1, opFindTrailingZeros},
	{ir.OpCountLeadingZeroes, 1, opCountLeadingZeroes},
	{ir.OpRev, 1, opRev},
	{ir.OpBfi, 2, opBfi},
	{ir.OpBfe, 1, opBfe},
	{ir.OpSbfe, 1, opSbfe},
	{ir.OpSelect, 4, opSelect},
	{ir.OpVExtractToGPR, 1, opVExtractToGPR},
	{ir.OpFloatToGPRZS, 1, opFloatToGPRZS},
	{ir.OpFloatToGPRS, 1, opFloatToGPRS},
	{ir.OpFCmp, 2, opFCmp},
}

var (
	aluTableOnce sync.Once
	aluTable     *JumpTable
)

func init() {
	RegisterALUHandlers()
}

// RegisterALUHandlers builds the process-wide ALU table on first use and
// returns it. It runs during package initialisation; later calls return the
// same table.
func RegisterALUHandlers() *JumpTable {
	aluTableOnce.Do(func() {
		aluTable = newALUInstructionSet()
	})
	return aluTable
}

func newALUInstructionSet() *JumpTable {
	var jt JumpTable
	for _, ins := range aluInstructions {
		jt.register(ins.op, &operation{execute: ins.execute, numArgs: ins.numArgs})
	}
	return &jt
}

// register installs the handler for op. Installing a second handler for the
// same kind is a construction bug.
func (jt *JumpTable) register(op ir.OpKind, o *operation) {
	if jt[op] != nil {
		panic(fmt.Sprintf("duplicate handler for %v", op))
	}
	jt[op] = o
}

func (jt *JumpTable) lookup(op ir.OpKind) (*operation, error) {
	if o := jt[op]; o != nil {
		return o, nil
	}
	return nil, errMissingHandler(op)
}

// LookupHandler returns the ALU handler registered for op.
func LookupHandler(op ir.OpKind) (ExecutionFunc, error) {
	o, err := RegisterALUHandlers().lookup(op)
	if err != nil {
		return nil, err
	}
	return o.execute, nil
}

// NumOperands returns how many arguments the handler for op reads.
func NumOperands(op ir.OpKind) (int, error) {
	o, err := RegisterALUHandlers().lookup(op)
	if err != nil {
		return 0, err
	}
	return o.numArgs, nil
}
