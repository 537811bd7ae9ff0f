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
	"context"
	"runtime"
	"testing"

	"github.com/cockroachdb/errors"
	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irvm/irvm/core/ir"
)

func constant(size uint8, v uint64) ir.Node {
	return ir.Node{Op: ir.OpConstant, Size: size, Constant: v}
}

func node(op ir.OpKind, size uint8, args ...ir.Ref) ir.Node {
	return ir.Node{Op: op, Size: size, Args: args}
}

// sampleBlock computes ((7 + 5) * 3) ^ popcount(entry + 0x10).
func sampleBlock() *ir.Block {
	return &ir.Block{
		Entry: 0xff00,
		Nodes: []ir.Node{
			constant(8, 7),
			constant(8, 5),
			constant(8, 3),
			node(ir.OpAdd, 8, 1, 2),
			node(ir.OpMul, 8, 4, 3),
			{Op: ir.OpEntrypointOffset, Size: 8, Offset: 0x10},
			node(ir.OpPopcount, 8, 6),
			node(ir.OpXor, 8, 5, 7),
		},
	}
}

func TestRun(t *testing.T) {
	block := sampleBlock()
	store := NewSSADataForBlock(block)
	in := NewInterpreter(Config{}, store)
	require.NoError(t, in.Run(block))

	assert.EqualValues(t, 12, store.Uint64(4))
	assert.EqualValues(t, 36, store.Uint64(5))
	assert.EqualValues(t, 0xff10, store.Uint64(6))
	assert.EqualValues(t, 9, store.Uint64(7))
	assert.EqualValues(t, 36^9, store.Uint64(8))
}

func TestRunFault(t *testing.T) {
	block := sampleBlock()
	block.Nodes[3].Size = 2
	store := NewSSADataForBlock(block)
	err := NewInterpreter(Config{}, store).Run(block)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedWidth))
	assert.Contains(t, err.Error(), "%4 = Add.2")
	// Nothing after the faulting node ran.
	assert.Zero(t, store.SizeOf(5))
}

func TestRunMalformed(t *testing.T) {
	block := sampleBlock()
	block.Nodes[0].Args = []ir.Ref{3}
	err := NewInterpreter(Config{}, NewSSADataForBlock(block)).Run(block)
	assert.True(t, errors.Is(err, ir.ErrMalformedBlock))
}

func TestCycleCounter(t *testing.T) {
	block := &ir.Block{Nodes: []ir.Node{{Op: ir.OpCycleCounter, Size: 8}}}

	store := NewSSADataForBlock(block)
	require.NoError(t, NewInterpreter(Config{DeterministicCycles: true}, store).Run(block))
	assert.Zero(t, store.Uint64(1))

	store = NewSSADataForBlock(block)
	require.NoError(t, NewInterpreter(Config{}, store).Run(block))
	assert.NotZero(t, store.Uint64(1))
}

// randomBlock builds a block of n nodes that only uses handlers defined for
// every input, so any operand values are legal.
func randomBlock(f *fuzz.Fuzzer, n int) *ir.Block {
	binary := []ir.OpKind{ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpUMul, ir.OpAnd, ir.OpOr,
		ir.OpXor, ir.OpAndn, ir.OpLshl, ir.OpLshr, ir.OpAshr, ir.OpRor, ir.OpUMulH, ir.OpMulH}
	unary := []ir.OpKind{ir.OpNot, ir.OpNeg, ir.OpPopcount, ir.OpFindLSB, ir.OpFindMSB,
		ir.OpCountLeadingZeroes, ir.OpFindTrailingZeros, ir.OpRev}

	block := &ir.Block{Entry: 0x1000}
	for i := 0; i < n; i++ {
		var pick, a, b uint32
		var c uint64
		f.Fuzz(&pick)
		f.Fuzz(&a)
		f.Fuzz(&b)
		f.Fuzz(&c)
		size := uint8(4 << (pick & 1))
		switch {
		case i < 4 || pick%5 == 0:
			block.Nodes = append(block.Nodes, constant(size, c))
		case pick%5 == 1:
			op := unary[int(pick/5)%len(unary)]
			block.Nodes = append(block.Nodes, node(op, size, ir.Ref(a%uint32(i)+1)))
		default:
			op := binary[int(pick/5)%len(binary)]
			block.Nodes = append(block.Nodes, node(op, size, ir.Ref(a%uint32(i)+1), ir.Ref(b%uint32(i)+1)))
		}
	}
	return block
}

func TestRunConcurrentMatchesRun(t *testing.T) {
	f := fuzz.NewWithSeed(42).NilChance(0)
	for round := 0; round < 20; round++ {
		block := randomBlock(f, 300)

		serial := NewSSADataForBlock(block)
		require.NoError(t, NewInterpreter(Config{}, serial).Run(block))

		for _, workers := range []int{0, 1, 3} {
			parallel := NewSSADataForBlock(block)
			in := NewInterpreter(Config{Workers: workers}, parallel)
			require.NoError(t, in.RunConcurrent(context.Background(), block))
			for ref := ir.Ref(1); int(ref) <= block.Len(); ref++ {
				require.Equal(t, serial.Bytes(ref), parallel.Bytes(ref), "round %d workers %d %v", round, workers, ref)
			}
		}
	}
}

func TestRunConcurrentFault(t *testing.T) {
	block := sampleBlock()
	block.Nodes[6].Size = 16
	err := NewInterpreter(Config{}, NewSSADataForBlock(block)).RunConcurrent(context.Background(), block)
	assert.True(t, errors.Is(err, ErrUnsupportedWidth))
}

func TestRunConcurrentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	block := sampleBlock()
	store := NewSSADataForBlock(block)
	err := NewInterpreter(Config{}, store).RunConcurrent(ctx, block)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, store.SizeOf(1))
}

// A zero divisor traps even when another chunk of the same wave faults.
func TestRunConcurrentDivideByZeroTraps(t *testing.T) {
	if runtime.NumCPU() < 2 {
		t.Skip("wave needs two pool tasks")
	}
	EnableDebugLogs(true)
	defer EnableDebugLogs(false)

	block := &ir.Block{Nodes: []ir.Node{constant(8, 1), constant(8, 0)}}
	for i := 0; i < 5; i++ {
		block.Nodes = append(block.Nodes, node(ir.OpPopcount, 16, 1))
	}
	for i := 0; i < 5; i++ {
		block.Nodes = append(block.Nodes, node(ir.OpUDiv, 8, 1, 2))
	}
	in := NewInterpreter(Config{}, NewSSADataForBlock(block))
	assert.Panics(t, func() { _ = in.RunConcurrent(context.Background(), block) })
}
