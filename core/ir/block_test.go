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
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// diamond builds
//
//	%1 = Constant
//	%2 = Constant
//	%3 = Add %1, %2
//	%4 = Sub %1, %2
//	%5 = Xor %3, %4
func diamond() *Block {
	return &Block{
		Entry: 0x1000,
		Nodes: []Node{
			{Op: OpConstant, Size: 8, Constant: 3},
			{Op: OpConstant, Size: 8, Constant: 5},
			{Op: OpAdd, Size: 8, Args: []Ref{1, 2}},
			{Op: OpSub, Size: 8, Args: []Ref{1, 2}},
			{Op: OpXor, Size: 8, Args: []Ref{3, 4}},
		},
	}
}

func TestBlockValidate(t *testing.T) {
	require.NoError(t, diamond().Validate())

	for name, args := range map[string][]Ref{
		"invalid": {0},
		"self":    {3},
		"forward": {4},
	} {
		b := diamond()
		b.Nodes[2].Args = args
		err := b.Validate()
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, ErrMalformedBlock), name)
	}
}

func TestBlockUses(t *testing.T) {
	uses, err := diamond().Uses()
	require.NoError(t, err)
	require.Len(t, uses, 6)

	assert.Equal(t, 2, uses[1].Len())
	assert.True(t, uses[1].Contains(3))
	assert.True(t, uses[1].Contains(4))
	assert.True(t, uses[3].Contains(5))
	assert.Equal(t, 0, uses[5].Len())

	// A node consuming the same value twice holds two entries.
	b := &Block{Nodes: []Node{
		{Op: OpConstant, Size: 4},
		{Op: OpAdd, Size: 4, Args: []Ref{1, 1}},
	}}
	uses, err = b.Uses()
	require.NoError(t, err)
	assert.Equal(t, 2, uses[1].Len())
}

func TestBlockWaves(t *testing.T) {
	waves, err := diamond().Waves()
	require.NoError(t, err)
	assert.Equal(t, [][]Ref{{1, 2}, {3, 4}, {5}}, waves)

	b := &Block{Nodes: []Node{
		{Op: OpConstant, Size: 4},
		{Op: OpAdd, Size: 4, Args: []Ref{1, 1}},
		{Op: OpNeg, Size: 4, Args: []Ref{2}},
	}}
	waves, err = b.Waves()
	require.NoError(t, err)
	assert.Equal(t, [][]Ref{{1}, {2}, {3}}, waves)

	waves, err = (&Block{}).Waves()
	require.NoError(t, err)
	assert.Empty(t, waves)

	bad := diamond()
	bad.Nodes[0].Args = []Ref{2}
	_, err = bad.Waves()
	assert.True(t, errors.Is(err, ErrMalformedBlock))
}

// Every node lands in exactly one wave, after all of its operands.
func TestBlockWavesLong(t *testing.T) {
	b := &Block{Nodes: []Node{{Op: OpConstant, Size: 8}}}
	for i := 1; i < 100; i++ {
		b.Nodes = append(b.Nodes, Node{Op: OpAdd, Size: 8, Args: []Ref{Ref(i), Ref((i + 1) / 2)}})
	}
	waves, err := b.Waves()
	require.NoError(t, err)

	level := make(map[Ref]int)
	for n, wave := range waves {
		for _, ref := range wave {
			_, dup := level[ref]
			require.False(t, dup)
			level[ref] = n
		}
	}
	require.Len(t, level, b.Len())
	for i := range b.Nodes {
		for _, arg := range b.Nodes[i].Args {
			assert.Less(t, level[arg], level[b.Ref(i)])
		}
	}
}
