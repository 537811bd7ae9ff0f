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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/irvm/irvm/core/ir"
)

func TestSSADataStoreClearsTail(t *testing.T) {
	d := NewSSAData(2)
	d.SetUint128(1, 0x1111111111111111, 0x2222222222222222)
	d.SetUint64(1, 2, 0xabcdef)

	assert.EqualValues(t, 2, d.SizeOf(1))
	assert.Equal(t, []byte{0xef, 0xcd}, d.Bytes(1))
	lo, hi := d.Uint128(1)
	assert.EqualValues(t, 0xcdef, lo)
	assert.Zero(t, hi)
	assert.Len(t, d.Load(1), slotSize)
}

func TestSSADataForBlock(t *testing.T) {
	block := &ir.Block{Nodes: make([]ir.Node, 5)}
	d := NewSSADataForBlock(block)
	assert.Equal(t, 5, d.Len())
	assert.Zero(t, d.SizeOf(5))
}
