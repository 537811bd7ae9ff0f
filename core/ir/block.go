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
	"github.com/cockroachdb/errors"

	"github.com/irvm/irvm/common/bucket"
)

// ErrMalformedBlock is returned for blocks whose arguments do not reference
// earlier nodes of the same block.
var ErrMalformedBlock = errors.New("malformed block")

// Block is a straight-line sequence of nodes. Nodes[i] defines Ref(i+1).
type Block struct {
	Entry uint64 // guest address the block was translated from
	Nodes []Node
}

// Len returns the number of nodes.
func (b *Block) Len() int { return len(b.Nodes) }

// Ref returns the reference defined by Nodes[i].
func (b *Block) Ref(i int) Ref { return Ref(i + 1) }

// Node returns the node defining ref.
func (b *Block) Node(ref Ref) *Node { return &b.Nodes[ref-1] }

// Validate checks that every argument names an earlier node of the block.
func (b *Block) Validate() error {
	for i := range b.Nodes {
		self := b.Ref(i)
		for j, arg := range b.Nodes[i].Args {
			if !arg.IsValid() || arg >= self {
				return errors.Wrapf(ErrMalformedBlock, "%v: argument %d references %v", self, j, arg)
			}
		}
	}
	return nil
}

// Uses builds the use-list of every node: uses[ref] holds one entry per
// argument slot that consumes ref. Index 0 is unused.
func (b *Block) Uses() ([]*bucket.List[Ref], error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	uses := make([]*bucket.List[Ref], len(b.Nodes)+1)
	for i := 1; i < len(uses); i++ {
		uses[i] = bucket.New[Ref](bucket.DefaultSize)
	}
	for i := range b.Nodes {
		for _, arg := range b.Nodes[i].Args {
			uses[arg].Append(b.Ref(i))
		}
	}
	return uses, nil
}

// Waves partitions the block into dependency levels. Every node of a wave
// only consumes values defined in earlier waves, so the nodes of one wave may
// execute in any order or concurrently.
func (b *Block) Waves() ([][]Ref, error) {
	uses, err := b.Uses()
	if err != nil {
		return nil, err
	}
	pending := make([]int, len(b.Nodes)+1)
	var wave []Ref
	for i := range b.Nodes {
		pending[b.Ref(i)] = len(b.Nodes[i].Args)
		if pending[b.Ref(i)] == 0 {
			wave = append(wave, b.Ref(i))
		}
	}
	var waves [][]Ref
	for len(wave) > 0 {
		waves = append(waves, wave)
		var next []Ref
		for _, def := range wave {
			uses[def].Iterate(func(user Ref) {
				if pending[user]--; pending[user] == 0 {
					next = append(next, user)
				}
			})
		}
		wave = next
	}
	return waves, nil
}
