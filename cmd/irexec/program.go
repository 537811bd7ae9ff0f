// Copyright 2024 The irvm Authors
// This file is part of irvm.
//
// irvm is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// irvm is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with irvm. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"bufio"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/naoina/toml"

	"github.com/irvm/irvm/core/ir"
)

// programFile is the TOML form of a block. Nodes are numbered from 1 in file
// order and Args refer to those numbers. 64-bit immediates are hex strings.
type programFile struct {
	Entry hexutil.Uint64
	Nodes []programNode
}

type programNode struct {
	Op             ir.OpKind
	Size           uint8
	ElementSize    uint8
	Args           []ir.Ref
	Constant       hexutil.Uint64
	Offset         hexutil.Uint64
	LSB            uint8
	Width          uint8
	Idx            uint8
	Cond           ir.CondClass
	CompareSize    uint8
	SrcElementSize uint8
	Flags          uint32
}

func (p *programFile) block() *ir.Block {
	block := &ir.Block{
		Entry: uint64(p.Entry),
		Nodes: make([]ir.Node, len(p.Nodes)),
	}
	for i, n := range p.Nodes {
		block.Nodes[i] = ir.Node{
			Op:             n.Op,
			Size:           n.Size,
			ElementSize:    n.ElementSize,
			Args:           n.Args,
			Constant:       uint64(n.Constant),
			Offset:         uint64(n.Offset),
			LSB:            n.LSB,
			Width:          n.Width,
			Idx:            n.Idx,
			Cond:           n.Cond,
			CompareSize:    n.CompareSize,
			SrcElementSize: n.SrcElementSize,
			Flags:          n.Flags,
		}
	}
	return block
}

// loadProgram reads a block from a TOML program file and checks that it is
// well formed.
func loadProgram(file string) (*ir.Block, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var prog programFile
	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(&prog)
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	if err != nil {
		return nil, err
	}
	block := prog.block()
	if err := block.Validate(); err != nil {
		return nil, errors.Wrap(err, file)
	}
	return block, nil
}
