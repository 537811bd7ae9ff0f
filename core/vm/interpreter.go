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
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/log"

	"github.com/irvm/irvm/common/gopool"
	"github.com/irvm/irvm/core/ir"
)

// Config are the configuration options for the Interpreter
type Config struct {
	// DeterministicCycles makes CycleCounter read as zero so that runs are
	// reproducible.
	DeterministicCycles bool
	// Workers caps the number of tasks a wave is split into by RunConcurrent.
	// Zero picks a count from the wave size.
	Workers int
}

// Interpreter executes IR nodes against a value store. The handler table is
// shared and read-only; everything mutable lives in the store, which the
// caller owns.
type Interpreter struct {
	cfg   Config
	table *JumpTable
	store ValueStore
	entry uint64
}

// NewInterpreter returns a new instance of the Interpreter.
func NewInterpreter(cfg Config, store ValueStore) *Interpreter {
	return &Interpreter{
		cfg:   cfg,
		table: RegisterALUHandlers(),
		store: store,
	}
}

// Config returns the configuration the interpreter was built with.
func (in *Interpreter) Config() Config { return in.cfg }

// SetEntry sets the block entry address seen by EntrypointOffset.
func (in *Interpreter) SetEntry(entry uint64) { in.entry = entry }

// Exec runs the handler for node and stores its result under ref. Handlers
// never observe a node with fewer operands than they read.
func (in *Interpreter) Exec(ref ir.Ref, node *ir.Node) error {
	op, err := in.table.lookup(node.Op)
	if err != nil {
		return err
	}
	if len(node.Args) < op.numArgs {
		return fault(ErrMissingOperand, node.Op, "%v: %d operands, want %d", node.Op, len(node.Args), op.numArgs)
	}
	if shouldLog() {
		debugTrace("IR exec", "ref", ref, "node", node)
	}
	scope := ScopeContext{Node: node, Dest: ref, Store: in.store, Entry: in.entry}
	if err := op.execute(in, &scope); err != nil {
		return errors.Wrapf(err, "%v = %v", ref, node)
	}
	executedMeter.Mark(1)
	return nil
}

// Run executes the nodes of block in order. The first fault aborts the run.
func (in *Interpreter) Run(block *ir.Block) error {
	if err := block.Validate(); err != nil {
		return err
	}
	defer func(start time.Time) { runTimer.UpdateSince(start) }(time.Now())

	in.entry = block.Entry
	for i := range block.Nodes {
		if err := in.Exec(block.Ref(i), &block.Nodes[i]); err != nil {
			return err
		}
	}
	return nil
}

// RunConcurrent executes block one dependency wave at a time, spreading the
// nodes of each wave over the shared goroutine pool. Results are identical
// to Run. Cancellation is checked between waves.
func (in *Interpreter) RunConcurrent(ctx context.Context, block *ir.Block) error {
	waves, err := block.Waves()
	if err != nil {
		return err
	}
	defer func(start time.Time) { runTimer.UpdateSince(start) }(time.Now())

	in.entry = block.Entry
	for n, wave := range waves {
		if err := ctx.Err(); err != nil {
			log.Warn("IR run cancelled", "entry", block.Entry, "wave", n, "waves", len(waves))
			return err
		}
		waveCounter.Inc(1)
		if shouldLog() {
			debugTrace("IR wave", "wave", n, "nodes", len(wave),
				"running", gopool.Running(), "free", gopool.Free(), "cap", gopool.Cap())
		}
		if err := gopool.Wave(in.chunks(block, wave)); err != nil {
			return err
		}
	}
	return nil
}

// chunks splits a wave into pool tasks.
func (in *Interpreter) chunks(block *ir.Block, wave []ir.Ref) []func() error {
	threads := gopool.Threads(len(wave))
	if in.cfg.Workers > 0 && threads > in.cfg.Workers {
		threads = in.cfg.Workers
	}
	per := (len(wave) + threads - 1) / threads
	tasks := make([]func() error, 0, threads)
	for start := 0; start < len(wave); start += per {
		part := wave[start:min(start+per, len(wave))]
		tasks = append(tasks, func() error {
			for _, ref := range part {
				if err := in.Exec(ref, block.Node(ref)); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return tasks
}
