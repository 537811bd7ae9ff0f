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
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/irvm/irvm/cmd/utils"
	"github.com/irvm/irvm/core/ir"
	"github.com/irvm/irvm/core/vm"
)

var (
	runCommand = &cli.Command{
		Action:    runPrograms,
		Name:      "run",
		Usage:     "Execute IR programs and print every node's result",
		ArgsUsage: "<program.toml> [<program.toml>...]",
		Flags: append([]cli.Flag{
			utils.ConfigFileFlag,
			utils.ConcurrentFlag,
		}, utils.VMFlags...),
		Description: `
The run command executes each program file as one block. Programs are
independent and run in parallel; results are printed in argument order.

A program lists its nodes in definition order:

    Entry = "0x1000"

    [[Nodes]]
    Op = "Constant"
    Size = 8
    Constant = "0x7"

    [[Nodes]]
    Op = "Add"
    Size = 8
    Args = [1, 1]`,
	}
	opsCommand = &cli.Command{
		Action: listOps,
		Name:   "ops",
		Usage:  "List the supported operations",
	}
)

// execution is the outcome of one program file.
type execution struct {
	file    string
	block   *ir.Block
	store   *vm.SSAData
	elapsed time.Duration
}

func runPrograms(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return fmt.Errorf("required arguments: %v", ctx.Command.ArgsUsage)
	}
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	concurrent := ctx.Bool(utils.ConcurrentFlag.Name)

	files := ctx.Args().Slice()
	results := make([]*execution, len(files))

	g, gctx := errgroup.WithContext(ctx.Context)
	g.SetLimit(runtime.NumCPU())
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			res, err := execute(gctx, file, cfg.VM, concurrent)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, res := range results {
		printResults(os.Stdout, res)
	}
	return nil
}

// execute loads and runs a single program file.
func execute(ctx context.Context, file string, cfg vm.Config, concurrent bool) (*execution, error) {
	block, err := loadProgram(file)
	if err != nil {
		return nil, err
	}
	var (
		store = vm.NewSSADataForBlock(block)
		in    = vm.NewInterpreter(cfg, store)
		start = time.Now()
	)
	if concurrent {
		err = in.RunConcurrent(ctx, block)
	} else {
		err = in.Run(block)
	}
	if err != nil {
		return nil, errors.Wrap(err, file)
	}
	elapsed := time.Since(start)
	log.Info("Executed program", "file", file, "nodes", block.Len(), "concurrent", concurrent, "elapsed", elapsed)
	return &execution{file: file, block: block, store: store, elapsed: elapsed}, nil
}

// formatValue renders the stored result of ref as a hex number.
func formatValue(store *vm.SSAData, ref ir.Ref) string {
	switch size := store.SizeOf(ref); {
	case size == 0:
		return "-"
	case size > 8:
		lo, hi := store.Uint128(ref)
		return fmt.Sprintf("0x%016x%016x", hi, lo)
	default:
		return hexutil.EncodeUint64(store.Uint64(ref))
	}
}

func printResults(w io.Writer, res *execution) {
	data := make([][]string, 0, res.block.Len())
	for i := range res.block.Nodes {
		var (
			ref  = res.block.Ref(i)
			node = &res.block.Nodes[i]
			args = make([]string, len(node.Args))
		)
		for j, arg := range node.Args {
			args[j] = arg.String()
		}
		data = append(data, []string{
			ref.String(),
			node.Op.String(),
			fmt.Sprint(node.Size),
			strings.Join(args, ", "),
			formatValue(res.store, ref),
		})
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Ref", "Op", "Size", "Args", "Value"})
	table.SetCaption(true, fmt.Sprintf("%s (%v)", res.file, res.elapsed))
	table.AppendBulk(data)
	table.Render()
}

func listOps(ctx *cli.Context) error {
	var data [][]string
	for _, op := range ir.Kinds() {
		n, err := vm.NumOperands(op)
		if err != nil {
			return err
		}
		data = append(data, []string{op.String(), fmt.Sprintf("%#04x", byte(op)), fmt.Sprint(n)})
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Op", "Tag", "Operands"})
	table.AppendBulk(data)
	table.Render()
	return nil
}
