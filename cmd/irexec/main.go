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

// irexec executes IR programs written as TOML and prints every result.
package main

import (
	"os"

	"github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"

	"github.com/irvm/irvm/cmd/utils"
)

var app = &cli.App{
	Name:  "irexec",
	Usage: "the IR interpreter command line interface",
	Flags: utils.LoggingFlags,
	Before: func(ctx *cli.Context) error {
		utils.SetupLogging(ctx)
		return nil
	},
	After: func(ctx *cli.Context) error {
		utils.CloseLogging()
		return nil
	},
	Commands: []*cli.Command{
		runCommand,
		dumpConfigCommand,
		opsCommand,
	},
}

func main() {
	if err := app.Run(os.Args); err != nil {
		utils.Fatalf("%v", err)
	}
}
