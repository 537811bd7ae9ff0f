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

// Package utils contains internal helper functions for irvm commands.
package utils

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/irvm/irvm/core/vm"
)

const (
	VMCategory      = "INTERPRETER"
	LoggingCategory = "LOGGING AND DEBUGGING"
)

var (
	ConfigFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	DeterministicCyclesFlag = &cli.BoolFlag{
		Name:     "deterministic",
		Usage:    "Make CycleCounter read as zero",
		Category: VMCategory,
	}
	ConcurrentFlag = &cli.BoolFlag{
		Name:     "concurrent",
		Usage:    "Execute independent nodes of a block concurrently",
		Category: VMCategory,
	}
	WorkersFlag = &cli.IntFlag{
		Name:     "workers",
		Usage:    "Maximum number of tasks per dependency wave (0 = automatic)",
		Category: VMCategory,
	}
	VerbosityFlag = &cli.IntFlag{
		Name:     "verbosity",
		Usage:    "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value:    3,
		Category: LoggingCategory,
	}
	LogFileFlag = &cli.StringFlag{
		Name:     "log.file",
		Usage:    "Write logs to a file instead of the terminal",
		Category: LoggingCategory,
	}
	LogMaxSizeMBsFlag = &cli.IntFlag{
		Name:     "log.maxsize",
		Usage:    "Maximum size in MBs of a single log file",
		Value:    100,
		Category: LoggingCategory,
	}
	LogMaxBackupsFlag = &cli.IntFlag{
		Name:     "log.maxbackups",
		Usage:    "Maximum number of log files to retain",
		Value:    10,
		Category: LoggingCategory,
	}
	DebugFlag = &cli.BoolFlag{
		Name:     "debug",
		Usage:    "Trace every executed node (requires verbosity 5)",
		Category: LoggingCategory,
	}
)

// VMFlags are the flags that shape vm.Config.
var VMFlags = []cli.Flag{DeterministicCyclesFlag, WorkersFlag}

// LoggingFlags configure the root logger.
var LoggingFlags = []cli.Flag{VerbosityFlag, LogFileFlag, LogMaxSizeMBsFlag, LogMaxBackupsFlag, DebugFlag}

// Fatalf formats a message to standard error and exits the program.
// The message is also printed to standard output if standard error
// is redirected to a different file.
func Fatalf(format string, args ...interface{}) {
	w := io.MultiWriter(os.Stdout, os.Stderr)
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		}
	}
	fmt.Fprintf(w, "Fatal: "+format+"\n", args...)
	os.Exit(1)
}

var logOutputFile io.WriteCloser

// SetupLogging installs the root log handler from the logging flags. Logs go
// to the terminal, coloured when it supports it, or to a rotated file.
func SetupLogging(ctx *cli.Context) {
	var (
		output   = io.Writer(os.Stderr)
		usecolor = (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
	)
	if logFile := ctx.String(LogFileFlag.Name); logFile != "" {
		logOutputFile = &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    ctx.Int(LogMaxSizeMBsFlag.Name),
			MaxBackups: ctx.Int(LogMaxBackupsFlag.Name),
		}
		output, usecolor = logOutputFile, false
	} else if usecolor {
		output = colorable.NewColorableStderr()
	}
	level := log.FromLegacyLevel(ctx.Int(VerbosityFlag.Name))
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(output, level, usecolor)))
	vm.EnableDebugLogs(ctx.Bool(DebugFlag.Name))
}

// CloseLogging releases the log file opened by SetupLogging, if any.
func CloseLogging() {
	if logOutputFile != nil {
		logOutputFile.Close()
		logOutputFile = nil
	}
}

// SetVMConfig applies the command line flags to cfg. Flags that were not
// given leave the configured value alone.
func SetVMConfig(ctx *cli.Context, cfg *vm.Config) {
	if ctx.IsSet(DeterministicCyclesFlag.Name) {
		cfg.DeterministicCycles = ctx.Bool(DeterministicCyclesFlag.Name)
	}
	if ctx.IsSet(WorkersFlag.Name) {
		cfg.Workers = ctx.Int(WorkersFlag.Name)
	}
}
