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

package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/irvm/irvm/core/vm"
)

func runWithFlags(t *testing.T, cfg *vm.Config, args ...string) {
	t.Helper()
	app := &cli.App{
		Flags: VMFlags,
		Action: func(ctx *cli.Context) error {
			SetVMConfig(ctx, cfg)
			return nil
		},
	}
	require.NoError(t, app.Run(append([]string{"irexec"}, args...)))
}

func TestSetVMConfig(t *testing.T) {
	tests := []struct {
		name string
		base vm.Config
		args []string
		want vm.Config
	}{
		{"no flags", vm.Config{DeterministicCycles: true, Workers: 2}, nil, vm.Config{DeterministicCycles: true, Workers: 2}},
		{"deterministic", vm.Config{}, []string{"--deterministic"}, vm.Config{DeterministicCycles: true}},
		{"explicit false", vm.Config{DeterministicCycles: true}, []string{"--deterministic=false"}, vm.Config{}},
		{"workers", vm.Config{Workers: 8}, []string{"--workers", "3"}, vm.Config{Workers: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.base
			runWithFlags(t, &cfg, tt.args...)
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestSetupLoggingFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "irexec.log")
	app := &cli.App{
		Flags: LoggingFlags,
		Action: func(ctx *cli.Context) error {
			SetupLogging(ctx)
			defer CloseLogging()
			log.Info("Logging to file", "ok", true)
			log.Debug("Filtered by verbosity")
			return nil
		},
	}
	require.NoError(t, app.Run([]string{"irexec", "--log.file", file}))

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Logging to file")
	assert.NotContains(t, string(data), "Filtered by verbosity")
}
