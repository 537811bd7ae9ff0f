package vm

import "github.com/ethereum/go-ethereum/metrics"

var (
	executedMeter = metrics.NewRegisteredMeter("vm/alu/executed", nil)
	faultCounter  = metrics.NewRegisteredCounter("vm/alu/faults", nil)
	runTimer      = metrics.NewRegisteredTimer("vm/run/time", nil)
	waveCounter   = metrics.NewRegisteredCounter("vm/run/waves", nil)
)
