package vm

import (
	"sync/atomic"

	"github.com/ethereum/go-ethereum/log"
)

// debugLogs toggles per-node trace logging. Off by default so the hot path
// pays a single atomic load.
var debugLogs atomic.Bool

// EnableDebugLogs toggles per-node trace logging for every interpreter.
func EnableDebugLogs(on bool) { debugLogs.Store(on) }

func shouldLog() bool { return debugLogs.Load() }

// debugTrace emits a trace record. Callers check shouldLog first.
func debugTrace(msg string, ctx ...interface{}) {
	log.Trace(msg, ctx...)
}
