// Package spritep defines types and constants shared across the sprite2
// kernel packages.
package spritep

import (
	"time"
)

// Version of the kernel, reported in the boot banner once formatted
// diagnostics are permitted.
const Version = "sprite2 2.0"

// InitPath is the default first user program.
const InitPath = "/sprite/cmds/init"

const (
	// NumCallFuncSlots bounds the deferred-call pool.  A deferred call
	// holds its slot until it returns, so only bounded work may use it.
	NumCallFuncSlots = 8

	// Worker-pool sizing.  The generic server-proc pool is sized to the
	// sum of the two: the fs cache cleaners and the vm page-out workers
	// share it.
	MaxCleanerProcs = 3
	MaxPageOutProcs = 2

	// NumRpcServers is the default number of RPC server procs created at
	// boot.  The RPC daemon creates more on demand.
	NumRpcServers = 2
)

// Boot-argument buffer geometry, fixed by the boot-loader interface.
const (
	MaxBootArgs   = 8
	BootArgBufLen = 100
)

// BootArenaSize is the size of the boot-phase allocation arena.
const BootArenaSize = 1 << 20

// OneYear is the park timeout of the orchestrator.  It is not expected to
// elapse; the orchestrator parks until it is explicitly woken.
const OneYear = 365 * 24 * time.Hour

// Process exit statuses.
const (
	ExitOK             = 0
	ExitCouldNotLaunch = 1
)
