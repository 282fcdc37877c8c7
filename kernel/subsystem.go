package kernel

import (
	"time"

	"github.com/calmsacibis995/sprite2/mach"
	"github.com/calmsacibis995/sprite2/mem"
	"github.com/calmsacibis995/sprite2/proc"
	"github.com/calmsacibis995/sprite2/procclnt"
)

// The kernel drives each external subsystem through a narrow contract:
// init entry points called exactly once, in boot order.  Idempotency is
// not guaranteed anywhere, and init failure is fatal unless the boot
// sequence says otherwise (the boot-timestamp RPC is the one exception).

// Tsubsystem is the common one-shot init contract.
type Tsubsystem interface {
	Init() error
}

type Tsync interface {
	Init() error
	LockStatInit() error
}

type Tvm interface {
	// BootInit licenses boot-phase allocation; Init brings up the
	// general allocator.  Both receive the kernel's allocator.
	BootInit(a *mem.Allocator) error
	Init(a *mem.Allocator) error
	// Clock and OpenSwapDirectory are deferred-call entries.
	Clock(arg interface{})
	OpenSwapDirectory(arg interface{})
}

type Tdev interface {
	Init() error
	// Config probes devices that may or may not exist.
	Config() error
}

type TprocTab interface {
	Init() error
	InitMainProc() error
	ServerInit() error
	MigInit() error
}

type Tsched interface {
	Init() error
	// TimeTicks blocks for a short, bounded real-time delay to
	// calibrate the idle-tick reference.
	TimeTicks()
}

type Tfs interface {
	Bin(a *mem.Allocator) error
	Init() error
	ProcInit() error
	SyncProc(arg interface{})
}

type Tnet interface {
	Bin(a *mem.Allocator) error
	Init() error
	RouteInit() error
}

type Trpc interface {
	Init() error
	// Start performs one round-trip to obtain a boot timestamp.  It is
	// best-effort: boot proceeds without a timestamp.
	Start() (time.Time, error)
	// CreateServer spawns one RPC-serving proc.
	CreateServer(pclnt *procclnt.ProcClnt) error
	// Daemon is the entry of the long-lived proc that creates more
	// serving procs under load.
	Daemon(arg interface{})
}

type Trecov interface {
	Init() error
	// Proc is the entry of the recovery monitor, which waits on
	// possibly-crashed remote hosts.
	Proc(arg interface{})
}

type Tprof interface {
	Init() error
	Start() error
}

type Tfsrecov interface {
	InitState() error
	DirOpInit() error
}

// Subsystems collects the kernel's external collaborators.
type Subsystems struct {
	Mach    mach.Machine
	Sync    Tsync
	Dbg     Tsubsystem
	Sys     Tsubsystem
	Vm      Tvm
	Dev     Tdev
	Dump    Tsubsystem
	ProcTab TprocTab
	Timer   Tsubsystem
	Sig     Tsubsystem
	Sched   Tsched
	Fs      Tfs
	Net     Tnet
	Rpc     Trpc
	Recov   Trecov
	Prof    Tprof
	Fsrecov Tfsrecov

	// InitProc is the entry of the program launcher, spawned as the
	// last proc of the boot sequence.
	InitProc proc.Tfunc

	// Hook, if set, starts test or diagnostic procs after the standard
	// sequence.
	Hook func() error
}
