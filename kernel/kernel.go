// Package kernel implements the boot orchestrator of sprite2: the single
// sequence that takes the machine from the firmware hand-off to a running
// multiprocess system with the first user program launched.
package kernel

import (
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	db "github.com/calmsacibis995/sprite2/debug"
	"github.com/calmsacibis995/sprite2/mem"
	"github.com/calmsacibis995/sprite2/proc"
	"github.com/calmsacibis995/sprite2/procclnt"
	sp "github.com/calmsacibis995/sprite2/spritep"
)

type Kernel struct {
	sync.Mutex
	Param  *Param
	state  *BootState
	subs   *Subsystems
	mm     *mem.Allocator
	pclnt  *procclnt.ProcClnt
	wake   chan struct{}
	booted bool
	bootTs time.Time
}

func NewKernel(param *Param, subs *Subsystems) *Kernel {
	k := &Kernel{
		Param: param,
		state: newBootState(),
		subs:  subs,
		wake:  make(chan struct{}),
	}
	k.pclnt = procclnt.NewProcClnt()
	k.mm = mem.NewAllocator(sp.BootArenaSize, k.state.Query())
	return k
}

func (k *Kernel) Allocator() *mem.Allocator {
	return k.mm
}

func (k *Kernel) ProcClnt() *procclnt.ProcClnt {
	return k.pclnt
}

func (k *Kernel) Phase() sp.BootPhase {
	return k.state.Phase()
}

// BootTs is the timestamp obtained by the boot-time RPC round-trip, or
// the zero time if the round-trip failed.
func (k *Kernel) BootTs() time.Time {
	k.Lock()
	defer k.Unlock()
	return k.bootTs
}

// Wake resumes a parked kernel for an orderly shutdown.
func (k *Kernel) Wake() {
	close(k.wake)
}

// fatal emits a boot failure through whatever diagnostic channel the
// current phase permits and returns the error that stops the boot.  There
// is no retry policy: the caller of Boot halts.
func (k *Kernel) fatal(step string, err error) error {
	if k.state.PanicOK() {
		db.DPrintf(db.KERNEL_ERR, "%v: %v", step, err)
	} else {
		k.subs.Mach.MonPrintf("sprite2: %s: %v\n", step, err)
	}
	return fmt.Errorf("boot: %s: %w", step, err)
}

type initStep struct {
	name string
	fn   func() error
}

func (k *Kernel) runSteps(steps []initStep) error {
	for _, s := range steps {
		if err := s.fn(); err != nil {
			return k.fatal(s.name, err)
		}
	}
	return nil
}

// Boot runs the full initialization sequence and parks.  It runs exactly
// once per kernel; it returns only after an explicit Wake or after the
// park timeout elapses (nominally a year), in which case the caller exits
// with success.  Any other return is a fatal boot error.
func (k *Kernel) Boot() error {
	k.Lock()
	if k.booted {
		k.Unlock()
		return fmt.Errorf("boot: kernel already booted")
	}
	k.booted = true
	k.Unlock()

	s := k.subs

	// Machine-dependent state first: everything after this assumes
	// timers and locks exist.
	s.Mach.InitVars()
	if err := s.Mach.Init(); err != nil {
		return k.fatal("mach init", err)
	}
	if err := s.Sync.Init(); err != nil {
		return k.fatal("sync init", err)
	}

	// Attach the debugger.  Until DiagnosticsReady the raw monitor
	// channel is the only output permitted.
	if err := s.Dbg.Init(); err != nil {
		return k.fatal("dbg init", err)
	}
	s.Mach.MonPrintf("Sprite kernel for %s\n", s.Mach.Target())

	if err := k.runSteps([]initStep{
		{"sys init", s.Sys.Init},
		{"vm boot init", func() error { return s.Vm.BootInit(k.mm) }},
		{"dev init", s.Dev.Init},
		{"dump init", s.Dump.Init},
		{"proc init", s.ProcTab.Init},
		{"lock stat init", s.Sync.LockStatInit},
		{"timer init", s.Timer.Init},
		{"sig init", s.Sig.Init},
		{"sched init", s.Sched.Init},
	}); err != nil {
		return err
	}

	// Formatted diagnostics (and panic) are safe from here on.
	if err := k.state.Advance(sp.DiagnosticsReady); err != nil {
		return k.fatal("phase", err)
	}
	db.DPrintf(db.ALWAYS, "Sprite kernel: %v", sp.Version)

	// Allocator bins must be registered strictly before the general
	// allocator comes up: they describe regions it will manage.
	if err := k.state.Advance(sp.BootAllocatorOnly); err != nil {
		return k.fatal("phase", err)
	}
	if err := k.runSteps([]initStep{
		{"fs bin", func() error { return s.Fs.Bin(k.mm) }},
		{"net bin", func() error { return s.Net.Bin(k.mm) }},
	}); err != nil {
		return err
	}

	// Full VM init.  Past this transition boot-phase allocation is a
	// fatal error; only the general allocator is legal.
	if err := s.Vm.Init(k.mm); err != nil {
		return k.fatal("vm init", err)
	}
	if err := k.state.Advance(sp.GeneralAllocatorReady); err != nil {
		return k.fatal("phase", err)
	}

	if err := k.state.Advance(sp.InterruptsMasked); err != nil {
		return k.fatal("phase", err)
	}
	if err := k.runSteps([]initStep{
		{"main proc init", s.ProcTab.InitMainProc},
		{"net init", s.Net.Init},
		{"route init", s.Net.RouteInit},
		{"proc server init", s.ProcTab.ServerInit},
		{"recov init", s.Recov.Init},
		{"rpc init", s.Rpc.Init},
		{"dev config", s.Dev.Config},
		{"prof init", s.Prof.Init},
	}); err != nil {
		return err
	}

	// The single point interrupts are unmasked.  No step before here may
	// assume asynchronous events are delivered; none after may assume
	// they are not.
	s.Mach.StartNmi()
	s.Mach.EnableInterrupts()
	if err := k.state.Advance(sp.InterruptsEnabled); err != nil {
		return k.fatal("phase", err)
	}

	// Filesystem recovery wants timers, so it runs with interrupts on,
	// but it must precede fs init proper.
	if err := k.runSteps([]initStep{
		{"fsrecov state init", s.Fsrecov.InitState},
		{"dir op log init", s.Fsrecov.DirOpInit},
	}); err != nil {
		return err
	}

	// Calibrate the idle-tick reference before anything measures
	// elapsed time.
	s.Sched.TimeTicks()

	if err := s.Prof.Start(); err != nil {
		return k.fatal("prof start", err)
	}

	// Best-effort: a missing boot timestamp does not block boot.
	if ts, err := s.Rpc.Start(); err != nil {
		db.DPrintf(db.ALWAYS, "no boot timestamp: %v", err)
	} else {
		k.Lock()
		k.bootTs = ts
		k.Unlock()
	}

	if err := k.runSteps([]initStep{
		{"fs init", s.Fs.Init},
		{"fs proc init", s.Fs.ProcInit},
	}); err != nil {
		return err
	}

	// The three standing deferred tasks: periodic clock maintenance,
	// the swap-area opener, and the cache-to-disk sync.  All bounded
	// work, so the slot pool is the right vehicle.
	if err := k.runSteps([]initStep{
		{"vm clock", func() error {
			return k.pclnt.CallFunc("vm-clock", s.Vm.Clock, nil, proc.WorkBounded)
		}},
		{"vm swap open", func() error {
			return k.pclnt.CallFunc("vm-swap-open", s.Vm.OpenSwapDirectory, nil, proc.WorkBounded)
		}},
		{"fs sync", func() error {
			return k.pclnt.CallFunc("fs-sync", s.Fs.SyncProc, nil, proc.WorkBounded)
		}},
	}); err != nil {
		return err
	}

	// A fixed batch of RPC servers (possibly none), plus the daemon
	// that creates more under load.
	for i := 0; i < k.Param.NumRpcServers; i++ {
		if err := s.Rpc.CreateServer(k.pclnt); err != nil {
			return k.fatal("rpc create server", err)
		}
	}
	if _, err := k.pclnt.NewProc(proc.NewProc("rpc-daemon", s.Rpc.Daemon, k.pclnt, proc.T_KERNEL)); err != nil {
		return k.fatal("rpc daemon", err)
	}

	// Generic worker procs, shared by the fs cache cleaners and the vm
	// page-out path.
	if err := k.pclnt.ServerProcCreate(k.Param.MaxCleanerProcs + k.Param.MaxPageOutProcs); err != nil {
		return k.fatal("server proc create", err)
	}

	// The recovery monitor waits on possibly-crashed hosts, so it must
	// be a proc of its own.  Routed through CallFunc it could pin a
	// deferred slot forever; enough such waits would exhaust the pool
	// and starve the very mechanism needed to detect the outage.
	if _, err := k.pclnt.NewProc(proc.NewProc("recov-proc", s.Recov.Proc, nil, proc.T_KERNEL)); err != nil {
		return k.fatal("recov proc", err)
	}

	if err := s.ProcTab.MigInit(); err != nil {
		return k.fatal("mig init", err)
	}

	if s.Hook != nil {
		if err := s.Hook(); err != nil {
			return k.fatal("hook", err)
		}
	}

	db.DPrintf(db.ALWAYS, "MEMORY %v allocated for kernel", humanize.IBytes(k.mm.Allocated()))

	// Start up the first user program.
	if _, err := k.pclnt.NewProc(proc.NewProc("init", s.InitProc, nil, proc.T_USER)); err != nil {
		return k.fatal("spawn init", err)
	}

	if err := k.state.Advance(sp.Running); err != nil {
		return k.fatal("phase", err)
	}
	k.park()
	return nil
}

// park yields the processor to the rest of the system.  The timeout is
// not expected to elapse; the kernel resumes only on an explicit Wake.
func (k *Kernel) park() {
	db.DPrintf(db.KERNEL, "parking for %v", k.Param.ParkTimeout)
	select {
	case <-k.wake:
	case <-time.After(k.Param.ParkTimeout):
	}
	k.subs.Mach.MonPrintf("Leaving main()\n")
}
