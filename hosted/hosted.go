// Package hosted provides userspace-port implementations of the kernel's
// external subsystem contracts, so a sprite2 kernel boots end-to-end on a
// host OS.
package hosted

import (
	"github.com/calmsacibis995/sprite2/initproc"
	"github.com/calmsacibis995/sprite2/kernel"
)

// NewSubsystems wires the hosted subsystems for the given boot
// parameters.
func NewSubsystems(param *kernel.Param) *kernel.Subsystems {
	m := NewMachine(param.BootArgs)
	return &kernel.Subsystems{
		Mach:    m,
		Sync:    NewSync(),
		Dbg:     NewDbg(),
		Sys:     NewSys(),
		Vm:      NewVm(""),
		Dev:     NewDev(),
		Dump:    NewDump(),
		ProcTab: NewProcTab(),
		Timer:   NewTimer(),
		Sig:     NewSig(),
		Sched:   NewSched(),
		Fs:      NewFsys(),
		Net:     NewNetsys(),
		Rpc:     NewRpc(),
		Recov:   NewRecov(),
		Prof:    NewProf(param.MetricsAddr),
		Fsrecov: NewFsrecov(),
		InitProc: initproc.Entry(m, initproc.Config{
			AltInit:  param.AltInit,
			InitPath: param.InitPath,
		}),
	}
}
