// Package proc defines the process descriptor handed to the process
// spawner, and the workload classification that decides whether work may
// run as a deferred call or must be a process of its own.
package proc

import (
	"fmt"

	sp "github.com/calmsacibis995/sprite2/spritep"
)

type Ttype uint32

const (
	T_KERNEL Ttype = iota + 1
	T_USER
)

func (t Ttype) String() string {
	switch t {
	case T_KERNEL:
		return "kernel"
	case T_USER:
		return "user"
	default:
		return "unknown type"
	}
}

// Tfunc is an entry point for a spawned process or a deferred call.
type Tfunc func(arg interface{})

// Tworkload classifies work for the deferred-call pool.  The pool has a
// fixed number of slots and a deferred call holds its slot until it
// returns, so work that can wait indefinitely on a possibly-unreachable
// peer must never run there: enough of it would exhaust the pool and
// starve the recovery machinery needed to resolve the outage.
type Tworkload uint32

const (
	WorkBounded Tworkload = iota + 1
	WorkUnboundedWait
)

func (w Tworkload) String() string {
	switch w {
	case WorkBounded:
		return "bounded"
	case WorkUnboundedWait:
		return "unbounded-wait"
	default:
		return "unknown workload"
	}
}

// Proc describes a process to be spawned.
type Proc struct {
	Pid          sp.Tpid
	Program      string
	Entry        Tfunc
	Arg          interface{}
	Type         Ttype
	WaitForChild bool
}

func NewProc(program string, entry Tfunc, arg interface{}, t Ttype) *Proc {
	return &Proc{
		Pid:     sp.GenPid(program),
		Program: program,
		Entry:   entry,
		Arg:     arg,
		Type:    t,
	}
}

func (p *Proc) GetPid() sp.Tpid {
	return p.Pid
}

func (p *Proc) String() string {
	return fmt.Sprintf("&{ pid:%v program:%v type:%v }", p.Pid, p.Program, p.Type)
}
