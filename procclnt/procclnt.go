// Package procclnt implements the process spawner used by the kernel: it
// creates concurrently-scheduled processes, runs one-shot deferred calls
// out of a bounded slot pool, and maintains the generic server-proc pool
// that subsystems later assign work to.
package procclnt

import (
	"errors"
	"fmt"
	"sync"

	db "github.com/calmsacibis995/sprite2/debug"
	"github.com/calmsacibis995/sprite2/proc"
	sp "github.com/calmsacibis995/sprite2/spritep"
)

var (
	ErrNoCallFuncSlots   = errors.New("procclnt: no deferred-call slots free")
	ErrUnboundedWorkload = errors.New("procclnt: unbounded-wait work may not be deferred")
	ErrUnknownPid        = errors.New("procclnt: unknown pid")
)

type child struct {
	p      *proc.Proc
	done   chan struct{}
	status *proc.Status
}

type work struct {
	f   proc.Tfunc
	arg interface{}
}

type ProcClnt struct {
	sync.Mutex
	procs     map[sp.Tpid]*child
	order     []sp.Tpid
	callFuncs []string
	slots     chan struct{}
	srvWork   chan work
	nsrv      int
}

func NewProcClnt() *ProcClnt {
	pclnt := &ProcClnt{
		procs:   make(map[sp.Tpid]*child),
		slots:   make(chan struct{}, sp.NumCallFuncSlots),
		srvWork: make(chan work),
	}
	for i := 0; i < sp.NumCallFuncSlots; i++ {
		pclnt.slots <- struct{}{}
	}
	return pclnt
}

// NewProc spawns p as its own scheduled context.  The process runs until
// its entry returns; it is never drawn from the deferred-call pool.
func (pclnt *ProcClnt) NewProc(p *proc.Proc) (sp.Tpid, error) {
	if p.Entry == nil {
		return sp.NO_PID, fmt.Errorf("procclnt: proc %v has no entry", p.Program)
	}
	c := &child{p: p, done: make(chan struct{})}

	pclnt.Lock()
	pclnt.procs[p.GetPid()] = c
	pclnt.order = append(pclnt.order, p.GetPid())
	pclnt.Unlock()

	db.DPrintf(db.PROCCLNT, "NewProc %v", p)
	go func() {
		p.Entry(p.Arg)
		pclnt.exited(p.GetPid(), proc.NewStatus(proc.StatusOK))
	}()
	return p.GetPid(), nil
}

// CallFunc runs f(arg) once in its own context, drawn from the bounded
// slot pool.  Only WorkBounded work is accepted; a caller with work that
// can block indefinitely on an external peer must spawn a proc instead.
func (pclnt *ProcClnt) CallFunc(name string, f proc.Tfunc, arg interface{}, w proc.Tworkload) error {
	if w != proc.WorkBounded {
		db.DPrintf(db.CALLFUNC, "CallFunc %v rejected: workload %v", name, w)
		return ErrUnboundedWorkload
	}
	select {
	case <-pclnt.slots:
	default:
		return ErrNoCallFuncSlots
	}

	pclnt.Lock()
	pclnt.callFuncs = append(pclnt.callFuncs, name)
	pclnt.Unlock()

	db.DPrintf(db.CALLFUNC, "CallFunc %v", name)
	go func() {
		defer func() { pclnt.slots <- struct{}{} }()
		f(arg)
	}()
	return nil
}

// ServerProcCreate spawns n generic server procs.  They carry no work of
// their own; subsystems hand them work later through Assign.
func (pclnt *ProcClnt) ServerProcCreate(n int) error {
	for i := 0; i < n; i++ {
		p := proc.NewProc("server-proc", pclnt.serverProc, nil, proc.T_KERNEL)
		if _, err := pclnt.NewProc(p); err != nil {
			return err
		}
	}
	pclnt.Lock()
	pclnt.nsrv += n
	pclnt.Unlock()
	return nil
}

func (pclnt *ProcClnt) serverProc(interface{}) {
	for w := range pclnt.srvWork {
		w.f(w.arg)
	}
}

// Assign hands one unit of work to the server-proc pool.
func (pclnt *ProcClnt) Assign(f proc.Tfunc, arg interface{}) {
	pclnt.srvWork <- work{f, arg}
}

func (pclnt *ProcClnt) exited(pid sp.Tpid, status *proc.Status) {
	pclnt.Lock()
	defer pclnt.Unlock()
	c, ok := pclnt.procs[pid]
	if !ok {
		db.DPrintf(db.PROCCLNT_ERR, "exited: unknown pid %v", pid)
		return
	}
	c.status = status
	close(c.done)
}

// WaitExit blocks until pid's entry has returned.
func (pclnt *ProcClnt) WaitExit(pid sp.Tpid) (*proc.Status, error) {
	pclnt.Lock()
	c, ok := pclnt.procs[pid]
	pclnt.Unlock()
	if !ok {
		return nil, ErrUnknownPid
	}
	<-c.done
	return c.status, nil
}

// Procs returns the programs spawned through NewProc and
// ServerProcCreate, in creation order.
func (pclnt *ProcClnt) Procs() []string {
	pclnt.Lock()
	defer pclnt.Unlock()
	programs := make([]string, 0, len(pclnt.order))
	for _, pid := range pclnt.order {
		programs = append(programs, pclnt.procs[pid].p.Program)
	}
	return programs
}

// CallFuncs returns the names of the deferred calls submitted so far.
func (pclnt *ProcClnt) CallFuncs() []string {
	pclnt.Lock()
	defer pclnt.Unlock()
	return append([]string{}, pclnt.callFuncs...)
}

// FreeSlots reports how many deferred-call slots are unoccupied.
func (pclnt *ProcClnt) FreeSlots() int {
	return len(pclnt.slots)
}

// NumServerProcs reports the size of the generic server-proc pool.
func (pclnt *ProcClnt) NumServerProcs() int {
	pclnt.Lock()
	defer pclnt.Unlock()
	return pclnt.nsrv
}
