package hosted

import (
	"errors"
	"sync"
	"time"

	db "github.com/calmsacibis995/sprite2/debug"
	"github.com/calmsacibis995/sprite2/proc"
	"github.com/calmsacibis995/sprite2/procclnt"
)

var ErrRpcTimeout = errors.New("rpc: timeout")

// Rpc is the hosted RPC module: a loopback peer stands in for the boot
// file server.  Serving procs drain demand; the daemon creates more of
// them when demand arrives.
type Rpc struct {
	mu      sync.Mutex
	reqs    chan chan time.Time
	demand  chan struct{}
	nsrv    int
	timeout time.Duration
}

func NewRpc() *Rpc {
	return &Rpc{
		reqs:    make(chan chan time.Time),
		demand:  make(chan struct{}, 16),
		timeout: time.Second,
	}
}

// Init brings up the loopback peer that answers timestamp requests.
func (r *Rpc) Init() error {
	go func() {
		for reply := range r.reqs {
			reply <- time.Now()
		}
	}()
	db.DPrintf(db.RPC, "Init")
	return nil
}

// Start performs one round-trip to obtain a boot timestamp.  Best-effort:
// the caller logs a failure and boots on without a timestamp.
func (r *Rpc) Start() (time.Time, error) {
	reply := make(chan time.Time, 1)
	select {
	case r.reqs <- reply:
	case <-time.After(r.timeout):
		return time.Time{}, ErrRpcTimeout
	}
	select {
	case ts := <-reply:
		db.DPrintf(db.RPC, "boot timestamp %v", ts)
		return ts, nil
	case <-time.After(r.timeout):
		return time.Time{}, ErrRpcTimeout
	}
}

// CreateServer spawns one RPC-serving proc.
func (r *Rpc) CreateServer(pclnt *procclnt.ProcClnt) error {
	if _, err := pclnt.NewProc(proc.NewProc("rpc-server", r.serve, nil, proc.T_KERNEL)); err != nil {
		return err
	}
	r.mu.Lock()
	r.nsrv++
	r.mu.Unlock()
	return nil
}

func (r *Rpc) serve(interface{}) {
	for range r.demand {
		db.DPrintf(db.RPC, "served request")
	}
}

// Daemon reacts to load by creating additional serving procs.  The arg
// is the kernel's spawner.
func (r *Rpc) Daemon(arg interface{}) {
	pclnt, ok := arg.(*procclnt.ProcClnt)
	if !ok {
		db.DPrintf(db.RPC_ERR, "daemon: no spawner")
		return
	}
	for range r.demand {
		if err := r.CreateServer(pclnt); err != nil {
			db.DPrintf(db.RPC_ERR, "daemon: create server: %v", err)
			return
		}
	}
}

// Demand signals one unit of serving load.
func (r *Rpc) Demand() {
	select {
	case r.demand <- struct{}{}:
	default:
	}
}

func (r *Rpc) NumServers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nsrv
}
