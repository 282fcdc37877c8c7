package hosted

import (
	"sync"
	"time"

	db "github.com/calmsacibis995/sprite2/debug"
	sp "github.com/calmsacibis995/sprite2/spritep"
)

// The remaining hosted subsystems.  Each honors the one-shot init
// contract; none tolerates a second Init.

// Dbg attaches the kernel debugger: it names the process for the raw
// diagnostic channel.
type Dbg struct{}

func NewDbg() *Dbg { return &Dbg{} }

func (d *Dbg) Init() error {
	db.SetName("sprite2")
	return nil
}

type Sys struct{}

func NewSys() *Sys { return &Sys{} }

func (s *Sys) Init() error {
	db.DPrintf(db.KERNEL, "sys init")
	return nil
}

type Dump struct{}

func NewDump() *Dump { return &Dump{} }

func (d *Dump) Init() error {
	db.DPrintf(db.KERNEL, "dump routines init")
	return nil
}

type Timer struct {
	start time.Time
}

func NewTimer() *Timer { return &Timer{} }

func (t *Timer) Init() error {
	t.start = time.Now()
	db.DPrintf(db.KERNEL, "timer init")
	return nil
}

type Sig struct{}

func NewSig() *Sig { return &Sig{} }

func (s *Sig) Init() error {
	db.DPrintf(db.KERNEL, "sig init")
	return nil
}

type Sync struct {
	mu       sync.Mutex
	lockStat bool
}

func NewSync() *Sync { return &Sync{} }

func (s *Sync) Init() error {
	db.DPrintf(db.KERNEL, "sync init")
	return nil
}

func (s *Sync) LockStatInit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockStat = true
	return nil
}

type Dev struct {
	mu      sync.Mutex
	devices []string
}

func NewDev() *Dev { return &Dev{} }

func (d *Dev) Init() error {
	db.DPrintf(db.KERNEL, "dev init")
	return nil
}

// Config probes devices that may or may not exist.
func (d *Dev) Config() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.devices = []string{"console", "swap"}
	db.DPrintf(db.KERNEL, "dev config: %v", d.devices)
	return nil
}

type ProcTab struct {
	mu        sync.Mutex
	mainPid   sp.Tpid
	srvEnable bool
}

func NewProcTab() *ProcTab { return &ProcTab{} }

func (pt *ProcTab) Init() error {
	db.DPrintf(db.PROC, "proc table init")
	return nil
}

func (pt *ProcTab) InitMainProc() error {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.mainPid = sp.GenPid("main")
	db.DPrintf(db.PROC, "main proc %v", pt.mainPid)
	return nil
}

func (pt *ProcTab) ServerInit() error {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.srvEnable = true
	return nil
}

func (pt *ProcTab) MigInit() error {
	db.DPrintf(db.PROC, "migration recovery init")
	return nil
}

// Recov is the hosted crash-recovery module.  Its monitor proc waits on
// host state changes indefinitely, which is why the kernel spawns it as
// its own proc.
type Recov struct {
	pings chan string
}

func NewRecov() *Recov {
	return &Recov{pings: make(chan string)}
}

func (r *Recov) Init() error {
	db.DPrintf(db.RECOV, "Init")
	return nil
}

// Proc monitors other hosts; it can block forever waiting for one to
// come back.
func (r *Recov) Proc(interface{}) {
	for host := range r.pings {
		db.DPrintf(db.RECOV, "host %v is back", host)
	}
}

// Ping reports a host state change to the monitor.
func (r *Recov) Ping(host string) {
	r.pings <- host
}

// Fsrecov is the hosted filesystem-recovery module, with the directory
// operation log used to replay interrupted operations.
type Fsrecov struct {
	mu     sync.Mutex
	ready  bool
	dirOps []string
}

func NewFsrecov() *Fsrecov { return &Fsrecov{} }

func (fr *Fsrecov) InitState() error {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	fr.ready = true
	return nil
}

func (fr *Fsrecov) DirOpInit() error {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	fr.dirOps = make([]string, 0)
	db.DPrintf(db.RECOV, "dir op log ready")
	return nil
}
