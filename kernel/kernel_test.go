package kernel_test

import (
	"bytes"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calmsacibis995/sprite2/kernel"
	"github.com/calmsacibis995/sprite2/mach"
	"github.com/calmsacibis995/sprite2/mem"
	"github.com/calmsacibis995/sprite2/procclnt"
	sp "github.com/calmsacibis995/sprite2/spritep"
)

//
// Fake subsystems that record the order of the kernel's init calls and
// the boot phase each call was issued in.
//

type recorder struct {
	mu     sync.Mutex
	calls  []string
	phases map[string]sp.BootPhase
	k      *kernel.Kernel
	fail   map[string]bool
}

func newRecorder() *recorder {
	return &recorder{
		phases: make(map[string]sp.BootPhase),
		fail:   make(map[string]bool),
	}
}

func (r *recorder) record(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
	if r.k != nil {
		r.phases[name] = r.k.Phase()
	}
	if r.fail[name] {
		return fmt.Errorf("%s failed", name)
	}
	return nil
}

func (r *recorder) phaseAt(name string) sp.BootPhase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phases[name]
}

func (r *recorder) callList() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.calls...)
}

type fakeMach struct {
	r    *recorder
	mu   sync.Mutex
	mon  bytes.Buffer
	intr bool
	args []string
}

func (m *fakeMach) InitVars() { m.r.record("mach initvars") }
func (m *fakeMach) Init() error { return m.r.record("mach init") }
func (m *fakeMach) MonPrintf(format string, v ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintf(&m.mon, format, v...)
}
func (m *fakeMach) monOutput() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mon.String()
}
func (m *fakeMach) StartNmi() { m.r.record("start nmi") }
func (m *fakeMach) EnableInterrupts() {
	m.intr = true
	m.r.record("enable intr")
}
func (m *fakeMach) DisableInterrupts() { m.intr = false }
func (m *fakeMach) IntrEnabled() bool { return m.intr }
func (m *fakeMach) BootArgs(maxArgs, bufLen int) ([]byte, int) {
	return mach.PackArgs(m.args, maxArgs, bufLen)
}
func (m *fakeMach) Target() string { return "test/any" }

type fakeSub struct {
	r    *recorder
	name string
}

func (f *fakeSub) Init() error { return f.r.record(f.name) }

type fakeSync struct{ r *recorder }

func (f *fakeSync) Init() error { return f.r.record("sync init") }
func (f *fakeSync) LockStatInit() error { return f.r.record("lock stat init") }

type fakeVm struct{ r *recorder }

func (f *fakeVm) BootInit(a *mem.Allocator) error {
	if _, err := a.BootAlloc(16); err != nil {
		return err
	}
	return f.r.record("vm boot init")
}
func (f *fakeVm) Init(a *mem.Allocator) error {
	if _, err := a.BootAlloc(16); err != nil {
		return err
	}
	return f.r.record("vm init")
}
func (f *fakeVm) Clock(interface{}) {}
func (f *fakeVm) OpenSwapDirectory(interface{}) {}

type fakeDev struct{ r *recorder }

func (f *fakeDev) Init() error { return f.r.record("dev init") }
func (f *fakeDev) Config() error { return f.r.record("dev config") }

type fakeProcTab struct{ r *recorder }

func (f *fakeProcTab) Init() error { return f.r.record("proc init") }
func (f *fakeProcTab) InitMainProc() error { return f.r.record("main proc init") }
func (f *fakeProcTab) ServerInit() error { return f.r.record("proc server init") }
func (f *fakeProcTab) MigInit() error { return f.r.record("mig init") }

type fakeSched struct{ r *recorder }

func (f *fakeSched) Init() error { return f.r.record("sched init") }
func (f *fakeSched) TimeTicks() { f.r.record("time ticks") }

type fakeFs struct{ r *recorder }

func (f *fakeFs) Bin(a *mem.Allocator) error {
	if err := a.Bin("fs", []int{64, 512}); err != nil {
		return err
	}
	return f.r.record("fs bin")
}
func (f *fakeFs) Init() error { return f.r.record("fs init") }
func (f *fakeFs) ProcInit() error { return f.r.record("fs proc init") }
func (f *fakeFs) SyncProc(interface{}) {}

type fakeNet struct{ r *recorder }

func (f *fakeNet) Bin(a *mem.Allocator) error {
	if err := a.Bin("net", []int{128}); err != nil {
		return err
	}
	return f.r.record("net bin")
}
func (f *fakeNet) Init() error { return f.r.record("net init") }
func (f *fakeNet) RouteInit() error { return f.r.record("route init") }

type fakeRpc struct {
	r       *recorder
	mu      sync.Mutex
	created int
}

func (f *fakeRpc) Init() error { return f.r.record("rpc init") }
func (f *fakeRpc) Start() (time.Time, error) {
	if err := f.r.record("rpc start"); err != nil {
		return time.Time{}, err
	}
	return time.Now(), nil
}
func (f *fakeRpc) CreateServer(pclnt *procclnt.ProcClnt) error {
	f.mu.Lock()
	f.created++
	f.mu.Unlock()
	return f.r.record("rpc create server")
}
func (f *fakeRpc) numCreated() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created
}
func (f *fakeRpc) Daemon(interface{}) {}

type fakeRecov struct{ r *recorder }

func (f *fakeRecov) Init() error { return f.r.record("recov init") }
func (f *fakeRecov) Proc(interface{}) {}

type fakeProf struct{ r *recorder }

func (f *fakeProf) Init() error { return f.r.record("prof init") }
func (f *fakeProf) Start() error { return f.r.record("prof start") }

type fakeFsrecov struct{ r *recorder }

func (f *fakeFsrecov) InitState() error { return f.r.record("fsrecov state init") }
func (f *fakeFsrecov) DirOpInit() error { return f.r.record("dir op log init") }

func newTestSubsystems(r *recorder) (*kernel.Subsystems, *fakeMach, *fakeRpc) {
	m := &fakeMach{r: r}
	rpc := &fakeRpc{r: r}
	subs := &kernel.Subsystems{
		Mach:     m,
		Sync:     &fakeSync{r},
		Dbg:      &fakeSub{r, "dbg init"},
		Sys:      &fakeSub{r, "sys init"},
		Vm:       &fakeVm{r},
		Dev:      &fakeDev{r},
		Dump:     &fakeSub{r, "dump init"},
		ProcTab:  &fakeProcTab{r},
		Timer:    &fakeSub{r, "timer init"},
		Sig:      &fakeSub{r, "sig init"},
		Sched:    &fakeSched{r},
		Fs:       &fakeFs{r},
		Net:      &fakeNet{r},
		Rpc:      rpc,
		Recov:    &fakeRecov{r},
		Prof:     &fakeProf{r},
		Fsrecov:  &fakeFsrecov{r},
		InitProc: func(interface{}) {},
	}
	return subs, m, rpc
}

func newTestParam() *kernel.Param {
	p := kernel.NewParam()
	p.NumRpcServers = sp.NumRpcServers
	p.ParkTimeout = 10 * time.Millisecond
	return p
}

func TestBootOrder(t *testing.T) {
	r := newRecorder()
	subs, m, _ := newTestSubsystems(r)
	param := newTestParam()
	k := kernel.NewKernel(param, subs)
	r.k = k

	require.Nil(t, k.Boot(), "Boot")

	expected := []string{
		"mach initvars",
		"mach init",
		"sync init",
		"dbg init",
		"sys init",
		"vm boot init",
		"dev init",
		"dump init",
		"proc init",
		"lock stat init",
		"timer init",
		"sig init",
		"sched init",
		"fs bin",
		"net bin",
		"vm init",
		"main proc init",
		"net init",
		"route init",
		"proc server init",
		"recov init",
		"rpc init",
		"dev config",
		"prof init",
		"start nmi",
		"enable intr",
		"fsrecov state init",
		"dir op log init",
		"time ticks",
		"prof start",
		"rpc start",
		"fs init",
		"fs proc init",
		"rpc create server",
		"rpc create server",
		"mig init",
	}
	assert.Equal(t, expected, r.callList())
	assert.Contains(t, m.monOutput(), "Sprite kernel for")
	assert.Contains(t, m.monOutput(), "Leaving main()")
}

func TestBootPhaseGates(t *testing.T) {
	r := newRecorder()
	subs, _, _ := newTestSubsystems(r)
	k := kernel.NewKernel(newTestParam(), subs)
	r.k = k

	require.Nil(t, k.Boot(), "Boot")

	// Before diagnostics come up.
	assert.Equal(t, sp.PreDiagnostics, r.phaseAt("sys init"))
	assert.Equal(t, sp.PreDiagnostics, r.phaseAt("sched init"))
	// Bins registered strictly before the general allocator.
	assert.Equal(t, sp.BootAllocatorOnly, r.phaseAt("fs bin"))
	assert.Equal(t, sp.BootAllocatorOnly, r.phaseAt("net bin"))
	assert.Equal(t, sp.BootAllocatorOnly, r.phaseAt("vm init"))
	// The masked window between allocator switch and interrupt enable.
	assert.Equal(t, sp.InterruptsMasked, r.phaseAt("main proc init"))
	assert.Equal(t, sp.InterruptsMasked, r.phaseAt("prof init"))
	// Interrupt-dependent steps.
	assert.Equal(t, sp.InterruptsEnabled, r.phaseAt("fsrecov state init"))
	assert.Equal(t, sp.InterruptsEnabled, r.phaseAt("rpc start"))
	assert.Equal(t, sp.Running, k.Phase())
}

func TestDeferredTaskIsolation(t *testing.T) {
	r := newRecorder()
	subs, _, _ := newTestSubsystems(r)
	k := kernel.NewKernel(newTestParam(), subs)

	require.Nil(t, k.Boot(), "Boot")

	// Exactly the three named deferred tasks went through CallFunc.
	assert.Equal(t, []string{"vm-clock", "vm-swap-open", "fs-sync"}, k.ProcClnt().CallFuncs())
	// The recovery monitor is a direct spawn, never a deferred call.
	assert.Contains(t, k.ProcClnt().Procs(), "recov-proc")
	assert.NotContains(t, k.ProcClnt().CallFuncs(), "recov-proc")
}

func TestPoolSizing(t *testing.T) {
	r := newRecorder()
	subs, _, rpc := newTestSubsystems(r)
	param := newTestParam()
	param.MaxCleanerProcs = 3
	param.MaxPageOutProcs = 2
	k := kernel.NewKernel(param, subs)

	require.Nil(t, k.Boot(), "Boot")

	assert.Equal(t, 5, k.ProcClnt().NumServerProcs())
	assert.Equal(t, sp.NumRpcServers, rpc.numCreated())
}

func TestZeroRpcServers(t *testing.T) {
	r := newRecorder()
	subs, _, rpc := newTestSubsystems(r)
	param := newTestParam()
	param.NumRpcServers = 0
	k := kernel.NewKernel(param, subs)

	require.Nil(t, k.Boot(), "Boot")

	assert.Equal(t, 0, rpc.numCreated())
	// The daemon is spawned unconditionally.
	assert.Contains(t, k.ProcClnt().Procs(), "rpc-daemon")
}

func TestBestEffortTimestamp(t *testing.T) {
	r := newRecorder()
	r.fail["rpc start"] = true
	subs, _, _ := newTestSubsystems(r)
	k := kernel.NewKernel(newTestParam(), subs)

	// A failed timestamp round-trip does not stop the boot.
	require.Nil(t, k.Boot(), "Boot")
	assert.True(t, k.BootTs().IsZero())
}

func TestFatalInitStopsBoot(t *testing.T) {
	r := newRecorder()
	r.fail["timer init"] = true
	subs, _, _ := newTestSubsystems(r)
	k := kernel.NewKernel(newTestParam(), subs)

	err := k.Boot()
	require.NotNil(t, err, "Boot should fail")
	assert.Contains(t, err.Error(), "timer init")

	calls := r.callList()
	assert.Equal(t, "timer init", calls[len(calls)-1])
	assert.NotContains(t, calls, "sig init")
	assert.Equal(t, sp.PreDiagnostics, k.Phase())
}

func TestAllocatorRetiredAfterBoot(t *testing.T) {
	r := newRecorder()
	subs, _, _ := newTestSubsystems(r)
	k := kernel.NewKernel(newTestParam(), subs)

	require.Nil(t, k.Boot(), "Boot")

	_, err := k.Allocator().BootAlloc(8)
	assert.ErrorIs(t, err, mem.ErrBootAllocRetired)
	_, err = k.Allocator().Alloc(8)
	assert.Nil(t, err, "general alloc")
}

func TestParkUntilWake(t *testing.T) {
	r := newRecorder()
	subs, _, _ := newTestSubsystems(r)
	param := newTestParam()
	param.ParkTimeout = sp.OneYear
	k := kernel.NewKernel(param, subs)

	done := make(chan error, 1)
	go func() {
		done <- k.Boot()
	}()

	select {
	case <-done:
		t.Fatalf("kernel did not stay parked")
	case <-time.After(50 * time.Millisecond):
	}

	k.Wake()
	select {
	case err := <-done:
		assert.Nil(t, err, "Boot after wake")
	case <-time.After(time.Second):
		t.Fatalf("kernel did not resume on wake")
	}
}

func TestBootRunsOnce(t *testing.T) {
	r := newRecorder()
	subs, _, _ := newTestSubsystems(r)
	k := kernel.NewKernel(newTestParam(), subs)

	require.Nil(t, k.Boot(), "Boot")
	assert.NotNil(t, k.Boot(), "second Boot must be rejected")
}
