package kernel

import (
	"fmt"
	"sync"

	db "github.com/calmsacibis995/sprite2/debug"
	sp "github.com/calmsacibis995/sprite2/spritep"
)

// BootState is the kernel's phase gate: which boot phase we are in,
// whether formatted diagnostics (and panic) are safe to use, and whether
// interrupts have been enabled.  It is owned and mutated only by the
// kernel; collaborators see it through read-only queries.
type BootState struct {
	mu          sync.Mutex
	phase       sp.BootPhase
	panicOK     bool
	intrEnabled bool
}

func newBootState() *BootState {
	return &BootState{phase: sp.PreDiagnostics}
}

// Advance moves to the next boot phase.  Phases form a total order and
// each is entered exactly once; any other transition is a boot bug.
func (bs *BootState) Advance(next sp.BootPhase) error {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	if next != bs.phase+1 {
		return fmt.Errorf("illegal phase transition %v -> %v", bs.phase, next)
	}
	bs.phase = next
	switch next {
	case sp.DiagnosticsReady:
		bs.panicOK = true
	case sp.InterruptsEnabled:
		bs.intrEnabled = true
	}
	db.DPrintf(db.BOOT, "phase %v", next)
	return nil
}

func (bs *BootState) Phase() sp.BootPhase {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return bs.phase
}

// PanicOK reports whether formatted diagnostics are safe; before this the
// raw monitor channel is the only legal output.
func (bs *BootState) PanicOK() bool {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return bs.panicOK
}

func (bs *BootState) IntrEnabled() bool {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return bs.intrEnabled
}

// Query returns a read-only view of the phase for collaborators that
// assert phase preconditions (e.g. the allocator).
func (bs *BootState) Query() sp.TphaseQuery {
	return bs.Phase
}
