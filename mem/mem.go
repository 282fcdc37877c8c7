// Package mem implements the kernel's two-phase memory allocator.  During
// early boot only BootAlloc is legal; once the kernel advances past
// general-allocator initialization only Alloc is.  The switch is the
// kernel's phase transition itself: the allocator consults a read-only
// phase query and never owns a mode flag of its own.
package mem

import (
	"errors"
	"fmt"
	"sync"

	db "github.com/calmsacibis995/sprite2/debug"
	sp "github.com/calmsacibis995/sprite2/spritep"
)

var (
	ErrBootAllocRetired  = errors.New("mem: boot allocation after general allocator init")
	ErrBootArenaFull     = errors.New("mem: boot arena exhausted")
	ErrAllocatorNotReady = errors.New("mem: general allocator not initialized")
	ErrBinsFrozen        = errors.New("mem: bin registration after general allocator init")
)

type Allocator struct {
	sync.Mutex
	phase     sp.TphaseQuery
	bootArena []byte
	bootUsed  int
	genUsed   uint64
	bins      map[string][]int
}

func NewAllocator(bootArena int, phase sp.TphaseQuery) *Allocator {
	return &Allocator{
		phase:     phase,
		bootArena: make([]byte, bootArena),
		bins:      make(map[string][]int),
	}
}

// BootAlloc carves n bytes out of the boot arena.  It is a fatal
// condition to call it once the general allocator is up; the caller is
// expected to treat the error as unrecoverable.
func (a *Allocator) BootAlloc(n int) ([]byte, error) {
	a.Lock()
	defer a.Unlock()

	if a.phase() >= sp.GeneralAllocatorReady {
		db.DPrintf(db.MEM_ERR, "BootAlloc(%d) in phase %v", n, a.phase())
		return nil, ErrBootAllocRetired
	}
	if a.bootUsed+n > len(a.bootArena) {
		return nil, ErrBootArenaFull
	}
	b := a.bootArena[a.bootUsed : a.bootUsed+n]
	a.bootUsed += n
	db.DPrintf(db.MEM, "BootAlloc(%d) used %d", n, a.bootUsed)
	return b, nil
}

// Alloc is the general allocation operation, legal only once the kernel
// has advanced to GeneralAllocatorReady.
func (a *Allocator) Alloc(n int) ([]byte, error) {
	a.Lock()
	defer a.Unlock()

	if a.phase() < sp.GeneralAllocatorReady {
		db.DPrintf(db.MEM_ERR, "Alloc(%d) in phase %v", n, a.phase())
		return nil, ErrAllocatorNotReady
	}
	a.genUsed += uint64(n)
	return make([]byte, n), nil
}

// Bin registers a set of allocation bin sizes on behalf of a subsystem.
// Bins describe regions the general allocator will manage, so they must
// be registered strictly before it is initialized.
func (a *Allocator) Bin(name string, sizes []int) error {
	a.Lock()
	defer a.Unlock()

	if a.phase() >= sp.GeneralAllocatorReady {
		return ErrBinsFrozen
	}
	if _, ok := a.bins[name]; ok {
		return fmt.Errorf("mem: bin %q already registered", name)
	}
	a.bins[name] = append([]int{}, sizes...)
	db.DPrintf(db.MEM, "Bin %v %v", name, sizes)
	return nil
}

// Bins returns the names of the registered bins.
func (a *Allocator) Bins() []string {
	a.Lock()
	defer a.Unlock()
	names := make([]string, 0, len(a.bins))
	for n := range a.bins {
		names = append(names, n)
	}
	return names
}

// Allocated reports the total bytes handed out across both phases.
func (a *Allocator) Allocated() uint64 {
	a.Lock()
	defer a.Unlock()
	return uint64(a.bootUsed) + a.genUsed
}
