package hosted

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	db "github.com/calmsacibis995/sprite2/debug"
	"github.com/calmsacibis995/sprite2/mem"
)

const pageSize = 4096

// Vm is the hosted virtual-memory module.  Its early page structures
// come out of the boot arena; after full init it allocates generally.
type Vm struct {
	mu       sync.Mutex
	swapDir  string
	pageMaps []byte
	ticks    uint64
}

func NewVm(swapDir string) *Vm {
	if swapDir == "" {
		swapDir = filepath.Join(os.TempDir(), "sprite2-swap")
	}
	return &Vm{swapDir: swapDir}
}

// BootInit carves the initial page maps out of the boot arena.
func (vm *Vm) BootInit(a *mem.Allocator) error {
	b, err := a.BootAlloc(4 * pageSize)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.pageMaps = b
	vm.mu.Unlock()
	db.DPrintf(db.MEM, "vm boot init: %d bytes of page maps", len(b))
	return nil
}

// Init completes VM initialization.  It runs while boot-phase allocation
// is still legal and takes the last boot allocation; once it returns the
// kernel retires the boot allocator for good.
func (vm *Vm) Init(a *mem.Allocator) error {
	if _, err := a.BootAlloc(pageSize); err != nil {
		return err
	}
	db.DPrintf(db.MEM, "vm init done")
	return nil
}

// Clock is the periodic time-maintenance deferred task: one bounded
// maintenance pass per invocation.
func (vm *Vm) Clock(interface{}) {
	vm.mu.Lock()
	vm.ticks++
	vm.mu.Unlock()
	db.DPrintf(db.MEM, "vm clock tick")
}

// OpenSwapDirectory makes the swap area available for page-out.
func (vm *Vm) OpenSwapDirectory(interface{}) {
	if err := os.MkdirAll(vm.swapDir, 0755); err != nil {
		db.DPrintf(db.MEM_ERR, "open swap dir %v: %v", vm.swapDir, err)
		return
	}
	start := time.Now()
	db.DPrintf(db.MEM, "swap dir %v ready in %v", vm.swapDir, time.Since(start))
}

func (vm *Vm) Ticks() uint64 {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.ticks
}
