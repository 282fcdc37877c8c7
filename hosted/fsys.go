package hosted

import (
	"os"
	"sync"

	db "github.com/calmsacibis995/sprite2/debug"
	"github.com/calmsacibis995/sprite2/mem"
)

// Fsys is the hosted filesystem module.
type Fsys struct {
	mu     sync.Mutex
	cwd    string
	synced int
}

func NewFsys() *Fsys {
	return &Fsys{}
}

// Bin registers the filesystem's allocator bins; must run before the
// general allocator is initialized.
func (fs *Fsys) Bin(a *mem.Allocator) error {
	return a.Bin("fs", []int{64, 512, pageSize})
}

func (fs *Fsys) Init() error {
	db.DPrintf(db.FSYS, "Init")
	return nil
}

// ProcInit gives the main proc a working directory.
func (fs *Fsys) ProcInit() error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	fs.mu.Lock()
	fs.cwd = wd
	fs.mu.Unlock()
	db.DPrintf(db.FSYS, "main proc cwd %v", wd)
	return nil
}

// SyncProc is the deferred cache-to-disk synchronization task: one
// bounded sync pass per invocation.
func (fs *Fsys) SyncProc(interface{}) {
	fs.mu.Lock()
	fs.synced++
	fs.mu.Unlock()
	db.DPrintf(db.FSYS, "cache sync pass")
}

func (fs *Fsys) Cwd() string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.cwd
}
