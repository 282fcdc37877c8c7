package hosted

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	db "github.com/calmsacibis995/sprite2/debug"
	"github.com/calmsacibis995/sprite2/mach"
)

// Machine is the hosted machine layer: monitor output goes to stderr,
// interrupts are a flag, and the boot-loader argument buffer is packed
// from configuration.
type Machine struct {
	mu       sync.Mutex
	intr     bool
	target   string
	bootArgs []string
	mon      io.Writer
}

var _ mach.Machine = (*Machine)(nil)

func NewMachine(bootArgs []string) *Machine {
	return &Machine{
		target:   runtime.GOOS + "/" + runtime.GOARCH,
		bootArgs: bootArgs,
		mon:      os.Stderr,
	}
}

func (m *Machine) InitVars() {
	db.DPrintf(db.MACH, "InitVars %v", m.target)
}

func (m *Machine) Init() error {
	db.DPrintf(db.MACH, "Init")
	return nil
}

// MonPrintf is raw monitor output: no allocation, no formatting layers
// beyond fmt, usable before diagnostics come up.
func (m *Machine) MonPrintf(format string, v ...interface{}) {
	fmt.Fprintf(m.mon, format, v...)
}

func (m *Machine) StartNmi() {
	db.DPrintf(db.MACH, "StartNmi")
}

func (m *Machine) EnableInterrupts() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.intr = true
}

func (m *Machine) DisableInterrupts() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.intr = false
}

func (m *Machine) IntrEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.intr
}

func (m *Machine) BootArgs(maxArgs, bufLen int) ([]byte, int) {
	return mach.PackArgs(m.bootArgs, maxArgs, bufLen)
}

func (m *Machine) Target() string {
	return m.target
}
