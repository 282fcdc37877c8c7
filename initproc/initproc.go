// Package initproc launches the first user program.  It runs once, in
// its own proc, and terminates that proc: either the exec replaces the
// program image and never returns, or every launch attempt fails and the
// proc exits with a failure status.
package initproc

import (
	"os"

	"golang.org/x/sys/unix"

	db "github.com/calmsacibis995/sprite2/debug"
	"github.com/calmsacibis995/sprite2/mach"
	"github.com/calmsacibis995/sprite2/proc"
	sp "github.com/calmsacibis995/sprite2/spritep"
)

type Config struct {
	// AltInit, when set, is tried before InitPath.  It is a preference,
	// not a requirement: on exec failure the launcher falls through to
	// the default.
	AltInit  string
	InitPath string
}

type Launcher struct {
	cfg    Config
	exec   func(path string, argv []string) error
	access func(path string) error
	exit   func(status int)
}

func NewLauncher(cfg Config) *Launcher {
	if cfg.InitPath == "" {
		cfg.InitPath = sp.InitPath
	}
	return &Launcher{
		cfg: cfg,
		exec: func(path string, argv []string) error {
			return unix.Exec(path, argv, os.Environ())
		},
		access: func(path string) error {
			return unix.Access(path, unix.X_OK)
		},
		exit: os.Exit,
	}
}

// Entry wraps the launcher as a proc entry for the kernel to spawn.
func Entry(m mach.Machine, cfg Config) proc.Tfunc {
	l := NewLauncher(cfg)
	return func(interface{}) {
		l.Run(m)
	}
}

type attempt struct {
	path string
	// preflight is a purely diagnostic check; its failure is logged and
	// never gates the exec, which validates on its own.
	preflight func()
}

// Run reconstructs the boot command line and walks the ordered list of
// launch attempts.  A successful exec never returns; if the list is
// exhausted the proc exits with a failure status.
func (l *Launcher) Run(m mach.Machine) {
	buf, argc := m.BootArgs(sp.MaxBootArgs, sp.BootArgBufLen)
	cmd := ReconstructCommand(buf, argc)
	db.DPrintf(db.INIT, "boot command %q argc %d", cmd, argc)

	var attempts []attempt
	if l.cfg.AltInit != "" {
		attempts = append(attempts, attempt{path: l.cfg.AltInit})
	}
	attempts = append(attempts, attempt{path: l.cfg.InitPath, preflight: l.checkInit})

	for _, at := range attempts {
		if at.preflight != nil {
			at.preflight()
		}
		argv := BuildArgv(at.path, cmd)
		db.DPrintf(db.ALWAYS, "Execing %q", at.path)
		err := l.exec(at.path, argv)
		db.DPrintf(db.ALWAYS, "init: could not exec %v: %v", at.path, err)
	}
	l.exit(sp.ExitCouldNotLaunch)
}

func (l *Launcher) checkInit() {
	if err := l.access(l.cfg.InitPath); err != nil {
		db.DPrintf(db.ALWAYS, "can't open %v: %v", l.cfg.InitPath, err)
	}
}
