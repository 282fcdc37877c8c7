package initproc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/calmsacibis995/sprite2/mach"
	sp "github.com/calmsacibis995/sprite2/spritep"
)

type fakeMach struct {
	args []string
}

func (m *fakeMach) InitVars() {}
func (m *fakeMach) Init() error { return nil }
func (m *fakeMach) MonPrintf(f string, a ...interface{}) {}
func (m *fakeMach) StartNmi() {}
func (m *fakeMach) EnableInterrupts() {}
func (m *fakeMach) DisableInterrupts() {}
func (m *fakeMach) IntrEnabled() bool { return true }
func (m *fakeMach) Target() string { return "test" }

func (m *fakeMach) BootArgs(maxArgs, bufLen int) ([]byte, int) {
	return mach.PackArgs(m.args, maxArgs, bufLen)
}

type launchRec struct {
	execs    []string
	argvs    [][]string
	execErr  map[string]error
	accessed []string
	status   int
	exited   bool
}

func newTestLauncher(cfg Config, rec *launchRec) *Launcher {
	l := NewLauncher(cfg)
	l.exec = func(path string, argv []string) error {
		rec.execs = append(rec.execs, path)
		rec.argvs = append(rec.argvs, argv)
		if err, ok := rec.execErr[path]; ok {
			return err
		}
		return errors.New("exec format error")
	}
	l.access = func(path string) error {
		rec.accessed = append(rec.accessed, path)
		return errors.New("no such file or directory")
	}
	l.exit = func(status int) {
		rec.status = status
		rec.exited = true
	}
	return l
}

func TestLaunchDefaultOnly(t *testing.T) {
	rec := &launchRec{}
	l := newTestLauncher(Config{}, rec)
	l.Run(&fakeMach{args: []string{"quiet", "single"}})

	assert.Equal(t, []string{sp.InitPath}, rec.execs)
	assert.Equal(t, []string{sp.InitPath, "-b", "quiet single"}, rec.argvs[0])
	assert.True(t, rec.exited)
	assert.Equal(t, sp.ExitCouldNotLaunch, rec.status)
}

func TestLaunchAltThenDefault(t *testing.T) {
	rec := &launchRec{}
	l := newTestLauncher(Config{AltInit: "/sprite/cmds/init.alt"}, rec)
	l.Run(&fakeMach{})

	// Alt exec fails, so the default is attempted exactly once after it.
	assert.Equal(t, []string{"/sprite/cmds/init.alt", sp.InitPath}, rec.execs)
	assert.True(t, rec.exited)
	assert.Equal(t, sp.ExitCouldNotLaunch, rec.status)
}

func TestLaunchNoBootArgs(t *testing.T) {
	rec := &launchRec{}
	l := newTestLauncher(Config{}, rec)
	l.Run(&fakeMach{})

	// Empty boot command means no -b flag.
	assert.Equal(t, []string{sp.InitPath}, rec.argvs[0])
}

func TestLaunchAccessCheckNeverGates(t *testing.T) {
	rec := &launchRec{}
	l := newTestLauncher(Config{}, rec)
	l.Run(&fakeMach{})

	// The access check fails, but the exec is attempted regardless.
	assert.Equal(t, []string{sp.InitPath}, rec.accessed)
	assert.Equal(t, []string{sp.InitPath}, rec.execs)
}
