// Package mach is the machine-dependent boundary of the kernel: raw
// monitor output, interrupt masking, and the boot-loader's packed
// argument buffer.
package mach

// Machine is the contract the kernel and the init-program launcher
// require from the machine layer.  MonPrintf is allocator-independent raw
// output and the only channel permitted before formatted diagnostics come
// up.
type Machine interface {
	InitVars()
	Init() error
	MonPrintf(format string, v ...interface{})
	StartNmi()
	EnableInterrupts()
	DisableInterrupts()
	IntrEnabled() bool
	// BootArgs returns the boot-loader's argument buffer: up to maxArgs
	// NUL-terminated strings packed contiguously into a buffer of bufLen
	// bytes, plus the argument count.
	BootArgs(maxArgs, bufLen int) ([]byte, int)
	// Target names the machine architecture for the boot banner.
	Target() string
}

// PackArgs packs args into a bufLen-byte buffer as contiguous
// NUL-terminated strings, the layout the boot loader hands the kernel.
// Arguments that would overflow the buffer (or exceed maxArgs) are
// dropped.
func PackArgs(args []string, maxArgs, bufLen int) ([]byte, int) {
	buf := make([]byte, bufLen)
	off := 0
	argc := 0
	for _, a := range args {
		if argc >= maxArgs || off+len(a)+1 > bufLen {
			break
		}
		copy(buf[off:], a)
		off += len(a)
		buf[off] = 0
		off++
		argc++
	}
	return buf, argc
}
