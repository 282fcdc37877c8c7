package initproc

// ReconstructCommand rebuilds the boot command line from the
// boot-loader's packed buffer: argc NUL-terminated strings stored
// contiguously.  The span runs from the start of the buffer through the
// end of the last argument; every terminator inside it becomes a single
// space and the trailing terminator is dropped, so "quiet\0single\0" with
// argc 2 yields "quiet single".  argc 0 yields the empty string.
func ReconstructCommand(buf []byte, argc int) string {
	if argc <= 0 {
		return ""
	}
	end := len(buf)
	n := 0
	for i, b := range buf {
		if b == 0 {
			n++
			if n == argc {
				end = i
				break
			}
		}
	}
	cmd := make([]byte, end)
	for i := 0; i < end; i++ {
		if buf[i] == 0 {
			cmd[i] = ' '
		} else {
			cmd[i] = buf[i]
		}
	}
	return string(cmd)
}

// BuildArgv builds the exec argument vector.  An empty command yields no
// -b flag at all, not an empty-string flag.
func BuildArgv(program, cmd string) []string {
	if cmd == "" {
		return []string{program}
	}
	return []string{program, "-b", cmd}
}
