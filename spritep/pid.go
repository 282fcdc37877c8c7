package spritep

import (
	"github.com/thanhpk/randstr"
)

type Tpid string

const NO_PID Tpid = "no-pid"

func GenPid(program string) Tpid {
	return Tpid(program + "-" + randstr.Hex(8))
}

func (pid Tpid) String() string {
	return string(pid)
}
