package debug

type Tselector string

// ALWAYS
const (
	ALWAYS Tselector = "ALWAYS"
	ERROR            = "ERROR"
	NEVER            = "NEVER"
)

// ERR
const (
	ERR Tselector = "_ERR"
)

// Kernel
const (
	KERNEL     Tselector = "KERNEL"
	KERNEL_ERR           = KERNEL + ERR
	BOOT                 = "BOOT"
	MACH                 = "MACH"
)

// Memory
const (
	MEM     Tselector = "MEM"
	MEM_ERR           = MEM + ERR
)

// Processes
const (
	PROC         Tselector = "PROC"
	PROCCLNT               = "PROCCLNT"
	PROCCLNT_ERR           = PROCCLNT + ERR
	CALLFUNC               = "CALLFUNC"
)

// Subsystems
const (
	RPC     Tselector = "RPC"
	RPC_ERR           = RPC + ERR
	RECOV             = "RECOV"
	FSYS              = "FSYS"
	NET               = "NET"
	SCHED             = "SCHED"
	PROF              = "PROF"
)

// Init program
const (
	INIT     Tselector = "INIT"
	INIT_ERR           = INIT + ERR
)

// Tests
const (
	TEST Tselector = "TEST"
)
