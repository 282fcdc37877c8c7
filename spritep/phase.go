package spritep

// BootPhase names a stage of the boot sequence.  Each phase licenses a
// subset of operations: raw monitor output only before DiagnosticsReady,
// boot-phase allocation only before GeneralAllocatorReady, and so on.
// Phases are visited in this exact order, each exactly once; the kernel
// owns the transitions.
type BootPhase int

const (
	PreDiagnostics BootPhase = iota
	DiagnosticsReady
	BootAllocatorOnly
	GeneralAllocatorReady
	InterruptsMasked
	InterruptsEnabled
	Running
)

func (p BootPhase) String() string {
	switch p {
	case PreDiagnostics:
		return "PRE_DIAGNOSTICS"
	case DiagnosticsReady:
		return "DIAGNOSTICS_READY"
	case BootAllocatorOnly:
		return "BOOT_ALLOCATOR_ONLY"
	case GeneralAllocatorReady:
		return "GENERAL_ALLOCATOR_READY"
	case InterruptsMasked:
		return "INTERRUPTS_MASKED"
	case InterruptsEnabled:
		return "INTERRUPTS_ENABLED"
	case Running:
		return "RUNNING"
	default:
		return "unknown phase"
	}
}

// TphaseQuery is a read-only view of the kernel's current phase, handed to
// collaborators (e.g. the allocator) that must assert phase preconditions
// without being able to mutate boot state.
type TphaseQuery func() BootPhase
