package finalizer

// NoPathFound reports that the Enumerator produced an empty pathset —
// nothing survived to finalize (spec §7's NoPathFound kind).
type NoPathFound struct{}

func (e *NoPathFound) Error() string { return "finalizer received an empty pathset" }
