package netmodel

import "fmt"

// InvariantViolation reports corrupt input data detected while building a
// NetworkModel: unsorted stop-times, negative durations, or a reference to
// an unknown stop/route/zone. Construction-time errors are fatal to the
// whole run (spec §7 propagation policy).
type InvariantViolation struct {
	Subject string // e.g. "trip 42"
	Reason  string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation in %s: %s", e.Subject, e.Reason)
}

func invariantf(subject, format string, args ...any) error {
	return &InvariantViolation{Subject: subject, Reason: fmt.Sprintf(format, args...)}
}
