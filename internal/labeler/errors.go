package labeler

import "fmt"

// BudgetExceeded reports that a process-count or time budget was hit
// before the egress (outbound) or origin (inbound) labels were reached.
// The Labeler still returns whatever labels it built; the caller marks
// the result incomplete (spec §7).
type BudgetExceeded struct {
	Reason string
}

func (e *BudgetExceeded) Error() string {
	return fmt.Sprintf("label budget exceeded: %s", e.Reason)
}

// NoEgressReached reports that the search exhausted its queue without any
// finite-cost label reaching the anchor's counterpart (origin zone for
// outbound, destination zone for inbound) — spec §4.3's Failure clause.
type NoEgressReached struct{}

func (e *NoEgressReached) Error() string { return "no access-link seeding reached a labeled stop" }
