package cost

import "fmt"

// WeightLookupMissing reports a required (user_class, purpose, mode
// tuple, weight_name) combination absent from the WeightBook. Fatal for
// the request that triggered it (spec §7).
type WeightLookupMissing struct {
	Key        fmt.Stringer
	WeightName string
}

func (e *WeightLookupMissing) Error() string {
	return fmt.Sprintf("weight lookup missing for %s weight_name=%q", e.Key, e.WeightName)
}

// NegativeUtilityDetected reports a combined utility that went <= 0 before
// the hyperlink log-sum combination. Mitigation is to raise
// utils_conversion_factor; the core does not recover from this internally
// (spec §7).
type NegativeUtilityDetected struct {
	Stop int32
	Cost float64
}

func (e *NegativeUtilityDetected) Error() string {
	return fmt.Sprintf("negative utility detected at stop %d: cost=%v", e.Stop, e.Cost)
}
