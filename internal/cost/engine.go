// Package cost implements the pure generalized-cost functions shared by
// the Labeler, Enumerator and Finalizer: weighted link cost, fare
// computation with transfer adjustment, and path-size overlap (spec §4.2).
package cost

import "github.com/fast-trips/fast-trips-core/internal/weights"

// Engine computes generalized cost given link attributes and a WeightBook.
// It holds no per-request state and is safe for concurrent use.
type Engine struct {
	Weights *weights.WeightBook

	// UtilsConversionFactor is a positive multiplier applied to every
	// utility to keep labels strictly positive, required by the log-sum
	// combination (spec §4.2, §9).
	UtilsConversionFactor float64

	// MinTransferPenalty floors the transfer-penalty weight multiplier
	// (spec §6/§9: flooring the weight, not the resulting cost).
	MinTransferPenalty float64
}

// NewEngine constructs an Engine, defaulting UtilsConversionFactor to 1 if
// zero was supplied (a zero factor would collapse every cost to zero).
func NewEngine(wb *weights.WeightBook, utilsConversionFactor, minTransferPenalty float64) *Engine {
	if utilsConversionFactor <= 0 {
		utilsConversionFactor = 1
	}
	return &Engine{Weights: wb, UtilsConversionFactor: utilsConversionFactor, MinTransferPenalty: minTransferPenalty}
}

// LinkCost sums the weighted attributes for one link under key k. attrs
// maps a weight_name (e.g. "in_vehicle_time_min") to its raw value. A
// missing weight for a present attribute is reported as
// *WeightLookupMissing with the full key, per spec §7.
func (e *Engine) LinkCost(k weights.Key, attrs map[string]float64) (float64, error) {
	var total float64
	for name, val := range attrs {
		w, ok := e.Weights.Lookup(k, name)
		if !ok {
			return 0, &WeightLookupMissing{Key: k, WeightName: name}
		}
		if name == "transfer_penalty" {
			w = w.Floor(e.MinTransferPenalty)
		}
		total += w.Apply(val)
	}
	return total, nil
}

// FareCostInTimeUnits converts a monetary fare into the same cost units as
// time-weighted attributes via 60/value_of_time (spec §4.2).
func (e *Engine) FareCostInTimeUnits(fare, valueOfTime float64) float64 {
	if valueOfTime <= 0 {
		return 0
	}
	return fare * (60.0 / valueOfTime)
}

// ToUtilsSpace scales a raw generalized cost by UtilsConversionFactor. The
// Labeler applies this immediately before combining costs in the hyperlink
// log-sum, and reports *NegativeUtilityDetected if the scaled value is
// non-positive.
func (e *Engine) ToUtilsSpace(rawCost float64) float64 {
	return rawCost * e.UtilsConversionFactor
}
