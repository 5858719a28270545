package weights

import (
	"fmt"
	"strings"

	"github.com/fast-trips/fast-trips-core/internal/netmodel"
)

// Key identifies a (user_class, purpose, demand_mode_type, demand_mode,
// supply_mode) combination that owns a set of named weights.
type Key struct {
	UserClass      string
	Purpose        string
	DemandModeType netmodel.DemandModeType
	DemandMode     string
	SupplyMode     netmodel.SupplyMode
}

// WeightRow is one row of the input collaborator's weight table (spec §6).
type WeightRow struct {
	UserClass      string
	Purpose        string
	DemandModeType netmodel.DemandModeType
	DemandMode     string
	SupplyMode     netmodel.SupplyMode
	WeightName     string // may be "name" or "name.qualifier"
	WeightValue    float64
	LogBase        float64 // only meaningful for .logarithmic
	LogisticMax    float64 // only meaningful for .logistic
	LogisticMid    float64 // only meaningful for .logistic
}

// WeightBook is the immutable, read-only lookup table built from
// WeightRows. Safe for concurrent reads across request workers.
type WeightBook struct {
	entries map[Key]map[string]Weight
}

// Load compiles WeightRows into a WeightBook. The dot-suffix convention on
// weight_name ("time_min.logarithmic") selects the Qualifier; a bare name
// defaults to Constant.
func Load(rows []WeightRow) *WeightBook {
	wb := &WeightBook{entries: make(map[Key]map[string]Weight)}
	for _, r := range rows {
		name, qualifier := splitWeightName(r.WeightName)
		k := Key{
			UserClass:      r.UserClass,
			Purpose:        r.Purpose,
			DemandModeType: r.DemandModeType,
			DemandMode:     r.DemandMode,
			SupplyMode:     r.SupplyMode,
		}
		w := Weight{
			Qualifier: qualifier,
			W:         r.WeightValue,
			LogBase:   r.LogBase,
			LogisticL: r.LogisticMax,
			LogisticM: r.LogisticMid,
		}
		if wb.entries[k] == nil {
			wb.entries[k] = make(map[string]Weight)
		}
		wb.entries[k][name] = w
	}
	return wb
}

func splitWeightName(raw string) (name string, qualifier Qualifier) {
	parts := strings.SplitN(raw, ".", 2)
	name = parts[0]
	if len(parts) == 1 {
		return name, Constant
	}
	switch Qualifier(strings.ToLower(parts[1])) {
	case Exponential:
		return name, Exponential
	case Logarithmic:
		return name, Logarithmic
	case Logistic:
		return name, Logistic
	default:
		return name, Constant
	}
}

// Lookup finds the Weight for weightName under key k. ok is false when the
// combination is entirely missing (the caller should report
// WeightLookupMissing with the full key, per spec §7).
func (wb *WeightBook) Lookup(k Key, weightName string) (Weight, bool) {
	byName, ok := wb.entries[k]
	if !ok {
		return Weight{}, false
	}
	w, ok := byName[weightName]
	return w, ok
}

// String renders a Key for error messages (WeightLookupMissing surfaces
// the full key per spec §7).
func (k Key) String() string {
	return fmt.Sprintf("(user_class=%s, purpose=%s, demand_mode_type=%s, demand_mode=%s, supply_mode=%s)",
		k.UserClass, k.Purpose, k.DemandModeType, k.DemandMode, k.SupplyMode)
}
