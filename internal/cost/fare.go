package cost

import "github.com/fast-trips/fast-trips-core/internal/netmodel"

// FareWithTransfer computes the fare for a leg in the `current` fare
// period given the passenger's `prior` fare period (NoFarePeriod if this
// is the first leg).
//
// backToBack must be true only when the prior leg immediately precedes
// this one with no intervening transit leg in a different fare period
// (back-to-back adjacency is required for FareTransferRule discount/free/
// fixed rules, spec §4.5 and design note "Fare lookup").
//
// withinFreeAllowance should be true when the elapsed time since boarding
// the prior leg is within current's FreeTransferAllowance and prior ==
// current; this in-period allowance applies *after* the transfer rule and
// may override it, and does not require back-to-back adjacency (spec
// §4.5 step 1).
func FareWithTransfer(nm *netmodel.NetworkModel, prior, current netmodel.FarePeriodID, backToBack, withinFreeAllowance bool) (float64, error) {
	curFP, ok := nm.FarePeriod(current)
	if !ok {
		return 0, &WeightLookupMissing{Key: fareKeyStringer(current), WeightName: "fare_period"}
	}

	fare := curFP.BaseFare

	if prior != netmodel.NoFarePeriod && backToBack {
		if rule, ok := nm.FareTransferRule(prior, current); ok {
			switch rule.RuleType {
			case netmodel.FareRuleDiscount:
				fare -= rule.Amount
				if fare < 0 {
					fare = 0
				}
			case netmodel.FareRuleFree:
				fare = 0
			case netmodel.FareRuleFixed:
				fare = rule.Amount
			}
		}
	}

	if withinFreeAllowance && prior == current && curFP.FreeTransferAllowance > 0 {
		fare = 0
	}

	return fare, nil
}

type fareKeyStringer netmodel.FarePeriodID

func (f fareKeyStringer) String() string {
	return "fare_period=" + itoa(int32(f))
}

func itoa(v int32) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [12]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
