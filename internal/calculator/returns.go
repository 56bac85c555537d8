package calculator

import "errors"

// CalculateMOIC returns total returned capital over total invested capital.
func CalculateMOIC(flows []float64) (float64, error) {
	invested, returned := 0.0, 0.0
	for _, cf := range flows {
		if cf < 0 {
			invested -= cf
		} else {
			returned += cf
		}
	}
	if invested == 0 {
		return 0, errors.New("no invested capital")
	}
	return returned / invested, nil
}

// CalculatePayback returns the fractional number of years until the
// cumulative cash flow is no longer negative, interpolating inside the year
// it turns. recovered is false when that never happens; years is then the
// last period.
func CalculatePayback(flows []float64) (years float64, recovered bool) {
	if len(flows) == 0 {
		return 0, false
	}
	cumulative := flows[0]
	if cumulative >= 0 {
		return 0, true
	}
	for t := 1; t < len(flows); t++ {
		prev := cumulative
		cumulative += flows[t]
		if cumulative >= 0 {
			if flows[t] == 0 {
				return float64(t), true
			}
			return float64(t-1) + (-prev)/flows[t], true
		}
	}
	return float64(len(flows) - 1), false
}
