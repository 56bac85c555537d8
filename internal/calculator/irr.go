package calculator

import (
	"errors"
	"math"
)

// Cash flows are indexed by period: flows[0] happens now, flows[t] at the
// end of year t. Negative values are investments, positive values returns.

// NPV discounts the cash flows at rate (0.10 = 10%).
func NPV(rate float64, flows []float64) float64 {
	npv := 0.0
	for t, cf := range flows {
		npv += cf / math.Pow(1+rate, float64(t))
	}
	return npv
}

const (
	irrLow       = -0.99
	irrHigh      = 10.0
	irrTolerance = 1e-9
	irrMaxIter   = 200
)

// CalculateIRR solves NPV(rate) = 0 by bisection. The flows must contain at
// least one investment and one return, and change sign inside the search
// range of -99% to 1000%.
func CalculateIRR(flows []float64) (float64, error) {
	var hasNeg, hasPos bool
	for _, cf := range flows {
		if cf < 0 {
			hasNeg = true
		}
		if cf > 0 {
			hasPos = true
		}
	}
	if !hasNeg || !hasPos {
		return 0, errors.New("cash flows need both an investment and a return")
	}

	lo, hi := irrLow, irrHigh
	fLo := NPV(lo, flows)
	fHi := NPV(hi, flows)
	if fLo*fHi > 0 {
		return 0, errors.New("IRR outside search range")
	}
	for i := 0; i < irrMaxIter; i++ {
		mid := (lo + hi) / 2
		fMid := NPV(mid, flows)
		if math.Abs(fMid) < irrTolerance || (hi-lo)/2 < irrTolerance {
			return mid, nil
		}
		if fLo*fMid < 0 {
			hi = mid
		} else {
			lo, fLo = mid, fMid
		}
	}
	return (lo + hi) / 2, nil
}
