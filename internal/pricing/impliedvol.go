package pricing

import "math"

const (
	ivInitialGuess  = 0.20
	ivMaxIterations = 100
	ivTolerance     = 1e-4
	ivVegaFloor     = 1e-10
	ivSigmaMin      = 0.01
	ivSigmaMax      = 5.0
)

// ImpliedVolatility finds the volatility at which the Black-Scholes price of
// the option matches marketPrice, using Newton-Raphson. The second return
// value is false when no volatility could be found: degenerate inputs
// (t <= 0 or marketPrice <= 0), a numerically flat vega, or exhaustion of the
// iteration budget. Non-convergence is an expected outcome for illiquid or
// mispriced quotes, not an error.
func ImpliedVolatility(marketPrice, s, k, t, r float64, kind string) (float64, bool) {
	if t <= 0 || marketPrice <= 0 {
		return 0, false
	}

	sigma := ivInitialGuess
	for i := 0; i < ivMaxIterations; i++ {
		g := BlackScholes(s, k, t, r, sigma, kind)

		if math.Abs(g.Price-marketPrice) < ivTolerance {
			return sigma, true
		}
		if g.Vega < ivVegaFloor {
			// The Newton step would divide by a near-zero slope.
			return 0, false
		}

		// Vega is scaled per 1% vol change; the *100 restores raw units.
		sigma -= (g.Price - marketPrice) / (g.Vega * 100)

		// Keep the iterate in a plausible annualized-vol range. Clamping
		// bounds the next evaluation, it does not terminate the search.
		if sigma < ivSigmaMin {
			sigma = ivSigmaMin
		} else if sigma > ivSigmaMax {
			sigma = ivSigmaMax
		}
	}

	return 0, false
}
