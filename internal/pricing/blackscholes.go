package pricing

import (
	"math"

	"options-collector/internal/models"
)

// Greeks is the Black-Scholes price of an option together with its five
// standard sensitivities. Theta is per calendar day; vega and rho are per
// one-percentage-point change in volatility and rate respectively.
type Greeks struct {
	Price float64
	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
	Rho   float64
}

// BlackScholes prices a European option and computes its Greeks.
//
// s is the underlying spot, k the strike, t the time to maturity in years,
// r the annualized risk-free rate, sigma the annualized volatility, and kind
// models.Call or models.Put. Expired options (t <= 0) are valued at intrinsic
// with delta 1 or 0 and all other Greeks zero.
func BlackScholes(s, k, t, r, sigma float64, kind string) Greeks {
	if t <= 0 {
		return expiredGreeks(s, k, kind)
	}
	if sigma <= 0 {
		// Deterministic world: discounted intrinsic, no convexity or
		// volatility sensitivity.
		return zeroVolGreeks(s, k, t, r, kind)
	}

	sqrtT := math.Sqrt(t)
	d1 := (math.Log(s/k) + (r+0.5*sigma*sigma)*t) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT
	discount := math.Exp(-r * t)

	var g Greeks
	if kind == models.Put {
		g.Price = k*discount*normCDF(-d2) - s*normCDF(-d1)
		g.Delta = -normCDF(-d1)
		g.Theta = (-(s*normPDF(d1)*sigma)/(2*sqrtT) + r*k*discount*normCDF(-d2)) / 365
		g.Rho = -k * t * discount * normCDF(-d2) / 100
	} else {
		g.Price = s*normCDF(d1) - k*discount*normCDF(d2)
		g.Delta = normCDF(d1)
		g.Theta = (-(s*normPDF(d1)*sigma)/(2*sqrtT) - r*k*discount*normCDF(d2)) / 365
		g.Rho = k * t * discount * normCDF(d2) / 100
	}
	g.Gamma = normPDF(d1) / (s * sigma * sqrtT)
	g.Vega = s * normPDF(d1) * sqrtT / 100

	return g
}

func expiredGreeks(s, k float64, kind string) Greeks {
	var g Greeks
	if kind == models.Put {
		g.Price = math.Max(k-s, 0)
		if s < k {
			g.Delta = 1.0
		}
	} else {
		g.Price = math.Max(s-k, 0)
		if s > k {
			g.Delta = 1.0
		}
	}
	return g
}

func zeroVolGreeks(s, k, t, r float64, kind string) Greeks {
	discount := math.Exp(-r * t)
	var g Greeks
	if kind == models.Put {
		g.Price = math.Max(k*discount-s, 0)
		if s < k*discount {
			g.Delta = -1.0
		}
	} else {
		g.Price = math.Max(s-k*discount, 0)
		if s > k*discount {
			g.Delta = 1.0
		}
	}
	return g
}

// normCDF is the standard normal cumulative distribution function.
// N(x) = 0.5 * (1 + erf(x / sqrt(2)))
func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// normPDF is the standard normal probability density function.
func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}
