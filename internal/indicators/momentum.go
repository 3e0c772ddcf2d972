package indicators

import "math"

// CombinedMomentum blends a short and a long lookback return into a single
// momentum figure (0.7 short + 0.3 long, in percent). The nominal 14/7
// sample periods adapt down when the history is shorter.
func CombinedMomentum(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	period := 14
	if len(prices) <= period {
		period = len(prices) - 1
		if period < 1 {
			period = 1
		}
	}
	last := prices[len(prices)-1]
	longMomentum := (last/prices[len(prices)-period] - 1) * 100

	shortPeriod := len(prices) / 3
	if shortPeriod > 7 {
		shortPeriod = 7
	}
	if shortPeriod < 1 {
		shortPeriod = 1
	}
	shortMomentum := (last/prices[len(prices)-shortPeriod] - 1) * 100

	return shortMomentum*0.7 + longMomentum*0.3
}

// AnnualizedVolatility is the sample standard deviation of consecutive
// returns scaled by sqrt(252). Series shorter than two samples yield zero.
func AnnualizedVolatility(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		returns = append(returns, prices[i]/prices[i-1]-1)
	}
	if len(returns) < 2 {
		return 0
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	ss := 0.0
	for _, r := range returns {
		d := r - mean
		ss += d * d
	}
	return math.Sqrt(ss/float64(len(returns)-1)) * annualization
}
