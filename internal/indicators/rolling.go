package indicators

import "math"

// epsilon is the smallest increment guard used wherever a denominator could
// be exactly zero (zero average loss, zero band width).
const epsilon = 2.220446049250313e-16

func nans(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// diff returns x[i]-x[i-1] with an undefined first element.
func diff(x []float64) []float64 {
	out := nans(len(x))
	for i := 1; i < len(x); i++ {
		out[i] = x[i] - x[i-1]
	}
	return out
}

// pctChange returns the fractional change between consecutive elements.
func pctChange(x []float64) []float64 {
	out := nans(len(x))
	for i := 1; i < len(x); i++ {
		out[i] = x[i]/x[i-1] - 1
	}
	return out
}

// pctChangeN returns the fractional change over n elements.
func pctChangeN(x []float64, n int) []float64 {
	out := nans(len(x))
	for i := n; i < len(x); i++ {
		out[i] = x[i]/x[i-n] - 1
	}
	return out
}

// ewm computes a recursive exponentially weighted mean with the given
// smoothing factor. Leading undefined values are skipped; the first defined
// value seeds the recursion.
func ewm(x []float64, alpha float64) []float64 {
	out := nans(len(x))
	started := false
	var prev float64
	for i, v := range x {
		if math.IsNaN(v) {
			if started {
				out[i] = prev
			}
			continue
		}
		if !started {
			started = true
			prev = v
		} else {
			prev = prev + alpha*(v-prev)
		}
		out[i] = prev
	}
	return out
}

// ewmSpan computes an EMA using the span convention alpha = 2/(span+1).
func ewmSpan(x []float64, span int) []float64 {
	return ewm(x, 2/(float64(span)+1))
}

// rollMean computes a trailing simple moving average; rows without a full
// window of defined values are undefined.
func rollMean(x []float64, window int) []float64 {
	out := nans(len(x))
	for i := window - 1; i < len(x); i++ {
		sum := 0.0
		ok := true
		for j := i - window + 1; j <= i; j++ {
			if math.IsNaN(x[j]) {
				ok = false
				break
			}
			sum += x[j]
		}
		if ok {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// rollStd computes a trailing sample standard deviation (n-1 denominator).
func rollStd(x []float64, window int) []float64 {
	out := nans(len(x))
	if window < 2 {
		return out
	}
	for i := window - 1; i < len(x); i++ {
		sum := 0.0
		ok := true
		for j := i - window + 1; j <= i; j++ {
			if math.IsNaN(x[j]) {
				ok = false
				break
			}
			sum += x[j]
		}
		if !ok {
			continue
		}
		mean := sum / float64(window)
		ss := 0.0
		for j := i - window + 1; j <= i; j++ {
			d := x[j] - mean
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(window-1))
	}
	return out
}

func rollMax(x []float64, window int) []float64 {
	out := nans(len(x))
	for i := window - 1; i < len(x); i++ {
		best := math.Inf(-1)
		ok := true
		for j := i - window + 1; j <= i; j++ {
			if math.IsNaN(x[j]) {
				ok = false
				break
			}
			if x[j] > best {
				best = x[j]
			}
		}
		if ok {
			out[i] = best
		}
	}
	return out
}

func rollMin(x []float64, window int) []float64 {
	out := nans(len(x))
	for i := window - 1; i < len(x); i++ {
		best := math.Inf(1)
		ok := true
		for j := i - window + 1; j <= i; j++ {
			if math.IsNaN(x[j]) {
				ok = false
				break
			}
			if x[j] < best {
				best = x[j]
			}
		}
		if ok {
			out[i] = best
		}
	}
	return out
}

// cumsum accumulates a running total, treating undefined values as gaps.
func cumsum(x []float64) []float64 {
	out := make([]float64, len(x))
	total := 0.0
	for i, v := range x {
		if !math.IsNaN(v) {
			total += v
		}
		out[i] = total
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
