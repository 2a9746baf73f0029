package analytics

import "math"

// mean returns the arithmetic mean, 0 for an empty slice.
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev returns the population standard deviation, 0 for fewer than two values.
func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// coefficientOfVariation returns stddev/|mean| as a percentage, the normalized
// volatility measure used by the scorer and the recurring detector. Returns 0
// when the mean is 0 rather than dividing by zero.
func coefficientOfVariation(xs []float64) float64 {
	m := mean(xs)
	if m == 0 {
		return 0
	}
	return stddev(xs) / math.Abs(m) * 100
}

// pearson computes the Pearson correlation coefficient of two equal-length
// series. Returns 0 when either series has no variance.
func pearson(xs, ys []float64) float64 {
	n := len(xs)
	if n == 0 || n != len(ys) {
		return 0
	}
	mx, my := mean(xs), mean(ys)
	var cov, vx, vy float64
	for i := 0; i < n; i++ {
		dx := xs[i] - mx
		dy := ys[i] - my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0
	}
	return cov / math.Sqrt(vx*vy)
}

// clampScore bounds a score to [0,100].
func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// lerp maps v from the interval [lo,hi] linearly onto [slo,shi].
func lerp(v, lo, hi, slo, shi float64) float64 {
	if hi == lo {
		return slo
	}
	t := (v - lo) / (hi - lo)
	return slo + t*(shi-slo)
}

// ratio returns a/b, substituting 0 when b is 0.
func ratio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
