package patterns

import "math"

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stdDev is the population standard deviation of xs.
func stdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	var sq float64
	for _, x := range xs {
		sq += (x - m) * (x - m)
	}
	return math.Sqrt(sq / float64(len(xs)))
}

// consistency maps a coefficient of variation onto [0, 1]; 1 is perfectly stable.
func consistency(m, sd float64) float64 {
	if m <= 0 {
		return 0
	}
	return math.Max(0, 1-sd/m)
}
