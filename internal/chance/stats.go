package chance

import (
	"math"
	"sort"
)

// Stats summarizes a set of trial samples (e.g. runs scored per trial).
type Stats struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	Var    float64 `json:"var"`
	StdDev float64 `json:"stddev"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
	// Optional: raw samples if caller needs histograms/exports
	Samples []float64 `json:"-"`
}

// Summarize computes mean/variance/percentiles for samples.
func Summarize(xs []float64) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, v := range xs {
		sum += v
	}
	mean := sum / float64(n)

	// variance (population)
	var acc float64
	for _, v := range xs {
		d := v - mean
		acc += d * d
	}
	variance := acc / float64(n)

	cp := append([]float64(nil), xs...)
	sort.Float64s(cp)
	percentile := func(p float64) float64 {
		if n == 1 || p <= 0 {
			return cp[0]
		}
		if p >= 1 {
			return cp[n-1]
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return cp[i]
		}
		return cp[i]*(1-f) + cp[i+1]*f
	}

	return Stats{
		N:       n,
		Mean:    mean,
		Var:     variance,
		StdDev:  math.Sqrt(variance),
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Samples: xs,
	}
}
