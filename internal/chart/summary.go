package chart

import (
	"math"
	"slices"
)

// Summary holds descriptive statistics of one series.
type Summary struct {
	Field  string  `json:"field"`
	Count  int     `json:"count"`
	Sum    float64 `json:"sum"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Std    float64 `json:"std"`
}

// Summarize computes one Summary per series, in series order.
func Summarize(series []Series) []Summary {
	out := make([]Summary, 0, len(series))
	for _, s := range series {
		vals := make([]float64, len(s.Points))
		for i, p := range s.Points {
			vals[i] = p.Y
		}
		sum := Summary{Field: s.Field, Count: len(vals)}
		if len(vals) > 0 {
			sum.Sum = total(vals)
			sum.Mean = sum.Sum / float64(len(vals))
			sum.Median = median(vals)
			sum.Min = slices.Min(vals)
			sum.Max = slices.Max(vals)
			sum.Std = std(vals, sum.Mean)
		}
		out = append(out, sum)
	}
	return out
}

func total(vals []float64) float64 {
	s := 0.0
	for _, v := range vals {
		s += v
	}
	return s
}

func median(vals []float64) float64 {
	sorted := slices.Sorted(slices.Values(vals))
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// std is the sample standard deviation.
func std(vals []float64, mean float64) float64 {
	if len(vals) <= 1 {
		return 0
	}
	sumSq := 0.0
	for _, v := range vals {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(vals)-1))
}
