package trend

import (
	"math"
	"sort"

	"tokenScope/internal/model"
)

// Metric selects which history dimension a trend is computed over.
type Metric int

const (
	MetricLiquidity Metric = iota
	MetricHolders
)

// Slopes below this magnitude classify as stagnant.
const slopeThreshold = 0.05

// Estimate classifies the trend of one metric over a token's history.
// Sample order is not trusted and is re-sorted by timestamp; the regression
// then runs against the sample index, treating unevenly spaced samples as
// equally spaced.
func Estimate(samples []model.HistorySample, metric Metric) model.TrendValue {
	if len(samples) < 2 {
		return model.TrendStagnant
	}

	ordered := make([]model.HistorySample, len(samples))
	copy(ordered, samples)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp < ordered[j].Timestamp
	})

	slope, ok := regressionSlope(ordered, metric)
	if !ok {
		return model.TrendStagnant
	}

	switch {
	case math.Abs(slope) < slopeThreshold:
		return model.TrendStagnant
	case slope > 0:
		return model.TrendUp
	default:
		return model.TrendDown
	}
}

// EstimatePair computes both trend dimensions for one token's history.
func EstimatePair(samples []model.HistorySample) model.TrendPair {
	return model.TrendPair{
		Liquidity: Estimate(samples, MetricLiquidity),
		Holders:   Estimate(samples, MetricHolders),
	}
}

// regressionSlope returns the ordinary least-squares slope of the metric
// against the sample index. The second return is false when the index
// variance is zero and no slope exists.
func regressionSlope(samples []model.HistorySample, metric Metric) (float64, bool) {
	n := float64(len(samples))
	var sumX, sumY, sumXY, sumXX float64
	for i, sample := range samples {
		x := float64(i)
		y := metricValue(sample, metric)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, false
	}
	return (n*sumXY - sumX*sumY) / denom, true
}

func metricValue(sample model.HistorySample, metric Metric) float64 {
	if metric == MetricHolders {
		return float64(sample.HolderCount)
	}
	return sample.TotalLiquidity
}
