package trend

import (
	"testing"

	"tokenScope/internal/model"
)

func samplesFromValues(values []float64) []model.HistorySample {
	samples := make([]model.HistorySample, 0, len(values))
	for i, v := range values {
		samples = append(samples, model.HistorySample{
			Timestamp:      int64(1_700_000_000_000 + i*60_000),
			TotalLiquidity: v,
			HolderCount:    int(v),
		})
	}
	return samples
}

func TestEstimateIncreasing(t *testing.T) {
	samples := samplesFromValues([]float64{10, 20, 30, 40})
	if got := Estimate(samples, MetricLiquidity); got != model.TrendUp {
		t.Fatalf("strictly increasing liquidity should trend up, got %s", got)
	}
	if got := Estimate(samples, MetricHolders); got != model.TrendUp {
		t.Fatalf("strictly increasing holders should trend up, got %s", got)
	}
}

func TestEstimateDecreasing(t *testing.T) {
	samples := samplesFromValues([]float64{40, 30, 20, 10})
	if got := Estimate(samples, MetricLiquidity); got != model.TrendDown {
		t.Fatalf("strictly decreasing values should trend down, got %s", got)
	}
}

func TestEstimateConstant(t *testing.T) {
	samples := samplesFromValues([]float64{25, 25, 25, 25})
	if got := Estimate(samples, MetricLiquidity); got != model.TrendStagnant {
		t.Fatalf("constant values should be stagnant, got %s", got)
	}
}

func TestEstimateTooFewSamples(t *testing.T) {
	if got := Estimate(nil, MetricLiquidity); got != model.TrendStagnant {
		t.Fatalf("no samples should be stagnant, got %s", got)
	}
	one := samplesFromValues([]float64{10})
	if got := Estimate(one, MetricLiquidity); got != model.TrendStagnant {
		t.Fatalf("single sample should be stagnant, got %s", got)
	}
}

func TestEstimateBelowThreshold(t *testing.T) {
	// Slope of 0.01 per index stays inside the stagnant band.
	samples := samplesFromValues([]float64{100.00, 100.01, 100.02, 100.03})
	if got := Estimate(samples, MetricLiquidity); got != model.TrendStagnant {
		t.Fatalf("slope below threshold should be stagnant, got %s", got)
	}
}

func TestEstimateOrderInvariant(t *testing.T) {
	ordered := samplesFromValues([]float64{10, 20, 30, 40})
	shuffled := []model.HistorySample{ordered[2], ordered[0], ordered[3], ordered[1]}

	if got := Estimate(shuffled, MetricLiquidity); got != model.TrendUp {
		t.Fatalf("arrival order should not matter, got %s", got)
	}
	if a, b := Estimate(ordered, MetricHolders), Estimate(shuffled, MetricHolders); a != b {
		t.Fatalf("order variants diverged: %s != %s", a, b)
	}
}

func TestEstimateDoesNotMutateInput(t *testing.T) {
	ordered := samplesFromValues([]float64{10, 20, 30})
	shuffled := []model.HistorySample{ordered[2], ordered[0], ordered[1]}
	first := shuffled[0]

	Estimate(shuffled, MetricLiquidity)

	if shuffled[0] != first {
		t.Fatalf("input slice was reordered")
	}
}

func TestStoreRecomputeOnWrite(t *testing.T) {
	store := NewStore()
	key := "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

	if _, ok := store.Get(key); ok {
		t.Fatalf("fresh store should be empty")
	}
	if got := store.Pair(key); got != model.DefaultTrendPair() {
		t.Fatalf("absent entry should read as stagnant pair, got %+v", got)
	}

	store.Update(key, samplesFromValues([]float64{10, 20, 30}))
	pair, ok := store.Get(key)
	if !ok {
		t.Fatalf("updated entry missing")
	}
	if pair.Liquidity != model.TrendUp || pair.Holders != model.TrendUp {
		t.Fatalf("unexpected pair %+v", pair)
	}

	store.Update(key, samplesFromValues([]float64{30, 20, 10}))
	if pair := store.Pair(key); pair.Liquidity != model.TrendDown {
		t.Fatalf("rewrite should replace the pair, got %+v", pair)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one tracked token, got %d", store.Len())
	}
}
