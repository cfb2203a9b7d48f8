package model

// TrendValue classifies the slope of a metric's recent history.
type TrendValue string

const (
	TrendUp       TrendValue = "up"
	TrendDown     TrendValue = "down"
	TrendStagnant TrendValue = "stagnant"
)

// TrendPair carries both trend dimensions for one token.
type TrendPair struct {
	Liquidity TrendValue `json:"liquidity"`
	Holders   TrendValue `json:"holders"`
}

// DefaultTrendPair is the display state for tokens with no usable history.
func DefaultTrendPair() TrendPair {
	return TrendPair{Liquidity: TrendStagnant, Holders: TrendStagnant}
}
