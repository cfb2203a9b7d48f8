package config

import (
	"time"

	"github.com/spf13/pflag"

	"tokenScope/internal/model"
)

// SnapshotConfig holds configuration for the one-shot snapshot command.
type SnapshotConfig struct {
	UpstreamURL  string
	Out          string
	SortBy       string
	Search       string
	MaxRecords   int
	MinHolders   int
	MinLiquidity float64
	WithHistory  bool
	MaxRetries   int
	RetryBackoff time.Duration
	LogLevel     string
}

// LoadSnapshot merges config file, environment variables, and flags into
// SnapshotConfig.
func LoadSnapshot(cfgFile string, flags *pflag.FlagSet) (SnapshotConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return SnapshotConfig{}, err
	}

	v.SetDefault("out", "./data/snapshot.jsonl")
	v.SetDefault("sort-by", "age")
	v.SetDefault("max-records", 100)
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")

	cfg := SnapshotConfig{
		UpstreamURL:  v.GetString("upstream"),
		Out:          v.GetString("out"),
		SortBy:       v.GetString("sort-by"),
		Search:       v.GetString("search"),
		MaxRecords:   v.GetInt("max-records"),
		MinHolders:   v.GetInt("min-holders"),
		MinLiquidity: v.GetFloat64("min-liquidity"),
		WithHistory:  v.GetBool("with-history"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		LogLevel:     v.GetString("log-level"),
	}

	return cfg, nil
}

// FilterState lays the snapshot overrides over the default view
// configuration.
func (c SnapshotConfig) FilterState() model.FilterState {
	filters := model.DefaultFilterState()
	filters.SortBy = c.SortBy
	filters.SearchQuery = c.Search
	filters.MaxRecords = c.MaxRecords
	filters.MinHolders = c.MinHolders
	filters.MinLiquidity = c.MinLiquidity
	return filters
}
