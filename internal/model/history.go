package model

// HistorySample is one time-stamped observation of a token's aggregate
// liquidity and holder count. Timestamps are unix milliseconds.
type HistorySample struct {
	Timestamp      int64   `json:"timestamp"`
	TotalLiquidity float64 `json:"total_liquidity"`
	HolderCount    int     `json:"holder_count"`
}

// HistoryRecord holds the samples fetched for one token, in arrival order,
// stamped with the retrieval time.
type HistoryRecord struct {
	Samples   []HistorySample `json:"samples"`
	FetchedAt int64           `json:"fetched_at"`
}

// HistoryBlob is the persisted form of the whole history cache.
type HistoryBlob struct {
	Timestamp int64                      `json:"timestamp"`
	Data      map[string][]HistorySample `json:"data"`
}
