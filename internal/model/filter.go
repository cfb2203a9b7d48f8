package model

// FilterState is the persisted view configuration. It is mutated only
// through the session's filter update entry point, which also resets the
// derived state that depends on it.
type FilterState struct {
	MinHolders            int     `json:"min_holders"`
	MinLiquidity          float64 `json:"min_liquidity"`
	HideHoneypots         bool    `json:"hide_honeypots"`
	ShowOnlyHoneypots     bool    `json:"show_only_honeypots"`
	HideDanger            bool    `json:"hide_danger"`
	HideWarning           bool    `json:"hide_warning"`
	ShowOnlySafe          bool    `json:"show_only_safe"`
	HideNotRenounced      bool    `json:"hide_not_renounced"`
	HideUnlockedLiquidity bool    `json:"hide_unlocked_liquidity"`
	SearchQuery           string  `json:"search_query"`
	SortBy                string  `json:"sort_by"`
	MaxRecords            int     `json:"max_records"`

	// Stagnation parameters are part of the persisted schema but are not
	// consumed by the filter predicate.
	HideStagnantHolders   bool `json:"hide_stagnant_holders"`
	HideStagnantLiquidity bool `json:"hide_stagnant_liquidity"`
	StagnantRecordCount   int  `json:"stagnant_record_count"`
}

// DefaultFilterState returns the configuration used when nothing valid is
// persisted.
func DefaultFilterState() FilterState {
	return FilterState{
		SortBy:              "age",
		MaxRecords:          100,
		StagnantRecordCount: 10,
	}
}
