package view

import (
	"sort"
	"strings"

	"tokenScope/internal/model"
)

// A lock descriptor must declare at least this share locked to pass the
// unlocked-liquidity filter.
const minLockedPercent = 90.0

// SortField selects the comparator used to order the derived list.
type SortField string

const (
	SortAge       SortField = "age"
	SortHolders   SortField = "holders"
	SortLiquidity SortField = "liquidity"
	SortSafety    SortField = "safetyScore"
)

// SortSpec is the parsed form of FilterState.SortBy.
type SortSpec struct {
	Field     SortField
	Ascending bool
}

// ParseSortSpec decodes a sort string such as "liquidity" or "holders_asc".
// The "_asc" suffix flips the default descending direction; an unrecognized
// field falls back to age.
func ParseSortSpec(sortBy string) SortSpec {
	raw := strings.TrimSpace(sortBy)
	spec := SortSpec{Field: SortAge}
	if strings.HasSuffix(raw, "_asc") {
		spec.Ascending = true
		raw = strings.TrimSuffix(raw, "_asc")
	}
	switch SortField(raw) {
	case SortHolders, SortLiquidity, SortSafety:
		spec.Field = SortField(raw)
	}
	return spec
}

// Apply derives the render sequence: filter, stable sort, then truncate to
// MaxRecords. The input is never mutated and the output is always a
// subsequence of it.
func Apply(tokens []model.Token, state model.FilterState) []model.Token {
	filtered := make([]model.Token, 0, len(tokens))
	for _, token := range tokens {
		if Matches(token, state) {
			filtered = append(filtered, token)
		}
	}

	sortTokens(filtered, ParseSortSpec(state.SortBy))

	if state.MaxRecords > 0 && len(filtered) > state.MaxRecords {
		filtered = filtered[:state.MaxRecords]
	}
	return filtered
}

// Matches runs the filter predicate chain. Tests apply in declaration order
// and the search-query test is the final verdict when reached, so rules
// would have to be added above it to take part for searched tokens.
func Matches(token model.Token, state model.FilterState) bool {
	if state.HideHoneypots && token.IsHoneypot {
		return false
	}
	if state.ShowOnlyHoneypots && !token.IsHoneypot {
		return false
	}
	if state.HideDanger && token.Risk == model.RiskDanger {
		return false
	}
	if state.HideWarning && token.Risk == model.RiskWarning {
		return false
	}
	if state.ShowOnlySafe && token.Risk != model.RiskSafe {
		return false
	}
	if state.HideNotRenounced && !token.IsRenounced() {
		return false
	}
	if state.HideUnlockedLiquidity && !hasLockedLiquidity(token) {
		return false
	}
	if state.MinHolders > 0 && token.HolderCount < state.MinHolders {
		return false
	}
	if state.MinLiquidity > 0 && token.Liquidity < state.MinLiquidity {
		return false
	}
	if query := strings.TrimSpace(state.SearchQuery); query != "" {
		return token.MatchesQuery(query)
	}
	return true
}

func hasLockedLiquidity(token model.Token) bool {
	percent, err := model.LockedPercent(token.LockInfo)
	if err != nil {
		return false
	}
	return percent >= minLockedPercent
}

func sortTokens(tokens []model.Token, spec SortSpec) {
	key := sortKey(spec.Field)
	sort.SliceStable(tokens, func(i, j int) bool {
		if spec.Ascending {
			return key(tokens[i]) < key(tokens[j])
		}
		return key(tokens[i]) > key(tokens[j])
	})
}

func sortKey(field SortField) func(model.Token) float64 {
	switch field {
	case SortHolders:
		return func(t model.Token) float64 { return float64(t.HolderCount) }
	case SortLiquidity:
		return func(t model.Token) float64 { return t.Liquidity }
	case SortSafety:
		return func(t model.Token) float64 { return float64(t.Risk.SafetyOrdinal()) }
	default:
		return func(t model.Token) float64 { return t.AgeHours }
	}
}
