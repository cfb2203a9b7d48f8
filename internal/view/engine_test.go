package view

import (
	"reflect"
	"testing"

	"tokenScope/internal/model"
)

func token(addr string, mutate func(*model.Token)) model.Token {
	t := model.Token{
		Address:     addr,
		Name:        "Token " + addr,
		Symbol:      "TK",
		Risk:        model.RiskSafe,
		Owner:       "0x1111111111111111111111111111111111111111",
		HolderCount: 100,
		Liquidity:   10000,
		AgeHours:    1,
	}
	if mutate != nil {
		mutate(&t)
	}
	return t
}

func addresses(tokens []model.Token) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t.Address)
	}
	return out
}

func TestApplyMinHoldersScenario(t *testing.T) {
	tokens := []model.Token{
		token("0xA000000000000000000000000000000000000001", func(t *model.Token) {
			t.HolderCount = 50
			t.Risk = model.RiskSafe
			t.AgeHours = 5
		}),
		token("0xB000000000000000000000000000000000000002", func(t *model.Token) {
			t.HolderCount = 5
			t.Risk = model.RiskDanger
			t.AgeHours = 2
		}),
	}

	state := model.DefaultFilterState()
	state.MinHolders = 10

	got := addresses(Apply(tokens, state))
	want := []string{"0xA000000000000000000000000000000000000001"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("filtered mismatch: %v != %v", got, want)
	}

	state.MinHolders = 0
	got = addresses(Apply(tokens, state))
	// Default sort is age descending.
	want = []string{
		"0xA000000000000000000000000000000000000001",
		"0xB000000000000000000000000000000000000002",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unfiltered mismatch: %v != %v", got, want)
	}
}

func TestApplyOutputIsSubsequence(t *testing.T) {
	tokens := []model.Token{
		token("0x0000000000000000000000000000000000000001", nil),
		token("0x0000000000000000000000000000000000000002", func(t *model.Token) { t.IsHoneypot = true }),
		token("0x0000000000000000000000000000000000000003", nil),
		token("0x0000000000000000000000000000000000000004", func(t *model.Token) { t.Risk = model.RiskDanger }),
	}

	state := model.DefaultFilterState()
	state.HideHoneypots = true
	state.HideDanger = true
	state.MaxRecords = 2
	state.SortBy = "not-a-field" // falls back to age descending

	got := Apply(tokens, state)
	if len(got) > state.MaxRecords {
		t.Fatalf("output longer than max records: %d", len(got))
	}

	seen := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		seen[tok.Address] = true
	}
	for _, tok := range got {
		if !seen[tok.Address] {
			t.Fatalf("fabricated entry %s", tok.Address)
		}
	}
}

func TestApplyIdempotent(t *testing.T) {
	tokens := []model.Token{
		token("0x0000000000000000000000000000000000000001", func(t *model.Token) { t.Liquidity = 5 }),
		token("0x0000000000000000000000000000000000000002", func(t *model.Token) { t.Liquidity = 50 }),
		token("0x0000000000000000000000000000000000000003", func(t *model.Token) { t.Liquidity = 500 }),
	}

	state := model.DefaultFilterState()
	state.SortBy = "liquidity"

	first := Apply(tokens, state)
	second := Apply(tokens, state)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated application diverged")
	}
}

func TestSearchQueryIsFinalVerdict(t *testing.T) {
	needle := token("0x0000000000000000000000000000000000000009", func(t *model.Token) {
		t.Name = "Moon Rocket"
		t.HolderCount = 1
		t.Liquidity = 1
	})

	state := model.DefaultFilterState()
	state.MinHolders = 1000
	state.MinLiquidity = 1_000_000
	state.SearchQuery = "moon"

	got := Apply([]model.Token{needle}, state)
	if len(got) != 1 {
		t.Fatalf("matching token should bypass threshold rules, got %d rows", len(got))
	}

	state.SearchQuery = "doge"
	if got := Apply([]model.Token{needle}, state); len(got) != 0 {
		t.Fatalf("non-matching token should be rejected")
	}
}

func TestSearchDoesNotOverrideEarlierRules(t *testing.T) {
	honeypot := token("0x0000000000000000000000000000000000000009", func(t *model.Token) {
		t.Name = "Moon Rocket"
		t.IsHoneypot = true
	})

	state := model.DefaultFilterState()
	state.HideHoneypots = true
	state.SearchQuery = "moon"

	if got := Apply([]model.Token{honeypot}, state); len(got) != 0 {
		t.Fatalf("honeypot rule runs before the search test")
	}
}

func TestContradictoryHoneypotTogglesYieldEmpty(t *testing.T) {
	tokens := []model.Token{
		token("0x0000000000000000000000000000000000000001", nil),
		token("0x0000000000000000000000000000000000000002", func(t *model.Token) { t.IsHoneypot = true }),
	}

	state := model.DefaultFilterState()
	state.HideHoneypots = true
	state.ShowOnlyHoneypots = true

	if got := Apply(tokens, state); len(got) != 0 {
		t.Fatalf("sequential predicates should reject everything, got %d", len(got))
	}
}

func TestRenouncedFilter(t *testing.T) {
	tokens := []model.Token{
		token("0x0000000000000000000000000000000000000001", func(t *model.Token) {
			t.Owner = "0x0000000000000000000000000000000000000000"
		}),
		token("0x0000000000000000000000000000000000000002", nil),
	}

	state := model.DefaultFilterState()
	state.HideNotRenounced = true

	got := addresses(Apply(tokens, state))
	want := []string{"0x0000000000000000000000000000000000000001"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("renounced filter mismatch: %v", got)
	}
}

func TestUnlockedLiquidityFilter(t *testing.T) {
	locked := token("0x0000000000000000000000000000000000000001", func(t *model.Token) {
		t.LockInfo = `[{"address":"0x1111111111111111111111111111111111111111","percent":95}]`
	})
	partial := token("0x0000000000000000000000000000000000000002", func(t *model.Token) {
		t.LockInfo = `[{"address":"0x1111111111111111111111111111111111111111","percent":40}]`
	})
	garbage := token("0x0000000000000000000000000000000000000003", func(t *model.Token) {
		t.LockInfo = "{broken"
	})

	state := model.DefaultFilterState()
	state.HideUnlockedLiquidity = true

	got := addresses(Apply([]model.Token{locked, partial, garbage}, state))
	want := []string{"0x0000000000000000000000000000000000000001"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("lock filter mismatch: %v", got)
	}
}

func TestSortSafetyScore(t *testing.T) {
	tokens := []model.Token{
		token("0x0000000000000000000000000000000000000001", func(t *model.Token) { t.Risk = model.RiskWarning }),
		token("0x0000000000000000000000000000000000000002", func(t *model.Token) { t.Risk = model.RiskSafe }),
		token("0x0000000000000000000000000000000000000003", func(t *model.Token) { t.Risk = model.RiskDanger }),
	}

	state := model.DefaultFilterState()
	state.SortBy = "safetyScore"

	got := addresses(Apply(tokens, state))
	want := []string{
		"0x0000000000000000000000000000000000000002",
		"0x0000000000000000000000000000000000000001",
		"0x0000000000000000000000000000000000000003",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("safety sort mismatch: %v", got)
	}

	state.SortBy = "safetyScore_asc"
	got = addresses(Apply(tokens, state))
	want = []string{
		"0x0000000000000000000000000000000000000003",
		"0x0000000000000000000000000000000000000001",
		"0x0000000000000000000000000000000000000002",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ascending safety sort mismatch: %v", got)
	}
}

func TestSortStableUnderTies(t *testing.T) {
	tokens := []model.Token{
		token("0x0000000000000000000000000000000000000001", func(t *model.Token) { t.Liquidity = 100 }),
		token("0x0000000000000000000000000000000000000002", func(t *model.Token) { t.Liquidity = 100 }),
		token("0x0000000000000000000000000000000000000003", func(t *model.Token) { t.Liquidity = 100 }),
	}

	state := model.DefaultFilterState()
	state.SortBy = "liquidity"

	got := addresses(Apply(tokens, state))
	want := addresses(tokens)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tied entries should keep input order: %v", got)
	}
}

func TestTruncationHappensAfterSort(t *testing.T) {
	tokens := []model.Token{
		token("0x0000000000000000000000000000000000000001", func(t *model.Token) { t.HolderCount = 10 }),
		token("0x0000000000000000000000000000000000000002", func(t *model.Token) { t.HolderCount = 30 }),
		token("0x0000000000000000000000000000000000000003", func(t *model.Token) { t.HolderCount = 20 }),
	}

	state := model.DefaultFilterState()
	state.SortBy = "holders"
	state.MaxRecords = 1

	got := addresses(Apply(tokens, state))
	want := []string{"0x0000000000000000000000000000000000000002"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("truncation should keep the sort winner: %v", got)
	}
}

func TestParseSortSpec(t *testing.T) {
	cases := map[string]SortSpec{
		"age":            {Field: SortAge},
		"holders":        {Field: SortHolders},
		"liquidity_asc":  {Field: SortLiquidity, Ascending: true},
		"safetyScore":    {Field: SortSafety},
		"":               {Field: SortAge},
		"bogus":          {Field: SortAge},
		"bogus_asc":      {Field: SortAge, Ascending: true},
		" holders_asc  ": {Field: SortHolders, Ascending: true},
	}

	for input, want := range cases {
		if got := ParseSortSpec(input); got != want {
			t.Fatalf("ParseSortSpec(%q) = %+v, want %+v", input, got, want)
		}
	}
}
