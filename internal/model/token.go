package model

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// RiskLevel classifies a token's contract safety.
type RiskLevel string

const (
	RiskSafe    RiskLevel = "safe"
	RiskWarning RiskLevel = "warning"
	RiskDanger  RiskLevel = "danger"
)

// SafetyOrdinal maps the risk level onto a sortable ordinal, danger lowest.
func (r RiskLevel) SafetyOrdinal() int {
	switch r {
	case RiskSafe:
		return 2
	case RiskWarning:
		return 1
	default:
		return 0
	}
}

// Token is one listing supplied by the upstream feed. The feed replaces the
// whole collection on every refresh; nothing here is mutated after decode.
type Token struct {
	Address     string    `json:"address"`
	Name        string    `json:"name"`
	Symbol      string    `json:"symbol"`
	AgeHours    float64   `json:"age_hours"`
	HolderCount int       `json:"holder_count"`
	Liquidity   float64   `json:"liquidity"`
	BuyTax      float64   `json:"buy_tax"`
	SellTax     float64   `json:"sell_tax"`
	IsHoneypot  bool      `json:"is_honeypot"`
	Risk        RiskLevel `json:"risk"`
	Owner       string    `json:"owner"`
	LockInfo    string    `json:"lock_info"`
}

var zeroAddress = common.Address{}

// IsRenounced reports whether ownership sits at the canonical zero address.
// A missing or malformed owner field does not count as renounced.
func (t Token) IsRenounced() bool {
	if !common.IsHexAddress(t.Owner) {
		return false
	}
	return common.HexToAddress(t.Owner) == zeroAddress
}

// NormalizeAddress maps the textual forms of one address onto a single key.
func NormalizeAddress(addr string) string {
	if common.IsHexAddress(addr) {
		return strings.ToLower(common.HexToAddress(addr).Hex())
	}
	return strings.ToLower(strings.TrimSpace(addr))
}

// Key returns the normalized identity used for maps and caches.
func (t Token) Key() string {
	return NormalizeAddress(t.Address)
}

// MatchesQuery reports a case-insensitive substring match against the
// token's name, symbol, or address.
func (t Token) MatchesQuery(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Name), q) ||
		strings.Contains(strings.ToLower(t.Symbol), q) ||
		strings.Contains(strings.ToLower(t.Address), q)
}
