package model

import (
	"encoding/json"
	"fmt"
)

// LockRecord is one holder entry inside a token's serialized lock descriptor.
type LockRecord struct {
	Address    string  `json:"address"`
	Percent    float64 `json:"percent"`
	UnlockDate int64   `json:"unlock_date"`
}

// ParseLockRecords decodes the serialized holder-lock records carried in
// Token.LockInfo.
func ParseLockRecords(raw string) ([]LockRecord, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty lock descriptor")
	}
	var records []LockRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("parse lock descriptor: %w", err)
	}
	return records, nil
}

// LockedPercent sums the locked share declared by a lock descriptor.
func LockedPercent(raw string) (float64, error) {
	records, err := ParseLockRecords(raw)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, record := range records {
		total += record.Percent
	}
	return total, nil
}
