package storage

import (
	"context"

	"tokenScope/internal/model"
)

// Well-known settings keys shared by every session.
const (
	KeyFilters        = "filters"
	KeyTokenHistory   = "token_history"
	KeyDynamicScaling = "dynamic_scaling"
)

// Store persists small named settings blobs across restarts.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, data []byte) error
}

// RowSink is a sink for snapshot rows.
type RowSink interface {
	PutRows(rows []model.SnapshotRow) error
}
