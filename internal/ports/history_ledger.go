package ports

import (
	"context"

	"github.com/bnema/community-accounts-cli/internal/domain"
)

// HistoryLedger is the append-only, day-partitioned audit log. Each append is
// atomic; records are never mutated after write.
type HistoryLedger interface {
	Record(ctx context.Context, record domain.HistoryRecord) error
	LoadToday(ctx context.Context) ([]domain.HistoryRecord, error)
	// LoadAll returns every stored day, most recent first.
	LoadAll(ctx context.Context) ([]domain.HistoryDay, error)
	ClearToday(ctx context.Context) error
	ClearAll(ctx context.Context) error
}
