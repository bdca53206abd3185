package ports

import (
	"context"

	"github.com/citylibrary/library-service/internal/core/domain"
)

// AuditRepository persists the append-only action trail.
type AuditRepository interface {
	Insert(ctx context.Context, entry *domain.AuditEntry) error
	// ListRecent returns the newest entries first, capped at limit.
	ListRecent(ctx context.Context, limit int64) ([]*domain.AuditEntry, error)
}

// AuditRecorder is the fire-and-forget side consumed by services. Record must
// never block the caller on storage and never surfaces write failures.
type AuditRecorder interface {
	Record(userID int64, action, details string)
}
