package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/citylibrary/library-service/internal/core/domain"
)

const auditCollection = "action_log"

// AuditRepository implements ports.AuditRepository using MongoDB. The
// collection is append-only; entries are never updated or deleted.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type auditDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    int64              `bson:"user_id"`
	Action    string             `bson:"action"`
	Timestamp time.Time          `bson:"timestamp"`
	Details   string             `bson:"details,omitempty"`
}

func (r *AuditRepository) Insert(ctx context.Context, entry *domain.AuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := auditDoc{
		UserID:    entry.UserID,
		Action:    entry.Action,
		Timestamp: entry.Timestamp.UTC(),
		Details:   entry.Details,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListRecent returns the newest entries first, capped at limit.
func (r *AuditRepository) ListRecent(ctx context.Context, limit int64) ([]*domain.AuditEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []*domain.AuditEntry{}
	for cursor.Next(ctx) {
		var doc auditDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode audit entry: %w", err)
		}
		entries = append(entries, &domain.AuditEntry{
			ID:        doc.ID.Hex(),
			UserID:    doc.UserID,
			Action:    doc.Action,
			Timestamp: doc.Timestamp,
			Details:   doc.Details,
		})
	}
	return entries, cursor.Err()
}
