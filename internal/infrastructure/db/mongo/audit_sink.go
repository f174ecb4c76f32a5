package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/universeos/dashboard/internal/core/ports"
)

const collectionLayoutEvents = "layout_events"

// AuditSink appends layout audit events to a capped-growth collection.
type AuditSink struct {
	coll *mongo.Collection
}

func NewAuditSink(db *mongo.Database) *AuditSink {
	return &AuditSink{coll: db.Collection(collectionLayoutEvents)}
}

func (s *AuditSink) Record(ctx context.Context, event ports.LayoutEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.coll.InsertOne(ctx, event)
	return err
}
