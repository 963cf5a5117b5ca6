package repository

import (
	"context"
	"fmt"
	"time"

	"eventrooms/pkg/config"
	mongotx "eventrooms/pkg/db/mongo"
	"eventrooms/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	LeaseCollectionName = "Reminder_leases"
)

// LeaseRepository hands out one lease per reminder window. Expired leases are
// removed by the TTL index on expires_at.
type LeaseRepository interface {
	// Acquire inserts lease and reports false if another owner already holds
	// its key.
	Acquire(ctx context.Context, lease *model.ReminderLease) (bool, error)
	Release(ctx context.Context, id, owner string) error
}

type mongoLeaseRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoLeaseRepository(cfg *config.Config) LeaseRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoLeaseRepository{
		cfg:        cfg,
		collection: db.Collection(LeaseCollectionName),
	}
}

func (r *mongoLeaseRepository) Acquire(ctx context.Context, lease *model.ReminderLease) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	lease.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := r.collection.InsertOne(ctx, lease); err != nil {
		if mongotx.IsDuplicateKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to acquire reminder lease: %w", err)
	}
	return true, nil
}

// Release drops the lease only if owner still holds it.
func (r *mongoLeaseRepository) Release(ctx context.Context, id, owner string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "owner": owner}); err != nil {
		return fmt.Errorf("failed to release reminder lease: %w", err)
	}
	return nil
}
