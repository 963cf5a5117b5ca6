package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	eventserrors "eventrooms/internal/events/errors"
	"eventrooms/pkg/config"
	mongotx "eventrooms/pkg/db/mongo"
	"eventrooms/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	RegistrationCollectionName = "Registrations"
)

// RegistrationRepository stores the event/participant join relation.
// The (event_id, participant_id) pair is unique at the index level.
type RegistrationRepository interface {
	Create(ctx context.Context, registration *model.Registration) error
	Exists(ctx context.Context, eventID, participantID string) (bool, error)
	FindParticipantIDs(ctx context.Context, eventID string) ([]string, error)
	FindEventIDs(ctx context.Context, participantID string) ([]string, error)
}

type mongoRegistrationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRegistrationRepository(cfg *config.Config) RegistrationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRegistrationRepository{
		cfg:        cfg,
		collection: db.Collection(RegistrationCollectionName),
	}
}

func (r *mongoRegistrationRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if mongotx.InSession(ctx) {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoRegistrationRepository) Create(ctx context.Context, registration *model.Registration) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	registration.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, registration)
	if err != nil {
		if mongotx.IsDuplicateKey(err) {
			return eventserrors.ErrAlreadyRegistered
		}
		return fmt.Errorf("failed to create registration: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		registration.ID = oid.Hex()
	}
	return nil
}

func (r *mongoRegistrationRepository) Exists(ctx context.Context, eventID, participantID string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"event_id": eventID, "participant_id": participantID}
	err := r.collection.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check registration: %w", err)
	}
	return true, nil
}

func (r *mongoRegistrationRepository) FindParticipantIDs(ctx context.Context, eventID string) ([]string, error) {
	return r.distinct(ctx, "participant_id", bson.M{"event_id": eventID})
}

func (r *mongoRegistrationRepository) FindEventIDs(ctx context.Context, participantID string) ([]string, error) {
	return r.distinct(ctx, "event_id", bson.M{"participant_id": participantID})
}

func (r *mongoRegistrationRepository) distinct(ctx context.Context, field string, filter bson.M) ([]string, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	values, err := r.collection.Distinct(ctx, field, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}

	ids := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			ids = append(ids, s)
		}
	}
	return ids, nil
}
