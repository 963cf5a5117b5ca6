package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	participantserrors "eventrooms/internal/participants/errors"
	"eventrooms/pkg/config"
	mongotx "eventrooms/pkg/db/mongo"
	"eventrooms/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Participants"
)

type mongoParticipantRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

// ParticipantRepository persists participants. Email is unique among
// non-deleted participants; violations surface as ErrDuplicateEmail.
type ParticipantRepository interface {
	Create(ctx context.Context, participant *model.Participant) error
	FindByID(ctx context.Context, id string) (*model.Participant, error)
	FindByEmail(ctx context.Context, email string) (*model.Participant, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Participant, error)
	Update(ctx context.Context, id string, participant *model.Participant) error
	// Reserve bumps registration_version on a live participant. Registering
	// and deleting both call it so concurrent transactions conflict.
	Reserve(ctx context.Context, id string) error
	SoftDelete(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoParticipantRepository(cfg *config.Config) ParticipantRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoParticipantRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoParticipantRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if mongotx.InSession(ctx) {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoParticipantRepository) objectID(id string) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", participantserrors.ErrInvalidID, id)
	}
	return objectID, nil
}

func (r *mongoParticipantRepository) Create(ctx context.Context, participant *model.Participant) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	participant.CreatedAt = now
	participant.UpdatedAt = now
	participant.Deleted = false
	participant.RegistrationVersion = 0

	result, err := r.collection.InsertOne(ctx, participant)
	if err != nil {
		if mongotx.IsDuplicateKey(err) {
			return participantserrors.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		participant.ID = oid.Hex()
	}
	return nil
}

func (r *mongoParticipantRepository) FindByID(ctx context.Context, id string) (*model.Participant, error) {
	objectID, err := r.objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": objectID, "deleted": false})
}

func (r *mongoParticipantRepository) FindByEmail(ctx context.Context, email string) (*model.Participant, error) {
	return r.findOne(ctx, bson.M{"email": email, "deleted": false})
}

func (r *mongoParticipantRepository) findOne(ctx context.Context, filter bson.M) (*model.Participant, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var participant model.Participant
	err := r.collection.FindOne(ctx, filter).Decode(&participant)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, participantserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find participant: %w", err)
	}

	return &participant, nil
}

func (r *mongoParticipantRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Participant, error) {
	if len(ids) == 0 {
		return []*model.Participant{}, nil
	}

	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objectID, err := r.objectID(id)
		if err != nil {
			return nil, err
		}
		objectIDs = append(objectIDs, objectID)
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"_id": bson.M{"$in": objectIDs}, "deleted": false}
	opts := options.Find().SetSort(bson.D{{Key: "last_name", Value: 1}, {Key: "first_name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find participants: %w", err)
	}
	defer cursor.Close(ctx)

	participants := []*model.Participant{}
	if err = cursor.All(ctx, &participants); err != nil {
		return nil, fmt.Errorf("failed to decode participants: %w", err)
	}

	return participants, nil
}

func (r *mongoParticipantRepository) Update(ctx context.Context, id string, participant *model.Participant) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := r.objectID(id)
	if err != nil {
		return err
	}

	participant.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	filter := bson.M{"_id": objectID, "deleted": false}

	set := bson.M{
		"first_name": participant.FirstName,
		"last_name":  participant.LastName,
		"email":      participant.Email,
		"updated_at": participant.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if participant.Phone == "" {
		update["$unset"] = bson.M{"phone": ""}
	} else {
		set["phone"] = participant.Phone
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		if mongotx.IsDuplicateKey(err) {
			return participantserrors.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update participant: %w", err)
	}

	if result.MatchedCount == 0 {
		return participantserrors.ErrNotFound
	}

	return nil
}

func (r *mongoParticipantRepository) Reserve(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := r.objectID(id)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": objectID, "deleted": false}
	update := bson.M{"$inc": bson.M{"registration_version": 1}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reserve participant: %w", err)
	}

	if result.MatchedCount == 0 {
		return participantserrors.ErrNotFound
	}

	return nil
}

func (r *mongoParticipantRepository) SoftDelete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := r.objectID(id)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": objectID, "deleted": false}
	update := bson.M{
		"$set": bson.M{
			"deleted":    true,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}

	if result.MatchedCount == 0 {
		return participantserrors.ErrNotFound
	}

	return nil
}

func (r *mongoParticipantRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
