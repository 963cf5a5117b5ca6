package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	eventsrepo "eventrooms/internal/events/repository"
	"eventrooms/internal/migrations/mongo/validators"
	participantsrepo "eventrooms/internal/participants/repository"
	remindersrepo "eventrooms/internal/reminders/repository"
	roomsrepo "eventrooms/internal/rooms/repository"
	"eventrooms/pkg/logger"
)

var (
	RoomsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "deleted", Value: 1}, {Key: "name", Value: 1}}},
	}

	EventsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "room_id", Value: 1},
			{Key: "deleted", Value: 1},
			{Key: "start_time", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "deleted", Value: 1},
			{Key: "start_time", Value: 1},
			{Key: "end_time", Value: 1},
		}},
	}

	ParticipantsIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetName("email_unique_active").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"deleted": false}),
		},
	}

	RegistrationsIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "event_id", Value: 1}, {Key: "participant_id", Value: 1}},
			Options: options.Index().
				SetName("event_participant_unique").
				SetUnique(true),
		},
		{Keys: bson.D{{Key: "participant_id", Value: 1}}},
	}

	ReminderLeasesIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("expires_at_ttl").SetExpireAfterSeconds(0),
		},
	}
)

type CollectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func Collections() map[string]CollectionDef {
	return map[string]CollectionDef{
		roomsrepo.CollectionName: {
			Indexes:   RoomsIndexes,
			Validator: validators.RoomValidator,
		},
		eventsrepo.CollectionName: {
			Indexes:   EventsIndexes,
			Validator: validators.EventValidator,
		},
		participantsrepo.CollectionName: {
			Indexes:   ParticipantsIndexes,
			Validator: validators.ParticipantValidator,
		},
		eventsrepo.RegistrationCollectionName: {
			Indexes:   RegistrationsIndexes,
			Validator: validators.RegistrationValidator,
		},
		remindersrepo.LeaseCollectionName: {
			Indexes:   ReminderLeasesIndexes,
			Validator: validators.ReminderLeaseValidator,
		},
	}
}

// RunMigration creates every collection with its validator and indexes.
// It is safe to run repeatedly.
func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for name, def := range Collections() {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	log.Info("All migrations applied successfully", "database", db.Name())
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}

	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	names, err := db.Collection(name).Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "indexes", names)
	return nil
}
