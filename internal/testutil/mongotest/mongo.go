// Package mongotest connects repository tests to a real MongoDB. Tests are
// skipped unless TEST_MONGO_URI is set.
package mongotest

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	mongoMigration "eventrooms/internal/migrations/mongo"
	"eventrooms/pkg/client"
	"eventrooms/pkg/config"
	"eventrooms/pkg/logger"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	EnvTestMongoURI   = "TEST_MONGO_URI"
	ConnectionTimeout = 10 * time.Second
)

// Setup connects to TEST_MONGO_URI, migrates a fresh database and returns a
// config the mongo repositories accept. The database is dropped when the
// test finishes.
func Setup(t *testing.T) *config.Config {
	t.Helper()

	mongoURI := os.Getenv(EnvTestMongoURI)
	if mongoURI == "" {
		t.Skipf("%s not set, skipping MongoDB test", EnvTestMongoURI)
	}

	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		t.Fatalf("failed to ping MongoDB: %v", err)
	}

	log := logger.Nop()
	dbName := fmt.Sprintf("eventrooms_test_%s", uuid.NewString()[:8])
	db := mongoClient.Database(dbName)

	if err := mongoMigration.RunMigration(ctx, db, log); err != nil {
		t.Fatalf("failed to migrate %s: %v", dbName, err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("warning: failed to drop %s: %v", dbName, err)
		}
		if err := mongoClient.Disconnect(ctx); err != nil {
			t.Logf("warning: failed to disconnect from MongoDB: %v", err)
		}
	})

	return &config.Config{
		MongoURI:          mongoURI,
		MongoDatabaseName: dbName,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		Location:          time.UTC,
		Log:               log,
		Client:            &client.Client{Mongo: mongoClient},
	}
}
