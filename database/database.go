package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gramly/config"
)

// Mongo is the process-wide connection handle. It is constructed once in main
// and passed by reference to every handler; there are no package globals.
type Mongo struct {
	Client *mongo.Client
	Users  *mongo.Collection
	Posts  *mongo.Collection
}

func Connect(cfg *config.Config) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(cfg.MongoDB)
	m := &Mongo{
		Client: client,
		Users:  db.Collection("users"),
		Posts:  db.Collection("posts"),
	}

	log.Println("Connected to MongoDB successfully")
	return m, nil
}

// EnsureIndexes creates the unique email index. Registration relies on it to
// reject duplicates atomically instead of a find-then-insert check.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.Users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (m *Mongo) Disconnect() error {
	if m.Client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		return err
	}

	log.Println("Disconnected from MongoDB")
	return nil
}
