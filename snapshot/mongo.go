package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoDocumentID = "ledger"

// MongoStore keeps the snapshot as a single document in a MongoDB collection.
// The payload is stored as JSON so decimal amounts keep their exact text form.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

type mongoDocument struct {
	ID        string    `bson:"_id"`
	Version   int       `bson:"version"`
	UpdatedAt time.Time `bson:"updated_at"`
	Payload   string    `bson:"payload"`
}

// ConnectMongo opens a client against uri and returns a store bound to database.collection.
func ConnectMongo(ctx context.Context, uri, database, collection string, timeout time.Duration) (*MongoStore, error) {
	opts := options.Client().ApplyURI(uri).SetTimeout(timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

func (s *MongoStore) Load(ctx context.Context) (Snapshot, error) {
	var doc mongoDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": mongoDocumentID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Snapshot{}, fmt.Errorf("find %s: %w", mongoDocumentID, ErrNotFound)
		}
		return Snapshot{}, fmt.Errorf("find %s: %w", mongoDocumentID, err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(doc.Payload), &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode %s: %w: %v", mongoDocumentID, ErrCorrupt, err)
	}
	return snap, nil
}

func (s *MongoStore) Save(ctx context.Context, snap Snapshot) error {
	snap.Meta.Storage = "mongo"
	snap.Meta.Version = Version
	snap.Meta.Timestamp = time.Now()

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	doc := mongoDocument{
		ID:        mongoDocumentID,
		Version:   Version,
		UpdatedAt: snap.Meta.Timestamp,
		Payload:   string(payload),
	}
	_, err = s.collection.ReplaceOne(ctx, bson.M{"_id": mongoDocumentID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace %s: %w", mongoDocumentID, err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
