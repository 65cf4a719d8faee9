package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/detectkit/pkg/kvstore"
)

type entry struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Storage is a kvstore.Storage over a single collection.
type Storage struct {
	coll *mongo.Collection
}

// NewStorage returns a Storage keeping one document per key in coll.
func NewStorage(coll *mongo.Collection) *Storage {
	return &Storage{coll: coll}
}

func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	if err := kvstore.ValidateKey(key); err != nil {
		return "", false, err
	}
	var e entry
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: key}}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("mongo get %q: %w", key, err)
	}
	return e.Value, true, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	if err := kvstore.ValidateKey(key); err != nil {
		return err
	}
	_, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: key}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "value", Value: value},
			{Key: "updated_at", Value: time.Now().UTC()},
		}}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongo set %q: %w", key, err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	if err := kvstore.ValidateKey(key); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: key}}); err != nil {
		return fmt.Errorf("mongo delete %q: %w", key, err)
	}
	return nil
}

// Incr parses the stored decimal string, adds one and writes it back as a
// string in one pipeline update. A value that does not convert restarts the
// count from zero.
func (s *Storage) Incr(ctx context.Context, key string) (int64, error) {
	if err := kvstore.ValidateKey(key); err != nil {
		return 0, err
	}

	next := bson.D{{Key: "$add", Value: bson.A{
		bson.D{{Key: "$convert", Value: bson.D{
			{Key: "input", Value: bson.D{{Key: "$trim", Value: bson.D{{Key: "input", Value: "$value"}}}}},
			{Key: "to", Value: "long"},
			{Key: "onError", Value: int64(0)},
			{Key: "onNull", Value: int64(0)},
		}}},
		int64(1),
	}}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "value", Value: bson.D{{Key: "$toString", Value: next}}},
			{Key: "updated_at", Value: "$$NOW"},
		}}},
	}

	var e entry
	err := s.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: key}},
		update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&e)
	if err != nil {
		return 0, fmt.Errorf("mongo incr %q: %w", key, err)
	}
	return kvstore.ParseCounter(e.Value, true), nil
}
