package repository

import (
	"context"
	"fmt"
	"time"
	reserrors "tourbook/internal/reservations/errors"
	"tourbook/pkg/config"
	"tourbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	SlotLockCollectionName = "SlotLocks"
)

// SlotLockRepository backs the advisory locks taken around a reservation's
// check-then-commit section. Lock identity is the lock key itself (the _id),
// so acquisition is a single unique-key insert: it either wins or collides.
// A TTL index on expires_at reaps locks from crashed requests.
type SlotLockRepository interface {
	// Acquire inserts the lock, returning ErrLockHeld when a live lock with
	// the same key already exists.
	Acquire(ctx context.Context, key string, ttl time.Duration) error
	Release(ctx context.Context, key string) error
	EnsureIndexes(ctx context.Context) error
}

type mongoSlotLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSlotLockRepository(cfg *config.Config) SlotLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotLockRepository{
		cfg:        cfg,
		collection: db.Collection(SlotLockCollectionName),
	}
}

func (r *mongoSlotLockRepository) Acquire(ctx context.Context, key string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	lock := model.SlotLock{
		ID:        key,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// The TTL reaper runs on a coarse schedule; treat a lock past
			// its expiry as free and take it over.
			res := r.collection.FindOneAndReplace(ctx,
				bson.M{"_id": key, "expires_at": bson.M{"$lt": now}},
				lock,
			)
			if res.Err() == nil {
				return nil
			}
			return reserrors.ErrLockHeld
		}
		return fmt.Errorf("failed to acquire slot lock: %w", err)
	}

	return nil
}

func (r *mongoSlotLockRepository) Release(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return fmt.Errorf("failed to release slot lock: %w", err)
	}

	return nil
}

func (r *mongoSlotLockRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("failed to create slot lock TTL index: %w", err)
	}

	return nil
}
