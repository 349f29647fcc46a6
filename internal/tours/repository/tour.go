package repository

import (
	"context"
	"errors"
	"fmt"
	"time"
	tourserrors "tourbook/internal/tours/errors"
	"tourbook/pkg/config"
	"tourbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Tours"
)

type TourRepository interface {
	Create(ctx context.Context, tour *model.Tour) error
	FindByID(ctx context.Context, id string) (*model.Tour, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Tour, error)
	Count(ctx context.Context) (int64, error)
	// UpdateVersioned persists the tour only if the stored version matches
	// tour.Version; on success the stored version is incremented. Returns
	// ErrVersionConflict when another writer got there first.
	UpdateVersioned(ctx context.Context, tour *model.Tour) error
	Delete(ctx context.Context, id string) error
}

type mongoTourRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

func NewMongoTourRepository(cfg *config.Config) TourRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTourRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

// withTimeout wraps the context with a timeout unless already inside a
// transaction; a SessionContext cannot be wrapped without breaking
// transaction semantics.
func (r *mongoTourRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			return context.WithTimeout(ctx, remaining)
		}
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoTourRepository) Create(ctx context.Context, tour *model.Tour) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	tour.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	tour.Version = 1

	result, err := r.collection.InsertOne(ctx, tour)
	if err != nil {
		return fmt.Errorf("failed to create tour: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		tour.ID = oid.Hex()
	}
	return nil
}

func (r *mongoTourRepository) FindByID(ctx context.Context, id string) (*model.Tour, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", tourserrors.ErrInvalidID, id)
	}

	var tour model.Tour
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&tour)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, tourserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find tour: %w", err)
	}

	return &tour, nil
}

func (r *mongoTourRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Tour, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_date", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find tours: %w", err)
	}
	defer cursor.Close(ctx)

	var tours []*model.Tour
	if err = cursor.All(ctx, &tours); err != nil {
		return nil, fmt.Errorf("failed to decode tours: %w", err)
	}

	return tours, nil
}

func (r *mongoTourRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count tours: %w", err)
	}

	return count, nil
}

func (r *mongoTourRepository) UpdateVersioned(ctx context.Context, tour *model.Tour) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(tour.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", tourserrors.ErrInvalidID, tour.ID)
	}

	filter := bson.M{"_id": objectID, "version": tour.Version}
	update := bson.M{
		"$set": bson.M{
			"name":                 tour.Name,
			"description":          tour.Description,
			"start_date":           tour.StartDate,
			"max_participants":     tour.MaxParticipants,
			"current_participants": tour.CurrentParticipants,
			"prices":               tour.Prices,
			"status":               tour.Status,
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update tour: %w", err)
	}

	if result.MatchedCount == 0 {
		// Either the document is gone or the version moved on.
		count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": objectID})
		if countErr == nil && count == 0 {
			return tourserrors.ErrNotFound
		}
		return tourserrors.ErrVersionConflict
	}

	tour.Version++
	return nil
}

func (r *mongoTourRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", tourserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete tour: %w", err)
	}

	if result.DeletedCount == 0 {
		return tourserrors.ErrNotFound
	}

	return nil
}
