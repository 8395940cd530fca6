package counters

import (
	"context"
	"errors"
	"fmt"

	"github.com/Heethjain14/loan-management-system/internal/pkg/consts"
	mongodb "github.com/Heethjain14/loan-management-system/internal/pkg/db/mongo"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store/models"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store/repository"
	"github.com/Heethjain14/loan-management-system/internal/service/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SeedFunc reports the highest number already in use for a counter.
type SeedFunc func(ctx context.Context) (int64, error)

type CountersRepository struct {
	repo interfaces.CountersStoreInterface
}

func NewCountersRepository(client *mongodb.MongoClient) *CountersRepository {
	collection := client.Database.Collection(consts.CountersCollection)
	repo := repository.NewMongoRepository[models.Counter](collection)
	return &CountersRepository{repo: repo}
}

func NewCountersRepositoryWithInterface(repo interfaces.CountersStoreInterface) *CountersRepository {
	return &CountersRepository{repo: repo}
}

// Next increments the named counter and returns the new value. A missing
// counter is first raised to seed's result with $max so concurrent seeders agree.
func (cr *CountersRepository) Next(ctx context.Context, name string, seed SeedFunc) (int64, error) {
	_, err := cr.repo.FindOne(ctx, bson.M{"_id": name}, nil)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		start, seedErr := seed(ctx)
		if seedErr != nil {
			return 0, fmt.Errorf("seed counter %s: %w", name, seedErr)
		}
		_, err = cr.repo.FindOneAndUpdate(ctx,
			bson.M{"_id": name},
			bson.M{"$max": bson.M{"value": start}},
			options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
		)
		if err != nil {
			return 0, fmt.Errorf("seed counter %s: %w", name, err)
		}
	case err != nil:
		return 0, err
	}

	counter, err := cr.repo.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"value": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)
	if err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", name, err)
	}
	return counter.Value, nil
}
