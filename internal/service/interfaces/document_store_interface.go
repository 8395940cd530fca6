package interfaces

import (
	"context"

	"github.com/Heethjain14/loan-management-system/internal/pkg/store/models"

	"go.mongodb.org/mongo-driver/mongo/options"
)

// DocumentStoreInterface is implemented by repository.MongoRepository.
type DocumentStoreInterface[T any] interface {
	Create(ctx context.Context, document *T) error
	FindOne(ctx context.Context, filter interface{}, opt *options.FindOneOptions) (T, error)
	Find(ctx context.Context, filter interface{}, opt *options.FindOptions) ([]T, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (int64, error)
	Replace(ctx context.Context, filter interface{}, document *T) (int64, error)
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts *options.FindOneAndUpdateOptions) (T, error)
	Delete(ctx context.Context, filter interface{}) (int64, error)
	DeleteMany(ctx context.Context, filter interface{}) (int64, error)
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
}

type ApplicationsStoreInterface interface {
	DocumentStoreInterface[models.Application]
}

type BorrowersStoreInterface interface {
	DocumentStoreInterface[models.Borrower]
}

type PaymentsStoreInterface interface {
	DocumentStoreInterface[models.Payment]
}

type CountersStoreInterface interface {
	DocumentStoreInterface[models.Counter]
}

type NotificationHistoryStoreInterface interface {
	DocumentStoreInterface[models.NotificationRecord]
}
