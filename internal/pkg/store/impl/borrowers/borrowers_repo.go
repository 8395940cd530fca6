package borrowers

import (
	"context"
	"errors"

	"github.com/Heethjain14/loan-management-system/internal/pkg/consts"
	mongodb "github.com/Heethjain14/loan-management-system/internal/pkg/db/mongo"
	"github.com/Heethjain14/loan-management-system/internal/pkg/log_messages"
	"github.com/Heethjain14/loan-management-system/internal/pkg/logger"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store/models"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store/repository"
	"github.com/Heethjain14/loan-management-system/internal/service/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type BorrowersRepository struct {
	repo interfaces.BorrowersStoreInterface
}

func NewBorrowersRepository(client *mongodb.MongoClient) *BorrowersRepository {
	collection := client.Database.Collection(consts.BorrowersCollection)
	repo := repository.NewMongoRepository[models.Borrower](collection)
	return &BorrowersRepository{repo: repo}
}

func NewBorrowersRepositoryWithInterface(repo interfaces.BorrowersStoreInterface) *BorrowersRepository {
	return &BorrowersRepository{repo: repo}
}

func (br *BorrowersRepository) Create(ctx context.Context, borrower *models.Borrower) error {
	if err := br.repo.Create(ctx, borrower); err != nil {
		if repository.IsDuplicateKey(err) {
			return store.ErrAlreadyExists
		}
		logger.CtxError(ctx, log_messages.BorrowerInsertFailed, err, zap.String("borrowerId", borrower.ID))
		return err
	}
	return nil
}

func (br *BorrowersRepository) GetByID(ctx context.Context, id string) (*models.Borrower, error) {
	borrower, err := br.repo.FindOne(ctx, bson.M{"_id": id}, nil)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			logger.CtxWarn(ctx, log_messages.BorrowerNotFound, zap.String("borrowerId", id))
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &borrower, nil
}

func (br *BorrowersRepository) List(ctx context.Context) ([]models.Borrower, error) {
	return br.repo.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "numericId", Value: 1}}))
}

func (br *BorrowersRepository) Delete(ctx context.Context, id string) error {
	deleted, err := br.repo.Delete(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if deleted == 0 {
		return store.ErrNotFound
	}
	return nil
}

// MaxNumericID returns the highest numericId stored, or 0 for an empty collection.
func (br *BorrowersRepository) MaxNumericID(ctx context.Context) (int64, error) {
	borrower, err := br.repo.FindOne(ctx, bson.M{}, options.FindOne().SetSort(bson.D{{Key: "numericId", Value: -1}}))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}
	return borrower.NumericID, nil
}
