package payments

import (
	"context"

	"github.com/Heethjain14/loan-management-system/internal/pkg/consts"
	mongodb "github.com/Heethjain14/loan-management-system/internal/pkg/db/mongo"
	"github.com/Heethjain14/loan-management-system/internal/pkg/log_messages"
	"github.com/Heethjain14/loan-management-system/internal/pkg/logger"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store/models"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store/repository"
	"github.com/Heethjain14/loan-management-system/internal/service/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// PaymentsRepository keeps payments in one collection keyed by borrowerId.
type PaymentsRepository struct {
	repo interfaces.PaymentsStoreInterface
}

func NewPaymentsRepository(client *mongodb.MongoClient) *PaymentsRepository {
	collection := client.Database.Collection(consts.PaymentsCollection)
	repo := repository.NewMongoRepository[models.Payment](collection)
	return &PaymentsRepository{repo: repo}
}

func NewPaymentsRepositoryWithInterface(repo interfaces.PaymentsStoreInterface) *PaymentsRepository {
	return &PaymentsRepository{repo: repo}
}

func (pr *PaymentsRepository) Create(ctx context.Context, payment *models.Payment) error {
	if err := pr.repo.Create(ctx, payment); err != nil {
		logger.CtxError(ctx, log_messages.PaymentInsertFailed, err, zap.String("borrowerId", payment.BorrowerID))
		return err
	}
	return nil
}

// ListByBorrower returns a borrower's payments by date, oldest first.
func (pr *PaymentsRepository) ListByBorrower(ctx context.Context, borrowerID string) ([]models.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "createdAt", Value: 1}})
	return pr.repo.Find(ctx, bson.M{"borrowerId": borrowerID}, opts)
}

func (pr *PaymentsRepository) Delete(ctx context.Context, borrowerID, paymentID string) error {
	deleted, err := pr.repo.Delete(ctx, bson.M{"_id": paymentID, "borrowerId": borrowerID})
	if err != nil {
		return err
	}
	if deleted == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (pr *PaymentsRepository) DeleteByBorrower(ctx context.Context, borrowerID string) (int64, error) {
	return pr.repo.DeleteMany(ctx, bson.M{"borrowerId": borrowerID})
}
