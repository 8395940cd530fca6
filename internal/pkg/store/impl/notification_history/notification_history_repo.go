package notificationhistory

import (
	"context"

	"github.com/Heethjain14/loan-management-system/internal/pkg/consts"
	mongodb "github.com/Heethjain14/loan-management-system/internal/pkg/db/mongo"
	"github.com/Heethjain14/loan-management-system/internal/pkg/log_messages"
	"github.com/Heethjain14/loan-management-system/internal/pkg/logger"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store/models"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store/repository"
	"github.com/Heethjain14/loan-management-system/internal/service/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type NotificationHistoryRepository struct {
	repo interfaces.NotificationHistoryStoreInterface
}

func NewNotificationHistoryRepository(client *mongodb.MongoClient) *NotificationHistoryRepository {
	collection := client.Database.Collection(consts.NotificationHistoryCollection)
	repo := repository.NewMongoRepository[models.NotificationRecord](collection)
	return &NotificationHistoryRepository{repo: repo}
}

func NewNotificationHistoryRepositoryWithInterface(repo interfaces.NotificationHistoryStoreInterface) *NotificationHistoryRepository {
	return &NotificationHistoryRepository{repo: repo}
}

func (nr *NotificationHistoryRepository) Record(ctx context.Context, record *models.NotificationRecord) error {
	if err := nr.repo.Create(ctx, record); err != nil {
		logger.CtxError(ctx, log_messages.HistoryWriteErr, err,
			zap.String("type", record.Type), zap.String("messageId", record.MessageID))
		return err
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (nr *NotificationHistoryRepository) Recent(ctx context.Context, limit int64) ([]models.NotificationRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sentAt", Value: -1}}).SetLimit(limit)
	return nr.repo.Find(ctx, bson.M{}, opts)
}
