package applications

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

type ApplicationsRepository struct {
	repo interfaces.ApplicationsStoreInterface
}

func NewApplicationsRepository(client *mongodb.MongoClient) *ApplicationsRepository {
	collection := client.Database.Collection(consts.ApplicationsCollection)
	repo := repository.NewMongoRepository[models.Application](collection)
	return &ApplicationsRepository{repo: repo}
}

func NewApplicationsRepositoryWithInterface(repo interfaces.ApplicationsStoreInterface) *ApplicationsRepository {
	return &ApplicationsRepository{repo: repo}
}

func (ar *ApplicationsRepository) Create(ctx context.Context, app *models.Application) error {
	if err := ar.repo.Create(ctx, app); err != nil {
		if repository.IsDuplicateKey(err) {
			return store.ErrAlreadyExists
		}
		logger.CtxError(ctx, log_messages.ApplicationInsertFailed, err, zap.String("applicationId", app.ID))
		return err
	}
	return nil
}

func (ar *ApplicationsRepository) GetByID(ctx context.Context, id string) (*models.Application, error) {
	app, err := ar.repo.FindOne(ctx, bson.M{"_id": id}, nil)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			logger.CtxWarn(ctx, log_messages.ApplicationNotFound, zap.String("applicationId", id))
			return nil, store.ErrNotFound
		}
		logger.CtxError(ctx, log_messages.ApplicationFetchFailed, err, zap.String("applicationId", id))
		return nil, err
	}
	return &app, nil
}

// List returns every application ordered by snNo.
func (ar *ApplicationsRepository) List(ctx context.Context) ([]models.Application, error) {
	return ar.repo.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "snNo", Value: 1}}))
}

func (ar *ApplicationsRepository) Update(ctx context.Context, app *models.Application) error {
	matched, err := ar.repo.Replace(ctx, bson.M{"_id": app.ID}, app)
	if err != nil {
		return err
	}
	if matched == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ReplaceIfStatus replaces the document only while its status equals from.
func (ar *ApplicationsRepository) ReplaceIfStatus(ctx context.Context, from models.ApplicationStatus, app *models.Application) (bool, error) {
	matched, err := ar.repo.Replace(ctx, bson.M{"_id": app.ID, "status": from}, app)
	if err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (ar *ApplicationsRepository) Delete(ctx context.Context, id string) error {
	deleted, err := ar.repo.Delete(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if deleted == 0 {
		return store.ErrNotFound
	}
	return nil
}

// MaxSnNo returns the highest snNo stored, or 0 for an empty collection.
func (ar *ApplicationsRepository) MaxSnNo(ctx context.Context) (int64, error) {
	app, err := ar.repo.FindOne(ctx, bson.M{}, options.FindOne().SetSort(bson.D{{Key: "snNo", Value: -1}}))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}
	return app.SnNo, nil
}
