package firestore

import (
	"context"
	"fmt"

	"github.com/Heethjain14/loan-management-system/internal/pkg/config"
	"github.com/Heethjain14/loan-management-system/internal/pkg/logger"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"go.uber.org/zap"
)

type FirestoreClient struct {
	Client *firestore.Client
}

// ConnectToFirestore opens a client for cfg's project and database. When
// FIRESTORE_EMULATOR_HOST is set the library talks to the emulator unauthenticated.
func ConnectToFirestore(ctx context.Context, cfg config.FirestoreConfig, opts ...option.ClientOption) (*FirestoreClient, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("firestore project id is required")
	}
	databaseID := cfg.DatabaseID
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, cfg.ProjectID, databaseID, opts...)
	if err != nil {
		logger.CtxError(ctx, "Failed to create Firestore client", err, zap.String("project", cfg.ProjectID))
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	logger.CtxInfo(ctx, "Connected to Firestore",
		zap.String("project", cfg.ProjectID),
		zap.String("database", databaseID),
	)
	return &FirestoreClient{Client: client}, nil
}

func (f *FirestoreClient) Close(ctx context.Context) error {
	if f == nil || f.Client == nil {
		return nil
	}
	if err := f.Client.Close(); err != nil {
		logger.CtxError(ctx, "Failed to close Firestore client", err)
		return err
	}
	return nil
}
