// Package driver opens the LoanStore selected by config.
package driver

import (
	"context"
	"fmt"

	"github.com/Heethjain14/loan-management-system/internal/pkg/cleanup"
	"github.com/Heethjain14/loan-management-system/internal/pkg/config"
	firestoredb "github.com/Heethjain14/loan-management-system/internal/pkg/db/firestore"
	mongodb "github.com/Heethjain14/loan-management-system/internal/pkg/db/mongo"
	"github.com/Heethjain14/loan-management-system/internal/pkg/log_messages"
	"github.com/Heethjain14/loan-management-system/internal/pkg/logger"
	firestorestore "github.com/Heethjain14/loan-management-system/internal/pkg/store/firestore"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store/mongostore"
	"github.com/Heethjain14/loan-management-system/internal/service/interfaces"

	"go.uber.org/zap"
)

// OpenLoanStore connects to the configured document store. The returned
// resource closes the connection.
func OpenLoanStore(ctx context.Context, cfg *config.AppConfig) (interfaces.LoanStore, cleanup.Resource, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverFirestore:
		client, err := firestoredb.ConnectToFirestore(ctx, cfg.Firestore)
		if err != nil {
			logger.CtxError(ctx, log_messages.FailedConnectingFirestore, err)
			return nil, cleanup.Resource{}, err
		}
		return firestorestore.NewLoanStore(client.Client), cleanup.Resource{Name: "firestore", Close: client.Close}, nil

	case config.StoreDriverMongo:
		client, err := mongodb.ConnectToMongoDB(ctx, cfg.Mongo)
		if err != nil {
			logger.CtxError(ctx, log_messages.FailedConnectingMongo, err)
			return nil, cleanup.Resource{}, err
		}
		return mongostore.NewLoanStore(client), cleanup.Resource{Name: "mongo", Close: client.Close}, nil

	default:
		logger.CtxWarn(ctx, log_messages.UnknownStoreDriver, zap.String("driver", cfg.Store.Driver))
		return nil, cleanup.Resource{}, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
