// Package mongostore implements the loan store on MongoDB collections.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/Heethjain14/loan-management-system/internal/pkg/consts"
	mongodb "github.com/Heethjain14/loan-management-system/internal/pkg/db/mongo"
	"github.com/Heethjain14/loan-management-system/internal/pkg/log_messages"
	"github.com/Heethjain14/loan-management-system/internal/pkg/logger"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store/impl/applications"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store/impl/borrowers"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store/impl/counters"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store/impl/payments"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store/models"

	"go.uber.org/zap"
)

// LoanStore keeps payments in a flat collection keyed by borrowerId instead
// of a subcollection. Approval is a conditional replace followed by the
// borrower insert; without a replica set there is no multi-document transaction.
type LoanStore struct {
	applications *applications.ApplicationsRepository
	borrowers    *borrowers.BorrowersRepository
	payments     *payments.PaymentsRepository
	counters     *counters.CountersRepository
}

func NewLoanStore(client *mongodb.MongoClient) *LoanStore {
	return &LoanStore{
		applications: applications.NewApplicationsRepository(client),
		borrowers:    borrowers.NewBorrowersRepository(client),
		payments:     payments.NewPaymentsRepository(client),
		counters:     counters.NewCountersRepository(client),
	}
}

func (s *LoanStore) NextSequence(ctx context.Context, name string) (int64, error) {
	switch name {
	case consts.ApplicationCounter:
		return s.counters.Next(ctx, name, s.applications.MaxSnNo)
	case consts.BorrowerCounter:
		return s.counters.Next(ctx, name, s.borrowers.MaxNumericID)
	default:
		return 0, fmt.Errorf("unknown counter %q", name)
	}
}

func (s *LoanStore) CreateApplication(ctx context.Context, app *models.Application) error {
	return s.applications.Create(ctx, app)
}

func (s *LoanStore) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	return s.applications.GetByID(ctx, id)
}

func (s *LoanStore) ListApplications(ctx context.Context) ([]models.Application, error) {
	return s.applications.List(ctx)
}

func (s *LoanStore) UpdateApplication(ctx context.Context, app *models.Application) error {
	return s.applications.Update(ctx, app)
}

func (s *LoanStore) DeleteApplication(ctx context.Context, id string) error {
	return s.applications.Delete(ctx, id)
}

func (s *LoanStore) CommitTransition(
	ctx context.Context,
	from models.ApplicationStatus,
	app *models.Application,
	borrower *models.Borrower,
) error {
	ok, err := s.applications.ReplaceIfStatus(ctx, from, app)
	if err != nil {
		return err
	}
	if !ok {
		if _, err := s.applications.GetByID(ctx, app.ID); err != nil {
			return err
		}
		return store.ErrStatusChanged
	}
	if borrower == nil {
		return nil
	}
	if err := s.borrowers.Create(ctx, borrower); err != nil {
		// Put the application back so the approval can be retried.
		prior := *app
		prior.Status = from
		if _, rerr := s.applications.ReplaceIfStatus(ctx, app.Status, &prior); rerr != nil {
			logger.CtxError(ctx, log_messages.TransitionRevertFailed, rerr,
				zap.String("applicationId", app.ID), zap.String("status", string(from)))
		}
		return err
	}
	return nil
}

func (s *LoanStore) MoveApplication(ctx context.Context, fromID, toID string) (store.MoveOutcome, error) {
	source, err := s.applications.GetByID(ctx, fromID)
	if err != nil {
		return "", err
	}

	target, err := s.applications.GetByID(ctx, toID)
	switch {
	case err == nil:
		return s.resolveExisting(ctx, source, target)
	case !errors.Is(err, store.ErrNotFound):
		return "", err
	}

	moved := *source
	moved.ID = toID
	if err := s.applications.Create(ctx, &moved); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// lost a race with another writer; decide against what it wrote
			target, getErr := s.applications.GetByID(ctx, toID)
			if getErr != nil {
				return "", getErr
			}
			return s.resolveExisting(ctx, source, target)
		}
		return "", err
	}
	if err := s.applications.Delete(ctx, fromID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("delete old application %s: %w", fromID, err)
	}
	logger.CtxInfo(ctx, log_messages.ApplicationMigrated, zap.String("from", fromID), zap.String("to", toID))
	return store.MoveMoved, nil
}

func (s *LoanStore) resolveExisting(ctx context.Context, source, target *models.Application) (store.MoveOutcome, error) {
	if target.NumericID != source.NumericID {
		logger.CtxWarn(ctx, log_messages.ApplicationMigrateSkip,
			zap.String("from", source.ID), zap.String("to", target.ID), zap.Int64("targetNumericId", target.NumericID))
		return store.MoveSkipped, nil
	}
	if err := s.applications.Delete(ctx, source.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", err
	}
	return store.MoveDuplicateDeleted, nil
}

func (s *LoanStore) ListBorrowers(ctx context.Context) ([]models.Borrower, error) {
	return s.borrowers.List(ctx)
}

func (s *LoanStore) GetBorrower(ctx context.Context, id string) (*models.Borrower, error) {
	return s.borrowers.GetByID(ctx, id)
}

// DeleteBorrower removes the borrower and then its payments.
func (s *LoanStore) DeleteBorrower(ctx context.Context, id string) error {
	if err := s.borrowers.Delete(ctx, id); err != nil {
		return err
	}
	if _, err := s.payments.DeleteByBorrower(ctx, id); err != nil {
		return fmt.Errorf("delete payments of borrower %s: %w", id, err)
	}
	return nil
}

func (s *LoanStore) AddPayment(ctx context.Context, borrowerID string, payment *models.Payment) error {
	if _, err := s.borrowers.GetByID(ctx, borrowerID); err != nil {
		return err
	}
	payment.BorrowerID = borrowerID
	return s.payments.Create(ctx, payment)
}

func (s *LoanStore) ListPayments(ctx context.Context, borrowerID string) ([]models.Payment, error) {
	if _, err := s.borrowers.GetByID(ctx, borrowerID); err != nil {
		return nil, err
	}
	return s.payments.ListByBorrower(ctx, borrowerID)
}

func (s *LoanStore) DeletePayment(ctx context.Context, borrowerID, paymentID string) error {
	return s.payments.Delete(ctx, borrowerID, paymentID)
}
