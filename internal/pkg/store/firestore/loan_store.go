// Package firestore implements the loan store on Cloud Firestore:
// applications, borrowers, borrowers/{id}/payments and counters.
package firestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/Heethjain14/loan-management-system/internal/pkg/consts"
	"github.com/Heethjain14/loan-management-system/internal/pkg/log_messages"
	"github.com/Heethjain14/loan-management-system/internal/pkg/logger"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store/models"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type LoanStore struct {
	client *firestore.Client
}

func NewLoanStore(client *firestore.Client) *LoanStore {
	return &LoanStore{client: client}
}

func (s *LoanStore) applications() *firestore.CollectionRef {
	return s.client.Collection(consts.ApplicationsCollection)
}

func (s *LoanStore) borrowers() *firestore.CollectionRef {
	return s.client.Collection(consts.BorrowersCollection)
}

func (s *LoanStore) payments(borrowerID string) *firestore.CollectionRef {
	return s.borrowers().Doc(borrowerID).Collection(consts.PaymentsCollection)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func mapError(err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return store.ErrNotFound
	case codes.AlreadyExists:
		return store.ErrAlreadyExists
	}
	return err
}

// NextSequence bumps counters/{name} inside a transaction. A missing counter
// starts from the highest snNo or numericId already stored.
func (s *LoanStore) NextSequence(ctx context.Context, name string) (int64, error) {
	var source *firestore.CollectionRef
	var field string
	switch name {
	case consts.ApplicationCounter:
		source, field = s.applications(), "snNo"
	case consts.BorrowerCounter:
		source, field = s.borrowers(), "numericId"
	default:
		return 0, fmt.Errorf("unknown counter %q", name)
	}

	ref := s.client.Collection(consts.CountersCollection).Doc(name)
	var next int64
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var current int64
		snap, err := tx.Get(ref)
		switch {
		case isNotFound(err):
			current, err = maxField(tx, source, field)
			if err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			var counter models.Counter
			if err := snap.DataTo(&counter); err != nil {
				return err
			}
			current = counter.Value
		}
		next = current + 1
		return tx.Set(ref, models.Counter{Value: next})
	})
	if err != nil {
		return 0, fmt.Errorf("next %s sequence: %w", name, err)
	}
	return next, nil
}

func maxField(tx *firestore.Transaction, coll *firestore.CollectionRef, field string) (int64, error) {
	iter := tx.Documents(coll.OrderBy(field, firestore.Desc).Limit(1))
	defer iter.Stop()
	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	v, err := snap.DataAt(field)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	}
	return 0, fmt.Errorf("field %s has unexpected type %T", field, v)
}

func (s *LoanStore) CreateApplication(ctx context.Context, app *models.Application) error {
	if _, err := s.applications().Doc(app.ID).Create(ctx, app); err != nil {
		return mapError(err)
	}
	return nil
}

func decodeApplication(snap *firestore.DocumentSnapshot) (*models.Application, error) {
	var app models.Application
	if err := snap.DataTo(&app); err != nil {
		return nil, fmt.Errorf("decode application %s: %w", snap.Ref.ID, err)
	}
	app.ID = snap.Ref.ID
	return &app, nil
}

func decodeBorrower(snap *firestore.DocumentSnapshot) (*models.Borrower, error) {
	var borrower models.Borrower
	if err := snap.DataTo(&borrower); err != nil {
		return nil, fmt.Errorf("decode borrower %s: %w", snap.Ref.ID, err)
	}
	borrower.ID = snap.Ref.ID
	return &borrower, nil
}

func (s *LoanStore) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	snap, err := s.applications().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			logger.CtxWarn(ctx, log_messages.ApplicationNotFound, zap.String("applicationId", id))
		}
		return nil, mapError(err)
	}
	return decodeApplication(snap)
}

func (s *LoanStore) ListApplications(ctx context.Context) ([]models.Application, error) {
	iter := s.applications().OrderBy("snNo", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	apps := make([]models.Application, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return apps, nil
		}
		if err != nil {
			return nil, err
		}
		app, err := decodeApplication(snap)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *app)
	}
}

func (s *LoanStore) UpdateApplication(ctx context.Context, app *models.Application) error {
	ref := s.applications().Doc(app.ID)
	return mapError(s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		return tx.Set(ref, app)
	}))
}

func (s *LoanStore) DeleteApplication(ctx context.Context, id string) error {
	_, err := s.applications().Doc(id).Delete(ctx, firestore.Exists)
	return mapError(err)
}

func (s *LoanStore) CommitTransition(
	ctx context.Context,
	from models.ApplicationStatus,
	app *models.Application,
	borrower *models.Borrower,
) error {
	appRef := s.applications().Doc(app.ID)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(appRef)
		if err != nil {
			return err
		}
		current, err := decodeApplication(snap)
		if err != nil {
			return err
		}
		if current.Status != from {
			return store.ErrStatusChanged
		}
		if err := tx.Set(appRef, app); err != nil {
			return err
		}
		if borrower != nil {
			return tx.Create(s.borrowers().Doc(borrower.ID), borrower)
		}
		return nil
	})
	return mapError(err)
}

// MoveApplication copies the document to toID and deletes fromID in one
// transaction. An occupied target with the same numericId is a duplicate
// and only the source is deleted; any other occupant is left alone.
func (s *LoanStore) MoveApplication(ctx context.Context, fromID, toID string) (store.MoveOutcome, error) {
	fromRef := s.applications().Doc(fromID)
	toRef := s.applications().Doc(toID)

	var outcome store.MoveOutcome
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		outcome = ""
		fromSnap, err := tx.Get(fromRef)
		if err != nil {
			return err
		}
		source, err := decodeApplication(fromSnap)
		if err != nil {
			return err
		}

		toSnap, err := tx.Get(toRef)
		switch {
		case isNotFound(err):
			if err := tx.Create(toRef, source); err != nil {
				return err
			}
			outcome = store.MoveMoved
			return tx.Delete(fromRef)
		case err != nil:
			return err
		}

		target, err := decodeApplication(toSnap)
		if err != nil {
			return err
		}
		if target.NumericID != source.NumericID {
			outcome = store.MoveSkipped
			return nil
		}
		outcome = store.MoveDuplicateDeleted
		return tx.Delete(fromRef)
	})
	if err != nil {
		return "", mapError(err)
	}

	switch outcome {
	case store.MoveSkipped:
		logger.CtxWarn(ctx, log_messages.ApplicationMigrateSkip, zap.String("from", fromID), zap.String("to", toID))
	default:
		logger.CtxInfo(ctx, log_messages.ApplicationMigrated,
			zap.String("from", fromID), zap.String("to", toID), zap.String("outcome", string(outcome)))
	}
	return outcome, nil
}

func (s *LoanStore) ListBorrowers(ctx context.Context) ([]models.Borrower, error) {
	iter := s.borrowers().OrderBy("numericId", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	borrowers := make([]models.Borrower, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return borrowers, nil
		}
		if err != nil {
			return nil, err
		}
		borrower, err := decodeBorrower(snap)
		if err != nil {
			return nil, err
		}
		borrowers = append(borrowers, *borrower)
	}
}

func (s *LoanStore) GetBorrower(ctx context.Context, id string) (*models.Borrower, error) {
	snap, err := s.borrowers().Doc(id).Get(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return decodeBorrower(snap)
}

// DeleteBorrower deletes the payments subcollection first; Firestore does
// not cascade deletes.
func (s *LoanStore) DeleteBorrower(ctx context.Context, id string) error {
	if _, err := s.GetBorrower(ctx, id); err != nil {
		return err
	}

	refs, err := s.payments(id).DocumentRefs(ctx).GetAll()
	if err != nil {
		return fmt.Errorf("list payments of borrower %s: %w", id, err)
	}
	if len(refs) > 0 {
		bw := s.client.BulkWriter(ctx)
		jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
		for _, ref := range refs {
			job, err := bw.Delete(ref)
			if err != nil {
				bw.End()
				return err
			}
			jobs = append(jobs, job)
		}
		bw.End()
		for _, job := range jobs {
			if _, err := job.Results(); err != nil {
				return fmt.Errorf("delete payment of borrower %s: %w", id, err)
			}
		}
	}

	_, err = s.borrowers().Doc(id).Delete(ctx, firestore.Exists)
	return mapError(err)
}

func (s *LoanStore) AddPayment(ctx context.Context, borrowerID string, payment *models.Payment) error {
	if _, err := s.GetBorrower(ctx, borrowerID); err != nil {
		return err
	}
	payment.BorrowerID = borrowerID
	if _, err := s.payments(borrowerID).Doc(payment.ID).Create(ctx, payment); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *LoanStore) ListPayments(ctx context.Context, borrowerID string) ([]models.Payment, error) {
	if _, err := s.GetBorrower(ctx, borrowerID); err != nil {
		return nil, err
	}
	iter := s.payments(borrowerID).OrderBy("date", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	payments := make([]models.Payment, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return payments, nil
		}
		if err != nil {
			return nil, err
		}
		var payment models.Payment
		if err := snap.DataTo(&payment); err != nil {
			return nil, fmt.Errorf("decode payment %s: %w", snap.Ref.ID, err)
		}
		payment.ID = snap.Ref.ID
		payment.BorrowerID = borrowerID
		payments = append(payments, payment)
	}
}

func (s *LoanStore) DeletePayment(ctx context.Context, borrowerID, paymentID string) error {
	_, err := s.payments(borrowerID).Doc(paymentID).Delete(ctx, firestore.Exists)
	return mapError(err)
}
