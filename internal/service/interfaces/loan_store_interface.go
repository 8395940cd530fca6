package interfaces

import (
	"context"

	"github.com/Heethjain14/loan-management-system/internal/pkg/store"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store/models"
)

// LoanStore persists applications, borrowers and their payments.
// Lookups of missing documents return store.ErrNotFound.
type LoanStore interface {
	// NextSequence returns the next value of the named counter, seeding it
	// from the highest number already stored on first use.
	NextSequence(ctx context.Context, name string) (int64, error)

	CreateApplication(ctx context.Context, app *models.Application) error
	GetApplication(ctx context.Context, id string) (*models.Application, error)
	ListApplications(ctx context.Context) ([]models.Application, error)
	UpdateApplication(ctx context.Context, app *models.Application) error
	DeleteApplication(ctx context.Context, id string) error

	// CommitTransition writes app only while the stored status still equals
	// from, and creates borrower (when non-nil) in the same unit of work.
	CommitTransition(ctx context.Context, from models.ApplicationStatus, app *models.Application, borrower *models.Borrower) error

	// MoveApplication re-keys an application document from fromID to toID.
	MoveApplication(ctx context.Context, fromID, toID string) (store.MoveOutcome, error)

	ListBorrowers(ctx context.Context) ([]models.Borrower, error)
	GetBorrower(ctx context.Context, id string) (*models.Borrower, error)
	DeleteBorrower(ctx context.Context, id string) error

	AddPayment(ctx context.Context, borrowerID string, payment *models.Payment) error
	ListPayments(ctx context.Context, borrowerID string) ([]models.Payment, error)
	DeletePayment(ctx context.Context, borrowerID, paymentID string) error
}
