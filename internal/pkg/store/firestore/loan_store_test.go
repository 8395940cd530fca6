package firestore

import (
	"context"
	"os"
	"testing"

	"github.com/Heethjain14/loan-management-system/internal/pkg/consts"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store/models"
	"github.com/Heethjain14/loan-management-system/internal/service/interfaces"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ interfaces.LoanStore = (*LoanStore)(nil)

// newEmulatorStore gives each test its own project so emulator data never overlaps.
func newEmulatorStore(t *testing.T) *LoanStore {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := firestore.NewClient(context.Background(), "test-"+uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewLoanStore(client)
}

func TestNextSequenceSeedsFromExisting(t *testing.T) {
	s := newEmulatorStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateApplication(ctx, &models.Application{ID: "a", SnNo: 41, Status: models.StatusPending}))

	first, err := s.NextSequence(ctx, consts.ApplicationCounter)
	require.NoError(t, err)
	second, err := s.NextSequence(ctx, consts.ApplicationCounter)
	require.NoError(t, err)

	assert.Equal(t, int64(42), first)
	assert.Equal(t, int64(43), second)
}

func TestApplicationCRUD(t *testing.T) {
	s := newEmulatorStore(t)
	ctx := context.Background()

	app := &models.Application{ID: "app-1", SnNo: 1, Name: "Ana", LoanAmount: 1000, Status: models.StatusPending}
	require.NoError(t, s.CreateApplication(ctx, app))
	assert.ErrorIs(t, s.CreateApplication(ctx, app), store.ErrAlreadyExists)

	got, err := s.GetApplication(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
	assert.Equal(t, "app-1", got.ID)

	got.Name = "Ana Maria"
	require.NoError(t, s.UpdateApplication(ctx, got))
	assert.ErrorIs(t, s.UpdateApplication(ctx, &models.Application{ID: "ghost"}), store.ErrNotFound)

	list, err := s.ListApplications(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ana Maria", list[0].Name)

	require.NoError(t, s.DeleteApplication(ctx, "app-1"))
	assert.ErrorIs(t, s.DeleteApplication(ctx, "app-1"), store.ErrNotFound)
	_, err = s.GetApplication(ctx, "app-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCommitTransition(t *testing.T) {
	s := newEmulatorStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateApplication(ctx, &models.Application{ID: "app-1", Name: "Ana", Status: models.StatusPending}))

	approved := &models.Application{ID: "app-1", Name: "Ana", Status: models.StatusApproved}
	borrower := &models.Borrower{ID: "1", NumericID: 1, ApplicationID: "app-1", Name: "Ana", Status: models.StatusApproved}
	require.NoError(t, s.CommitTransition(ctx, models.StatusPending, approved, borrower))

	got, err := s.GetBorrower(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "app-1", got.ApplicationID)

	err = s.CommitTransition(ctx, models.StatusPending, approved, borrower)
	assert.ErrorIs(t, err, store.ErrStatusChanged)
}

func TestMoveApplication(t *testing.T) {
	s := newEmulatorStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateApplication(ctx, &models.Application{ID: "legacy-a", NumericID: 5, Name: "A"}))
	require.NoError(t, s.CreateApplication(ctx, &models.Application{ID: "legacy-b", NumericID: 5, Name: "A copy"}))
	require.NoError(t, s.CreateApplication(ctx, &models.Application{ID: "legacy-c", NumericID: 9, Name: "C"}))
	require.NoError(t, s.CreateApplication(ctx, &models.Application{ID: "9", NumericID: 3, Name: "other"}))

	outcome, err := s.MoveApplication(ctx, "legacy-a", "5")
	require.NoError(t, err)
	assert.Equal(t, store.MoveMoved, outcome)

	outcome, err = s.MoveApplication(ctx, "legacy-b", "5")
	require.NoError(t, err)
	assert.Equal(t, store.MoveDuplicateDeleted, outcome)

	outcome, err = s.MoveApplication(ctx, "legacy-c", "9")
	require.NoError(t, err)
	assert.Equal(t, store.MoveSkipped, outcome)

	_, err = s.GetApplication(ctx, "legacy-a")
	assert.ErrorIs(t, err, store.ErrNotFound)
	moved, err := s.GetApplication(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, "A", moved.Name)
	_, err = s.GetApplication(ctx, "legacy-c")
	assert.NoError(t, err)
}

func TestPaymentsSubcollection(t *testing.T) {
	s := newEmulatorStore(t)
	ctx := context.Background()

	err := s.CommitTransition(ctx, models.StatusPending,
		&models.Application{ID: "app", Status: models.StatusApproved},
		&models.Borrower{ID: "1", NumericID: 1},
	)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.CreateApplication(ctx, &models.Application{ID: "app", Status: models.StatusPending}))
	require.NoError(t, s.CommitTransition(ctx, models.StatusPending,
		&models.Application{ID: "app", Status: models.StatusApproved},
		&models.Borrower{ID: "1", NumericID: 1},
	))

	require.NoError(t, s.AddPayment(ctx, "1", &models.Payment{ID: "p2", Amount: 50, Date: "2024-03-01"}))
	require.NoError(t, s.AddPayment(ctx, "1", &models.Payment{ID: "p1", Amount: 100, Date: "2024-01-15"}))
	assert.ErrorIs(t, s.AddPayment(ctx, "404", &models.Payment{ID: "x", Amount: 1}), store.ErrNotFound)

	list, err := s.ListPayments(ctx, "1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "p1", list[0].ID)
	assert.Equal(t, "1", list[0].BorrowerID)

	require.NoError(t, s.DeletePayment(ctx, "1", "p2"))
	assert.ErrorIs(t, s.DeletePayment(ctx, "1", "p2"), store.ErrNotFound)

	require.NoError(t, s.DeleteBorrower(ctx, "1"))
	_, err = s.GetBorrower(ctx, "1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
