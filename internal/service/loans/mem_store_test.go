package loans

import (
	"context"
	"sort"
	"sync"

	"github.com/Heethjain14/loan-management-system/internal/pkg/store"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store/models"
	"github.com/Heethjain14/loan-management-system/internal/service/interfaces"
)

var _ interfaces.LoanStore = (*memStore)(nil)

// memStore is an in-memory LoanStore for service tests.
type memStore struct {
	mu        sync.Mutex
	seq       map[string]int64
	apps      map[string]models.Application
	borrowers map[string]models.Borrower
	payments  map[string][]models.Payment
	listErr   error
}

func newMemStore() *memStore {
	return &memStore{
		seq:       map[string]int64{},
		apps:      map[string]models.Application{},
		borrowers: map[string]models.Borrower{},
		payments:  map[string][]models.Payment{},
	}
}

func (m *memStore) NextSequence(_ context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq[name]++
	return m.seq[name], nil
}

func (m *memStore) CreateApplication(_ context.Context, app *models.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.apps[app.ID]; ok {
		return store.ErrAlreadyExists
	}
	m.apps[app.ID] = *app
	return nil
}

func (m *memStore) GetApplication(_ context.Context, id string) (*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

func (m *memStore) ListApplications(context.Context) ([]models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Application, 0, len(m.apps))
	for _, a := range m.apps {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SnNo != out[j].SnNo {
			return out[i].SnNo < out[j].SnNo
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memStore) UpdateApplication(_ context.Context, app *models.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.apps[app.ID]; !ok {
		return store.ErrNotFound
	}
	m.apps[app.ID] = *app
	return nil
}

func (m *memStore) DeleteApplication(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.apps[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.apps, id)
	return nil
}

func (m *memStore) CommitTransition(_ context.Context, from models.ApplicationStatus, app *models.Application, borrower *models.Borrower) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.apps[app.ID]
	if !ok {
		return store.ErrNotFound
	}
	if current.Status != from {
		return store.ErrStatusChanged
	}
	if borrower != nil {
		if _, ok := m.borrowers[borrower.ID]; ok {
			return store.ErrAlreadyExists
		}
		m.borrowers[borrower.ID] = *borrower
	}
	m.apps[app.ID] = *app
	return nil
}

func (m *memStore) MoveApplication(_ context.Context, fromID, toID string) (store.MoveOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	src, ok := m.apps[fromID]
	if !ok {
		return "", store.ErrNotFound
	}
	if target, ok := m.apps[toID]; ok {
		if target.NumericID == src.NumericID {
			delete(m.apps, fromID)
			return store.MoveDuplicateDeleted, nil
		}
		return store.MoveSkipped, nil
	}
	src.ID = toID
	m.apps[toID] = src
	delete(m.apps, fromID)
	return store.MoveMoved, nil
}

func (m *memStore) ListBorrowers(context.Context) ([]models.Borrower, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Borrower, 0, len(m.borrowers))
	for _, b := range m.borrowers {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NumericID < out[j].NumericID })
	return out, nil
}

func (m *memStore) GetBorrower(_ context.Context, id string) (*models.Borrower, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.borrowers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &b, nil
}

func (m *memStore) DeleteBorrower(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.borrowers[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.borrowers, id)
	delete(m.payments, id)
	return nil
}

func (m *memStore) AddPayment(_ context.Context, borrowerID string, p *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.borrowers[borrowerID]; !ok {
		return store.ErrNotFound
	}
	m.payments[borrowerID] = append(m.payments[borrowerID], *p)
	return nil
}

func (m *memStore) ListPayments(_ context.Context, borrowerID string) ([]models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	if _, ok := m.borrowers[borrowerID]; !ok {
		return nil, store.ErrNotFound
	}
	out := append([]models.Payment(nil), m.payments[borrowerID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (m *memStore) DeletePayment(_ context.Context, borrowerID, paymentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.payments[borrowerID]
	for i, p := range list {
		if p.ID == paymentID {
			m.payments[borrowerID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}
