package loans

import (
	"context"
	"sync"

	"github.com/Heethjain14/loan-management-system/internal/pkg/money"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store/models"
	"github.com/Heethjain14/loan-management-system/internal/pkg/utils/worker"
)

type StatusCounts struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Total    int `json:"total"`
}

type BorrowerDue struct {
	BorrowerID  string  `json:"borrowerId"`
	Name        string  `json:"name"`
	TotalAmount float64 `json:"totalAmount"`
	Paid        float64 `json:"paid"`
	Due         float64 `json:"due"`
	DueDate     string  `json:"dueDate"`
}

type Dashboard struct {
	Applications   StatusCounts  `json:"applications"`
	Borrowers      int           `json:"borrowers"`
	TotalLent      float64       `json:"totalLent"`
	TotalCollected float64       `json:"totalCollected"`
	TotalDue       float64       `json:"totalDue"`
	Dues           []BorrowerDue `json:"dues"`
}

func (s *LoanService) Dashboard(ctx context.Context) (*Dashboard, error) {
	apps, err := s.store.ListApplications(ctx)
	if err != nil {
		return nil, err
	}
	borrowers, err := s.store.ListBorrowers(ctx)
	if err != nil {
		return nil, err
	}
	paid, err := s.paidByBorrower(ctx, borrowers)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{Borrowers: len(borrowers), Dues: make([]BorrowerDue, 0, len(borrowers))}
	for _, a := range apps {
		switch a.Status {
		case models.StatusApproved:
			d.Applications.Approved++
		case models.StatusRejected:
			d.Applications.Rejected++
		default:
			d.Applications.Pending++
		}
	}
	d.Applications.Total = len(apps)

	lent := make([]float64, 0, len(borrowers))
	collected := make([]float64, 0, len(borrowers))
	dues := make([]float64, 0, len(borrowers))
	for i := range borrowers {
		b := &borrowers[i]
		p := paid[b.ID]
		due := money.Due(b.TotalAmount, p)
		lent = append(lent, b.LoanAmount)
		collected = append(collected, p)
		dues = append(dues, due)
		d.Dues = append(d.Dues, BorrowerDue{
			BorrowerID:  b.ID,
			Name:        b.Name,
			TotalAmount: b.TotalAmount,
			Paid:        p,
			Due:         due,
			DueDate:     dueDate(b),
		})
	}
	d.TotalLent = money.Sum(lent...)
	d.TotalCollected = money.Sum(collected...)
	d.TotalDue = money.Sum(dues...)
	return d, nil
}

// paidByBorrower loads every borrower's payments on a bounded pool and
// returns the paid total per borrower id.
func (s *LoanService) paidByBorrower(ctx context.Context, borrowers []models.Borrower) (map[string]float64, error) {
	pool := worker.NewWorkerPool(min(s.fanout, max(len(borrowers), 1)))
	defer pool.Stop()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)
	paid := make(map[string]float64, len(borrowers))

	for _, b := range borrowers {
		id := b.ID
		wg.Add(1)
		submitted := pool.Submit(ctx, func() {
			defer wg.Done()
			payments, err := s.store.ListPayments(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			paid[id] = sumPayments(payments)
		})
		if !submitted {
			wg.Done()
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return paid, nil
}
