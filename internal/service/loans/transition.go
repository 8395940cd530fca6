package loans

import (
	"errors"
	"fmt"
	"time"

	"github.com/Heethjain14/loan-management-system/internal/pkg/store/models"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// TransitionResult holds the records a status change produces. Borrower is
// set only on approval and has no id yet.
type TransitionResult struct {
	Application models.Application
	Borrower    *models.Borrower
}

// Transition moves a Pending application to Approved or Rejected. Every other
// change is rejected with ErrInvalidTransition. Documents written before
// status existed are treated as Pending.
func Transition(app models.Application, to models.ApplicationStatus, at time.Time) (TransitionResult, error) {
	from := app.Status
	if from == "" {
		from = models.StatusPending
	}
	if from != models.StatusPending || (to != models.StatusApproved && to != models.StatusRejected) {
		return TransitionResult{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
	}

	app.Status = to
	app.UpdatedAt = at
	res := TransitionResult{Application: app}
	if to == models.StatusApproved {
		res.Borrower = &models.Borrower{
			ApplicationID:  app.ID,
			SnNo:           app.SnNo,
			Name:           app.Name,
			LoanAmount:     app.LoanAmount,
			RateOfInterest: app.RateOfInterest,
			StartDate:      app.StartDate,
			EndDate:        app.EndDate,
			DaysBetween:    app.DaysBetween,
			TotalAmount:    app.TotalAmount,
			DueDate:        app.EndDate,
			Status:         models.StatusApproved,
			CreatedAt:      at,
		}
	}
	return res, nil
}
