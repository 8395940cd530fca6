package loans

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Heethjain14/loan-management-system/internal/pkg/consts"
	"github.com/Heethjain14/loan-management-system/internal/pkg/money"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store/models"
	"github.com/Heethjain14/loan-management-system/internal/pkg/utils/dates"
)

var ErrInvalidDates = errors.New("invalid loan dates")

// Terms are the user-editable fields of an application.
type Terms struct {
	Name           string  `json:"name" validate:"required,min=1"`
	LoanAmount     float64 `json:"loanAmount" validate:"gt=0"`
	RateOfInterest float64 `json:"rateOfInterest" validate:"gte=0"`
	StartDate      string  `json:"startDate" validate:"required"`
	EndDate        string  `json:"endDate" validate:"required"`
}

// Apply copies t onto app and recomputes daysBetween and totalAmount.
func (t Terms) Apply(app *models.Application) error {
	start, err := dates.Parse(t.StartDate)
	if err != nil {
		return fmt.Errorf("%w: startDate %q", ErrInvalidDates, t.StartDate)
	}
	end, err := dates.Parse(t.EndDate)
	if err != nil {
		return fmt.Errorf("%w: endDate %q", ErrInvalidDates, t.EndDate)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: endDate is before startDate", ErrInvalidDates)
	}

	days := money.DaysBetween(start, end)
	app.Name = strings.TrimSpace(t.Name)
	app.LoanAmount = t.LoanAmount
	app.RateOfInterest = t.RateOfInterest
	app.StartDate = start.Format(consts.DateLayout)
	app.EndDate = end.Format(consts.DateLayout)
	app.DaysBetween = days
	app.TotalAmount = money.SimpleInterestTotal(t.LoanAmount, t.RateOfInterest, days)
	return nil
}
