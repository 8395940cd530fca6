package loans

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Heethjain14/loan-management-system/internal/pkg/log_messages"
	"github.com/Heethjain14/loan-management-system/internal/pkg/logger"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store"

	"go.uber.org/zap"
)

// Move is one application re-keyed to its numeric id. Outcome is empty for
// a dry run.
type Move struct {
	From    string            `json:"from"`
	To      string            `json:"to"`
	Outcome store.MoveOutcome `json:"outcome,omitempty"`
}

type MigrationReport struct {
	DryRun            bool   `json:"dryRun"`
	Scanned           int    `json:"scanned"`
	Moved             int    `json:"moved"`
	DuplicatesDeleted int    `json:"duplicatesDeleted"`
	Skipped           int    `json:"skipped"`
	Moves             []Move `json:"moves"`
}

// MigrateApplications moves every application that carries a numericId to
// the document id numericId. Each move is atomic on its own; the run as a
// whole is not, and it stops at the first store error.
func (s *LoanService) MigrateApplications(ctx context.Context, dryRun bool) (*MigrationReport, error) {
	apps, err := s.store.ListApplications(ctx)
	if err != nil {
		return nil, err
	}

	report := &MigrationReport{DryRun: dryRun, Scanned: len(apps), Moves: []Move{}}
	for _, a := range apps {
		if a.NumericID <= 0 {
			continue
		}
		to := strconv.FormatInt(a.NumericID, 10)
		if a.ID == to {
			continue
		}

		move := Move{From: a.ID, To: to}
		if dryRun {
			report.Moves = append(report.Moves, move)
			continue
		}

		outcome, err := s.store.MoveApplication(ctx, a.ID, to)
		if err != nil {
			return report, fmt.Errorf("moving application %s to %s: %w", a.ID, to, err)
		}
		move.Outcome = outcome
		report.Moves = append(report.Moves, move)

		switch outcome {
		case store.MoveMoved:
			report.Moved++
			logger.CtxInfo(ctx, log_messages.ApplicationMigrated, zap.String("from", a.ID), zap.String("to", to))
		case store.MoveDuplicateDeleted:
			report.DuplicatesDeleted++
			logger.CtxInfo(ctx, log_messages.ApplicationMigrated,
				zap.String("from", a.ID), zap.String("to", to), zap.String("outcome", string(outcome)))
		default:
			report.Skipped++
			logger.CtxWarn(ctx, log_messages.ApplicationMigrateSkip, zap.String("from", a.ID), zap.String("to", to))
		}
	}
	return report, nil
}
