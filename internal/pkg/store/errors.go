// Package store holds the errors and outcomes shared by the loan store backends.
package store

import "errors"

var (
	ErrNotFound      = errors.New("document not found")
	ErrAlreadyExists = errors.New("document already exists")
	// ErrStatusChanged means the application left the expected status before the write landed.
	ErrStatusChanged = errors.New("application status changed concurrently")
)

// MoveOutcome describes what MoveApplication did with one document.
type MoveOutcome string

const (
	MoveMoved            MoveOutcome = "moved"
	MoveDuplicateDeleted MoveOutcome = "duplicate_deleted"
	MoveSkipped          MoveOutcome = "skipped"
)
