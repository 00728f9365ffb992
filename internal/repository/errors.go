package repository

import "errors"

var (
	// ErrInvalidRecord indicates a record that breaks the history invariants
	ErrInvalidRecord = errors.New("invalid history record")

	// ErrRecordNotFound indicates no record with the requested ID exists
	ErrRecordNotFound = errors.New("history record not found")
)
