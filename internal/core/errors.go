package core

import "errors"

// Ledger error taxonomy. Callers match with errors.Is; wrapped errors carry
// the underlying cause.
var (
	// ErrStorageUnavailable means the store could not be opened, or was used
	// before open or after close.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrSchemaConflict means the persisted schema cannot be brought to the
	// requested version.
	ErrSchemaConflict = errors.New("schema conflict")
	// ErrWriteFailed means the record was not persisted.
	ErrWriteFailed       = errors.New("write failed")
	ErrDuplicateCategory = errors.New("duplicate category")
	ErrInvalidDraft      = errors.New("invalid draft")
)
