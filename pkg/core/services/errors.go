package services

import (
	"errors"
	"fmt"

	"github.com/jakechorley/team-rota/pkg/db"
)

var (
	// ErrInvalidRequest is returned for a malformed substitution request
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidTransition is returned when resolving a request that is no longer pending
	ErrInvalidTransition = errors.New("invalid transition")
	ErrNotFound          = errors.New("not found")
	// ErrStoreUnavailable wraps any failure of the data store itself
	ErrStoreUnavailable = errors.New("store unavailable")
)

// storeError classifies an error returned by the store
func storeError(action string, err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("failed to %s: %w", action, ErrNotFound)
	}
	if errors.Is(err, db.ErrInvalidReference) {
		return fmt.Errorf("failed to %s: %w", action, ErrInvalidRequest)
	}
	return fmt.Errorf("failed to %s: %w: %w", action, ErrStoreUnavailable, err)
}

// IsClientError reports whether err should be shown to the user as a rejection rather than
// treated as an infrastructure failure
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) || errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrNotFound)
}
