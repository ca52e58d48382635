package services

import (
	"errors"
	"fmt"

	"github.com/dafailyasa/salt-be-test/internal/repositories"
)

var (
	// ErrInvalidID is returned when an id does not have the identifier shape.
	// It is checked before the cache or the store is touched.
	ErrInvalidID = errors.New("invalid product id")

	// ErrNotFound is returned when no product exists for the id.
	ErrNotFound = errors.New("product not found")
)

// PersistenceError reports a store failure during Op.
type PersistenceError struct {
	Op  string
	Err error
	// ClientFault is set when the store rejected the write because of the
	// request, such as a constraint violation.
	ClientFault bool
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s product: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistenceError(op string, err error) error {
	return &PersistenceError{
		Op:          op,
		Err:         err,
		ClientFault: errors.Is(err, repositories.ErrConstraintViolation),
	}
}
