package domain

import "errors"

// ErrStoreUnavailable is matched by every persistence failure.
var ErrStoreUnavailable = errors.New("store unavailable")

// StoreError wraps a driver or network error raised by a storage adapter.
type StoreError struct {
	Op  string
	Err error
}

func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return "store unavailable: " + e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}
