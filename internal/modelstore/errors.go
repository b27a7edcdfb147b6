package modelstore

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by every *NotFoundError.
	ErrNotFound = errors.New("modelstore: not found")
	// ErrUnsupportedValue is returned when a value cannot be encoded.
	ErrUnsupportedValue = errors.New("modelstore: unsupported value")
	// ErrUnknownKind is returned when no factory can rebuild a stored kind.
	ErrUnknownKind = errors.New("modelstore: unknown model kind")
)

// NotFoundError reports a missing stored value.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("modelstore: %s not found", e.Path)
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
