package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("not found")
	ErrUnsupportedMedia      = errors.New("unsupported media type")
	ErrExtractionFailed      = errors.New("content extraction failed")
	ErrGenerationUnavailable = errors.New("generation service unavailable")
	ErrGenerationTimeout     = errors.New("generation timed out")
	ErrMalformedOutput       = errors.New("malformed generation output")
	ErrTemporary             = errors.New("temporary failure")
)

// errorKinds is ordered by precedence: a circuit-open failure is wrapped as
// both unavailable and temporary and must surface as unavailable.
var errorKinds = []error{
	ErrInvalidInput,
	ErrUnsupportedMedia,
	ErrExtractionFailed,
	ErrNotFound,
	ErrMalformedOutput,
	ErrGenerationTimeout,
	ErrGenerationUnavailable,
	ErrTemporary,
}

// WrapError tags err with a kind and the operation that failed.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// KindOf returns the highest-precedence kind carried by err, or nil.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range errorKinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
