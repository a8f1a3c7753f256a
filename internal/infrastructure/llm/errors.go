package llm

import (
	"context"
	"errors"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
	"github.com/kirillkom/rfp-slide-generator/internal/infrastructure/resilience"
)

// MapError converts a generation transport failure into a domain error kind.
func MapError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrGenerationTimeout) ||
		domain.IsKind(err, domain.ErrGenerationUnavailable) ||
		domain.IsKind(err, domain.ErrMalformedOutput) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.WrapError(domain.ErrGenerationTimeout, operation, err)
	}
	if resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrGenerationUnavailable, operation, domain.WrapError(domain.ErrTemporary, operation, err))
	}
	return domain.WrapError(domain.ErrGenerationUnavailable, operation, err)
}
