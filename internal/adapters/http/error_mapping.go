package httpadapter

import (
	"net/http"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
)

type errorResponse struct {
	status  int
	message string
	outcome string
}

var unexpectedError = errorResponse{
	status:  http.StatusInternalServerError,
	message: "Internal server error",
	outcome: "error",
}

var errorResponses = map[error]errorResponse{
	domain.ErrInvalidInput:          {http.StatusBadRequest, "Invalid request", "invalid_input"},
	domain.ErrUnsupportedMedia:      {http.StatusBadRequest, "Only PDF files are allowed", "unsupported_media"},
	domain.ErrExtractionFailed:      {http.StatusBadRequest, "Failed to extract text from PDF", "extraction_failed"},
	domain.ErrNotFound:              {http.StatusNotFound, "Resource not found", "not_found"},
	domain.ErrMalformedOutput:       {http.StatusInternalServerError, "Failed to parse slides from model output", "malformed_output"},
	domain.ErrGenerationTimeout:     {http.StatusGatewayTimeout, "Slide generation timed out", "timeout"},
	domain.ErrGenerationUnavailable: {http.StatusBadGateway, "Slide generation service unavailable", "unavailable"},
	domain.ErrTemporary:             {http.StatusServiceUnavailable, "Service temporarily unavailable", "temporary"},
}

func lookupError(err error) errorResponse {
	if resp, ok := errorResponses[domain.KindOf(err)]; ok {
		return resp
	}
	return unexpectedError
}

func mapErrorToHTTPStatus(err error) int {
	return lookupError(err).status
}

// errorMessage is the stable client-facing text for an error kind.
func errorMessage(err error) string {
	return lookupError(err).message
}

// outcomeLabel names an error kind for metrics labels.
func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	return lookupError(err).outcome
}
