package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kirillkom/rfp-slide-generator/internal/infrastructure/resilience"
)

// Endpoint is one JSON-over-HTTP model API.
type Endpoint struct {
	Service string
	BaseURL string
	Client  *http.Client
	Header  http.Header
}

// PostJSON sends payload to path and decodes a 2xx answer into out. Non-2xx
// answers become *resilience.HTTPStatusError so callers can classify them.
func (ep Endpoint) PostJSON(ctx context.Context, path, operation string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	for key, values := range ep.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	client := ep.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s request: %w", ep.Service, operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resilience.NewHTTPStatusError(ep.Service, operation, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}
