package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/rfp-slide-generator/internal/infrastructure/llm"
	"github.com/kirillkom/rfp-slide-generator/internal/infrastructure/resilience"
)

const generateOperation = "ollama.generate"

// Client completes prompts with a local Ollama model.
type Client struct {
	endpoint    llm.Endpoint
	genModel    string
	temperature float64
	executor    *resilience.Executor
}

type Options struct {
	Temperature float64
	HTTPTimeout time.Duration
	Executor    *resilience.Executor
}

func New(baseURL, genModel string, opts Options) *Client {
	if opts.HTTPTimeout <= 0 {
		opts.HTTPTimeout = 120 * time.Second
	}
	return &Client{
		endpoint: llm.Endpoint{
			Service: "ollama",
			BaseURL: strings.TrimRight(baseURL, "/"),
			Client:  &http.Client{Timeout: opts.HTTPTimeout},
		},
		genModel:    genModel,
		temperature: opts.Temperature,
		executor:    opts.Executor,
	}
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Complete sends a single non-streaming prompt to /api/generate.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	out, err := resilience.Call(ctx, c.executor, generateOperation, func(callCtx context.Context) (string, error) {
		return c.generate(callCtx, prompt)
	}, resilience.ClassifyHTTPError)
	if err != nil {
		return "", llm.MapError(generateOperation, err)
	}
	return out, nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	req := generateRequest{
		Model:   c.genModel,
		Prompt:  prompt,
		Options: map[string]any{"temperature": c.temperature},
	}
	var resp generateResponse
	if err := c.endpoint.PostJSON(ctx, "/api/generate", "generate", req, &resp); err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Response), nil
}
