package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
	"github.com/kirillkom/rfp-slide-generator/internal/infrastructure/llm"
	"github.com/kirillkom/rfp-slide-generator/internal/infrastructure/resilience"
)

const completeOperation = "openai.chat_completions"

// Client talks to any OpenAI-compatible chat completions endpoint.
type Client struct {
	endpoint    llm.Endpoint
	model       string
	temperature float64
	executor    *resilience.Executor
}

type Options struct {
	Temperature float64
	HTTPTimeout time.Duration
	Executor    *resilience.Executor
}

func New(baseURL, apiKey, model string, opts Options) *Client {
	if opts.HTTPTimeout <= 0 {
		opts.HTTPTimeout = 120 * time.Second
	}
	header := http.Header{}
	if apiKey != "" {
		header.Set("Authorization", "Bearer "+apiKey)
	}
	return &Client{
		endpoint: llm.Endpoint{
			Service: "openai",
			BaseURL: strings.TrimRight(baseURL, "/"),
			Client:  &http.Client{Timeout: opts.HTTPTimeout},
			Header:  header,
		},
		model:       model,
		temperature: opts.Temperature,
		executor:    opts.Executor,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	out, err := resilience.Call(ctx, c.executor, completeOperation, func(callCtx context.Context) (string, error) {
		return c.chat(callCtx, prompt)
	}, resilience.ClassifyHTTPError)
	if err != nil {
		return "", llm.MapError(completeOperation, err)
	}
	return out, nil
}

func (c *Client) chat(ctx context.Context, prompt string) (string, error) {
	req := chatRequest{
		Model:       c.model,
		Messages:    []message{{Role: "user", Content: prompt}},
		Temperature: c.temperature,
	}
	var decoded chatResponse
	if err := c.endpoint.PostJSON(ctx, "/chat/completions", "chat", req, &decoded); err != nil {
		return "", err
	}
	if len(decoded.Choices) == 0 {
		return "", domain.WrapError(domain.ErrMalformedOutput, "openai chat", errors.New("response has no choices"))
	}
	return strings.TrimSpace(decoded.Choices[0].Message.Content), nil
}
