package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

var (
	ErrEmptyResponse    = errors.New("model returned an empty response")
	ErrUnexpectedStatus = errors.New("unexpected status from model endpoint")
)

type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

type GenerateResponse struct {
	Response string `json:"response"`
}

// LLMService calls a player's text-generation endpoint. The response is
// treated as opaque text; parsing a move out of it is the extractor's job.
type LLMService interface {
	Generate(ctx context.Context, endpoint, prompt string) (string, error)
}

type llmService struct {
	logger         *slog.Logger
	client         *http.Client
	requestTimeout time.Duration
}

func NewLLMService(logger *slog.Logger, requestTimeout time.Duration) LLMService {
	return &llmService{
		logger:         logger.With("component", "llm"),
		client:         &http.Client{},
		requestTimeout: requestTimeout,
	}
}

// Generate - sends the prompt and returns the raw completion text. Every
// call carries an explicit timeout so a hung endpoint cannot hang the game
// loop forever.
func (that *llmService) Generate(ctx context.Context, endpoint, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, that.requestTimeout)
	defer cancel()

	body, err := json.Marshal(GenerateRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := that.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call model endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	var generated GenerateResponse
	if err = json.NewDecoder(resp.Body).Decode(&generated); err != nil {
		return "", fmt.Errorf("failed to decode model response: %w", err)
	}

	if generated.Response == "" {
		return "", ErrEmptyResponse
	}

	return generated.Response, nil
}
