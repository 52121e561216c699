package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"interview-byte/internal/config"
	"interview-byte/internal/domain"
	"interview-byte/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"
)

// ollamaCompleter implements domain.TextCompleter against an Ollama server.
type ollamaCompleter struct {
	llmClient   *ollama.LLM
	timeout     time.Duration
	temperature float64
}

// NewOllamaCompleter creates a TextCompleter backed by the configured Ollama
// server. The timeout bounds every completion call client-side; there is no
// backend-side cancellation.
func NewOllamaCompleter(cfg config.LLMConfig) (domain.TextCompleter, error) {
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("LLM server URL cannot be empty")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("LLM model name cannot be empty")
	}

	httpClient := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     10 * time.Second,
		},
	}

	llmClient, err := ollama.New(
		ollama.WithServerURL(cfg.ServerURL),
		ollama.WithModel(cfg.Model),
		ollama.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	return &ollamaCompleter{
		llmClient:   llmClient,
		timeout:     cfg.Timeout,
		temperature: cfg.Temperature,
	}, nil
}

// Complete implements domain.TextCompleter
func (c *ollamaCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	l := logger.Get()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	response, err := c.llmClient.Call(ctx, prompt, llms.WithTemperature(c.temperature))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			l.Error("LLM request timed out", zap.Error(err), zap.Duration("timeout", c.timeout))
			return "", fmt.Errorf("LLM request timed out: %w", err)
		}
		l.Error("Failed to get response from LLM", zap.Error(err))
		return "", fmt.Errorf("LLM call failed: %w", err)
	}

	return response, nil
}
