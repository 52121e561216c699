package llm

import (
	"testing"
	"time"

	"interview-byte/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestNewOllamaCompleter_ConfigValidation(t *testing.T) {
	t.Run("EmptyServerURL", func(t *testing.T) {
		_, err := NewOllamaCompleter(config.LLMConfig{Model: "qwen3:0.6b", Timeout: time.Second})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "server URL")
	})

	t.Run("EmptyModel", func(t *testing.T) {
		_, err := NewOllamaCompleter(config.LLMConfig{ServerURL: "http://localhost:11434", Timeout: time.Second})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "model")
	})

	t.Run("Valid", func(t *testing.T) {
		completer, err := NewOllamaCompleter(config.LLMConfig{
			ServerURL:   "http://localhost:11434",
			Model:       "qwen3:0.6b",
			Timeout:     20 * time.Second,
			Temperature: 0.1,
		})
		assert.NoError(t, err)
		assert.NotNil(t, completer)
	})
}
