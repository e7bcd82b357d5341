package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fmuoria/resume-shortlisting/internal/config"
	"github.com/fmuoria/resume-shortlisting/internal/llm"
)

func TestNewLLMClient(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	logger := zaptest.NewLogger(t)

	_, err := newLLMClient(context.Background(), config.LLMConfig{Provider: "gemini"}, logger)
	assert.ErrorIs(t, err, llm.ErrMissingCredential)

	client, err := newLLMClient(context.Background(), config.LLMConfig{Provider: "gemini", APIKey: "test-key", Model: "gemini-test"}, logger)
	require.NoError(t, err)
	defer client.Close()
	assert.Equal(t, "gemini-test", client.Model())
}
