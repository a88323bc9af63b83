package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.NotEmpty(t, cfg.Models[TierLite])
	assert.NotEmpty(t, cfg.Models[TierStandard])
}

func TestGetModel(t *testing.T) {
	cfg := &Config{Models: map[ModelTier]string{TierStandard: "gemini-2.5-flash"}}

	assert.Equal(t, "gemini-2.5-flash", cfg.GetModel(TierStandard))
	// Unconfigured tiers fall back to standard
	assert.Equal(t, "gemini-2.5-flash", cfg.GetModel(TierLite))

	empty := &Config{Models: map[ModelTier]string{}}
	assert.Equal(t, "", empty.GetModel(TierStandard))
}
