package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoogleProviderDefaults(t *testing.T) {
	prvdr := NewGoogleProvider()

	assert.Equal(t, "gemini-flash-lite-latest", prvdr.fastModel)
	assert.Equal(t, "gemini-3-pro-preview", prvdr.deepModel)
	assert.Equal(t, "gemini-2.5-flash-preview-tts", prvdr.speechModel)
	assert.Equal(t, "Kore", prvdr.voice)
	assert.Equal(t, int32(32768), prvdr.thinkingBudget)
}

func TestGoogleProviderOptions(t *testing.T) {
	prvdr := NewGoogleProvider(
		WithGoogleModels("fast-model", "deep-model"),
		WithGoogleSpeechModel("speech-model"),
		WithGoogleVoice("Puck"),
		WithGoogleThinkingBudget(1024),
	)

	assert.Equal(t, "fast-model", prvdr.fastModel)
	assert.Equal(t, "deep-model", prvdr.deepModel)
	assert.Equal(t, "speech-model", prvdr.speechModel)
	assert.Equal(t, "Puck", prvdr.voice)
	assert.Equal(t, int32(1024), prvdr.thinkingBudget)
}
