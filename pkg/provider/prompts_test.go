package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echomind-ai/echomind/pkg/memory"
)

func TestParseCandidates(t *testing.T) {
	raw := `[
		{"type": "preference", "content": "Likes green tea", "confidence": 0.9},
		{"type": "fact", "content": "Lives in Utrecht", "confidence": 0.95},
		{"type": "mystery", "content": "Something vague", "confidence": 0.4}
	]`

	candidates, err := parseCandidates(raw)
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	assert.Equal(t, memory.TypePreference, candidates[0].Type)
	assert.Equal(t, "Likes green tea", candidates[0].Content)
	assert.Equal(t, 0.9, candidates[0].Confidence)

	// Unknown types degrade to general rather than failing the batch.
	assert.Equal(t, memory.TypeGeneral, candidates[2].Type)
}

func TestParseCandidatesDropsInvalidEntries(t *testing.T) {
	raw := `[
		{"type": "fact", "content": "   ", "confidence": 0.9},
		{"type": "fact", "content": "Confidence too high", "confidence": 1.5},
		{"type": "fact", "content": "Keeps this one", "confidence": 1.0}
	]`

	candidates, err := parseCandidates(raw)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Keeps this one", candidates[0].Content)
}

func TestParseCandidatesMalformed(t *testing.T) {
	_, err := parseCandidates("not json")
	require.Error(t, err)
	assert.IsType(t, &MalformedResponseError{}, err)
}

func TestParseCandidatesEmptyArray(t *testing.T) {
	candidates, err := parseCandidates("[]")
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestParseGeneration(t *testing.T) {
	raw := `{
		"responseText": "Good morning! Green tea is already on your list.",
		"relatedMemoryIds": ["mem-1", "mem-2"],
		"reasoning": "Referenced the tea preference."
	}`

	result, err := parseGeneration(raw)
	require.NoError(t, err)

	assert.Equal(t, "Good morning! Green tea is already on your list.", result.Text)
	assert.Equal(t, []string{"mem-1", "mem-2"}, result.UsedMemoryIDs)
	assert.Equal(t, "Referenced the tea preference.", result.Reasoning)
}

func TestParseGenerationEmptyReplyFallsBack(t *testing.T) {
	result, err := parseGeneration(`{"responseText": "  ", "relatedMemoryIds": []}`)
	require.NoError(t, err)

	assert.Equal(t, "I'm sorry, I couldn't process that.", result.Text)
	assert.Equal(t, "Standard response.", result.Reasoning)
	assert.NotNil(t, result.UsedMemoryIDs)
	assert.Empty(t, result.UsedMemoryIDs)
}

func TestParseGenerationMalformed(t *testing.T) {
	_, err := parseGeneration("<html>gateway timeout</html>")
	require.Error(t, err)
	assert.IsType(t, &MalformedResponseError{}, err)
}

func TestFailureResult(t *testing.T) {
	result := FailureResult()

	assert.Equal(t, "I'm having trouble connecting to my brain right now.", result.Text)
	assert.Equal(t, "Error in processing.", result.Reasoning)
	assert.Empty(t, result.UsedMemoryIDs)
}

func TestBuildGenerationPrompt(t *testing.T) {
	prompt := buildGenerationPrompt(GenerationRequest{
		Utterance: "What should I drink?",
		Memories: []memory.Memory{
			{ID: "mem-2", Type: memory.TypePreference, Content: "Likes green tea"},
			{ID: "mem-1", Type: memory.TypeFact, Content: "Lives in Utrecht"},
		},
	})

	assert.Contains(t, prompt, "[mem-2] (preference) Likes green tea")
	assert.Contains(t, prompt, "[mem-1] (fact) Lives in Utrecht")
	assert.Contains(t, prompt, "User said: What should I drink?")
}

func TestBuildGenerationPromptWithoutMemories(t *testing.T) {
	prompt := buildGenerationPrompt(GenerationRequest{Utterance: "Hello"})

	assert.Contains(t, prompt, "No memories are stored yet.")
}

func TestBuildExtractionSystemPrompt(t *testing.T) {
	prompt := buildExtractionSystemPrompt([]memory.Memory{
		{ID: "mem-2", Content: "Likes green tea"},
		{ID: "mem-1", Content: "Lives in Utrecht"},
	})

	assert.Contains(t, prompt, "Current known memories:")
	assert.Contains(t, prompt, "- Likes green tea")
	assert.Contains(t, prompt, "- Lives in Utrecht")
}

func TestBuildExtractionSystemPromptWithoutMemories(t *testing.T) {
	prompt := buildExtractionSystemPrompt(nil)

	assert.Contains(t, prompt, "No prior memories.")
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, stripFences("```json\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, stripFences("```\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, stripFences(`{"a": 1}`))
}
