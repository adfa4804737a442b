package provider

import (
	"context"

	"github.com/echomind-ai/echomind/pkg/memory"
)

/*
Extractor pulls durable facts out of one user utterance. The caller supplies
its current memory snapshot so the model can skip facts it already knows. An
empty slice is a normal outcome: most utterances contain nothing worth
remembering.
*/
type Extractor interface {
	Extract(ctx context.Context, utterance string, memories []memory.Memory) ([]memory.Candidate, error)
}

/*
GenerationRequest carries one utterance plus the memories the reply may
personalize against. Memories arrive most recent first and include the ones
persisted earlier in the same turn.
*/
type GenerationRequest struct {
	Utterance string
	Memories  []memory.Memory
	Thinking  bool
}

/*
GenerationResult is the structured reply contract: the text to speak, the
ids of the memories that actually informed it, and a short reasoning note.
*/
type GenerationResult struct {
	Text          string   `json:"responseText"`
	UsedMemoryIDs []string `json:"relatedMemoryIds"`
	Reasoning     string   `json:"reasoning"`
}

type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error)
}

/*
Synthesizer turns reply text into raw 16-bit little-endian mono PCM at
24000 Hz. A nil payload with a nil error means the service produced no
audio; callers skip playback rather than fail the turn.
*/
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

const (
	failureReply     = "I'm having trouble connecting to my brain right now."
	failureReasoning = "Error in processing."
	emptyReply       = "I'm sorry, I couldn't process that."
	defaultReasoning = "Standard response."
)

/*
FailureResult is the fixed reply the pipeline falls back to when generation
fails, whether from transport errors or a malformed response. It carries no
memory ids, so nothing gets highlighted for it.
*/
func FailureResult() GenerationResult {
	return GenerationResult{Text: failureReply, Reasoning: failureReasoning}
}
