package provider

import (
	"encoding/json"
	"fmt"
	"strings"

	v "github.com/cohesivestack/valgo"

	"github.com/echomind-ai/echomind/pkg/memory"
)

const extractionRules = `You analyze a single user utterance and extract durable facts worth remembering across conversations: stable preferences, personal facts, and constraints. Ignore small talk, questions, and anything transient. Do not re-extract facts already listed among the known memories; when the user updates a preference, extract the new one. Return an empty array when nothing qualifies. Never invent details that were not stated.`

const generationSystemPrompt = `You are EchoMind, a warm and concise voice assistant. Personalize your reply using the provided memories when they are relevant, and list the ids of the memories you actually used. Keep replies short enough to be spoken aloud.`

/*
buildExtractionSystemPrompt folds the caller's current memories into the
extraction instructions so the model knows what is already stored.
*/
func buildExtractionSystemPrompt(memories []memory.Memory) string {
	var sb strings.Builder

	sb.WriteString(extractionRules)
	sb.WriteString("\n\nCurrent known memories:\n")

	if len(memories) == 0 {
		sb.WriteString("No prior memories.")
		return sb.String()
	}

	for i, mem := range memories {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("- " + mem.Content)
	}

	return sb.String()
}

/*
buildGenerationPrompt lays out the known memories above the utterance so the
model can reference them by id.
*/
func buildGenerationPrompt(req GenerationRequest) string {
	var sb strings.Builder

	if len(req.Memories) == 0 {
		sb.WriteString("No memories are stored yet.\n")
	} else {
		sb.WriteString("Known memories, most recent first:\n")
		for _, mem := range req.Memories {
			sb.WriteString(fmt.Sprintf("- [%s] (%s) %s\n", mem.ID, mem.Type, mem.Content))
		}
	}

	sb.WriteString("\nUser said: ")
	sb.WriteString(req.Utterance)

	return sb.String()
}

type candidateWire struct {
	Type       string  `json:"type"`
	Content    string  `json:"content"`
	Confidence float64 `json:"confidence"`
}

/*
parseCandidates decodes and validates an extraction response. Entries with a
blank content or an out-of-range confidence are dropped rather than failing
the batch; an unrecognized type degrades to general.
*/
func parseCandidates(raw string) ([]memory.Candidate, error) {
	var items []candidateWire

	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, &MalformedResponseError{Stage: "extraction", Err: err}
	}

	candidates := make([]memory.Candidate, 0, len(items))

	for _, item := range items {
		val := v.Is(
			v.String(item.Content, "content").Not().Blank(),
			v.Number(item.Confidence, "confidence").GreaterOrEqualTo(0).LessOrEqualTo(1),
		)
		if !val.Valid() {
			continue
		}

		candidates = append(candidates, memory.Candidate{
			Type:       candidateType(item.Type),
			Content:    strings.TrimSpace(item.Content),
			Confidence: item.Confidence,
		})
	}

	return candidates, nil
}

func candidateType(raw string) memory.Type {
	switch t := memory.Type(strings.ToLower(raw)); t {
	case memory.TypePreference, memory.TypeFact, memory.TypeConstraint:
		return t
	default:
		return memory.TypeGeneral
	}
}

/*
parseGeneration decodes and validates a generation response. A response that
decodes but carries a blank reply degrades to the fixed placeholder reply
instead of an error; a response that does not decode is an error, which
callers treat the same as a transport failure.
*/
func parseGeneration(raw string) (GenerationResult, error) {
	var result GenerationResult

	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return GenerationResult{}, &MalformedResponseError{Stage: "generation", Err: err}
	}

	if val := v.Is(v.String(result.Text, "responseText").Not().Blank()); !val.Valid() {
		result.Text = emptyReply
	}

	if strings.TrimSpace(result.Reasoning) == "" {
		result.Reasoning = defaultReasoning
	}

	if result.UsedMemoryIDs == nil {
		result.UsedMemoryIDs = []string{}
	}

	return result, nil
}

// MalformedResponseError represents a service response that failed to decode
type MalformedResponseError struct {
	Stage string
	Err   error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed %s response: %v", e.Stage, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
