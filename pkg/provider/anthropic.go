package provider

import (
	"context"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/echomind-ai/echomind/pkg/memory"
)

/*
AnthropicProvider is an alternate extraction and generation backend on the
Anthropic API. It has no structured-output mode, so both operations instruct
the model to answer with bare JSON and run it through the same parsers as
the Gemini backend. Speech synthesis stays on Gemini either way.
*/
type AnthropicProvider struct {
	client *anthropic.Client
	model  anthropic.Model
}

type AnthropicProviderOption func(*AnthropicProvider)

func NewAnthropicProvider(options ...AnthropicProviderOption) *AnthropicProvider {
	prvdr := &AnthropicProvider{
		model: anthropic.ModelClaude3_7SonnetLatest,
	}

	for _, option := range options {
		option(prvdr)
	}

	return prvdr
}

func WithAnthropicClient() AnthropicProviderOption {
	return func(prvdr *AnthropicProvider) {
		client := anthropic.NewClient(
			option.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")),
		)

		prvdr.client = &client
	}
}

func WithAnthropicModel(model string) AnthropicProviderOption {
	return func(prvdr *AnthropicProvider) {
		prvdr.model = anthropic.Model(model)
	}
}

const jsonOnlyInstruction = ` Respond with JSON only, no prose and no code fences.`

func (prvdr *AnthropicProvider) Extract(
	ctx context.Context, utterance string, memories []memory.Memory,
) ([]memory.Candidate, error) {
	text, err := prvdr.complete(
		ctx,
		buildExtractionSystemPrompt(memories)+`

Answer with a JSON array of objects shaped {"type", "content", "confidence"}, where type is one of preference, fact, constraint, general.`+jsonOnlyInstruction,
		utterance,
	)
	if err != nil {
		return nil, err
	}

	return parseCandidates(text)
}

func (prvdr *AnthropicProvider) Generate(
	ctx context.Context, req GenerationRequest,
) (GenerationResult, error) {
	text, err := prvdr.complete(
		ctx,
		generationSystemPrompt+` Answer with a JSON object shaped {"responseText", "relatedMemoryIds", "reasoning"}.`+jsonOnlyInstruction,
		buildGenerationPrompt(req),
	)
	if err != nil {
		return GenerationResult{}, err
	}

	return parseGeneration(text)
}

func (prvdr *AnthropicProvider) complete(
	ctx context.Context, system, prompt string,
) (string, error) {
	msg, err := prvdr.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     prvdr.model,
		MaxTokens: 1024,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", err
	}

	var text string

	for _, block := range msg.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			text += variant.Text
		}
	}

	return stripFences(text), nil
}

/*
stripFences tolerates models that fence their JSON anyway.
*/
func stripFences(text string) string {
	text = strings.TrimSpace(text)

	if after, found := strings.CutPrefix(text, "```json"); found {
		text = after
	} else if after, found := strings.CutPrefix(text, "```"); found {
		text = after
	}

	text, _ = strings.CutSuffix(strings.TrimSpace(text), "```")

	return strings.TrimSpace(text)
}
