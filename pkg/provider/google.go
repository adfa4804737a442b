package provider

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"google.golang.org/genai"

	"github.com/echomind-ai/echomind/pkg/memory"
)

var extractionSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"type": {
				Type: genai.TypeString,
				Enum: []string{"preference", "fact", "constraint", "general"},
			},
			"content":    {Type: genai.TypeString},
			"confidence": {Type: genai.TypeNumber},
		},
		Required: []string{"type", "content", "confidence"},
	},
}

var generationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"responseText": {Type: genai.TypeString},
		"relatedMemoryIds": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"reasoning": {Type: genai.TypeString},
	},
	Required: []string{"responseText", "relatedMemoryIds", "reasoning"},
}

/*
GoogleProvider backs extraction, generation, and speech synthesis with the
Gemini API. Generation switches between a fast model and a deeper thinking
model per request; extraction always uses the fast one.
*/
type GoogleProvider struct {
	client         *genai.Client
	fastModel      string
	deepModel      string
	speechModel    string
	voice          string
	thinkingBudget int32
}

type GoogleProviderOption func(*GoogleProvider)

func NewGoogleProvider(options ...GoogleProviderOption) *GoogleProvider {
	prvdr := &GoogleProvider{
		fastModel:      "gemini-flash-lite-latest",
		deepModel:      "gemini-3-pro-preview",
		speechModel:    "gemini-2.5-flash-preview-tts",
		voice:          "Kore",
		thinkingBudget: 32768,
	}

	for _, option := range options {
		option(prvdr)
	}

	return prvdr
}

func WithGoogleClient() GoogleProviderOption {
	return func(prvdr *GoogleProvider) {
		apiKey := os.Getenv("GOOGLE_API_KEY")
		if apiKey == "" {
			log.Fatal("GOOGLE_API_KEY environment variable not set.")
		}

		client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			log.Fatal("failed to create Google GenAI client", "error", err)
		}

		prvdr.client = client
	}
}

func WithGoogleModels(fast, deep string) GoogleProviderOption {
	return func(prvdr *GoogleProvider) {
		prvdr.fastModel = fast
		prvdr.deepModel = deep
	}
}

func WithGoogleSpeechModel(model string) GoogleProviderOption {
	return func(prvdr *GoogleProvider) {
		prvdr.speechModel = model
	}
}

func WithGoogleVoice(voice string) GoogleProviderOption {
	return func(prvdr *GoogleProvider) {
		prvdr.voice = voice
	}
}

func WithGoogleThinkingBudget(budget int32) GoogleProviderOption {
	return func(prvdr *GoogleProvider) {
		prvdr.thinkingBudget = budget
	}
}

func (prvdr *GoogleProvider) Extract(
	ctx context.Context, utterance string, memories []memory.Memory,
) ([]memory.Candidate, error) {
	resp, err := prvdr.client.Models.GenerateContent(
		ctx,
		prvdr.fastModel,
		genai.Text(utterance),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: buildExtractionSystemPrompt(memories)}}},
			ResponseMIMEType:  "application/json",
			ResponseSchema:    extractionSchema,
			Temperature:       genai.Ptr(float32(0.2)),
		},
	)
	if err != nil {
		return nil, err
	}

	candidates, err := parseCandidates(collectText(resp))
	if err != nil {
		return nil, err
	}

	log.Debug("extracted memory candidates", "count", len(candidates))
	return candidates, nil
}

func (prvdr *GoogleProvider) Generate(
	ctx context.Context, req GenerationRequest,
) (GenerationResult, error) {
	model := prvdr.fastModel
	budget := int32(0)

	if req.Thinking {
		model = prvdr.deepModel
		budget = prvdr.thinkingBudget
	}

	resp, err := prvdr.client.Models.GenerateContent(
		ctx,
		model,
		genai.Text(buildGenerationPrompt(req)),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: generationSystemPrompt}}},
			ResponseMIMEType:  "application/json",
			ResponseSchema:    generationSchema,
			ThinkingConfig:    &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(budget)},
		},
	)
	if err != nil {
		return GenerationResult{}, err
	}

	return parseGeneration(collectText(resp))
}

/*
Synthesize asks the speech model for raw PCM audio of the given text. The
payload is 16-bit little-endian mono at 24000 Hz. A response without audio
parts yields a nil payload, not an error.
*/
func (prvdr *GoogleProvider) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := prvdr.client.Models.GenerateContent(
		ctx,
		prvdr.speechModel,
		genai.Text(text),
		&genai.GenerateContentConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &genai.SpeechConfig{
				VoiceConfig: &genai.VoiceConfig{
					PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: prvdr.voice},
				},
			},
		},
	)
	if err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, nil
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data, nil
		}
	}

	return nil, nil
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var text string

	for _, part := range resp.Candidates[0].Content.Parts {
		if len(part.Text) > 0 {
			text += part.Text
		}
	}

	return text
}
