package turn

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/echomind-ai/echomind/pkg/audio"
	"github.com/echomind-ai/echomind/pkg/memory"
	"github.com/echomind-ai/echomind/pkg/provider"
	"github.com/echomind-ai/echomind/pkg/state"
)

/*
Store is the slice of the memory service the pipeline needs: persist one
candidate, list everything, delete one.
*/
type Store interface {
	Create(candidate memory.Candidate) (memory.Memory, error)
	List() ([]memory.Memory, error)
	Delete(id string) error
}

/*
Orchestrator runs the turn pipeline: one utterance in, extracted memories
persisted, a personalized reply generated, and the reply spoken, with the
processing state machine tracking every stage.

One turn at a time. The client-side memory mirror, the transcript, the
highlight set, and the "new memory" flag are all owned here and read by the
UI through snapshot accessors.
*/
type Orchestrator struct {
	store       Store
	extractor   provider.Extractor
	generator   provider.Generator
	synthesizer provider.Synthesizer
	player      audio.Engine
	machine     *state.Machine

	highlightTTL time.Duration
	notify       func()

	mu        sync.Mutex
	inFlight  bool
	turnCount int

	transcript  []memory.Message
	mirror      *memory.Mirror
	newMemoryID string
	activeIDs   []string
	highlight   *time.Timer
}

type OrchestratorOption func(*Orchestrator)

/*
WithHighlightTTL overrides how long a freshly persisted memory keeps its
"new" flag. The default is 3 seconds.
*/
func WithHighlightTTL(ttl time.Duration) OrchestratorOption {
	return func(orch *Orchestrator) {
		orch.highlightTTL = ttl
	}
}

/*
WithNotify registers a callback fired after every observable change, so a UI
can re-render without polling.
*/
func WithNotify(notify func()) OrchestratorOption {
	return func(orch *Orchestrator) {
		orch.notify = notify
	}
}

func WithSynthesizer(synthesizer provider.Synthesizer) OrchestratorOption {
	return func(orch *Orchestrator) {
		orch.synthesizer = synthesizer
	}
}

func WithPlayer(player audio.Engine) OrchestratorOption {
	return func(orch *Orchestrator) {
		orch.player = player
	}
}

func NewOrchestrator(
	store Store,
	extractor provider.Extractor,
	generator provider.Generator,
	machine *state.Machine,
	options ...OrchestratorOption,
) *Orchestrator {
	orch := &Orchestrator{
		store:        store,
		extractor:    extractor,
		generator:    generator,
		machine:      machine,
		highlightTTL: 3 * time.Second,
		notify:       func() {},
		mirror:       memory.NewMirror(nil),
	}

	for _, option := range options {
		option(orch)
	}

	return orch
}

/*
Seed loads the user's memories from the store into the mirror. The store's
ordering is not trusted; the mirror re-sorts on createdAt descending.
*/
func (orch *Orchestrator) Seed() error {
	memories, err := orch.store.List()
	if err != nil {
		return err
	}

	orch.mu.Lock()
	orch.mirror = memory.NewMirror(memories)
	orch.mu.Unlock()

	orch.notify()
	return nil
}

/*
ProcessTurn runs one full turn for the given utterance. It blocks until the
spoken reply finishes playing and returns ErrTurnInFlight, without touching
any state, when another turn is still running.

Extraction and persistence failures never fail the turn: a failed extraction
means no new memories, a failed persist skips that one candidate. Generation
failure degrades to a fixed fallback reply, which is still spoken.
*/
func (orch *Orchestrator) ProcessTurn(ctx context.Context, utterance string) error {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return ErrEmptyUtterance
	}

	orch.mu.Lock()
	if orch.inFlight {
		orch.mu.Unlock()
		return ErrTurnInFlight
	}
	orch.inFlight = true
	orch.turnCount++
	turn := orch.turnCount
	orch.mu.Unlock()

	defer func() {
		orch.mu.Lock()
		orch.inFlight = false
		orch.mu.Unlock()
	}()

	orch.appendMessage(memory.Message{
		ID:        uuid.NewString(),
		Role:      "user",
		Content:   utterance,
		Timestamp: time.Now(),
	})

	orch.machine.BeginExtraction()
	orch.notify()

	orch.extractAndPersist(ctx, utterance, turn)

	orch.machine.BeginGeneration()
	orch.notify()

	result := orch.generate(ctx, utterance)

	orch.mu.Lock()
	orch.activeIDs = append([]string{}, result.UsedMemoryIDs...)
	for _, id := range result.UsedMemoryIDs {
		orch.mirror.Touch(id, turn)
	}
	orch.mu.Unlock()

	orch.appendMessage(memory.Message{
		ID:               uuid.NewString(),
		Role:             "assistant",
		Content:          result.Text,
		Timestamp:        time.Now(),
		RelatedMemoryIDs: result.UsedMemoryIDs,
		Reasoning:        result.Reasoning,
	})

	orch.machine.BeginSpeech()
	orch.notify()

	orch.speak(ctx, result.Text)

	orch.mu.Lock()
	orch.activeIDs = nil
	orch.mu.Unlock()

	orch.machine.Finish()
	orch.notify()

	return nil
}

/*
extractAndPersist runs the extraction stage: the extractor sees the current
mirror snapshot so it can skip facts already stored, and every candidate it
returns is persisted individually, prepended to the mirror, and flagged as
the newest memory. The flag holds only the last persisted candidate's id and
expires on a timer; arming a new timer stops the previous one first, so a
stale turn can never clear a newer flag.
*/
func (orch *Orchestrator) extractAndPersist(ctx context.Context, utterance string, turn int) {
	orch.mu.Lock()
	known := orch.mirror.Snapshot()
	orch.mu.Unlock()

	candidates, err := orch.extractor.Extract(ctx, utterance, known)
	if err != nil {
		log.Error("memory extraction failed, continuing turn", "error", err)
		return
	}

	saved := 0

	for _, candidate := range candidates {
		candidate.Content = strings.TrimSpace(candidate.Content)
		if candidate.Content == "" {
			continue
		}

		created, err := orch.store.Create(candidate)
		if err != nil {
			log.Error("failed to persist memory, skipping candidate", "error", err)
			continue
		}

		created.OriginTurn = turn

		orch.mu.Lock()
		orch.mirror.Prepend(created)
		orch.newMemoryID = created.ID
		orch.mu.Unlock()

		saved++
		orch.notify()
	}

	if saved == 0 {
		return
	}

	orch.mu.Lock()
	if orch.highlight != nil {
		orch.highlight.Stop()
	}
	orch.highlight = time.AfterFunc(orch.highlightTTL, func() {
		orch.mu.Lock()
		orch.newMemoryID = ""
		orch.mu.Unlock()
		orch.notify()
	})
	orch.mu.Unlock()

	log.Info("persisted memories", "count", saved)
}

func (orch *Orchestrator) generate(ctx context.Context, utterance string) provider.GenerationResult {
	orch.mu.Lock()
	memories := orch.mirror.Snapshot()
	orch.mu.Unlock()

	result, err := orch.generator.Generate(ctx, provider.GenerationRequest{
		Utterance: utterance,
		Memories:  memories,
		Thinking:  orch.machine.Snapshot().UseThinking,
	})
	if err != nil {
		log.Error("generation failed, using fallback reply", "error", err)
		return provider.FailureResult()
	}

	return result
}

/*
speak synthesizes and plays the reply. Every failure here is terminal for
the speech stage only: no audio, a bad payload, or a playback error all log
and move on, so the turn always completes.
*/
func (orch *Orchestrator) speak(ctx context.Context, text string) {
	if orch.synthesizer == nil || orch.player == nil {
		return
	}

	payload, err := orch.synthesizer.Synthesize(ctx, text)
	if err != nil {
		log.Error("speech synthesis failed, skipping playback", "error", err)
		return
	}

	if len(payload) == 0 {
		return
	}

	samples, err := audio.DecodePCM16(payload)
	if err != nil {
		log.Error("invalid speech payload, skipping playback", "error", err)
		return
	}

	if err := orch.player.Play(ctx, samples); err != nil {
		log.Error("audio playback failed", "error", err)
	}
}

func (orch *Orchestrator) appendMessage(msg memory.Message) {
	orch.mu.Lock()
	orch.transcript = append(orch.transcript, msg)
	orch.mu.Unlock()

	orch.notify()
}

/*
SetFeedback records a user verdict on an assistant message. Messages are
otherwise append-only; this is the one field that may change after the fact.
*/
func (orch *Orchestrator) SetFeedback(messageID string, feedback memory.Feedback) error {
	orch.mu.Lock()
	defer orch.mu.Unlock()

	for i := range orch.transcript {
		if orch.transcript[i].ID != messageID {
			continue
		}

		if orch.transcript[i].Role != "assistant" {
			return ErrNotAssistantMessage
		}

		orch.transcript[i].Feedback = feedback
		return nil
	}

	return ErrUnknownMessage
}

/*
DeleteMemory removes one memory from the store and the mirror.
*/
func (orch *Orchestrator) DeleteMemory(id string) error {
	if err := orch.store.Delete(id); err != nil {
		return err
	}

	orch.mu.Lock()
	orch.mirror.Remove(id)
	if orch.newMemoryID == id {
		orch.newMemoryID = ""
	}
	orch.mu.Unlock()

	orch.notify()
	return nil
}

/*
ClearMemories deletes every mirrored memory as individual deletes, keeping
going past failures so a partial clear removes as much as it can.
*/
func (orch *Orchestrator) ClearMemories() error {
	orch.mu.Lock()
	memories := orch.mirror.Snapshot()
	orch.mu.Unlock()

	var firstErr error

	for _, mem := range memories {
		if err := orch.DeleteMemory(mem.ID); err != nil {
			log.Error("failed to delete memory during clear", "id", mem.ID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

func (orch *Orchestrator) ToggleThinking() {
	orch.machine.ToggleThinking()
	orch.notify()
}

func (orch *Orchestrator) State() state.Snapshot {
	return orch.machine.Snapshot()
}

func (orch *Orchestrator) Transcript() []memory.Message {
	orch.mu.Lock()
	defer orch.mu.Unlock()

	return append([]memory.Message{}, orch.transcript...)
}

func (orch *Orchestrator) Memories() []memory.Memory {
	orch.mu.Lock()
	defer orch.mu.Unlock()

	return orch.mirror.Snapshot()
}

/*
NewMemoryID reports the id of the most recently persisted memory, or empty
once the highlight expired.
*/
func (orch *Orchestrator) NewMemoryID() string {
	orch.mu.Lock()
	defer orch.mu.Unlock()

	return orch.newMemoryID
}

/*
ActiveMemoryIDs reports the memories the current reply was grounded on. The
set empties again when the turn completes.
*/
func (orch *Orchestrator) ActiveMemoryIDs() []string {
	orch.mu.Lock()
	defer orch.mu.Unlock()

	return append([]string{}, orch.activeIDs...)
}
