package state

import (
	"sync"
)

/*
Snapshot is one process-wide view of pipeline progress. The four stage flags
are driven solely by stage completion inside a turn; UseThinking is a
user-controlled toggle orthogonal to the rest.
*/
type Snapshot struct {
	IsListening          bool `json:"isListening"`
	IsExtractingMemory   bool `json:"isExtractingMemory"`
	IsGeneratingResponse bool `json:"isGeneratingResponse"`
	IsSpeaking           bool `json:"isSpeaking"`
	UseThinking          bool `json:"useThinking"`
}

/*
Phase names the stage implied by the flags that are currently set.
*/
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseListening  Phase = "listening"
	PhaseExtracting Phase = "extracting"
	PhaseGenerating Phase = "generating"
	PhaseSpeaking   Phase = "speaking"
)

/*
Phase derives the current stage. At most one stage flag is set at a time
outside the momentary handoffs, so the first match wins.
*/
func (s Snapshot) Phase() Phase {
	switch {
	case s.IsListening:
		return PhaseListening
	case s.IsExtractingMemory:
		return PhaseExtracting
	case s.IsGeneratingResponse:
		return PhaseGenerating
	case s.IsSpeaking:
		return PhaseSpeaking
	default:
		return PhaseIdle
	}
}

/*
Machine owns the processing state and exposes the narrow set of transitions
the pipeline performs. It is never shared as ambient global state; the
orchestrator holds it and everything else observes snapshots.
*/
type Machine struct {
	mu       sync.RWMutex
	snap     Snapshot
	onChange func(Snapshot)
}

type MachineOption func(*Machine)

/*
WithObserver registers a callback invoked after every transition with the
resulting snapshot. Used by the UI layer; may be nil.
*/
func WithObserver(fn func(Snapshot)) MachineOption {
	return func(m *Machine) {
		m.onChange = fn
	}
}

func NewMachine(options ...MachineOption) *Machine {
	m := &Machine{}

	for _, option := range options {
		option(m)
	}

	return m
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

func (m *Machine) SetListening(listening bool) {
	m.apply(func(s *Snapshot) { s.IsListening = listening })
}

/*
BeginExtraction marks the start of the extraction stage.
*/
func (m *Machine) BeginExtraction() {
	m.apply(func(s *Snapshot) { s.IsExtractingMemory = true })
}

/*
BeginGeneration hands off from extraction to generation in one transition so
no observer ever sees both flags down between stages.
*/
func (m *Machine) BeginGeneration() {
	m.apply(func(s *Snapshot) {
		s.IsExtractingMemory = false
		s.IsGeneratingResponse = true
	})
}

/*
BeginSpeech hands off from generation to the speech stage.
*/
func (m *Machine) BeginSpeech() {
	m.apply(func(s *Snapshot) {
		s.IsGeneratingResponse = false
		s.IsSpeaking = true
	})
}

/*
Finish returns the machine to idle at the end of a turn.
*/
func (m *Machine) Finish() {
	m.apply(func(s *Snapshot) { s.IsSpeaking = false })
}

func (m *Machine) SetThinking(enabled bool) {
	m.apply(func(s *Snapshot) { s.UseThinking = enabled })
}

func (m *Machine) ToggleThinking() bool {
	var enabled bool
	m.apply(func(s *Snapshot) {
		s.UseThinking = !s.UseThinking
		enabled = s.UseThinking
	})
	return enabled
}

func (m *Machine) apply(mutate func(*Snapshot)) {
	m.mu.Lock()
	mutate(&m.snap)
	snap := m.snap
	m.mu.Unlock()

	if m.onChange != nil {
		m.onChange(snap)
	}
}
