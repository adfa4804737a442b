package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMachineVisitsStagesInOrder(t *testing.T) {
	var phases []Phase
	machine := NewMachine(WithObserver(func(s Snapshot) {
		phases = append(phases, s.Phase())
	}))

	machine.BeginExtraction()
	machine.BeginGeneration()
	machine.BeginSpeech()
	machine.Finish()

	assert.Equal(t, []Phase{PhaseExtracting, PhaseGenerating, PhaseSpeaking, PhaseIdle}, phases)
}

func TestMachineNeverShowsTwoStageFlags(t *testing.T) {
	machine := NewMachine(WithObserver(func(s Snapshot) {
		set := 0
		for _, flag := range []bool{s.IsExtractingMemory, s.IsGeneratingResponse, s.IsSpeaking} {
			if flag {
				set++
			}
		}
		assert.LessOrEqual(t, set, 1)
	}))

	machine.BeginExtraction()
	machine.BeginGeneration()
	machine.BeginSpeech()
	machine.Finish()
}

func TestThinkingIsOrthogonal(t *testing.T) {
	machine := NewMachine()

	assert.True(t, machine.ToggleThinking())
	machine.BeginExtraction()
	machine.BeginGeneration()

	snap := machine.Snapshot()
	assert.True(t, snap.UseThinking)
	assert.Equal(t, PhaseGenerating, snap.Phase())

	machine.SetThinking(false)
	assert.False(t, machine.Snapshot().UseThinking)
	assert.Equal(t, PhaseGenerating, machine.Snapshot().Phase())
}

func TestListeningPhase(t *testing.T) {
	machine := NewMachine()

	machine.SetListening(true)
	assert.Equal(t, PhaseListening, machine.Snapshot().Phase())

	machine.SetListening(false)
	assert.Equal(t, PhaseIdle, machine.Snapshot().Phase())
}
