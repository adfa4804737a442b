package memory

import (
	"sort"
)

/*
Mirror is the client-side view of the user's persisted memory set, ordered
most-recent-first. The store remains the source of truth; the mirror is only
ever mutated by the turn orchestrator.
*/
type Mirror struct {
	entries []Memory
}

/*
NewMirror seeds a mirror from a store listing. Server ordering is not
trusted: entries are re-sorted by creation time, newest first.
*/
func NewMirror(entries []Memory) *Mirror {
	sorted := make([]Memory, len(entries))
	copy(sorted, entries)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	return &Mirror{entries: sorted}
}

/*
Prepend puts a freshly persisted memory at the head of the mirror.
*/
func (m *Mirror) Prepend(mem Memory) {
	m.entries = append([]Memory{mem}, m.entries...)
}

/*
Remove drops the memory with the given id. Removing an unknown id is a no-op,
mirroring the store's idempotent delete.
*/
func (m *Mirror) Remove(id string) {
	for i, mem := range m.entries {
		if mem.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return
		}
	}
}

/*
Touch records that a memory informed the reply of the given turn.
*/
func (m *Mirror) Touch(id string, turn int) {
	for i := range m.entries {
		if m.entries[i].ID == id {
			m.entries[i].LastUsedTurn = turn
			return
		}
	}
}

/*
Clear empties the mirror.
*/
func (m *Mirror) Clear() {
	m.entries = nil
}

/*
Snapshot returns a copy of the current entries, head first.
*/
func (m *Mirror) Snapshot() []Memory {
	out := make([]Memory, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *Mirror) Len() int {
	return len(m.entries)
}

/*
Head returns the most recent memory, if any.
*/
func (m *Mirror) Head() (Memory, bool) {
	if len(m.entries) == 0 {
		return Memory{}, false
	}
	return m.entries[0], true
}
