package memory

import (
	"time"
)

/*
Type classifies a memory by what kind of durable fact it captures.
*/
type Type string

const (
	TypePreference Type = "preference"
	TypeFact       Type = "fact"
	TypeConstraint Type = "constraint"
	TypeGeneral    Type = "general"
)

/*
Memory is a durable fact about the user. The id is assigned by the store on
creation, never by the client, and existing memories are never mutated in
place: superseding a preference means inserting a new memory.
*/
type Memory struct {
	ID           string    `json:"id"`
	Type         Type      `json:"type"`
	Content      string    `json:"content"`
	Confidence   float64   `json:"confidence"`
	Mood         string    `json:"mood,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	OriginTurn   int       `json:"originTurn,omitempty"`
	LastUsedTurn int       `json:"lastUsedTurn,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

/*
Candidate is a memory proposed by the extraction service. It carries no id:
ids come from the store, not the model.
*/
type Candidate struct {
	Type       Type     `json:"type,omitempty"`
	Content    string   `json:"content"`
	Confidence float64  `json:"confidence,omitempty"`
	Mood       string   `json:"mood,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

/*
Feedback is an optional user verdict attached to an assistant message after
the fact.
*/
type Feedback string

const (
	FeedbackPositive Feedback = "positive"
	FeedbackNegative Feedback = "negative"
)

/*
Message is one turn's conversational artifact. Messages are append-only;
only the Feedback field may be set after creation.
*/
type Message struct {
	ID               string    `json:"id"`
	Role             string    `json:"role"` // "user" or "assistant"
	Content          string    `json:"content"`
	Timestamp        time.Time `json:"timestamp"`
	RelatedMemoryIDs []string  `json:"relatedMemoryIds,omitempty"`
	Reasoning        string    `json:"reasoning,omitempty"`
	Feedback         Feedback  `json:"feedback,omitempty"`
}
