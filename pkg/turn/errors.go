package turn

import "errors"

var (
	// ErrTurnInFlight is returned when a turn starts while another is running.
	ErrTurnInFlight = errors.New("a turn is already being processed")

	// ErrEmptyUtterance is returned for blank input; no turn starts.
	ErrEmptyUtterance = errors.New("utterance is empty")

	// ErrUnknownMessage is returned when feedback targets a message id that
	// does not exist in the transcript.
	ErrUnknownMessage = errors.New("message not found")

	// ErrNotAssistantMessage is returned when feedback targets a user message.
	ErrNotAssistantMessage = errors.New("feedback applies to assistant messages only")
)
