package store

import "fmt"

// Error types for the store package
type (
	// ConnectionError represents a failure to reach the memory service
	ConnectionError struct {
		Message string
		Err     error
	}

	// DecodingError represents a failure to decode a service response
	DecodingError struct {
		Message string
		Err     error
	}

	// RequestError represents a non-success status from the memory service
	RequestError struct {
		StatusCode int
		Message    string
	}

	// AuthError represents a rejected or missing credential
	AuthError struct {
		Message string
	}
)

func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to connect to memory service: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("failed to connect to memory service: %s", e.Message)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func (e *DecodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to decode memory service response: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("failed to decode memory service response: %s", e.Message)
}

func (e *DecodingError) Unwrap() error {
	return e.Err
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("memory service returned non-OK status: %d, body: %s", e.StatusCode, e.Message)
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("memory service rejected credentials: %s", e.Message)
}
