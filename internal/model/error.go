package model

import "fmt"

// ErrorKind categorizes a scoring failure for transport-level mapping.
type ErrorKind string

const (
	// KindBadRequest covers malformed or empty request payloads.
	KindBadRequest ErrorKind = "bad_request"
	// KindNotReady is returned while the service is not in the Ready state.
	KindNotReady ErrorKind = "not_ready"
	// KindInference covers failures inside the inference engine.
	KindInference ErrorKind = "inference"
)

// ScoreError is the tagged failure type returned from scoring. Every
// caller-triggered failure surfaces as one of these rather than a panic or a
// bare string.
type ScoreError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *ScoreError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewScoreError builds a ScoreError with a formatted message.
func NewScoreError(kind ErrorKind, format string, args ...any) *ScoreError {
	return &ScoreError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
