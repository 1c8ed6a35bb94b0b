package model

import (
	"context"
	"fmt"
	"time"
)

// Message is one turn of provider input.
type Message struct {
	Role    string `json:"role"` // system, user or assistant
	Content string `json:"content"`
}

// Request captures the normalized provider input built by the pipeline.
type Request struct {
	Messages    []Message
	Model       string
	Temperature float64
	MaxTokens   int
	// Timeout bounds this single call; the retry executor also applies its
	// own per-attempt deadline, whichever is tighter wins.
	Timeout time.Duration
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the minimal interface the pipeline and classifier drive.
type Model interface {
	Generate(ctx context.Context, req Request) (string, error)

	// Info returns information about the model implementation.
	Info() Info
}

// StatusError carries the upstream HTTP status of a failed provider call.
// It implements the retry executor's StatusCoder interface.
type StatusError struct {
	Status int
	Code   string
	Msg    string
}

func (e *StatusError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("provider status %d: %s", e.Status, e.Msg)
	}
	return fmt.Sprintf("provider status %d", e.Status)
}

// HTTPStatus returns the upstream status code.
func (e *StatusError) HTTPStatus() int { return e.Status }

// NewStatusError builds a StatusError.
func NewStatusError(status int, msg string) *StatusError {
	return &StatusError{Status: status, Msg: msg}
}
