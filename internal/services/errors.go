package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNoJSONObject means the model reply held no {...} span at all.
	ErrNoJSONObject = errors.New("no JSON object found in model response")

	ErrMissingAPIKey = errors.New("Gemini API key is not configured")
)

// ValidationError is a malformed or missing request field. Its message is
// safe to return to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ParseError means the model answered but not with the structured span an
// operation expects.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse model response: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UpstreamError wraps image fetch and Gemini transport failures.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream call failed: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
