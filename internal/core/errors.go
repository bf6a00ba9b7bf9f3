package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for empty user text.
	ErrInvalidInput = errors.New("invalid input: message is empty")

	// ErrMalformedArguments is returned when tool-call arguments are not a
	// JSON object or lack a required field.
	ErrMalformedArguments = errors.New("malformed tool arguments")

	// ErrInvalidArgument is returned by the search adapter for an empty query.
	ErrInvalidArgument = errors.New("invalid argument: search query is empty")

	// ErrSearchUnavailable is returned when the search provider fails or
	// returns no organic results.
	ErrSearchUnavailable = errors.New("search unavailable")

	// ErrHostedService is matched by every completion call failure.
	ErrHostedService = errors.New("hosted service error")

	// ErrUnknownTool is returned when the model names a tool we never offered.
	ErrUnknownTool = errors.New("unknown tool")
)

// HostedServiceError wraps a failure of the hosted completion service.
type HostedServiceError struct {
	StatusCode   int
	Code         string
	LimitReached bool
	Err          error
}

func (e *HostedServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("hosted service error (%d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("hosted service error: %v", e.Err)
}

func (e *HostedServiceError) Unwrap() error { return e.Err }

func (e *HostedServiceError) Is(target error) bool {
	return target == ErrHostedService
}

// UserMessage renders an error as the sentence shown in the chat surface.
func UserMessage(err error) string {
	var hse *HostedServiceError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "Please type a message first."
	case errors.As(err, &hse) && hse.LimitReached:
		return "Limit reached, please restart the conversation."
	case errors.Is(err, ErrHostedService):
		return "The assistant is unavailable right now, please try again."
	case errors.Is(err, ErrSearchUnavailable):
		return "Web search is unavailable right now, please try again."
	case errors.Is(err, ErrMalformedArguments), errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrUnknownTool):
		return "The assistant made an invalid search request, please rephrase your question."
	default:
		return "Something went wrong, please restart the conversation."
	}
}
