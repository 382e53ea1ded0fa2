package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

var (
	// ErrLLMTimeout is returned when an LLM call runs past its deadline.
	ErrLLMTimeout = errors.New("llm request timed out")
	// ErrMalformedResponse matches every *MalformedResponseError.
	ErrMalformedResponse = errors.New("malformed llm response")
)

// LLMError is a failed LLM call. Status is the upstream HTTP code when one
// was reported.
type LLMError struct {
	Status int
	Detail string
	Cause  error
}

func (e *LLMError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("llm request failed (%d): %s", e.Status, e.Detail)
	}
	return "llm request failed: " + e.Detail
}

func (e *LLMError) Unwrap() error { return e.Cause }

// MalformedResponseError is a reply that could not be parsed or did not
// match the expected shape. Stage names the call that produced it.
type MalformedResponseError struct {
	Stage string
	Cause error
}

func (e *MalformedResponseError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("malformed %s response", e.Stage)
	}
	return fmt.Sprintf("malformed %s response: %v", e.Stage, e.Cause)
}

func (e *MalformedResponseError) Unwrap() error { return e.Cause }

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

type FieldError struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

// ValidationError lists the schema violations found in an LLM reply.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Description)
	}
	return "schema validation failed: " + strings.Join(parts, "; ")
}

// classifyLLMError maps a client error onto the error kinds callers handle.
func classifyLLMError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrLLMTimeout, err)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		detail := apiErr.Message
		if detail == "" {
			detail = apiErr.Status
		}
		return &LLMError{Status: apiErr.Code, Detail: detail, Cause: err}
	}

	var llmErr *LLMError
	if errors.As(err, &llmErr) {
		return llmErr
	}
	return &LLMError{Detail: err.Error(), Cause: err}
}

func isRateLimited(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429
	}
	var llmErr *LLMError
	if errors.As(err, &llmErr) {
		return llmErr.Status == 429
	}
	return false
}

// isTransient reports whether a failed LLM call may succeed if repeated.
func isTransient(err error) bool {
	if errors.Is(err, ErrLLMTimeout) || isRateLimited(err) {
		return true
	}
	var llmErr *LLMError
	return errors.As(err, &llmErr) && llmErr.Status >= 500
}
