package reasoning

import (
	"errors"
	"fmt"
)

// Action is the reasoning service's verdict for one scene object.
type Action string

const (
	ActionTransform Action = "transform"
	ActionPreserve  Action = "preserve"
)

// Rationales attached to fallback decisions.
const (
	RationaleServiceUnavailable = "LLM Service Unavailable"
	RationaleInvalidResponse    = "LLM returned invalid JSON"
)

// Decision is the structured answer for one object. Empty strings and a nil
// Confidence mean the service did not supply the field.
type Decision struct {
	Action       Action   `json:"action"`
	TargetObject string   `json:"target_object,omitempty"`
	Rationale    string   `json:"rationale,omitempty"`
	Confidence   *float64 `json:"confidence,omitempty"`
}

// ErrorKind classifies why a decision was not produced by the service.
type ErrorKind int

const (
	// KindServiceUnavailable: transport failures persisted through every attempt.
	KindServiceUnavailable ErrorKind = iota + 1

	// KindInvalidResponse: the service answered with content that is not a JSON object.
	KindInvalidResponse

	// KindUnexpected: any other failure inside the adapter.
	KindUnexpected
)

func (k ErrorKind) String() string {
	switch k {
	case KindServiceUnavailable:
		return "service-unavailable"
	case KindInvalidResponse:
		return "invalid-response"
	case KindUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

var (
	ErrServiceUnavailable = errors.New("reasoning: service unavailable")
	ErrInvalidResponse    = errors.New("reasoning: invalid service response")
	ErrUnexpected         = errors.New("reasoning: unexpected error")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindServiceUnavailable:
		return ErrServiceUnavailable
	case KindInvalidResponse:
		return ErrInvalidResponse
	default:
		return ErrUnexpected
	}
}

// ServiceError describes a failed reasoning call. It matches the sentinel for
// its kind through errors.Is.
type ServiceError struct {
	Kind     ErrorKind
	Attempts int
	Err      error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("%v after %d attempts: %v", e.Kind.sentinel(), e.Attempts, e.Err)
	}
	return fmt.Sprintf("%v: %v", e.Kind.sentinel(), e.Err)
}

// Unwrap exposes the kind sentinel and the underlying cause.
func (e *ServiceError) Unwrap() []error {
	return []error{e.Kind.sentinel(), e.Err}
}

// Result always carries a usable Decision. Err is set when the decision is a
// fallback rather than the service's own answer.
type Result struct {
	Decision Decision
	Err      *ServiceError
}

// Failed reports whether the decision is a fallback.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Decided wraps a decision returned by the service.
func Decided(d Decision) Result {
	return Result{Decision: d}
}

// Unavailable is the safe default after retries are exhausted.
func Unavailable(err error, attempts int) Result {
	return Result{
		Decision: Decision{Action: ActionPreserve, Rationale: RationaleServiceUnavailable},
		Err:      &ServiceError{Kind: KindServiceUnavailable, Attempts: attempts, Err: err},
	}
}

// Invalid is the safe default for an unparseable service answer.
func Invalid(err error) Result {
	return Result{
		Decision: Decision{Action: ActionPreserve, Rationale: RationaleInvalidResponse},
		Err:      &ServiceError{Kind: KindInvalidResponse, Attempts: 1, Err: err},
	}
}

// Unexpected carries an empty decision, which callers treat as preserve.
func Unexpected(err error) Result {
	return Result{
		Err: &ServiceError{Kind: KindUnexpected, Attempts: 1, Err: err},
	}
}
