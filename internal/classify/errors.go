package classify

import "fmt"

// FailureReason names why a post could not be classified. These are the only
// hard failures the adapter produces; malformed individual fields degrade to
// absent candidate fields instead.
type FailureReason string

const (
	ReasonTimeout      FailureReason = "timeout"
	ReasonMalformed    FailureReason = "malformed-response"
	ReasonUnavailable  FailureReason = "service-unavailable"
	ReasonLowRelevance FailureReason = "low-relevance"
)

// Error is returned by Classify when no candidate could be produced. The
// pipeline maps it to a Rejected outcome; it is never retried at this layer.
type Error struct {
	Reason FailureReason
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("classification failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("classification failed (%s)", e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func failure(reason FailureReason, err error) *Error {
	return &Error{Reason: reason, Err: err}
}
