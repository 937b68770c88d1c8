package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput signals a request that fails validation. It is the only
	// chat failure surfaced to clients.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")

	// ErrQuotaExceeded signals an exhausted reasoning engine quota (429, budget, provider quota).
	ErrQuotaExceeded = errors.New("reasoning quota exceeded")
	// ErrRateLimited signals that the local engine call ceiling rejected a call.
	ErrRateLimited = errors.New("rate limited")
	// ErrEngineTimeout signals that a single engine call exceeded its deadline.
	ErrEngineTimeout = errors.New("reasoning engine timeout")
	// ErrReasoningProviderError signals a non-quota reasoning engine failure.
	ErrReasoningProviderError = errors.New("reasoning provider error")
	// ErrMalformedStageOutput signals stage output that could not be interpreted.
	ErrMalformedStageOutput = errors.New("malformed stage output")
	// ErrStageSkipped signals a stage whose dependencies did not succeed.
	ErrStageSkipped = errors.New("stage dependency not satisfied")

	// ErrUpstreamUnavailable signals an unreachable collaborator (document store, cart service).
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// StageError attaches the failing stage name to a pipeline error.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return "stage " + e.Stage + ": " + e.Err.Error() }
func (e *StageError) Unwrap() error { return e.Err }

// NewStageError wraps err with the stage name.
func NewStageError(stage string, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// FailureKind is the closed set of failure categories a pipeline run can end with.
type FailureKind int

const (
	// FailureNone means no error.
	FailureNone FailureKind = iota
	// FailureTransientQuota covers quota, rate-limit and timeout errors. Never retried.
	FailureTransientQuota
	// FailureMalformedOutput covers stage output the normalizer could not read.
	FailureMalformedOutput
	// FailureUpstreamUnavailable covers store and cart outages.
	FailureUpstreamUnavailable
	// FailureInvalidInput covers client validation errors.
	FailureInvalidInput
	// FailureUnclassified covers everything else.
	FailureUnclassified
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureTransientQuota:
		return "transient_quota"
	case FailureMalformedOutput:
		return "malformed_output"
	case FailureUpstreamUnavailable:
		return "upstream_unavailable"
	case FailureInvalidInput:
		return "invalid_input"
	case FailureUnclassified:
		return "unclassified"
	}
	return fmt.Sprintf("failure(%d)", int(k))
}

// quotaSignatures are lowercase fragments providers put in quota/rate errors.
var quotaSignatures = []string{"quota", "rate", "429"}

// Classify maps an error onto a FailureKind. Sentinels win; provider errors
// that only carry a message are matched by signature.
func Classify(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrInvalidInput):
		return FailureInvalidInput
	case errors.Is(err, ErrQuotaExceeded),
		errors.Is(err, ErrRateLimited),
		errors.Is(err, ErrEngineTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return FailureTransientQuota
	case errors.Is(err, ErrMalformedStageOutput):
		return FailureMalformedOutput
	case errors.Is(err, ErrUpstreamUnavailable):
		return FailureUpstreamUnavailable
	case IsQuotaMessage(err.Error()):
		return FailureTransientQuota
	}
	return FailureUnclassified
}

// IsQuotaMessage reports whether msg looks like a provider quota or rate-limit error.
func IsQuotaMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, sig := range quotaSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}
