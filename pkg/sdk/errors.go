package jarvis

import "github.com/kailas-cloud/jarvis/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidInput           = domain.ErrInvalidInput
	ErrNotFound               = domain.ErrNotFound
	ErrRateLimited            = domain.ErrRateLimited
	ErrQuotaExceeded          = domain.ErrQuotaExceeded
	ErrEngineTimeout          = domain.ErrEngineTimeout
	ErrReasoningProviderError = domain.ErrReasoningProviderError
	ErrUpstreamUnavailable    = domain.ErrUpstreamUnavailable
)
