package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// ErrorClass tells the caller what to do with a failed call.
type ErrorClass int

const (
	// ClassPermanent: the model answered but the call cannot succeed as
	// issued. Counts against quota; no cooldown.
	ClassPermanent ErrorClass = iota
	// ClassRetryable: timeout, network error or 5xx. Cool the model down.
	ClassRetryable
	// ClassQuota: the provider rejected the call for rate or quota (429).
	ClassQuota
)

func (c ErrorClass) String() string {
	switch c {
	case ClassRetryable:
		return "retryable"
	case ClassQuota:
		return "quota"
	default:
		return "permanent"
	}
}

// ErrUnusableResponse marks a reply that arrived but could not be used,
// such as an empty completion or text that fails validation.
var ErrUnusableResponse = errors.New("unusable response")

// StatusError is a non-2xx HTTP reply from a provider.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, body)
}

// ClassifyError maps a provider error onto an ErrorClass.
func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ClassPermanent
	}
	if errors.Is(err, ErrUnusableResponse) {
		return ClassPermanent
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassRetryable
	}

	if code, ok := statusCode(err); ok {
		switch {
		case code == http.StatusTooManyRequests:
			return ClassQuota
		case code >= 500, code == http.StatusRequestTimeout:
			return ClassRetryable
		default:
			return ClassPermanent
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ClassRetryable
	}

	// Unknown transport failures are treated as transient.
	return ClassRetryable
}

func statusCode(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode, true
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return apiErr.HTTPStatusCode, true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return reqErr.HTTPStatusCode, true
	}
	return 0, false
}
