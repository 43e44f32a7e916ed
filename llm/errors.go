// Package llm implements the remote completion transport. Failures are
// classified into typed errors exactly once, at this boundary, so callers
// check errors.Is instead of re-parsing provider error strings.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRateLimited marks quota exhaustion and 429 responses. Pipelines
	// abort on it rather than continuing with garbage input.
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidArgument marks requests the provider rejected as malformed.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPermissionDenied marks credential and access failures.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUnavailable marks transient transport failures, including exceeded
	// per-call deadlines. Callers treat it like a rate limit: retry later.
	ErrUnavailable = errors.New("service unavailable")
)

// classifyStatus converts an HTTP failure into a typed error. The provider's
// status string markers (RESOURCE_EXHAUSTED and friends) are matched here and
// nowhere else.
func classifyStatus(code int, status, body string) error {
	detail := strings.TrimSpace(body)
	if detail == "" {
		detail = status
	}
	text := status + " " + detail
	switch {
	case code == 429 || strings.Contains(text, "RESOURCE_EXHAUSTED"):
		return fmt.Errorf("%w: %s", ErrRateLimited, detail)
	case code == 400 || strings.Contains(text, "INVALID_ARGUMENT"):
		return fmt.Errorf("%w: %s", ErrInvalidArgument, detail)
	case code == 401 || code == 403 || strings.Contains(text, "PERMISSION_DENIED"):
		return fmt.Errorf("%w: %s", ErrPermissionDenied, detail)
	case code >= 500 || strings.Contains(text, "UNAVAILABLE"):
		return fmt.Errorf("%w: %s", ErrUnavailable, detail)
	default:
		return fmt.Errorf("completion request failed: %s", detail)
	}
}

// classifyTransport wraps low-level request errors. Deadline expiry maps to
// ErrUnavailable so the pipeline's retry-later handling covers it.
func classifyTransport(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
