package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Connectivity failure reasons.
const (
	ReasonTimeout     = "timeout"
	ReasonConnection  = "connection"
	ReasonForbidden   = "forbidden"
	ReasonNotFound    = "not_found"
	ReasonRateLimited = "rate_limited"
	ReasonStatus      = "status"
	ReasonTooLarge    = "too_large"
	ReasonOther       = "other"
)

// Browser session stages reported by RenderError.
const (
	StageLaunch   = "launch"
	StageOpen     = "open"
	StageNavigate = "navigate"
	StageSettle   = "settle"
	StageCapture  = "capture"
)

// ConnectivityError indicates the page could not be retrieved: a timeout,
// a network failure, or a non-success HTTP status.
type ConnectivityError struct {
	URL        string
	Reason     string
	StatusCode int
	Err        error
}

func (e ConnectivityError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Errorf("%s: %s returned status %d: %w", e.Reason, e.URL, e.StatusCode, e.Err).Error()
	}
	return fmt.Errorf("%s: %s: %w", e.Reason, e.URL, e.Err).Error()
}

func (e ConnectivityError) Unwrap() error {
	return e.Err
}

// RenderError indicates the scripted browser session failed.
type RenderError struct {
	URL   string
	Stage string
	Err   error
}

func (e RenderError) Error() string {
	return fmt.Errorf("render %s (%s): %w", e.URL, e.Stage, e.Err).Error()
}

func (e RenderError) Unwrap() error {
	return e.Err
}

// stageError tags a browser session failure with the step that failed.
type stageError struct {
	Stage string
	Err   error
}

func (e stageError) Error() string {
	return fmt.Errorf("%s: %w", e.Stage, e.Err).Error()
}

func (e stageError) Unwrap() error {
	return e.Err
}

func errorTypeLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	var conn ConnectivityError
	if errors.As(err, &conn) {
		return conn.Reason
	}
	var render RenderError
	if errors.As(err, &render) {
		return "render"
	}
	return "other"
}

// classifyError converts a transport error or an HTTP status into a
// ConnectivityError. It returns nil when neither indicates a failure.
func classifyError(url string, err error, statusCode int) error {
	if err == nil && (statusCode == 0 || (statusCode >= 200 && statusCode < 300)) {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ConnectivityError{URL: url, Reason: ReasonTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ConnectivityError{URL: url, Reason: ReasonTimeout, Err: err}
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ConnectivityError{URL: url, Reason: ReasonConnection, Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ConnectivityError{URL: url, Reason: ReasonConnection, Err: err}
	}

	if statusCode != 0 && (statusCode < 200 || statusCode >= 300) {
		wrapped := err
		if wrapped == nil {
			wrapped = fmt.Errorf("http status %d", statusCode)
		}
		reason := ReasonStatus
		switch statusCode {
		case http.StatusForbidden:
			reason = ReasonForbidden
		case http.StatusNotFound:
			reason = ReasonNotFound
		case http.StatusTooManyRequests:
			reason = ReasonRateLimited
		}
		return ConnectivityError{URL: url, Reason: reason, StatusCode: statusCode, Err: wrapped}
	}

	return ConnectivityError{URL: url, Reason: ReasonOther, Err: err}
}
