package provider

import (
	"context"
	"errors"
	"net"
	"regexp"
	"strconv"
)

// ErrorType classifies a send failure for retry/circuit-breaker decisions.
type ErrorType string

const (
	// ErrorTypeRecipient indicates the failure is specific to this
	// recipient (invalid number, unsubscribed on the carrier side). It
	// should not count toward a circuit breaker: the provider is fine.
	ErrorTypeRecipient ErrorType = "recipient"

	// ErrorTypeProvider indicates an infrastructure-level failure (auth,
	// rate limit, outage) that affects every send, not just this one.
	ErrorTypeProvider ErrorType = "provider"

	// ErrorTypeUnknown is the conservative default: treated as a provider
	// error so an unrecognized failure mode still trips circuit breaking.
	ErrorTypeUnknown ErrorType = "unknown"
)

// ClassifiedError wraps a send error with enough metadata for the
// Orchestrator to decide whether to retry, count it toward circuit
// breaking, or simply record it against the Message.
type ClassifiedError struct {
	Original   error
	Type       ErrorType
	HTTPStatus int
	Code       string
	Retryable  bool
}

func (e *ClassifiedError) Error() string {
	if e.Original == nil {
		return ""
	}
	return e.Original.Error()
}

func (e *ClassifiedError) Unwrap() error {
	return e.Original
}

// ShouldTriggerCircuitBreaker reports whether this failure should count
// toward the provider circuit breaker's threshold.
func (e *ClassifiedError) ShouldTriggerCircuitBreaker() bool {
	return e.Type == ErrorTypeProvider || e.Type == ErrorTypeUnknown
}

var (
	httpStatusRegex = regexp.MustCompile(`(?i)status[_\s]code[:\s]*(\d{3})`)
	bracketStatusRegex = regexp.MustCompile(`[\[(](\d{3})[\])]`)
)

func extractHTTPStatus(errStr string) int {
	if matches := httpStatusRegex.FindStringSubmatch(errStr); len(matches) >= 2 {
		if status, err := strconv.Atoi(matches[1]); err == nil {
			return status
		}
	}
	if matches := bracketStatusRegex.FindStringSubmatch(errStr); len(matches) >= 2 {
		if status, err := strconv.Atoi(matches[1]); err == nil {
			return status
		}
	}
	return 0
}

// classifyByHTTPStatus maps a provider's HTTP status to an ErrorType.
func classifyByHTTPStatus(status int) (ErrorType, bool) {
	switch {
	case status == 400 || status == 404:
		// malformed recipient number or unknown phone: Twilio returns
		// these for the recipient-specific 2100x error family.
		return ErrorTypeRecipient, false
	case status == 429:
		return ErrorTypeProvider, true
	case status >= 500:
		return ErrorTypeProvider, true
	case status == 401 || status == 403:
		return ErrorTypeProvider, false
	default:
		return ErrorTypeUnknown, false
	}
}

// isTimeout reports whether err is (or wraps) a bounded-timeout failure:
// the request's context deadline expiring, or the transport's own
// net.Error reporting Timeout(). Neither ever renders a 3-digit HTTP
// status into err.Error(), so extractHTTPStatus alone would never catch
// them.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Classify analyzes a send error and returns classification metadata.
func Classify(err error) *ClassifiedError {
	if err == nil {
		return nil
	}
	if isTimeout(err) {
		return &ClassifiedError{Original: err, Type: ErrorTypeProvider, Code: "TIMEOUT", Retryable: true}
	}
	errStr := err.Error()
	httpStatus := extractHTTPStatus(errStr)

	result := &ClassifiedError{Original: err, HTTPStatus: httpStatus}
	if httpStatus > 0 {
		result.Type, result.Retryable = classifyByHTTPStatus(httpStatus)
		return result
	}
	result.Type = ErrorTypeUnknown
	result.Retryable = true
	return result
}
