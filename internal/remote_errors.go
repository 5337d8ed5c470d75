package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"unicode/utf8"
)

var ErrRemoteDisabled = errors.New("remote provider not configured")

type RemoteErrorKind int

const (
	RemoteTransport RemoteErrorKind = iota
	RemoteTimeout
	RemoteAuth
	RemoteRateLimited
	RemoteServiceError
	RemoteDisabled
)

func (k RemoteErrorKind) String() string {
	switch k {
	case RemoteTimeout:
		return "timeout"
	case RemoteAuth:
		return "auth_failure"
	case RemoteRateLimited:
		return "rate_limited"
	case RemoteServiceError:
		return "service_error"
	case RemoteDisabled:
		return "disabled"
	default:
		return "transport"
	}
}

// StatusError is a non-2xx answer from a remote provider.
type StatusError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("remote status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("remote status %d", e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// truncateBody shortens a response body to at most n runes.
func truncateBody(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

// RemoteError is a classified remote-call failure.
type RemoteError struct {
	Kind       RemoteErrorKind
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (%d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func ClassifyRemoteError(err error) *RemoteError {
	if err == nil {
		return nil
	}

	var re *RemoteError
	if errors.As(err, &re) {
		return re
	}

	if errors.Is(err, ErrRemoteDisabled) {
		return &RemoteError{Kind: RemoteDisabled, Err: err}
	}

	var se *StatusError
	if errors.As(err, &se) {
		return &RemoteError{Kind: kindForStatus(se.StatusCode), StatusCode: se.StatusCode, Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &RemoteError{Kind: RemoteTimeout, Err: err}
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &RemoteError{Kind: RemoteTimeout, Err: err}
	}

	return &RemoteError{Kind: RemoteTransport, Err: err}
}

func kindForStatus(code int) RemoteErrorKind {
	switch code {
	case http.StatusUnauthorized:
		return RemoteAuth
	case http.StatusTooManyRequests:
		return RemoteRateLimited
	default:
		return RemoteServiceError
	}
}

var remoteMessages = map[RemoteErrorKind]string{
	RemoteTimeout:      "⏰ Request timeout. Please try again.",
	RemoteAuth:         "🔐 API Authentication Error. Please check API configuration.",
	RemoteRateLimited:  "📊 API Rate Limit Exceeded. Please try again after some time.",
	RemoteServiceError: "🔧 API Error: %d",
	RemoteTransport:    "⚠️ Temporary technical issue. Please try again in a moment.",
	RemoteDisabled:     "🔐 AI service is not configured. Answering from local knowledge only.",
}

// RemoteMessage translates a remote-call failure into the user-facing apology.
func RemoteMessage(err error) string {
	re := ClassifyRemoteError(err)
	if re == nil {
		return ""
	}
	if re.Kind == RemoteServiceError {
		return fmt.Sprintf(remoteMessages[RemoteServiceError], re.StatusCode)
	}
	return remoteMessages[re.Kind]
}
