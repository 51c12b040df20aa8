package upstream

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel kinds every upstream failure is classified into.
var (
	ErrAuth        = errors.New("invalid api key")
	ErrRateLimited = errors.New("rate limited")
	ErrFetch       = errors.New("fetch failed")
	ErrNetwork     = errors.New("upstream unreachable")
)

// Error describes a failed call to a third-party API.
type Error struct {
	Kind     error
	Provider string
	Status   int
	Message  string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Provider)
	b.WriteString(": ")
	if e.Message != "" {
		b.WriteString(e.Message)
	} else {
		b.WriteString(e.Kind.Error())
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is matches the error kind so callers can use errors.Is(err, upstream.ErrAuth).
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusError classifies a non-2xx status. Messages may override the
// default text for specific statuses (e.g. 403 on plan-restricted keys).
func StatusError(provider string, status int, body []byte, messages map[int]string) *Error {
	e := &Error{Provider: provider, Status: status, Message: messages[status]}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		e.Kind = ErrAuth
		if status == http.StatusForbidden && e.Message == "" {
			e.Kind = ErrFetch
		}
	case http.StatusTooManyRequests:
		e.Kind = ErrRateLimited
	default:
		e.Kind = ErrFetch
	}
	if e.Message == "" {
		e.Message = defaultMessage(e.Kind)
	}
	if snippet := ResponseSnippet(body); snippet != "<empty>" && e.Kind == ErrFetch {
		e.Err = errors.New(snippet)
	}
	return e
}

// NetworkError wraps a transport failure.
func NetworkError(provider string, err error) *Error {
	return &Error{Kind: ErrNetwork, Provider: provider, Message: defaultMessage(ErrNetwork), Err: err}
}

// DecodeError reports an undecodable success response.
func DecodeError(provider string, err error) *Error {
	return &Error{Kind: ErrFetch, Provider: provider, Message: "unexpected response payload", Err: err}
}

func defaultMessage(kind error) string {
	switch kind {
	case ErrAuth:
		return "invalid API key, check the key configured in preferences"
	case ErrRateLimited:
		return "API rate limit exceeded, try again later"
	case ErrNetwork:
		return "service unreachable"
	default:
		return "failed to fetch data"
	}
}

// ResponseSnippet returns a truncated snippet of the response body for logging.
func ResponseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}

// UserMessage returns the text shown to end users for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ue *Error
	if errors.As(err, &ue) && ue.Message != "" {
		return ue.Message
	}
	return err.Error()
}
