package github

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrUnavailable indicates the API host is unreachable.
	ErrUnavailable = errors.New("github api unavailable")

	// ErrTimeout indicates a request exceeded the configured timeout.
	ErrTimeout = errors.New("github request timed out")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("github retry attempts exhausted")

	// ErrNotFound indicates the addressed resource does not exist or is not
	// visible to the token.
	ErrNotFound = errors.New("github resource not found")

	// ErrProjectNotFound indicates neither an organization nor a user owns
	// the requested project number.
	ErrProjectNotFound = errors.New("project not found")
)

// RateLimitError is returned when GitHub refuses a request for quota
// reasons, either primary or secondary limits.
type RateLimitError struct {
	Message    string
	ResetAt    time.Time
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	var b strings.Builder
	b.WriteString("github rate limit exceeded")
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if !e.ResetAt.IsZero() {
		fmt.Fprintf(&b, " (resets at %s)", e.ResetAt.Local().Format(time.Kitchen))
	} else if e.RetryAfter > 0 {
		fmt.Fprintf(&b, " (retry after %s)", e.RetryAfter)
	}
	return b.String()
}

// AuthError reports a rejected or missing token.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("github auth error (%d): %s", e.StatusCode, e.Message)
}

// StatusError is any other non-2xx REST response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d on %s %s: %s", e.StatusCode, e.Method, e.Path, e.Message)
}

func (e *StatusError) Unwrap() error {
	if e.StatusCode == 404 {
		return ErrNotFound
	}
	return nil
}

// GraphQLErrorEntry is one element of a GraphQL "errors" array.
type GraphQLErrorEntry struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// GraphQLError carries the errors array of a GraphQL response.
type GraphQLError struct {
	Errors []GraphQLErrorEntry
}

func (e *GraphQLError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, entry := range e.Errors {
		msgs[i] = entry.Message
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

func (e *GraphQLError) Is(target error) bool {
	return target == ErrNotFound && e.hasType("NOT_FOUND")
}

func (e *GraphQLError) hasType(t string) bool {
	for _, entry := range e.Errors {
		if entry.Type == t {
			return true
		}
	}
	return false
}

// IsRateLimit reports whether err (or any error in its chain) is a RateLimitError.
func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsNotFound reports whether err denotes a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsFatal reports whether err must end a sync pass instead of being
// recorded against a single item.
func IsFatal(err error) bool {
	return IsRateLimit(err) || IsAuthError(err) || errors.Is(err, ErrUnavailable)
}
