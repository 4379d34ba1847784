// Package activity selects and renders the issue threads a user took part in.
package activity

import (
	"strings"
	"time"

	"github.com/alexanderramin/ghgantt/internal/domain"
)

// Range bounds an interaction window. Since is inclusive; Until covers the
// whole calendar day. Either may be nil.
type Range struct {
	Since *time.Time
	Until *time.Time
}

func (r Range) IsZero() bool { return r.Since == nil && r.Until == nil }

// Contains reports whether t falls inside the window.
func (r Range) Contains(t time.Time) bool {
	if r.Since != nil && t.Before(*r.Since) {
		return false
	}
	if r.Until != nil && !t.Before(nextDay(*r.Until)) {
		return false
	}
	return true
}

// nextDay is midnight after t, the exclusive end of t's calendar day.
func nextDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}

// UserInteractedInRange reports whether user opened the thread or commented
// on it within r. Logins compare case-insensitively. An unbounded range
// always matches.
func UserInteractedInRange(thread *domain.Thread, user string, r Range) bool {
	if r.IsZero() {
		return true
	}
	if strings.EqualFold(thread.Author, user) && r.Contains(thread.CreatedAt) {
		return true
	}
	for _, c := range thread.Comments {
		if strings.EqualFold(c.Author, user) && r.Contains(c.CreatedAt) {
			return true
		}
	}
	return false
}
