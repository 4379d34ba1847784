package activity

import (
	"strings"
	"time"

	"github.com/alexanderramin/ghgantt/internal/domain"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var parser = newParser()

func newParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// ParseBound reads a range bound as YYYY-MM-DD or as an English phrase
// ("last monday", "2 weeks ago") relative to now. The result is truncated to
// the calendar day in UTC. An empty string yields nil.
func ParseBound(s string, now time.Time) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(domain.DateLayout, s); err == nil {
		return &t, nil
	}

	res, err := parser.Parse(s, now)
	if err != nil {
		return nil, domain.WrapError(domain.KindValidation, "parse date "+s, err)
	}
	if res == nil {
		return nil, domain.Errorf(domain.KindValidation, "parse date",
			"could not understand %q (use YYYY-MM-DD or a phrase like \"last monday\")", s)
	}
	y, m, d := res.Time.Date()
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t, nil
}

// ParseRange parses both bounds and rejects a window that ends before it
// starts.
func ParseRange(since, until string, now time.Time) (Range, error) {
	s, err := ParseBound(since, now)
	if err != nil {
		return Range{}, err
	}
	u, err := ParseBound(until, now)
	if err != nil {
		return Range{}, err
	}
	if s != nil && u != nil && u.Before(*s) {
		return Range{}, domain.Errorf(domain.KindValidation, "parse range",
			"until %s is before since %s", u.Format(domain.DateLayout), s.Format(domain.DateLayout))
	}
	return Range{Since: s, Until: u}, nil
}
