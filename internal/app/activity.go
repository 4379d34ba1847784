package app

import (
	"time"

	"github.com/alexanderramin/ghgantt/internal/domain"
)

type FetchThreadRequest struct {
	Owner     string
	Repo      string
	Number    int
	OutputDir string
}

type FetchThreadResult struct {
	Thread *domain.Thread
	Path   string
}

type UserIssuesRequest struct {
	User  string
	Org   string
	State string // open, closed or all
	Since *time.Time
	Until *time.Time
	Delay time.Duration

	// ExcludeStatus drops issues whose project status is listed. It needs
	// ProjectNumber to resolve statuses.
	ExcludeStatus []string
	ProjectNumber int
	StatusField   string

	OutputDir string
}

func NewUserIssuesRequest(user, org string) UserIssuesRequest {
	return UserIssuesRequest{
		User:        user,
		Org:         org,
		State:       "all",
		StatusField: "Status",
	}
}

type UserIssuesResult struct {
	Found      int
	Saved      int
	Excluded   int
	NoActivity int
	Failed     int
	Paths      []string
}
