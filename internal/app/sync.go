package app

import (
	"time"

	"github.com/alexanderramin/ghgantt/internal/diff"
	"github.com/alexanderramin/ghgantt/internal/domain"
)

// Target addresses the remote repository and the project board bound to it.
type Target struct {
	Owner         string
	Repo          string
	ProjectNumber int
	StartField    string
	EndField      string
}

type PullRequest struct {
	Target    Target
	LocalPath string
	Now       *time.Time
}

type PullResult struct {
	Container    *domain.Container
	Written      []string
	Descriptions int
}

type StatusRequest struct {
	Target       Target
	LocalPath    string
	OrphanPolicy domain.OrphanPolicy
}

func NewStatusRequest(target Target, localPath string) StatusRequest {
	return StatusRequest{
		Target:       target,
		LocalPath:    localPath,
		OrphanPolicy: domain.OrphanRecreate,
	}
}

type StatusResult struct {
	Changes      diff.ChangeSet
	LocalMissing bool
	Warnings     []string
}

type PushRequest struct {
	Target          Target
	LocalPath       string
	DryRun          bool
	EnforceSubLinks bool
	OrphanPolicy    domain.OrphanPolicy
	// Delay paces item-level remote calls. Zero disables pacing.
	Delay time.Duration
}

func NewPushRequest(target Target, localPath string) PushRequest {
	return PushRequest{
		Target:       target,
		LocalPath:    localPath,
		OrphanPolicy: domain.OrphanRecreate,
	}
}

type EventLevel string

const (
	EventInfo  EventLevel = "info"
	EventWarn  EventLevel = "warn"
	EventError EventLevel = "error"
)

// SyncEvent is one line of the push report.
type SyncEvent struct {
	Level   EventLevel
	Key     string
	Number  int
	Message string
}

// ChangeOutcome records what happened to one change of the set.
type ChangeOutcome struct {
	Key     string
	Number  int
	Kind    domain.ChangeKind
	Outcome domain.Outcome
	Message string
}

type PushResult struct {
	RunID    string
	DryRun   bool
	Aborted  bool
	Changes  diff.ChangeSet
	Outcomes []ChangeOutcome
	Events   []SyncEvent
	Created  int
	Updated  int
	Failed   int
	Skipped  int
	Linked   int
}

// Warnings returns the messages of warn and error events.
func (r *PushResult) Warnings() []string {
	var out []string
	for _, e := range r.Events {
		if e.Level != EventInfo {
			out = append(out, e.Message)
		}
	}
	return out
}
