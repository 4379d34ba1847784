package domain

type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// ParseState maps remote or file spellings ("OPEN", "closed") onto a State.
// Anything that is not "closed" is treated as open.
func ParseState(s string) State {
	switch s {
	case "closed", "CLOSED", "Closed":
		return StateClosed
	default:
		return StateOpen
	}
}

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

type ChangeKind string

const (
	ChangeCreate   ChangeKind = "create"
	ChangeUpdate   ChangeKind = "update"
	ChangeOrphaned ChangeKind = "orphaned"
)

type OrphanPolicy string

const (
	OrphanRecreate OrphanPolicy = "recreate"
	OrphanSkip     OrphanPolicy = "skip"
	OrphanWarn     OrphanPolicy = "warn"
)

// ParseOrphanPolicy returns the policy named by s, defaulting to recreate for "".
func ParseOrphanPolicy(s string) (OrphanPolicy, error) {
	switch OrphanPolicy(s) {
	case "", OrphanRecreate:
		return OrphanRecreate, nil
	case OrphanSkip:
		return OrphanSkip, nil
	case OrphanWarn:
		return OrphanWarn, nil
	default:
		return "", NewError(KindValidation, "parse orphan policy",
			"unknown orphan policy "+quote(s)+" (expected recreate, skip or warn)")
	}
}
