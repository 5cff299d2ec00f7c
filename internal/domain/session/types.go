package session

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusJoined    Status = "JOINED"
	StatusCompleted Status = "COMPLETED"
	StatusExpired   Status = "EXPIRED"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusJoined, StatusCompleted, StatusExpired:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further status transition is permitted.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusExpired
}

// CanTransitionTo enforces the monotonic ACTIVE→JOINED→{COMPLETED|EXPIRED}
// lifecycle. Statuses never regress.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusActive:
		return next == StatusJoined || next == StatusCompleted || next == StatusExpired
	case StatusJoined:
		return next == StatusCompleted || next == StatusExpired
	default:
		return false
	}
}
