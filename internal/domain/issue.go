package domain

import "time"

// Issue is the aggregate the workflow engine operates on.
type Issue struct {
	ID             string
	Subject        string
	TemplateID     string
	StateID        string
	AuthorID       string
	ResponsibleID  *string
	OriginID       *string
	SuspendedUntil *time.Time
	CreatedAt      time.Time
	ChangedAt      time.Time
	ClosedAt       *time.Time
}

// IsClosed reports whether the issue sits in a final state. ClosedAt is
// non-nil iff the current state type is final.
func (i *Issue) IsClosed() bool {
	return i.ClosedAt != nil
}

// IsSuspended reports whether the issue is suspended at the given
// moment. A suspension whose date has passed no longer blocks commands.
func (i *Issue) IsSuspended(now time.Time) bool {
	return i.SuspendedUntil != nil && i.SuspendedUntil.After(now)
}

// IsFrozen reports whether the issue passed the template's frozen-time
// window after closing and became read-only.
func (i *Issue) IsFrozen(t Template, now time.Time) bool {
	if t.FrozenDays <= 0 || i.ClosedAt == nil {
		return false
	}
	return now.After(i.ClosedAt.AddDate(0, 0, t.FrozenDays))
}
