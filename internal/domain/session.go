package domain

import "time"

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Phase is the lifecycle position of a browser session.
// uninitialized -> restored -> authenticated | anonymous
type Phase string

const (
	PhaseUninitialized Phase = "UNINITIALIZED"
	PhaseRestored      Phase = "RESTORED"
	PhaseAuthenticated Phase = "AUTHENTICATED"
	PhaseAnonymous     Phase = "ANONYMOUS"
)

// IsResolved reports whether the session has been validated one way or the other.
func (p Phase) IsResolved() bool {
	return p == PhaseAuthenticated || p == PhaseAnonymous
}

func (p Phase) String() string {
	return string(p)
}

// Session is the in-memory credential state. Authenticated is true iff User is set.
type Session struct {
	User          *User `json:"user,omitempty"`
	Authenticated bool  `json:"authenticated"`
	Phase         Phase `json:"phase"`
}

// PersistedSession is what survives a reload. The bearer token is stored separately.
type PersistedSession struct {
	User          *User `json:"user,omitempty"`
	Authenticated bool  `json:"authenticated"`
}
