package domain

// Session is the current authentication state as projected by the
// session store. Loading is true until the initial provider probe has
// answered; a nil Identity with Loading=false means "signed out".
// Sessions are replaced wholesale on every provider notification,
// never mutated in place.
type Session struct {
	Identity *Identity `json:"identity"`
	Provider string    `json:"provider,omitempty"`
	Loading  bool      `json:"loading"`
}

// Authenticated reports whether the session belongs to a concrete,
// fully-resolved identity.
func (s Session) Authenticated() bool {
	return !s.Loading && s.Identity != nil
}

// GateState is the decision a protected route derives from the session.
type GateState int

const (
	// GateUndetermined: the initial probe has not answered yet. Render
	// nothing; redirecting here causes a flicker for signed-in users.
	GateUndetermined GateState = iota
	// GateAuthenticated: render the gated content.
	GateAuthenticated
	// GateAnonymous: redirect to the sign-in entry point.
	GateAnonymous
)

// Gate maps a session snapshot to the protected-route decision. The
// gate holds no state of its own; callers re-evaluate on every session
// change.
func Gate(s Session) GateState {
	switch {
	case s.Loading:
		return GateUndetermined
	case s.Identity != nil:
		return GateAuthenticated
	default:
		return GateAnonymous
	}
}
