package domain

import "context"

//go:generate go run go.uber.org/mock/mockgen -source=$GOFILE -destination=mocks/mock_provider.go -package=mocks

// ProviderSession is what the identity provider reports: who is signed
// in and which backend established the session. A nil *ProviderSession
// means nobody is signed in.
type ProviderSession struct {
	Identity *Identity
	Provider string
}

// SignInRequest carries the credentials for an interactive sign-in.
// Which fields are meaningful depends on the backend: the local
// provider reads Email/Password, OAuth2 backends read AuthCode.
type SignInRequest struct {
	Provider string `json:"provider"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	AuthCode string `json:"auth_code,omitempty"`
}

// IdentityProvider is the external collaborator supplying sign-in,
// sign-out and a session-change notification stream. The session store
// treats it as a black box and is its only consumer.
type IdentityProvider interface {
	// CurrentSession is the one-shot probe issued at startup.
	CurrentSession(ctx context.Context) (*ProviderSession, error)

	// Subscribe registers fn for every session change, including the
	// ones caused by SignIn and SignOut. The returned cancel func
	// releases the subscription and must be called on shutdown.
	Subscribe(fn func(*ProviderSession)) (cancel func())

	// SignIn runs the interactive flow. A flow abandoned by the user
	// fails with errors.ErrFlowCancelled, which callers must treat as
	// a normal outcome rather than a failure.
	SignIn(ctx context.Context, req SignInRequest) (*ProviderSession, error)

	// SignOut invalidates the current session.
	SignOut(ctx context.Context) error
}
