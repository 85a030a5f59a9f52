package auth

import "context"

// Provider is an identity provider.
// Successful sign in, sign up and sign out calls are reflected through the
// Listen callback, never through return values.
type Provider interface {
	SignInWithPassword(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password string) error
	// SignInWithIdP exchanges a credential of a federated provider such as
	// google.com for a session.
	SignInWithIdP(ctx context.Context, providerID, idToken string) error
	SignOut(ctx context.Context) error
	SendPasswordReset(ctx context.Context, email string) error
	// Listen registers fn for session changes. fn is called with the current
	// session (nil when signed out) as soon as the provider knows it.
	Listen(fn func(*Session)) (stop func())
}
