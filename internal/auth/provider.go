// Package auth tracks signed-in state against the managed authentication
// backend and gates the rest of the application behind it.
package auth

import (
	"context"

	"fleet_monitor/internal/models"
)

// ChangeEvent names a transition in the provider's auth state.
type ChangeEvent string

const (
	EventInitialSession ChangeEvent = "INITIAL_SESSION"
	EventSignedIn       ChangeEvent = "SIGNED_IN"
	EventSignedOut      ChangeEvent = "SIGNED_OUT"
)

// Provider is the external authentication collaborator. Change events
// fire on the provider's own goroutine; listeners must not block.
type Provider interface {
	// GetSession returns the current session, or nil when signed out.
	GetSession(ctx context.Context) (*models.Session, error)
	// SignInWithPassword authenticates and establishes a session.
	SignInWithPassword(ctx context.Context, email, password string) error
	// SignOut revokes the current session.
	SignOut(ctx context.Context) error
	// OnAuthStateChange registers fn for state transitions and returns
	// an unsubscribe func.
	OnAuthStateChange(fn func(ChangeEvent, *models.Session)) func()
}
