package auth

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"fleet_monitor/internal/models"
)

// initTimeout caps how long the gate waits for the provider before
// giving up on the loading state.
const initTimeout = 5 * time.Second

// ProfileFetcher looks up the administrator profile behind a session.
type ProfileFetcher interface {
	GetAdminUser(ctx context.Context, id string) (*models.AdminUser, error)
}

// Gate tracks the signed-in user and the matching admin profile. It
// subscribes to the provider's change notifications for its lifetime;
// call Stop to release the subscription.
type Gate struct {
	provider Provider
	profiles ProfileFetcher

	mu      sync.Mutex
	session *models.Session
	admin   *models.AdminUser
	loading bool
	gen     uint64

	unsubscribe func()
	timer       *time.Timer
}

// NewGate builds a gate in the loading state. Call Start to initialize.
func NewGate(provider Provider, profiles ProfileFetcher) *Gate {
	return &Gate{provider: provider, profiles: profiles, loading: true}
}

// Start fetches the current session, subscribes to provider changes, and
// arms the timeout that forces loading off if the provider never
// answers. It returns immediately; initialization runs in the
// background.
func (g *Gate) Start(ctx context.Context) {
	g.mu.Lock()
	g.timer = time.AfterFunc(initTimeout, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.loading {
			logrus.Warn("auth initialization timed out, clearing loading state")
			g.loading = false
		}
	})
	g.unsubscribe = g.provider.OnAuthStateChange(g.onChange)
	gen := g.gen
	g.mu.Unlock()

	go func() {
		sess, err := g.provider.GetSession(ctx)
		if err != nil {
			logrus.WithError(err).Error("fetching initial session failed")
		}
		g.apply(sess, gen)
	}()
}

// Stop releases the provider subscription and the pending timer.
func (g *Gate) Stop() {
	g.mu.Lock()
	unsub, timer := g.unsubscribe, g.timer
	g.unsubscribe, g.timer = nil, nil
	g.mu.Unlock()
	if timer != nil {
		timer.Stop()
	}
	if unsub != nil {
		unsub()
	}
}

func (g *Gate) onChange(ev ChangeEvent, sess *models.Session) {
	logrus.WithFields(logrus.Fields{"event": ev, "signed_in": sess != nil}).
		Debug("auth state changed")
	g.mu.Lock()
	g.gen++
	gen := g.gen
	g.mu.Unlock()
	g.apply(sess, gen)
}

// apply installs sess as the current state, fetching or clearing the
// admin profile to match, and always ends the loading state. The
// generation guard keeps a slow initial fetch from overwriting state
// installed by a later change notification or sign-out.
func (g *Gate) apply(sess *models.Session, gen uint64) {
	var admin *models.AdminUser
	if sess != nil && g.profiles != nil {
		ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
		defer cancel()
		var err error
		admin, err = g.profiles.GetAdminUser(ctx, sess.UserID)
		if err != nil {
			logrus.WithError(err).WithField("user_id", sess.UserID).
				Error("fetching admin profile failed")
		}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if gen == g.gen {
		g.session = sess
		g.admin = admin
	}
	g.loading = false
	if g.timer != nil {
		g.timer.Stop()
	}
}

// SignIn authenticates via the provider. State is installed by the
// resulting change notification.
func (g *Gate) SignIn(ctx context.Context, email, password string) error {
	return g.provider.SignInWithPassword(ctx, email, password)
}

// SignOut clears local state immediately rather than waiting on the
// provider's change notification, so the caller can never observe a
// stale signed-in view, then delegates to the provider.
func (g *Gate) SignOut(ctx context.Context) error {
	g.mu.Lock()
	g.session = nil
	g.admin = nil
	g.gen++
	g.mu.Unlock()
	return g.provider.SignOut(ctx)
}

// Session returns the current session, nil when signed out.
func (g *Gate) Session() *models.Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session
}

// AdminUser returns the profile of the signed-in administrator, if any.
func (g *Gate) AdminUser() *models.AdminUser {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.admin
}

// Loading reports whether initialization is still in flight.
func (g *Gate) Loading() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loading
}
