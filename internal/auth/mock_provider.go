package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"fleet_monitor/internal/models"
)

// ErrInvalidCredentials is returned for a wrong email or password.
var ErrInvalidCredentials = errors.New("invalid login credentials")

type mockUser struct {
	id           string
	email        string
	passwordHash []byte
}

// MockProvider is an in-memory auth backend used when the service
// configuration is absent in the permissive variant, and in tests.
// Passwords are bcrypt-hashed like any real backend would keep them.
type MockProvider struct {
	mu        sync.Mutex
	users     map[string]mockUser // keyed by lowercased email
	session   *models.Session
	listeners map[int]func(ChangeEvent, *models.Session)
	nextID    int
	seq       int
}

// NewMockProvider returns an empty provider; register users with AddUser.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		users:     make(map[string]mockUser),
		listeners: make(map[int]func(ChangeEvent, *models.Session)),
	}
}

// AddUser registers a user and returns its generated id.
func (p *MockProvider) AddUser(email, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	id := fmt.Sprintf("mock-user-%d", p.seq)
	p.users[strings.ToLower(email)] = mockUser{id: id, email: email, passwordHash: hash}
	return id, nil
}

func (p *MockProvider) GetSession(ctx context.Context) (*models.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session, nil
}

func (p *MockProvider) SignInWithPassword(ctx context.Context, email, password string) error {
	p.mu.Lock()
	u, ok := p.users[strings.ToLower(email)]
	p.mu.Unlock()
	if !ok {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	sess := &models.Session{
		UserID:      u.id,
		Email:       u.email,
		AccessToken: fmt.Sprintf("mock-token-%d", time.Now().UnixNano()),
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	p.mu.Lock()
	p.session = sess
	p.mu.Unlock()
	p.emit(EventSignedIn, sess)
	return nil
}

func (p *MockProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	p.session = nil
	p.mu.Unlock()
	p.emit(EventSignedOut, nil)
	return nil
}

func (p *MockProvider) OnAuthStateChange(fn func(ChangeEvent, *models.Session)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
	}
}

func (p *MockProvider) emit(ev ChangeEvent, sess *models.Session) {
	p.mu.Lock()
	fns := make([]func(ChangeEvent, *models.Session), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()
	for _, fn := range fns {
		fn(ev, sess)
	}
}
