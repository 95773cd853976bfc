package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"fleet_monitor/internal/models"
)

// HTTPProvider talks to the managed backend's auth endpoints (password
// grant, user fetch, logout). Like the original JS client, state-change
// notifications are emitted locally after each successful call rather
// than pushed by the server.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client

	mu        sync.Mutex
	session   *models.Session
	listeners map[int]func(ChangeEvent, *models.Session)
	nextID    int
}

// NewHTTPProvider builds a provider for the given service endpoint and
// public key.
func NewHTTPProvider(serviceURL, serviceKey string) *HTTPProvider {
	return &HTTPProvider{
		baseURL:   strings.TrimRight(serviceURL, "/"),
		apiKey:    serviceKey,
		client:    &http.Client{Timeout: 10 * time.Second},
		listeners: make(map[int]func(ChangeEvent, *models.Session)),
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type errorResponse struct {
	Message          string `json:"msg"`
	ErrorDescription string `json:"error_description"`
}

func (p *HTTPProvider) GetSession(ctx context.Context) (*models.Session, error) {
	p.mu.Lock()
	sess := p.session
	p.mu.Unlock()
	if sess == nil {
		return nil, nil
	}
	if time.Now().After(sess.ExpiresAt) {
		p.clearSession(EventSignedOut)
		return nil, nil
	}

	// Confirm the token is still honored by the backend.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	p.setHeaders(req, sess.AccessToken)
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		p.clearSession(EventSignedOut)
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth backend returned %d fetching user", resp.StatusCode)
	}
	return sess, nil
}

func (p *HTTPProvider) SignInWithPassword(ctx context.Context, email, password string) error {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/auth/v1/token?grant_type=password", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	p.setHeaders(req, "")
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var er errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&er)
		msg := er.ErrorDescription
		if msg == "" {
			msg = er.Message
		}
		if msg == "" {
			msg = fmt.Sprintf("sign-in failed with status %d", resp.StatusCode)
		}
		return fmt.Errorf("%s", msg)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return fmt.Errorf("malformed token response: %w", err)
	}
	sess := &models.Session{
		UserID:      tr.User.ID,
		Email:       tr.User.Email,
		AccessToken: tr.AccessToken,
		ExpiresAt:   time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}
	p.mu.Lock()
	p.session = sess
	p.mu.Unlock()
	p.emit(EventSignedIn, sess)
	return nil
}

func (p *HTTPProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	sess := p.session
	p.mu.Unlock()
	if sess != nil {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/auth/v1/logout", nil)
		if err != nil {
			return err
		}
		p.setHeaders(req, sess.AccessToken)
		resp, err := p.client.Do(req)
		if err != nil {
			logrus.WithError(err).Warn("logout call failed, clearing session anyway")
		} else {
			resp.Body.Close()
		}
	}
	p.clearSession(EventSignedOut)
	return nil
}

func (p *HTTPProvider) OnAuthStateChange(fn func(ChangeEvent, *models.Session)) func() {
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

func (p *HTTPProvider) setHeaders(req *http.Request, token string) {
	req.Header.Set("apikey", p.apiKey)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (p *HTTPProvider) clearSession(ev ChangeEvent) {
	p.mu.Lock()
	p.session = nil
	p.mu.Unlock()
	p.emit(ev, nil)
}

func (p *HTTPProvider) emit(ev ChangeEvent, sess *models.Session) {
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
