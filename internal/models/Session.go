// internal/models/session.go
package models

import "time"

// Session is the authenticated state handed out by the auth provider.
type Session struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}
