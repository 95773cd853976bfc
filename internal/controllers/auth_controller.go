package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fleet_monitor/internal/auth"
	"fleet_monitor/internal/middleware"
)

// LastLoginRecorder stamps an admin profile's last-login time. Nil when
// running against the mock backend.
type LastLoginRecorder interface {
	TouchLastLogin(ctx context.Context, id string) error
}

// AuthController fronts the session gate.
type AuthController struct {
	Gate     *auth.Gate
	Profiles LastLoginRecorder
}

func NewAuthController(gate *auth.Gate, profiles LastLoginRecorder) *AuthController {
	return &AuthController{Gate: gate, Profiles: profiles}
}

// Login signs in via the gate and issues the API's own token. A profile
// marked inactive is rejected even when the backend accepts the
// password.
func (ac *AuthController) Login(c *gin.Context) {
	var body struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := ac.Gate.SignIn(c.Request.Context(), body.Email, body.Password); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	sess := ac.Gate.Session()
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sign-in produced no session"})
		return
	}

	admin := ac.Gate.AdminUser()
	role := "admin"
	if admin != nil {
		if !admin.IsActive {
			_ = ac.Gate.SignOut(c.Request.Context())
			c.JSON(http.StatusForbidden, gin.H{"error": "account is disabled"})
			return
		}
		role = admin.Role
		if ac.Profiles != nil {
			if err := ac.Profiles.TouchLastLogin(c.Request.Context(), admin.ID); err != nil {
				logrus.WithError(err).Warn("recording last login failed")
			}
		}
	}

	token, err := middleware.GenerateToken(sess.UserID, sess.Email, role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"user":       gin.H{"id": sess.UserID, "email": sess.Email},
		"admin_user": admin,
	})
}

// Logout clears the gate. Local state goes immediately; the backend
// call follows.
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.Gate.SignOut(c.Request.Context()); err != nil {
		logrus.WithError(err).Warn("backend sign-out failed after local clear")
	}
	c.JSON(http.StatusOK, gin.H{"message": "signed out"})
}

// Session reports the gate's current state.
func (ac *AuthController) Session(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"session":    ac.Gate.Session(),
		"admin_user": ac.Gate.AdminUser(),
		"loading":    ac.Gate.Loading(),
	})
}
