package services

import (
	"time"

	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/security"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles admin authentication and JWT operations
type AuthService struct {
	passwordHash string
	jwtSecret    string
	tokenTTL     time.Duration
	now          func() time.Time
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewAuthService creates a new authentication service. passwordHash is a
// bcrypt hash; an empty hash disables login.
func NewAuthService(passwordHash, jwtSecret string, tokenTTL time.Duration, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		passwordHash: passwordHash,
		jwtSecret:    jwtSecret,
		tokenTTL:     tokenTTL,
		now:          time.Now,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// AuthResult holds authentication result data
type AuthResult struct {
	Token     string    `json:"token,omitempty"`
	Role      string    `json:"role,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
}

// Enabled reports whether admin login is configured.
func (a *AuthService) Enabled() bool {
	return a.passwordHash != "" && a.jwtSecret != ""
}

// AuthenticateAdmin validates the admin password and issues a token.
func (a *AuthService) AuthenticateAdmin(password, clientIP string) *AuthResult {
	marker := a.perfTracker.StartOperation("auth_admin_login", clientIP)
	defer marker.Complete()

	if !a.Enabled() {
		marker.SetSuccess(false)
		return &AuthResult{Success: false, Error: "Admin login is not configured"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.passwordHash), []byte(password)); err != nil {
		marker.SetSuccess(false)
		a.logger.LogAuthOperation("admin_login", clientIP, false)
		return &AuthResult{Success: false, Error: "Invalid credentials"}
	}

	now := a.now()
	token, err := security.GenerateAdminToken(a.jwtSecret, now, a.tokenTTL)
	if err != nil {
		marker.SetError(err)
		a.logger.Auth().Error("Token generation failed", "error", err)
		return &AuthResult{Success: false, Error: "Token generation failed"}
	}

	a.logger.LogAuthOperation("admin_login", clientIP, true)
	return &AuthResult{
		Token:     token,
		Role:      security.RoleAdmin,
		ExpiresAt: now.Add(a.tokenTTL),
		Success:   true,
	}
}

// TokenRole validates tokenString and returns its role claim.
func (a *AuthService) TokenRole(tokenString string) (string, bool) {
	if tokenString == "" || a.jwtSecret == "" {
		return "", false
	}
	claims, err := security.ValidateJWT(tokenString, a.jwtSecret)
	if err != nil {
		return "", false
	}
	return security.RoleFromClaims(claims), true
}

// ValidateAdminToken checks if a token belongs to an admin user
func (a *AuthService) ValidateAdminToken(tokenString string) bool {
	role, ok := a.TokenRole(tokenString)
	return ok && role == security.RoleAdmin
}
