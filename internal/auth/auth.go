// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth implements the login gate in front of the chat views.
//
// The gate compares a username and password against the [auth] config
// section, optionally followed by a TOTP code. A successful login stores an
// opaque "auth-token-<unix ms>" marker in the key/value store; the views
// treat its presence as the authenticated state. This is a local
// convenience lock, not a security boundary: anyone with access to the
// data directory can write the marker.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/jeranaias/thinkly/internal/config"
	"github.com/jeranaias/thinkly/internal/logging"
	"github.com/jeranaias/thinkly/internal/storage"
)

// TokenPrefix starts every stored session marker.
const TokenPrefix = "auth-token-"

var (
	// ErrInvalidCredentials is the only failure shown for a bad username or
	// password, so the two cannot be told apart.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrNoCredentials means the [auth] section has no username/password.
	ErrNoCredentials = errors.New("no login credentials configured; run 'thinkly config set auth.username <name>' and 'thinkly config set auth.password <password>'")
	// ErrThrottled is returned when attempts exceed auth.max_attempts_per_minute.
	ErrThrottled = errors.New("too many login attempts")
	// ErrCodeRequired is returned when a TOTP secret is set but no code was given.
	ErrCodeRequired = errors.New("authentication code required")
	// ErrInvalidCode is returned for a wrong TOTP code.
	ErrInvalidCode = errors.New("invalid authentication code")
)

// DisplayMessage returns the sentence shown to the user for a login failure.
func DisplayMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid username or password."
	case errors.Is(err, ErrThrottled):
		return "Too many login attempts. Please wait a moment and try again."
	case errors.Is(err, ErrCodeRequired):
		return "Authentication code required."
	case errors.Is(err, ErrInvalidCode):
		return "Invalid authentication code."
	default:
		return err.Error()
	}
}

// =============================================================================
// GATE
// =============================================================================

// Gate checks credentials and tracks the authenticated marker.
type Gate struct {
	cfg     config.AuthConfig
	kv      storage.KV
	logger  *slog.Logger
	limiter *rate.Limiter

	mu  sync.Mutex
	now func() time.Time
}

// New creates a gate over kv using the credentials in cfg.
func New(cfg config.AuthConfig, kv storage.KV, logger *slog.Logger) *Gate {
	perMinute := cfg.MaxAttemptsPerMinute
	if perMinute <= 0 {
		perMinute = config.DefaultMaxAttempts
	}
	return &Gate{
		cfg:    cfg,
		kv:     kv,
		logger: logging.OrDefault(logger).With("component", "auth"),
		// Refills one attempt every 60/perMinute seconds, bursting to perMinute.
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60), perMinute),
		now:     time.Now,
	}
}

// Configured reports whether credentials exist to log in with.
func (g *Gate) Configured() bool {
	return g.cfg.HasCredentials()
}

// RequiresCode reports whether a TOTP code is part of the login.
func (g *Gate) RequiresCode() bool {
	return g.cfg.TOTPSecret != ""
}

// Login checks the credentials and, on success, stores a new session marker.
// code is ignored unless a TOTP secret is configured.
func (g *Gate) Login(username, password, code string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.cfg.HasCredentials() {
		return ErrNoCredentials
	}

	now := g.now()
	if !g.limiter.AllowN(now, 1) {
		g.logger.Warn("login throttled")
		return ErrThrottled
	}

	if !g.checkUser(username) || !g.checkPassword(password) {
		g.logger.Warn("login failed", "reason", "credentials")
		return ErrInvalidCredentials
	}

	if g.RequiresCode() {
		code = strings.TrimSpace(code)
		if code == "" {
			return ErrCodeRequired
		}
		if !totp.Validate(code, g.cfg.TOTPSecret) {
			g.logger.Warn("login failed", "reason", "totp")
			return ErrInvalidCode
		}
	}

	token := TokenPrefix + strconv.FormatInt(now.UnixMilli(), 10)
	if err := g.kv.Set(storage.KeyAuthToken, []byte(token)); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	g.logger.Info("login succeeded")
	return nil
}

// SECURITY: constant-time compare so response time does not leak a prefix.
func (g *Gate) checkUser(username string) bool {
	return subtle.ConstantTimeCompare([]byte(username), []byte(g.cfg.Username)) == 1
}

func (g *Gate) checkPassword(password string) bool {
	if g.cfg.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(g.cfg.PasswordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(g.cfg.Password)) == 1
}

// Logout removes the session marker. Logging out twice is not an error.
func (g *Gate) Logout() error {
	if err := g.kv.Delete(storage.KeyAuthToken); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	g.logger.Info("logged out")
	return nil
}

// Authenticated reports whether a session marker is stored.
func (g *Gate) Authenticated() bool {
	_, ok := g.Since()
	return ok
}

// Since returns when the current session began.
func (g *Gate) Since() (time.Time, bool) {
	data, err := g.kv.Get(storage.KeyAuthToken)
	if err != nil {
		return time.Time{}, false
	}
	return ParseToken(string(data))
}

// ParseToken extracts the login time from a session marker.
func ParseToken(token string) (time.Time, bool) {
	raw, ok := strings.CutPrefix(strings.TrimSpace(token), TokenPrefix)
	if !ok {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// HashPassword returns a bcrypt hash for auth.password_hash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// NewTOTPSecret generates a base32 secret for auth.totp_secret and returns
// it with the otpauth:// URL for authenticator apps.
func NewTOTPSecret(account string) (secret, url string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "thinkly",
		AccountName: account,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to generate TOTP secret: %w", err)
	}
	return key.Secret(), key.URL(), nil
}
