package auth

import (
	"fmt"
	"time"

	"staff-absence-backend/internal/config"

	"golang.org/x/crypto/bcrypt"
)

// DefaultIssuer is the iss claim of dashboard tokens
const DefaultIssuer = "staff-absence-backend"

// AuthConfig holds the dashboard authentication settings
type AuthConfig struct {
	JWTSecret         string        `yaml:"jwt_secret" json:"jwt_secret"`
	TokenTTL          time.Duration `yaml:"token_ttl" json:"token_ttl"`
	Issuer            string        `yaml:"issuer" json:"issuer"`
	AdminUsername     string        `yaml:"admin_username" json:"admin_username"`
	AdminPasswordHash string        `yaml:"admin_password_hash" json:"-"`
}

// LoadAuthConfig derives the auth settings from the application config
func LoadAuthConfig(cfg *config.Config) (*AuthConfig, error) {
	authConfig := &AuthConfig{
		JWTSecret:         cfg.JWTSecret,
		TokenTTL:          cfg.JWTTTL,
		Issuer:            DefaultIssuer,
		AdminUsername:     cfg.AdminUsername,
		AdminPasswordHash: cfg.AdminPasswordHash,
	}
	if authConfig.TokenTTL <= 0 {
		authConfig.TokenTTL = time.Hour
	}

	if err := authConfig.ValidateConfig(); err != nil {
		return nil, fmt.Errorf("auth config validation failed: %w", err)
	}
	return authConfig, nil
}

// Enabled reports whether an admin login is configured. Without one the
// dashboard API is served without authentication.
func (c *AuthConfig) Enabled() bool {
	return c.AdminPasswordHash != ""
}

// ValidateConfig validates the authentication configuration
func (c *AuthConfig) ValidateConfig() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if !c.Enabled() {
		return nil
	}
	if c.AdminUsername == "" {
		return fmt.Errorf("admin username is required when a password hash is set")
	}
	if _, err := bcrypt.Cost([]byte(c.AdminPasswordHash)); err != nil {
		return fmt.Errorf("admin password hash is not a bcrypt hash: %w", err)
	}
	return nil
}

// HashPassword returns the bcrypt hash to put in ADMIN_PASSWORD_HASH
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
