package auth

import (
	"crypto/subtle"
	"fmt"
	"time"

	apperrors "staff-absence-backend/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService issues and validates dashboard tokens
type AuthService struct {
	config *AuthConfig
	now    func() time.Time
}

// AuthClaims represents JWT token claims
type AuthClaims struct {
	Username string `json:"username" example:"admin"`
	Role     string `json:"role" example:"admin"`
	// Standard JWT fields (sub, exp, iat, nbf, iss)
	jwt.RegisteredClaims `swaggerignore:"true"`
}

// LoginRequest is the body of the login endpoint
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"admin"`
	Password string `json:"password" binding:"required" example:"secret"`
}

// LoginResponse represents the response from the login endpoint
type LoginResponse struct {
	AccessToken      string `json:"accessToken" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType        string `json:"tokenType" example:"Bearer"`
	ExpiresInSeconds int64  `json:"expiresInSeconds" example:"3600"`
	Username         string `json:"username" example:"admin"`
}

// AuthValidateResponse represents the response from the token validation endpoint
type AuthValidateResponse struct {
	Valid  bool        `json:"valid" example:"true"`
	Claims *AuthClaims `json:"claims"`
}

const roleAdmin = "admin"

// NewAuthService creates a new authentication service
func NewAuthService(config *AuthConfig) (*AuthService, error) {
	if err := config.ValidateConfig(); err != nil {
		return nil, fmt.Errorf("invalid auth config: %w", err)
	}
	return &AuthService{config: config, now: time.Now}, nil
}

// Enabled reports whether dashboard routes require a token
func (s *AuthService) Enabled() bool {
	return s.config.Enabled()
}

// Login checks the admin credentials and returns a signed token
func (s *AuthService) Login(username, password string) (*LoginResponse, error) {
	if !s.Enabled() {
		return nil, apperrors.NewAuthenticationError("admin login is not configured")
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.config.AdminUsername)) == 1
	// always run bcrypt so an unknown user costs the same as a bad password
	passErr := bcrypt.CompareHashAndPassword([]byte(s.config.AdminPasswordHash), []byte(password))
	if !userOK || passErr != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.GenerateJWT(username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate JWT: %w", err)
	}

	return &LoginResponse{
		AccessToken:      token,
		TokenType:        "Bearer",
		ExpiresInSeconds: int64(s.config.TokenTTL.Seconds()),
		Username:         username,
	}, nil
}

// GenerateJWT creates a token for username
func (s *AuthService) GenerateJWT(username string) (string, error) {
	now := s.now()
	claims := &AuthClaims{
		Username: username,
		Role:     roleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.config.Issuer,
			Subject:   username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// ValidateJWT validates and parses a JWT token
func (s *AuthService) ValidateJWT(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	}, jwt.WithIssuer(s.config.Issuer), jwt.WithTimeFunc(s.now))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*AuthClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
