package auth

import (
	"crypto/subtle"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/frahmantamala/attendance-management/internal"
)

// Service issues and validates the admin API tokens used by the report
// download endpoints. There is a single principal: whoever holds the
// configured API key.
type Service struct {
	apiKey        string
	jwtSecret     []byte
	tokenDuration time.Duration
	logger        *slog.Logger
}

func NewService(cfg internal.SecurityConfig, logger *slog.Logger) *Service {
	duration := cfg.TokenDuration
	if duration <= 0 {
		duration = time.Hour
	}
	return &Service{
		apiKey:        cfg.AdminAPIKey,
		jwtSecret:     []byte(cfg.JWTSecret),
		tokenDuration: duration,
		logger:        logger,
	}
}

// IssueToken exchanges the admin API key for a short-lived JWT. The compare
// is constant time.
func (s *Service) IssueToken(apiKey string) (string, error) {
	if s.apiKey == "" || subtle.ConstantTimeCompare([]byte(apiKey), []byte(s.apiKey)) != 1 {
		s.logger.Warn("token request with invalid API key")
		return "", internal.ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenDuration)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		s.logger.Error("failed to sign token", "error", err)
		return "", internal.NewInternalError("failed to sign token", err)
	}

	return signed, nil
}

// ValidateToken checks signature and expiry and returns the token subject.
func (s *Service) ValidateToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, internal.ErrInvalidToken
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", internal.ErrInvalidToken
	}
	return claims.Subject, nil
}

func (s *Service) TokenDuration() time.Duration {
	return s.tokenDuration
}
