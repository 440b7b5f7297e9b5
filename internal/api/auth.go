package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/FocuswithJustin/JuniperJournal/internal/logging"
)

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	Disabled bool   `env:"DISABLED"`
	Secret   string `env:"SECRET"`
	Issuer   string `env:"ISSUER" envDefault:"juniper-journal"`
	DevUser  string `env:"DEV_USER" envDefault:"dev-user"` // user id assumed while auth is disabled
}

// Validate checks the authentication configuration.
func (a AuthConfig) Validate() error {
	if a.Disabled {
		if a.DevUser == "" {
			return fmt.Errorf("a dev user is required when authentication is disabled")
		}
		return nil
	}
	if a.Secret == "" {
		return fmt.Errorf("JWT secret is required when authentication is enabled")
	}
	if len(a.Secret) < MinSecretLength {
		return fmt.Errorf("JWT secret must be at least %d bytes (got %d)", MinSecretLength, len(a.Secret))
	}
	return nil
}

// IssueToken signs an HS256 token whose subject is userID.
func IssueToken(cfg AuthConfig, userID string, ttl time.Duration, now time.Time) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user id is required")
	}
	claims := jwt.RegisteredClaims{
		Issuer:    cfg.Issuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
}

// VerifyToken checks signature, issuer and expiry and returns the subject.
func VerifyToken(cfg AuthConfig, token string, now time.Time) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return []byte(cfg.Secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return claims.Subject, nil
}

// AuthMiddleware resolves the caller's user id and stores it in the request
// context. With auth disabled every request runs as the dev user.
// Public endpoints (/, /health and the stateless /scripture/ tools) bypass
// authentication.
func AuthMiddleware(cfg AuthConfig, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicEndpoint(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if cfg.Disabled {
			next.ServeHTTP(w, r.WithContext(logging.WithUserID(r.Context(), cfg.DevUser)))
			return
		}

		token := bearerToken(r)
		if token == "" {
			logging.SecurityEvent("unauthorized_request", "auth",
				"path", r.URL.Path,
				"reason", "missing bearer token")
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
			return
		}

		userID, err := VerifyToken(cfg, token, time.Now())
		if err != nil {
			logging.SecurityEvent("unauthorized_request", "auth",
				"path", r.URL.Path,
				"reason", err.Error())
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(logging.WithUserID(r.Context(), userID)))
	})
}

// bearerToken reads the Authorization header. Browsers cannot set headers
// on websocket handshakes, so /ws also accepts ?access_token=.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if r.URL.Path == "/ws" {
		return r.URL.Query().Get("access_token")
	}
	return ""
}

func isPublicEndpoint(path string) bool {
	return path == "/" || path == "/health" || strings.HasPrefix(path, "/scripture/")
}

// userID returns the authenticated caller. AuthMiddleware guarantees it is
// set on every non-public route.
func userID(r *http.Request) string {
	return logging.GetUserID(r.Context())
}
