package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"
	"github.com/golang-jwt/jwt/v4"

	"adpulse/internal/config"
	apierrors "adpulse/internal/errors"
	"adpulse/internal/infrastructure"
)

// userContextKey is the context key for the authenticated user ID
type userContextKey struct{}

// Claims carries the JWT payload for an authenticated request.
// Subject holds the user ID; every dataset query is scoped to it.
type Claims struct {
	jwt.RegisteredClaims
}

// Authenticator validates bearer tokens and injects the user ID into
// the request context. Requests without a valid token never reach the
// wrapped handler.
type Authenticator struct {
	secret []byte
	issuer string
	logger *slog.Logger
}

// NewAuthenticator creates a JWT bearer-token authenticator
func NewAuthenticator(cfg config.AuthConfig, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		logger: logger.With(slog.String("component", "auth_middleware")),
	}
}

// Handler returns the authentication middleware
func (a *Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := a.authenticate(r)
		if err != nil {
			a.logger.WarnContext(ctx, "authentication failed",
				slog.String("error", err.Error()),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
			)

			traceID := infrastructure.GetTraceID(ctx)
			render.Render(w, r, apierrors.MapAuthError(err, traceID))
			return
		}

		ctx = context.WithValue(ctx, userContextKey{}, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authenticate extracts and validates the bearer token, returning the
// user ID from the subject claim.
func (a *Authenticator) authenticate(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", apierrors.ErrMissingToken
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", apierrors.ErrTokenInvalid
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apierrors.ErrTokenInvalid
		}
		return a.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apierrors.ErrTokenExpired
		}
		return "", apierrors.ErrTokenInvalid
	}

	if !token.Valid {
		return "", apierrors.ErrTokenInvalid
	}
	if a.issuer != "" && claims.Issuer != a.issuer {
		return "", apierrors.ErrClaimsInvalid
	}
	if claims.Subject == "" {
		return "", apierrors.ErrClaimsInvalid
	}

	return claims.Subject, nil
}

// IssueToken signs a token for the given user ID. The API only validates
// tokens; this exists for tooling and tests.
func IssueToken(cfg config.AuthConfig, userID string, now time.Time) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// UserID retrieves the authenticated user ID from the context.
// Returns an empty string when the request was not authenticated.
func UserID(ctx context.Context) string {
	if id, ok := ctx.Value(userContextKey{}).(string); ok {
		return id
	}
	return ""
}

// WithUserID injects a user ID into the context. Intended for tests
// and internal callers that bypass the HTTP middleware.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userContextKey{}, userID)
}
