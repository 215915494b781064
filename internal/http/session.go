package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"bilancio/internal/core"
	applog "bilancio/internal/log"

	"github.com/golang-jwt/jwt/v5"
)

// UserIDHeader names the session when no token secret is configured.
const UserIDHeader = "X-User-ID"

var (
	ErrInvalidAuthHeader = errors.New("invalid authorization header format")
	ErrInvalidToken      = errors.New("invalid token")
)

type sessionKey struct{}

// SessionResolver turns a request into a core.Session. With a secret it
// trusts only HS256 bearer tokens and takes the user from the sub claim;
// without one it reads X-User-ID and falls back to the default user.
type SessionResolver struct {
	secret      []byte
	defaultUser string
}

func NewSessionResolver(secret, defaultUser string) *SessionResolver {
	r := &SessionResolver{defaultUser: strings.TrimSpace(defaultUser)}
	if secret != "" {
		r.secret = []byte(secret)
	}
	return r
}

// Resolve returns the session of r or an error describing why there is none.
func (sr *SessionResolver) Resolve(r *http.Request) (core.Session, error) {
	if sr.secret == nil {
		user := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if user == "" {
			user = sr.defaultUser
		}
		return core.NewSession(user)
	}

	token, err := extractBearer(r.Header.Get("Authorization"))
	if err != nil {
		return core.Session{}, err
	}
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, sr.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return core.Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return core.NewSession(claims.Subject)
}

func (sr *SessionResolver) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return sr.secret, nil
}

func extractBearer(header string) (string, error) {
	const bearerPrefix = "bearer "
	if !strings.HasPrefix(strings.ToLower(header), bearerPrefix) {
		return "", ErrInvalidAuthHeader
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", ErrInvalidAuthHeader
	}
	return token, nil
}

// Middleware rejects requests without a session and stores it in the context.
func (sr *SessionResolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := sr.Resolve(r)
		if err != nil {
			applog.FromContext(r.Context()).WithComponent(applog.ComponentSecurity).
				WarnContext(r.Context(), "Rejected request without session",
					applog.FieldErrorType, applog.ErrorTypeAuth, applog.FieldError, err)
			ErrorResponse(r, http.StatusUnauthorized, CodeUnauthorized, "missing or invalid credentials", nil).
				Header("WWW-Authenticate", "Bearer").Write(w)
			return
		}
		logger := applog.FromContext(r.Context()).With(applog.FieldUserID, session.UserID)
		ctx := context.WithValue(applog.NewContext(r.Context(), logger), sessionKey{}, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFromContext returns the session stored by Middleware.
func SessionFromContext(ctx context.Context) (core.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(core.Session)
	return s, ok
}
