package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Rrens/slidecraft/internal/api/response"
	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/Rrens/slidecraft/internal/security"
	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey    contextKey = "userID"
	UserEmailKey contextKey = "userEmail"
	OwnerKey     contextKey = "owner"
)

// SessionHeader carries the anonymous session id in both directions
const SessionHeader = "X-Session-ID"

// AuthMiddleware resolves who is calling: a JWT-authenticated user or an
// anonymous browser session
type AuthMiddleware struct {
	jwtManager *security.JWTManager
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *security.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager}
}

// Identify attaches an owner to the request. A bearer token must be valid;
// without one the caller is an anonymous session, and a session id is
// issued when the client did not send one.
func (m *AuthMiddleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if authHeader := r.Header.Get("Authorization"); authHeader != "" {
			claims, ok := m.parseBearer(w, authHeader)
			if !ok {
				return
			}
			ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
			ctx = context.WithValue(ctx, OwnerKey, domain.UserOwner(claims.UserID.String()))
		} else {
			sessionID := r.Header.Get(SessionHeader)
			if _, err := uuid.Parse(sessionID); err != nil {
				sessionID = uuid.NewString()
			}
			w.Header().Set(SessionHeader, sessionID)
			ctx = context.WithValue(ctx, OwnerKey, domain.SessionOwner(sessionID))
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Authenticate requires a valid JWT
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "missing authorization header")
			return
		}

		claims, ok := m.parseBearer(w, authHeader)
		if !ok {
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
		ctx = context.WithValue(ctx, OwnerKey, domain.UserOwner(claims.UserID.String()))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) parseBearer(w http.ResponseWriter, authHeader string) (*security.Claims, bool) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		response.Unauthorized(w, "invalid authorization header format")
		return nil, false
	}

	claims, err := m.jwtManager.ValidateAccessToken(parts[1])
	if err != nil {
		response.Unauthorized(w, "invalid or expired token: "+err.Error())
		return nil, false
	}
	return claims, true
}

// GetUserID gets the user ID from context
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetUserEmail gets the user email from context
func GetUserEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailKey).(string)
	return email, ok
}

// GetOwner gets the resolved owner from context
func GetOwner(ctx context.Context) (domain.Owner, bool) {
	owner, ok := ctx.Value(OwnerKey).(domain.Owner)
	return owner, ok
}

// WithOwner stores an owner in ctx
func WithOwner(ctx context.Context, owner domain.Owner) context.Context {
	return context.WithValue(ctx, OwnerKey, owner)
}
