package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	ScopeIDKey   contextKey = "scope_id"
	ScopeKindKey contextKey = "scope_kind"
	UserRolesKey contextKey = "user_roles"
)

// Scope kinds. Mapping-dictionary entries are owned either by a single user
// or shared across a family account.
const (
	ScopeUser   = "user"
	ScopeFamily = "family"
)

type Claims struct {
	jwt.RegisteredClaims
	ScopeID   string   `json:"scope_id"`
	ScopeKind string   `json:"scope_kind"`
	Roles     []string `json:"roles"`
}

// JWTMiddleware validates HS256 bearer tokens and places the caller's
// identity and mapping scope into the request context.
func JWTMiddleware(signingKey []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return signingKey, nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			scopeID := claims.ScopeID
			if scopeID == "" {
				scopeID = claims.Subject
			}
			kind := claims.ScopeKind
			if kind == "" {
				kind = ScopeUser
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, UserIDKey, claims.Subject)
			ctx = context.WithValue(ctx, ScopeIDKey, scopeID)
			ctx = context.WithValue(ctx, ScopeKindKey, kind)
			ctx = context.WithValue(ctx, UserRolesKey, claims.Roles)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("user_id", claims.Subject)
			c.Set("scope_id", scopeID)

			return next(c)
		}
	}
}

// DevAuthMiddleware stamps every request with a fixed development scope.
// Never enabled outside ENV=development.
func DevAuthMiddleware() echo.MiddlewareFunc {
	devScope := uuid.MustParse("00000000-0000-0000-0000-000000000001").String()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, UserIDKey, devScope)
			ctx = context.WithValue(ctx, ScopeIDKey, devScope)
			ctx = context.WithValue(ctx, ScopeKindKey, ScopeUser)
			ctx = context.WithValue(ctx, UserRolesKey, []string{"admin", "reviewer"})
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("user_id", devScope)
			c.Set("scope_id", devScope)
			return next(c)
		}
	}
}

// RequireRole returns middleware rejecting requests whose token lacks the role.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles, _ := c.Request().Context().Value(UserRolesKey).([]string)
			for _, r := range roles {
				if r == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
		}
	}
}

// ScopeFromContext returns the caller's mapping scope id. The core never reads
// scope ambiently; handlers pull it here and pass it down as an argument.
func ScopeFromContext(ctx context.Context) (uuid.UUID, error) {
	raw, _ := ctx.Value(ScopeIDKey).(string)
	return uuid.Parse(raw)
}

// ScopeKindFromContext returns the caller's scope kind (user or family).
func ScopeKindFromContext(ctx context.Context) string {
	kind, _ := ctx.Value(ScopeKindKey).(string)
	if kind == "" {
		return ScopeUser
	}
	return kind
}
