package auth

import (
	"fmt"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"blogapi/internal/apperror"
	"blogapi/internal/model"
	"blogapi/internal/repository"
)

// Context keys for values attached by the middleware chain.
const (
	claimsContextKey = "token_claims"
	userContextKey   = "current_user"
)

// Messages returned by the authentication gate. Missing, malformed, expired
// and wrongly signed tokens all produce the same message so the response
// does not disclose which condition applied.
const (
	MsgNotAuthorized = "Not authorized to access this route"
	MsgUserNotFound  = "User not found"
)

// TokenMiddleware returns the bearer-token verification gate. It extracts
// the token from the Authorization header, verifies it, and attaches the
// claims to the request context. Every failure is a uniform 401. Only
// access tokens pass; a refresh token cannot be replayed as a bearer token.
func TokenMiddleware(jwtService *JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: claimsContextKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := jwtService.Verify(token)
			if err != nil {
				return nil, err
			}
			if claims.TokenUse != TokenUseAccess {
				return nil, apperror.NewInvalidToken(nil)
			}
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apperror.NewNotAuthorized(MsgNotAuthorized, err)
		},
	})
}

// LoadUser resolves the verified claims to a stored user and attaches it to
// the request context. The credential hash is never loaded. Storage errors
// fail closed as 401 rather than surfacing as 500.
func LoadUser(users repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(claimsContextKey).(*Claims)
			if !ok {
				return apperror.NewNotAuthorized(MsgNotAuthorized, nil)
			}
			user, err := users.FindByID(c.Request().Context(), claims.UserID)
			if err != nil {
				if apperror.IsNotFound(err) {
					return apperror.NewNotAuthorized(MsgUserNotFound, err)
				}
				return apperror.NewNotAuthorized(MsgNotAuthorized, err)
			}
			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// RequireRoles returns the authorization gate for the given allow-set.
// It assumes LoadUser has already run; a request whose user's role is not
// in the set is rejected with a 403 naming the offending role.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return apperror.NewNotAuthorized(MsgNotAuthorized, nil)
			}
			if _, ok := allowed[user.Role]; !ok {
				return apperror.NewForbidden(fmt.Sprintf("Role '%s' is not authorized to access this route", user.Role))
			}
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user attached by LoadUser.
func CurrentUser(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(userContextKey).(*model.User)
	return user, ok
}
