package auth

import (
	"context"
	"fmt"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	domainErrors "github.com/wekeepgrowing/semo-partner/internal/domain/errors"
	"github.com/wekeepgrowing/semo-partner/internal/domain/model"
	"github.com/wekeepgrowing/semo-partner/pkg/logger"
	"go.uber.org/zap"
)

const (
	userContextKey = "authenticated_user"
	sessionUserKey = "user_id"
)

// UserLoader resolves the session's user id to a fresh user record
type UserLoader interface {
	Current(ctx context.Context, userID int64) (*model.User, error)
}

// SessionConfig holds the configuration for the session middleware
type SessionConfig struct {
	Name   string
	Users  UserLoader
	Logger *zap.Logger
}

// SessionMiddleware resolves the logged-in user from the session cookie.
// Anonymous requests pass through; handlers that need a user call CurrentUser.
func SessionMiddleware(config SessionConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, err := session.Get(config.Name, c)
			if err != nil {
				// tampered or stale cookie
				config.Logger.Debug("Ignoring unreadable session", zap.Error(err))
				return next(c)
			}

			userID, ok := sess.Values[sessionUserKey].(int64)
			if !ok || userID <= 0 {
				return next(c)
			}

			user, err := config.Users.Current(c.Request().Context(), userID)
			if err != nil {
				config.Logger.Warn("Session user could not be loaded",
					zap.Int64("user_id", userID),
					zap.Error(err))
				return next(c)
			}

			c.Set(userContextKey, user)
			c.Set(logger.ContextKeyUserID, user.ID)
			return next(c)
		}
	}
}

// CurrentUser returns the logged-in user or a NotAuthenticated error
func CurrentUser(c echo.Context) (*model.User, error) {
	if user := OptionalUser(c); user != nil {
		return user, nil
	}
	return nil, domainErrors.NewNotAuthenticatedError()
}

// OptionalUser returns the logged-in user or nil
func OptionalUser(c echo.Context) *model.User {
	user, _ := c.Get(userContextKey).(*model.User)
	return user
}

// Login stores the user id in the session
func Login(c echo.Context, name string, userID int64) error {
	// an unreadable cookie still yields a fresh session to overwrite it with
	sess, err := session.Get(name, c)
	if sess == nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	sess.Values[sessionUserKey] = userID
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Logout expires the session
func Logout(c echo.Context, name string) error {
	sess, err := session.Get(name, c)
	if sess == nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	delete(sess.Values, sessionUserKey)
	sess.Options = &sessions.Options{Path: "/", MaxAge: -1, HttpOnly: true}
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
