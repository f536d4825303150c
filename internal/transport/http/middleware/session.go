package middleware

import (
	"net/url"

	"github.com/gin-gonic/gin"

	"gopherblog/internal/model"
	"gopherblog/internal/repository"
	"gopherblog/internal/session"
)

// SessionCookie names the cookie carrying the opaque session ID.
const SessionCookie = "gopherblog_session"

const (
	ctxPrincipalKey = "principal"
	ctxSessionIDKey = "session_id"
)

// LoadSession resolves the session cookie into a principal for every
// request. Handlers receive the authenticated user (or nil) explicitly
// through CurrentUser instead of an ambient lookup.
func LoadSession(store *session.Store, users *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(SessionCookie)
		if err != nil || id == "" {
			c.Next()
			return
		}

		data, err := store.Get(c.Request.Context(), id)
		if err != nil || data == nil {
			c.Next()
			return
		}

		c.Set(ctxSessionIDKey, id)
		if data.UserID != 0 {
			user, err := users.GetByID(data.UserID)
			if err == nil && user != nil {
				c.Set(ctxPrincipalKey, user)
			}
		}
		c.Next()
	}
}

// RequireLogin redirects unauthenticated visitors to the login page,
// remembering the page they were after.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			RedirectToLogin(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RedirectToLogin sends the visitor to /login with a next parameter
// pointing back at the requested page.
func RedirectToLogin(c *gin.Context) {
	next := url.QueryEscape(c.Request.URL.RequestURI())
	c.Redirect(302, "/login?next="+next)
}

// CurrentUser returns the authenticated principal, or nil.
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(ctxPrincipalKey)
	if !ok {
		return nil
	}
	user, ok := v.(*model.User)
	if !ok {
		return nil
	}
	return user
}

// SessionID returns the current request's session ID, or "".
func SessionID(c *gin.Context) string {
	v, ok := c.Get(ctxSessionIDKey)
	if !ok {
		return ""
	}
	id, _ := v.(string)
	return id
}

// SetSessionCookie installs a session cookie and makes the ID visible
// to the rest of the request.
func SetSessionCookie(c *gin.Context, id string, maxAge int) {
	c.SetCookie(SessionCookie, id, maxAge, "/", "", false, true)
	c.Set(ctxSessionIDKey, id)
}

func ClearSessionCookie(c *gin.Context) {
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
}
