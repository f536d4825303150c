// Package view renders HTML templates with the ambient page data every
// template expects: the current user, flash messages, and the site title.
package view

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"gopherblog/internal/session"
	"gopherblog/internal/transport/http/middleware"
)

type Renderer struct {
	sessions     *session.Store
	siteTitle    string
	cookieMaxAge int
}

func NewRenderer(sessions *session.Store, siteTitle string, cookieMaxAge int) *Renderer {
	return &Renderer{
		sessions:     sessions,
		siteTitle:    siteTitle,
		cookieMaxAge: cookieMaxAge,
	}
}

// HTML renders a template, merging in the principal and any pending
// flash messages.
func (r *Renderer) HTML(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["SiteTitle"] = r.siteTitle
	data["User"] = middleware.CurrentUser(c)
	if _, ok := data["Errors"]; !ok {
		// Templates index .Errors unconditionally.
		data["Errors"] = map[string]string{}
	}

	if id := middleware.SessionID(c); id != "" {
		flashes, err := r.sessions.PopFlashes(c.Request.Context(), id)
		if err != nil {
			logrus.WithError(err).Warn("pop flashes failed")
		} else if len(flashes) > 0 {
			data["Flashes"] = flashes
		}
	}

	c.HTML(status, name, data)
}

// Flash queues a one-shot message for the next rendered page, creating
// an anonymous session when the visitor has none yet.
func (r *Renderer) Flash(c *gin.Context, category, message string) {
	ctx := c.Request.Context()
	id := middleware.SessionID(c)
	if id == "" {
		newID, err := r.sessions.Create(ctx, 0)
		if err != nil {
			logrus.WithError(err).Warn("create flash session failed")
			return
		}
		id = newID
		middleware.SetSessionCookie(c, id, r.cookieMaxAge)
	}

	if err := r.sessions.AddFlash(ctx, id, category, message); err != nil {
		logrus.WithError(err).Warn("add flash failed")
	}
}

func (r *Renderer) NotFound(c *gin.Context) {
	r.HTML(c, http.StatusNotFound, "404.html", gin.H{"Title": "Page Not Found"})
}

func (r *Renderer) Forbidden(c *gin.Context) {
	r.HTML(c, http.StatusForbidden, "403.html", gin.H{"Title": "Forbidden"})
}

func (r *Renderer) ServerError(c *gin.Context) {
	r.HTML(c, http.StatusInternalServerError, "500.html", gin.H{"Title": "Something Went Wrong"})
}
