package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"gopherblog/internal/app"
	"gopherblog/internal/session"
	"gopherblog/internal/transport/http/middleware"
	"gopherblog/internal/transport/http/view"
)

type AuthHandler struct {
	auth         *app.AuthService
	sessions     *session.Store
	view         *view.Renderer
	cookieMaxAge int
}

func NewAuthHandler(auth *app.AuthService, sessions *session.Store, renderer *view.Renderer, cookieMaxAge int) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		sessions:     sessions,
		view:         renderer,
		cookieMaxAge: cookieMaxAge,
	}
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	h.view.HTML(c, http.StatusOK, "register.html", gin.H{
		"Title": "Register",
		"Form":  &RegisterForm{},
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	var form RegisterForm
	_ = c.ShouldBind(&form)
	fieldErrs := form.Validate()

	if len(fieldErrs) == 0 {
		_, err := h.auth.Register(app.RegisterInput{
			Username: form.Username,
			Email:    form.Email,
			Password: form.Password,
		})
		switch {
		case err == nil:
			h.view.Flash(c, "success", fmt.Sprintf("Account created for %s! You are now able to log in.", form.Username))
			c.Redirect(http.StatusFound, "/login")
			return
		case errors.Is(err, app.ErrUsernameExists):
			fieldErrs["username"] = "That username is taken. Please choose a different one."
		case errors.Is(err, app.ErrEmailExists):
			fieldErrs["email"] = "That email is taken. Please choose a different one."
		case errors.Is(err, app.ErrInvalidInput):
			fieldErrs["username"] = "Please check the form and try again."
		default:
			logrus.WithError(err).Error("register failed")
			h.view.ServerError(c)
			return
		}
	}

	h.view.HTML(c, http.StatusOK, "register.html", gin.H{
		"Title":  "Register",
		"Form":   &form,
		"Errors": fieldErrs,
	})
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	h.view.HTML(c, http.StatusOK, "login.html", gin.H{
		"Title": "Login",
		"Form":  &LoginForm{},
		"Next":  c.Query("next"),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	var form LoginForm
	_ = c.ShouldBind(&form)
	next := c.PostForm("next")

	user, err := h.auth.Login(form.Email, form.Password)
	if err != nil {
		if !errors.Is(err, app.ErrInvalidCredential) {
			logrus.WithError(err).Error("login failed")
			h.view.ServerError(c)
			return
		}
		// One generic message for unknown email and wrong password.
		h.view.Flash(c, "danger", "Login unsuccessful. Please check email and password.")
		h.view.HTML(c, http.StatusOK, "login.html", gin.H{
			"Title": "Login",
			"Form":  &form,
			"Next":  next,
		})
		return
	}

	// Replace any anonymous flash session with an authenticated one.
	if old := middleware.SessionID(c); old != "" {
		if err := h.sessions.Delete(c.Request.Context(), old); err != nil {
			logrus.WithError(err).Warn("drop anonymous session failed")
		}
	}

	id, err := h.sessions.Create(c.Request.Context(), user.ID)
	if err != nil {
		logrus.WithError(err).Error("create session failed")
		h.view.ServerError(c)
		return
	}
	middleware.SetSessionCookie(c, id, h.cookieMaxAge)

	c.Redirect(http.StatusFound, safeNext(next))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if id := middleware.SessionID(c); id != "" {
		if err := h.sessions.Delete(c.Request.Context(), id); err != nil {
			logrus.WithError(err).Warn("delete session failed")
		}
	}
	middleware.ClearSessionCookie(c)
	c.Redirect(http.StatusFound, "/")
}

// safeNext only honors relative paths, so the login redirect cannot be
// abused as an open redirect.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}
