package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"gopherblog/internal/app"
	"gopherblog/internal/transport/http/middleware"
	"gopherblog/internal/transport/http/view"
)

type ResetHandler struct {
	reset *app.ResetService
	view  *view.Renderer
}

func NewResetHandler(reset *app.ResetService, renderer *view.Renderer) *ResetHandler {
	return &ResetHandler{reset: reset, view: renderer}
}

func (h *ResetHandler) ShowRequest(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	h.view.HTML(c, http.StatusOK, "reset_request.html", gin.H{
		"Title": "Reset Password",
		"Form":  &ResetRequestForm{},
	})
}

// Request answers identically whether or not the email belongs to an
// account, so the form cannot be used to enumerate users.
func (h *ResetHandler) Request(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	var form ResetRequestForm
	_ = c.ShouldBind(&form)
	fieldErrs := form.Validate()
	if len(fieldErrs) > 0 {
		h.view.HTML(c, http.StatusOK, "reset_request.html", gin.H{
			"Title":  "Reset Password",
			"Form":   &form,
			"Errors": fieldErrs,
		})
		return
	}

	if err := h.reset.RequestReset(c.Request.Context(), form.Email); err != nil {
		logrus.WithError(err).Error("request password reset failed")
		h.view.ServerError(c)
		return
	}

	h.view.Flash(c, "info", "An email has been sent with instructions to reset your password.")
	c.Redirect(http.StatusFound, "/login")
}

func (h *ResetHandler) ShowReset(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	user, err := h.reset.VerifyToken(c.Param("token"))
	if err != nil {
		logrus.WithError(err).Error("verify reset token failed")
		h.view.ServerError(c)
		return
	}
	if user == nil {
		h.view.Flash(c, "warning", "That is an invalid or expired token.")
		c.Redirect(http.StatusFound, "/reset_password")
		return
	}

	h.view.HTML(c, http.StatusOK, "reset_token.html", gin.H{
		"Title": "Reset Password",
		"Form":  &ResetPasswordForm{},
		"Token": c.Param("token"),
	})
}

func (h *ResetHandler) Reset(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	tok := c.Param("token")

	var form ResetPasswordForm
	_ = c.ShouldBind(&form)
	fieldErrs := form.Validate()
	if len(fieldErrs) > 0 {
		h.view.HTML(c, http.StatusOK, "reset_token.html", gin.H{
			"Title":  "Reset Password",
			"Form":   &form,
			"Errors": fieldErrs,
			"Token":  tok,
		})
		return
	}

	_, err := h.reset.ResetPassword(tok, form.Password)
	switch {
	case err == nil:
		h.view.Flash(c, "success", "Your password has been updated! You are now able to log in.")
		c.Redirect(http.StatusFound, "/login")
	case errors.Is(err, app.ErrTokenInvalid):
		h.view.Flash(c, "warning", "That is an invalid or expired token.")
		c.Redirect(http.StatusFound, "/reset_password")
	case errors.Is(err, app.ErrInvalidInput):
		fieldErrs["password"] = "Password must be at least 8 characters."
		h.view.HTML(c, http.StatusOK, "reset_token.html", gin.H{
			"Title":  "Reset Password",
			"Form":   &form,
			"Errors": fieldErrs,
			"Token":  tok,
		})
	default:
		logrus.WithError(err).Error("reset password failed")
		h.view.ServerError(c)
	}
}
