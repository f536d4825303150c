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

type AccountHandler struct {
	account   *app.AccountService
	view      *view.Renderer
	maxUpload int64
}

func NewAccountHandler(account *app.AccountService, renderer *view.Renderer, maxUploadMB int) *AccountHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 5
	}
	return &AccountHandler{
		account:   account,
		view:      renderer,
		maxUpload: int64(maxUploadMB) << 20,
	}
}

func (h *AccountHandler) ShowAccount(c *gin.Context) {
	user := middleware.CurrentUser(c)
	h.view.HTML(c, http.StatusOK, "account.html", gin.H{
		"Title":    "Account",
		"Form":     &UpdateAccountForm{Username: user.Username, Email: user.Email},
		"ImageURL": "/static/profile_pics/" + user.ImageFile,
	})
}

func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var form UpdateAccountForm
	_ = c.ShouldBind(&form)
	fieldErrs := form.Validate()

	input := app.UpdateAccountInput{
		UserID:   user.ID,
		Username: form.Username,
		Email:    form.Email,
	}

	file, err := c.FormFile("picture")
	if err == nil && file != nil {
		if file.Size > h.maxUpload {
			fieldErrs["picture"] = "Picture is too large."
		} else {
			opened, err := file.Open()
			if err != nil {
				fieldErrs["picture"] = "Could not read the uploaded picture."
			} else {
				defer opened.Close()
				input.Picture = opened
				input.PictureName = file.Filename
			}
		}
	}

	if len(fieldErrs) == 0 {
		_, err := h.account.Update(input)
		switch {
		case err == nil:
			h.view.Flash(c, "success", "Your account has been updated!")
			c.Redirect(http.StatusFound, "/account")
			return
		case errors.Is(err, app.ErrUsernameExists):
			fieldErrs["username"] = "That username is taken. Please choose a different one."
		case errors.Is(err, app.ErrEmailExists):
			fieldErrs["email"] = "That email is taken. Please choose a different one."
		case errors.Is(err, app.ErrInvalidInput):
			// Form validation already vets username and email, so this
			// is almost always an unreadable upload.
			fieldErrs["picture"] = "That file could not be read as an image."
		default:
			logrus.WithError(err).Error("update account failed")
			h.view.ServerError(c)
			return
		}
	}

	h.view.HTML(c, http.StatusOK, "account.html", gin.H{
		"Title":    "Account",
		"Form":     &form,
		"Errors":   fieldErrs,
		"ImageURL": "/static/profile_pics/" + user.ImageFile,
	})
}
