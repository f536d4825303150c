package handler

import (
	"net/mail"
	"strings"
)

// Form inputs are explicit typed structs with explicit validation;
// Validate returns a field→message map that templates render inline.

type RegisterForm struct {
	Username        string `form:"username"`
	Email           string `form:"email"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirm_password"`
}

func (f *RegisterForm) Validate() map[string]string {
	errs := map[string]string{}
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)

	if len(f.Username) < 3 || len(f.Username) > 64 {
		errs["username"] = "Username must be between 3 and 64 characters."
	}
	if !validEmail(f.Email) {
		errs["email"] = "Please enter a valid email address."
	}
	if len(f.Password) < 8 {
		errs["password"] = "Password must be at least 8 characters."
	}
	if f.Password != f.ConfirmPassword {
		errs["confirm_password"] = "Passwords must match."
	}
	return errs
}

type LoginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

func (f *LoginForm) Validate() map[string]string {
	errs := map[string]string{}
	f.Email = strings.TrimSpace(f.Email)
	if !validEmail(f.Email) {
		errs["email"] = "Please enter a valid email address."
	}
	if f.Password == "" {
		errs["password"] = "Password is required."
	}
	return errs
}

type UpdateAccountForm struct {
	Username string `form:"username"`
	Email    string `form:"email"`
}

func (f *UpdateAccountForm) Validate() map[string]string {
	errs := map[string]string{}
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)

	if len(f.Username) < 3 || len(f.Username) > 64 {
		errs["username"] = "Username must be between 3 and 64 characters."
	}
	if !validEmail(f.Email) {
		errs["email"] = "Please enter a valid email address."
	}
	return errs
}

type PostForm struct {
	Title   string `form:"title"`
	Content string `form:"content"`
}

func (f *PostForm) Validate() map[string]string {
	errs := map[string]string{}
	f.Title = strings.TrimSpace(f.Title)
	f.Content = strings.TrimSpace(f.Content)

	if f.Title == "" || len(f.Title) > 100 {
		errs["title"] = "Title is required and must be at most 100 characters."
	}
	if f.Content == "" {
		errs["content"] = "Content is required."
	}
	return errs
}

type ResetRequestForm struct {
	Email string `form:"email"`
}

func (f *ResetRequestForm) Validate() map[string]string {
	errs := map[string]string{}
	f.Email = strings.TrimSpace(f.Email)
	if !validEmail(f.Email) {
		errs["email"] = "Please enter a valid email address."
	}
	return errs
}

type ResetPasswordForm struct {
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirm_password"`
}

func (f *ResetPasswordForm) Validate() map[string]string {
	errs := map[string]string{}
	if len(f.Password) < 8 {
		errs["password"] = "Password must be at least 8 characters."
	}
	if f.Password != f.ConfirmPassword {
		errs["confirm_password"] = "Passwords must match."
	}
	return errs
}

func validEmail(address string) bool {
	if address == "" || len(address) > 128 {
		return false
	}
	parsed, err := mail.ParseAddress(address)
	return err == nil && parsed.Address == address
}
