package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"gopherblog/internal/mail"
	"gopherblog/internal/model"
	"gopherblog/internal/pkg/token"
	"gopherblog/internal/repository"
)

// MailEnqueuer hands a composed email off for asynchronous delivery.
// Satisfied by rabbitmq.MailPublisher.
type MailEnqueuer interface {
	Publish(ctx context.Context, msg mail.Message) error
}

type ResetService struct {
	userRepo *repository.UserRepository
	enqueue  MailEnqueuer
	secret   string
	ttl      time.Duration
	baseURL  string
}

func NewResetService(userRepo *repository.UserRepository, enqueue MailEnqueuer, secret string, ttl time.Duration, baseURL string) *ResetService {
	if ttl == 0 {
		ttl = 30 * time.Minute
	}
	return &ResetService{
		userRepo: userRepo,
		enqueue:  enqueue,
		secret:   secret,
		ttl:      ttl,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// RequestReset enqueues a reset email for the account behind the given
// address. The returned outcome is identical whether or not the email
// is registered, so the endpoint cannot be used to probe for accounts.
func (s *ResetService) RequestReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		logrus.WithField("email", email).Debug("reset requested for unregistered email")
		return nil
	}

	tok, err := token.NewResetToken(s.secret, s.ttl, user.ID)
	if err != nil {
		return fmt.Errorf("mint reset token failed: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset_password/%s", s.baseURL, tok)
	if err := s.enqueue.Publish(ctx, mail.ResetMessage(user.Email, resetURL)); err != nil {
		return fmt.Errorf("enqueue reset mail failed: %w", err)
	}

	logrus.WithField("user_id", user.ID).Info("password reset mail enqueued")
	return nil
}

// VerifyToken resolves a reset token to its user, or nil when the token
// is invalid, expired, or points at a deleted account.
func (s *ResetService) VerifyToken(tok string) (*model.User, error) {
	userID, err := token.ParseResetToken(s.secret, tok)
	if err != nil {
		return nil, nil
	}
	return s.userRepo.GetByID(userID)
}

// ResetPassword re-hashes and commits the new password, but only when
// the token still resolves to a valid user.
func (s *ResetService) ResetPassword(tok, newPassword string) (*model.User, error) {
	if len(newPassword) < 8 {
		return nil, ErrInvalidInput
	}

	user, err := s.VerifyToken(tok)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrTokenInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user.PasswordHash = string(hash)
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	logrus.WithField("user_id", user.ID).Info("password reset completed")
	return user, nil
}
