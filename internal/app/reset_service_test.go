package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopherblog/internal/mail"
	"gopherblog/internal/repository"
	"gopherblog/internal/testutil"
)

type captureEnqueuer struct {
	messages []mail.Message
}

func (e *captureEnqueuer) Publish(_ context.Context, msg mail.Message) error {
	e.messages = append(e.messages, msg)
	return nil
}

func newResetFixture(t *testing.T, ttl time.Duration) (*ResetService, *AuthService, *captureEnqueuer) {
	t.Helper()
	users := repository.NewUserRepository(testutil.OpenTestDB(t))
	enqueuer := &captureEnqueuer{}
	reset := NewResetService(users, enqueuer, "test-secret", ttl, "http://blog.test")
	return reset, NewAuthService(users), enqueuer
}

func registerAlice(t *testing.T, auth *AuthService) {
	t.Helper()
	_, err := auth.Register(RegisterInput{Username: "alice", Email: "alice@example.com", Password: "correcthorse"})
	require.NoError(t, err)
}

func tokenFromMail(t *testing.T, msg mail.Message) string {
	t.Helper()
	idx := strings.Index(msg.Body, "/reset_password/")
	require.GreaterOrEqual(t, idx, 0, "mail body must contain a reset link")
	link := msg.Body[idx+len("/reset_password/"):]
	return strings.Fields(link)[0]
}

func TestRequestResetEnqueuesMailForKnownEmail(t *testing.T) {
	reset, auth, enqueuer := newResetFixture(t, 30*time.Minute)
	registerAlice(t, auth)

	require.NoError(t, reset.RequestReset(context.Background(), "alice@example.com"))

	require.Len(t, enqueuer.messages, 1)
	msg := enqueuer.messages[0]
	assert.Equal(t, "alice@example.com", msg.To)
	assert.Equal(t, "Password Reset Request", msg.Subject)
	assert.Contains(t, msg.Body, "http://blog.test/reset_password/")
}

func TestRequestResetUnknownEmailIsSilent(t *testing.T) {
	reset, _, enqueuer := newResetFixture(t, 30*time.Minute)

	err := reset.RequestReset(context.Background(), "nobody@example.com")
	assert.NoError(t, err, "unknown emails must not change the response")
	assert.Empty(t, enqueuer.messages)
}

func TestVerifyTokenRoundTrip(t *testing.T) {
	reset, auth, enqueuer := newResetFixture(t, 30*time.Minute)
	registerAlice(t, auth)

	require.NoError(t, reset.RequestReset(context.Background(), "alice@example.com"))
	tok := tokenFromMail(t, enqueuer.messages[0])

	user, err := reset.VerifyToken(tok)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)
}

func TestVerifyTokenExpired(t *testing.T) {
	reset, auth, enqueuer := newResetFixture(t, -time.Minute)
	registerAlice(t, auth)

	require.NoError(t, reset.RequestReset(context.Background(), "alice@example.com"))
	tok := tokenFromMail(t, enqueuer.messages[0])

	user, err := reset.VerifyToken(tok)
	require.NoError(t, err)
	assert.Nil(t, user, "expired token must not resolve to a user")

	_, err = reset.ResetPassword(tok, "newpassword1")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestResetPasswordChangesCredential(t *testing.T) {
	reset, auth, enqueuer := newResetFixture(t, 30*time.Minute)
	registerAlice(t, auth)

	require.NoError(t, reset.RequestReset(context.Background(), "alice@example.com"))
	tok := tokenFromMail(t, enqueuer.messages[0])

	_, err := reset.ResetPassword(tok, "newpassword1")
	require.NoError(t, err)

	_, err = auth.Login("alice@example.com", "correcthorse")
	assert.ErrorIs(t, err, ErrInvalidCredential, "old password must stop working")

	_, err = auth.Login("alice@example.com", "newpassword1")
	assert.NoError(t, err)
}

func TestResetPasswordRejectsShortPasswords(t *testing.T) {
	reset, auth, enqueuer := newResetFixture(t, 30*time.Minute)
	registerAlice(t, auth)

	require.NoError(t, reset.RequestReset(context.Background(), "alice@example.com"))
	tok := tokenFromMail(t, enqueuer.messages[0])

	_, err := reset.ResetPassword(tok, "short")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
