package http

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopherblog/internal/config"
	"gopherblog/internal/mail"
	"gopherblog/internal/testutil"
)

type captureEnqueuer struct {
	messages []mail.Message
}

func (e *captureEnqueuer) Publish(_ context.Context, msg mail.Message) error {
	e.messages = append(e.messages, msg)
	return nil
}

func newTestServer(t *testing.T) (*httptest.Server, *captureEnqueuer) {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Name = "gopherblog"
	cfg.App.Env = "test"
	cfg.App.GinMode = "test"
	cfg.App.BaseURL = "http://blog.test"
	cfg.App.TemplatesGlob = "../../../web/templates/*.html"
	cfg.App.StaticDir = "../../../web/static"
	cfg.Blog.Title = "Gopher Blog"
	cfg.Blog.PageSize = 5
	cfg.Auth.SecretKey = "test-secret"
	cfg.Auth.SessionTTLMinute = 60
	cfg.Auth.ResetExpireMinute = 30
	cfg.Media.Dir = t.TempDir()
	cfg.Media.DefaultImage = "default.jpg"
	cfg.Media.ThumbSize = 125
	cfg.Media.MaxUploadMB = 5

	enqueuer := &captureEnqueuer{}
	router := NewRouter(Deps{
		Config:    cfg,
		DB:        testutil.OpenTestDB(t),
		Redis:     testutil.OpenTestRedis(t),
		Mail:      enqueuer,
		StartedAt: time.Now(),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, enqueuer
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func postForm(t *testing.T, client *http.Client, target string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := client.PostForm(target, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func get(t *testing.T, client *http.Client, target string) (*http.Response, string) {
	t.Helper()
	resp, err := client.Get(target)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func registerAndLogin(t *testing.T, client *http.Client, base, username, email, password string) {
	t.Helper()
	resp, body := postForm(t, client, base+"/register", url.Values{
		"username":         {username},
		"email":            {email},
		"password":         {password},
		"confirm_password": {password},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Account created for "+username)

	resp, _ = postForm(t, client, base+"/login", url.Values{
		"email":    {email},
		"password": {password},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/", resp.Request.URL.Path, "login should land on home")
}

func TestRegisterLoginPostLogoutScenario(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newClient(t)

	registerAndLogin(t, client, srv.URL, "alice", "alice@example.com", "correcthorse")

	// Create a post and find it on the author's page.
	resp, body := postForm(t, client, srv.URL+"/post/new", url.Values{
		"title":   {"Hello"},
		"content": {"My first post."},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Your post has been created!")

	_, body = get(t, client, srv.URL+"/user/alice")
	assert.Contains(t, body, "Hello")
	assert.Contains(t, body, "Posts by alice (1)")

	// Logout, then an unauthenticated delete must bounce to login.
	_, _ = get(t, client, srv.URL+"/logout")

	resp, _ = postForm(t, client, srv.URL+"/post/1/delete", url.Values{})
	assert.Equal(t, "/login", resp.Request.URL.Path)

	// The post survived.
	resp, body = get(t, client, srv.URL+"/post/1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Hello")
}

func TestNonAuthorCannotModifyPost(t *testing.T) {
	srv, _ := newTestServer(t)

	alice := newClient(t)
	registerAndLogin(t, alice, srv.URL, "alice", "alice@example.com", "correcthorse")
	resp, _ := postForm(t, alice, srv.URL+"/post/new", url.Values{
		"title":   {"Alice's post"},
		"content": {"Hers alone."},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	bob := newClient(t)
	registerAndLogin(t, bob, srv.URL, "bob", "bob@example.com", "correcthorse")

	resp, _ = postForm(t, bob, srv.URL+"/post/1/update", url.Values{
		"title":   {"Hijacked"},
		"content": {"Mine now."},
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = postForm(t, bob, srv.URL+"/post/1/delete", url.Values{})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, body := get(t, bob, srv.URL+"/post/1")
	assert.Contains(t, body, "Alice&#39;s post")
}

func TestLoginFailureShowsGenericMessage(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newClient(t)

	resp, body := postForm(t, client, srv.URL+"/login", url.Values{
		"email":    {"nobody@example.com"},
		"password": {"whatever1"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Login unsuccessful. Please check email and password.")
}

func TestLoginNextRedirect(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newClient(t)

	// Visiting the account page logged out redirects to login.
	resp, _ := get(t, client, srv.URL+"/account")
	require.Equal(t, "/login", resp.Request.URL.Path)
	require.Equal(t, "/account", resp.Request.URL.Query().Get("next"))

	resp, body := postForm(t, client, srv.URL+"/register", url.Values{
		"username":         {"alice"},
		"email":            {"alice@example.com"},
		"password":         {"correcthorse"},
		"confirm_password": {"correcthorse"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Account created")

	resp, _ = postForm(t, client, srv.URL+"/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"correcthorse"},
		"next":     {"/account"},
	})
	assert.Equal(t, "/account", resp.Request.URL.Path)
}

func TestMissingPostIs404(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newClient(t)

	resp, _ := get(t, client, srv.URL+"/post/999")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = get(t, client, srv.URL+"/user/nobody")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestResetRequestResponsesDoNotLeakAccounts(t *testing.T) {
	srv, enqueuer := newTestServer(t)

	client := newClient(t)
	resp, body := postForm(t, client, srv.URL+"/register", url.Values{
		"username":         {"alice"},
		"email":            {"alice@example.com"},
		"password":         {"correcthorse"},
		"confirm_password": {"correcthorse"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Account created")

	known := newClient(t)
	respKnown, bodyKnown := postForm(t, known, srv.URL+"/reset_password", url.Values{
		"email": {"alice@example.com"},
	})

	unknown := newClient(t)
	respUnknown, bodyUnknown := postForm(t, unknown, srv.URL+"/reset_password", url.Values{
		"email": {"nobody@example.com"},
	})

	assert.Equal(t, respKnown.Request.URL.Path, respUnknown.Request.URL.Path)
	assert.Contains(t, bodyKnown, "An email has been sent")
	assert.Contains(t, bodyUnknown, "An email has been sent")

	// Only the registered address actually got a mail enqueued.
	require.Len(t, enqueuer.messages, 1)
	assert.Equal(t, "alice@example.com", enqueuer.messages[0].To)
	assert.True(t, strings.Contains(enqueuer.messages[0].Body, "/reset_password/"))
}
