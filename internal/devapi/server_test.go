package devapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mkolodiy/go-auth-shell/internal"
	"github.com/mkolodiy/go-auth-shell/internal/api"
	"github.com/mkolodiy/go-auth-shell/internal/auth"
	"github.com/mkolodiy/go-auth-shell/internal/db"
	"github.com/mkolodiy/go-auth-shell/internal/query"
	"github.com/mkolodiy/go-auth-shell/internal/routes"
	log "github.com/sirupsen/logrus"
)

func discardLogger() *log.Logger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newDevAPI(t *testing.T, ttl time.Duration) (*httptest.Server, *Server) {
	t.Helper()
	sqlDb, err := db.Setup(context.Background(), filepath.Join(t.TempDir(), "dev.db"))
	if err != nil {
		t.Fatalf("db.Setup() error = %v", err)
	}
	s := New(sqlDb, ttl, discardLogger())
	srv := httptest.NewServer(s.Routes())
	t.Cleanup(func() {
		srv.Close()
		sqlDb.Close()
	})
	return srv, s
}

var jane = internal.SignupData{
	Prefix:      internal.UserPrefixMRS,
	FirstName:   "Jane",
	MiddleName:  "M",
	LastName:    "Doe",
	Email:       "jane@example.com",
	Password:    "secret1",
	Phone:       "555-0100",
	DateOfBirth: "1990-05-05",
	Gender:      internal.GenderFemale,
}

func TestSignupAndLogin(t *testing.T) {
	srv, _ := newDevAPI(t, time.Hour)
	client := api.NewClient(srv.URL)
	ctx := context.Background()

	session, err := client.CreateSignup(ctx, jane)
	if err != nil {
		t.Fatalf("CreateSignup() error = %v", err)
	}
	if session.Token == "" || session.User.Email != jane.Email || session.User.FirstName != "Jane" {
		t.Errorf("CreateSignup() = %+v", session)
	}
	if time.Until(session.ExpiresAt) < 59*time.Minute {
		t.Errorf("ExpiresAt = %v, want about an hour from now", session.ExpiresAt)
	}

	_, err = client.CreateSignup(ctx, jane)
	if api.StatusCode(err) != http.StatusConflict {
		t.Errorf("duplicate CreateSignup() error = %v, want 409", err)
	}

	login, err := client.CreateLogin(ctx, internal.LoginData{Email: jane.Email, Password: jane.Password})
	if err != nil {
		t.Fatalf("CreateLogin() error = %v", err)
	}
	if login.Token == "" || login.Token == session.Token || login.User.LastName != "Doe" {
		t.Errorf("CreateLogin() = %+v", login)
	}

	_, err = client.CreateLogin(ctx, internal.LoginData{Email: jane.Email, Password: "wrong-password"})
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized || apiErr.Code != "invalid_credentials" {
		t.Errorf("CreateLogin(wrong password) error = %v", err)
	}

	_, err = client.CreateLogin(ctx, internal.LoginData{Email: "nobody@example.com", Password: "secret1"})
	if api.StatusCode(err) != http.StatusUnauthorized {
		t.Errorf("CreateLogin(unknown user) error = %v, want 401", err)
	}
}

func TestValidationFailed(t *testing.T) {
	srv, _ := newDevAPI(t, time.Hour)

	bad := jane
	bad.Gender = "ROBOT"
	bad.Password = "123"
	_, err := api.NewClient(srv.URL).CreateSignup(context.Background(), bad)

	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest || apiErr.Code != "validation_failed" {
		t.Fatalf("error = %v, want validation_failed", err)
	}
	for _, want := range []string{"gender:", "password:"} {
		if !strings.Contains(apiErr.Message, want) {
			t.Errorf("message %q missing %q", apiErr.Message, want)
		}
	}
}

func sessionRequest(t *testing.T, method, url, token string) int {
	t.Helper()
	req, _ := http.NewRequest(method, url, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	return res.StatusCode
}

func TestSessionEndpoints(t *testing.T) {
	srv, _ := newDevAPI(t, time.Hour)
	session, err := api.NewClient(srv.URL).CreateSignup(context.Background(), jane)
	if err != nil {
		t.Fatal(err)
	}

	if got := sessionRequest(t, http.MethodGet, srv.URL+"/auth/session", ""); got != http.StatusUnauthorized {
		t.Errorf("GET without token = %d", got)
	}
	if got := sessionRequest(t, http.MethodGet, srv.URL+"/auth/session", session.Token); got != http.StatusOK {
		t.Errorf("GET = %d", got)
	}
	if got := sessionRequest(t, http.MethodDelete, srv.URL+"/auth/session", session.Token); got != http.StatusNoContent {
		t.Errorf("DELETE = %d", got)
	}
	if got := sessionRequest(t, http.MethodGet, srv.URL+"/auth/session", session.Token); got != http.StatusUnauthorized {
		t.Errorf("GET after DELETE = %d", got)
	}
}

func TestExpiredSession(t *testing.T) {
	srv, _ := newDevAPI(t, -time.Minute)
	session, err := api.NewClient(srv.URL).CreateSignup(context.Background(), jane)
	if err != nil {
		t.Fatal(err)
	}
	if got := sessionRequest(t, http.MethodGet, srv.URL+"/auth/session", session.Token); got != http.StatusUnauthorized {
		t.Errorf("GET expired = %d, want 401", got)
	}
}

func TestCleanUpSessionsStopsWithContext(t *testing.T) {
	_, s := newDevAPI(t, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.CleanUpSessions(ctx, 5*time.Millisecond)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("CleanUpSessions did not return after cancel")
	}
}

// TestShellAgainstDevAPI runs the web shell against the dev API: signup,
// then login with the same credentials.
func TestShellAgainstDevAPI(t *testing.T) {
	apiSrv, _ := newDevAPI(t, time.Hour)

	client := query.NewClient(query.WithLogger(discardLogger()))
	forms := auth.NewStore(time.Minute, 0)
	shell := httptest.NewServer(routes.NewRouter(routes.Deps{
		Client: client,
		API:    api.NewClient(apiSrv.URL),
		Forms:  forms,
		Log:    discardLogger(),
	}))
	t.Cleanup(func() {
		shell.Close()
		forms.Close()
		client.Close()
	})

	httpClient := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}

	res, err := httpClient.PostForm(shell.URL+"/auth/signup", url.Values{
		"prefix":      {"MR"},
		"gender":      {"MALE"},
		"firstName":   {"John"},
		"middleName":  {"Q"},
		"lastName":    {"Public"},
		"email":       {"john@example.com"},
		"password":    {"secret1"},
		"phone":       {"555"},
		"dateOfBirth": {"1980-01-01"},
	})
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusSeeOther || res.Header.Get("Location") != "/app" {
		t.Fatalf("signup = %d %q", res.StatusCode, res.Header.Get("Location"))
	}

	res, err = httpClient.PostForm(shell.URL+"/auth/login", url.Values{
		"email":    {"john@example.com"},
		"password": {"wrong-password"},
	})
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	if res.StatusCode != http.StatusUnauthorized || !strings.Contains(string(body), "Invalid email or password") {
		t.Errorf("wrong password login = %d", res.StatusCode)
	}

	res, err = httpClient.PostForm(shell.URL+"/auth/login", url.Values{
		"email":    {"john@example.com"},
		"password": {"secret1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusSeeOther || res.Header.Get("Location") != "/app" {
		t.Errorf("login = %d %q", res.StatusCode, res.Header.Get("Location"))
	}
}
