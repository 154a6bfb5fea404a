package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mkolodiy/go-auth-shell/internal"
)

func TestCreateLogin(t *testing.T) {
	expires := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["email"] != "a@b.com" || body["password"] != "secret1" {
			t.Errorf("body = %v", body)
		}
		json.NewEncoder(w).Encode(Session{Token: "tok", ExpiresAt: expires, User: User{Email: "a@b.com"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	session, err := c.CreateLogin(context.Background(), internal.LoginData{Email: "a@b.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("CreateLogin() error = %v", err)
	}
	if session.Token != "tok" || !session.ExpiresAt.Equal(expires) || session.User.Email != "a@b.com" {
		t.Errorf("CreateLogin() = %+v", session)
	}
}

func TestCreateSignupSendsCamelCaseFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/signup" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		want := map[string]string{
			"prefix":      "MR",
			"firstName":   "John",
			"middleName":  "Q",
			"lastName":    "Doe",
			"email":       "john@doe.com",
			"password":    "secret1",
			"phone":       "555",
			"dateOfBirth": "2000-01-01",
			"gender":      "MALE",
		}
		for k, v := range want {
			if body[k] != v {
				t.Errorf("body[%q] = %q, want %q", k, body[k], v)
			}
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Session{Token: "tok"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).CreateSignup(context.Background(), internal.SignupData{
		Prefix:      internal.UserPrefixMR,
		FirstName:   "John",
		MiddleName:  "Q",
		LastName:    "Doe",
		Email:       "john@doe.com",
		Password:    "secret1",
		Phone:       "555",
		DateOfBirth: "2000-01-01",
		Gender:      internal.GenderMale,
	})
	if err != nil {
		t.Fatalf("CreateSignup() error = %v", err)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
		wantMsg  string
	}{
		{"envelope", http.StatusUnauthorized, `{"error":"invalid_credentials","message":"Invalid email or password"}`, "invalid_credentials", "Invalid email or password"},
		{"empty body", http.StatusBadGateway, ``, "Bad Gateway", ""},
		{"not json", http.StatusInternalServerError, `oops`, "Internal Server Error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL).CreateLogin(context.Background(), internal.LoginData{})
			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *Error", err)
			}
			if apiErr.StatusCode != tt.status || apiErr.Code != tt.wantCode || apiErr.Message != tt.wantMsg {
				t.Errorf("error = %+v", apiErr)
			}
			if StatusCode(err) != tt.status {
				t.Errorf("StatusCode() = %d", StatusCode(err))
			}
		})
	}
}

func TestContextCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewClient(srv.URL).CreateLogin(ctx, internal.LoginData{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
	if StatusCode(err) != 0 {
		t.Errorf("StatusCode() = %d, want 0", StatusCode(err))
	}
}

func TestTimeoutIsDeadlineExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithTimeout(20*time.Millisecond))
	start := time.Now()
	_, err := c.CreateLogin(context.Background(), internal.LoginData{Email: "a@b.com", Password: "secret1"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("CreateLogin() error = %v, want context.DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("CreateLogin() took %v", elapsed)
	}
}
