package controller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mkolodiy/go-auth-shell/internal"
	"github.com/mkolodiy/go-auth-shell/internal/schema"
)

var signupSchema = schema.MustNew(schema.Messages{
	"firstName":   {"required": "First Name is required"},
	"middleName":  {"required": "Middle Name is required"},
	"lastName":    {"required": "Last Name is required"},
	"phone":       {"required": "Phone is required"},
	"dateOfBirth": {"required": "Date of Birth is required"},
})

func validSignup() map[string]string {
	return map[string]string{
		"prefix":      "MISS",
		"firstName":   "Ada",
		"middleName":  "B",
		"lastName":    "Lovelace",
		"email":       "ada@example.com",
		"password":    "secret1",
		"phone":       "555-0100",
		"dateOfBirth": "1815-12-10",
		"gender":      "FEMALE",
	}
}

func TestSubmitMissingRequiredField(t *testing.T) {
	required := []struct {
		field string
		msg   string
	}{
		{"firstName", "First Name is required"},
		{"middleName", "Middle Name is required"},
		{"lastName", "Last Name is required"},
		{"phone", "Phone is required"},
		{"dateOfBirth", "Date of Birth is required"},
	}

	for _, tt := range required {
		t.Run(tt.field, func(t *testing.T) {
			c := New[internal.SignupData](signupSchema, validSignup())
			c.Set(tt.field, "")

			called := false
			err := c.Submit(context.Background(), func(context.Context, internal.SignupData) error {
				called = true
				return nil
			})
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("Submit() error = %v, want ErrInvalid", err)
			}
			if called {
				t.Error("handler called for an invalid value bag")
			}
			errs := c.Errors()
			if len(errs) != 1 || errs[tt.field] != tt.msg {
				t.Errorf("Errors() = %v, want only %s=%q", errs, tt.field, tt.msg)
			}
			if got := c.Bind(tt.field).Error; got != tt.msg {
				t.Errorf("Bind(%q).Error = %q, want %q", tt.field, got, tt.msg)
			}
			if c.Phase() != Editing {
				t.Errorf("Phase() = %v, want editing", c.Phase())
			}
		})
	}
}

func TestSubmitValid(t *testing.T) {
	c := New[internal.SignupData](signupSchema, validSignup())

	var calls int
	var got internal.SignupData
	err := c.Submit(context.Background(), func(_ context.Context, payload internal.SignupData) error {
		calls++
		got = payload
		return nil
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if calls != 1 {
		t.Fatalf("handler calls = %d, want 1", calls)
	}
	want := internal.SignupData{
		Prefix:      internal.UserPrefixMISS,
		FirstName:   "Ada",
		MiddleName:  "B",
		LastName:    "Lovelace",
		Email:       "ada@example.com",
		Password:    "secret1",
		Phone:       "555-0100",
		DateOfBirth: "1815-12-10",
		Gender:      internal.GenderFemale,
	}
	if got != want {
		t.Errorf("payload = %+v, want %+v", got, want)
	}
	if errs := c.Errors(); !errs.Valid() {
		t.Errorf("Errors() = %v, want none", errs)
	}
	if c.Phase() != SettledSuccess {
		t.Errorf("Phase() = %v, want settled-success", c.Phase())
	}

	if err := c.Submit(context.Background(), func(context.Context, internal.SignupData) error {
		calls++
		return nil
	}); !errors.Is(err, ErrAlreadySubmitted) {
		t.Errorf("second Submit() error = %v, want ErrAlreadySubmitted", err)
	}
	if calls != 1 {
		t.Errorf("handler calls = %d after resubmit, want 1", calls)
	}
}

func TestSubmitHandlerError(t *testing.T) {
	c := New[internal.SignupData](signupSchema, validSignup())
	cause := errors.New("connection refused")

	err := c.Submit(context.Background(), func(context.Context, internal.SignupData) error {
		return cause
	})
	var subErr *SubmissionError
	if !errors.As(err, &subErr) {
		t.Fatalf("Submit() error = %v, want *SubmissionError", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("Submit() error does not wrap the handler error")
	}
	if c.Phase() != SettledError {
		t.Errorf("Phase() = %v, want settled-error", c.Phase())
	}
	if c.Err() != cause {
		t.Errorf("Err() = %v, want %v", c.Err(), cause)
	}

	c.Set("phone", "555-0199")
	if c.Phase() != Editing {
		t.Errorf("Phase() after edit = %v, want editing", c.Phase())
	}
	if c.Err() != nil {
		t.Errorf("Err() after edit = %v, want nil", c.Err())
	}

	if err := c.Submit(context.Background(), func(context.Context, internal.SignupData) error { return nil }); err != nil {
		t.Fatalf("retry Submit() error = %v", err)
	}
}

func TestSubmitWhileInFlight(t *testing.T) {
	c := New[internal.SignupData](signupSchema, validSignup())

	release := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = c.Submit(context.Background(), func(context.Context, internal.SignupData) error {
			calls.Add(1)
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	if c.Phase() != Submitting {
		t.Errorf("Phase() = %v, want submitting", c.Phase())
	}
	err := c.Submit(context.Background(), func(context.Context, internal.SignupData) error {
		calls.Add(1)
		return nil
	})
	if !errors.Is(err, ErrSubmitInProgress) {
		t.Errorf("concurrent Submit() error = %v, want ErrSubmitInProgress", err)
	}

	close(release)
	wg.Wait()
	if n := calls.Load(); n != 1 {
		t.Errorf("handler calls = %d, want 1", n)
	}
}

func TestSetIgnoresUnknownFields(t *testing.T) {
	c := New[internal.LoginData](signupSchema, internal.LoginDefaults())
	c.Set("admin", "true")

	if _, ok := c.Values()["admin"]; ok {
		t.Error("unknown field added to the value bag")
	}
}

func TestDefaultsAreCopied(t *testing.T) {
	defaults := internal.SignupDefaults()
	c := New[internal.SignupData](signupSchema, defaults)
	c.Set("firstName", "Ada")

	if defaults["firstName"] != "" {
		t.Error("Set changed the defaults map")
	}
	if got := c.Bind("prefix").Value; got != "MR" {
		t.Errorf("default prefix = %q, want MR", got)
	}
	if got := c.Bind("gender").Value; got != "UNSPECIFIED" {
		t.Errorf("default gender = %q, want UNSPECIFIED", got)
	}
}

func TestSubmitSettlesWhenHandlerPanics(t *testing.T) {
	c := New[internal.SignupData](signupSchema, validSignup())

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("handler panic was swallowed")
			}
		}()
		c.Submit(context.Background(), func(context.Context, internal.SignupData) error {
			panic("boom")
		})
	}()

	if c.Phase() != SettledError {
		t.Fatalf("Phase() = %v, want settled-error", c.Phase())
	}
	if c.Err() == nil {
		t.Error("Err() = nil after a panicking handler")
	}

	calls := 0
	err := c.Submit(context.Background(), func(context.Context, internal.SignupData) error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Fatalf("resubmit: err = %v, calls = %d", err, calls)
	}
	if c.Phase() != SettledSuccess {
		t.Errorf("Phase() = %v, want settled-success", c.Phase())
	}
}
