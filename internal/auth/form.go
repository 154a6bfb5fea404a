// Package auth holds the login and signup forms: a controller bound to a
// schema, a mutation calling the auth API, and the success callback.
package auth

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/mkolodiy/go-auth-shell/internal"
	"github.com/mkolodiy/go-auth-shell/internal/api"
	"github.com/mkolodiy/go-auth-shell/internal/controller"
	"github.com/mkolodiy/go-auth-shell/internal/query"
)

// API is the part of the auth API client the forms submit to.
type API interface {
	CreateLogin(ctx context.Context, data internal.LoginData) (api.Session, error)
	CreateSignup(ctx context.Context, data internal.SignupData) (api.Session, error)
}

const (
	KindLogin  = "login"
	KindSignup = "signup"
)

// Form is one mounted form instance.
type Form[T any] struct {
	id        string
	kind      string
	ctl       *controller.Controller[T]
	mutation  *query.Mutation[T, api.Session]
	onSuccess func(ctx context.Context)
	once      sync.Once
}

type LoginForm = Form[internal.LoginData]
type SignupForm = Form[internal.SignupData]

func NewLoginForm(client *query.Client, authAPI API, onSuccess func(ctx context.Context)) *LoginForm {
	ctl := controller.New[internal.LoginData](LoginSchema, internal.LoginDefaults())
	return newForm(KindLogin, ctl, query.NewMutation(client, "createLogin", authAPI.CreateLogin), onSuccess)
}

func NewSignupForm(client *query.Client, authAPI API, onSuccess func(ctx context.Context)) *SignupForm {
	ctl := controller.New[internal.SignupData](SignupSchema, internal.SignupDefaults())
	return newForm(KindSignup, ctl, query.NewMutation(client, "createSignup", authAPI.CreateSignup), onSuccess)
}

func newForm[T any](kind string, ctl *controller.Controller[T], mutation *query.Mutation[T, api.Session], onSuccess func(context.Context)) *Form[T] {
	if onSuccess == nil {
		onSuccess = func(context.Context) {}
	}
	return &Form[T]{
		id:        uuid.NewString(),
		kind:      kind,
		ctl:       ctl,
		mutation:  mutation,
		onSuccess: onSuccess,
	}
}

func (f *Form[T]) ID() string   { return f.id }
func (f *Form[T]) Kind() string { return f.kind }

func (f *Form[T]) Bind(field string) controller.Field { return f.ctl.Bind(field) }
func (f *Form[T]) Set(field, value string)            { f.ctl.Set(field, value) }
func (f *Form[T]) Phase() controller.Phase            { return f.ctl.Phase() }

// Update copies the known fields of a submitted HTML form into the value bag.
func (f *Form[T]) Update(r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return err
	}
	f.ctl.SetAll(r.PostForm)
	return nil
}

// Session returns the session created by the last successful submission.
func (f *Form[T]) Session() (api.Session, bool) {
	state := f.mutation.State()
	return state.Data, state.Status == query.StatusSuccess
}

// Message is the user-visible reason the last submission failed, or "".
func (f *Form[T]) Message() string {
	return SubmissionMessage(f.ctl.Err())
}

// Submit validates the form and calls the auth API. onSuccess runs once,
// after the first successful submission.
func (f *Form[T]) Submit(ctx context.Context) error {
	err := f.ctl.Submit(ctx, func(ctx context.Context, payload T) error {
		_, err := f.mutation.Execute(ctx, payload)
		return err
	})
	if err != nil {
		return err
	}
	f.once.Do(func() { f.onSuccess(ctx) })
	return nil
}

// SubmissionMessage maps a failed submission to the message shown to the user.
func SubmissionMessage(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, controller.ErrSubmitInProgress):
		return "Submission already in progress"
	case isTimeout(err):
		return "The server took too long to answer, please try again"
	}
	switch api.StatusCode(err) {
	case http.StatusUnauthorized:
		return "Invalid email or password"
	case http.StatusConflict:
		return "An account with this email already exists"
	}
	return "Something went wrong, please try again"
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
