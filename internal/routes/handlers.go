package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mkolodiy/go-auth-shell/internal"
	"github.com/mkolodiy/go-auth-shell/internal/api"
	"github.com/mkolodiy/go-auth-shell/internal/auth"
	"github.com/mkolodiy/go-auth-shell/internal/components"
	"github.com/mkolodiy/go-auth-shell/internal/controller"
	log "github.com/sirupsen/logrus"
)

const (
	sessionCookieName = "session_token"
	emailCookieName   = "session_email"

	busyMessage = "Too many open forms, please try again later"
)

// formKind describes how one kind of form is mounted and rendered.
type formKind[T any] struct {
	name  string
	mount func(h *handler) *auth.Form[T]
	view  func(f *auth.Form[T], message string) templ.Component
	page  func(form templ.Component) templ.Component
}

var loginKind = formKind[internal.LoginData]{
	name: auth.KindLogin,
	mount: func(h *handler) *auth.LoginForm {
		return auth.NewLoginForm(h.Client, h.API, navigateTo(appPath))
	},
	view: loginView,
	page: components.Login,
}

var signupKind = formKind[internal.SignupData]{
	name: auth.KindSignup,
	mount: func(h *handler) *auth.SignupForm {
		return auth.NewSignupForm(h.Client, h.API, navigateTo(appPath))
	},
	view: signupView,
	page: components.Signup,
}

func (h *handler) loginPage(w http.ResponseWriter, r *http.Request) {
	showForm(h, loginKind, w, r)
}

func (h *handler) loginSubmit(w http.ResponseWriter, r *http.Request) {
	submitForm(h, loginKind, w, r)
}

func (h *handler) signupPage(w http.ResponseWriter, r *http.Request) {
	showForm(h, signupKind, w, r)
}

func (h *handler) signupSubmit(w http.ResponseWriter, r *http.Request) {
	submitForm(h, signupKind, w, r)
}

func showForm[T any](h *handler, kind formKind[T], w http.ResponseWriter, r *http.Request) {
	f := kind.mount(h)
	if err := h.Forms.Mount(f); err != nil {
		h.Log.WithError(err).WithField("form", kind.name).Warn("cannot mount form")
		http.Error(w, busyMessage, http.StatusServiceUnavailable)
		return
	}
	h.render(w, r, http.StatusOK, kind.page(kind.view(f, "")))
}

func submitForm[T any](h *handler, kind formKind[T], w http.ResponseWriter, r *http.Request) {
	logger := h.Log.WithFields(log.Fields{
		"form":      kind.name,
		"requestId": middleware.GetReqID(r.Context()),
	})

	if err := r.ParseForm(); err != nil {
		logger.WithError(err).Warn("cannot parse form")
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	f, ok := auth.Lookup[T](h.Forms, r.PostFormValue("formId"))
	if !ok {
		f = kind.mount(h)
		if err := h.Forms.Mount(f); err != nil {
			logger.WithError(err).Warn("cannot mount form")
			http.Error(w, busyMessage, http.StatusServiceUnavailable)
			return
		}
		logger.Debug("form not mounted, mounting a fresh one")
	}
	logger = logger.WithField("formId", f.ID())

	if err := f.Update(r); err != nil {
		logger.WithError(err).Warn("cannot read form values")
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	ctx, nav := withNavigator(r.Context())
	err := f.Submit(ctx)
	switch {
	case err == nil:
		if session, ok := f.Session(); ok {
			h.setSession(w, session)
		}
		to := nav.to
		if to == "" {
			to = appPath
		}
		logger.WithField("to", to).Info("form submitted")
		redirect(w, r, to)

	case errors.Is(err, controller.ErrInvalid):
		logger.Debug("form invalid")
		renderForm(h, w, r, http.StatusUnprocessableEntity, kind, f, "")

	case errors.Is(err, controller.ErrSubmitInProgress):
		logger.Warn("submission already in progress")
		renderForm(h, w, r, http.StatusConflict, kind, f, auth.SubmissionMessage(err))

	case errors.Is(err, controller.ErrAlreadySubmitted):
		logger.Debug("form already submitted")
		redirect(w, r, appPath)

	default:
		var subErr *controller.SubmissionError
		if !errors.As(err, &subErr) {
			logger.WithError(err).Error("cannot submit form")
			renderForm(h, w, r, http.StatusBadRequest, kind, f, auth.SubmissionMessage(err))
			return
		}
		logger.WithError(err).Warn("submission failed")
		renderForm(h, w, r, submissionStatus(err), kind, f, f.Message())
	}
}

// submissionStatus is the status a form answers with when the auth API call
// failed.
func submissionStatus(err error) int {
	switch status := api.StatusCode(err); status {
	case http.StatusUnauthorized, http.StatusConflict:
		return status
	}
	return http.StatusBadGateway
}

// renderForm answers htmx requests with the form fragment and 200, since
// htmx does not swap error responses, and plain requests with the full page.
func renderForm[T any](h *handler, w http.ResponseWriter, r *http.Request, status int, kind formKind[T], f *auth.Form[T], message string) {
	form := kind.view(f, message)
	if isHTMXRequest(r) {
		h.render(w, r, http.StatusOK, form)
		return
	}
	h.render(w, r, status, kind.page(form))
}

func (h *handler) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		h.Log.WithError(err).Error("cannot render component")
	}
}

func (h *handler) setSession(w http.ResponseWriter, session api.Session) {
	if session.Token == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		Secure:   h.SecureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     emailCookieName,
		Value:    session.User.Email,
		Path:     "/",
		Expires:  session.ExpiresAt,
		Secure:   h.SecureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *handler) app(w http.ResponseWriter, r *http.Request) {
	email := ""
	if token, err := r.Cookie(sessionCookieName); err == nil && token.Value != "" {
		if c, err := r.Cookie(emailCookieName); err == nil {
			email = c.Value
		}
	}
	h.render(w, r, http.StatusOK, components.App(email))
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{sessionCookieName, emailCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Path:     "/",
			MaxAge:   -1,
			Secure:   h.SecureCookies,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	redirect(w, r, "/auth/login")
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"mutating": h.Client.IsMutating(),
		"recent":   h.Client.Recent(),
		"forms":    h.Forms.Len(),
	})
}
