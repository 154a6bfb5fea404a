// Package devapi is a development stand-in for the external auth API. It
// stores users and sessions in sqlite and speaks the JSON protocol the api
// package expects.
package devapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/mkolodiy/go-auth-shell/internal"
	"github.com/mkolodiy/go-auth-shell/internal/api"
	"github.com/mkolodiy/go-auth-shell/internal/auth"
	"github.com/mkolodiy/go-auth-shell/internal/db"
	"github.com/mkolodiy/go-auth-shell/internal/schema"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type Server struct {
	db         *sql.DB
	sessionTTL time.Duration
	log        log.FieldLogger
}

func New(sqlDb *sql.DB, sessionTTL time.Duration, logger log.FieldLogger) *Server {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Server{db: sqlDb, sessionTTL: sessionTTL, log: logger}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", s.signup)
		r.Post("/login", s.login)
		r.Get("/session", s.currentSession)
		r.Delete("/session", s.removeSession)
	})
	return r
}

// CleanUpSessions removes expired sessions every interval until ctx is done.
func (s *Server) CleanUpSessions(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := db.CleanUpSessions(ctx, s.db)
			if err != nil {
				s.log.WithError(err).Error("cannot remove expired sessions")
				continue
			}
			if n > 0 {
				s.log.WithField("removed", n).Info("removed expired sessions")
			}
		}
	}
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var req internal.SignupData
	if !s.decode(w, r, auth.SignupSchema, &req) {
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.internalError(w, "cannot hash password", err)
		return
	}

	userID, err := db.InsertUser(r.Context(), s.db, db.User{
		Prefix:      string(req.Prefix),
		FirstName:   req.FirstName,
		MiddleName:  req.MiddleName,
		LastName:    req.LastName,
		Email:       req.Email,
		Password:    string(hashedPassword),
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		Gender:      string(req.Gender),
	})
	if errors.Is(err, db.ErrEmailTaken) {
		writeError(w, http.StatusConflict, "user_exists", "A user with this email already exists")
		return
	}
	if err != nil {
		s.internalError(w, "cannot create user", err)
		return
	}

	s.startSession(w, r, http.StatusCreated, userID, api.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req internal.LoginData
	if !s.decode(w, r, auth.LoginSchema, &req) {
		return
	}

	user, err := db.GetUserByEmail(r.Context(), s.db, req.Email)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
		return
	}
	if err != nil {
		s.internalError(w, "cannot load user", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
		return
	}

	s.startSession(w, r, http.StatusOK, user.ID, api.User{
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, status int, userID int64, user api.User) {
	session := db.Session{
		SessionID: uuid.NewString(),
		UserID:    userID,
		Expires:   time.Now().Add(s.sessionTTL).Truncate(time.Second),
	}
	if err := db.InsertSession(r.Context(), s.db, session); err != nil {
		s.internalError(w, "cannot store session", err)
		return
	}
	s.log.WithField("userId", userID).Info("session started")
	writeJSON(w, status, api.Session{Token: session.SessionID, ExpiresAt: session.Expires, User: user})
}

func (s *Server) currentSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":     session.SessionID,
		"expiresAt": session.Expires,
		"userId":    session.UserID,
	})
}

func (s *Server) removeSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := db.RemoveSession(r.Context(), s.db, session.SessionID); err != nil {
		s.internalError(w, "cannot remove session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// session resolves the bearer token of r. Expired sessions are removed and
// treated as missing.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*db.Session, bool) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" || token == r.Header.Get("Authorization") {
		writeError(w, http.StatusUnauthorized, "invalid_token", "No session token provided")
		return nil, false
	}

	session, err := db.GetSession(r.Context(), s.db, token)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusUnauthorized, "invalid_token", "Session not found")
		return nil, false
	}
	if err != nil {
		s.internalError(w, "cannot load session", err)
		return nil, false
	}

	if session.Expires.Before(time.Now()) {
		if err := db.RemoveSession(r.Context(), s.db, token); err != nil {
			s.log.WithError(err).Warn("cannot remove expired session")
		}
		writeError(w, http.StatusUnauthorized, "invalid_token", "Session expired")
		return nil, false
	}
	return session, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, sch *schema.Schema, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return false
	}
	if errs := sch.Validate(v); !errs.Valid() {
		msgs := make([]string, 0, len(errs))
		for field, msg := range errs {
			msgs = append(msgs, field+": "+msg)
		}
		sort.Strings(msgs)
		writeError(w, http.StatusBadRequest, "validation_failed", strings.Join(msgs, "; "))
		return false
	}
	return true
}

func (s *Server) internalError(w http.ResponseWriter, msg string, err error) {
	s.log.WithError(err).Error(msg)
	writeError(w, http.StatusInternalServerError, "internal_error", msg)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, api.ErrorResponse{Error: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
