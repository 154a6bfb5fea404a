package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	sqlDb, err := Setup(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	t.Cleanup(func() { sqlDb.Close() })
	return sqlDb
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	sqlDb := setupTestDB(t)

	user := User{
		Prefix:      "MR",
		FirstName:   "John",
		MiddleName:  "Q",
		LastName:    "Doe",
		Email:       "john@doe.com",
		Password:    "hash",
		Phone:       "555",
		DateOfBirth: "1990-01-01",
		Gender:      "MALE",
	}
	id, err := InsertUser(ctx, sqlDb, user)
	if err != nil {
		t.Fatalf("InsertUser() error = %v", err)
	}

	got, err := GetUserByEmail(ctx, sqlDb, "john@doe.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	user.ID = id
	if *got != user {
		t.Errorf("GetUserByEmail() = %+v, want %+v", *got, user)
	}

	if _, err := InsertUser(ctx, sqlDb, user); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate InsertUser() error = %v, want ErrEmailTaken", err)
	}
	if _, err := GetUserByEmail(ctx, sqlDb, "nobody@doe.com"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetUserByEmail(missing) error = %v, want sql.ErrNoRows", err)
	}
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	sqlDb := setupTestDB(t)

	userID, err := InsertUser(ctx, sqlDb, User{Email: "a@b.com"})
	if err != nil {
		t.Fatal(err)
	}

	live := Session{SessionID: "live", UserID: userID, Expires: time.Now().Add(time.Hour).Truncate(time.Second)}
	expired := Session{SessionID: "expired", UserID: userID, Expires: time.Now().Add(-time.Minute)}
	for _, s := range []Session{live, expired} {
		if err := InsertSession(ctx, sqlDb, s); err != nil {
			t.Fatalf("InsertSession(%s) error = %v", s.SessionID, err)
		}
	}

	got, err := GetSession(ctx, sqlDb, "live")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.UserID != userID || !got.Expires.Equal(live.Expires) {
		t.Errorf("GetSession() = %+v", got)
	}

	n, err := CleanUpSessions(ctx, sqlDb)
	if err != nil || n != 1 {
		t.Errorf("CleanUpSessions() = %d, %v, want 1", n, err)
	}
	if _, err := GetSession(ctx, sqlDb, "expired"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expired session still present: %v", err)
	}

	if err := RemoveSession(ctx, sqlDb, "live"); err != nil {
		t.Fatal(err)
	}
	if _, err := GetSession(ctx, sqlDb, "live"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("removed session still present: %v", err)
	}
}
