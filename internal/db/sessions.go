package db

import (
	"context"
	"database/sql"
	"time"
)

type Session struct {
	ID        int64     `db:"id"`
	SessionID string    `db:"session_id"`
	UserID    int64     `db:"user_id"`
	Expires   time.Time `db:"expires"`
}

func InsertSession(ctx context.Context, db *sql.DB, session Session) error {
	_, err := db.ExecContext(ctx, "INSERT INTO sessions VALUES(NULL,?,?,?);", session.SessionID, session.UserID, session.Expires.Unix())
	if err != nil {
		return err
	}
	return nil
}

func GetSession(ctx context.Context, db *sql.DB, sessionID string) (*Session, error) {
	var expires int64
	row := db.QueryRowContext(ctx, "SELECT * FROM sessions WHERE session_id = ?;", sessionID)
	var session Session
	err := row.Scan(&session.ID, &session.SessionID, &session.UserID, &expires)
	if err != nil {
		return nil, err
	}
	session.Expires = time.Unix(expires, 0)
	return &session, nil
}

func RemoveSession(ctx context.Context, db *sql.DB, sessionID string) error {
	_, err := db.ExecContext(ctx, "DELETE FROM sessions WHERE session_id = ?;", sessionID)
	return err
}

// CleanUpSessions deletes every expired session and returns how many it
// removed.
func CleanUpSessions(ctx context.Context, db *sql.DB) (int64, error) {
	res, err := db.ExecContext(ctx, "DELETE FROM sessions WHERE expires <= ?;", time.Now().Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
