package db

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

const createUsers string = `
CREATE TABLE IF NOT EXISTS users (
id INTEGER NOT NULL PRIMARY KEY,
prefix TEXT NOT NULL,
first_name TEXT NOT NULL,
middle_name TEXT NOT NULL,
last_name TEXT NOT NULL,
email TEXT UNIQUE NOT NULL,
password TEXT NOT NULL,
phone TEXT NOT NULL,
date_of_birth TEXT NOT NULL,
gender TEXT NOT NULL
);`

const createSessions string = `
CREATE TABLE IF NOT EXISTS sessions (
id INTEGER NOT NULL PRIMARY KEY,
session_id TEXT UNIQUE NOT NULL,
user_id INTEGER NOT NULL,
expires INTEGER NOT NULL,
FOREIGN KEY(user_id) REFERENCES users(id)
);`

// Setup opens the sqlite file at path and creates the tables.
func Setup(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	_, err = db.ExecContext(ctx, createUsers)
	if err != nil {
		db.Close()
		return nil, err
	}

	_, err = db.ExecContext(ctx, createSessions)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
