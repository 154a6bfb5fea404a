package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"
)

var ErrEmailTaken = errors.New("email already registered")

type User struct {
	ID          int64  `db:"id"`
	Prefix      string `db:"prefix"`
	FirstName   string `db:"first_name"`
	MiddleName  string `db:"middle_name"`
	LastName    string `db:"last_name"`
	Email       string `db:"email"`
	Password    string `db:"password"`
	Phone       string `db:"phone"`
	DateOfBirth string `db:"date_of_birth"`
	Gender      string `db:"gender"`
}

func InsertUser(ctx context.Context, db *sql.DB, user User) (int64, error) {
	res, err := db.ExecContext(ctx, "INSERT INTO users VALUES(NULL,?,?,?,?,?,?,?,?,?);",
		user.Prefix, user.FirstName, user.MiddleName, user.LastName, user.Email,
		user.Password, user.Phone, user.DateOfBirth, user.Gender)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return -1, ErrEmailTaken
		}
		return -1, err
	}
	return res.LastInsertId()
}

func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*User, error) {
	row := db.QueryRowContext(ctx, "SELECT * FROM users WHERE email = ?;", email)
	var user User
	err := row.Scan(&user.ID, &user.Prefix, &user.FirstName, &user.MiddleName, &user.LastName,
		&user.Email, &user.Password, &user.Phone, &user.DateOfBirth, &user.Gender)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
