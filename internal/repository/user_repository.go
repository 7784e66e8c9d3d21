package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/brandloop/creator-campaigns/internal/model"
	"github.com/brandloop/creator-campaigns/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "id,email,username,password_hash,user_type,is_admin,reset_code,reset_expires_at,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.UserType,
		&u.IsAdmin, &u.ResetCode, &u.ResetExpires, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts a user and returns its ID. The email is normalized before
// storage so lookups by normalized email always hit.
func (r *UserRepo) Create(ctx context.Context, email, username, password, userType string, cost int) (uint64, error) {
	email = model.NormalizeEmail(email)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, username, password_hash, user_type) VALUES (?,?,?,?)",
		email, username, hash, userType)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = model.NormalizeEmail(email)
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
}

// SetResetCode stores a password-reset code and its expiry on the account
// with the given email. Returns ErrNotFound when no such account exists so
// the handler can still answer 200 without leaking which emails are
// registered (it logs instead).
func (r *UserRepo) SetResetCode(ctx context.Context, email, code string, expires time.Time) error {
	email = model.NormalizeEmail(email)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET reset_code=?, reset_expires_at=? WHERE email=?",
		code, expires, email)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetPassword consumes a valid reset code: it swaps the password hash and
// clears the code in one statement. Returns ErrExpired when the code does
// not match or is past its expiry.
func (r *UserRepo) ResetPassword(ctx context.Context, email, code, newPassword string, cost int) error {
	email = model.NormalizeEmail(email)
	hash, err := utils.HashPassword(newPassword, cost)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET password_hash=?, reset_code=NULL, reset_expires_at=NULL
		 WHERE email=? AND reset_code=? AND reset_expires_at > UTC_TIMESTAMP()`,
		hash, email, code)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrExpired
	}
	return nil
}
