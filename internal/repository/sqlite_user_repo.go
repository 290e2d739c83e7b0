package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"go-auth-service/internal/model"
	"go-auth-service/internal/service"
)

const sqliteUserColumns = `id, username, email, password_hash, is_admin, is_active, created_at, updated_at`

type SQLiteUserRepository struct {
	db   DBTX
	conn *sql.DB
}

func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db, conn: db}
}

func (r *SQLiteUserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+sqliteUserColumns+` FROM users WHERE id = ?`, id)
}

func (r *SQLiteUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+sqliteUserColumns+` FROM users WHERE username = ?`, username)
}

func (r *SQLiteUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+sqliteUserColumns+` FROM users WHERE email = ?`, email)
}

func (r *SQLiteUserRepository) findOne(ctx context.Context, query string, arg any) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (r *SQLiteUserRepository) Insert(ctx context.Context, fields model.NewUser) (*model.User, error) {
	now := time.Now().UTC()
	u := model.User{
		Username:     fields.Username,
		Email:        fields.Email,
		PasswordHash: fields.PasswordHash,
		IsAdmin:      fields.IsAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (username, email, password_hash, is_admin, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING id, is_active`,
		u.Username, u.Email, u.PasswordHash, u.IsAdmin, u.CreatedAt, u.UpdatedAt).
		Scan(&u.ID, &u.IsActive)
	if err != nil {
		if taken := sqliteUniqueError(err); taken != nil {
			return nil, taken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

func (r *SQLiteUserRepository) Update(ctx context.Context, id int64, fields model.UserUpdate) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET
		    email = COALESCE(?, email),
		    password_hash = COALESCE(?, password_hash),
		    is_admin = COALESCE(?, is_admin),
		    is_active = COALESCE(?, is_active),
		    updated_at = ?
		 WHERE id = ?`,
		nullable(fields.Email), nullable(fields.PasswordHash), nullable(fields.IsAdmin), nullable(fields.IsActive), time.Now().UTC(), id)
	if err != nil {
		if taken := sqliteUniqueError(err); taken != nil {
			return taken
		}
		return fmt.Errorf("update user: %w", err)
	}

	return requireRow(result)
}

func (r *SQLiteUserRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	return requireRow(result)
}

func (r *SQLiteUserRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+sqliteUserColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// WithinTx runs fn in a transaction. A repository already bound to a
// transaction runs fn directly.
func (r *SQLiteUserRepository) WithinTx(ctx context.Context, fn func(tx service.CredentialStore) error) error {
	if r.conn == nil {
		return fn(r)
	}

	return withTx(ctx, r.conn, func(tx *sql.Tx) error {
		return fn(&SQLiteUserRepository{db: tx})
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// sqliteUniqueError maps a unique violation on users.username or users.email
// to its error kind. The driver's extended result code identifies the
// violation; the message names the column.
func sqliteUniqueError(err error) error {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() != sqlite3lib.SQLITE_CONSTRAINT_UNIQUE {
			return nil
		}
	} else if !strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return nil
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "users.username"):
		return model.ErrUsernameTaken
	case strings.Contains(msg, "users.email"):
		return model.ErrEmailTaken
	default:
		return nil
	}
}
