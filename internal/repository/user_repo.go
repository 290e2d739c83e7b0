package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-auth-service/internal/model"
	"go-auth-service/internal/service"
)

const (
	pgUniqueViolation    = "23505"
	pgUsernameConstraint = "users_username_key"
	pgEmailConstraint    = "users_email_key"
	pgUserColumns        = `id, username, email, password_hash, is_admin, is_active, created_at, updated_at`
)

// PgxDBTX is the part of pgx shared by *pgxpool.Pool and pgx.Tx.
type PgxDBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresUserRepository struct {
	db   PgxDBTX
	pool *pgxpool.Pool
}

func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{db: pool, pool: pool}
}

func (r *PostgresUserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+pgUserColumns+` FROM users WHERE id = $1`, id)
}

func (r *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+pgUserColumns+` FROM users WHERE username = $1`, username)
}

func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+pgUserColumns+` FROM users WHERE email = $1`, email)
}

func (r *PostgresUserRepository) findOne(ctx context.Context, query string, arg any) (*model.User, error) {
	var u model.User
	err := r.db.QueryRow(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (r *PostgresUserRepository) Insert(ctx context.Context, fields model.NewUser) (*model.User, error) {
	now := time.Now().UTC()
	u := model.User{
		Username:     fields.Username,
		Email:        fields.Email,
		PasswordHash: fields.PasswordHash,
		IsAdmin:      fields.IsAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, is_admin, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, is_active`,
		u.Username, u.Email, u.PasswordHash, u.IsAdmin, u.CreatedAt, u.UpdatedAt).
		Scan(&u.ID, &u.IsActive)
	if err != nil {
		if taken := pgUniqueError(err); taken != nil {
			return nil, taken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

func (r *PostgresUserRepository) Update(ctx context.Context, id int64, fields model.UserUpdate) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET
		    email = COALESCE($2, email),
		    password_hash = COALESCE($3, password_hash),
		    is_admin = COALESCE($4, is_admin),
		    is_active = COALESCE($5, is_active),
		    updated_at = $6
		 WHERE id = $1`,
		id, nullable(fields.Email), nullable(fields.PasswordHash), nullable(fields.IsAdmin), nullable(fields.IsActive), time.Now().UTC())
	if err != nil {
		if taken := pgUniqueError(err); taken != nil {
			return taken
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *PostgresUserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *PostgresUserRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+pgUserColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// WithinTx runs fn in a transaction. Calls made on a repository that is
// already bound to a transaction join it.
func (r *PostgresUserRepository) WithinTx(ctx context.Context, fn func(tx service.CredentialStore) error) error {
	if r.pool == nil {
		return fn(r)
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&PostgresUserRepository{db: tx})
	})
}

func pgUniqueError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return nil
	}

	switch pgErr.ConstraintName {
	case pgUsernameConstraint:
		return model.ErrUsernameTaken
	case pgEmailConstraint:
		return model.ErrEmailTaken
	default:
		return nil
	}
}
