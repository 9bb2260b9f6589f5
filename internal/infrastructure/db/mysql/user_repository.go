package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/swahilipot/room-booking/internal/core/domain"
)

// UserRepository implements ports.UserRepository using MySQL.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *UserRepository) findOne(ctx context.Context, q string, arg any) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, q, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// Create inserts a user. The unique index on email turns a concurrent
// duplicate signup into domain.ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, full_name, department, role) VALUES (?, ?, ?, ?, ?)`,
		user.Email, user.PasswordHash, user.FullName, nullable(user.Department), user.Role)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("user id: %w", err)
	}
	created := *user
	created.ID = id
	return &created, nil
}

func (r *UserRepository) UpsertAdmin(ctx context.Context, user *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (email, password_hash, full_name, role)
		VALUES (?, ?, ?, 'admin')
		ON DUPLICATE KEY UPDATE password_hash = VALUES(password_hash), role = 'admin'`,
		user.Email, user.PasswordHash, user.FullName)
	if err != nil {
		return fmt.Errorf("upsert admin: %w", err)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
