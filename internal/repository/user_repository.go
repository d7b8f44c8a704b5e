package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ahmadqo/club-certificate-engine/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

// ErrEmailTaken is returned by Create when another account already uses the email.
var ErrEmailTaken = errors.New("email already registered")

const userColumns = "id, name, email, password, role, is_active, created_at, updated_at"

// UserRepository holds the staff accounts (coaches, organizers, admins) allowed to call
// the authenticated certificate endpoints.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) get(ctx context.Context, where string, arg interface{}) (*model.User, error) {
	var user model.User
	query := fmt.Sprintf("SELECT %s FROM users WHERE %s LIMIT 1", userColumns, where)
	if err := r.db.GetContext(ctx, &user, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail matches case-insensitively and skips disabled accounts.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.get(ctx, "LOWER(email) = LOWER($1) AND is_active = TRUE", email)
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.get(ctx, "id = $1", id)
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, name, email, password, role, is_active, created_at, updated_at)
		VALUES (:id, :name, :email, :password, :role, :is_active, NOW(), NOW())
	`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}
