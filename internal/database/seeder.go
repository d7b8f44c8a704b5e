package database

import (
	"context"

	"github.com/ahmadqo/club-certificate-engine/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultAdminEmail    = "admin@club.local"
	defaultAdminPassword = "Admin@123"
)

type Seeder struct {
	db     *sqlx.DB
	logger *logrus.Entry
}

func NewSeeder(db *sqlx.DB, logger *logrus.Entry) *Seeder {
	return &Seeder{db: db, logger: logger}
}

// SeedAdminUser creates the first club administrator when none exists.
func (s *Seeder) SeedAdminUser(ctx context.Context) error {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE role = $1", model.RoleAdmin).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.Debug("admin user already exists, skipping seed")
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`,
		uuid.New(),
		"Club Administrator",
		defaultAdminEmail,
		string(hashedPassword),
		model.RoleAdmin,
		true,
	)
	if err != nil {
		return err
	}

	s.logger.WithField("email", defaultAdminEmail).Warn("default admin user created, change its password after first login")
	return nil
}
