package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ahmadqo/club-certificate-engine/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

const (
	pgUniqueViolation = "23505"

	constraintCompetitionRecipient = "certificates_competition_recipient_key"
	constraintValidationCode       = "certificates_validation_code_key"
)

var (
	// ErrCertificateConflict is returned by Create when a certificate already exists for the
	// (competition, recipient) pair.
	ErrCertificateConflict = errors.New("certificate already exists for recipient")
	// ErrValidationCodeTaken is returned by Create when the validation code collides.
	ErrValidationCodeTaken = errors.New("validation code already in use")
)

type CertificateRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Certificate, error)
	FindByCompetitionAndRecipient(ctx context.Context, competitionID, recipientID uuid.UUID) (*model.Certificate, error)
	FindByValidationCode(ctx context.Context, code string) (*model.Certificate, error)
	FindByCompetitionID(ctx context.Context, competitionID uuid.UUID) ([]*model.Certificate, error)
	Create(ctx context.Context, cert *model.Certificate) error
	IncrementDownloadCount(ctx context.Context, id uuid.UUID) (*model.Certificate, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type certificateRepository struct {
	db *sqlx.DB
}

func NewCertificateRepository(db *sqlx.DB) CertificateRepository {
	return &certificateRepository{db: db}
}

const certificateColumns = `
	id, competition_id, recipient_id, recipient_name, category, achievement, rank,
	total_score, validation_code, validation_url, template_type, download_count,
	issued_at, created_at
`

func (r *certificateRepository) get(ctx context.Context, where string, args ...interface{}) (*model.Certificate, error) {
	var cert model.Certificate
	query := fmt.Sprintf("SELECT %s FROM certificates WHERE %s", certificateColumns, where)
	err := r.db.GetContext(ctx, &cert, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &cert, nil
}

func (r *certificateRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Certificate, error) {
	return r.get(ctx, "id = $1", id)
}

func (r *certificateRepository) FindByCompetitionAndRecipient(ctx context.Context, competitionID, recipientID uuid.UUID) (*model.Certificate, error) {
	return r.get(ctx, "competition_id = $1 AND recipient_id = $2", competitionID, recipientID)
}

func (r *certificateRepository) FindByValidationCode(ctx context.Context, code string) (*model.Certificate, error) {
	return r.get(ctx, "validation_code = $1", code)
}

func (r *certificateRepository) FindByCompetitionID(ctx context.Context, competitionID uuid.UUID) ([]*model.Certificate, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM certificates
		WHERE competition_id = $1
		ORDER BY category ASC, rank ASC NULLS LAST, recipient_name ASC
	`, certificateColumns)

	var certs []*model.Certificate
	if err := r.db.SelectContext(ctx, &certs, query, competitionID); err != nil {
		return nil, err
	}
	return certs, nil
}

// Create inserts a single row. The unique constraints on (competition_id, recipient_id) and
// validation_code are the authoritative guard against duplicate issuance.
func (r *certificateRepository) Create(ctx context.Context, cert *model.Certificate) error {
	query := `
		INSERT INTO certificates (id, competition_id, recipient_id, recipient_name, category,
		                          achievement, rank, total_score, validation_code, validation_url,
		                          template_type, download_count, issued_at, created_at)
		VALUES (:id, :competition_id, :recipient_id, :recipient_name, :category,
		        :achievement, :rank, :total_score, :validation_code, :validation_url,
		        :template_type, :download_count, :issued_at, :created_at)
	`
	cert.CreatedAt = time.Now()
	if _, err := r.db.NamedExecContext(ctx, query, cert); err != nil {
		return translateUniqueViolation(err)
	}
	return nil
}

func (r *certificateRepository) IncrementDownloadCount(ctx context.Context, id uuid.UUID) (*model.Certificate, error) {
	var cert model.Certificate
	query := fmt.Sprintf(`
		UPDATE certificates SET download_count = download_count + 1
		WHERE id = $1
		RETURNING %s
	`, certificateColumns)
	if err := r.db.GetContext(ctx, &cert, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &cert, nil
}

func (r *certificateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM certificates WHERE id = $1", id)
	return err
}

func translateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case constraintCompetitionRecipient:
		return fmt.Errorf("%w: %s", ErrCertificateConflict, pgErr.Detail)
	case constraintValidationCode:
		return fmt.Errorf("%w: %s", ErrValidationCodeTaken, pgErr.Detail)
	default:
		return err
	}
}
