package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ahmadqo/club-certificate-engine/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// RegistrationRepository is read-only; registrations are owned by the event subsystem.
type RegistrationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.CompetitionRegistration, error)
	FindByCompetitionID(ctx context.Context, competitionID uuid.UUID) ([]*model.CompetitionRegistration, error)
	FindCompetitionByID(ctx context.Context, id uuid.UUID) (*model.Competition, error)
}

type registrationRepository struct {
	db *sqlx.DB
}

func NewRegistrationRepository(db *sqlx.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

const registrationSelect = `
	SELECT r.id, r.competition_id, r.category_id, r.athlete_id,
	       r.qualification_score, r.rank, r.created_at,
	       a.full_name AS athlete_name,
	       cat.label AS category_label, cat.age_class, cat.division,
	       c.name AS competition_name, c.location, c.start_date, c.end_date
	FROM competition_registrations r
	JOIN athletes a ON r.athlete_id = a.id
	JOIN categories cat ON r.category_id = cat.id
	JOIN competitions c ON r.competition_id = c.id
`

func (r *registrationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.CompetitionRegistration, error) {
	var reg model.CompetitionRegistration
	err := r.db.GetContext(ctx, &reg, registrationSelect+" WHERE r.id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &reg, nil
}

// FindByCompetitionID returns registrations in registration order. Ranking relies on
// this order to break ties between equal scores.
func (r *registrationRepository) FindByCompetitionID(ctx context.Context, competitionID uuid.UUID) ([]*model.CompetitionRegistration, error) {
	var regs []*model.CompetitionRegistration
	query := registrationSelect + `
		WHERE r.competition_id = $1
		ORDER BY r.created_at ASC, r.id ASC
	`
	if err := r.db.SelectContext(ctx, &regs, query, competitionID); err != nil {
		return nil, err
	}
	return regs, nil
}

func (r *registrationRepository) FindCompetitionByID(ctx context.Context, id uuid.UUID) (*model.Competition, error) {
	var comp model.Competition
	err := r.db.GetContext(ctx, &comp,
		"SELECT id, name, location, start_date, end_date FROM competitions WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &comp, nil
}
