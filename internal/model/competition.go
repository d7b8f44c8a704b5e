package model

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

type Competition struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	Location  string    `db:"location"   json:"location"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date"   json:"end_date"`
}

type Category struct {
	ID            uuid.UUID `db:"id"             json:"id"`
	CompetitionID uuid.UUID `db:"competition_id" json:"competition_id"`
	Label         *string   `db:"label"          json:"label"`
	AgeClass      string    `db:"age_class"      json:"age_class"`
	Division      string    `db:"division"       json:"division"`
}

// CompetitionRegistration is an athlete's entry into one category of one competition.
type CompetitionRegistration struct {
	ID                 uuid.UUID `db:"id"                  json:"id"`
	CompetitionID      uuid.UUID `db:"competition_id"      json:"competition_id"`
	CategoryID         uuid.UUID `db:"category_id"         json:"category_id"`
	AthleteID          uuid.UUID `db:"athlete_id"          json:"athlete_id"`
	QualificationScore *float64  `db:"qualification_score" json:"qualification_score"`
	Rank               *int      `db:"rank"                json:"rank"`
	CreatedAt          time.Time `db:"created_at"          json:"created_at"`

	// Join fields
	AthleteName     string    `db:"athlete_name"      json:"athlete_name"`
	CategoryLabel   *string   `db:"category_label"    json:"category_label,omitempty"`
	AgeClass        string    `db:"age_class"         json:"age_class"`
	Division        string    `db:"division"          json:"division"`
	CompetitionName string    `db:"competition_name"  json:"competition_name"`
	Location        string    `db:"location"          json:"location"`
	StartDate       time.Time `db:"start_date"        json:"start_date"`
	EndDate         time.Time `db:"end_date"          json:"end_date"`
}

// ResolvedCategory returns the category label, falling back to "{ageClass} - {division}".
func (r *CompetitionRegistration) ResolvedCategory() string {
	if r.CategoryLabel != nil && *r.CategoryLabel != "" {
		return *r.CategoryLabel
	}
	return fmt.Sprintf("%s - %s", r.AgeClass, r.Division)
}

// Score treats a missing or NaN qualification score as zero.
func (r *CompetitionRegistration) Score() float64 {
	if r.QualificationScore == nil || math.IsNaN(*r.QualificationScore) {
		return 0
	}
	return *r.QualificationScore
}

func (r *CompetitionRegistration) Competition() Competition {
	return Competition{
		ID:        r.CompetitionID,
		Name:      r.CompetitionName,
		Location:  r.Location,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
	}
}

type RankedEntry struct {
	Rank         int                      `json:"rank"`
	Registration *CompetitionRegistration `json:"registration"`
}

type CategoryRanking struct {
	Category string        `json:"category"`
	Entries  []RankedEntry `json:"entries"`
}
