package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	AchievementParticipant    = "PARTICIPANT"
	AchievementWinner         = "WINNER"
	AchievementRunnerUp       = "RUNNER UP"
	AchievementSecondRunnerUp = "2nd RUNNER UP"
)

type TemplateType string

const (
	TemplateGold    TemplateType = "GOLD"
	TemplateSilver  TemplateType = "SILVER"
	TemplateBronze  TemplateType = "BRONZE"
	TemplateDefault TemplateType = "DEFAULT"
)

// TemplateForRank maps podium ranks to their visual template.
func TemplateForRank(rank *int) TemplateType {
	if rank == nil {
		return TemplateDefault
	}
	switch *rank {
	case 1:
		return TemplateGold
	case 2:
		return TemplateSilver
	case 3:
		return TemplateBronze
	default:
		return TemplateDefault
	}
}

// Certificate is immutable after creation except for DownloadCount.
type Certificate struct {
	ID             uuid.UUID    `db:"id"              json:"id"`
	CompetitionID  uuid.UUID    `db:"competition_id"  json:"competition_id"`
	RecipientID    uuid.UUID    `db:"recipient_id"    json:"recipient_id"`
	RecipientName  string       `db:"recipient_name"  json:"recipient_name"`
	Category       string       `db:"category"        json:"category"`
	Achievement    string       `db:"achievement"     json:"achievement"`
	Rank           *int         `db:"rank"            json:"rank"`
	TotalScore     *float64     `db:"total_score"     json:"total_score"`
	ValidationCode string       `db:"validation_code" json:"validation_code"`
	ValidationURL  string       `db:"validation_url"  json:"validation_url"`
	TemplateType   TemplateType `db:"template_type"   json:"template_type"`
	DownloadCount  int          `db:"download_count"  json:"download_count"`
	IssuedAt       time.Time    `db:"issued_at"       json:"issued_at"`
	CreatedAt      time.Time    `db:"created_at"      json:"created_at"`
}

type BulkIssueRequest struct {
	IncludeParticipants bool `json:"includeParticipants"`
}
