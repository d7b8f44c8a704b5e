package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmadqo/club-certificate-engine/internal/config"
	"github.com/ahmadqo/club-certificate-engine/internal/model"
)

func testCertificateConfig() config.CertificateConfig {
	return config.CertificateConfig{
		ClubName:        "Riverside Archery Club",
		SignatoryLeft:   "Competition Director",
		SignatoryRight:  "Club President",
		QRSize:          128,
		QRRecoveryLevel: qrcode.Medium,
	}
}

func sampleCertificate(rank *int, achievement string) *model.Certificate {
	score := 642.5
	return &model.Certificate{
		ID:             uuid.New(),
		CompetitionID:  uuid.New(),
		RecipientID:    uuid.New(),
		RecipientName:  "Zoë Ångström",
		Category:       "U18 - Recurve",
		Achievement:    achievement,
		Rank:           rank,
		TotalScore:     &score,
		ValidationCode: "CERT-LXJ2K9A1-7F3Q",
		ValidationURL:  "https://club.example/verify/cert/CERT-LXJ2K9A1-7F3Q",
		TemplateType:   model.TemplateForRank(rank),
		IssuedAt:       time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC),
	}
}

func TestCertificateRendererRender(t *testing.T) {
	cfg := testCertificateConfig()
	renderer := NewCertificateRenderer(cfg, NewQREncoder(cfg.QRRecoveryLevel, cfg.QRSize))
	one, four := 1, 4

	for name, cert := range map[string]*model.Certificate{
		"gold":        sampleCertificate(&one, model.AchievementWinner),
		"participant": sampleCertificate(&four, model.AchievementParticipant),
		"no rank":     sampleCertificate(nil, model.AchievementParticipant),
	} {
		t.Run(name, func(t *testing.T) {
			before := *cert

			out, err := renderer.Render(cert, "Spring Open")
			require.NoError(t, err)
			require.Greater(t, len(out), 500)
			assert.Equal(t, "%PDF", string(out[:4]))
			assert.Equal(t, before, *cert, "render must not modify the certificate")
		})
	}
}

func TestCertificateRendererQRFailure(t *testing.T) {
	renderer := NewCertificateRenderer(testCertificateConfig(), func(string) ([]byte, error) {
		return nil, errors.New("encoder unavailable")
	})

	out, err := renderer.Render(sampleCertificate(nil, model.AchievementParticipant), "Spring Open")
	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrRenderingFailed)
}

func TestCertificateRendererInvalidQRImage(t *testing.T) {
	renderer := NewCertificateRenderer(testCertificateConfig(), func(string) ([]byte, error) {
		return []byte("not a png"), nil
	})

	out, err := renderer.Render(sampleCertificate(nil, model.AchievementParticipant), "Spring Open")
	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrRenderingFailed)
}

func TestAchievementLine(t *testing.T) {
	one, two, seven := 1, 2, 7

	assert.Equal(t, "1st - WINNER", AchievementLine(&model.Certificate{Rank: &one, Achievement: model.AchievementWinner}))
	assert.Equal(t, "2nd Place", AchievementLine(&model.Certificate{Rank: &two, Achievement: "2nd Place"}))
	assert.Equal(t, "7th - PARTICIPANT", AchievementLine(&model.Certificate{Rank: &seven, Achievement: model.AchievementParticipant}))
	assert.Equal(t, "PARTICIPANT", AchievementLine(&model.Certificate{Achievement: model.AchievementParticipant}))
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "600", formatScore(600))
	assert.Equal(t, "642.50", formatScore(642.5))
}

func TestGenerateQRCodePNG(t *testing.T) {
	png, err := GenerateQRCodePNG("https://club.example/verify/cert/CERT-A-BCDE", qrcode.Medium, 128)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(png[:4]))
}
