package service

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmadqo/club-certificate-engine/internal/model"
)

func ptr[T any](v T) *T { return &v }

func newRegistration(name, label string, score *float64) *model.CompetitionRegistration {
	reg := &model.CompetitionRegistration{
		ID:                 uuid.New(),
		CompetitionID:      uuid.New(),
		AthleteID:          uuid.New(),
		AthleteName:        name,
		QualificationScore: score,
		AgeClass:           "U18",
		Division:           "Recurve",
	}
	if label != "" {
		reg.CategoryLabel = ptr(label)
	}
	return reg
}

func names(entries []model.RankedEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Registration.AthleteName
	}
	return out
}

func TestRankByCategory(t *testing.T) {
	t.Run("ranks by descending score starting at one", func(t *testing.T) {
		regs := []*model.CompetitionRegistration{
			newRegistration("A", "Open", ptr(500.0)),
			newRegistration("B", "Open", ptr(620.0)),
			newRegistration("C", "Open", ptr(580.0)),
		}

		ranked := RankByCategory(regs)
		require.Len(t, ranked, 1)

		entries := ranked["Open"]
		assert.Equal(t, []string{"B", "C", "A"}, names(entries))
		for i, e := range entries {
			assert.Equal(t, i+1, e.Rank)
		}
	})

	t.Run("ties keep input order", func(t *testing.T) {
		regs := []*model.CompetitionRegistration{
			newRegistration("first", "Open", ptr(600.0)),
			newRegistration("second", "Open", ptr(600.0)),
			newRegistration("third", "Open", ptr(600.0)),
			newRegistration("top", "Open", ptr(650.0)),
		}

		entries := RankByCategory(regs)["Open"]
		assert.Equal(t, []string{"top", "first", "second", "third"}, names(entries))
		assert.Equal(t, 2, entries[1].Rank)
		assert.Equal(t, 4, entries[3].Rank)
	})

	t.Run("missing score ranks as zero", func(t *testing.T) {
		regs := []*model.CompetitionRegistration{
			newRegistration("none", "Open", nil),
			newRegistration("negative", "Open", ptr(-5.0)),
			newRegistration("some", "Open", ptr(1.0)),
		}

		assert.Equal(t, []string{"some", "none", "negative"}, names(RankByCategory(regs)["Open"]))
	})

	t.Run("NaN score ranks as zero without disturbing the order", func(t *testing.T) {
		regs := []*model.CompetitionRegistration{
			newRegistration("ten", "Open", ptr(10.0)),
			newRegistration("nan", "Open", ptr(math.NaN())),
			newRegistration("thirty", "Open", ptr(30.0)),
			newRegistration("twenty", "Open", ptr(20.0)),
			newRegistration("below-zero", "Open", ptr(-1.0)),
		}

		entries := RankByCategory(regs)["Open"]
		assert.Equal(t, []string{"thirty", "twenty", "ten", "nan", "below-zero"}, names(entries))
		assert.Equal(t, 4, entries[3].Rank)
	})

	t.Run("groups by resolved label with age class fallback", func(t *testing.T) {
		regs := []*model.CompetitionRegistration{
			newRegistration("labelled", "Senior Men", ptr(10.0)),
			newRegistration("unlabelled", "", ptr(20.0)),
			newRegistration("empty-label", "", ptr(30.0)),
		}
		regs[2].CategoryLabel = ptr("")

		ranked := RankByCategory(regs)
		require.Len(t, ranked, 2)
		assert.Equal(t, []string{"labelled"}, names(ranked["Senior Men"]))
		assert.Equal(t, []string{"empty-label", "unlabelled"}, names(ranked["U18 - Recurve"]))
	})

	t.Run("categories resolving to the same label are merged", func(t *testing.T) {
		a := newRegistration("A", "Open", ptr(1.0))
		b := newRegistration("B", "Open", ptr(2.0))
		b.CategoryID = uuid.New()

		ranked := RankByCategory([]*model.CompetitionRegistration{a, b})
		require.Len(t, ranked, 1)
		assert.Equal(t, []string{"B", "A"}, names(ranked["Open"]))
	})

	t.Run("ranks are contiguous per category", func(t *testing.T) {
		var regs []*model.CompetitionRegistration
		for i := 0; i < 7; i++ {
			label := "Even"
			if i%2 == 1 {
				label = "Odd"
			}
			regs = append(regs, newRegistration(string(rune('A'+i)), label, ptr(float64(i))))
		}

		for label, entries := range RankByCategory(regs) {
			seen := make(map[uuid.UUID]bool)
			for i, e := range entries {
				assert.Equal(t, i+1, e.Rank, label)
				assert.False(t, seen[e.Registration.ID], "registration ranked twice")
				seen[e.Registration.ID] = true
			}
		}
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, RankByCategory(nil))
	})
}

func TestSortedRankings(t *testing.T) {
	regs := []*model.CompetitionRegistration{
		newRegistration("z", "Women", ptr(1.0)),
		newRegistration("a", "Men", ptr(1.0)),
	}

	rankings := SortedRankings(RankByCategory(regs))
	require.Len(t, rankings, 2)
	assert.Equal(t, "Men", rankings[0].Category)
	assert.Equal(t, "Women", rankings[1].Category)
}

func TestSingleAchievement(t *testing.T) {
	tests := []struct {
		rank *int
		want string
	}{
		{nil, model.AchievementParticipant},
		{ptr(1), model.AchievementWinner},
		{ptr(2), model.AchievementRunnerUp},
		{ptr(3), model.AchievementSecondRunnerUp},
		{ptr(4), model.AchievementParticipant},
		{ptr(0), model.AchievementParticipant},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SingleAchievement(tt.rank))
	}
}

func TestBulkAchievement(t *testing.T) {
	assert.Equal(t, "1st Place", BulkAchievement(1))
	assert.Equal(t, "2nd Place", BulkAchievement(2))
	assert.Equal(t, "3rd Place", BulkAchievement(3))
	assert.Equal(t, model.AchievementParticipant, BulkAchievement(4))
}
