package service

import (
	"sort"

	"github.com/ahmadqo/club-certificate-engine/internal/model"
)

// RankByCategory groups registrations by resolved category label and ranks each group by
// descending qualification score (missing scores count as zero).
//
// Ties keep the input order: the sort is stable, and registrations are loaded in
// registration order, so equal scores rank first-registered first. No secondary key such as
// X-count is consulted.
//
// Groups are keyed by label, not category ID, so two categories that resolve to the same
// label are merged into one ranking. Category labels are expected to be distinct per competition.
func RankByCategory(registrations []*model.CompetitionRegistration) map[string][]model.RankedEntry {
	groups := make(map[string][]*model.CompetitionRegistration)
	for _, reg := range registrations {
		label := reg.ResolvedCategory()
		groups[label] = append(groups[label], reg)
	}

	ranked := make(map[string][]model.RankedEntry, len(groups))
	for label, regs := range groups {
		sorted := make([]*model.CompetitionRegistration, len(regs))
		copy(sorted, regs)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Score() > sorted[j].Score()
		})

		entries := make([]model.RankedEntry, len(sorted))
		for i, reg := range sorted {
			entries[i] = model.RankedEntry{Rank: i + 1, Registration: reg}
		}
		ranked[label] = entries
	}
	return ranked
}

// SortedRankings flattens RankByCategory output into label order.
func SortedRankings(ranked map[string][]model.RankedEntry) []model.CategoryRanking {
	labels := make([]string, 0, len(ranked))
	for label := range ranked {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	out := make([]model.CategoryRanking, 0, len(labels))
	for _, label := range labels {
		out = append(out, model.CategoryRanking{Category: label, Entries: ranked[label]})
	}
	return out
}

// SingleAchievement maps an externally assigned rank to the fixed single-path vocabulary.
func SingleAchievement(rank *int) string {
	if rank == nil {
		return model.AchievementParticipant
	}
	switch *rank {
	case 1:
		return model.AchievementWinner
	case 2:
		return model.AchievementRunnerUp
	case 3:
		return model.AchievementSecondRunnerUp
	default:
		return model.AchievementParticipant
	}
}
