package dashboard

import (
	"math"
	"sort"
)

// GroupScore is a percentage rollup for one grouping key.
type GroupScore struct {
	Subject        string `json:"subject"`
	AchievementSum int    `json:"achievementSum"`
	TargetSum      int    `json:"targetSum"`
	Score          int    `json:"score"`
	Members        int    `json:"members"`
}

// AggregateByGroup rolls rows up by key. Rows whose target is 0 contribute
// to no group (division-by-zero guard), and a group whose rows all carry
// target 0 is excluded from the output entirely.
func AggregateByGroup[T any](rows []T, key func(T) string, target func(T) int, achievement func(T) int) []GroupScore {
	type bucket struct {
		ach, tgt, members int
	}
	buckets := make(map[string]*bucket)
	var order []string

	for _, row := range rows {
		tgt := target(row)
		if tgt == 0 {
			continue
		}
		k := key(row)
		b, ok := buckets[k]
		if !ok {
			b = &bucket{}
			buckets[k] = b
			order = append(order, k)
		}
		b.ach += achievement(row)
		b.tgt += tgt
		b.members++
	}

	scores := make([]GroupScore, 0, len(order))
	for _, k := range order {
		b := buckets[k]
		scores = append(scores, GroupScore{
			Subject:        k,
			AchievementSum: b.ach,
			TargetSum:      b.tgt,
			Score:          PercentScore(b.ach, b.tgt),
			Members:        b.members,
		})
	}
	return scores
}

// PercentScore is round(100*achievement/target) clamped into [0,100].
// Target 0 yields 0.
func PercentScore(achievement, target int) int {
	if target == 0 {
		return 0
	}
	return clamp(int(math.Round(float64(achievement) / float64(target) * 100)))
}

// WeightedScore is the employee-level formula the admin dashboard uses.
// It is intentionally a different computation from the department
// achievement/target rollup; the two are never reconciled.
func WeightedScore(workDonePct, onTimePct, actualAchievement int) int {
	score := 0.4*float64(workDonePct) + 0.3*float64(onTimePct) + 0.3*float64(actualAchievement)
	return clamp(int(math.Round(score)))
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// TopN sorts by a single metric and keeps the first n. The sort is stable,
// so ties preserve original row order.
func TopN[T any](rows []T, metric func(T) int, n int, descending bool) []T {
	out := make([]T, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		if descending {
			return metric(out[i]) > metric(out[j])
		}
		return metric(out[i]) < metric(out[j])
	})
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// FilterExact keeps rows matching the predicate. An empty-string filter
// value is the "no filter" sentinel by convention of the callers.
func FilterExact[T any](rows []T, pred func(T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if pred(row) {
			out = append(out, row)
		}
	}
	return out
}

// SortByScoreDesc orders group scores highest first for chart output,
// stable across equal scores.
func SortByScoreDesc(scores []GroupScore) []GroupScore {
	out := make([]GroupScore, len(scores))
	copy(out, scores)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
