package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"time"
)

// SelectorConfig holds the daily gauntlet tunables.
type SelectorConfig struct {
	StruggleThreshold    int `env:"STRUGGLE_THRESHOLD" envDefault:"60"`
	MaintenanceThreshold int `env:"MAINTENANCE_THRESHOLD" envDefault:"30"`
	MaxItems             int `env:"MAX_ITEMS" envDefault:"5"`
}

// PracticeCandidate is an ephemeral aggregate built fresh from history per
// request; the engine never persists it.
type PracticeCandidate struct {
	ItemType      string
	Identifier    string
	Title         string
	WorldSlug     string
	ProjectSlug   string
	StruggleScore int
	Attempts      int
	Legendary     bool
}

const (
	ItemTypeQuest = "quest"
	ItemTypeBoss  = "boss"
)

const (
	CategoryStruggle    = "struggle"
	CategoryMaintenance = "maintenance"
	CategoryExploration = "exploration"
)

type PracticeItem struct {
	PracticeCandidate
	Category   string
	Difficulty string
	Rationale  string
}

type PlanStats struct {
	CompletedToday int
	StreakDays     int
}

// DailyPracticePlan is deterministic per (profile, date, candidates).
type DailyPracticePlan struct {
	ProfileKey string
	Date       string
	Items      []PracticeItem
	Stats      PlanStats
}

// PlanSeed derives the 64-bit deterministic seed for a profile/date pair:
// the first 16 hex chars of sha256("profile:YYYY-MM-DD").
func PlanSeed(profileKey string, date time.Time) int64 {
	sum := sha256.Sum256([]byte(profileKey + ":" + date.Format("2006-01-02")))
	v, _ := strconv.ParseUint(hex.EncodeToString(sum[:])[:16], 16, 64)
	return int64(v)
}

// BuildDailyPlan assembles the day's gauntlet. Selection order: up to two
// struggle items, then up to two maintenance items, then exploration fills
// whatever is left. Ties within a bucket are broken by a shuffle from the
// profile/date seeded RNG, so identical inputs always produce an identical
// ordered plan.
func BuildDailyPlan(cfg SelectorConfig, profileKey string, date time.Time, candidates []PracticeCandidate, maxItems int, includeWorlds, includeProjects []string) DailyPracticePlan {
	if maxItems <= 0 {
		maxItems = cfg.MaxItems
	}
	rng := rand.New(rand.NewSource(PlanSeed(profileKey, date)))

	pool := dedupeCandidates(filterCandidates(candidates, includeWorlds, includeProjects))

	var struggle, maintenance, exploration []PracticeCandidate
	for _, c := range pool {
		switch {
		case c.Attempts == 0:
			exploration = append(exploration, c)
		case c.StruggleScore >= cfg.StruggleThreshold:
			struggle = append(struggle, c)
		default:
			// Everything attempted but below the struggle bar is maintenance,
			// including scores under the maintenance threshold.
			maintenance = append(maintenance, c)
		}
	}

	var items []PracticeItem
	n := maxItems
	if n > 2 {
		n = 2
	}
	for _, c := range pickWithPriority(struggle, n, rng) {
		items = append(items, newPracticeItem(c, CategoryStruggle))
	}
	quota := maxItems - len(items)
	n = quota
	if n > 2 {
		n = 2
	}
	// Maintenance never crowds exploration out entirely: when unattempted
	// candidates exist, at least one slot is held back for them.
	if len(exploration) > 0 && quota-n < 1 {
		n = quota - 1
	}
	for _, c := range pickWithPriority(maintenance, n, rng) {
		items = append(items, newPracticeItem(c, CategoryMaintenance))
	}
	quota = maxItems - len(items)
	for _, c := range pickWithPriority(exploration, quota, rng) {
		items = append(items, newPracticeItem(c, CategoryExploration))
	}

	return DailyPracticePlan{
		ProfileKey: profileKey,
		Date:       date.Format("2006-01-02"),
		Items:      items,
	}
}

// filterCandidates keeps a candidate when any configured filter admits it.
// With no filters everything passes; a candidate matching its world filter is
// kept even when the project filter would reject it, and vice versa.
func filterCandidates(cands []PracticeCandidate, worlds, projects []string) []PracticeCandidate {
	if len(worlds) == 0 && len(projects) == 0 {
		return cands
	}
	var out []PracticeCandidate
	for _, c := range cands {
		if (len(worlds) > 0 && containsString(worlds, c.WorldSlug)) ||
			(len(projects) > 0 && containsString(projects, c.ProjectSlug)) {
			out = append(out, c)
		}
	}
	return out
}

// dedupeCandidates collapses duplicates of the same (item_type, identifier),
// keeping the entry with the higher struggle score at the position of the
// first occurrence.
func dedupeCandidates(cands []PracticeCandidate) []PracticeCandidate {
	type key struct{ itemType, id string }
	index := map[key]int{}
	var out []PracticeCandidate
	for _, c := range cands {
		k := key{c.ItemType, c.Identifier}
		if i, ok := index[k]; ok {
			if c.StruggleScore > out[i].StruggleScore {
				out[i] = c
			}
			continue
		}
		index[k] = len(out)
		out = append(out, c)
	}
	return out
}

// pickWithPriority takes up to n candidates, highest struggle score first.
// Equal scores form a bucket shuffled with the seeded RNG, so ties land in a
// different order per day but the same order per (profile, date).
func pickWithPriority(cands []PracticeCandidate, n int, rng *rand.Rand) []PracticeCandidate {
	if n <= 0 || len(cands) == 0 {
		return nil
	}
	sorted := make([]PracticeCandidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StruggleScore > sorted[j].StruggleScore
	})

	var out []PracticeCandidate
	i := 0
	for i < len(sorted) && len(out) < n {
		j := i
		for j < len(sorted) && sorted[j].StruggleScore == sorted[i].StruggleScore {
			j++
		}
		bucket := sorted[i:j]
		rng.Shuffle(len(bucket), func(a, b int) {
			bucket[a], bucket[b] = bucket[b], bucket[a]
		})
		for _, c := range bucket {
			if len(out) == n {
				break
			}
			out = append(out, c)
		}
		i = j
	}
	return out
}

func newPracticeItem(c PracticeCandidate, category string) PracticeItem {
	return PracticeItem{
		PracticeCandidate: c,
		Category:          category,
		Difficulty:        difficultyFor(c),
		Rationale:         rationaleFor(c),
	}
}

func difficultyFor(c PracticeCandidate) string {
	switch {
	case c.Legendary:
		return "legendary"
	case c.StruggleScore >= 70:
		return "hard"
	case c.StruggleScore >= 40:
		return "medium"
	default:
		return "easy"
	}
}

func rationaleFor(c PracticeCandidate) string {
	switch {
	case c.Attempts == 0:
		return "Unexplored territory. Give it a first try."
	case c.StruggleScore >= 70:
		return fmt.Sprintf("You fought hard here (struggle %d over %d attempts). Time for a rematch.", c.StruggleScore, c.Attempts)
	case c.StruggleScore >= 40:
		return fmt.Sprintf("Still shaky after %d attempts. Shore it up.", c.Attempts)
	default:
		return fmt.Sprintf("Solid before (%d attempts). A quick pass keeps it sharp.", c.Attempts)
	}
}

// CompletionStats derives today's completion count and the running streak
// from completion timestamps. The streak counts consecutive days with at
// least one completion, ending today or yesterday so an unfinished today
// does not zero it.
func CompletionStats(times []time.Time, today time.Time) PlanStats {
	days := map[string]bool{}
	stats := PlanStats{}
	todayKey := today.Format("2006-01-02")
	for _, t := range times {
		key := t.Format("2006-01-02")
		days[key] = true
		if key == todayKey {
			stats.CompletedToday++
		}
	}

	day := today
	if !days[todayKey] {
		day = day.AddDate(0, 0, -1)
	}
	for days[day.Format("2006-01-02")] {
		stats.StreakDays++
		day = day.AddDate(0, 0, -1)
	}
	return stats
}

// StruggleScoreForQuest estimates (0-100) how much a quest needs revisiting.
// Unattempted quests score zero; they surface through exploration instead.
func StruggleScoreForQuest(state QuestState, attempts, bestScore int) int {
	if attempts == 0 {
		return 0
	}
	score := 100 - bestScore
	switch state {
	case StateInProgress:
		score += 20
	case StateMastered:
		score -= 30
	}
	if attempts > 3 {
		score += 10
	}
	return clampScore(score)
}

// StruggleScoreForBoss weighs losses against wins, plus how much HP the boss
// had left at the latest attempt.
func StruggleScoreForBoss(wins, losses int, lastHPFraction float64) int {
	if wins+losses == 0 {
		return 0
	}
	score := losses*35 - wins*20 + int(lastHPFraction*30)
	return clampScore(score)
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
