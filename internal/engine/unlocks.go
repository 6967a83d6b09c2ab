package engine

import (
	"sort"
	"strconv"

	"codequest/internal/storage"
)

const (
	UnlockTypeBoss   = "boss"
	UnlockTypeLayout = "layout"
)

// UnlockEvent is surfaced to the caller for notification. Label starts as the
// raw id; the service swaps in the catalog title when it has one.
type UnlockEvent struct {
	Type  string
	ID    string
	Label string
}

// JustCompleted reports whether a transition crossed into completion for the
// first time. Completion states are terminal for this check, so it can fire
// at most once per quest per profile.
func JustCompleted(prev, next QuestState) bool {
	return !prev.Reached() && next.Reached()
}

// ResolveUnlocks applies a quest's unlock targets to the profile flags and
// returns the new flags value plus the events that fired. Already-recorded
// unlocks are skipped, so the result is idempotent.
func ResolveUnlocks(prev, next QuestState, q *storage.Quest, flags storage.ProfileFlags) (storage.ProfileFlags, []UnlockEvent) {
	if !JustCompleted(prev, next) {
		return flags, nil
	}

	var events []UnlockEvent
	if q.UnlocksLayoutID != nil {
		id := *q.UnlocksLayoutID
		if added, ok := addToSet(flags.LayoutsUnlocked, id); ok {
			flags.LayoutsUnlocked = added
			events = append(events, UnlockEvent{Type: UnlockTypeLayout, ID: id, Label: id})
		}
	}
	if q.UnlocksBossID != nil {
		id := strconv.FormatInt(*q.UnlocksBossID, 10)
		if added, ok := addToSet(flags.BossesUnlocked, id); ok {
			flags.BossesUnlocked = added
			events = append(events, UnlockEvent{Type: UnlockTypeBoss, ID: id, Label: id})
		}
	}
	return flags, events
}

// addToSet inserts v into a sorted string set, returning a fresh slice. Sets
// stay sorted and de-duplicated for stable serialization; the input slice is
// never modified.
func addToSet(set []string, v string) ([]string, bool) {
	i := sort.SearchStrings(set, v)
	if i < len(set) && set[i] == v {
		return set, false
	}
	out := make([]string, 0, len(set)+1)
	out = append(out, set[:i]...)
	out = append(out, v)
	out = append(out, set[i:]...)
	return out, true
}
