package engine

import "fmt"

// UnknownBossError means a boss definition was required and missing. Callers
// outside the engine turn this into a not-found response.
type UnknownBossError struct {
	ID   int64
	Slug string
}

func (e UnknownBossError) Error() string {
	if e.Slug != "" {
		return fmt.Sprintf("unknown boss: %s", e.Slug)
	}
	return fmt.Sprintf("unknown boss: %d", e.ID)
}

type UnknownQuestError struct {
	Slug string
}

func (e UnknownQuestError) Error() string {
	return fmt.Sprintf("unknown quest: %s", e.Slug)
}

// RubricError is a load-time config error: a malformed rubric fails fast
// instead of silently degrading every score to "F".
type RubricError struct {
	Slug   string
	Reason string
}

func (e RubricError) Error() string {
	return fmt.Sprintf("rubric %q: %s", e.Slug, e.Reason)
}

// NoActiveRunError is returned when a strike arrives with no open encounter.
type NoActiveRunError struct {
	ProfileKey string
}

func (e NoActiveRunError) Error() string {
	return fmt.Sprintf("profile %q has no active boss encounter", e.ProfileKey)
}

// ActiveRunError is returned when starting an encounter while one is open.
type ActiveRunError struct {
	ProfileKey string
	RunID      string
}

func (e ActiveRunError) Error() string {
	return fmt.Sprintf("profile %q already has an active encounter (%s)", e.ProfileKey, e.RunID)
}
