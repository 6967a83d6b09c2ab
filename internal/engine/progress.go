package engine

import (
	"time"

	"codequest/internal/storage"
)

type transitionKey struct {
	state  QuestState
	passed bool
}

// transitions lists every (state, outcome) pair explicitly so gaps are
// visible. A failing submission against a locked quest leaves it locked while
// the attempt counters still advance; see DESIGN.md for that call.
var transitions = map[transitionKey]QuestState{
	{StateLocked, true}:     StateCompleted,
	{StateAvailable, true}:  StateCompleted,
	{StateInProgress, true}: StateMastered,
	{StateCompleted, true}:  StateMastered,
	{StateMastered, true}:   StateMastered,

	{StateLocked, false}:     StateLocked,
	{StateAvailable, false}:  StateInProgress,
	{StateInProgress, false}: StateInProgress,
	{StateCompleted, false}:  StateCompleted,
	{StateMastered, false}:   StateMastered,
}

// NextState resolves one step of the quest state machine.
func NextState(cur QuestState, passed bool) QuestState {
	if next, ok := transitions[transitionKey{cur, passed}]; ok {
		return next
	}
	return cur
}

// ApplySubmission folds one graded submission into a progress row and returns
// the state the row was in before. It never fails: counters always advance,
// best_score only ever increases, and the state moves per the transition
// table. Completion timestamps are written once and never overwritten.
func ApplySubmission(p *storage.QuestProgress, score int, passed bool, now time.Time) QuestState {
	prev := QuestState(p.State)
	if !prev.IsValid() {
		prev = DefaultState
	}

	p.Attempts++
	submitted := now
	p.LastSubmittedAt = &submitted
	if score > p.BestScore {
		p.BestScore = score
	}

	next := NextState(prev, passed)
	if next != prev {
		switch next {
		case StateCompleted:
			if p.CompletedAt == nil {
				t := now
				p.CompletedAt = &t
			}
		case StateMastered:
			if p.MasteredAt == nil {
				t := now
				p.MasteredAt = &t
			}
		}
	}
	p.State = string(next)
	return prev
}
