package engine

type QuestState string

const (
	StateLocked     QuestState = "locked"
	StateAvailable  QuestState = "available"
	StateInProgress QuestState = "in_progress"
	StateCompleted  QuestState = "completed"
	StateMastered   QuestState = "mastered"
)

func (s QuestState) IsValid() bool {
	switch s {
	case StateLocked, StateAvailable, StateInProgress, StateCompleted, StateMastered:
		return true
	default:
		return false
	}
}

// Reached reports whether the state counts as a completion.
func (s QuestState) Reached() bool {
	return s == StateCompleted || s == StateMastered
}

// DefaultState is assigned when a progress row is created on first contact.
const DefaultState = StateAvailable
