package session

// EventKind identifies what produced a currency or score change.
type EventKind int

const (
	EventBlocksDestroyed EventKind = iota
	EventPassiveIncome
	EventSkillPurchased
	EventChoiceSelected
	EventPlanetCleared
	EventSessionEnded
)

func (k EventKind) String() string {
	switch k {
	case EventBlocksDestroyed:
		return "blocks_destroyed"
	case EventPassiveIncome:
		return "passive_income"
	case EventSkillPurchased:
		return "skill_purchased"
	case EventChoiceSelected:
		return "choice_selected"
	case EventPlanetCleared:
		return "planet_cleared"
	case EventSessionEnded:
		return "session_ended"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind by name.
func (k EventKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Event is a currency/score delta published to display collaborators.
type Event struct {
	Kind       EventKind `json:"kind"`
	SoulDelta  int       `json:"soulDelta"`
	GodsDelta  int       `json:"godsDelta"`
	ScoreDelta int       `json:"scoreDelta"`
	// Ref names the skill or choice involved, if any.
	Ref string `json:"ref,omitempty"`
}

// eventBuffer is the capacity of a session's event channel. Events are
// dropped when a slow consumer lets it fill.
const eventBuffer = 64

func (s *Session) emit(e Event) {
	if s.eventsClosed {
		return
	}
	select {
	case s.events <- e:
	default:
		s.dropped++
	}
}
