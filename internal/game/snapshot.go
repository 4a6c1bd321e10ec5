package game

import "github.com/myrjola/spotfake/internal/content"

// Snapshot is a read-only view of the session for rendering. It is handed out
// by value so presentation code can never mutate live session state.
type Snapshot struct {
	State          State
	Index          int
	Total          int
	Remaining      int
	Score          int
	Streak         int
	Multiplier     int
	Qualified      bool
	Processing     bool
	Current        *content.Item
	LastAnswer     *Answer
	BonusChoices   []content.Item
	BonusRemaining int
	BonusResolved  bool
	BonusWon       bool
}

// Snapshot captures the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := Snapshot{
		State:      s.state,
		Index:      s.idx,
		Total:      len(s.items),
		Remaining:  s.remaining,
		Score:      s.score,
		Streak:     s.streak,
		Multiplier: multiplier(s.streak),
		Qualified:  s.qualified,
		Processing: s.processing,
	}
	if s.state == StateRunning && s.idx < len(s.items) {
		current := s.items[s.idx]
		snapshot.Current = &current
	}
	if len(s.answers) > 0 {
		last := s.answers[len(s.answers)-1]
		snapshot.LastAnswer = &last
	}
	if s.bonus != nil {
		snapshot.BonusChoices = []content.Item{s.bonus.choices[0], s.bonus.choices[1]}
		snapshot.BonusRemaining = s.bonus.remaining
		snapshot.BonusResolved = s.bonus.resolved
		snapshot.BonusWon = s.bonus.won
	}
	return snapshot
}

// Answers returns a copy of the ordered answer log.
func (s *Session) Answers() []Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	answers := make([]Answer, len(s.answers))
	copy(answers, s.answers)
	return answers
}
