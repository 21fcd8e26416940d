package model

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Session is one live playthrough of a game
type Session struct {
	GameID                     string             `json:"gameId"`
	Position                   int                `json:"position"`
	IsoTimeLastQuestionStarted *time.Time         `json:"isoTimeLastQuestionStarted"`
	Players                    map[string]*Player `json:"players"`
	Questions                  []Question         `json:"questions"`
	Active                     bool               `json:"active"`
	AnswerAvailable            bool               `json:"answerAvailable"`
}

// NewSession creates a not-yet-started session holding its own copy of the questions
func NewSession(gameID string, questions []Question) *Session {
	return &Session{
		GameID:    gameID,
		Position:  -1,
		Players:   make(map[string]*Player),
		Questions: CloneQuestions(questions),
		Active:    true,
	}
}

// Started reports whether the first question has been shown
func (s *Session) Started() bool {
	return s.Position >= 0
}

// CurrentQuestion returns the question at the current position, if any
func (s *Session) CurrentQuestion() (*Question, bool) {
	if s.Position < 0 || s.Position >= len(s.Questions) {
		return nil, false
	}
	return &s.Questions[s.Position], true
}

// PlayerIDs returns player ids in ascending numeric order
func (s *Session) PlayerIDs() []string {
	ids := make([]string, 0, len(s.Players))
	for id := range s.Players {
		ids = append(ids, id)
	}
	SortIDs(ids)
	return ids
}

// Sessions is the persisted sessions document
type Sessions map[string]*Session

// ActiveFor returns the ids of active sessions for a game, in ascending order
func (ss Sessions) ActiveFor(gameID string) []string {
	var ids []string
	for id, s := range ss {
		if s != nil && s.GameID == gameID && s.Active {
			ids = append(ids, id)
		}
	}
	SortIDs(ids)
	return ids
}

// InactiveFor returns the ids of ended sessions for a game, in ascending order
func (ss Sessions) InactiveFor(gameID string) []string {
	var ids []string
	for id, s := range ss {
		if s != nil && s.GameID == gameID && !s.Active {
			ids = append(ids, id)
		}
	}
	SortIDs(ids)
	return ids
}

// FindPlayer returns the session holding the given player
func (ss Sessions) FindPlayer(playerID string) (string, *Session, bool) {
	for id, s := range ss {
		if s == nil {
			continue
		}
		if p, ok := s.Players[playerID]; ok && p != nil {
			return id, s, true
		}
	}
	return "", nil, false
}

// HasPlayer reports whether any session holds the given player id
func (ss Sessions) HasPlayer(playerID string) bool {
	_, _, ok := ss.FindPlayer(playerID)
	return ok
}

// SortIDs orders decimal ids numerically, falling back to string order
func SortIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.ParseInt(ids[i], 10, 64)
		b, errB := strconv.ParseInt(ids[j], 10, 64)
		if errA == nil && errB == nil {
			return a < b
		}
		if (errA == nil) != (errB == nil) {
			return errA == nil
		}
		return strings.Compare(ids[i], ids[j]) < 0
	})
}

// SessionStatus is an admin-facing snapshot of a session
type SessionStatus struct {
	Active                     bool       `json:"active"`
	AnswerAvailable            bool       `json:"answerAvailable"`
	IsoTimeLastQuestionStarted *time.Time `json:"isoTimeLastQuestionStarted"`
	Position                   int        `json:"position"`
	Questions                  []Question `json:"questions"`
	Players                    []string   `json:"players"`
}

// MutationType is an admin action on a game's session
type MutationType string

const (
	MutationStart   MutationType = "START"
	MutationAdvance MutationType = "ADVANCE"
	MutationEnd     MutationType = "END"
)

// MutationResult describes the outcome of a game mutation
type MutationResult struct {
	Status    string `json:"status"`
	SessionID *int64 `json:"sessionId,omitempty"`
	Position  *int   `json:"position,omitempty"`
}

// ParseID converts a decimal id to an integer, returning 0 for non-numeric ids
func ParseID(id string) int64 {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
