package model

import (
	"encoding/json"
	"time"
)

// Player is a participant in a session
type Player struct {
	Name    string         `json:"name"`
	Answers []PlayerAnswer `json:"answers"`
}

// PlayerAnswer is a player's answer to one question
type PlayerAnswer struct {
	QuestionStartedAt *time.Time `json:"questionStartedAt"`
	AnsweredAt        *time.Time `json:"answeredAt"`
	Answers           []any      `json:"answers"`
	Correct           bool       `json:"correct"`
}

// NewPlayer creates a player with one empty answer slot per question
func NewPlayer(name string, numQuestions int) *Player {
	answers := make([]PlayerAnswer, numQuestions)
	for i := range answers {
		answers[i] = PlayerAnswer{Answers: []any{}}
	}
	return &Player{Name: name, Answers: answers}
}

// PlayerQuestion is the current question as shown to a player
type PlayerQuestion struct {
	Question                   Question
	IsoTimeLastQuestionStarted *time.Time
}

func (p PlayerQuestion) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(p.Question)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	started, err := json.Marshal(p.IsoTimeLastQuestionStarted)
	if err != nil {
		return nil, err
	}
	m["isoTimeLastQuestionStarted"] = started
	return json.Marshal(m)
}
