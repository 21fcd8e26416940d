package model

import "time"

// SessionEventType names a session lifecycle event
type SessionEventType string

const (
	EventSessionStarted  SessionEventType = "session_started"
	EventQuestionStarted SessionEventType = "question_started"
	EventAnswerAvailable SessionEventType = "answer_available"
	EventSessionEnded    SessionEventType = "session_ended"
	EventPlayerJoined    SessionEventType = "player_joined"
)

// SessionEvent is emitted after a session changes state
type SessionEvent struct {
	Type      SessionEventType `json:"type"`
	SessionID string           `json:"sessionId"`
	GameID    string           `json:"gameId"`
	Position  int              `json:"position"`
	PlayerID  string           `json:"playerId,omitempty"`
	Name      string           `json:"name,omitempty"`
	At        time.Time        `json:"at"`
}
