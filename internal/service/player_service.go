package service

import (
	"bigbrain/internal/clock"
	"bigbrain/internal/config"
	"bigbrain/internal/idgen"
	"bigbrain/internal/lock"
	"bigbrain/internal/model"
	"bigbrain/internal/store"
	"context"
)

// PlayerService handles the player roster and answer submission
type PlayerService struct {
	docs   *store.Documents
	locker *lock.Locker
	ids    *idgen.Generator
	clock  clock.Clock
	bounds config.IDBounds
	events *Notifier
}

// NewPlayerService creates a new player service
func NewPlayerService(
	docs *store.Documents,
	locker *lock.Locker,
	ids *idgen.Generator,
	clk clock.Clock,
	bounds config.IDBounds,
	events *Notifier,
) *PlayerService {
	return &PlayerService{
		docs:   docs,
		locker: locker,
		ids:    ids,
		clock:  clk,
		bounds: bounds,
		events: events,
	}
}

// Join adds a player to a session that has not started yet
func (s *PlayerService) Join(ctx context.Context, sessionID, name string) (int64, error) {
	if name == "" {
		return 0, inputErrorf("Name must be supplied")
	}

	type joined struct {
		playerID string
		gameID   string
	}
	out, err := lock.With(ctx, s.locker, lock.SessionMutate, func(ctx context.Context) (joined, error) {
		var out joined
		err := s.docs.UpdateSessions(ctx, func(sessions model.Sessions) error {
			session, ok := sessions[sessionID]
			if !ok || session == nil || !session.Active {
				return inputErrorf("Session ID is not an active session")
			}
			if session.Started() {
				return inputErrorf("Session has already begun")
			}

			id, err := s.ids.Generate(sessions.HasPlayer, s.bounds.Player)
			if err != nil {
				return err
			}
			if session.Players == nil {
				session.Players = make(map[string]*model.Player)
			}
			session.Players[id] = model.NewPlayer(name, len(session.Questions))
			out = joined{playerID: id, gameID: session.GameID}
			return nil
		})
		return out, err
	})
	if err != nil {
		return 0, err
	}

	s.events.Emit(model.SessionEvent{
		Type:      model.EventPlayerJoined,
		SessionID: sessionID,
		GameID:    out.gameID,
		Position:  -1,
		PlayerID:  out.playerID,
		Name:      name,
		At:        s.clock.Now(),
	})
	return model.ParseID(out.playerID), nil
}

// SessionStatus returns a snapshot of a session for its admin
func (s *PlayerService) SessionStatus(ctx context.Context, sessionID string) (model.SessionStatus, error) {
	return lock.With(ctx, s.locker, lock.SessionMutate, func(ctx context.Context) (model.SessionStatus, error) {
		sessions, err := s.docs.Sessions(ctx)
		if err != nil {
			return model.SessionStatus{}, err
		}
		session, ok := sessions[sessionID]
		if !ok || session == nil {
			return model.SessionStatus{}, inputErrorf("Invalid session ID")
		}

		names := make([]string, 0, len(session.Players))
		for _, id := range session.PlayerIDs() {
			names = append(names, session.Players[id].Name)
		}
		questions := session.Questions
		if questions == nil {
			questions = []model.Question{}
		}
		return model.SessionStatus{
			Active:                     session.Active,
			AnswerAvailable:            session.AnswerAvailable,
			IsoTimeLastQuestionStarted: session.IsoTimeLastQuestionStarted,
			Position:                   session.Position,
			Questions:                  questions,
			Players:                    names,
		}, nil
	})
}

// SessionResults returns every player's answers once the session has ended
func (s *PlayerService) SessionResults(ctx context.Context, sessionID string) ([]model.Player, error) {
	return lock.With(ctx, s.locker, lock.SessionMutate, func(ctx context.Context) ([]model.Player, error) {
		sessions, err := s.docs.Sessions(ctx)
		if err != nil {
			return nil, err
		}
		session, ok := sessions[sessionID]
		if !ok || session == nil {
			return nil, inputErrorf("Invalid session ID")
		}
		if session.Active {
			return nil, inputErrorf("Cannot get results for active session")
		}

		results := make([]model.Player, 0, len(session.Players))
		for _, id := range session.PlayerIDs() {
			results = append(results, *session.Players[id])
		}
		return results, nil
	})
}

// HasStarted reports whether the player's session has shown a question
func (s *PlayerService) HasStarted(ctx context.Context, playerID string) (bool, error) {
	return withPlayerSession(ctx, s, playerID, func(session *model.Session, _ *model.Player) (bool, error) {
		if !session.Active {
			return false, inputErrorf("Session ID is not an active session")
		}
		return session.IsoTimeLastQuestionStarted != nil, nil
	})
}

// Question returns the current question without its answers
func (s *PlayerService) Question(ctx context.Context, playerID string) (model.PlayerQuestion, error) {
	return withPlayerSession(ctx, s, playerID, func(session *model.Session, _ *model.Player) (model.PlayerQuestion, error) {
		if !session.Active {
			return model.PlayerQuestion{}, inputErrorf("Session ID is not an active session")
		}
		if !session.Started() {
			return model.PlayerQuestion{}, inputErrorf("Session has not started yet")
		}
		q, ok := session.CurrentQuestion()
		if !ok {
			return model.PlayerQuestion{}, inputErrorf("Question not found")
		}
		return model.PlayerQuestion{
			Question:                   q.Public(),
			IsoTimeLastQuestionStarted: session.IsoTimeLastQuestionStarted,
		}, nil
	})
}

// Answers returns the correct answers once the question's time is up
func (s *PlayerService) Answers(ctx context.Context, playerID string) ([]any, error) {
	return withPlayerSession(ctx, s, playerID, func(session *model.Session, _ *model.Player) ([]any, error) {
		if !session.Active {
			return nil, inputErrorf("Session ID is not an active session")
		}
		if !session.Started() {
			return nil, inputErrorf("Session has not started yet")
		}
		if !session.AnswerAvailable {
			return nil, inputErrorf("Answers are not available yet")
		}
		q, ok := session.CurrentQuestion()
		if !ok {
			return nil, inputErrorf("Question not found")
		}
		if q.CorrectAnswers == nil {
			return []any{}, nil
		}
		return q.Clone().CorrectAnswers, nil
	})
}

// SubmitAnswers records the player's answer to the current question,
// replacing any earlier submission
func (s *PlayerService) SubmitAnswers(ctx context.Context, playerID string, answers []any) error {
	if len(answers) == 0 {
		return inputErrorf("Answers must be provided")
	}

	_, err := lock.With(ctx, s.locker, lock.SessionMutate, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.docs.UpdateSessions(ctx, func(sessions model.Sessions) error {
			_, session, ok := sessions.FindPlayer(playerID)
			if !ok {
				return inputErrorf("Player ID does not refer to valid player id")
			}
			if !session.Active {
				return inputErrorf("Session ID is not an active session")
			}
			if !session.Started() {
				return inputErrorf("Session has not started yet")
			}
			if session.AnswerAvailable {
				return inputErrorf("Can't answer question once answer is available")
			}
			q, ok := session.CurrentQuestion()
			if !ok {
				return inputErrorf("Question not found")
			}

			player := session.Players[playerID]
			for len(player.Answers) <= session.Position {
				player.Answers = append(player.Answers, model.PlayerAnswer{Answers: []any{}})
			}
			now := s.clock.Now()
			player.Answers[session.Position] = model.PlayerAnswer{
				QuestionStartedAt: session.IsoTimeLastQuestionStarted,
				AnsweredAt:        &now,
				Answers:           append([]any(nil), answers...),
				Correct:           model.AnswersMatch(answers, q.CorrectAnswers),
			}
			return nil
		})
	})
	return err
}

// Results returns the player's answers once their session has ended
func (s *PlayerService) Results(ctx context.Context, playerID string) ([]model.PlayerAnswer, error) {
	return withPlayerSession(ctx, s, playerID, func(session *model.Session, player *model.Player) ([]model.PlayerAnswer, error) {
		if session.Active {
			return nil, inputErrorf("Session is ongoing, cannot get results yet")
		}
		if !session.Started() {
			return nil, inputErrorf("Session has not started yet")
		}
		if player.Answers == nil {
			return []model.PlayerAnswer{}, nil
		}
		return player.Answers, nil
	})
}

// SessionOf returns the id of the session a player belongs to
func (s *PlayerService) SessionOf(ctx context.Context, playerID string) (string, error) {
	sessions, err := s.docs.Sessions(ctx)
	if err != nil {
		return "", err
	}
	id, _, ok := sessions.FindPlayer(playerID)
	if !ok {
		return "", inputErrorf("Player ID does not refer to valid player id")
	}
	return id, nil
}

// withPlayerSession runs a read-only fn against the player's session under the session lock
func withPlayerSession[T any](ctx context.Context, s *PlayerService, playerID string, fn func(*model.Session, *model.Player) (T, error)) (T, error) {
	return lock.With(ctx, s.locker, lock.SessionMutate, func(ctx context.Context) (T, error) {
		var zero T
		sessions, err := s.docs.Sessions(ctx)
		if err != nil {
			return zero, err
		}
		_, session, ok := sessions.FindPlayer(playerID)
		if !ok {
			return zero, inputErrorf("Player ID does not refer to valid player id")
		}
		return fn(session, session.Players[playerID])
	})
}
