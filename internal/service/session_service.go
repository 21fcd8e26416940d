package service

import (
	"bigbrain/internal/cache"
	"bigbrain/internal/clock"
	"bigbrain/internal/config"
	"bigbrain/internal/idgen"
	"bigbrain/internal/lock"
	"bigbrain/internal/model"
	"bigbrain/internal/store"
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// SessionService runs the session state machine: start, advance,
// timed answer reveal and end
type SessionService struct {
	docs         *store.Documents
	locker       *lock.Locker
	ids          *idgen.Generator
	clock        clock.Clock
	cfg          *config.EngineConfig
	games        *GameService
	events       *Notifier
	leaderboards cache.LeaderboardCache
	log          zerolog.Logger

	timerMu sync.Mutex
	timers  map[string]*revealTimer
	closed  bool
}

// revealTimer is the pending answer reveal of one session
type revealTimer struct {
	timer    clock.Timer
	position int
	attempt  int
}

// questionDelay converts a duration in seconds, saturating instead of
// overflowing for durations beyond what time.Duration holds
func questionDelay(seconds float64) time.Duration {
	d := seconds * float64(time.Second)
	if d >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

// NewSessionService creates a new session service
func NewSessionService(
	docs *store.Documents,
	locker *lock.Locker,
	ids *idgen.Generator,
	clk clock.Clock,
	cfg *config.EngineConfig,
	games *GameService,
	events *Notifier,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		docs:   docs,
		locker: locker,
		ids:    ids,
		clock:  clk,
		cfg:    cfg,
		games:  games,
		events: events,
		log:    log.With().Str("component", "sessions").Logger(),
		timers: make(map[string]*revealTimer),
	}
}

// SetLeaderboardCache enables caching of final standings
func (s *SessionService) SetLeaderboardCache(c cache.LeaderboardCache) {
	s.leaderboards = c
}

// MutateGame applies a START, ADVANCE or END action to a game's session
func (s *SessionService) MutateGame(ctx context.Context, gameID, mutationType string) (model.MutationResult, error) {
	var result model.MutationResult
	var err error

	switch model.MutationType(strings.ToUpper(mutationType)) {
	case model.MutationStart:
		var sessionID string
		sessionID, err = s.StartGame(ctx, gameID)
		if err == nil {
			id := model.ParseID(sessionID)
			result = model.MutationResult{Status: "started", SessionID: &id}
		}
	case model.MutationAdvance:
		var position int
		position, err = s.AdvanceGame(ctx, gameID)
		if err == nil {
			result = model.MutationResult{Status: "advanced", Position: &position}
		}
	case model.MutationEnd:
		err = s.EndGame(ctx, gameID)
		if err == nil {
			result = model.MutationResult{Status: "ended"}
		}
	default:
		return result, inputErrorf("Invalid mutation type")
	}

	if err != nil && !IsInputError(err) {
		return result, fmt.Errorf("failed to mutate game: %w", err)
	}
	return result, err
}

// StartGame opens a new session for gameID and returns its id
func (s *SessionService) StartGame(ctx context.Context, gameID string) (string, error) {
	sessionID, err := lock.With(ctx, s.locker, lock.SessionMutate, func(ctx context.Context) (string, error) {
		games, err := s.docs.Games(ctx)
		if err != nil {
			return "", err
		}
		game, ok := games[gameID]
		if !ok || game == nil {
			return "", inputErrorf("Invalid game ID")
		}

		var sessionID string
		err = s.docs.UpdateSessions(ctx, func(sessions model.Sessions) error {
			if len(sessions.ActiveFor(gameID)) > 0 {
				return inputErrorf("Game already has active session")
			}
			id, err := s.ids.Generate(idgen.InSet(sessions), s.cfg.IDBounds.Session)
			if err != nil {
				return err
			}
			sessions[id] = model.NewSession(gameID, game.Questions)
			sessionID = id
			return nil
		})
		return sessionID, err
	})
	if err != nil {
		return "", err
	}

	s.log.Info().Str("game", gameID).Str("session", sessionID).Msg("session started")
	s.events.Emit(model.SessionEvent{
		Type:      model.EventSessionStarted,
		SessionID: sessionID,
		GameID:    gameID,
		Position:  -1,
		At:        s.clock.Now(),
	})
	return sessionID, nil
}

type advanceOutcome struct {
	sessionID string
	position  int
	ended     bool
	delay     time.Duration
}

// AdvanceGame moves the active session of gameID to its next question and
// arms the answer reveal. Advancing past the last question ends the session.
func (s *SessionService) AdvanceGame(ctx context.Context, gameID string) (int, error) {
	out, err := lock.With(ctx, s.locker, lock.SessionMutate, func(ctx context.Context) (advanceOutcome, error) {
		var out advanceOutcome
		var durationErr error

		err := s.docs.UpdateSessions(ctx, func(sessions model.Sessions) error {
			out, durationErr = advanceOutcome{}, nil

			sessionID, session, err := activeSession(sessions, gameID)
			if err != nil {
				return err
			}
			if !session.Active {
				return inputErrorf("Cannot advance a game that is not active")
			}

			now := s.clock.Now()
			session.Position++
			session.AnswerAvailable = false
			session.IsoTimeLastQuestionStarted = &now
			out.sessionID, out.position = sessionID, session.Position

			if session.Position >= len(session.Questions) {
				session.Active = false
				out.ended = true
				return nil
			}

			seconds, ok := session.Questions[session.Position].DurationSeconds()
			if !ok {
				// the position increment is still saved
				durationErr = inputErrorf("Question duration not found")
				return nil
			}
			out.delay = questionDelay(seconds)
			return nil
		})
		if err != nil {
			return out, err
		}

		s.cancelReveal(out.sessionID)
		if !out.ended && durationErr == nil {
			s.armReveal(out.sessionID, out.position, out.delay)
		}
		return out, durationErr
	})
	if err != nil {
		return out.position, err
	}

	ev := model.SessionEvent{
		Type:      model.EventQuestionStarted,
		SessionID: out.sessionID,
		GameID:    gameID,
		Position:  out.position,
		At:        s.clock.Now(),
	}
	if out.ended {
		ev.Type = model.EventSessionEnded
		s.log.Info().Str("game", gameID).Str("session", out.sessionID).Msg("session ended after last question")
	}
	s.events.Emit(ev)
	return out.position, nil
}

// EndGame closes the active session of gameID
func (s *SessionService) EndGame(ctx context.Context, gameID string) error {
	type ended struct {
		sessionID string
		position  int
	}
	out, err := lock.With(ctx, s.locker, lock.SessionMutate, func(ctx context.Context) (ended, error) {
		var out ended
		err := s.docs.UpdateSessions(ctx, func(sessions model.Sessions) error {
			id, session, err := activeSession(sessions, gameID)
			if err != nil {
				return err
			}
			session.Active = false
			out = ended{sessionID: id, position: session.Position}
			return nil
		})
		if err != nil {
			return out, err
		}
		s.cancelReveal(out.sessionID)
		return out, nil
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("game", gameID).Str("session", out.sessionID).Msg("session ended")
	s.events.Emit(model.SessionEvent{
		Type:      model.EventSessionEnded,
		SessionID: out.sessionID,
		GameID:    gameID,
		Position:  out.position,
		At:        s.clock.Now(),
	})
	return nil
}

// AssertOwnsSession fails unless the session's game is owned by email
func (s *SessionService) AssertOwnsSession(ctx context.Context, email, sessionID string) error {
	sessions, err := s.docs.Sessions(ctx)
	if err != nil {
		return err
	}
	session, ok := sessions[sessionID]
	if !ok || session == nil {
		return inputErrorf("Invalid session ID")
	}
	return s.games.AssertOwnsGame(ctx, email, session.GameID)
}

// Leaderboard ranks the players of a session by points earned
func (s *SessionService) Leaderboard(ctx context.Context, sessionID string) ([]model.LeaderboardEntry, error) {
	if s.leaderboards != nil {
		entries, ok, err := s.leaderboards.Get(ctx, sessionID)
		if err != nil {
			s.log.Warn().Err(err).Str("session", sessionID).Msg("leaderboard cache read failed")
		} else if ok {
			return entries, nil
		}
	}

	type standing struct {
		entries []model.LeaderboardEntry
		ended   bool
	}
	st, err := lock.With(ctx, s.locker, lock.SessionMutate, func(ctx context.Context) (standing, error) {
		sessions, err := s.docs.Sessions(ctx)
		if err != nil {
			return standing{}, err
		}
		session, ok := sessions[sessionID]
		if !ok || session == nil {
			return standing{}, inputErrorf("Invalid session ID")
		}
		return standing{entries: model.BuildLeaderboard(session), ended: !session.Active}, nil
	})
	if err != nil {
		return nil, err
	}

	if st.ended && s.leaderboards != nil && len(st.entries) > 0 {
		if err := s.leaderboards.Put(ctx, sessionID, st.entries); err != nil {
			s.log.Warn().Err(err).Str("session", sessionID).Msg("leaderboard cache write failed")
		}
	}
	return st.entries, nil
}

// Resume re-arms reveal timers for sessions left mid-question by a restart.
// Questions whose time already ran out are revealed straight away.
func (s *SessionService) Resume(ctx context.Context) (int, error) {
	return lock.With(ctx, s.locker, lock.SessionMutate, func(ctx context.Context) (int, error) {
		sessions, err := s.docs.Sessions(ctx)
		if err != nil {
			return 0, err
		}

		now := s.clock.Now()
		armed := 0
		for id, session := range sessions {
			if session == nil || !session.Active || session.AnswerAvailable {
				continue
			}
			q, ok := session.CurrentQuestion()
			if !ok {
				continue
			}
			seconds, ok := q.DurationSeconds()
			if !ok {
				s.log.Warn().Str("session", id).Int("position", session.Position).Msg("cannot resume reveal without a duration")
				continue
			}

			remaining := questionDelay(seconds)
			if started := session.IsoTimeLastQuestionStarted; started != nil {
				remaining -= now.Sub(*started)
			}
			if remaining < 0 {
				remaining = 0
			}
			s.cancelReveal(id)
			s.armReveal(id, session.Position, remaining)
			armed++
		}
		return armed, nil
	})
}

// Close stops every pending reveal timer
func (s *SessionService) Close() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	s.closed = true
	for id, rt := range s.timers {
		rt.timer.Stop()
		delete(s.timers, id)
	}
}

func (s *SessionService) armReveal(sessionID string, position int, delay time.Duration) {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.closed {
		return
	}
	s.armLocked(sessionID, &revealTimer{position: position}, delay)
}

// armLocked schedules rt; timerMu must be held
func (s *SessionService) armLocked(sessionID string, rt *revealTimer, delay time.Duration) {
	rt.timer = s.clock.AfterFunc(delay, func() { s.reveal(sessionID, rt) })
	s.timers[sessionID] = rt
}

// retryReveal re-arms a reveal that failed, unless it was superseded
// meanwhile. Once the retries run out the timer is dropped.
func (s *SessionService) retryReveal(sessionID string, rt *revealTimer, cause error) {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.closed || s.timers[sessionID] != rt {
		return
	}
	if rt.attempt >= s.cfg.RevealRetries {
		delete(s.timers, sessionID)
		s.log.Error().Err(cause).Str("session", sessionID).Int("position", rt.position).
			Msg("giving up on answer reveal; session is stuck until advanced or ended")
		return
	}
	s.log.Warn().Err(cause).Str("session", sessionID).Int("position", rt.position).
		Int("attempt", rt.attempt+1).Msg("answer reveal failed, retrying")
	s.armLocked(sessionID, &revealTimer{position: rt.position, attempt: rt.attempt + 1}, s.cfg.RevealRetryDelay)
}

func (s *SessionService) cancelReveal(sessionID string) {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if rt, ok := s.timers[sessionID]; ok {
		rt.timer.Stop()
		delete(s.timers, sessionID)
	}
}

func (s *SessionService) isCurrent(sessionID string, rt *revealTimer) bool {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	return s.timers[sessionID] == rt
}

// reveal runs when a question's time is up. It re-reads the stored session
// under the session lock and only flips answerAvailable if the session is
// still on the question the timer was armed for.
func (s *SessionService) reveal(sessionID string, rt *revealTimer) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RevealTimeout)
	defer cancel()

	gameID, err := lock.With(ctx, s.locker, lock.SessionMutate, func(ctx context.Context) (string, error) {
		if !s.isCurrent(sessionID, rt) {
			return "", nil
		}

		var gameID string
		err := s.docs.UpdateSessions(ctx, func(sessions model.Sessions) error {
			gameID = ""
			session, ok := sessions[sessionID]
			if !ok || session == nil || !session.Active || session.Position != rt.position || session.AnswerAvailable {
				return store.ErrAbort
			}
			session.AnswerAvailable = true
			gameID = session.GameID
			return nil
		})
		if err != nil {
			return "", err
		}

		s.timerMu.Lock()
		if s.timers[sessionID] == rt {
			delete(s.timers, sessionID)
		}
		s.timerMu.Unlock()
		return gameID, nil
	})
	if err != nil {
		s.retryReveal(sessionID, rt, err)
		return
	}
	if gameID == "" {
		s.log.Debug().Str("session", sessionID).Int("position", rt.position).Msg("dropped stale reveal")
		return
	}

	s.events.Emit(model.SessionEvent{
		Type:      model.EventAnswerAvailable,
		SessionID: sessionID,
		GameID:    gameID,
		Position:  rt.position,
		At:        s.clock.Now(),
	})
}

// PendingReveals returns the number of armed reveal timers
func (s *SessionService) PendingReveals() int {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	return len(s.timers)
}

func activeSession(sessions model.Sessions, gameID string) (string, *model.Session, error) {
	ids := sessions.ActiveFor(gameID)
	if len(ids) == 0 {
		return "", nil, inputErrorf("Game has no active session")
	}
	return ids[0], sessions[ids[0]], nil
}
