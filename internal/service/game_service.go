package service

import (
	"bigbrain/internal/config"
	"bigbrain/internal/idgen"
	"bigbrain/internal/lock"
	"bigbrain/internal/model"
	"bigbrain/internal/store"
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// GameService owns game definitions and their ownership rules
type GameService struct {
	docs   *store.Documents
	locker *lock.Locker
	ids    *idgen.Generator
	bounds config.IDBounds
	log    zerolog.Logger
}

// NewGameService creates a new game service
func NewGameService(docs *store.Documents, locker *lock.Locker, ids *idgen.Generator, bounds config.IDBounds, log zerolog.Logger) *GameService {
	return &GameService{
		docs:   docs,
		locker: locker,
		ids:    ids,
		bounds: bounds,
		log:    log.With().Str("component", "games").Logger(),
	}
}

// AssertOwnsGame fails unless gameID exists and is owned by email
func (s *GameService) AssertOwnsGame(ctx context.Context, email, gameID string) error {
	_, err := lock.With(ctx, s.locker, lock.GameMutate, func(ctx context.Context) (struct{}, error) {
		games, err := s.docs.Games(ctx)
		if err != nil {
			return struct{}{}, err
		}
		game, ok := games[gameID]
		if !ok || game == nil {
			return struct{}{}, inputErrorf("Invalid game ID")
		}
		if game.Owner != email {
			return struct{}{}, inputErrorf("Admin does not own this Game")
		}
		return struct{}{}, nil
	})
	return err
}

// ListGames returns the admin's games with their live and past sessions
func (s *GameService) ListGames(ctx context.Context, email string) ([]model.GameSummary, error) {
	return lock.With(ctx, s.locker, lock.GameMutate, func(ctx context.Context) ([]model.GameSummary, error) {
		games, err := s.docs.Games(ctx)
		if err != nil {
			return nil, err
		}
		sessions, err := s.docs.Sessions(ctx)
		if err != nil {
			return nil, err
		}

		ids := make([]string, 0, len(games))
		for id, g := range games {
			if g != nil && g.Owner == email {
				ids = append(ids, id)
			}
		}
		model.SortIDs(ids)

		out := make([]model.GameSummary, 0, len(ids))
		for _, id := range ids {
			summary := model.GameSummary{ID: model.ParseID(id), Game: games[id]}

			active := sessions.ActiveFor(id)
			switch len(active) {
			case 0:
			case 1:
				v := model.ParseID(active[0])
				summary.Active = &v
			default:
				s.log.Error().Str("game", id).Strs("sessions", active).Msg("game has more than one active session")
			}

			for _, sid := range sessions.InactiveFor(id) {
				summary.OldSessions = append(summary.OldSessions, model.ParseID(sid))
			}
			out = append(out, summary)
		}
		return out, nil
	})
}

// ReplaceGames replaces every game owned by email with the given list.
// Games owned by other admins are kept.
func (s *GameService) ReplaceGames(ctx context.Context, email string, games []*model.Game) error {
	requested := make([]string, len(games))
	for i, g := range games {
		if g == nil || g.Owner == "" {
			return inputErrorf("Game must have owner")
		}
		if g.Owner != email {
			return inputErrorf("Cannot modify games owned by other admins")
		}
		requested[i], _ = g.TakeRequestedID()
		g.StripDerived()
		if g.Questions == nil {
			g.Questions = []model.Question{}
		}
	}

	_, err := lock.With(ctx, s.locker, lock.GameMutate, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.docs.UpdateGames(ctx, func(stored model.Games) error {
			next := model.Games{}
			for id, g := range stored {
				if g != nil && g.Owner != email {
					next[id] = g
				}
			}

			for i, g := range games {
				id := requested[i]
				if prev, exists := stored[id]; exists && prev != nil && prev.Owner != email {
					id = ""
				}
				if _, taken := next[id]; taken {
					id = ""
				}
				if id == "" {
					var err error
					id, err = s.ids.Generate(func(id string) bool {
						_, inStored := stored[id]
						_, inNext := next[id]
						return inStored || inNext
					}, s.bounds.Game)
					if err != nil {
						return err
					}
				}
				next[id] = g
			}

			for id := range stored {
				delete(stored, id)
			}
			for id, g := range next {
				stored[id] = g
			}
			return nil
		})
	})
	if err != nil && !IsInputError(err) {
		return fmt.Errorf("failed to update games: %w", err)
	}
	return err
}
