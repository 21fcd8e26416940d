package main

import (
	"bigbrain/config"
	"bigbrain/internal/app"
	engineconfig "bigbrain/internal/config"
	"bigbrain/internal/model"
	"bigbrain/internal/service"
	"context"
	"encoding/json"
	"flag"
	"time"
)

const demoGame = `{
	"name": "Capital Cities",
	"thumbnail": "",
	"questions": [
		{
			"text": "What is the capital of France?",
			"type": "single",
			"duration": 20,
			"points": 10,
			"answers": [{"text": "Paris", "correct": true}, {"text": "Lyon"}, {"text": "Marseille"}],
			"correctAnswers": ["Paris"]
		},
		{
			"text": "Which of these are capitals?",
			"type": "multiple",
			"duration": 30,
			"points": 20,
			"answers": [{"text": "Canberra", "correct": true}, {"text": "Sydney"}, {"text": "Ottawa", "correct": true}],
			"correctAnswers": ["Canberra", "Ottawa"]
		},
		{
			"text": "Rome is the capital of Italy.",
			"type": "boolean",
			"duration": 10,
			"points": 5,
			"answers": [{"text": "True", "correct": true}, {"text": "False"}],
			"correctAnswers": ["True"]
		}
	]
}`

func main() {
	email := flag.String("email", "demo@bigbrain.dev", "demo admin email")
	password := flag.String("password", "demo", "demo admin password")
	reset := flag.Bool("reset", false, "empty every document before seeding")
	flag.Parse()

	cfg := config.Load()
	logger := app.NewLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backend, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	a, err := app.New(ctx, cfg, engineconfig.DefaultEngineConfig(), backend, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to wire services")
	}
	defer a.Close()

	if *reset {
		if err := a.Docs.Reset(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to reset store")
		}
		logger.Info().Msg("store reset")
	}

	if _, err := a.Auth.Register(ctx, *email, *password, "Demo Admin"); err != nil {
		if !service.IsInputError(err) {
			logger.Fatal().Err(err).Msg("failed to register demo admin")
		}
		if _, err := a.Auth.Login(ctx, *email, *password); err != nil {
			logger.Fatal().Err(err).Msg("demo admin exists with a different password")
		}
	}

	existing, err := a.Games.ListGames(ctx, *email)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to list games")
	}

	var game model.Game
	if err := json.Unmarshal([]byte(demoGame), &game); err != nil {
		logger.Fatal().Err(err).Msg("invalid demo game")
	}
	game.Owner = *email

	games := make([]*model.Game, 0, len(existing)+1)
	for _, g := range existing {
		if string(g.Game.Extra["name"]) == `"Capital Cities"` {
			logger.Info().Int64("game", g.ID).Msg("demo game already present")
			return
		}
		kept := *g.Game
		kept.Extra = cloneWithID(kept.Extra, g.ID)
		games = append(games, &kept)
	}
	games = append(games, &game)

	if err := a.Games.ReplaceGames(ctx, *email, games); err != nil {
		logger.Fatal().Err(err).Msg("failed to store demo game")
	}
	logger.Info().Str("admin", *email).Msg("demo game seeded")
}

// cloneWithID keeps an existing game's id when the list is written back
func cloneWithID(extra map[string]json.RawMessage, id int64) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(extra)+1)
	for k, v := range extra {
		out[k] = v
	}
	b, _ := json.Marshal(id)
	out["id"] = b
	return out
}
