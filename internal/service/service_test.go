package service

import (
	"bigbrain/internal/clock"
	"bigbrain/internal/config"
	"bigbrain/internal/idgen"
	"bigbrain/internal/lock"
	"bigbrain/internal/model"
	"bigbrain/internal/store"
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	store    store.Store
	docs     *store.Documents
	clock    *clock.Fake
	auth     *AuthService
	games    *GameService
	sessions *SessionService
	players  *PlayerService
	events   *recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := store.NewMemoryStore()
	docs := store.NewDocuments(st, 3)
	locker := lock.New(0)
	ids := idgen.New()
	clk := clock.NewFake(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	cfg := config.DefaultEngineConfig()
	log := zerolog.Nop()

	rec := &recorder{}
	notifier := NewNotifier(log)
	notifier.SetBroadcaster(rec)

	auth := NewAuthService(docs, locker, clk, "test-secret")
	auth.hashCost = bcrypt.MinCost
	games := NewGameService(docs, locker, ids, cfg.IDBounds, log)
	sessions := NewSessionService(docs, locker, ids, clk, cfg, games, notifier, log)
	players := NewPlayerService(docs, locker, ids, clk, cfg.IDBounds, notifier)
	t.Cleanup(sessions.Close)

	return &testEnv{
		store:    st,
		docs:     docs,
		clock:    clk,
		auth:     auth,
		games:    games,
		sessions: sessions,
		players:  players,
		events:   rec,
	}
}

// seedGame stores a game owned by owner under id
func (e *testEnv) seedGame(t *testing.T, id, owner string, questions ...model.Question) {
	t.Helper()
	err := e.docs.UpdateGames(context.Background(), func(g model.Games) error {
		g[id] = &model.Game{Owner: owner, Questions: questions}
		return nil
	})
	require.NoError(t, err)
}

func (e *testEnv) session(t *testing.T, id string) *model.Session {
	t.Helper()
	sessions, err := e.docs.Sessions(context.Background())
	require.NoError(t, err)
	s, ok := sessions[id]
	require.True(t, ok, "session %s not stored", id)
	return s
}

func question(duration string, correct ...any) model.Question {
	q := model.Question{
		Text:           "Pick one",
		Type:           model.QuestionSingle,
		Points:         json.RawMessage(`10`),
		Answers:        []model.AnswerOption{{Text: "A", Correct: true}, {Text: "B"}},
		CorrectAnswers: correct,
	}
	if duration != "" {
		q.Duration = json.RawMessage(duration)
	}
	return q
}

type recordedEvent struct {
	target    string
	sessionID string
	msgType   string
}

type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recorder) add(target, sessionID, msgType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{target: target, sessionID: sessionID, msgType: msgType})
}

func (r *recorder) BroadcastToAdmin(sessionID string, msgType string, payload interface{}) {
	r.add("admin", sessionID, msgType)
}

func (r *recorder) BroadcastToPlayer(sessionID, playerID string, msgType string, payload interface{}) {
	r.add("player:"+playerID, sessionID, msgType)
}

func (r *recorder) BroadcastToAllPlayers(sessionID string, msgType string, payload interface{}) {
	r.add("players", sessionID, msgType)
}

func (r *recorder) DisconnectSession(sessionID string) {
	r.add("disconnect", sessionID, "")
}

// adminTypes returns the message types sent to the admin of a session
func (r *recorder) adminTypes(sessionID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if e.target == "admin" && e.sessionID == sessionID {
			out = append(out, e.msgType)
		}
	}
	return out
}
