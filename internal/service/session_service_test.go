package service

import (
	"bigbrain/internal/lock"
	"bigbrain/internal/model"
	"bigbrain/internal/store"
	"context"
	"encoding/json"
	"math"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleQuestionScenario(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedGame(t, "1", "me@b.com", question("5", "A"))

	sid, err := env.sessions.StartGame(ctx, "1")
	require.NoError(t, err)

	pid, err := env.players.Join(ctx, sid, "Alice")
	require.NoError(t, err)
	player := strconv.FormatInt(pid, 10)

	pos, err := env.sessions.AdvanceGame(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 0, pos)
	assert.Equal(t, 1, env.sessions.PendingReveals())

	require.NoError(t, env.players.SubmitAnswers(ctx, player, []any{"A"}))
	s := env.session(t, sid)
	assert.True(t, s.Players[player].Answers[0].Correct)
	assert.False(t, s.AnswerAvailable)

	_, err = env.players.Answers(ctx, player)
	assert.True(t, IsInputError(err))

	env.clock.Advance(5 * time.Second)
	assert.True(t, env.session(t, sid).AnswerAvailable)
	assert.Equal(t, 0, env.sessions.PendingReveals())

	answers, err := env.players.Answers(ctx, player)
	require.NoError(t, err)
	assert.Equal(t, []any{"A"}, answers)

	pos, err = env.sessions.AdvanceGame(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
	assert.False(t, env.session(t, sid).Active)

	results, err := env.players.SessionResults(ctx, sid)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Alice", results[0].Name)
	require.Len(t, results[0].Answers, 1)
	assert.Equal(t, []any{"A"}, results[0].Answers[0].Answers)
	assert.True(t, results[0].Answers[0].Correct)

	assert.Equal(t, []string{
		string(model.EventSessionStarted),
		string(model.EventPlayerJoined),
		string(model.EventQuestionStarted),
		string(model.EventAnswerAvailable),
		string(model.EventSessionEnded),
	}, env.events.adminTypes(sid))
}

func TestStartTwiceFails(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedGame(t, "1", "me@b.com", question("5", "A"))

	_, err := env.sessions.StartGame(ctx, "1")
	require.NoError(t, err)

	_, err = env.sessions.StartGame(ctx, "1")
	require.True(t, IsInputError(err))
	assert.Equal(t, "Game already has active session", err.Error())

	_, err = env.sessions.StartGame(ctx, "404")
	assert.True(t, IsInputError(err))
}

func TestConcurrentStartsKeepOneActiveSession(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedGame(t, "1", "me@b.com", question("5", "A"))

	var wg sync.WaitGroup
	var mu sync.Mutex
	started := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.sessions.StartGame(ctx, "1"); err == nil {
				mu.Lock()
				started++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, started)
	sessions, err := env.docs.Sessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions.ActiveFor("1"), 1)
}

func TestAdvanceOnLastQuestionEndsWithoutTimer(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedGame(t, "1", "me@b.com", question("5", "A"), question("5", "B"))

	sid, err := env.sessions.StartGame(ctx, "1")
	require.NoError(t, err)
	_, err = env.sessions.AdvanceGame(ctx, "1")
	require.NoError(t, err)
	_, err = env.sessions.AdvanceGame(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 1, env.sessions.PendingReveals(), "advancing replaces the pending reveal")

	pos, err := env.sessions.AdvanceGame(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 2, pos)
	assert.Equal(t, 0, env.sessions.PendingReveals())
	assert.Equal(t, 0, env.clock.Pending())

	s := env.session(t, sid)
	assert.False(t, s.Active)
	assert.Equal(t, 2, s.Position)

	_, err = env.sessions.AdvanceGame(ctx, "1")
	assert.True(t, IsInputError(err))
}

func TestEndGame(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedGame(t, "1", "me@b.com", question("5", "A"))

	err := env.sessions.EndGame(ctx, "1")
	require.True(t, IsInputError(err))
	assert.Equal(t, "Game has no active session", err.Error())

	sid, err := env.sessions.StartGame(ctx, "1")
	require.NoError(t, err)
	_, err = env.sessions.AdvanceGame(ctx, "1")
	require.NoError(t, err)

	require.NoError(t, env.sessions.EndGame(ctx, "1"))
	assert.False(t, env.session(t, sid).Active)
	assert.Equal(t, 0, env.sessions.PendingReveals())

	// a reveal must not fire for an ended session
	env.clock.Advance(time.Minute)
	assert.False(t, env.session(t, sid).AnswerAvailable)

	assert.True(t, IsInputError(env.sessions.EndGame(ctx, "1")))
}

func TestMissingDurationKeepsPosition(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedGame(t, "1", "me@b.com", question("", "A"))

	sid, err := env.sessions.StartGame(ctx, "1")
	require.NoError(t, err)

	_, err = env.sessions.AdvanceGame(ctx, "1")
	require.True(t, IsInputError(err))
	assert.Equal(t, "Question duration not found", err.Error())

	s := env.session(t, sid)
	assert.Equal(t, 0, s.Position)
	assert.True(t, s.Active)
	assert.Equal(t, 0, env.sessions.PendingReveals())
}

func TestQuestionDelaySaturates(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, questionDelay(1.5))
	assert.Equal(t, time.Duration(0), questionDelay(0))
	assert.Equal(t, time.Duration(math.MaxInt64), questionDelay(1e10))
	assert.Equal(t, time.Duration(math.MaxInt64), questionDelay(math.MaxFloat64))
}

func TestHugeDurationDoesNotRevealEarly(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedGame(t, "1", "me@b.com", question("10000000000", "A"))

	sid, err := env.sessions.StartGame(ctx, "1")
	require.NoError(t, err)
	_, err = env.sessions.AdvanceGame(ctx, "1")
	require.NoError(t, err)

	env.clock.Advance(time.Millisecond)
	assert.False(t, env.session(t, sid).AnswerAvailable)
	assert.Equal(t, 1, env.sessions.PendingReveals())
}

func TestFailedRevealIsRetried(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.sessions.cfg.RevealTimeout = 10 * time.Millisecond
	env.seedGame(t, "1", "me@b.com", question("5", "A"))

	sid, err := env.sessions.StartGame(ctx, "1")
	require.NoError(t, err)
	_, err = env.sessions.AdvanceGame(ctx, "1")
	require.NoError(t, err)

	// the timer fires while someone else holds the session section
	release, err := env.sessions.locker.Acquire(ctx, lock.SessionMutate)
	require.NoError(t, err)
	env.clock.Advance(5 * time.Second)
	release()

	assert.False(t, env.session(t, sid).AnswerAvailable)
	assert.Equal(t, 1, env.sessions.PendingReveals())

	env.clock.Advance(env.sessions.cfg.RevealRetryDelay)
	assert.True(t, env.session(t, sid).AnswerAvailable)
	assert.Equal(t, 0, env.sessions.PendingReveals())
	assert.Equal(t, []string{"session_started", "question_started", "answer_available"}, env.events.adminTypes(sid))
}

func TestRevealGivesUpAfterRetries(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.sessions.cfg.RevealTimeout = 10 * time.Millisecond
	env.seedGame(t, "1", "me@b.com", question("5", "A"))

	sid, err := env.sessions.StartGame(ctx, "1")
	require.NoError(t, err)
	_, err = env.sessions.AdvanceGame(ctx, "1")
	require.NoError(t, err)

	release, err := env.sessions.locker.Acquire(ctx, lock.SessionMutate)
	require.NoError(t, err)
	env.clock.Advance(5 * time.Second)
	for i := 0; i < env.sessions.cfg.RevealRetries; i++ {
		require.Equal(t, 1, env.sessions.PendingReveals())
		env.clock.Advance(env.sessions.cfg.RevealRetryDelay)
	}
	release()

	assert.Equal(t, 0, env.sessions.PendingReveals())
	assert.False(t, env.session(t, sid).AnswerAvailable)
}

func TestStaleRevealIsDropped(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedGame(t, "1", "me@b.com", question("5", "A"), question("5", "B"))

	sid, err := env.sessions.StartGame(ctx, "1")
	require.NoError(t, err)
	_, err = env.sessions.AdvanceGame(ctx, "1")
	require.NoError(t, err)

	// Another writer moves the session on behind the engine's back
	require.NoError(t, env.docs.UpdateSessions(ctx, func(s model.Sessions) error {
		s[sid].Position = 1
		return nil
	}))

	env.clock.Advance(5 * time.Second)
	s := env.session(t, sid)
	assert.False(t, s.AnswerAvailable)
	assert.Equal(t, 1, s.Position)
	assert.Equal(t, 0, env.sessions.PendingReveals())
}

func TestSupersededTimerCallbackIsIgnored(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedGame(t, "1", "me@b.com", question("5", "A"), question("5", "B"))

	sid, err := env.sessions.StartGame(ctx, "1")
	require.NoError(t, err)
	_, err = env.sessions.AdvanceGame(ctx, "1")
	require.NoError(t, err)

	env.sessions.timerMu.Lock()
	old := env.sessions.timers[sid]
	env.sessions.timerMu.Unlock()
	require.NotNil(t, old)

	_, err = env.sessions.AdvanceGame(ctx, "1")
	require.NoError(t, err)

	// a callback that lost the race with Stop still runs; it must change nothing
	env.sessions.reveal(sid, old)
	assert.False(t, env.session(t, sid).AnswerAvailable)
	assert.Equal(t, 1, env.sessions.PendingReveals())

	env.clock.Advance(5 * time.Second)
	assert.True(t, env.session(t, sid).AnswerAvailable)
}

func TestMutateGame(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedGame(t, "1", "me@b.com", question("5", "A"))

	res, err := env.sessions.MutateGame(ctx, "1", "start")
	require.NoError(t, err)
	assert.Equal(t, "started", res.Status)
	require.NotNil(t, res.SessionID)

	res, err = env.sessions.MutateGame(ctx, "1", "Advance")
	require.NoError(t, err)
	assert.Equal(t, "advanced", res.Status)
	require.NotNil(t, res.Position)
	assert.Equal(t, 0, *res.Position)

	res, err = env.sessions.MutateGame(ctx, "1", "END")
	require.NoError(t, err)
	assert.Equal(t, "ended", res.Status)

	_, err = env.sessions.MutateGame(ctx, "1", "PAUSE")
	require.True(t, IsInputError(err))
	assert.Equal(t, "Invalid mutation type", err.Error())

	_, err = env.sessions.MutateGame(ctx, "1", "END")
	assert.True(t, IsInputError(err))
}

func TestMutateGameWrapsStoreFailures(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	_, err := env.store.Save(ctx, store.KeyGames, []byte("{broken"), 0)
	require.NoError(t, err)

	_, err = env.sessions.MutateGame(ctx, "1", "START")
	require.Error(t, err)
	assert.False(t, IsInputError(err))
	assert.Contains(t, err.Error(), "failed to mutate game")
}

func TestAssertOwnsSession(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedGame(t, "1", "me@b.com", question("5", "A"))
	sid, err := env.sessions.StartGame(ctx, "1")
	require.NoError(t, err)

	assert.NoError(t, env.sessions.AssertOwnsSession(ctx, "me@b.com", sid))
	assert.True(t, IsInputError(env.sessions.AssertOwnsSession(ctx, "you@b.com", sid)))
	assert.True(t, IsInputError(env.sessions.AssertOwnsSession(ctx, "me@b.com", "1")))
}

func TestResumeRearmsReveals(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	started := env.clock.Now().Add(-3 * time.Second)
	overdue := env.clock.Now().Add(-time.Hour)

	q := question("5", "A")
	require.NoError(t, env.docs.UpdateSessions(ctx, func(s model.Sessions) error {
		running := model.NewSession("1", []model.Question{q})
		running.Position = 0
		running.IsoTimeLastQuestionStarted = &started
		s["111111"] = running

		late := model.NewSession("2", []model.Question{q})
		late.Position = 0
		late.IsoTimeLastQuestionStarted = &overdue
		s["222222"] = late

		lobby := model.NewSession("3", []model.Question{q})
		s["333333"] = lobby

		noDuration := model.NewSession("4", []model.Question{{Text: "?"}})
		noDuration.Position = 0
		s["444444"] = noDuration
		return nil
	}))

	armed, err := env.sessions.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, armed)

	env.clock.Advance(0)
	assert.True(t, env.session(t, "222222").AnswerAvailable)
	assert.False(t, env.session(t, "111111").AnswerAvailable)

	env.clock.Advance(2 * time.Second)
	assert.True(t, env.session(t, "111111").AnswerAvailable)
	assert.False(t, env.session(t, "333333").AnswerAvailable)
}

func TestCloseStopsTimers(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedGame(t, "1", "me@b.com", question("5", "A"))
	sid, err := env.sessions.StartGame(ctx, "1")
	require.NoError(t, err)
	_, err = env.sessions.AdvanceGame(ctx, "1")
	require.NoError(t, err)

	env.sessions.Close()
	env.clock.Advance(time.Minute)
	assert.False(t, env.session(t, sid).AnswerAvailable)
}

func TestLeaderboard(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	q1 := question("5", "A")
	q2 := question("5", "B")
	q2.Points = json.RawMessage(`"20"`)
	env.seedGame(t, "1", "me@b.com", q1, q2)

	sid, err := env.sessions.StartGame(ctx, "1")
	require.NoError(t, err)
	alice, err := env.players.Join(ctx, sid, "Alice")
	require.NoError(t, err)
	bob, err := env.players.Join(ctx, sid, "Bob")
	require.NoError(t, err)

	_, err = env.sessions.AdvanceGame(ctx, "1")
	require.NoError(t, err)
	require.NoError(t, env.players.SubmitAnswers(ctx, strconv.FormatInt(alice, 10), []any{"A"}))
	require.NoError(t, env.players.SubmitAnswers(ctx, strconv.FormatInt(bob, 10), []any{"B"}))
	env.clock.Advance(5 * time.Second)

	_, err = env.sessions.AdvanceGame(ctx, "1")
	require.NoError(t, err)
	require.NoError(t, env.players.SubmitAnswers(ctx, strconv.FormatInt(bob, 10), []any{"B"}))

	lb, err := env.sessions.Leaderboard(ctx, sid)
	require.NoError(t, err)
	require.Len(t, lb, 2)
	assert.Equal(t, "Bob", lb[0].Name)
	assert.Equal(t, float64(20), lb[0].Score)
	assert.Equal(t, "Alice", lb[1].Name)
	assert.Equal(t, float64(10), lb[1].Score)

	_, err = env.sessions.Leaderboard(ctx, "1")
	assert.True(t, IsInputError(err))
}

type memoryLeaderboards struct {
	mu      sync.Mutex
	entries map[string][]model.LeaderboardEntry
	gets    int
}

func (m *memoryLeaderboards) Put(ctx context.Context, sessionID string, entries []model.LeaderboardEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = make(map[string][]model.LeaderboardEntry)
	}
	m.entries[sessionID] = entries
	return nil
}

func (m *memoryLeaderboards) Get(ctx context.Context, sessionID string) ([]model.LeaderboardEntry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	e, ok := m.entries[sessionID]
	return e, ok, nil
}

func TestLeaderboardCachedOnceEnded(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	cache := &memoryLeaderboards{}
	env.sessions.SetLeaderboardCache(cache)
	env.seedGame(t, "1", "me@b.com", question("5", "A"))

	sid, err := env.sessions.StartGame(ctx, "1")
	require.NoError(t, err)
	_, err = env.players.Join(ctx, sid, "Alice")
	require.NoError(t, err)

	_, err = env.sessions.Leaderboard(ctx, sid)
	require.NoError(t, err)
	assert.Empty(t, cache.entries, "live standings are not cached")

	require.NoError(t, env.sessions.EndGame(ctx, "1"))
	lb, err := env.sessions.Leaderboard(ctx, sid)
	require.NoError(t, err)
	require.Len(t, lb, 1)
	assert.Equal(t, lb, cache.entries[sid])

	again, err := env.sessions.Leaderboard(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, lb, again)
	assert.Equal(t, 3, cache.gets)
}
