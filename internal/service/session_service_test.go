package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"spot_difference/internal/catalog"
	"spot_difference/internal/domain"
	"spot_difference/internal/game"
	"spot_difference/internal/leaderboard"
	"spot_difference/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// собирает события сессий вместо websocket-хаба
type recordingNotifier struct {
	mu     sync.Mutex
	events []game.Event
}

func (n *recordingNotifier) Publish(_ string, ev game.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) count(t game.EventType) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	c := 0
	for _, ev := range n.events {
		if ev.Type == t {
			c++
		}
	}
	return c
}

type testEnv struct {
	svc      *SessionService
	board    *leaderboard.Leaderboard
	notifier *recordingNotifier
	metrics  *metrics.Metrics
}

func newTestEnv(t *testing.T, store catalog.Store, cfg SessionConfig) *testEnv {
	t.Helper()
	if store == nil {
		store = catalog.NewFixtureStore()
	}
	if cfg.TickInterval == 0 {
		// тики не мешают тестам, если их не ждут явно
		cfg.TickInterval = time.Hour
	}

	board := leaderboard.New(leaderboard.NewMemoryStore(), leaderboard.DefaultSize)
	m := metrics.New(prometheus.NewRegistry())
	svc := NewSessionService(store, board, NewAuditService(nil), m, cfg)
	n := &recordingNotifier{}
	svc.SetNotifier(n)
	t.Cleanup(svc.Close)

	return &testEnv{svc: svc, board: board, notifier: n, metrics: m}
}

// клик по отличию на картинке 1000x500
func clickOn(d domain.Difference) game.Click {
	return game.Click{X: d.X * 1000, Y: d.Y * 500, Width: 1000, Height: 500}
}

func easyDifferences(t *testing.T) []domain.Difference {
	t.Helper()
	c, err := catalog.NewFixtureStore().Get(context.Background(), domain.DifficultyEasy)
	require.NoError(t, err)
	return c.Differences
}

func TestSessionService_EasyRoundEndToEnd(t *testing.T) {
	env := newTestEnv(t, nil, SessionConfig{})
	ctx := context.Background()

	snap, err := env.svc.Start(ctx, "p1", domain.DifficultyEasy)
	require.NoError(t, err)
	assert.Equal(t, game.StatePlaying, snap.State)
	assert.Equal(t, 3, snap.Total)
	assert.Equal(t, 60, snap.Remaining)

	diffs := easyDifferences(t)
	for i, d := range diffs {
		out, snap, err := env.svc.Click(ctx, "p1", clickOn(d))
		require.NoError(t, err)
		assert.Equal(t, game.OutcomeHit, out.Kind)
		assert.Equal(t, i, out.Index)
		assert.Equal(t, i+1, snap.Score)
	}

	snap, err = env.svc.Snapshot("p1")
	require.NoError(t, err)
	assert.Equal(t, game.StateFinished, snap.State)
	assert.Equal(t, game.FinishCompleted, snap.FinishReason)
	assert.Equal(t, 3, snap.Score)

	entry, err := env.svc.SubmitScore(ctx, "p1", nil, "")
	require.NoError(t, err)
	assert.Equal(t, 3, entry.Score)

	top, err := env.board.Top(ctx, 10, "")
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "p1", top[0].Username)
	assert.Equal(t, 3, top[0].Score)
	assert.Equal(t, domain.DifficultyEasy, top[0].Difficulty)

	assert.Equal(t, 1, env.notifier.count(game.EventStarted))
	assert.Equal(t, 3, env.notifier.count(game.EventHit))
	assert.Equal(t, 1, env.notifier.count(game.EventFinished))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.SessionsFinished.WithLabelValues("easy", "completed")))
}

func TestSessionService_TimeoutFinishesOnce(t *testing.T) {
	env := newTestEnv(t, nil, SessionConfig{RoundSeconds: 3, TickInterval: 5 * time.Millisecond})

	_, err := env.svc.Start(context.Background(), "p1", domain.DifficultyEasy)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		snap, err := env.svc.Snapshot("p1")
		return err == nil && snap.State == game.StateFinished
	}, 2*time.Second, 5*time.Millisecond)

	snap, err := env.svc.Snapshot("p1")
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Remaining)
	assert.Equal(t, game.FinishTimeout, snap.FinishReason)

	// таймер остановлен, повторного finished нет
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, env.notifier.count(game.EventFinished))
	assert.Equal(t, 2, env.notifier.count(game.EventTick))
	assert.Equal(t, 0, env.svc.ActiveCount())
}

func TestSessionService_ClickAfterTimeoutIsRejected(t *testing.T) {
	env := newTestEnv(t, nil, SessionConfig{RoundSeconds: 1, TickInterval: time.Millisecond})
	ctx := context.Background()

	_, err := env.svc.Start(ctx, "p1", domain.DifficultyEasy)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		snap, _ := env.svc.Snapshot("p1")
		return snap.State == game.StateFinished
	}, 2*time.Second, time.Millisecond)

	_, _, err = env.svc.Click(ctx, "p1", clickOn(easyDifferences(t)[0]))
	assert.ErrorIs(t, err, game.ErrInvalidTransition)

	snap, err := env.svc.Snapshot("p1")
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Score)
}

func TestSessionService_CatalogNotFoundLeavesSessionUnchanged(t *testing.T) {
	store := catalog.NewMemoryStore(catalog.Fixtures()[0])
	env := newTestEnv(t, store, SessionConfig{})
	ctx := context.Background()

	_, err := env.svc.Start(ctx, "p1", domain.DifficultyHard)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	_, err = env.svc.Snapshot("p1")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = env.svc.Start(ctx, "p1", domain.DifficultyEasy)
	require.NoError(t, err)
	_, _, err = env.svc.Click(ctx, "p1", clickOn(easyDifferences(t)[0]))
	require.NoError(t, err)

	before, err := env.svc.Snapshot("p1")
	require.NoError(t, err)

	_, err = env.svc.Start(ctx, "p1", domain.DifficultyHard)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	after, err := env.svc.Snapshot("p1")
	require.NoError(t, err)
	assert.Equal(t, before.Round, after.Round)
	assert.Equal(t, before.Score, after.Score)
	assert.Equal(t, game.StatePlaying, after.State)
}

func TestSessionService_StartWhilePlayingIsRejected(t *testing.T) {
	env := newTestEnv(t, nil, SessionConfig{})
	ctx := context.Background()

	_, err := env.svc.Start(ctx, "p1", domain.DifficultyEasy)
	require.NoError(t, err)

	_, err = env.svc.Start(ctx, "p1", domain.DifficultyMedium)
	assert.ErrorIs(t, err, game.ErrInvalidTransition)

	snap, err := env.svc.Snapshot("p1")
	require.NoError(t, err)
	assert.Equal(t, domain.DifficultyEasy, snap.Difficulty)
}

func TestSessionService_RestartAfterFinish(t *testing.T) {
	env := newTestEnv(t, nil, SessionConfig{})
	ctx := context.Background()

	first, err := env.svc.Start(ctx, "p1", domain.DifficultyEasy)
	require.NoError(t, err)
	for _, d := range easyDifferences(t) {
		_, _, err := env.svc.Click(ctx, "p1", clickOn(d))
		require.NoError(t, err)
	}

	second, err := env.svc.Start(ctx, "p1", domain.DifficultyMedium)
	require.NoError(t, err)
	assert.Greater(t, second.Round, first.Round)
	assert.Equal(t, 0, second.Score)
	assert.Equal(t, 4, second.Total)
	assert.Empty(t, second.Found)
	assert.Equal(t, first.ID, second.ID)
}

func TestSessionService_SubmitScore(t *testing.T) {
	env := newTestEnv(t, nil, SessionConfig{})
	ctx := context.Background()

	_, err := env.svc.SubmitScore(ctx, "nobody", nil, "")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = env.svc.Start(ctx, "p1", domain.DifficultyEasy)
	require.NoError(t, err)

	_, err = env.svc.SubmitScore(ctx, "p1", nil, "")
	assert.ErrorIs(t, err, game.ErrInvalidTransition)

	for _, d := range easyDifferences(t) {
		_, _, err := env.svc.Click(ctx, "p1", clickOn(d))
		require.NoError(t, err)
	}

	wrong := 100
	_, err = env.svc.SubmitScore(ctx, "p1", &wrong, "")
	assert.ErrorIs(t, err, ErrScoreMismatch)

	right := 3
	_, err = env.svc.SubmitScore(ctx, "p1", &right, domain.DifficultyHard)
	assert.ErrorIs(t, err, ErrScoreMismatch)

	_, err = env.svc.SubmitScore(ctx, "p1", &right, domain.DifficultyEasy)
	require.NoError(t, err)
	// повторная отправка допустима
	_, err = env.svc.SubmitScore(ctx, "p1", nil, "")
	require.NoError(t, err)

	top, err := env.board.Top(ctx, 10, "")
	require.NoError(t, err)
	assert.Len(t, top, 2)

	snap, err := env.svc.Snapshot("p1")
	require.NoError(t, err)
	assert.Equal(t, game.StateFinished, snap.State)
}

func TestSessionService_ClickErrors(t *testing.T) {
	env := newTestEnv(t, nil, SessionConfig{})
	ctx := context.Background()

	_, _, err := env.svc.Click(ctx, "p1", clickOn(easyDifferences(t)[0]))
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = env.svc.Start(ctx, "p1", domain.DifficultyEasy)
	require.NoError(t, err)

	_, _, err = env.svc.Click(ctx, "p1", game.Click{X: 10, Y: 10, Width: 0, Height: 500})
	assert.ErrorIs(t, err, game.ErrInvalidClick)

	out, snap, err := env.svc.Click(ctx, "p1", game.Click{X: 330, Y: 330, Width: 1000, Height: 1000})
	require.NoError(t, err)
	assert.Equal(t, game.OutcomeMiss, out.Kind)
	assert.Equal(t, 0, snap.Score)
}

func TestSessionService_Leave(t *testing.T) {
	env := newTestEnv(t, nil, SessionConfig{})
	ctx := context.Background()

	_, err := env.svc.Start(ctx, "p1", domain.DifficultyEasy)
	require.NoError(t, err)
	assert.Equal(t, 1, env.svc.ActiveCount())

	assert.True(t, env.svc.Leave("p1"))
	assert.False(t, env.svc.Leave("p1"))
	assert.Equal(t, 0, env.svc.ActiveCount())

	_, err = env.svc.Snapshot("p1")
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Equal(t, 0.0, testutil.ToFloat64(env.metrics.ActiveSessions))
}

func TestSessionService_CleanupExpired(t *testing.T) {
	env := newTestEnv(t, nil, SessionConfig{SessionTTL: time.Minute})
	ctx := context.Background()

	_, err := env.svc.Start(ctx, "p1", domain.DifficultyEasy)
	require.NoError(t, err)
	_, err = env.svc.Start(ctx, "p2", domain.DifficultyHard)
	require.NoError(t, err)

	assert.Equal(t, 0, env.svc.CleanupExpired(time.Now()))
	assert.Equal(t, 2, env.svc.CleanupExpired(time.Now().Add(2*time.Minute)))

	_, err = env.svc.Snapshot("p1")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionService_PlayersAreIsolated(t *testing.T) {
	env := newTestEnv(t, nil, SessionConfig{})
	ctx := context.Background()

	_, err := env.svc.Start(ctx, "p1", domain.DifficultyEasy)
	require.NoError(t, err)
	_, err = env.svc.Start(ctx, "p2", domain.DifficultyEasy)
	require.NoError(t, err)

	_, _, err = env.svc.Click(ctx, "p1", clickOn(easyDifferences(t)[0]))
	require.NoError(t, err)

	p2, err := env.svc.Snapshot("p2")
	require.NoError(t, err)
	assert.Equal(t, 0, p2.Score)
	assert.Equal(t, 2, env.svc.ActiveCount())
}

func TestSessionService_FinishUsesRoundThatEnded(t *testing.T) {
	env := newTestEnv(t, nil, SessionConfig{})
	ctx := context.Background()

	first, err := env.svc.Start(ctx, "p1", domain.DifficultyEasy)
	require.NoError(t, err)
	sess, err := env.svc.get("p1")
	require.NoError(t, err)

	// раунд завершается, но побочные эффекты ещё не выполнены
	for _, d := range easyDifferences(t) {
		_, _, err := sess.Click(clickOn(d))
		require.NoError(t, err)
	}

	// игрок успевает начать новый раунд
	second, err := env.svc.Start(ctx, "p1", domain.DifficultyMedium)
	require.NoError(t, err)
	require.Greater(t, second.Round, first.Round)

	env.svc.finished(sess, first.Round)

	env.notifier.mu.Lock()
	var finished []game.Event
	for _, ev := range env.notifier.events {
		if ev.Type == game.EventFinished {
			finished = append(finished, ev)
		}
	}
	env.notifier.mu.Unlock()

	require.Len(t, finished, 1)
	snap := finished[0].Snapshot
	assert.Equal(t, first.Round, snap.Round)
	assert.Equal(t, game.StateFinished, snap.State)
	assert.Equal(t, domain.DifficultyEasy, snap.Difficulty)
	assert.Equal(t, 3, snap.Score)
	assert.Equal(t, game.FinishCompleted, snap.FinishReason)

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.SessionsFinished.WithLabelValues("easy", "completed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(env.metrics.SessionsFinished.WithLabelValues("medium", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.ActiveSessions))

	current, err := env.svc.Snapshot("p1")
	require.NoError(t, err)
	assert.Equal(t, game.StatePlaying, current.State)
	assert.Equal(t, second.Round, current.Round)
}
