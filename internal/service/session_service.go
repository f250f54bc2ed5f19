package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"spot_difference/internal/catalog"
	"spot_difference/internal/domain"
	"spot_difference/internal/game"
	"spot_difference/internal/leaderboard"
	"spot_difference/internal/logger"
	"spot_difference/internal/metrics"

	"github.com/google/uuid"
)

var (
	ErrNoSession     = errors.New("нет игровой сессии")
	ErrScoreMismatch = errors.New("счёт не совпадает с результатом сессии")
)

const (
	cleanupInterval = 5 * time.Minute
	auditTimeout    = 5 * time.Second
)

// Notifier получает события сессии (websocket-хаб)
type Notifier interface {
	Publish(username string, ev game.Event)
}

// SessionConfig - параметры раундов
type SessionConfig struct {
	RoundSeconds int
	TickInterval time.Duration
	// сессии без активности дольше TTL удаляются
	SessionTTL time.Duration
}

type activeSession struct {
	session *game.Session
	round   int64
	cancel  context.CancelFunc
}

// SessionService держит по одной сессии на игрока и крутит их таймеры
type SessionService struct {
	catalogs catalog.Store
	board    *leaderboard.Leaderboard
	audit    *AuditService
	metrics  *metrics.Metrics
	notifier Notifier
	cfg      SessionConfig

	sessions map[string]*activeSession // username -> сессия
	mu       sync.Mutex
	stop     chan struct{}
	stopOnce sync.Once
}

// NewSessionService создает сервис и запускает очистку брошенных сессий
func NewSessionService(catalogs catalog.Store, board *leaderboard.Leaderboard, audit *AuditService, m *metrics.Metrics, cfg SessionConfig) *SessionService {
	if cfg.RoundSeconds <= 0 {
		cfg.RoundSeconds = game.DefaultRoundSeconds
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = game.DefaultTickInterval
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = time.Hour
	}

	s := &SessionService{
		catalogs: catalogs,
		board:    board,
		audit:    audit,
		metrics:  m,
		cfg:      cfg,
		sessions: make(map[string]*activeSession),
		stop:     make(chan struct{}),
	}

	go s.cleanupLoop()

	return s
}

// SetNotifier подключает получателя событий
func (s *SessionService) SetNotifier(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = n
}

// Catalogs - хранилище наборов, которым пользуется сервис
func (s *SessionService) Catalogs() catalog.Store {
	return s.catalogs
}

// Leaderboard - таблица лидеров, куда уходят результаты
func (s *SessionService) Leaderboard() *leaderboard.Leaderboard {
	return s.board
}

// Start начинает новый раунд игрока. Набор загружается до изменения сессии:
// при ошибке загрузки сессия остаётся как была.
func (s *SessionService) Start(ctx context.Context, username string, difficulty domain.Difficulty) (game.Snapshot, error) {
	c, err := s.catalogs.Get(ctx, difficulty)
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("load catalog %s: %w", difficulty, err)
	}

	s.mu.Lock()
	a, ok := s.sessions[username]
	if !ok {
		a = &activeSession{session: game.NewSession(uuid.New().String(), username, s.cfg.RoundSeconds)}
		s.sessions[username] = a
	}

	round, err := a.session.Start(c)
	if err != nil {
		s.mu.Unlock()
		return game.Snapshot{}, err
	}

	// прошлый таймер уже остановлен при завершении, но отменяем на всякий случай
	if a.cancel != nil {
		a.cancel()
	}
	timerCtx, cancel := context.WithCancel(context.Background())
	a.round = round
	a.cancel = cancel
	sess := a.session
	s.mu.Unlock()

	go game.RunTimer(timerCtx, s.cfg.TickInterval, round, s.tickFunc(sess))

	s.metrics.SessionStarted(string(difficulty))
	s.audit.LogGame(ctx, username, domain.AuditActionGameStart, sess.Details())
	logger.WithContext(ctx).Info("round started", "username", username, "difficulty", difficulty, "round", round)

	snap := sess.Snapshot()
	s.publish(username, game.Event{Type: game.EventStarted, Snapshot: snap})
	return snap, nil
}

func (s *SessionService) tickFunc(sess *game.Session) func(round int64) bool {
	return func(round int64) bool {
		finished, err := sess.Tick(round)
		if err != nil {
			// раунд уже закончился или перезапущен
			return false
		}
		if finished {
			s.finished(sess, round)
			return false
		}
		s.publish(sess.Username, game.Event{Type: game.EventTick, Snapshot: sess.Snapshot()})
		return true
	}
}

// Click применяет клик игрока к текущему раунду
func (s *SessionService) Click(ctx context.Context, username string, click game.Click) (game.Outcome, game.Snapshot, error) {
	sess, err := s.get(username)
	if err != nil {
		return game.Outcome{}, game.Snapshot{}, err
	}

	out, finished, err := sess.Click(click)
	if err != nil {
		return game.Outcome{}, sess.Snapshot(), err
	}
	s.metrics.Click(string(out.Kind))

	snap := sess.Snapshot()
	if out.Kind == game.OutcomeHit {
		logger.WithContext(ctx).Debug("difference found", "username", username, "index", out.Index, "score", snap.Score)
		s.publish(username, game.Event{Type: game.EventHit, Snapshot: snap})
	}
	if finished {
		s.finished(sess, out.Round)
	}
	return out, snap, nil
}

// finished - побочные эффекты завершения; вызывается ровно один раз за раунд,
// потому что Session сообщает о переходе в finished один раз.
// Данные берутся из снимка на момент завершения: игрок мог уже начать новый раунд.
func (s *SessionService) finished(sess *game.Session, round int64) {
	snap, ok := sess.FinalSnapshot(round)

	s.mu.Lock()
	if a, ok := s.sessions[sess.Username]; ok && a.session == sess && a.round == round && a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	s.mu.Unlock()

	if !ok {
		// следующий раунд успел начаться и завершиться; снимок этого раунда перезаписан
		logger.Warn("final snapshot lost", "username", sess.Username, "round", round)
		s.metrics.SessionAbandoned()
		return
	}

	var played time.Duration
	if snap.StartedAt != nil && snap.FinishedAt != nil {
		played = snap.FinishedAt.Sub(*snap.StartedAt)
	}
	s.metrics.SessionFinished(string(snap.Difficulty), string(snap.FinishReason), played)

	ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
	defer cancel()
	s.audit.LogGame(ctx, sess.Username, domain.AuditActionGameEnd, snap.Details())

	logger.Info("round finished", "username", sess.Username, "difficulty", snap.Difficulty, "score", snap.Score, "reason", snap.FinishReason)
	s.publish(sess.Username, game.Event{Type: game.EventFinished, Snapshot: snap})
}

// Snapshot возвращает текущее состояние сессии игрока
func (s *SessionService) Snapshot(username string) (game.Snapshot, error) {
	sess, err := s.get(username)
	if err != nil {
		return game.Snapshot{}, err
	}
	return sess.Snapshot(), nil
}

// Leave останавливает таймер и удаляет сессию игрока
func (s *SessionService) Leave(username string) bool {
	s.mu.Lock()
	a, ok := s.sessions[username]
	if ok {
		s.drop(username, a)
	}
	s.mu.Unlock()
	return ok
}

// drop вызывать под s.mu
func (s *SessionService) drop(username string, a *activeSession) {
	if a.cancel != nil {
		a.cancel()
	}
	if a.session.IsActive() {
		s.metrics.SessionAbandoned()
	}
	delete(s.sessions, username)
}

// SubmitScore отправляет итог завершённого раунда в таблицу лидеров.
// Счёт и сложность берутся из сессии; если клиент прислал свои и они другие -
// ErrScoreMismatch. Пустая claimedDifficulty не проверяется.
// Повторная отправка разрешена, сессия не меняется.
func (s *SessionService) SubmitScore(ctx context.Context, username string, claimed *int, claimedDifficulty domain.Difficulty) (domain.LeaderboardEntry, error) {
	sess, err := s.get(username)
	if err != nil {
		return domain.LeaderboardEntry{}, err
	}

	score, difficulty, err := sess.Result()
	if err != nil {
		return domain.LeaderboardEntry{}, err
	}
	if claimed != nil && *claimed != score {
		return domain.LeaderboardEntry{}, ErrScoreMismatch
	}
	if claimedDifficulty != "" && claimedDifficulty != difficulty {
		return domain.LeaderboardEntry{}, ErrScoreMismatch
	}

	entry, err := s.board.Submit(ctx, username, score, difficulty)
	s.metrics.ScoreSubmitted(string(difficulty), err)
	if err != nil {
		logger.WithContext(ctx).Error("score submit failed", "username", username, "error", err)
		return domain.LeaderboardEntry{}, err
	}

	s.audit.LogGame(ctx, username, domain.AuditActionScoreSubmit, map[string]interface{}{
		"score":      score,
		"difficulty": string(difficulty),
	})
	return entry, nil
}

// ActiveCount - количество раундов в состоянии playing
func (s *SessionService) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, a := range s.sessions {
		if a.session.IsActive() {
			n++
		}
	}
	return n
}

// CleanupExpired удаляет сессии без активности дольше TTL
func (s *SessionService) CleanupExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for username, a := range s.sessions {
		if now.Sub(a.session.LastActivity()) > s.cfg.SessionTTL {
			s.drop(username, a)
			removed++
		}
	}
	return removed
}

func (s *SessionService) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			if n := s.CleanupExpired(now); n > 0 {
				logger.Info("expired sessions removed", "count", n)
			}
		}
	}
}

// Close останавливает очистку и все таймеры
func (s *SessionService) Close() {
	s.stopOnce.Do(func() {
		close(s.stop)

		s.mu.Lock()
		defer s.mu.Unlock()
		for username, a := range s.sessions {
			s.drop(username, a)
		}
	})
}

func (s *SessionService) get(username string) (*game.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.sessions[username]
	if !ok {
		return nil, ErrNoSession
	}
	return a.session, nil
}

func (s *SessionService) publish(username string, ev game.Event) {
	s.mu.Lock()
	n := s.notifier
	s.mu.Unlock()

	if n != nil {
		n.Publish(username, ev)
	}
}
