package game

import (
	"sort"
	"sync"
	"time"

	"spot_difference/internal/domain"
)

// Session - один раунд одного игрока: ready -> playing -> finished.
// Все методы сериализованы мьютексом сессии: клики и тики таймера
// не выполняются одновременно.
type Session struct {
	ID       string
	Username string

	mu           sync.RWMutex
	budget       int
	state        State
	catalog      *domain.DifferenceCatalog
	remaining    int
	found        map[int]bool
	score        int
	round        int64
	reason       FinishReason
	startedAt    time.Time
	finishedAt   *time.Time
	lastActivity time.Time
	// состояние на момент завершения последнего раунда
	final Snapshot
}

// Snapshot - состояние сессии, безопасное для отправки клиенту.
// Ненайденные отличия не раскрываются.
type Snapshot struct {
	ID           string              `json:"id"`
	Username     string              `json:"username"`
	State        State               `json:"state"`
	Difficulty   domain.Difficulty   `json:"difficulty,omitempty"`
	ImageURL1    string              `json:"image_url_1,omitempty"`
	ImageURL2    string              `json:"image_url_2,omitempty"`
	Remaining    int                 `json:"time_left"`
	Score        int                 `json:"score"`
	Total        int                 `json:"total_differences"`
	Found        []domain.Difference `json:"found_differences"`
	Round        int64               `json:"round"`
	FinishReason FinishReason        `json:"finish_reason,omitempty"`
	StartedAt    *time.Time          `json:"started_at,omitempty"`
	FinishedAt   *time.Time          `json:"finished_at,omitempty"`
}

// NewSession создает сессию в состоянии ready
func NewSession(id, username string, roundSeconds int) *Session {
	if roundSeconds <= 0 {
		roundSeconds = DefaultRoundSeconds
	}
	return &Session{
		ID:           id,
		Username:     username,
		budget:       roundSeconds,
		state:        StateReady,
		found:        map[int]bool{},
		lastActivity: time.Now(),
	}
}

// Start начинает новый раунд с уже загруженным набором.
// Допустим только из ready или finished; предыдущий раунд отбрасывается целиком.
// Возвращает номер нового раунда.
func (s *Session) Start(catalog *domain.DifferenceCatalog) (int64, error) {
	if catalog == nil || catalog.Total() == 0 {
		return 0, domain.ErrInvalidCatalog
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StatePlaying {
		return 0, ErrInvalidTransition
	}

	now := time.Now()
	s.catalog = catalog
	s.remaining = s.budget
	s.found = map[int]bool{}
	s.score = 0
	s.round++
	s.reason = ""
	s.startedAt = now
	s.finishedAt = nil
	s.lastActivity = now
	s.state = StatePlaying

	return s.round, nil
}

// Tick уменьшает оставшееся время на секунду. Тик чужого раунда игнорируется,
// поэтому запоздалый тик после перезапуска не влияет на новую сессию.
// finished == true ровно один раз за раунд.
func (s *Session) Tick(round int64) (finished bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePlaying || round != s.round {
		return false, ErrInvalidTransition
	}

	if s.remaining > 0 {
		s.remaining--
	}
	return s.advance(), nil
}

// Click сопоставляет клик с набором и применяет попадание
func (s *Session) Click(c Click) (out Outcome, finished bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePlaying {
		return Outcome{}, false, ErrInvalidTransition
	}

	p, err := c.Normalize()
	if err != nil {
		return Outcome{}, false, err
	}

	s.lastActivity = time.Now()
	out = Match(s.catalog, p, s.found)
	out.Round = s.round
	if out.Kind == OutcomeHit {
		s.found[out.Index] = true
		s.score++
	}

	return out, s.advance(), nil
}

// advance - единственная функция перехода в finished, вызывается после
// каждого изменяющего события. Вызывать под s.mu.
func (s *Session) advance() bool {
	if s.state != StatePlaying {
		return false
	}

	switch {
	case len(s.found) == s.catalog.Total():
		s.finish(FinishCompleted)
	case s.remaining == 0:
		s.finish(FinishTimeout)
	default:
		return false
	}
	return true
}

func (s *Session) finish(reason FinishReason) {
	now := time.Now()
	s.state = StateFinished
	s.reason = reason
	s.finishedAt = &now
	s.lastActivity = now
	s.final = s.snapshotLocked()
}

// FinalSnapshot возвращает состояние раунда round на момент его завершения.
// false, если этот раунд ещё не завершён или уже перезапущен и не завершён.
func (s *Session) FinalSnapshot(round int64) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.final.State != StateFinished || s.final.Round != round {
		return Snapshot{}, false
	}
	return s.final, true
}

// Result возвращает итоговый счёт; допустим только в finished
func (s *Session) Result() (score int, difficulty domain.Difficulty, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state != StateFinished {
		return 0, "", ErrInvalidTransition
	}
	return s.score, s.catalog.Difficulty, nil
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Round() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.round
}

// IsActive - идёт ли раунд
func (s *Session) IsActive() bool {
	return s.State() == StatePlaying
}

// LastActivity - время последнего клика или перехода
func (s *Session) LastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}

// Snapshot возвращает текущее состояние для клиента
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:           s.ID,
		Username:     s.Username,
		State:        s.state,
		Remaining:    s.remaining,
		Score:        s.score,
		Round:        s.round,
		FinishReason: s.reason,
		FinishedAt:   s.finishedAt,
		Found:        []domain.Difference{},
	}
	if s.catalog == nil {
		snap.Remaining = s.budget
		return snap
	}

	started := s.startedAt
	snap.StartedAt = &started
	snap.Difficulty = s.catalog.Difficulty
	snap.ImageURL1 = s.catalog.ImageURL1
	snap.ImageURL2 = s.catalog.ImageURL2
	snap.Total = s.catalog.Total()

	idx := make([]int, 0, len(s.found))
	for i := range s.found {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	for _, i := range idx {
		snap.Found = append(snap.Found, s.catalog.Differences[i])
	}
	return snap
}

// Details возвращает детали текущего раунда для аудита
func (s *Session) Details() map[string]interface{} {
	return s.Snapshot().Details()
}

// Details - детали раунда для аудита
func (snap Snapshot) Details() map[string]interface{} {
	details := map[string]interface{}{
		"session_id": snap.ID,
		"round":      snap.Round,
		"state":      string(snap.State),
		"score":      snap.Score,
		"time_left":  snap.Remaining,
	}
	if snap.Difficulty != "" {
		details["difficulty"] = string(snap.Difficulty)
		details["total"] = snap.Total
	}
	if snap.FinishReason != "" {
		details["finish_reason"] = string(snap.FinishReason)
	}
	return details
}
