package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"spot_difference/internal/domain"
)

// DefaultSize - сколько записей показывает таблица лидеров
const DefaultSize = 10

var (
	ErrInvalidEntry = errors.New("некорректная запись таблицы лидеров")
	// хранилище недоступно; счёт сессии не теряется, отправку можно повторить
	ErrSubmission = errors.New("не удалось сохранить результат")
)

// Store - журнал результатов: только добавление и выборка топа.
// Append проставляет Seq и SubmittedAt.
type Store interface {
	Append(ctx context.Context, e *domain.LeaderboardEntry) error
	Top(ctx context.Context, n int, difficulty domain.Difficulty) ([]domain.LeaderboardEntry, error)
}

// Leaderboard принимает результаты и отдаёт отсортированный топ.
// Все добавления проходят через один мьютекс, поэтому Seq задаёт
// однозначный порядок отправок.
type Leaderboard struct {
	store Store
	size  int
	mu    sync.Mutex
}

func New(store Store, size int) *Leaderboard {
	if size <= 0 {
		size = DefaultSize
	}
	return &Leaderboard{store: store, size: size}
}

// Size - максимальный размер топа
func (l *Leaderboard) Size() int {
	return l.size
}

// Submit добавляет результат без дедупликации по игроку
func (l *Leaderboard) Submit(ctx context.Context, username string, score int, difficulty domain.Difficulty) (domain.LeaderboardEntry, error) {
	username = strings.TrimSpace(username)
	if username == "" || score < 0 || !difficulty.Valid() {
		return domain.LeaderboardEntry{}, ErrInvalidEntry
	}

	e := domain.LeaderboardEntry{
		Username:   username,
		Score:      score,
		Difficulty: difficulty,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Append(ctx, &e); err != nil {
		return domain.LeaderboardEntry{}, fmt.Errorf("%w: %w", ErrSubmission, err)
	}
	return e, nil
}

// Top возвращает до n лучших записей (n обрезается до размера таблицы).
// Пустая сложность - по всем сложностям.
func (l *Leaderboard) Top(ctx context.Context, n int, difficulty domain.Difficulty) ([]domain.LeaderboardEntry, error) {
	if n <= 0 || n > l.size {
		n = l.size
	}
	if difficulty != "" && !difficulty.Valid() {
		return nil, domain.ErrUnknownDifficulty
	}

	entries, err := l.store.Top(ctx, n, difficulty)
	if err != nil {
		return nil, err
	}
	return Rank(entries, n), nil
}

// Rank сортирует по убыванию очков, при равенстве раньше отправленный выше,
// и обрезает до n. Исходный срез не меняется.
func Rank(entries []domain.LeaderboardEntry, n int) []domain.LeaderboardEntry {
	out := make([]domain.LeaderboardEntry, len(entries))
	copy(out, entries)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Seq < out[j].Seq
	})

	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
