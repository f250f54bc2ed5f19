package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"spot_difference/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usernames(entries []domain.LeaderboardEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Username)
	}
	return out
}

func TestLeaderboard_TieBreakBySubmissionOrder(t *testing.T) {
	lb := New(NewMemoryStore(), 10)
	ctx := context.Background()

	for _, s := range []struct {
		name  string
		score int
	}{{"A", 5}, {"B", 9}, {"C", 9}} {
		_, err := lb.Submit(ctx, s.name, s.score, domain.DifficultyEasy)
		require.NoError(t, err)
	}

	top, err := lb.Top(ctx, 10, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "A"}, usernames(top))
}

func TestLeaderboard_TopIsTruncated(t *testing.T) {
	lb := New(NewMemoryStore(), 10)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		_, err := lb.Submit(ctx, fmt.Sprintf("p%d", i), i, domain.DifficultyMedium)
		require.NoError(t, err)
	}

	top, err := lb.Top(ctx, 0, "")
	require.NoError(t, err)
	require.Len(t, top, 10)
	assert.Equal(t, 14, top[0].Score)
	assert.Equal(t, 5, top[9].Score)

	top, err = lb.Top(ctx, 100, "")
	require.NoError(t, err)
	assert.Len(t, top, 10)

	top, err = lb.Top(ctx, 3, "")
	require.NoError(t, err)
	assert.Len(t, top, 3)
}

func TestLeaderboard_DuplicatesAllowed(t *testing.T) {
	store := NewMemoryStore()
	lb := New(store, 10)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := lb.Submit(ctx, "p1", 3, domain.DifficultyEasy)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, store.Len())
	top, err := lb.Top(ctx, 10, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p1", "p1"}, usernames(top))
}

func TestLeaderboard_DifficultyFilter(t *testing.T) {
	lb := New(NewMemoryStore(), 10)
	ctx := context.Background()

	_, _ = lb.Submit(ctx, "e", 3, domain.DifficultyEasy)
	_, _ = lb.Submit(ctx, "h", 5, domain.DifficultyHard)

	top, err := lb.Top(ctx, 10, domain.DifficultyEasy)
	require.NoError(t, err)
	assert.Equal(t, []string{"e"}, usernames(top))

	_, err = lb.Top(ctx, 10, "extreme")
	assert.ErrorIs(t, err, domain.ErrUnknownDifficulty)
}

func TestLeaderboard_RejectsInvalidEntries(t *testing.T) {
	lb := New(NewMemoryStore(), 10)
	ctx := context.Background()

	_, err := lb.Submit(ctx, "  ", 1, domain.DifficultyEasy)
	assert.ErrorIs(t, err, ErrInvalidEntry)
	_, err = lb.Submit(ctx, "p", -1, domain.DifficultyEasy)
	assert.ErrorIs(t, err, ErrInvalidEntry)
	_, err = lb.Submit(ctx, "p", 1, "extreme")
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

type failingStore struct{}

func (failingStore) Append(context.Context, *domain.LeaderboardEntry) error {
	return errors.New("connection refused")
}

func (failingStore) Top(context.Context, int, domain.Difficulty) ([]domain.LeaderboardEntry, error) {
	return nil, errors.New("connection refused")
}

func TestLeaderboard_SubmissionFailureIsWrapped(t *testing.T) {
	lb := New(failingStore{}, 10)
	_, err := lb.Submit(context.Background(), "p", 1, domain.DifficultyEasy)
	assert.ErrorIs(t, err, ErrSubmission)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestLeaderboard_ConcurrentSubmissionsAreLinearized(t *testing.T) {
	store := NewMemoryStore()
	lb := New(store, 10)
	ctx := context.Background()

	var wg sync.WaitGroup
	seqs := make(chan int64, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := lb.Submit(ctx, fmt.Sprintf("p%d", i), 7, domain.DifficultyHard)
			assert.NoError(t, err)
			seqs <- e.Seq
		}(i)
	}
	wg.Wait()
	close(seqs)

	seen := map[int64]bool{}
	for s := range seqs {
		assert.False(t, seen[s], "seq %d выдан дважды", s)
		seen[s] = true
	}
	assert.Len(t, seen, 50)
	assert.Equal(t, 50, store.Len())
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	in := []domain.LeaderboardEntry{
		{Seq: 1, Username: "a", Score: 1},
		{Seq: 2, Username: "b", Score: 2},
	}
	out := Rank(in, 10)

	assert.Equal(t, "b", out[0].Username)
	assert.Equal(t, "a", in[0].Username)
}

func TestRank_TieBreakIgnoresInputOrder(t *testing.T) {
	in := []domain.LeaderboardEntry{
		{Seq: 3, Username: "C", Score: 9},
		{Seq: 1, Username: "A", Score: 5},
		{Seq: 2, Username: "B", Score: 9},
	}
	assert.Equal(t, []string{"B", "C", "A"}, usernames(Rank(in, 10)))
}
