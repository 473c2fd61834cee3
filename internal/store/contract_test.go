package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/questx-lab/prizechest/internal/prize"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type recorder[T any] struct {
	mu     sync.Mutex
	states []T
}

func (r *recorder[T]) handle(state T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.states = append(r.states, state)
}

func (r *recorder[T]) last() (T, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	if len(r.states) == 0 {
		return zero, 0
	}

	return r.states[len(r.states)-1], len(r.states)
}

func testWinner(id, name, label string, ts int64) prize.Winner {
	return prize.Winner{ID: id, ClaimantName: name, PrizeLabel: label, Timestamp: ts}
}

// runStoreContract checks the behavior every backend shares.
func runStoreContract(t *testing.T, ctx context.Context, s Store) {
	t.Run("missing catalog reads as default", func(t *testing.T) {
		c, v, err := s.ReadSnapshot(ctx)
		require.NoError(t, err)
		require.Equal(t, Version(0), v)
		require.True(t, c.Equal(prize.DefaultCatalog()))
	})

	catalogs := &recorder[prize.Catalog]{}
	cancelCatalog := s.SubscribeCatalog(catalogs.handle)
	defer cancelCatalog()

	winners := &recorder[[]prize.Winner]{}
	cancelWinners := s.SubscribeWinners(winners.handle)
	defer cancelWinners()

	require.Eventually(t, func() bool {
		_, n := catalogs.last()
		return n > 0
	}, time.Second, 5*time.Millisecond)

	first := prize.ParseCatalog("B\nC", "", true)
	t.Run("first conditional write", func(t *testing.T) {
		_, err := s.ConditionalWrite(ctx, Commit{
			Catalog: first,
			Version: 0,
			Winner:  testWinner("1", "alice", "A", 100),
		})
		require.NoError(t, err)

		c, v, err := s.ReadSnapshot(ctx)
		require.NoError(t, err)
		require.Equal(t, Version(1), v)
		require.True(t, c.Equal(first))

		got, err := s.RecentWinners(ctx, 10)
		require.NoError(t, err)
		require.Equal(t, []prize.Winner{testWinner("1", "alice", "A", 100)}, got)
	})

	t.Run("stale version is a conflict and writes nothing", func(t *testing.T) {
		_, err := s.ConditionalWrite(ctx, Commit{
			Catalog: prize.ParseCatalog("X", "", true),
			Version: 0,
			Winner:  testWinner("2", "bob", "X", 200),
		})
		require.ErrorIs(t, err, ErrConflict)

		c, v, err := s.ReadSnapshot(ctx)
		require.NoError(t, err)
		require.Equal(t, Version(1), v)
		require.True(t, c.Equal(first))

		got, err := s.RecentWinners(ctx, 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
	})

	t.Run("winners are newest first", func(t *testing.T) {
		_, err := s.ConditionalWrite(ctx, Commit{
			Catalog: prize.ParseCatalog("C", "", true),
			Version: 1,
			Winner:  testWinner("3", "carol", "B", 300),
		})
		require.NoError(t, err)

		got, err := s.RecentWinners(ctx, 10)
		require.NoError(t, err)
		require.Equal(t, []prize.Winner{
			testWinner("3", "carol", "B", 300),
			testWinner("1", "alice", "A", 100),
		}, got)

		got, err = s.RecentWinners(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, []prize.Winner{testWinner("3", "carol", "B", 300)}, got)
	})

	t.Run("subscribers see the latest state", func(t *testing.T) {
		want := prize.ParseCatalog("C", "", true)
		require.Eventually(t, func() bool {
			c, _ := catalogs.last()
			return c.Equal(want)
		}, time.Second, 5*time.Millisecond)

		require.Eventually(t, func() bool {
			w, _ := winners.last()
			return len(w) == 2 && w[0].ID == "3"
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("save catalog overwrites and bumps version", func(t *testing.T) {
		saved := prize.ParseCatalog("P\nQ", "rian:Iphone", false)
		require.NoError(t, s.SaveCatalog(ctx, saved))

		c, v, err := s.ReadSnapshot(ctx)
		require.NoError(t, err)
		require.Equal(t, Version(3), v)
		require.True(t, c.Equal(saved))

		// A commit computed before the save must not land.
		_, err = s.ConditionalWrite(ctx, Commit{
			Catalog: prize.ParseCatalog("", "", true),
			Version: 2,
			Winner:  testWinner("4", "dave", "C", 400),
		})
		require.ErrorIs(t, err, ErrConflict)

		require.Eventually(t, func() bool {
			c, _ := catalogs.last()
			return c.Equal(saved)
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("racing writers from one snapshot", func(t *testing.T) {
		_, v, err := s.ReadSnapshot(ctx)
		require.NoError(t, err)

		const writers = 8
		results := make([]error, writers)
		eg := errgroup.Group{}
		for i := 0; i < writers; i++ {
			i := i
			eg.Go(func() error {
				_, results[i] = s.ConditionalWrite(ctx, Commit{
					Catalog: prize.ParseCatalog("Q", "", false),
					Version: v,
					Winner:  testWinner(string(rune('a'+i)), "racer", "P", int64(500+i)),
				})
				return nil
			})
		}
		require.NoError(t, eg.Wait())

		succeeded := 0
		for _, err := range results {
			if err == nil {
				succeeded++
			} else {
				require.ErrorIs(t, err, ErrConflict)
			}
		}
		require.Equal(t, 1, succeeded)

		_, after, err := s.ReadSnapshot(ctx)
		require.NoError(t, err)
		require.Equal(t, v+1, after)

		got, err := s.RecentWinners(ctx, 10)
		require.NoError(t, err)
		require.Len(t, got, 3)
	})

	t.Run("clear winners", func(t *testing.T) {
		require.NoError(t, s.ClearWinners(ctx))

		got, err := s.RecentWinners(ctx, 10)
		require.NoError(t, err)
		require.Empty(t, got)

		require.Eventually(t, func() bool {
			w, _ := winners.last()
			return len(w) == 0
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("winner is stamped at commit time", func(t *testing.T) {
		_, v, err := s.ReadSnapshot(ctx)
		require.NoError(t, err)

		before := time.Now().UnixMilli()
		recorded, err := s.ConditionalWrite(ctx, Commit{
			Catalog: prize.ParseCatalog("Q", "", false),
			Version: v,
			Winner:  testWinner("stamped", "erin", "Q", 0),
		})
		require.NoError(t, err)
		require.GreaterOrEqual(t, recorded.Timestamp, before)
		require.LessOrEqual(t, recorded.Timestamp, time.Now().UnixMilli())

		got, err := s.RecentWinners(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, []prize.Winner{recorded}, got)
	})
}
