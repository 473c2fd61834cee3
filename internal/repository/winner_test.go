package repository

import (
	"testing"

	"github.com/questx-lab/prizechest/internal/entity"
	"github.com/questx-lab/prizechest/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_winnerRepository_GetRecent(t *testing.T) {
	ctx := testutil.MockContext()
	repo := NewWinnerRepository()

	for i, w := range []entity.Winner{
		{ID: "1", Name: "alice", Prize: "A", Timestamp: 100},
		{ID: "2", Name: "bob", Prize: "B", Timestamp: 300},
		{ID: "3", Name: "carol", Prize: "C", Timestamp: 200},
		{ID: "4", Name: "dave", Prize: "D", Timestamp: 300},
	} {
		w := w
		require.NoError(t, repo.Create(ctx, &w), "winner %d", i)
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{name: "all", limit: 10, want: []string{"4", "2", "3", "1"}},
		{name: "limited", limit: 2, want: []string{"4", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetRecent(ctx, tt.limit)
			require.NoError(t, err)

			ids := []string{}
			for _, w := range got {
				ids = append(ids, w.ID)
			}
			require.Equal(t, tt.want, ids)
		})
	}
}

func Test_winnerRepository_DeleteAll(t *testing.T) {
	ctx := testutil.MockContext()
	repo := NewWinnerRepository()

	require.NoError(t, repo.Create(ctx, &entity.Winner{ID: "1", Name: "alice", Prize: "A", Timestamp: 1}))
	require.NoError(t, repo.DeleteAll(ctx))

	got, err := repo.GetRecent(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, got)

	// Clearing an empty ledger is not an error.
	require.NoError(t, repo.DeleteAll(ctx))
}
