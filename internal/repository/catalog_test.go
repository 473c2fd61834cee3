package repository

import (
	"errors"
	"testing"

	"github.com/questx-lab/prizechest/internal/entity"
	"github.com/questx-lab/prizechest/pkg/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func Test_catalogRepository_CreateIfNotExists(t *testing.T) {
	ctx := testutil.MockContext()
	repo := NewCatalogRepository()

	require.NoError(t, repo.CreateIfNotExists(ctx, &entity.Catalog{
		ID:            entity.MainCatalogID,
		PrizePoolText: "A\nB",
		Version:       1,
	}))

	err := repo.CreateIfNotExists(ctx, &entity.Catalog{
		ID:            entity.MainCatalogID,
		PrizePoolText: "C",
		Version:       1,
	})
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	got, err := repo.Get(ctx, entity.MainCatalogID)
	require.NoError(t, err)
	require.Equal(t, "A\nB", got.PrizePoolText)
	require.Equal(t, uint64(1), got.Version)
}

func Test_catalogRepository_UpdateIfVersion(t *testing.T) {
	ctx := testutil.MockContext()
	repo := NewCatalogRepository()

	require.NoError(t, repo.CreateIfNotExists(ctx, &entity.Catalog{
		ID:            entity.MainCatalogID,
		PrizePoolText: "A\nB",
		Version:       1,
	}))

	tests := []struct {
		name    string
		pool    string
		version uint64
		wantErr error
		want    uint64
	}{
		{name: "matching version", pool: "B", version: 1, want: 2},
		{name: "stale version", pool: "X", version: 1, wantErr: gorm.ErrRecordNotFound, want: 2},
		{name: "next version", pool: "", version: 2, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.UpdateIfVersion(ctx, &entity.Catalog{
				ID:             entity.MainCatalogID,
				PrizePoolText:  tt.pool,
				RemoveAfterWin: true,
			}, tt.version)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			got, err := repo.Get(ctx, entity.MainCatalogID)
			require.NoError(t, err)
			require.Equal(t, tt.want, got.Version)
			if tt.wantErr == nil {
				require.Equal(t, tt.pool, got.PrizePoolText)
				require.True(t, got.RemoveAfterWin)
			}
		})
	}
}

func Test_catalogRepository_Overwrite(t *testing.T) {
	ctx := testutil.MockContext()
	repo := NewCatalogRepository()

	_, err := repo.Get(ctx, entity.MainCatalogID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.Overwrite(ctx, &entity.Catalog{
		ID:            entity.MainCatalogID,
		PrizePoolText: "A",
		Version:       1,
	}))

	require.NoError(t, repo.Overwrite(ctx, &entity.Catalog{
		ID:                 entity.MainCatalogID,
		PrizePoolText:      "B",
		TargetedPrizesText: "x:y",
		Version:            1,
	}))

	got, err := repo.Get(ctx, entity.MainCatalogID)
	require.NoError(t, err)
	require.Equal(t, "B", got.PrizePoolText)
	require.Equal(t, "x:y", got.TargetedPrizesText)
	require.Equal(t, uint64(2), got.Version)
}
