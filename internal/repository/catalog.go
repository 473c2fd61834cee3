package repository

import (
	"context"

	"github.com/questx-lab/prizechest/internal/entity"
	"github.com/questx-lab/prizechest/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogRepository interface {
	Get(ctx context.Context, id string) (*entity.Catalog, error)
	// CreateIfNotExists inserts the catalog unless a row with the same id
	// already exists, in which case it returns gorm.ErrRecordNotFound.
	CreateIfNotExists(ctx context.Context, catalog *entity.Catalog) error
	// UpdateIfVersion stores the catalog only if the stored version still
	// equals version, bumping it to version+1. It returns
	// gorm.ErrRecordNotFound otherwise.
	UpdateIfVersion(ctx context.Context, catalog *entity.Catalog, version uint64) error
	// Overwrite stores the catalog regardless of its version.
	Overwrite(ctx context.Context, catalog *entity.Catalog) error
}

type catalogRepository struct{}

func NewCatalogRepository() *catalogRepository {
	return &catalogRepository{}
}

func (r *catalogRepository) Get(ctx context.Context, id string) (*entity.Catalog, error) {
	var result entity.Catalog
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *catalogRepository) CreateIfNotExists(ctx context.Context, catalog *entity.Catalog) error {
	tx := xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(catalog)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *catalogRepository) UpdateIfVersion(
	ctx context.Context, catalog *entity.Catalog, version uint64,
) error {
	tx := xcontext.DB(ctx).Model(&entity.Catalog{}).
		Where("id=? AND version=?", catalog.ID, version).
		Updates(map[string]any{
			"prize_pool_text":      catalog.PrizePoolText,
			"targeted_prizes_text": catalog.TargetedPrizesText,
			"remove_after_win":     catalog.RemoveAfterWin,
			"version":              gorm.Expr("version+?", 1),
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *catalogRepository) Overwrite(ctx context.Context, catalog *entity.Catalog) error {
	return xcontext.DB(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"prize_pool_text":      catalog.PrizePoolText,
			"targeted_prizes_text": catalog.TargetedPrizesText,
			"remove_after_win":     catalog.RemoveAfterWin,
			"version":              gorm.Expr("version+?", 1),
		}),
	}).Create(catalog).Error
}
