package repository

import (
	"context"

	"github.com/questx-lab/prizechest/internal/entity"
	"github.com/questx-lab/prizechest/pkg/xcontext"
	"gorm.io/gorm"
)

type WinnerRepository interface {
	Create(ctx context.Context, winner *entity.Winner) error
	GetRecent(ctx context.Context, limit int) ([]entity.Winner, error)
	DeleteAll(ctx context.Context) error
}

type winnerRepository struct{}

func NewWinnerRepository() *winnerRepository {
	return &winnerRepository{}
}

func (r *winnerRepository) Create(ctx context.Context, winner *entity.Winner) error {
	return xcontext.DB(ctx).Create(winner).Error
}

func (r *winnerRepository) GetRecent(ctx context.Context, limit int) ([]entity.Winner, error) {
	var result []entity.Winner
	err := xcontext.DB(ctx).
		Order("timestamp DESC").
		Order("id DESC").
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *winnerRepository) DeleteAll(ctx context.Context) error {
	return xcontext.DB(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&entity.Winner{}).Error
}
