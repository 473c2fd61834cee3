package entity

import (
	"context"

	"github.com/questx-lab/prizechest/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&Catalog{},
		&Winner{},
	)
}
