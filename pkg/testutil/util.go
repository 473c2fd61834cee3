package testutil

import (
	"context"
	"fmt"
	"io"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/questx-lab/prizechest/config"
	"github.com/questx-lab/prizechest/internal/entity"
	"github.com/questx-lab/prizechest/pkg/logger"
	"github.com/questx-lab/prizechest/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// MockContext returns a context carrying test configs, a silent logger, a
// snowflake node and a fresh in-memory sqlite database with every table
// migrated. Each call gets its own database.
func MockContext() context.Context {
	// A named shared-cache database lets the pooled connection see the same
	// tables. One open connection serializes writers the way a real database
	// would lock the row.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}

	cfg := config.Default()
	cfg.Env = "test"
	cfg.Draw.RetryBackoff = config.Duration{}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE, logger.WithOutput(io.Discard)))
	ctx = xcontext.WithSnowFlake(ctx, node)
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}
