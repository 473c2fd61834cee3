package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/questx-lab/prizechest/config"
	"github.com/questx-lab/prizechest/internal/domain"
	"github.com/questx-lab/prizechest/internal/entity"
	"github.com/questx-lab/prizechest/internal/repository"
	"github.com/questx-lab/prizechest/internal/store"
	"github.com/questx-lab/prizechest/pkg/kafka"
	"github.com/questx-lab/prizechest/pkg/logger"
	"github.com/questx-lab/prizechest/pkg/redis"
	"github.com/questx-lab/prizechest/pkg/xcontext"
	"github.com/urfave/cli/v2"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	app *cli.App
	ctx context.Context

	catalogRepo repository.CatalogRepository
	winnerRepo  repository.WinnerRepository

	store   store.Store
	closers []func() error

	drawDomain domain.DrawDomain
	wsDomain   domain.WsDomain
}

func (s *srv) loadContext(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}

	var opts []logger.Option
	if cfg.Log.Console {
		opts = append(opts, logger.WithConsole())
	}

	node, err := snowflake.NewNode(cfg.Draw.NodeID)
	if err != nil {
		return fmt.Errorf("invalid draw.node_id: %w", err)
	}

	s.ctx = context.Background()
	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(logger.ParseLevel(cfg.Log.Level), opts...))
	s.ctx = xcontext.WithSnowFlake(s.ctx, node)
	return nil
}

func (s *srv) newDatabase() (*gorm.DB, error) {
	cfg := xcontext.Configs(s.ctx).Database

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.New(mysql.Config{
			DSN:                       cfg.ConnectionString(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		})
	case "sqlite":
		dialector = sqlite.Open(cfg.File)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if cfg.Driver == "sqlite" {
		// SQLite allows one writer at a time.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func (s *srv) migrateDB() error {
	return entity.MigrateTable(s.ctx)
}

func (s *srv) loadRepos() {
	s.catalogRepo = repository.NewCatalogRepository()
	s.winnerRepo = repository.NewWinnerRepository()
}

func (s *srv) loadStore() error {
	cfg := xcontext.Configs(s.ctx)

	switch cfg.Draw.Backend {
	case config.BackendMemory:
		s.store = store.NewMemoryStore(cfg.Draw.WinnerWindow)

	case config.BackendDatabase:
		db, err := s.newDatabase()
		if err != nil {
			return err
		}
		s.ctx = xcontext.WithDB(s.ctx, db)
		if sqlDB, err := db.DB(); err == nil {
			s.closers = append(s.closers, sqlDB.Close)
		}

		if err := s.migrateDB(); err != nil {
			return err
		}

		if err := s.loadDatabaseStore(); err != nil {
			return err
		}

	case config.BackendRedis:
		client, err := redis.NewClient(s.ctx, cfg.Redis.Addr)
		if err != nil {
			return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
		}
		s.closers = append(s.closers, client.Close)

		redisStore, err := store.NewRedisStore(s.ctx, client, cfg.Redis.Prefix)
		if err != nil {
			return err
		}
		s.store = redisStore

	default:
		return fmt.Errorf("unknown draw backend %q", cfg.Draw.Backend)
	}

	return nil
}

// loadDatabaseStore shares changes with other processes through kafka when
// a broker is configured. Without one, writes are only visible to
// subscribers of this process.
func (s *srv) loadDatabaseStore() error {
	cfg := xcontext.Configs(s.ctx)
	if cfg.Kafka.Addr == "" {
		databaseStore, err := store.NewDatabaseStore(s.ctx, s.catalogRepo, s.winnerRepo, nil)
		if err != nil {
			return err
		}

		s.store = databaseStore
		return nil
	}

	publisher, err := kafka.NewPublisher(s.nodeID(), []string{cfg.Kafka.Addr})
	if err != nil {
		return err
	}
	s.closers = append(s.closers, func() error { return publisher.Stop(s.ctx) })

	feed := store.NewPubSubFeed(s.nodeID(), cfg.Kafka.Topic, publisher)
	databaseStore, err := store.NewDatabaseStore(s.ctx, s.catalogRepo, s.winnerRepo, feed)
	if err != nil {
		return err
	}
	s.store = databaseStore

	// Every process has its own group so that each one sees every event.
	subscriber, err := kafka.NewSubscriber(
		"prizechest-"+uuid.NewString(),
		[]string{cfg.Kafka.Addr},
		[]string{cfg.Kafka.Topic},
		feed.Handler(databaseStore.Refresh),
	)
	if err != nil {
		return err
	}
	s.closers = append(s.closers, func() error { return subscriber.Stop(s.ctx) })

	subscriber.Subscribe(s.ctx)
	return nil
}

func (s *srv) nodeID() string {
	return strconv.FormatInt(xcontext.Configs(s.ctx).Draw.NodeID, 10)
}

func (s *srv) loadDomains() {
	s.drawDomain = domain.NewDrawDomain(s.store)
	s.wsDomain = domain.NewWsDomain(s.store, s.drawDomain)
}

func (s *srv) close() {
	if s.wsDomain != nil {
		s.wsDomain.Close()
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			xcontext.Logger(s.ctx).Warnf("Cannot close store: %v", err)
		}
	}

	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			xcontext.Logger(s.ctx).Warnf("Cannot close resource: %v", err)
		}
	}
}
