package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/questx-lab/prizechest/internal/entity"
	"github.com/questx-lab/prizechest/internal/prize"
	"github.com/questx-lab/prizechest/internal/repository"
	"github.com/questx-lab/prizechest/pkg/xcontext"
	"gorm.io/gorm"
)

// databaseStore keeps the document in a SQL database. The catalog is a
// single row guarded by its version column and winners live in their own
// table written in the same transaction.
type databaseStore struct {
	rootCtx context.Context
	db      *gorm.DB
	window  int

	catalogRepo repository.CatalogRepository
	winnerRepo  repository.WinnerRepository
	feed        ChangeFeed

	// refreshMu serializes reloads so hubs see states in commit order.
	refreshMu  sync.Mutex
	catalogHub *Hub[prize.Catalog]
	winnerHub  *Hub[[]prize.Winner]
}

// NewDatabaseStore uses the database carried by ctx. feed may be nil when
// the process is the only one using the database.
func NewDatabaseStore(
	ctx context.Context,
	catalogRepo repository.CatalogRepository,
	winnerRepo repository.WinnerRepository,
	feed ChangeFeed,
) (*databaseStore, error) {
	db := xcontext.DB(ctx)
	if db == nil {
		return nil, fmt.Errorf("%w: no database in context", ErrUnavailable)
	}

	s := &databaseStore{
		rootCtx:     ctx,
		db:          db,
		window:      xcontext.Configs(ctx).Draw.WinnerWindow,
		catalogRepo: catalogRepo,
		winnerRepo:  winnerRepo,
		feed:        feed,
	}

	catalog, _, err := s.ReadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	winners, err := s.RecentWinners(ctx, s.window)
	if err != nil {
		return nil, err
	}

	s.catalogHub = NewHub(catalog)
	s.winnerHub = NewHub(winners)
	return s, nil
}

func (s *databaseStore) withDB(ctx context.Context) context.Context {
	return xcontext.WithDB(ctx, s.db)
}

func (s *databaseStore) ReadSnapshot(ctx context.Context) (prize.Catalog, Version, error) {
	row, err := s.catalogRepo.Get(s.withDB(ctx), entity.MainCatalogID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return prize.DefaultCatalog(), 0, nil
		}

		return prize.Catalog{}, 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return catalogFromEntity(row), Version(row.Version), nil
}

func (s *databaseStore) ConditionalWrite(ctx context.Context, commit Commit) (prize.Winner, error) {
	ctx = xcontext.WithDBTransaction(s.withDB(ctx))
	defer xcontext.WithRollbackDBTransaction(ctx)

	row := catalogToEntity(commit.Catalog)
	row.Version = uint64(commit.Version) + 1

	var err error
	if commit.Version == 0 {
		err = s.catalogRepo.CreateIfNotExists(ctx, row)
	} else {
		err = s.catalogRepo.UpdateIfVersion(ctx, row, uint64(commit.Version))
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return prize.Winner{}, ErrConflict
		}

		return prize.Winner{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	// The catalog row is locked from here until commit.
	winner := stampWinner(commit.Winner)
	if err := s.winnerRepo.Create(ctx, winnerToEntity(winner)); err != nil {
		return prize.Winner{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if _, err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		return prize.Winner{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	s.changed(ctx, ChangeEvent{Catalog: true, Winners: true})
	return winner, nil
}

func (s *databaseStore) SaveCatalog(ctx context.Context, catalog prize.Catalog) error {
	row := catalogToEntity(catalog)
	row.Version = 1
	if err := s.catalogRepo.Overwrite(s.withDB(ctx), row); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	s.changed(ctx, ChangeEvent{Catalog: true})
	return nil
}

func (s *databaseStore) RecentWinners(ctx context.Context, limit int) ([]prize.Winner, error) {
	if limit <= 0 {
		limit = s.window
	}

	rows, err := s.winnerRepo.GetRecent(s.withDB(ctx), limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	winners := make([]prize.Winner, 0, len(rows))
	for _, row := range rows {
		winners = append(winners, winnerFromEntity(row))
	}

	return winners, nil
}

func (s *databaseStore) ClearWinners(ctx context.Context) error {
	if err := s.winnerRepo.DeleteAll(s.withDB(ctx)); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	s.changed(ctx, ChangeEvent{Winners: true})
	return nil
}

func (s *databaseStore) SubscribeCatalog(handler func(prize.Catalog)) func() {
	return s.catalogHub.Subscribe(handler)
}

func (s *databaseStore) SubscribeWinners(handler func([]prize.Winner)) func() {
	return s.winnerHub.Subscribe(handler)
}

// Refresh reloads the parts named by event and notifies local subscribers.
// It is fed by the change feed for writes made by other processes.
func (s *databaseStore) Refresh(ctx context.Context, event ChangeEvent) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	ctx = xcontext.Inherit(ctx, s.rootCtx)
	if event.Catalog {
		catalog, _, err := s.ReadSnapshot(ctx)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot reload catalog: %v", err)
		} else {
			s.catalogHub.Publish(catalog)
		}
	}

	if event.Winners {
		winners, err := s.RecentWinners(ctx, s.window)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot reload winners: %v", err)
		} else {
			s.winnerHub.Publish(winners)
		}
	}
}

func (s *databaseStore) Close() error {
	s.catalogHub.Close()
	s.winnerHub.Close()
	return nil
}

func (s *databaseStore) changed(ctx context.Context, event ChangeEvent) {
	// The write is committed, so the reload must not be cut short by the
	// caller's cancellation.
	s.Refresh(s.rootCtx, event)

	if s.feed != nil {
		if err := s.feed.Broadcast(ctx, event); err != nil {
			xcontext.Logger(s.rootCtx).Warnf("Cannot broadcast change event: %v", err)
		}
	}
}

func catalogFromEntity(row *entity.Catalog) prize.Catalog {
	return prize.ParseCatalog(row.PrizePoolText, row.TargetedPrizesText, row.RemoveAfterWin)
}

func catalogToEntity(c prize.Catalog) *entity.Catalog {
	return &entity.Catalog{
		ID:                 entity.MainCatalogID,
		PrizePoolText:      c.PoolText(),
		TargetedPrizesText: c.TargetedText(),
		RemoveAfterWin:     c.RemoveAfterWin,
	}
}

func winnerFromEntity(row entity.Winner) prize.Winner {
	return prize.Winner{
		ID:           row.ID,
		ClaimantName: row.Name,
		PrizeLabel:   row.Prize,
		Timestamp:    row.Timestamp,
	}
}

func winnerToEntity(w prize.Winner) *entity.Winner {
	return &entity.Winner{
		ID:        w.ID,
		Name:      w.ClaimantName,
		Prize:     w.PrizeLabel,
		Timestamp: w.Timestamp,
	}
}
