package store

import (
	"context"
	"sync"

	"github.com/questx-lab/prizechest/internal/prize"
)

// memoryStore keeps the document in process memory. It is the reference
// backend for a single process and for tests.
type memoryStore struct {
	mu      sync.Mutex
	catalog prize.Catalog
	version Version
	winners []prize.Winner
	window  int
	closed  bool

	catalogHub *Hub[prize.Catalog]
	winnerHub  *Hub[[]prize.Winner]
}

// NewMemoryStore keeps at most window winners.
func NewMemoryStore(window int) *memoryStore {
	return &memoryStore{
		catalog:    prize.DefaultCatalog(),
		window:     window,
		catalogHub: NewHub(prize.DefaultCatalog()),
		winnerHub:  NewHub([]prize.Winner{}),
	}
}

func (s *memoryStore) ReadSnapshot(ctx context.Context) (prize.Catalog, Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return prize.Catalog{}, 0, ErrUnavailable
	}

	return s.catalog.Clone(), s.version, nil
}

func (s *memoryStore) ConditionalWrite(ctx context.Context, commit Commit) (prize.Winner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return prize.Winner{}, ErrUnavailable
	}

	if err := ctx.Err(); err != nil {
		return prize.Winner{}, err
	}

	if commit.Version != s.version {
		return prize.Winner{}, ErrConflict
	}

	winner := stampWinner(commit.Winner)
	s.catalog = commit.Catalog.Clone()
	s.version++
	s.winners = append([]prize.Winner{winner}, s.winners...)
	if len(s.winners) > s.window {
		s.winners = s.winners[:s.window]
	}

	s.catalogHub.Publish(s.catalog.Clone())
	s.winnerHub.Publish(s.copyWinners(s.window))
	return winner, nil
}

func (s *memoryStore) SaveCatalog(ctx context.Context, catalog prize.Catalog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrUnavailable
	}

	s.catalog = catalog.Clone()
	s.version++
	s.catalogHub.Publish(s.catalog.Clone())
	return nil
}

func (s *memoryStore) RecentWinners(ctx context.Context, limit int) ([]prize.Winner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrUnavailable
	}

	return s.copyWinners(limit), nil
}

func (s *memoryStore) ClearWinners(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrUnavailable
	}

	s.winners = nil
	s.winnerHub.Publish([]prize.Winner{})
	return nil
}

func (s *memoryStore) SubscribeCatalog(handler func(prize.Catalog)) func() {
	return s.catalogHub.Subscribe(handler)
}

func (s *memoryStore) SubscribeWinners(handler func([]prize.Winner)) func() {
	return s.winnerHub.Subscribe(handler)
}

func (s *memoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.catalogHub.Close()
	s.winnerHub.Close()
	return nil
}

// copyWinners must be called with mu held.
func (s *memoryStore) copyWinners(limit int) []prize.Winner {
	if limit <= 0 || limit > len(s.winners) {
		limit = len(s.winners)
	}

	result := make([]prize.Winner, limit)
	copy(result, s.winners[:limit])
	return result
}
