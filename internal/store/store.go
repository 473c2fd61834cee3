package store

import (
	"context"
	"errors"
	"time"

	"github.com/questx-lab/prizechest/internal/prize"
)

var (
	// ErrConflict is returned by ConditionalWrite when the stored version no
	// longer matches the version the commit was computed from.
	ErrConflict = errors.New("store: version conflict")

	// ErrUnavailable is returned when the backend cannot be reached or
	// rejects the operation. Nothing was written.
	ErrUnavailable = errors.New("store: unavailable")
)

// Version identifies a committed catalog state. Zero means no catalog has
// ever been written.
type Version uint64

// Commit is the unit written atomically by ConditionalWrite: the catalog
// after a claim and the winner record of that claim.
type Commit struct {
	Catalog prize.Catalog
	Version Version
	Winner  prize.Winner
}

type Store interface {
	// ReadSnapshot returns the current catalog and its version. A missing
	// catalog reads as prize.DefaultCatalog at version zero.
	ReadSnapshot(ctx context.Context) (prize.Catalog, Version, error)

	// ConditionalWrite stores commit.Catalog and appends commit.Winner only if
	// the stored version still equals commit.Version. Either both happen or
	// neither does. A zero winner timestamp is set to the commit time, and the
	// winner is returned as recorded.
	ConditionalWrite(ctx context.Context, commit Commit) (prize.Winner, error)

	// SaveCatalog overwrites the catalog regardless of its version.
	SaveCatalog(ctx context.Context, catalog prize.Catalog) error

	// RecentWinners returns at most limit winners, newest first.
	RecentWinners(ctx context.Context, limit int) ([]prize.Winner, error)

	ClearWinners(ctx context.Context) error

	SubscribeCatalog(handler func(prize.Catalog)) (cancel func())
	SubscribeWinners(handler func([]prize.Winner)) (cancel func())

	Close() error
}

// stampWinner fills a missing timestamp once the version check has passed, so
// that ledger order follows commit order.
func stampWinner(w prize.Winner) prize.Winner {
	if w.Timestamp == 0 {
		w.Timestamp = time.Now().UnixMilli()
	}

	return w
}
