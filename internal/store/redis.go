package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/questx-lab/prizechest/internal/prize"
	"github.com/questx-lab/prizechest/pkg/xcontext"
	"github.com/redis/go-redis/v9"
)

const (
	fieldPool     = "pool"
	fieldTargeted = "targeted"
	fieldRemove   = "remove_after_win"
	fieldVersion  = "version"
)

// redisStore keeps the catalog in a hash guarded by WATCH and the ledger in
// a capped list. Every write is announced on a pub/sub channel; each process
// reloads from redis when it hears one, including the writer itself.
type redisStore struct {
	rootCtx context.Context
	client  redis.UniversalClient
	window  int

	catalogKey string
	winnersKey string
	channel    string

	pubsub *redis.PubSub
	cancel context.CancelFunc
	done   chan struct{}

	refreshMu  sync.Mutex
	catalogHub *Hub[prize.Catalog]
	winnerHub  *Hub[[]prize.Winner]
}

// NewRedisStore namespaces every key with prefix. It returns once the
// change channel subscription is confirmed.
func NewRedisStore(ctx context.Context, client redis.UniversalClient, prefix string) (*redisStore, error) {
	s := &redisStore{
		rootCtx:    ctx,
		client:     client,
		window:     xcontext.Configs(ctx).Draw.WinnerWindow,
		catalogKey: prefix + ":catalog",
		winnersKey: prefix + ":winners",
		channel:    prefix + ":changes",
		done:       make(chan struct{}),
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

	s.pubsub = client.Subscribe(ctx, s.channel)
	if _, err := s.pubsub.Receive(ctx); err != nil {
		s.pubsub.Close()
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	listenCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	go s.listen(listenCtx, s.pubsub.Channel())

	return s, nil
}

func (s *redisStore) ReadSnapshot(ctx context.Context) (prize.Catalog, Version, error) {
	fields, err := s.client.HGetAll(ctx, s.catalogKey).Result()
	if err != nil {
		return prize.Catalog{}, 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return decodeCatalog(fields)
}

func (s *redisStore) ConditionalWrite(ctx context.Context, commit Commit) (prize.Winner, error) {
	var winner prize.Winner
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, s.catalogKey, fieldVersion).Uint64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		if Version(current) != commit.Version {
			return ErrConflict
		}

		winner = stampWinner(commit.Winner)
		payload, err := json.Marshal(winner)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.catalogKey, encodeCatalog(commit.Catalog, current+1))
			pipe.LPush(ctx, s.winnersKey, payload)
			pipe.LTrim(ctx, s.winnersKey, 0, int64(s.window)-1)
			return nil
		})
		return err
	}, s.catalogKey)

	switch {
	case err == nil:
	case errors.Is(err, ErrConflict), errors.Is(err, redis.TxFailedErr):
		return prize.Winner{}, ErrConflict
	default:
		return prize.Winner{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	s.announce(ctx, ChangeEvent{Catalog: true, Winners: true})
	return winner, nil
}

func (s *redisStore) SaveCatalog(ctx context.Context, catalog prize.Catalog) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		fields := encodeCatalog(catalog, 0)
		delete(fields, fieldVersion)
		pipe.HSet(ctx, s.catalogKey, fields)
		pipe.HIncrBy(ctx, s.catalogKey, fieldVersion, 1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	s.announce(ctx, ChangeEvent{Catalog: true})
	return nil
}

func (s *redisStore) RecentWinners(ctx context.Context, limit int) ([]prize.Winner, error) {
	if limit <= 0 {
		limit = s.window
	}

	items, err := s.client.LRange(ctx, s.winnersKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	winners := make([]prize.Winner, 0, len(items))
	for _, item := range items {
		var w prize.Winner
		if err := json.Unmarshal([]byte(item), &w); err != nil {
			xcontext.Logger(ctx).Warnf("Skip undecodable winner record: %v", err)
			continue
		}
		winners = append(winners, w)
	}

	return winners, nil
}

func (s *redisStore) ClearWinners(ctx context.Context) error {
	if err := s.client.Del(ctx, s.winnersKey).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	s.announce(ctx, ChangeEvent{Winners: true})
	return nil
}

func (s *redisStore) SubscribeCatalog(handler func(prize.Catalog)) func() {
	return s.catalogHub.Subscribe(handler)
}

func (s *redisStore) SubscribeWinners(handler func([]prize.Winner)) func() {
	return s.winnerHub.Subscribe(handler)
}

func (s *redisStore) Close() error {
	s.cancel()
	err := s.pubsub.Close()
	<-s.done

	s.catalogHub.Close()
	s.winnerHub.Close()
	return err
}

func (s *redisStore) announce(ctx context.Context, event ChangeEvent) {
	b, err := json.Marshal(event)
	if err != nil {
		return
	}

	if err := s.client.Publish(ctx, s.channel, b).Err(); err != nil {
		// Local subscribers still have to see the write.
		xcontext.Logger(s.rootCtx).Warnf("Cannot announce change: %v", err)
		s.refresh(s.rootCtx, event)
	}
}

func (s *redisStore) listen(ctx context.Context, messages <-chan *redis.Message) {
	defer close(s.done)

	for msg := range messages {
		var event ChangeEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot decode change event: %v", err)
			continue
		}

		s.refresh(ctx, event)
	}
}

func (s *redisStore) refresh(ctx context.Context, event ChangeEvent) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

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

func encodeCatalog(c prize.Catalog, version uint64) map[string]any {
	return map[string]any{
		fieldPool:     c.PoolText(),
		fieldTargeted: c.TargetedText(),
		fieldRemove:   strconv.FormatBool(c.RemoveAfterWin),
		fieldVersion:  version,
	}
}

func decodeCatalog(fields map[string]string) (prize.Catalog, Version, error) {
	if len(fields) == 0 {
		return prize.DefaultCatalog(), 0, nil
	}

	remove := true
	if v, ok := fields[fieldRemove]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return prize.Catalog{}, 0, fmt.Errorf("invalid %s: %w", fieldRemove, err)
		}
		remove = b
	}

	var version uint64
	if v, ok := fields[fieldVersion]; ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return prize.Catalog{}, 0, fmt.Errorf("invalid %s: %w", fieldVersion, err)
		}
		version = n
	}

	return prize.ParseCatalog(fields[fieldPool], fields[fieldTargeted], remove), Version(version), nil
}
