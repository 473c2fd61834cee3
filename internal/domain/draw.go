package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/questx-lab/prizechest/internal/common"
	"github.com/questx-lab/prizechest/internal/model"
	"github.com/questx-lab/prizechest/internal/prize"
	"github.com/questx-lab/prizechest/internal/store"
	"github.com/questx-lab/prizechest/pkg/crypto"
	"github.com/questx-lab/prizechest/pkg/enum"
	"github.com/questx-lab/prizechest/pkg/errorx"
	"github.com/questx-lab/prizechest/pkg/xcontext"
)

type DrawDomain interface {
	Claim(context.Context, *model.ClaimPrizeRequest) (*model.ClaimPrizeResponse, error)
	GetConfig(context.Context, *model.GetConfigRequest) (*model.GetConfigResponse, error)
	SaveConfig(context.Context, *model.SaveConfigRequest) (*model.SaveConfigResponse, error)
	GetWinners(context.Context, *model.GetWinnersRequest) (*model.GetWinnersResponse, error)
	ClearWinners(context.Context, *model.ClearWinnersRequest) (*model.ClearWinnersResponse, error)
}

type drawDomain struct {
	store     store.Store
	newRandom func() prize.RandomSource
}

func NewDrawDomain(s store.Store) *drawDomain {
	return &drawDomain{
		store:     s,
		newRandom: func() prize.RandomSource { return crypto.Source{} },
	}
}

// Claim resolves one claim and commits it with an optimistic write. When
// another claim commits first the whole cycle is repeated on a fresh
// snapshot, up to the configured number of attempts.
func (d *drawDomain) Claim(
	ctx context.Context, req *model.ClaimPrizeRequest,
) (*model.ClaimPrizeResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errorx.New(errorx.BadRequest, "Name must not be empty")
	}

	cfg := xcontext.Configs(ctx).Draw
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		catalog, version, err := d.store.ReadSnapshot(ctx)
		if err != nil {
			return nil, d.claimFailure(ctx, err)
		}

		outcome, next := prize.Resolve(name, catalog, d.newRandom())
		winner, err := d.store.ConditionalWrite(ctx, store.Commit{
			Catalog: next,
			Version: version,
			Winner: prize.Winner{
				ID:           newWinnerID(ctx),
				ClaimantName: name,
				PrizeLabel:   outcome.Label,
			},
		})
		if err == nil {
			kind := enum.ToString(outcome.Kind)
			common.PromCounters[common.PrizeClaimTotal].WithLabelValues(kind).Inc()
			xcontext.Logger(ctx).Infof("Claim committed: name=%s kind=%s label=%s attempt=%d",
				name, kind, outcome.Label, attempt)

			return &model.ClaimPrizeResponse{
				Outcome: model.ConvertOutcome(outcome),
				Winner:  model.ConvertWinner(winner),
			}, nil
		}

		if !errors.Is(err, store.ErrConflict) {
			return nil, d.claimFailure(ctx, err)
		}

		common.PromCounters[common.PrizeClaimConflictTotal].WithLabelValues().Inc()
		xcontext.Logger(ctx).Debugf("Claim conflict: name=%s version=%d attempt=%d", name, version, attempt)

		if attempt < cfg.MaxAttempts {
			if err := backoff(ctx, cfg.RetryBackoff.Duration*time.Duration(attempt)); err != nil {
				return nil, d.claimFailure(ctx, err)
			}
		}
	}

	common.PromCounters[common.PrizeClaimFailureTotal].WithLabelValues("contention").Inc()
	xcontext.Logger(ctx).Warnf("Claim gave up after %d conflicts: name=%s", cfg.MaxAttempts, name)
	return nil, errorx.New(errorx.ConflictExhausted, "The draw is busy, please try again")
}

func (d *drawDomain) GetConfig(
	ctx context.Context, req *model.GetConfigRequest,
) (*model.GetConfigResponse, error) {
	catalog, _, err := d.store.ReadSnapshot(ctx)
	if err != nil {
		return nil, d.storeFailure(ctx, err)
	}

	return &model.GetConfigResponse{Config: model.ConvertDrawConfig(catalog)}, nil
}

// SaveConfig overwrites the catalog. Claims computed against the previous
// catalog fail their conditional write and retry on the new one.
func (d *drawDomain) SaveConfig(
	ctx context.Context, req *model.SaveConfigRequest,
) (*model.SaveConfigResponse, error) {
	catalog := prize.ParseCatalog(req.PrizePoolText, req.TargetedPrizesText, req.RemoveAfterWin)
	if err := d.store.SaveCatalog(ctx, catalog); err != nil {
		return nil, d.storeFailure(ctx, err)
	}

	return &model.SaveConfigResponse{Config: model.ConvertDrawConfig(catalog)}, nil
}

func (d *drawDomain) GetWinners(
	ctx context.Context, req *model.GetWinnersRequest,
) (*model.GetWinnersResponse, error) {
	window := xcontext.Configs(ctx).Draw.WinnerWindow
	limit := req.Limit
	if limit <= 0 || limit > window {
		limit = window
	}

	winners, err := d.store.RecentWinners(ctx, limit)
	if err != nil {
		return nil, d.storeFailure(ctx, err)
	}

	return &model.GetWinnersResponse{Winners: model.ConvertWinners(winners)}, nil
}

func (d *drawDomain) ClearWinners(
	ctx context.Context, req *model.ClearWinnersRequest,
) (*model.ClearWinnersResponse, error) {
	if err := d.store.ClearWinners(ctx); err != nil {
		return nil, d.storeFailure(ctx, err)
	}

	return &model.ClearWinnersResponse{}, nil
}

// claimFailure is storeFailure for Claim, which also counts the failure.
func (d *drawDomain) claimFailure(ctx context.Context, err error) error {
	reason := "store"
	if isCancelled(err) {
		reason = "cancelled"
	}
	common.PromCounters[common.PrizeClaimFailureTotal].WithLabelValues(reason).Inc()

	return d.storeFailure(ctx, err)
}

func (d *drawDomain) storeFailure(ctx context.Context, err error) error {
	if isCancelled(err) {
		return errorx.New(errorx.Unavailable, "The request was cancelled")
	}

	xcontext.Logger(ctx).Errorf("Store failure: %v", err)
	return errorx.New(errorx.StoreUnavailable, "Cannot connect to the prize store")
}

func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func newWinnerID(ctx context.Context) string {
	if node := xcontext.SnowFlake(ctx); node != nil {
		return node.Generate().String()
	}

	return uuid.NewString()
}

func backoff(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
