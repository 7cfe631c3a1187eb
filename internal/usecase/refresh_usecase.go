package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/user/price-tracker/internal/entity"
	"github.com/user/price-tracker/internal/repository"
	"github.com/user/price-tracker/pkg/metrics"
)

const defaultLockTTL = 30 * time.Minute

// Refresher defines the price refresh job.
type Refresher interface {
	// RefreshAll re-extracts every competitor and stores the new prices.
	// Extraction failures are reported in the returned report; only storage
	// errors (or cancellation) abort the pass.
	RefreshAll(ctx context.Context) (*entity.RefreshReport, error)
}

// RefreshOptions tunes how a refresh pass uses the extraction service.
type RefreshOptions struct {
	// Concurrency caps parallel extractions. Values below 1 mean sequential.
	Concurrency int
	// RatePerSecond paces extraction calls. Zero or less disables pacing.
	RatePerSecond float64
	// LockTTL bounds how long a crashed pass can hold the run lock.
	LockTTL time.Duration
}

type outcomeKind int

const (
	outcomeNone outcomeKind = iota // not processed, the pass was aborted first
	outcomeUpdated
	outcomeFailed
	outcomeVanished
)

type refreshOutcome struct {
	kind    outcomeKind
	failure entity.RefreshFailure
}

type refreshUseCase struct {
	competitorRepo repository.CompetitorRepository
	extractor      repository.Extractor
	lock           repository.RunLock
	opts           RefreshOptions
	limiter        *rate.Limiter
	logger         *zap.Logger
	now            func() time.Time
}

// NewRefresher creates the price refresh use case.
func NewRefresher(
	competitorRepo repository.CompetitorRepository,
	extractor repository.Extractor,
	lock repository.RunLock,
	opts RefreshOptions,
	logger *zap.Logger,
) Refresher {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = defaultLockTTL
	}
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	return &refreshUseCase{
		competitorRepo: competitorRepo,
		extractor:      extractor,
		lock:           lock,
		opts:           opts,
		limiter:        rate.NewLimiter(limit, 1),
		logger:         logger,
		now:            time.Now,
	}
}

func (uc *refreshUseCase) RefreshAll(ctx context.Context) (*entity.RefreshReport, error) {
	release, ok, err := uc.lock.TryAcquire(ctx, uc.opts.LockTTL)
	if err != nil {
		metrics.RefreshRunsTotal.WithLabelValues("aborted").Inc()
		return nil, fmt.Errorf("failed to acquire refresh lock: %w", err)
	}
	if !ok {
		metrics.RefreshRunsTotal.WithLabelValues("skipped").Inc()
		return nil, ErrRefreshInProgress
	}
	defer func() {
		if err := release(); err != nil {
			uc.logger.Warn("Failed to release refresh lock, it stays held until its TTL", zap.Error(err))
		}
	}()

	report := &entity.RefreshReport{StartedAt: uc.now().UTC(), Failures: []entity.RefreshFailure{}}

	competitors, err := uc.competitorRepo.FindAll(ctx)
	if err != nil {
		metrics.RefreshRunsTotal.WithLabelValues("aborted").Inc()
		return nil, fmt.Errorf("failed to list competitors: %w", err)
	}
	report.Total = len(competitors)
	uc.logger.Info("Starting price refresh", zap.Int("competitors", report.Total), zap.Int("concurrency", uc.opts.Concurrency))

	outcomes := make([]refreshOutcome, len(competitors))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.opts.Concurrency)
	for i, c := range competitors {
		g.Go(func() error {
			out, err := uc.refreshOne(gctx, c)
			outcomes[i] = out
			return err
		})
	}
	runErr := g.Wait()

	for _, out := range outcomes {
		switch out.kind {
		case outcomeUpdated:
			report.Updated++
		case outcomeFailed:
			report.Failed++
			report.Failures = append(report.Failures, out.failure)
		case outcomeVanished:
			report.Skipped++
		}
	}
	report.FinishedAt = uc.now().UTC()

	if runErr != nil {
		metrics.RefreshRunsTotal.WithLabelValues("aborted").Inc()
		uc.logger.Error("Price refresh aborted",
			zap.Int("updated", report.Updated),
			zap.Int("failed", report.Failed),
			zap.Int("total", report.Total),
			zap.Error(runErr),
		)
		return report, runErr
	}

	metrics.RefreshRunsTotal.WithLabelValues("completed").Inc()
	uc.logger.Info("Price refresh completed",
		zap.Int("updated", report.Updated),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
		zap.Int("total", report.Total),
		zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, nil
}

// refreshOne returns an error only when the whole pass must stop.
func (uc *refreshUseCase) refreshOne(ctx context.Context, c *entity.Competitor) (refreshOutcome, error) {
	if err := ctx.Err(); err != nil {
		return refreshOutcome{}, err
	}
	if err := uc.limiter.Wait(ctx); err != nil {
		return refreshOutcome{}, err
	}

	extraction, err := uc.extractor.Extract(ctx, c.URL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return refreshOutcome{}, ctxErr
		}
		metrics.CompetitorsRefreshedTotal.WithLabelValues("failed").Inc()
		uc.logger.Warn("Failed to refresh competitor price",
			zap.String("competitor_id", c.ID),
			zap.String("name", c.Name),
			zap.String("url", c.URL),
			zap.Error(err),
		)
		return refreshOutcome{
			kind: outcomeFailed,
			failure: entity.RefreshFailure{
				CompetitorID: c.ID,
				URL:          c.URL,
				Reason:       err.Error(),
			},
		}, nil
	}

	err = uc.competitorRepo.UpdatePrice(ctx, c.ID, extraction.Price, extraction.CheckedAt)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.CompetitorsRefreshedTotal.WithLabelValues("vanished").Inc()
		uc.logger.Info("Competitor deleted during refresh, skipping", zap.String("competitor_id", c.ID))
		return refreshOutcome{kind: outcomeVanished}, nil
	}
	if err != nil {
		return refreshOutcome{}, fmt.Errorf("failed to store price for competitor %s: %w", c.ID, err)
	}

	metrics.CompetitorsRefreshedTotal.WithLabelValues("updated").Inc()
	uc.logger.Info("Updated competitor price",
		zap.String("competitor_id", c.ID),
		zap.String("name", c.Name),
		zap.Float64("price", extraction.Price),
	)
	return refreshOutcome{kind: outcomeUpdated}, nil
}
