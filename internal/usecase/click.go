package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const defaultClickTimeout = 500 * time.Millisecond

type clickCounter interface {
	IncrementViews(ctx context.Context, id int64) error
	IncrementPlatformClicks(ctx context.Context, id int64) error
}

// ClickUseCase records views and platform click-throughs without making the
// caller wait. Each increment runs in the background on a context detached
// from the request and bounded by a timeout; failures are logged and dropped.
type ClickUseCase struct {
	counter clickCounter
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
}

func NewClickUseCase(counter clickCounter, timeout time.Duration, logger *slog.Logger) *ClickUseCase {
	if timeout <= 0 {
		timeout = defaultClickTimeout
	}

	return &ClickUseCase{
		counter: counter,
		timeout: timeout,
		logger:  logger,
	}
}

func (uc *ClickUseCase) RecordView(ctx context.Context, id int64) {
	uc.dispatch(ctx, id, uc.counter.IncrementViews, "failed to record view")
}

// RecordPlatformClick bumps the aggregate click counter. platform is only logged.
func (uc *ClickUseCase) RecordPlatformClick(ctx context.Context, id int64, platform string) {
	uc.dispatch(ctx, id, uc.counter.IncrementPlatformClicks, "failed to record platform click",
		slog.String("platform", platform),
	)
}

// Wait blocks until every pending increment has finished or timed out.
func (uc *ClickUseCase) Wait() {
	uc.wg.Wait()
}

func (uc *ClickUseCase) dispatch(
	ctx context.Context,
	id int64,
	increment func(context.Context, int64) error,
	failMsg string,
	attrs ...slog.Attr,
) {
	ctx = context.WithoutCancel(ctx)
	uc.wg.Add(1)

	go func() {
		defer uc.wg.Done()

		ctx, cancel := context.WithTimeout(ctx, uc.timeout)
		defer cancel()

		if err := increment(ctx, id); err != nil {
			attrs = append(attrs, slog.Int64("smartlink_id", id), slog.Any("err", err))
			uc.logger.LogAttrs(ctx, slog.LevelWarn, failMsg, attrs...)
		}
	}()
}
