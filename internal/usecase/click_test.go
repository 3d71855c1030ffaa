package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadimbarashkov/smartlinks/internal/entity"
	"golang.org/x/sync/errgroup"
)

func newClickFixture(t *testing.T) (*memStore, *entity.SmartLink, *ClickUseCase) {
	t.Helper()

	store := newMemStore()
	artist, err := memArtists{store}.Save(context.Background(), &entity.Artist{Name: "A", Slug: "a"})
	require.NoError(t, err)
	sl, err := memSmartLinks{store}.Save(context.Background(), &entity.SmartLink{ArtistID: artist.ID, Slug: "s", IsPublished: true})
	require.NoError(t, err)

	return store, sl, NewClickUseCase(memSmartLinks{store}, 0, discardLogger())
}

func TestClickUseCase_ConcurrentViews(t *testing.T) {
	store, sl, uc := newClickFixture(t)

	var g errgroup.Group
	for i := 0; i < 50; i++ {
		g.Go(func() error {
			uc.RecordView(context.Background(), sl.ID)
			return nil
		})
	}
	require.NoError(t, g.Wait())
	uc.Wait()

	got, err := memSmartLinks{store}.RetrieveByID(context.Background(), sl.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), got.ViewCount)
	assert.Zero(t, got.PlatformClickCount)
}

func TestClickUseCase_PlatformClicks(t *testing.T) {
	store, sl, uc := newClickFixture(t)

	uc.RecordPlatformClick(context.Background(), sl.ID, "spotify")
	uc.RecordPlatformClick(context.Background(), sl.ID, "")
	uc.Wait()

	got, err := memSmartLinks{store}.RetrieveByID(context.Background(), sl.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.PlatformClickCount)
	assert.Zero(t, got.ViewCount)
}

func TestClickUseCase_FailuresAreSwallowed(t *testing.T) {
	store, sl, uc := newClickFixture(t)

	uc.RecordView(context.Background(), sl.ID)
	uc.Wait()

	store.mu.Lock()
	store.failIncrements = true
	store.mu.Unlock()

	assert.NotPanics(t, func() {
		uc.RecordView(context.Background(), sl.ID)
		uc.RecordPlatformClick(context.Background(), sl.ID, "spotify")
		uc.RecordView(context.Background(), 999)
		uc.Wait()
	})

	got, err := memSmartLinks{store}.RetrieveByID(context.Background(), sl.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ViewCount)
}

func TestClickUseCase_CanceledRequestStillCounts(t *testing.T) {
	store, sl, uc := newClickFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	uc.RecordView(ctx, sl.ID)
	uc.Wait()

	got, err := memSmartLinks{store}.RetrieveByID(context.Background(), sl.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ViewCount)
}

type blockingCounter struct{}

func (blockingCounter) IncrementViews(ctx context.Context, _ int64) error {
	<-ctx.Done()
	return ctx.Err()
}

func (blockingCounter) IncrementPlatformClicks(ctx context.Context, _ int64) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestClickUseCase_SlowStoreDoesNotBlockCaller(t *testing.T) {
	uc := NewClickUseCase(blockingCounter{}, 100*time.Millisecond, discardLogger())

	start := time.Now()
	uc.RecordView(context.Background(), 1)
	uc.RecordPlatformClick(context.Background(), 1, "spotify")
	assert.Less(t, time.Since(start), 50*time.Millisecond)

	uc.Wait()
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}
