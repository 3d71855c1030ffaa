// Package usecase implements the smartlink and artist business rules: slug
// finalization, validation before writes, public resolution and click accounting.
package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/vadimbarashkov/smartlinks/internal/entity"
)

// maxSlugWrites bounds how often a write is attempted when the store reports
// a slug collision that slipped past the probe.
const maxSlugWrites = 2

// ResolutionCache stores public resolutions keyed by artist and track slug.
// Get returns nil, nil on a miss.
type ResolutionCache interface {
	Get(ctx context.Context, artistSlug, trackSlug string) (*entity.Resolution, error)
	Set(ctx context.Context, artistSlug, trackSlug string, res *entity.Resolution) error
	Invalidate(ctx context.Context, artistSlug string, trackSlugs ...string) error
	InvalidateArtist(ctx context.Context, artistSlug string) error
}

// NopCache is a ResolutionCache that never hits.
type NopCache struct{}

func (NopCache) Get(context.Context, string, string) (*entity.Resolution, error) { return nil, nil }

func (NopCache) Set(context.Context, string, string, *entity.Resolution) error { return nil }

func (NopCache) Invalidate(context.Context, string, ...string) error { return nil }

func (NopCache) InvalidateArtist(context.Context, string) error { return nil }

var domainErrors = []error{
	entity.ErrArtistNotFound,
	entity.ErrArtistNameExists,
	entity.ErrArtistHasSmartLinks,
	entity.ErrSmartLinkNotFound,
	entity.ErrSlugExists,
	entity.ErrSlugConflict,
	entity.ErrSlugExhausted,
	entity.ErrStoreUnavailable,
}

// storeError tags err as a datastore failure unless it already carries a domain kind.
func storeError(err error) error {
	var vErr *entity.ValidationError
	if errors.As(err, &vErr) {
		return err
	}

	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return err
		}
	}

	return fmt.Errorf("%w: %w", entity.ErrStoreUnavailable, err)
}
