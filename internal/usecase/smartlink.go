package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/smartlinks/internal/entity"
	"github.com/vadimbarashkov/smartlinks/internal/slug"
)

const (
	defaultResolveTimeout = 2 * time.Second
	defaultPageSize       = 25
	defaultMaxPageSize    = 100
)

type smartLinkRepository interface {
	Save(ctx context.Context, sl *entity.SmartLink) (*entity.SmartLink, error)
	RetrieveByID(ctx context.Context, id int64) (*entity.SmartLink, error)
	RetrievePublished(ctx context.Context, artistID int64, slug string) (*entity.SmartLink, error)
	SlugExists(ctx context.Context, artistID int64, slug string, excludeID int64) (bool, error)
	List(ctx context.Context, filter entity.SmartLinkFilter) ([]*entity.SmartLink, int64, error)
	ListByArtistID(ctx context.Context, artistID int64, publishedOnly bool) ([]*entity.SmartLink, error)
	Update(ctx context.Context, id int64, patch entity.SmartLinkPatch) (*entity.SmartLink, error)
	Remove(ctx context.Context, id int64) error
}

type artistReader interface {
	RetrieveByID(ctx context.Context, id int64) (*entity.Artist, error)
	RetrieveBySlug(ctx context.Context, slug string) (*entity.Artist, error)
}

type SmartLinkUseCase struct {
	smartLinkRepo  smartLinkRepository
	artistRepo     artistReader
	cache          ResolutionCache
	slugs          *slug.Generator
	validate       *validator.Validate
	logger         *slog.Logger
	resolveTimeout time.Duration
	pageSize       int
	maxPageSize    int
}

type SmartLinkOption func(*SmartLinkUseCase)

// WithResolveTimeout bounds the whole public resolution, cache included.
func WithResolveTimeout(d time.Duration) SmartLinkOption {
	return func(uc *SmartLinkUseCase) {
		if d > 0 {
			uc.resolveTimeout = d
		}
	}
}

// WithPageSize sets the default and the maximum admin listing page size.
func WithPageSize(size, maxSize int) SmartLinkOption {
	return func(uc *SmartLinkUseCase) {
		if maxSize > 0 {
			uc.maxPageSize = maxSize
		}
		if size > 0 && size <= uc.maxPageSize {
			uc.pageSize = size
		}
	}
}

func NewSmartLinkUseCase(
	smartLinkRepo smartLinkRepository,
	artistRepo artistReader,
	cache ResolutionCache,
	slugs *slug.Generator,
	validate *validator.Validate,
	logger *slog.Logger,
	opts ...SmartLinkOption,
) *SmartLinkUseCase {
	uc := &SmartLinkUseCase{
		smartLinkRepo:  smartLinkRepo,
		artistRepo:     artistRepo,
		cache:          cache,
		slugs:          slugs,
		validate:       validate,
		logger:         logger,
		resolveTimeout: defaultResolveTimeout,
		pageSize:       defaultPageSize,
		maxPageSize:    defaultMaxPageSize,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// CreateSmartLink validates sl, finalizes its slug within the owning artist
// and stores it. A proposed sl.Slug is used as the slug source when set.
func (uc *SmartLinkUseCase) CreateSmartLink(ctx context.Context, sl *entity.SmartLink) (*entity.SmartLink, error) {
	const op = "usecase.SmartLinkUseCase.CreateSmartLink"

	if err := validateSmartLink(uc.validate, sl); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := uc.artistRepo.RetrieveByID(ctx, sl.ArtistID); err != nil {
		return nil, fmt.Errorf("%s: failed to get artist: %w", op, storeError(err))
	}

	source := sl.Slug
	if source == "" {
		source = sl.TrackTitle
	}

	candidate := *sl
	candidate.SmartLinkStats = entity.SmartLinkStats{}

	for i := 0; i < maxSlugWrites; i++ {
		s, err := uc.slugs.Generate(ctx, source, sl.ArtistID, uc.smartLinkRepo.SlugExists, 0)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate slug: %w", op, storeError(err))
		}
		candidate.Slug = s

		saved, err := uc.smartLinkRepo.Save(ctx, &candidate)
		if err != nil {
			if errors.Is(err, entity.ErrSlugExists) {
				continue
			}
			return nil, fmt.Errorf("%s: failed to save smartlink: %w", op, storeError(err))
		}

		return saved, nil
	}

	return nil, fmt.Errorf("%s: %w", op, entity.ErrSlugConflict)
}

// UpdateSmartLink applies patch to the smartlink with the given id. The slug
// is regenerated when the title changes or a different slug is proposed; the
// proposed slug wins as the source when both are present.
func (uc *SmartLinkUseCase) UpdateSmartLink(ctx context.Context, id int64, patch entity.SmartLinkPatch) (*entity.SmartLink, error) {
	const op = "usecase.SmartLinkUseCase.UpdateSmartLink"

	if err := validateSmartLinkPatch(uc.validate, &patch); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	current, err := uc.smartLinkRepo.RetrieveByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get smartlink: %w", op, storeError(err))
	}

	titleChanged := patch.TrackTitle != nil && *patch.TrackTitle != current.TrackTitle
	slugProposed := patch.Slug != nil && *patch.Slug != "" && *patch.Slug != current.Slug

	var source string
	switch {
	case slugProposed:
		source = *patch.Slug
	case titleChanged:
		source = *patch.TrackTitle
	}
	patch.Slug = nil

	for i := 0; i < maxSlugWrites; i++ {
		if source != "" {
			s, err := uc.slugs.Generate(ctx, source, current.ArtistID, uc.smartLinkRepo.SlugExists, current.ID)
			if err != nil {
				return nil, fmt.Errorf("%s: failed to generate slug: %w", op, storeError(err))
			}
			patch.Slug = &s
		}

		updated, err := uc.smartLinkRepo.Update(ctx, id, patch)
		if err != nil {
			if source != "" && errors.Is(err, entity.ErrSlugExists) {
				continue
			}
			return nil, fmt.Errorf("%s: failed to update smartlink: %w", op, storeError(err))
		}

		uc.invalidate(ctx, current.ArtistID, current.Slug, updated.Slug)
		return updated, nil
	}

	return nil, fmt.Errorf("%s: %w", op, entity.ErrSlugConflict)
}

func (uc *SmartLinkUseCase) DeleteSmartLink(ctx context.Context, id int64) error {
	const op = "usecase.SmartLinkUseCase.DeleteSmartLink"

	current, err := uc.smartLinkRepo.RetrieveByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: failed to get smartlink: %w", op, storeError(err))
	}

	if err := uc.smartLinkRepo.Remove(ctx, id); err != nil {
		return fmt.Errorf("%s: failed to delete smartlink: %w", op, storeError(err))
	}

	uc.invalidate(ctx, current.ArtistID, current.Slug)
	return nil
}

func (uc *SmartLinkUseCase) GetSmartLink(ctx context.Context, id int64) (*entity.SmartLink, error) {
	const op = "usecase.SmartLinkUseCase.GetSmartLink"

	sl, err := uc.smartLinkRepo.RetrieveByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get smartlink: %w", op, storeError(err))
	}

	return sl, nil
}

func (uc *SmartLinkUseCase) GetSmartLinkStats(ctx context.Context, id int64) (*entity.SmartLink, error) {
	const op = "usecase.SmartLinkUseCase.GetSmartLinkStats"

	sl, err := uc.smartLinkRepo.RetrieveByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get smartlink stats: %w", op, storeError(err))
	}

	return sl, nil
}

// ListSmartLinks returns one page of smartlinks, newest first. Out of range
// page and limit values are clamped.
func (uc *SmartLinkUseCase) ListSmartLinks(ctx context.Context, filter entity.SmartLinkFilter, page, limit int) (*entity.SmartLinkPage, error) {
	const op = "usecase.SmartLinkUseCase.ListSmartLinks"

	if page < 1 {
		page = 1
	}
	switch {
	case limit < 1:
		limit = uc.pageSize
	case limit > uc.maxPageSize:
		limit = uc.maxPageSize
	}

	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	items, total, err := uc.smartLinkRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list smartlinks: %w", op, storeError(err))
	}

	return &entity.SmartLinkPage{
		SmartLinks: items,
		Total:      total,
		Page:       page,
		Limit:      limit,
	}, nil
}

// ListArtistSmartLinks returns the artist found by artistSlug with its
// smartlinks. Drafts are included only when publishedOnly is false.
func (uc *SmartLinkUseCase) ListArtistSmartLinks(ctx context.Context, artistSlug string, publishedOnly bool) (*entity.ArtistSmartLinks, error) {
	const op = "usecase.SmartLinkUseCase.ListArtistSmartLinks"

	artist, err := uc.artistRepo.RetrieveBySlug(ctx, artistSlug)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get artist: %w", op, storeError(err))
	}

	items, err := uc.smartLinkRepo.ListByArtistID(ctx, artist.ID, publishedOnly)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list smartlinks: %w", op, storeError(err))
	}

	res := &entity.ArtistSmartLinks{
		Artist:     artist.PublicView(),
		SmartLinks: make([]entity.PublicSmartLink, 0, len(items)),
	}
	for _, sl := range items {
		res.SmartLinks = append(res.SmartLinks, sl.PublicView())
	}

	return res, nil
}

// ResolvePublic finds the published smartlink addressed by the two slugs.
// Unknown artists, unknown tracks and drafts all fail with a not found kind.
// Resolutions are served from the cache when present; cache failures only
// cost the fallback to the store.
func (uc *SmartLinkUseCase) ResolvePublic(ctx context.Context, artistSlug, trackSlug string) (*entity.Resolution, error) {
	const op = "usecase.SmartLinkUseCase.ResolvePublic"

	ctx, cancel := context.WithTimeout(ctx, uc.resolveTimeout)
	defer cancel()

	cached, err := uc.cache.Get(ctx, artistSlug, trackSlug)
	if err != nil {
		uc.logger.WarnContext(ctx, "failed to read cached resolution",
			slog.String("artist_slug", artistSlug),
			slog.String("track_slug", trackSlug),
			slog.Any("err", err),
		)
	}
	if cached != nil {
		return cached, nil
	}

	artist, err := uc.artistRepo.RetrieveBySlug(ctx, artistSlug)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get artist: %w", op, storeError(err))
	}

	sl, err := uc.smartLinkRepo.RetrievePublished(ctx, artist.ID, trackSlug)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get smartlink: %w", op, storeError(err))
	}

	res := &entity.Resolution{
		SmartLink: sl.PublicView(),
		Artist:    artist.PublicView(),
	}

	if err := uc.cache.Set(ctx, artistSlug, trackSlug, res); err != nil {
		uc.logger.WarnContext(ctx, "failed to cache resolution",
			slog.String("artist_slug", artistSlug),
			slog.String("track_slug", trackSlug),
			slog.Any("err", err),
		)
	}

	return res, nil
}

func (uc *SmartLinkUseCase) invalidate(ctx context.Context, artistID int64, trackSlugs ...string) {
	artist, err := uc.artistRepo.RetrieveByID(ctx, artistID)
	if err == nil {
		err = uc.cache.Invalidate(ctx, artist.Slug, trackSlugs...)
	}

	if err != nil {
		uc.logger.WarnContext(ctx, "failed to invalidate cached resolutions",
			slog.Int64("artist_id", artistID),
			slog.Any("track_slugs", trackSlugs),
			slog.Any("err", err),
		)
	}
}
