package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/smartlinks/internal/entity"
	"github.com/vadimbarashkov/smartlinks/internal/slug"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

type artistRepository interface {
	Save(ctx context.Context, artist *entity.Artist) (*entity.Artist, error)
	RetrieveByID(ctx context.Context, id int64) (*entity.Artist, error)
	RetrieveBySlug(ctx context.Context, slug string) (*entity.Artist, error)
	List(ctx context.Context) ([]*entity.Artist, error)
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
	Update(ctx context.Context, id int64, patch entity.ArtistPatch) (*entity.Artist, error)
	Remove(ctx context.Context, id int64) error
}

type ArtistUseCase struct {
	artistRepo artistRepository
	cache      ResolutionCache
	slugs      *slug.Generator
	validate   *validator.Validate
	logger     *slog.Logger
}

func NewArtistUseCase(
	artistRepo artistRepository,
	cache ResolutionCache,
	slugs *slug.Generator,
	validate *validator.Validate,
	logger *slog.Logger,
) *ArtistUseCase {
	return &ArtistUseCase{
		artistRepo: artistRepo,
		cache:      cache,
		slugs:      slugs,
		validate:   validate,
		logger:     logger,
	}
}

func (uc *ArtistUseCase) slugExists(ctx context.Context, _ int64, s string, excludeID int64) (bool, error) {
	return uc.artistRepo.SlugExists(ctx, s, excludeID)
}

func (uc *ArtistUseCase) CreateArtist(ctx context.Context, artist *entity.Artist) (*entity.Artist, error) {
	const op = "usecase.ArtistUseCase.CreateArtist"

	if err := validateArtist(uc.validate, artist); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	publicID, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to generate public id: %w", op, err)
	}

	candidate := *artist
	candidate.PublicID = publicID

	for i := 0; i < maxSlugWrites; i++ {
		s, err := uc.slugs.Generate(ctx, artist.Name, 0, uc.slugExists, 0)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate slug: %w", op, storeError(err))
		}
		candidate.Slug = s

		saved, err := uc.artistRepo.Save(ctx, &candidate)
		if err != nil {
			if errors.Is(err, entity.ErrSlugExists) {
				continue
			}
			return nil, fmt.Errorf("%s: failed to save artist: %w", op, storeError(err))
		}

		return saved, nil
	}

	return nil, fmt.Errorf("%s: %w", op, entity.ErrSlugConflict)
}

func (uc *ArtistUseCase) GetArtist(ctx context.Context, artistSlug string) (*entity.Artist, error) {
	const op = "usecase.ArtistUseCase.GetArtist"

	artist, err := uc.artistRepo.RetrieveBySlug(ctx, artistSlug)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get artist: %w", op, storeError(err))
	}

	return artist, nil
}

func (uc *ArtistUseCase) ListArtists(ctx context.Context) ([]*entity.Artist, error) {
	const op = "usecase.ArtistUseCase.ListArtists"

	artists, err := uc.artistRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list artists: %w", op, storeError(err))
	}

	return artists, nil
}

// UpdateArtist applies patch to the artist found by artistSlug. A rename
// regenerates the slug and drops every cached resolution under the old one.
func (uc *ArtistUseCase) UpdateArtist(ctx context.Context, artistSlug string, patch entity.ArtistPatch) (*entity.Artist, error) {
	const op = "usecase.ArtistUseCase.UpdateArtist"

	patch.Slug = nil
	if err := validateArtistPatch(uc.validate, &patch); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	current, err := uc.artistRepo.RetrieveBySlug(ctx, artistSlug)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get artist: %w", op, storeError(err))
	}

	renamed := patch.Name != nil && *patch.Name != current.Name

	for i := 0; i < maxSlugWrites; i++ {
		if renamed {
			s, err := uc.slugs.Generate(ctx, *patch.Name, 0, uc.slugExists, current.ID)
			if err != nil {
				return nil, fmt.Errorf("%s: failed to generate slug: %w", op, storeError(err))
			}
			patch.Slug = &s
		}

		updated, err := uc.artistRepo.Update(ctx, current.ID, patch)
		if err != nil {
			if renamed && errors.Is(err, entity.ErrSlugExists) {
				continue
			}
			return nil, fmt.Errorf("%s: failed to update artist: %w", op, storeError(err))
		}

		uc.invalidateArtist(ctx, current.Slug)
		return updated, nil
	}

	return nil, fmt.Errorf("%s: %w", op, entity.ErrSlugConflict)
}

// DeleteArtist removes an artist that owns no smartlinks.
func (uc *ArtistUseCase) DeleteArtist(ctx context.Context, artistSlug string) error {
	const op = "usecase.ArtistUseCase.DeleteArtist"

	current, err := uc.artistRepo.RetrieveBySlug(ctx, artistSlug)
	if err != nil {
		return fmt.Errorf("%s: failed to get artist: %w", op, storeError(err))
	}

	if err := uc.artistRepo.Remove(ctx, current.ID); err != nil {
		return fmt.Errorf("%s: failed to delete artist: %w", op, storeError(err))
	}

	uc.invalidateArtist(ctx, current.Slug)
	return nil
}

func (uc *ArtistUseCase) invalidateArtist(ctx context.Context, artistSlug string) {
	if err := uc.cache.InvalidateArtist(ctx, artistSlug); err != nil {
		uc.logger.WarnContext(ctx, "failed to invalidate artist resolutions",
			slog.String("artist_slug", artistSlug),
			slog.Any("err", err),
		)
	}
}
