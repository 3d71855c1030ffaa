package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/smartlinks/internal/entity"
)

type artistDB struct {
	ID          int64     `db:"id"`
	PublicID    string    `db:"public_id"`
	Name        string    `db:"name"`
	Slug        string    `db:"slug"`
	Bio         string    `db:"bio"`
	ImageURL    string    `db:"image_url"`
	WebsiteURL  string    `db:"website_url"`
	SocialLinks linksDB   `db:"social_links"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (a *artistDB) toEntity() *entity.Artist {
	return &entity.Artist{
		ID:          a.ID,
		PublicID:    a.PublicID,
		Name:        a.Name,
		Slug:        a.Slug,
		Bio:         a.Bio,
		ImageURL:    a.ImageURL,
		WebsiteURL:  a.WebsiteURL,
		SocialLinks: a.SocialLinks.toEntity(),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

type ArtistRepository struct {
	db *sqlx.DB
}

func NewArtistRepository(db *sqlx.DB) *ArtistRepository {
	return &ArtistRepository{db: db}
}

// uniqueViolation tells a duplicate name apart from a lost slug race.
func (r *ArtistRepository) uniqueViolation(err error) error {
	if violatedConstraint(err) == artistNameConstraint {
		return entity.ErrArtistNameExists
	}
	return entity.ErrSlugExists
}

func (r *ArtistRepository) Save(ctx context.Context, artist *entity.Artist) (*entity.Artist, error) {
	const op = "adapter.repository.postgres.ArtistRepository.Save"
	const query = `
		INSERT INTO artists (public_id, name, slug, bio, image_url, website_url, social_links)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING *`

	var a artistDB

	err := r.db.GetContext(ctx, &a, query,
		artist.PublicID,
		artist.Name,
		artist.Slug,
		artist.Bio,
		artist.ImageURL,
		artist.WebsiteURL,
		toLinksDB(artist.SocialLinks),
	)
	if err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, r.uniqueViolation(err))
		}

		return nil, fmt.Errorf("%s: failed to insert into artists table: %w", op, err)
	}

	return a.toEntity(), nil
}

func (r *ArtistRepository) RetrieveByID(ctx context.Context, id int64) (*entity.Artist, error) {
	const op = "adapter.repository.postgres.ArtistRepository.RetrieveByID"
	const query = `SELECT * FROM artists WHERE id = $1`

	var a artistDB

	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrArtistNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from artists table: %w", op, err)
	}

	return a.toEntity(), nil
}

func (r *ArtistRepository) RetrieveBySlug(ctx context.Context, slug string) (*entity.Artist, error) {
	const op = "adapter.repository.postgres.ArtistRepository.RetrieveBySlug"
	const query = `SELECT * FROM artists WHERE slug = $1`

	var a artistDB

	if err := r.db.GetContext(ctx, &a, query, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrArtistNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from artists table: %w", op, err)
	}

	return a.toEntity(), nil
}

func (r *ArtistRepository) List(ctx context.Context) ([]*entity.Artist, error) {
	const op = "adapter.repository.postgres.ArtistRepository.List"
	const query = `SELECT * FROM artists ORDER BY name`

	var rows []artistDB

	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("%s: failed to select from artists table: %w", op, err)
	}

	artists := make([]*entity.Artist, 0, len(rows))
	for i := range rows {
		artists = append(artists, rows[i].toEntity())
	}

	return artists, nil
}

func (r *ArtistRepository) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	const op = "adapter.repository.postgres.ArtistRepository.SlugExists"
	const query = `SELECT EXISTS (SELECT 1 FROM artists WHERE slug = $1 AND id <> $2)`

	var exists bool

	if err := r.db.GetContext(ctx, &exists, query, slug, excludeID); err != nil {
		return false, fmt.Errorf("%s: failed to check slug in artists table: %w", op, err)
	}

	return exists, nil
}

func (r *ArtistRepository) Update(ctx context.Context, id int64, patch entity.ArtistPatch) (*entity.Artist, error) {
	const op = "adapter.repository.postgres.ArtistRepository.Update"
	const query = `
		UPDATE artists SET
			name = COALESCE($1, name),
			slug = COALESCE($2, slug),
			bio = COALESCE($3, bio),
			image_url = COALESCE($4, image_url),
			website_url = COALESCE($5, website_url),
			social_links = COALESCE($6, social_links),
			updated_at = NOW()
		WHERE id = $7
		RETURNING *`

	var socialLinks any
	if patch.SocialLinks != nil {
		socialLinks = toLinksDB(*patch.SocialLinks)
	}

	var a artistDB

	err := r.db.GetContext(ctx, &a, query,
		patch.Name,
		patch.Slug,
		patch.Bio,
		patch.ImageURL,
		patch.WebsiteURL,
		socialLinks,
		id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrArtistNotFound)
		}
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, r.uniqueViolation(err))
		}

		return nil, fmt.Errorf("%s: failed to update artists table row: %w", op, err)
	}

	return a.toEntity(), nil
}

func (r *ArtistRepository) Remove(ctx context.Context, id int64) error {
	const op = "adapter.repository.postgres.ArtistRepository.Remove"
	const query = `DELETE FROM artists WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		if isForeignKeyViolationError(err) {
			return fmt.Errorf("%s: %w", op, entity.ErrArtistHasSmartLinks)
		}

		return fmt.Errorf("%s: failed to delete from artists table: %w", op, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get number of affected rows: %w", op, err)
	}

	if rowsAffected != 1 {
		return fmt.Errorf("%s: %w", op, entity.ErrArtistNotFound)
	}

	return nil
}
