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

type smartLinkDB struct {
	ID                 int64         `db:"id"`
	ArtistID           int64         `db:"artist_id"`
	TrackTitle         string        `db:"track_title"`
	Slug               string        `db:"slug"`
	CoverImageURL      string        `db:"cover_image_url"`
	ReleaseDate        *time.Time    `db:"release_date"`
	Description        string        `db:"description"`
	PlatformLinks      linksDB       `db:"platform_links"`
	TrackingIDs        trackingIDsDB `db:"tracking_ids"`
	IsPublished        bool          `db:"is_published"`
	PublishedAt        *time.Time    `db:"published_at"`
	ViewCount          int64         `db:"view_count"`
	PlatformClickCount int64         `db:"platform_click_count"`
	CreatedAt          time.Time     `db:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at"`
}

func (s *smartLinkDB) toEntity() *entity.SmartLink {
	return &entity.SmartLink{
		ID:            s.ID,
		ArtistID:      s.ArtistID,
		TrackTitle:    s.TrackTitle,
		Slug:          s.Slug,
		CoverImageURL: s.CoverImageURL,
		ReleaseDate:   s.ReleaseDate,
		Description:   s.Description,
		PlatformLinks: s.PlatformLinks.toEntity(),
		TrackingIDs:   s.TrackingIDs.toEntity(),
		IsPublished:   s.IsPublished,
		PublishedAt:   s.PublishedAt,
		SmartLinkStats: entity.SmartLinkStats{
			ViewCount:          s.ViewCount,
			PlatformClickCount: s.PlatformClickCount,
		},
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toSmartLinks(rows []smartLinkDB) []*entity.SmartLink {
	out := make([]*entity.SmartLink, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toEntity())
	}
	return out
}

type SmartLinkRepository struct {
	db *sqlx.DB
}

func NewSmartLinkRepository(db *sqlx.DB) *SmartLinkRepository {
	return &SmartLinkRepository{db: db}
}

func (r *SmartLinkRepository) Save(ctx context.Context, sl *entity.SmartLink) (*entity.SmartLink, error) {
	const op = "adapter.repository.postgres.SmartLinkRepository.Save"
	const query = `
		INSERT INTO smartlinks (
			artist_id, track_title, slug, cover_image_url, release_date,
			description, platform_links, tracking_ids, is_published, published_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, CASE WHEN $9::boolean THEN NOW() END)
		RETURNING *`

	var s smartLinkDB

	err := r.db.GetContext(ctx, &s, query,
		sl.ArtistID,
		sl.TrackTitle,
		sl.Slug,
		sl.CoverImageURL,
		sl.ReleaseDate,
		sl.Description,
		toLinksDB(sl.PlatformLinks),
		toTrackingIDsDB(sl.TrackingIDs),
		sl.IsPublished,
	)
	if err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrSlugExists)
		}
		if isForeignKeyViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrArtistNotFound)
		}

		return nil, fmt.Errorf("%s: failed to insert into smartlinks table: %w", op, err)
	}

	return s.toEntity(), nil
}

func (r *SmartLinkRepository) RetrieveByID(ctx context.Context, id int64) (*entity.SmartLink, error) {
	const op = "adapter.repository.postgres.SmartLinkRepository.RetrieveByID"
	const query = `SELECT * FROM smartlinks WHERE id = $1`

	var s smartLinkDB

	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrSmartLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from smartlinks table: %w", op, err)
	}

	return s.toEntity(), nil
}

// RetrievePublished finds a published smartlink of the artist. Drafts are reported as not found.
func (r *SmartLinkRepository) RetrievePublished(ctx context.Context, artistID int64, slug string) (*entity.SmartLink, error) {
	const op = "adapter.repository.postgres.SmartLinkRepository.RetrievePublished"
	const query = `SELECT * FROM smartlinks WHERE artist_id = $1 AND slug = $2 AND is_published`

	var s smartLinkDB

	if err := r.db.GetContext(ctx, &s, query, artistID, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrSmartLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from smartlinks table: %w", op, err)
	}

	return s.toEntity(), nil
}

func (r *SmartLinkRepository) SlugExists(ctx context.Context, artistID int64, slug string, excludeID int64) (bool, error) {
	const op = "adapter.repository.postgres.SmartLinkRepository.SlugExists"
	const query = `SELECT EXISTS (SELECT 1 FROM smartlinks WHERE artist_id = $1 AND slug = $2 AND id <> $3)`

	var exists bool

	if err := r.db.GetContext(ctx, &exists, query, artistID, slug, excludeID); err != nil {
		return false, fmt.Errorf("%s: failed to check slug in smartlinks table: %w", op, err)
	}

	return exists, nil
}

func (r *SmartLinkRepository) List(ctx context.Context, filter entity.SmartLinkFilter) ([]*entity.SmartLink, int64, error) {
	const op = "adapter.repository.postgres.SmartLinkRepository.List"
	const where = `WHERE ($1::bigint IS NULL OR artist_id = $1) AND ($2::boolean IS NULL OR is_published = $2)`
	const countQuery = `SELECT COUNT(*) FROM smartlinks ` + where
	const listQuery = `SELECT * FROM smartlinks ` + where + ` ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`

	var total int64

	if err := r.db.GetContext(ctx, &total, countQuery, filter.ArtistID, filter.IsPublished); err != nil {
		return nil, 0, fmt.Errorf("%s: failed to count smartlinks table rows: %w", op, err)
	}

	var rows []smartLinkDB

	err := r.db.SelectContext(ctx, &rows, listQuery, filter.ArtistID, filter.IsPublished, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to select from smartlinks table: %w", op, err)
	}

	return toSmartLinks(rows), total, nil
}

// ListByArtistID returns the artist's smartlinks, latest release first.
func (r *SmartLinkRepository) ListByArtistID(ctx context.Context, artistID int64, publishedOnly bool) ([]*entity.SmartLink, error) {
	const op = "adapter.repository.postgres.SmartLinkRepository.ListByArtistID"
	const query = `
		SELECT * FROM smartlinks
		WHERE artist_id = $1 AND (NOT $2::boolean OR is_published)
		ORDER BY release_date DESC NULLS LAST, created_at DESC`

	var rows []smartLinkDB

	if err := r.db.SelectContext(ctx, &rows, query, artistID, publishedOnly); err != nil {
		return nil, fmt.Errorf("%s: failed to select from smartlinks table: %w", op, err)
	}

	return toSmartLinks(rows), nil
}

// Update applies the non-nil fields of patch. published_at is stamped the
// first time the smartlink becomes published and kept afterwards.
func (r *SmartLinkRepository) Update(ctx context.Context, id int64, patch entity.SmartLinkPatch) (*entity.SmartLink, error) {
	const op = "adapter.repository.postgres.SmartLinkRepository.Update"
	const query = `
		UPDATE smartlinks SET
			track_title = COALESCE($1, track_title),
			slug = COALESCE($2, slug),
			cover_image_url = COALESCE($3, cover_image_url),
			release_date = COALESCE($4, release_date),
			description = COALESCE($5, description),
			platform_links = COALESCE($6, platform_links),
			tracking_ids = COALESCE($7, tracking_ids),
			is_published = COALESCE($8, is_published),
			published_at = CASE
				WHEN COALESCE($8, is_published) AND published_at IS NULL THEN NOW()
				ELSE published_at
			END,
			updated_at = NOW()
		WHERE id = $9
		RETURNING *`

	var platformLinks, trackingIDs any
	if patch.PlatformLinks != nil {
		platformLinks = toLinksDB(*patch.PlatformLinks)
	}
	if patch.TrackingIDs != nil {
		trackingIDs = toTrackingIDsDB(*patch.TrackingIDs)
	}

	var s smartLinkDB

	err := r.db.GetContext(ctx, &s, query,
		patch.TrackTitle,
		patch.Slug,
		patch.CoverImageURL,
		patch.ReleaseDate,
		patch.Description,
		platformLinks,
		trackingIDs,
		patch.IsPublished,
		id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrSmartLinkNotFound)
		}
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrSlugExists)
		}

		return nil, fmt.Errorf("%s: failed to update smartlinks table row: %w", op, err)
	}

	return s.toEntity(), nil
}

func (r *SmartLinkRepository) Remove(ctx context.Context, id int64) error {
	const op = "adapter.repository.postgres.SmartLinkRepository.Remove"
	const query = `DELETE FROM smartlinks WHERE id = $1`

	return r.execOne(ctx, op, query, id)
}

// IncrementViews adds one view in a single statement so concurrent calls never lose updates.
func (r *SmartLinkRepository) IncrementViews(ctx context.Context, id int64) error {
	const op = "adapter.repository.postgres.SmartLinkRepository.IncrementViews"
	const query = `UPDATE smartlinks SET view_count = view_count + 1 WHERE id = $1`

	return r.execOne(ctx, op, query, id)
}

func (r *SmartLinkRepository) IncrementPlatformClicks(ctx context.Context, id int64) error {
	const op = "adapter.repository.postgres.SmartLinkRepository.IncrementPlatformClicks"
	const query = `UPDATE smartlinks SET platform_click_count = platform_click_count + 1 WHERE id = $1`

	return r.execOne(ctx, op, query, id)
}

func (r *SmartLinkRepository) execOne(ctx context.Context, op, query string, id int64) error {
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: failed to modify smartlinks table: %w", op, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get number of affected rows: %w", op, err)
	}

	if rowsAffected != 1 {
		return fmt.Errorf("%s: %w", op, entity.ErrSmartLinkNotFound)
	}

	return nil
}
