// Package postgres implements the artist and smartlink repositories on top of sqlx.
package postgres

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vadimbarashkov/smartlinks/internal/entity"
)

const (
	uniqueViolationErrCode     = "23505"
	foreignKeyViolationErrCode = "23503"

	artistNameConstraint = "artists_name_key"
)

func asPgError(err error, code string) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == code {
		return pgErr, true
	}
	return nil, false
}

func isUniqueViolationError(err error) bool {
	_, ok := asPgError(err, uniqueViolationErrCode)
	return ok
}

func isForeignKeyViolationError(err error) bool {
	_, ok := asPgError(err, foreignKeyViolationErrCode)
	return ok
}

func violatedConstraint(err error) string {
	if pgErr, ok := asPgError(err, uniqueViolationErrCode); ok {
		return pgErr.ConstraintName
	}
	return ""
}

type linkDB struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// linksDB is a JSONB array of links.
type linksDB []linkDB

func toLinksDB(links []entity.Link) linksDB {
	out := make(linksDB, 0, len(links))
	for _, l := range links {
		out = append(out, linkDB{Platform: l.Platform, URL: l.URL})
	}
	return out
}

func (l linksDB) toEntity() []entity.Link {
	out := make([]entity.Link, 0, len(l))
	for _, v := range l {
		out = append(out, entity.Link{Platform: v.Platform, URL: v.URL})
	}
	return out
}

func (l linksDB) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}

	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *linksDB) Scan(src any) error {
	return scanJSON(src, l)
}

type trackingIDsDB struct {
	GA4         string `json:"ga4_id,omitempty"`
	GTM         string `json:"gtm_id,omitempty"`
	MetaPixel   string `json:"meta_pixel_id,omitempty"`
	TikTokPixel string `json:"tiktok_pixel_id,omitempty"`
	GoogleAds   string `json:"google_ads_id,omitempty"`
}

func toTrackingIDsDB(ids entity.TrackingIDs) trackingIDsDB {
	return trackingIDsDB(ids)
}

func (t trackingIDsDB) toEntity() entity.TrackingIDs {
	return entity.TrackingIDs(t)
}

func (t trackingIDsDB) Value() (driver.Value, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *trackingIDsDB) Scan(src any) error {
	return scanJSON(src, t)
}

func scanJSON(src any, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
}
