package entity

import (
	"strings"
	"time"
)

// TrackingIDs holds the analytics identifiers injected into a smartlink landing page.
type TrackingIDs struct {
	GA4         string
	GTM         string
	MetaPixel   string
	TikTokPixel string
	GoogleAds   string
}

// SmartLink maps one track of an artist to its streaming-platform URLs.
type SmartLink struct {
	ID            int64      // ID is the unique identifier of the smartlink in the database.
	ArtistID      int64      // ArtistID references the owning artist; it scopes slug uniqueness.
	TrackTitle    string     // TrackTitle is the title the slug is derived from.
	Slug          string     // Slug is unique within the owning artist.
	CoverImageURL string     // CoverImageURL points to the release artwork.
	ReleaseDate   *time.Time // ReleaseDate is the optional release day.
	Description   string     // Description is free text shown on the landing page.
	PlatformLinks []Link     // PlatformLinks is the ordered list of streaming destinations.
	TrackingIDs   TrackingIDs
	IsPublished   bool       // IsPublished gates every public surface.
	PublishedAt   *time.Time // PublishedAt is set the first time the smartlink is published.
	SmartLinkStats
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SmartLinkStats contains the click accounting counters of a smartlink.
type SmartLinkStats struct {
	ViewCount          int64 // ViewCount is the number of public page resolutions.
	PlatformClickCount int64 // PlatformClickCount is the number of click-throughs to any platform.
}

// SmartLinkPatch is a partial smartlink update. Nil fields are left unchanged.
type SmartLinkPatch struct {
	TrackTitle    *string
	Slug          *string
	CoverImageURL *string
	ReleaseDate   *time.Time
	Description   *string
	PlatformLinks *[]Link
	TrackingIDs   *TrackingIDs
	IsPublished   *bool
}

// SmartLinkFilter narrows an admin listing.
type SmartLinkFilter struct {
	ArtistID    *int64
	IsPublished *bool
	Limit       int
	Offset      int
}

// PublicSmartLink is a smartlink as shown to fans. It carries no artist reference
// and no counters.
type PublicSmartLink struct {
	ID            int64
	TrackTitle    string
	Slug          string
	CoverImageURL string
	ReleaseDate   *time.Time
	Description   string
	PlatformLinks []Link
	TrackingIDs   TrackingIDs
	PublishedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PublicView strips the artist back-reference and counters from the smartlink.
func (s *SmartLink) PublicView() PublicSmartLink {
	return PublicSmartLink{
		ID:            s.ID,
		TrackTitle:    s.TrackTitle,
		Slug:          s.Slug,
		CoverImageURL: s.CoverImageURL,
		ReleaseDate:   s.ReleaseDate,
		Description:   s.Description,
		PlatformLinks: s.PlatformLinks,
		TrackingIDs:   s.TrackingIDs,
		PublishedAt:   s.PublishedAt,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

// PlatformURL returns the URL registered for platform, matched case-insensitively.
func (s *PublicSmartLink) PlatformURL(platform string) (string, bool) {
	for _, l := range s.PlatformLinks {
		if strings.EqualFold(l.Platform, platform) {
			return l.URL, true
		}
	}
	return "", false
}

// Resolution is the merged public view of a published smartlink and its artist.
type Resolution struct {
	SmartLink PublicSmartLink
	Artist    ArtistPublicView
}

// ArtistSmartLinks is the public listing of an artist's published smartlinks.
type ArtistSmartLinks struct {
	Artist     ArtistPublicView
	SmartLinks []PublicSmartLink
}

// SmartLinkPage is one page of an admin listing.
type SmartLinkPage struct {
	SmartLinks []*SmartLink
	Total      int64
	Page       int
	Limit      int
}
