package redis

import (
	"time"

	"github.com/vadimbarashkov/smartlinks/internal/entity"
)

type linkJSON struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

func toLinksJSON(links []entity.Link) []linkJSON {
	out := make([]linkJSON, 0, len(links))
	for _, l := range links {
		out = append(out, linkJSON{Platform: l.Platform, URL: l.URL})
	}
	return out
}

func fromLinksJSON(links []linkJSON) []entity.Link {
	out := make([]entity.Link, 0, len(links))
	for _, l := range links {
		out = append(out, entity.Link{Platform: l.Platform, URL: l.URL})
	}
	return out
}

type trackingIDsJSON struct {
	GA4         string `json:"ga4_id,omitempty"`
	GTM         string `json:"gtm_id,omitempty"`
	MetaPixel   string `json:"meta_pixel_id,omitempty"`
	TikTokPixel string `json:"tiktok_pixel_id,omitempty"`
	GoogleAds   string `json:"google_ads_id,omitempty"`
}

type smartLinkJSON struct {
	ID            int64           `json:"id"`
	TrackTitle    string          `json:"track_title"`
	Slug          string          `json:"slug"`
	CoverImageURL string          `json:"cover_image_url,omitempty"`
	ReleaseDate   *time.Time      `json:"release_date,omitempty"`
	Description   string          `json:"description,omitempty"`
	PlatformLinks []linkJSON      `json:"platform_links"`
	TrackingIDs   trackingIDsJSON `json:"tracking_ids"`
	PublishedAt   *time.Time      `json:"published_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type artistJSON struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	ImageURL    string     `json:"image_url,omitempty"`
	WebsiteURL  string     `json:"website_url,omitempty"`
	SocialLinks []linkJSON `json:"social_links"`
}

type resolutionJSON struct {
	SmartLink smartLinkJSON `json:"smartlink"`
	Artist    artistJSON    `json:"artist"`
}

func toResolutionJSON(res *entity.Resolution) resolutionJSON {
	sl, a := res.SmartLink, res.Artist

	return resolutionJSON{
		SmartLink: smartLinkJSON{
			ID:            sl.ID,
			TrackTitle:    sl.TrackTitle,
			Slug:          sl.Slug,
			CoverImageURL: sl.CoverImageURL,
			ReleaseDate:   sl.ReleaseDate,
			Description:   sl.Description,
			PlatformLinks: toLinksJSON(sl.PlatformLinks),
			TrackingIDs:   trackingIDsJSON(sl.TrackingIDs),
			PublishedAt:   sl.PublishedAt,
			CreatedAt:     sl.CreatedAt,
			UpdatedAt:     sl.UpdatedAt,
		},
		Artist: artistJSON{
			ID:          a.ID,
			Name:        a.Name,
			Slug:        a.Slug,
			ImageURL:    a.ImageURL,
			WebsiteURL:  a.WebsiteURL,
			SocialLinks: toLinksJSON(a.SocialLinks),
		},
	}
}

func (r *resolutionJSON) toEntity() *entity.Resolution {
	sl, a := r.SmartLink, r.Artist

	return &entity.Resolution{
		SmartLink: entity.PublicSmartLink{
			ID:            sl.ID,
			TrackTitle:    sl.TrackTitle,
			Slug:          sl.Slug,
			CoverImageURL: sl.CoverImageURL,
			ReleaseDate:   sl.ReleaseDate,
			Description:   sl.Description,
			PlatformLinks: fromLinksJSON(sl.PlatformLinks),
			TrackingIDs:   entity.TrackingIDs(sl.TrackingIDs),
			PublishedAt:   sl.PublishedAt,
			CreatedAt:     sl.CreatedAt,
			UpdatedAt:     sl.UpdatedAt,
		},
		Artist: entity.ArtistPublicView{
			ID:          a.ID,
			Name:        a.Name,
			Slug:        a.Slug,
			ImageURL:    a.ImageURL,
			WebsiteURL:  a.WebsiteURL,
			SocialLinks: fromLinksJSON(a.SocialLinks),
		},
	}
}
