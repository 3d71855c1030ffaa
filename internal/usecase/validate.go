package usecase

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/smartlinks/internal/entity"
)

const (
	maxArtistNameLen  = 100
	maxBioLen         = 1000
	maxTrackTitleLen  = 150
	maxDescriptionLen = 500
	maxTrackingIDLen  = 50
)

type fieldChecker struct {
	validate *validator.Validate
	errs     entity.ValidationError
}

func newFieldChecker(validate *validator.Validate) *fieldChecker {
	return &fieldChecker{validate: validate}
}

func (c *fieldChecker) required(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		c.errs.Add(field, "this field is required")
		return false
	}
	return true
}

func (c *fieldChecker) maxLen(field, value string, n int) {
	if c.validate.Var(value, fmt.Sprintf("max=%d", n)) != nil {
		c.errs.Add(field, fmt.Sprintf("must be at most %d characters", n))
	}
}

// url checks value only when it is set.
func (c *fieldChecker) url(field, value string) {
	if value == "" {
		return
	}
	if c.validate.Var(value, "url") != nil {
		c.errs.Add(field, "invalid url")
	}
}

// linkURL accepts only absolute http and https URLs.
func (c *fieldChecker) linkURL(field, value string) {
	if c.validate.Var(value, "http_url") != nil {
		c.errs.Add(field, "must be an http or https url")
	}
}

// links requires every entry to carry a platform name and an http(s) URL.
func (c *fieldChecker) links(field string, links []entity.Link, atLeastOne bool) {
	if atLeastOne && len(links) == 0 {
		c.errs.Add(field, "at least one link is required")
		return
	}

	for i, l := range links {
		prefix := fmt.Sprintf("%s[%d]", field, i)

		c.required(prefix+".platform", l.Platform)
		if c.required(prefix+".url", l.URL) {
			c.linkURL(prefix+".url", l.URL)
		}
	}
}

func (c *fieldChecker) trackingIDs(ids entity.TrackingIDs) {
	c.maxLen("tracking_ids.ga4_id", ids.GA4, maxTrackingIDLen)
	c.maxLen("tracking_ids.gtm_id", ids.GTM, maxTrackingIDLen)
	c.maxLen("tracking_ids.meta_pixel_id", ids.MetaPixel, maxTrackingIDLen)
	c.maxLen("tracking_ids.tiktok_pixel_id", ids.TikTokPixel, maxTrackingIDLen)
	c.maxLen("tracking_ids.google_ads_id", ids.GoogleAds, maxTrackingIDLen)
}

func (c *fieldChecker) err() error {
	return c.errs.OrNil()
}

func validateSmartLink(validate *validator.Validate, sl *entity.SmartLink) error {
	c := newFieldChecker(validate)

	if sl.ArtistID <= 0 {
		c.errs.Add("artist_id", "this field is required")
	}
	if c.required("track_title", sl.TrackTitle) {
		c.maxLen("track_title", sl.TrackTitle, maxTrackTitleLen)
	}
	c.url("cover_image_url", sl.CoverImageURL)
	c.maxLen("description", sl.Description, maxDescriptionLen)
	c.links("platform_links", sl.PlatformLinks, true)
	c.trackingIDs(sl.TrackingIDs)

	return c.err()
}

func validateSmartLinkPatch(validate *validator.Validate, p *entity.SmartLinkPatch) error {
	c := newFieldChecker(validate)

	if p.TrackTitle != nil && c.required("track_title", *p.TrackTitle) {
		c.maxLen("track_title", *p.TrackTitle, maxTrackTitleLen)
	}
	if p.CoverImageURL != nil {
		c.url("cover_image_url", *p.CoverImageURL)
	}
	if p.Description != nil {
		c.maxLen("description", *p.Description, maxDescriptionLen)
	}
	if p.PlatformLinks != nil {
		c.links("platform_links", *p.PlatformLinks, true)
	}
	if p.TrackingIDs != nil {
		c.trackingIDs(*p.TrackingIDs)
	}

	return c.err()
}

func validateArtist(validate *validator.Validate, a *entity.Artist) error {
	c := newFieldChecker(validate)

	if c.required("name", a.Name) {
		c.maxLen("name", a.Name, maxArtistNameLen)
	}
	c.maxLen("bio", a.Bio, maxBioLen)
	c.url("image_url", a.ImageURL)
	c.url("website_url", a.WebsiteURL)
	c.links("social_links", a.SocialLinks, false)

	return c.err()
}

func validateArtistPatch(validate *validator.Validate, p *entity.ArtistPatch) error {
	c := newFieldChecker(validate)

	if p.Name != nil && c.required("name", *p.Name) {
		c.maxLen("name", *p.Name, maxArtistNameLen)
	}
	if p.Bio != nil {
		c.maxLen("bio", *p.Bio, maxBioLen)
	}
	if p.ImageURL != nil {
		c.url("image_url", *p.ImageURL)
	}
	if p.WebsiteURL != nil {
		c.url("website_url", *p.WebsiteURL)
	}
	if p.SocialLinks != nil {
		c.links("social_links", *p.SocialLinks, false)
	}

	return c.err()
}
