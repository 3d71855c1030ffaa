package http

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/smartlinks/internal/entity"
)

const (
	statusError = "error"
	dateLayout  = "2006-01-02"
)

type linkRequest struct {
	Platform string `json:"platform" validate:"required,max=50"`
	URL      string `json:"url" validate:"required,http_url"`
}

func toLinks(req []linkRequest) []entity.Link {
	links := make([]entity.Link, 0, len(req))
	for _, l := range req {
		links = append(links, entity.Link{Platform: l.Platform, URL: l.URL})
	}
	return links
}

type trackingIDsRequest struct {
	GA4         string `json:"ga4_id" validate:"max=50"`
	GTM         string `json:"gtm_id" validate:"max=50"`
	MetaPixel   string `json:"meta_pixel_id" validate:"max=50"`
	TikTokPixel string `json:"tiktok_pixel_id" validate:"max=50"`
	GoogleAds   string `json:"google_ads_id" validate:"max=50"`
}

func (t trackingIDsRequest) toEntity() entity.TrackingIDs {
	return entity.TrackingIDs(t)
}

// parseDate parses an already validated YYYY-MM-DD value.
func parseDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}

	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil
	}
	return &t
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}

	s := t.Format(dateLayout)
	return &s
}

type createSmartLinkRequest struct {
	ArtistID      int64              `json:"artist_id" validate:"required,gt=0"`
	TrackTitle    string             `json:"track_title" validate:"required,max=150"`
	Slug          string             `json:"slug" validate:"omitempty,max=255"`
	CoverImageURL string             `json:"cover_image_url" validate:"omitempty,url"`
	ReleaseDate   *string            `json:"release_date" validate:"omitempty,datetime=2006-01-02"`
	Description   string             `json:"description" validate:"max=500"`
	PlatformLinks []linkRequest      `json:"platform_links" validate:"required,min=1,dive"`
	TrackingIDs   trackingIDsRequest `json:"tracking_ids"`
	IsPublished   bool               `json:"is_published"`
}

func (req *createSmartLinkRequest) toEntity() *entity.SmartLink {
	return &entity.SmartLink{
		ArtistID:      req.ArtistID,
		TrackTitle:    req.TrackTitle,
		Slug:          req.Slug,
		CoverImageURL: req.CoverImageURL,
		ReleaseDate:   parseDate(req.ReleaseDate),
		Description:   req.Description,
		PlatformLinks: toLinks(req.PlatformLinks),
		TrackingIDs:   req.TrackingIDs.toEntity(),
		IsPublished:   req.IsPublished,
	}
}

// updateSmartLinkRequest is a partial update; absent fields are left unchanged.
type updateSmartLinkRequest struct {
	TrackTitle    *string             `json:"track_title" validate:"omitempty,min=1,max=150"`
	Slug          *string             `json:"slug" validate:"omitempty,max=255"`
	CoverImageURL *string             `json:"cover_image_url" validate:"omitempty,url"`
	ReleaseDate   *string             `json:"release_date" validate:"omitempty,datetime=2006-01-02"`
	Description   *string             `json:"description" validate:"omitempty,max=500"`
	PlatformLinks []linkRequest       `json:"platform_links" validate:"omitempty,min=1,dive"`
	TrackingIDs   *trackingIDsRequest `json:"tracking_ids"`
	IsPublished   *bool               `json:"is_published"`
}

func (req *updateSmartLinkRequest) toPatch() entity.SmartLinkPatch {
	patch := entity.SmartLinkPatch{
		TrackTitle:    req.TrackTitle,
		Slug:          req.Slug,
		CoverImageURL: req.CoverImageURL,
		ReleaseDate:   parseDate(req.ReleaseDate),
		Description:   req.Description,
		IsPublished:   req.IsPublished,
	}

	if req.PlatformLinks != nil {
		links := toLinks(req.PlatformLinks)
		patch.PlatformLinks = &links
	}
	if req.TrackingIDs != nil {
		ids := req.TrackingIDs.toEntity()
		patch.TrackingIDs = &ids
	}

	return patch
}

type platformClickRequest struct {
	Platform string `json:"platform"`
}

type linkResponse struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

func toLinkResponses(links []entity.Link) []linkResponse {
	out := make([]linkResponse, 0, len(links))
	for _, l := range links {
		out = append(out, linkResponse{Platform: l.Platform, URL: l.URL})
	}
	return out
}

type trackingIDsResponse struct {
	GA4         string `json:"ga4_id,omitempty"`
	GTM         string `json:"gtm_id,omitempty"`
	MetaPixel   string `json:"meta_pixel_id,omitempty"`
	TikTokPixel string `json:"tiktok_pixel_id,omitempty"`
	GoogleAds   string `json:"google_ads_id,omitempty"`
}

// smartLinkResponse is the admin representation of a smartlink.
type smartLinkResponse struct {
	ID            int64               `json:"id"`
	ArtistID      int64               `json:"artist_id"`
	TrackTitle    string              `json:"track_title"`
	Slug          string              `json:"slug"`
	CoverImageURL string              `json:"cover_image_url,omitempty"`
	ReleaseDate   *string             `json:"release_date,omitempty"`
	Description   string              `json:"description,omitempty"`
	PlatformLinks []linkResponse      `json:"platform_links"`
	TrackingIDs   trackingIDsResponse `json:"tracking_ids"`
	IsPublished   bool                `json:"is_published"`
	PublishedAt   *time.Time          `json:"published_at,omitempty"`
	Stats         smartLinkStats      `json:"stats"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

type smartLinkStats struct {
	ViewCount          int64 `json:"view_count"`
	PlatformClickCount int64 `json:"platform_click_count"`
}

func toSmartLinkResponse(sl *entity.SmartLink) smartLinkResponse {
	return smartLinkResponse{
		ID:            sl.ID,
		ArtistID:      sl.ArtistID,
		TrackTitle:    sl.TrackTitle,
		Slug:          sl.Slug,
		CoverImageURL: sl.CoverImageURL,
		ReleaseDate:   formatDate(sl.ReleaseDate),
		Description:   sl.Description,
		PlatformLinks: toLinkResponses(sl.PlatformLinks),
		TrackingIDs:   trackingIDsResponse(sl.TrackingIDs),
		IsPublished:   sl.IsPublished,
		PublishedAt:   sl.PublishedAt,
		Stats: smartLinkStats{
			ViewCount:          sl.ViewCount,
			PlatformClickCount: sl.PlatformClickCount,
		},
		CreatedAt: sl.CreatedAt,
		UpdatedAt: sl.UpdatedAt,
	}
}

type smartLinkListResponse struct {
	Count      int                 `json:"count"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	SmartLinks []smartLinkResponse `json:"smartlinks"`
}

func toSmartLinkListResponse(page *entity.SmartLinkPage) smartLinkListResponse {
	items := make([]smartLinkResponse, 0, len(page.SmartLinks))
	for _, sl := range page.SmartLinks {
		items = append(items, toSmartLinkResponse(sl))
	}

	return smartLinkListResponse{
		Count:      len(items),
		Total:      page.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		SmartLinks: items,
	}
}

type smartLinkAnalyticsResponse struct {
	ID          int64          `json:"id"`
	TrackTitle  string         `json:"track_title"`
	Slug        string         `json:"slug"`
	IsPublished bool           `json:"is_published"`
	Stats       smartLinkStats `json:"stats"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func toSmartLinkAnalyticsResponse(sl *entity.SmartLink) smartLinkAnalyticsResponse {
	return smartLinkAnalyticsResponse{
		ID:          sl.ID,
		TrackTitle:  sl.TrackTitle,
		Slug:        sl.Slug,
		IsPublished: sl.IsPublished,
		Stats: smartLinkStats{
			ViewCount:          sl.ViewCount,
			PlatformClickCount: sl.PlatformClickCount,
		},
		PublishedAt: sl.PublishedAt,
		UpdatedAt:   sl.UpdatedAt,
	}
}

// publicSmartLinkResponse never carries the artist reference or counters.
type publicSmartLinkResponse struct {
	ID            int64               `json:"id"`
	TrackTitle    string              `json:"track_title"`
	Slug          string              `json:"slug"`
	CoverImageURL string              `json:"cover_image_url,omitempty"`
	ReleaseDate   *string             `json:"release_date,omitempty"`
	Description   string              `json:"description,omitempty"`
	PlatformLinks []linkResponse      `json:"platform_links"`
	TrackingIDs   trackingIDsResponse `json:"tracking_ids"`
	PublishedAt   *time.Time          `json:"published_at,omitempty"`
}

func toPublicSmartLinkResponse(sl *entity.PublicSmartLink) publicSmartLinkResponse {
	return publicSmartLinkResponse{
		ID:            sl.ID,
		TrackTitle:    sl.TrackTitle,
		Slug:          sl.Slug,
		CoverImageURL: sl.CoverImageURL,
		ReleaseDate:   formatDate(sl.ReleaseDate),
		Description:   sl.Description,
		PlatformLinks: toLinkResponses(sl.PlatformLinks),
		TrackingIDs:   trackingIDsResponse(sl.TrackingIDs),
		PublishedAt:   sl.PublishedAt,
	}
}

type artistPublicResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	ImageURL    string         `json:"image_url,omitempty"`
	WebsiteURL  string         `json:"website_url,omitempty"`
	SocialLinks []linkResponse `json:"social_links"`
}

func toArtistPublicResponse(a *entity.ArtistPublicView) artistPublicResponse {
	return artistPublicResponse{
		ID:          a.ID,
		Name:        a.Name,
		Slug:        a.Slug,
		ImageURL:    a.ImageURL,
		WebsiteURL:  a.WebsiteURL,
		SocialLinks: toLinkResponses(a.SocialLinks),
	}
}

// resolutionResponse is the smartlink with its artist nested under "artist".
type resolutionResponse struct {
	publicSmartLinkResponse
	Artist artistPublicResponse `json:"artist"`
}

func toResolutionResponse(res *entity.Resolution) resolutionResponse {
	return resolutionResponse{
		publicSmartLinkResponse: toPublicSmartLinkResponse(&res.SmartLink),
		Artist:                  toArtistPublicResponse(&res.Artist),
	}
}

type artistSmartLinksResponse struct {
	Artist     artistPublicResponse      `json:"artist"`
	Count      int                       `json:"count"`
	SmartLinks []publicSmartLinkResponse `json:"smartlinks"`
}

func toArtistSmartLinksResponse(res *entity.ArtistSmartLinks) artistSmartLinksResponse {
	items := make([]publicSmartLinkResponse, 0, len(res.SmartLinks))
	for i := range res.SmartLinks {
		items = append(items, toPublicSmartLinkResponse(&res.SmartLinks[i]))
	}

	return artistSmartLinksResponse{
		Artist:     toArtistPublicResponse(&res.Artist),
		Count:      len(items),
		SmartLinks: items,
	}
}

type artistRequest struct {
	Name        string        `json:"name" validate:"required,max=100"`
	Bio         string        `json:"bio" validate:"max=1000"`
	ImageURL    string        `json:"image_url" validate:"omitempty,url"`
	WebsiteURL  string        `json:"website_url" validate:"omitempty,url"`
	SocialLinks []linkRequest `json:"social_links" validate:"omitempty,dive"`
}

func (req *artistRequest) toEntity() *entity.Artist {
	return &entity.Artist{
		Name:        req.Name,
		Bio:         req.Bio,
		ImageURL:    req.ImageURL,
		WebsiteURL:  req.WebsiteURL,
		SocialLinks: toLinks(req.SocialLinks),
	}
}

type updateArtistRequest struct {
	Name        *string       `json:"name" validate:"omitempty,min=1,max=100"`
	Bio         *string       `json:"bio" validate:"omitempty,max=1000"`
	ImageURL    *string       `json:"image_url" validate:"omitempty,url"`
	WebsiteURL  *string       `json:"website_url" validate:"omitempty,url"`
	SocialLinks []linkRequest `json:"social_links" validate:"omitempty,dive"`
}

func (req *updateArtistRequest) toPatch() entity.ArtistPatch {
	patch := entity.ArtistPatch{
		Name:       req.Name,
		Bio:        req.Bio,
		ImageURL:   req.ImageURL,
		WebsiteURL: req.WebsiteURL,
	}

	if req.SocialLinks != nil {
		links := toLinks(req.SocialLinks)
		patch.SocialLinks = &links
	}

	return patch
}

// artistResponse is the admin representation; it exposes the internal id
// needed to attach smartlinks.
type artistResponse struct {
	ID          int64          `json:"id"`
	PublicID    string         `json:"public_id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	Bio         string         `json:"bio,omitempty"`
	ImageURL    string         `json:"image_url,omitempty"`
	WebsiteURL  string         `json:"website_url,omitempty"`
	SocialLinks []linkResponse `json:"social_links"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func toArtistResponse(a *entity.Artist) artistResponse {
	return artistResponse{
		ID:          a.ID,
		PublicID:    a.PublicID,
		Name:        a.Name,
		Slug:        a.Slug,
		Bio:         a.Bio,
		ImageURL:    a.ImageURL,
		WebsiteURL:  a.WebsiteURL,
		SocialLinks: toLinkResponses(a.SocialLinks),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Errors  []validationError `json:"errors,omitempty"`
}

func newErrorResponse(message string) errorResponse {
	return errorResponse{Status: statusError, Message: message}
}

var (
	emptyRequestBodyResponse   = newErrorResponse("empty request body")
	invalidRequestBodyResponse = newErrorResponse("invalid request body")
	invalidIDResponse          = newErrorResponse("invalid id")
	notFoundResponse           = newErrorResponse("not found")
	serverErrorResponse        = newErrorResponse("server error occurred")
)

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "url":
		return "invalid url"
	case "http_url":
		return "must be an http or https url"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "min":
		if fe.Kind().String() == "slice" {
			return "at least " + fe.Param() + " item(s) required"
		}
		return "must not be empty"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gt":
		return "must be a positive number"
	default:
		return "invalid value"
	}
}

// fieldPath drops the root struct name from a validator namespace, leaving
// the JSON path, e.g. "platform_links[0].url".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func getValidationErrors(err error) []validationError {
	var validationErrs []validationError

	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		for _, e := range errs {
			validationErrs = append(validationErrs, validationError{
				Field:   fieldPath(e),
				Message: messageForTag(e),
			})
		}
	}

	var vErr *entity.ValidationError
	if errors.As(err, &vErr) {
		for _, f := range vErr.Fields {
			validationErrs = append(validationErrs, validationError{
				Field:   f.Field,
				Message: f.Message,
			})
		}
	}

	return validationErrs
}

func validationErrorResponse(err error) errorResponse {
	return errorResponse{
		Status:  statusError,
		Message: "validation error",
		Errors:  getValidationErrors(err),
	}
}
