// Package entity defines the entities and errors used in the application.
// It includes the Artist and SmartLink structs, the explicit partial-update
// patches applied to them, the public views returned to fans, and the error
// values shared by every layer.
package entity

import "time"

// Link is a named URL, used both for an artist's social links and a smartlink's platform links.
type Link struct {
	Platform string // Platform is the service name, e.g. "spotify".
	URL      string // URL is the destination on that service.
}

// Artist represents an artist that owns smartlinks.
type Artist struct {
	ID          int64     // ID is the internal identifier of the artist in the database.
	PublicID    string    // PublicID is the only artist identifier exposed on public surfaces.
	Name        string    // Name is the unique display name.
	Slug        string    // Slug is the unique URL segment derived from Name.
	Bio         string    // Bio is the free-text biography.
	ImageURL    string    // ImageURL points to the artist picture.
	WebsiteURL  string    // WebsiteURL is the artist's own site.
	SocialLinks []Link    // SocialLinks is the ordered list of social profiles.
	CreatedAt   time.Time // CreatedAt is the timestamp when the artist was created.
	UpdatedAt   time.Time // UpdatedAt is the timestamp when the artist was last updated.
}

// ArtistPatch is a partial artist update. Nil fields are left unchanged.
type ArtistPatch struct {
	Name        *string
	Bio         *string
	ImageURL    *string
	WebsiteURL  *string
	SocialLinks *[]Link

	// Slug is set by the use case when Name changes; callers never fill it.
	Slug *string
}

// ArtistPublicView is the subset of artist fields returned to public callers.
type ArtistPublicView struct {
	ID          string // ID is the artist's PublicID.
	Name        string
	Slug        string
	ImageURL    string
	WebsiteURL  string
	SocialLinks []Link
}

// PublicView strips internal fields from the artist.
func (a *Artist) PublicView() ArtistPublicView {
	return ArtistPublicView{
		ID:          a.PublicID,
		Name:        a.Name,
		Slug:        a.Slug,
		ImageURL:    a.ImageURL,
		WebsiteURL:  a.WebsiteURL,
		SocialLinks: a.SocialLinks,
	}
}
