package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vadimbarashkov/smartlinks/internal/entity"
)

var errStoreDown = errors.New("connection refused")

// memStore is an in-memory stand-in for the postgres repositories that keeps
// the same uniqueness and reference rules.
type memStore struct {
	mu      sync.Mutex
	nextID  int64
	now     time.Time
	artists map[int64]*entity.Artist
	links   map[int64]*entity.SmartLink

	failIncrements bool
}

func newMemStore() *memStore {
	return &memStore{
		now:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		artists: make(map[int64]*entity.Artist),
		links:   make(map[int64]*entity.SmartLink),
	}
}

func (s *memStore) tick() time.Time {
	s.now = s.now.Add(time.Second)
	return s.now
}

type memArtists struct{ *memStore }

func (s memArtists) Save(_ context.Context, artist *entity.Artist) (*entity.Artist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.artists {
		if a.Name == artist.Name {
			return nil, entity.ErrArtistNameExists
		}
		if a.Slug == artist.Slug {
			return nil, entity.ErrSlugExists
		}
	}

	s.nextID++
	saved := *artist
	saved.ID = s.nextID
	saved.CreatedAt = s.tick()
	saved.UpdatedAt = saved.CreatedAt
	s.artists[saved.ID] = &saved

	out := saved
	return &out, nil
}

func (s memArtists) RetrieveByID(_ context.Context, id int64) (*entity.Artist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.artists[id]
	if !ok {
		return nil, entity.ErrArtistNotFound
	}

	out := *a
	return &out, nil
}

func (s memArtists) RetrieveBySlug(_ context.Context, slug string) (*entity.Artist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.artists {
		if a.Slug == slug {
			out := *a
			return &out, nil
		}
	}

	return nil, entity.ErrArtistNotFound
}

func (s memArtists) List(_ context.Context) ([]*entity.Artist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*entity.Artist, 0, len(s.artists))
	for _, a := range s.artists {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

func (s memArtists) SlugExists(_ context.Context, slug string, excludeID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.artists {
		if a.Slug == slug && a.ID != excludeID {
			return true, nil
		}
	}

	return false, nil
}

func (s memArtists) Update(_ context.Context, id int64, patch entity.ArtistPatch) (*entity.Artist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.artists[id]
	if !ok {
		return nil, entity.ErrArtistNotFound
	}

	for _, other := range s.artists {
		if other.ID == id {
			continue
		}
		if patch.Name != nil && other.Name == *patch.Name {
			return nil, entity.ErrArtistNameExists
		}
		if patch.Slug != nil && other.Slug == *patch.Slug {
			return nil, entity.ErrSlugExists
		}
	}

	if patch.Name != nil {
		a.Name = *patch.Name
	}
	if patch.Slug != nil {
		a.Slug = *patch.Slug
	}
	if patch.Bio != nil {
		a.Bio = *patch.Bio
	}
	if patch.ImageURL != nil {
		a.ImageURL = *patch.ImageURL
	}
	if patch.WebsiteURL != nil {
		a.WebsiteURL = *patch.WebsiteURL
	}
	if patch.SocialLinks != nil {
		a.SocialLinks = *patch.SocialLinks
	}
	a.UpdatedAt = s.tick()

	out := *a
	return &out, nil
}

func (s memArtists) Remove(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.artists[id]; !ok {
		return entity.ErrArtistNotFound
	}
	for _, sl := range s.links {
		if sl.ArtistID == id {
			return entity.ErrArtistHasSmartLinks
		}
	}

	delete(s.artists, id)
	return nil
}

type memSmartLinks struct{ *memStore }

func (s memSmartLinks) Save(_ context.Context, sl *entity.SmartLink) (*entity.SmartLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.artists[sl.ArtistID]; !ok {
		return nil, entity.ErrArtistNotFound
	}
	for _, other := range s.links {
		if other.ArtistID == sl.ArtistID && other.Slug == sl.Slug {
			return nil, entity.ErrSlugExists
		}
	}

	s.nextID++
	saved := *sl
	saved.ID = s.nextID
	saved.CreatedAt = s.tick()
	saved.UpdatedAt = saved.CreatedAt
	if saved.IsPublished {
		publishedAt := saved.CreatedAt
		saved.PublishedAt = &publishedAt
	}
	s.links[saved.ID] = &saved

	out := saved
	return &out, nil
}

func (s memSmartLinks) RetrieveByID(_ context.Context, id int64) (*entity.SmartLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.links[id]
	if !ok {
		return nil, entity.ErrSmartLinkNotFound
	}

	out := *sl
	return &out, nil
}

func (s memSmartLinks) RetrievePublished(_ context.Context, artistID int64, slug string) (*entity.SmartLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sl := range s.links {
		if sl.ArtistID == artistID && sl.Slug == slug && sl.IsPublished {
			out := *sl
			return &out, nil
		}
	}

	return nil, entity.ErrSmartLinkNotFound
}

func (s memSmartLinks) SlugExists(_ context.Context, artistID int64, slug string, excludeID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sl := range s.links {
		if sl.ArtistID == artistID && sl.Slug == slug && sl.ID != excludeID {
			return true, nil
		}
	}

	return false, nil
}

func (s memSmartLinks) List(_ context.Context, filter entity.SmartLinkFilter) ([]*entity.SmartLink, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*entity.SmartLink
	for _, sl := range s.links {
		if filter.ArtistID != nil && sl.ArtistID != *filter.ArtistID {
			continue
		}
		if filter.IsPublished != nil && sl.IsPublished != *filter.IsPublished {
			continue
		}
		cp := *sl
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return []*entity.SmartLink{}, total, nil
	}
	end := min(filter.Offset+filter.Limit, len(matched))

	return matched[filter.Offset:end], total, nil
}

func (s memSmartLinks) ListByArtistID(_ context.Context, artistID int64, publishedOnly bool) ([]*entity.SmartLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*entity.SmartLink
	for _, sl := range s.links {
		if sl.ArtistID != artistID || (publishedOnly && !sl.IsPublished) {
			continue
		}
		cp := *sl
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	return out, nil
}

func (s memSmartLinks) Update(_ context.Context, id int64, patch entity.SmartLinkPatch) (*entity.SmartLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.links[id]
	if !ok {
		return nil, entity.ErrSmartLinkNotFound
	}

	if patch.Slug != nil {
		for _, other := range s.links {
			if other.ID != id && other.ArtistID == sl.ArtistID && other.Slug == *patch.Slug {
				return nil, entity.ErrSlugExists
			}
		}
		sl.Slug = *patch.Slug
	}
	if patch.TrackTitle != nil {
		sl.TrackTitle = *patch.TrackTitle
	}
	if patch.CoverImageURL != nil {
		sl.CoverImageURL = *patch.CoverImageURL
	}
	if patch.ReleaseDate != nil {
		sl.ReleaseDate = patch.ReleaseDate
	}
	if patch.Description != nil {
		sl.Description = *patch.Description
	}
	if patch.PlatformLinks != nil {
		sl.PlatformLinks = *patch.PlatformLinks
	}
	if patch.TrackingIDs != nil {
		sl.TrackingIDs = *patch.TrackingIDs
	}
	sl.UpdatedAt = s.tick()
	if patch.IsPublished != nil {
		sl.IsPublished = *patch.IsPublished
		if sl.IsPublished && sl.PublishedAt == nil {
			publishedAt := sl.UpdatedAt
			sl.PublishedAt = &publishedAt
		}
	}

	out := *sl
	return &out, nil
}

func (s memSmartLinks) Remove(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.links[id]; !ok {
		return entity.ErrSmartLinkNotFound
	}

	delete(s.links, id)
	return nil
}

func (s memSmartLinks) IncrementViews(_ context.Context, id int64) error {
	return s.increment(id, func(st *entity.SmartLinkStats) { st.ViewCount++ })
}

func (s memSmartLinks) IncrementPlatformClicks(_ context.Context, id int64) error {
	return s.increment(id, func(st *entity.SmartLinkStats) { st.PlatformClickCount++ })
}

func (s memSmartLinks) increment(id int64, fn func(*entity.SmartLinkStats)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failIncrements {
		return errStoreDown
	}

	sl, ok := s.links[id]
	if !ok {
		return entity.ErrSmartLinkNotFound
	}

	fn(&sl.SmartLinkStats)
	return nil
}

// memCache records every invalidated key.
type memCache struct {
	mu          sync.Mutex
	entries     map[string]*entity.Resolution
	invalidated []string
	getErr      error
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]*entity.Resolution)}
}

func cacheKey(artistSlug, trackSlug string) string {
	return artistSlug + ":" + trackSlug
}

func (c *memCache) Get(_ context.Context, artistSlug, trackSlug string) (*entity.Resolution, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.entries[cacheKey(artistSlug, trackSlug)], nil
}

func (c *memCache) Set(_ context.Context, artistSlug, trackSlug string, res *entity.Resolution) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey(artistSlug, trackSlug)] = res
	return nil
}

func (c *memCache) Invalidate(_ context.Context, artistSlug string, trackSlugs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, ts := range trackSlugs {
		key := cacheKey(artistSlug, ts)
		delete(c.entries, key)
		c.invalidated = append(c.invalidated, key)
	}
	return nil
}

func (c *memCache) InvalidateArtist(_ context.Context, artistSlug string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := artistSlug + ":"
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	c.invalidated = append(c.invalidated, prefix+"*")
	return nil
}
