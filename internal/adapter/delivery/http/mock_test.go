package http

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vadimbarashkov/smartlinks/internal/entity"
)

const anyCtx = mock.Anything

type mockSmartLinkUseCase struct {
	mock.Mock
}

func (m *mockSmartLinkUseCase) CreateSmartLink(ctx context.Context, sl *entity.SmartLink) (*entity.SmartLink, error) {
	args := m.Called(ctx, sl)
	res, _ := args.Get(0).(*entity.SmartLink)
	return res, args.Error(1)
}

func (m *mockSmartLinkUseCase) UpdateSmartLink(ctx context.Context, id int64, patch entity.SmartLinkPatch) (*entity.SmartLink, error) {
	args := m.Called(ctx, id, patch)
	res, _ := args.Get(0).(*entity.SmartLink)
	return res, args.Error(1)
}

func (m *mockSmartLinkUseCase) DeleteSmartLink(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockSmartLinkUseCase) GetSmartLink(ctx context.Context, id int64) (*entity.SmartLink, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*entity.SmartLink)
	return res, args.Error(1)
}

func (m *mockSmartLinkUseCase) GetSmartLinkStats(ctx context.Context, id int64) (*entity.SmartLink, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*entity.SmartLink)
	return res, args.Error(1)
}

func (m *mockSmartLinkUseCase) ListSmartLinks(ctx context.Context, filter entity.SmartLinkFilter, page, limit int) (*entity.SmartLinkPage, error) {
	args := m.Called(ctx, filter, page, limit)
	res, _ := args.Get(0).(*entity.SmartLinkPage)
	return res, args.Error(1)
}

func (m *mockSmartLinkUseCase) ListArtistSmartLinks(ctx context.Context, artistSlug string, publishedOnly bool) (*entity.ArtistSmartLinks, error) {
	args := m.Called(ctx, artistSlug, publishedOnly)
	res, _ := args.Get(0).(*entity.ArtistSmartLinks)
	return res, args.Error(1)
}

func (m *mockSmartLinkUseCase) ResolvePublic(ctx context.Context, artistSlug, trackSlug string) (*entity.Resolution, error) {
	args := m.Called(ctx, artistSlug, trackSlug)
	res, _ := args.Get(0).(*entity.Resolution)
	return res, args.Error(1)
}

type mockArtistUseCase struct {
	mock.Mock
}

func (m *mockArtistUseCase) CreateArtist(ctx context.Context, artist *entity.Artist) (*entity.Artist, error) {
	args := m.Called(ctx, artist)
	res, _ := args.Get(0).(*entity.Artist)
	return res, args.Error(1)
}

func (m *mockArtistUseCase) GetArtist(ctx context.Context, slug string) (*entity.Artist, error) {
	args := m.Called(ctx, slug)
	res, _ := args.Get(0).(*entity.Artist)
	return res, args.Error(1)
}

func (m *mockArtistUseCase) ListArtists(ctx context.Context) ([]*entity.Artist, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).([]*entity.Artist)
	return res, args.Error(1)
}

func (m *mockArtistUseCase) UpdateArtist(ctx context.Context, slug string, patch entity.ArtistPatch) (*entity.Artist, error) {
	args := m.Called(ctx, slug, patch)
	res, _ := args.Get(0).(*entity.Artist)
	return res, args.Error(1)
}

func (m *mockArtistUseCase) DeleteArtist(ctx context.Context, slug string) error {
	return m.Called(ctx, slug).Error(0)
}

type mockClickUseCase struct {
	mock.Mock
}

func (m *mockClickUseCase) RecordView(ctx context.Context, id int64) {
	m.Called(ctx, id)
}

func (m *mockClickUseCase) RecordPlatformClick(ctx context.Context, id int64, platform string) {
	m.Called(ctx, id, platform)
}
