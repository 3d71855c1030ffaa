package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vadimbarashkov/smartlinks/internal/entity"
)

type mockSmartLinkRepository struct {
	mock.Mock
}

func (m *mockSmartLinkRepository) Save(ctx context.Context, sl *entity.SmartLink) (*entity.SmartLink, error) {
	args := m.Called(ctx, sl)
	res, _ := args.Get(0).(*entity.SmartLink)
	return res, args.Error(1)
}

func (m *mockSmartLinkRepository) RetrieveByID(ctx context.Context, id int64) (*entity.SmartLink, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*entity.SmartLink)
	return res, args.Error(1)
}

func (m *mockSmartLinkRepository) RetrievePublished(ctx context.Context, artistID int64, slug string) (*entity.SmartLink, error) {
	args := m.Called(ctx, artistID, slug)
	res, _ := args.Get(0).(*entity.SmartLink)
	return res, args.Error(1)
}

func (m *mockSmartLinkRepository) SlugExists(ctx context.Context, artistID int64, slug string, excludeID int64) (bool, error) {
	args := m.Called(ctx, artistID, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockSmartLinkRepository) List(ctx context.Context, filter entity.SmartLinkFilter) ([]*entity.SmartLink, int64, error) {
	args := m.Called(ctx, filter)
	res, _ := args.Get(0).([]*entity.SmartLink)
	return res, args.Get(1).(int64), args.Error(2)
}

func (m *mockSmartLinkRepository) ListByArtistID(ctx context.Context, artistID int64, publishedOnly bool) ([]*entity.SmartLink, error) {
	args := m.Called(ctx, artistID, publishedOnly)
	res, _ := args.Get(0).([]*entity.SmartLink)
	return res, args.Error(1)
}

func (m *mockSmartLinkRepository) Update(ctx context.Context, id int64, patch entity.SmartLinkPatch) (*entity.SmartLink, error) {
	args := m.Called(ctx, id, patch)
	res, _ := args.Get(0).(*entity.SmartLink)
	return res, args.Error(1)
}

func (m *mockSmartLinkRepository) Remove(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockArtistReader struct {
	mock.Mock
}

func (m *mockArtistReader) RetrieveByID(ctx context.Context, id int64) (*entity.Artist, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*entity.Artist)
	return res, args.Error(1)
}

func (m *mockArtistReader) RetrieveBySlug(ctx context.Context, slug string) (*entity.Artist, error) {
	args := m.Called(ctx, slug)
	res, _ := args.Get(0).(*entity.Artist)
	return res, args.Error(1)
}
