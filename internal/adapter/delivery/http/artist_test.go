package http

import (
	"errors"
	"net/http"

	"github.com/stretchr/testify/mock"
	"github.com/vadimbarashkov/smartlinks/internal/entity"
)

func testArtist() *entity.Artist {
	return &entity.Artist{
		ID:          1,
		PublicID:    "V1StGXR8_Z5jdHi6B-myT",
		Name:        "Test Artist",
		Slug:        "test-artist",
		Bio:         "Bio",
		WebsiteURL:  "https://artist.example.com",
		SocialLinks: []entity.Link{{Platform: "instagram", URL: "https://instagram.com/test"}},
		CreatedAt:   testTime,
		UpdatedAt:   testTime,
	}
}

func (suite *HandlersTestSuite) TestCreateArtist() {
	const path = "/api/v1/artists"

	suite.Run("validation error", func() {
		resp := suite.admin(http.MethodPost, path).
			WithJSON(map[string]any{
				"name":        "",
				"website_url": "not a url",
				"social_links": []map[string]string{
					{"platform": "instagram", "url": "bad"},
				},
			}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object()

		errs := resp.Value("errors").Array()
		errs.Length().IsEqual(3)
		errs.ContainsAny(map[string]any{"field": "name", "message": "this field is required"})
		errs.ContainsAny(map[string]any{"field": "social_links[0].url", "message": "must be an http or https url"})
	})

	suite.Run("name exists", func() {
		suite.artistUCMock.
			On("CreateArtist", anyCtx, mock.Anything).
			Once().
			Return(nil, entity.ErrArtistNameExists)

		suite.admin(http.MethodPost, path).
			WithJSON(map[string]any{"name": "Test Artist"}).
			Expect().
			Status(http.StatusConflict).
			JSON().Object().
			HasValue("message", "artist name exists")
	})

	suite.Run("success", func() {
		suite.artistUCMock.
			On("CreateArtist", anyCtx, mock.MatchedBy(func(a *entity.Artist) bool {
				return a.Name == "Test Artist" && len(a.SocialLinks) == 1 && a.Slug == ""
			})).
			Once().
			Return(testArtist(), nil)

		resp := suite.admin(http.MethodPost, path).
			WithJSON(map[string]any{
				"name": "Test Artist",
				"social_links": []map[string]string{
					{"platform": "instagram", "url": "https://instagram.com/test"},
				},
			}).
			Expect().
			Status(http.StatusCreated).
			JSON().Object()

		resp.HasValue("id", 1)
		resp.HasValue("public_id", "V1StGXR8_Z5jdHi6B-myT")
		resp.HasValue("slug", "test-artist")
		resp.Value("social_links").Array().Length().IsEqual(1)
	})
}

func (suite *HandlersTestSuite) TestListArtists() {
	const path = "/api/v1/artists"

	suite.Run("server error", func() {
		suite.artistUCMock.
			On("ListArtists", anyCtx).
			Once().
			Return(nil, errors.New("unknown error"))

		suite.e.GET(path).
			Expect().
			Status(http.StatusInternalServerError)
	})

	suite.Run("public view", func() {
		suite.artistUCMock.
			On("ListArtists", anyCtx).
			Once().
			Return([]*entity.Artist{testArtist()}, nil)

		artist := suite.e.GET(path).
			Expect().
			Status(http.StatusOK).
			JSON().Array().Value(0).Object()

		artist.HasValue("id", "V1StGXR8_Z5jdHi6B-myT")
		artist.HasValue("name", "Test Artist")
		artist.NotContainsKey("public_id")
		artist.NotContainsKey("bio")
		artist.NotContainsKey("created_at")
	})
}

func (suite *HandlersTestSuite) TestGetArtist() {
	const path = "/api/v1/artists/{slug}"

	suite.Run("not found", func() {
		suite.artistUCMock.
			On("GetArtist", anyCtx, "nobody").
			Once().
			Return(nil, entity.ErrArtistNotFound)

		suite.e.GET(path, "nobody").
			Expect().
			Status(http.StatusNotFound).
			JSON().Object().
			HasValue("message", "not found")
	})

	suite.Run("success", func() {
		suite.artistUCMock.
			On("GetArtist", anyCtx, "test-artist").
			Once().
			Return(testArtist(), nil)

		suite.e.GET(path, "test-artist").
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			HasValue("id", "V1StGXR8_Z5jdHi6B-myT").
			HasValue("website_url", "https://artist.example.com")
	})
}

func (suite *HandlersTestSuite) TestUpdateArtist() {
	const path = "/api/v1/artists/{slug}"

	suite.Run("rename", func() {
		renamed := testArtist()
		renamed.Name = "Renamed"
		renamed.Slug = "renamed"

		suite.artistUCMock.
			On("UpdateArtist", anyCtx, "test-artist", entity.ArtistPatch{Name: ptr("Renamed")}).
			Once().
			Return(renamed, nil)

		suite.admin(http.MethodPut, path, "test-artist").
			WithJSON(map[string]any{"name": "Renamed"}).
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			HasValue("slug", "renamed")
	})

	suite.Run("name taken", func() {
		suite.artistUCMock.
			On("UpdateArtist", anyCtx, "test-artist", mock.Anything).
			Once().
			Return(nil, entity.ErrArtistNameExists)

		suite.admin(http.MethodPut, path, "test-artist").
			WithJSON(map[string]any{"name": "Other"}).
			Expect().
			Status(http.StatusConflict)
	})
}

func (suite *HandlersTestSuite) TestDeleteArtist() {
	const path = "/api/v1/artists/{slug}"

	suite.Run("has smartlinks", func() {
		suite.artistUCMock.
			On("DeleteArtist", anyCtx, "test-artist").
			Once().
			Return(entity.ErrArtistHasSmartLinks)

		suite.admin(http.MethodDelete, path, "test-artist").
			Expect().
			Status(http.StatusConflict).
			JSON().Object().
			HasValue("message", "artist has smartlinks")
	})

	suite.Run("success", func() {
		suite.artistUCMock.
			On("DeleteArtist", anyCtx, "test-artist").
			Once().
			Return(nil)

		suite.admin(http.MethodDelete, path, "test-artist").
			Expect().
			Status(http.StatusNoContent)
	})
}
