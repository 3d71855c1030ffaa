package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/smartlinks/internal/auth"
	"github.com/vadimbarashkov/smartlinks/internal/entity"
)

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "pong")
}

type smartLinkUseCase interface {
	CreateSmartLink(ctx context.Context, sl *entity.SmartLink) (*entity.SmartLink, error)
	UpdateSmartLink(ctx context.Context, id int64, patch entity.SmartLinkPatch) (*entity.SmartLink, error)
	DeleteSmartLink(ctx context.Context, id int64) error
	GetSmartLink(ctx context.Context, id int64) (*entity.SmartLink, error)
	GetSmartLinkStats(ctx context.Context, id int64) (*entity.SmartLink, error)
	ListSmartLinks(ctx context.Context, filter entity.SmartLinkFilter, page, limit int) (*entity.SmartLinkPage, error)
	ListArtistSmartLinks(ctx context.Context, artistSlug string, publishedOnly bool) (*entity.ArtistSmartLinks, error)
	ResolvePublic(ctx context.Context, artistSlug, trackSlug string) (*entity.Resolution, error)
}

type artistUseCase interface {
	CreateArtist(ctx context.Context, artist *entity.Artist) (*entity.Artist, error)
	GetArtist(ctx context.Context, slug string) (*entity.Artist, error)
	ListArtists(ctx context.Context) ([]*entity.Artist, error)
	UpdateArtist(ctx context.Context, slug string, patch entity.ArtistPatch) (*entity.Artist, error)
	DeleteArtist(ctx context.Context, slug string) error
}

type clickUseCase interface {
	RecordView(ctx context.Context, id int64)
	RecordPlatformClick(ctx context.Context, id int64, platform string)
}

func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

// decodeAndValidate reads a JSON body into v and validates it. On failure
// it writes the 400 response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		render.Status(r, http.StatusBadRequest)
		if errors.Is(err, io.EOF) {
			render.JSON(w, r, emptyRequestBodyResponse)
		} else {
			render.JSON(w, r, invalidRequestBodyResponse)
		}
		return false
	}

	if err := validate.Struct(v); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, validationErrorResponse(err))
		return false
	}

	return true
}

// idParam parses the {id} path segment. On failure it writes the 400
// response and returns false.
func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidIDResponse)
		return 0, false
	}
	return id, true
}

var errorStatuses = []struct {
	err    error
	status int
}{
	{auth.ErrUnauthorized, http.StatusUnauthorized},
	{auth.ErrForbidden, http.StatusForbidden},
	{entity.ErrArtistNotFound, http.StatusNotFound},
	{entity.ErrSmartLinkNotFound, http.StatusNotFound},
	{entity.ErrArtistNameExists, http.StatusConflict},
	{entity.ErrArtistHasSmartLinks, http.StatusConflict},
	{entity.ErrSlugConflict, http.StatusConflict},
	{entity.ErrSlugExists, http.StatusConflict},
	{entity.ErrStoreUnavailable, http.StatusServiceUnavailable},
}

// writeError translates a use case error into the JSON error envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *entity.ValidationError
	if errors.As(err, &vErr) {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, validationErrorResponse(err))
		return
	}

	for _, es := range errorStatuses {
		if !errors.Is(err, es.err) {
			continue
		}

		if es.status >= http.StatusInternalServerError {
			httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))
		}

		render.Status(r, es.status)
		render.JSON(w, r, newErrorResponse(es.err.Error()))
		return
	}

	httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, serverErrorResponse)
}

// logPublicError records unexpected public failures; a plain miss is not logged.
func logPublicError(r *http.Request, err error) {
	if errors.Is(err, entity.ErrSmartLinkNotFound) || errors.Is(err, entity.ErrArtistNotFound) {
		return
	}
	httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))
}

// writePublicError answers every public failure with the same 404 so that
// unpublished and missing smartlinks are indistinguishable.
func writePublicError(w http.ResponseWriter, r *http.Request, err error) {
	logPublicError(r, err)

	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, notFoundResponse)
}
