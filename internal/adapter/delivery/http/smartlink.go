package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/smartlinks/internal/entity"
)

type smartLinkHandler struct {
	useCase  smartLinkUseCase
	clicks   clickUseCase
	validate *validator.Validate
	homeURL  string
}

func newSmartLinkHandler(useCase smartLinkUseCase, clicks clickUseCase, validate *validator.Validate, homeURL string) *smartLinkHandler {
	return &smartLinkHandler{
		useCase:  useCase,
		clicks:   clicks,
		validate: validate,
		homeURL:  homeURL,
	}
}

func (h *smartLinkHandler) createSmartLink(w http.ResponseWriter, r *http.Request) {
	var req createSmartLinkRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	sl, err := h.useCase.CreateSmartLink(r.Context(), req.toEntity())
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toSmartLinkResponse(sl))
}

func (h *smartLinkHandler) listSmartLinks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter entity.SmartLinkFilter

	if v := q.Get("artist_id"); v != "" {
		artistID, err := strconv.ParseInt(v, 10, 64)
		if err != nil || artistID <= 0 {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, newErrorResponse("invalid artist_id"))
			return
		}
		filter.ArtistID = &artistID
	}

	if v := q.Get("is_published"); v != "" {
		published, err := strconv.ParseBool(v)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, newErrorResponse("invalid is_published"))
			return
		}
		filter.IsPublished = &published
	}

	// Malformed paging values fall back to the defaults.
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	res, err := h.useCase.ListSmartLinks(r.Context(), filter, page, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toSmartLinkListResponse(res))
}

func (h *smartLinkHandler) getSmartLink(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	sl, err := h.useCase.GetSmartLink(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toSmartLinkResponse(sl))
}

func (h *smartLinkHandler) updateSmartLink(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req updateSmartLinkRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	sl, err := h.useCase.UpdateSmartLink(r.Context(), id, req.toPatch())
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toSmartLinkResponse(sl))
}

func (h *smartLinkHandler) deleteSmartLink(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.useCase.DeleteSmartLink(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *smartLinkHandler) getSmartLinkAnalytics(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	sl, err := h.useCase.GetSmartLinkStats(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toSmartLinkAnalyticsResponse(sl))
}

func (h *smartLinkHandler) resolvePublic(w http.ResponseWriter, r *http.Request) {
	res, err := h.useCase.ResolvePublic(r.Context(), chi.URLParam(r, "artistSlug"), chi.URLParam(r, "trackSlug"))
	if err != nil {
		writePublicError(w, r, err)
		return
	}

	h.clicks.RecordView(r.Context(), res.SmartLink.ID)

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toResolutionResponse(res))
}

func (h *smartLinkHandler) listArtistSmartLinks(w http.ResponseWriter, r *http.Request) {
	res, err := h.useCase.ListArtistSmartLinks(r.Context(), chi.URLParam(r, "artistSlug"), true)
	if err != nil {
		writePublicError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toArtistSmartLinksResponse(res))
}

// logPlatformClick counts a click-through reported by the landing page.
// The body is optional and the response never reveals whether the id exists.
func (h *smartLinkHandler) logPlatformClick(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req platformClickRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		httplog.LogEntrySetField(r.Context(), "decode_err", slog.StringValue(err.Error()))
		req = platformClickRequest{}
	}

	h.clicks.RecordPlatformClick(r.Context(), id, req.Platform)

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]string{"status": "accepted"})
}

// redirectToPlatform sends a fan straight to the requested platform and
// counts the click. Anything that cannot be resolved lands on the home page.
func (h *smartLinkHandler) redirectToPlatform(w http.ResponseWriter, r *http.Request) {
	platform := chi.URLParam(r, "platform")

	res, err := h.useCase.ResolvePublic(r.Context(), chi.URLParam(r, "artistSlug"), chi.URLParam(r, "trackSlug"))
	if err != nil {
		logPublicError(r, err)
		http.Redirect(w, r, h.homeURL, http.StatusFound)
		return
	}

	target, ok := res.SmartLink.PlatformURL(platform)
	if !ok {
		http.Redirect(w, r, h.homeURL, http.StatusFound)
		return
	}

	h.clicks.RecordPlatformClick(r.Context(), res.SmartLink.ID, platform)

	http.Redirect(w, r, target, http.StatusFound)
}
