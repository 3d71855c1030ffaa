package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type artistHandler struct {
	useCase  artistUseCase
	validate *validator.Validate
}

func newArtistHandler(useCase artistUseCase, validate *validator.Validate) *artistHandler {
	return &artistHandler{
		useCase:  useCase,
		validate: validate,
	}
}

func (h *artistHandler) createArtist(w http.ResponseWriter, r *http.Request) {
	var req artistRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	artist, err := h.useCase.CreateArtist(r.Context(), req.toEntity())
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toArtistResponse(artist))
}

func (h *artistHandler) listArtists(w http.ResponseWriter, r *http.Request) {
	artists, err := h.useCase.ListArtists(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]artistPublicResponse, 0, len(artists))
	for _, a := range artists {
		view := a.PublicView()
		resp = append(resp, toArtistPublicResponse(&view))
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

func (h *artistHandler) getArtist(w http.ResponseWriter, r *http.Request) {
	artist, err := h.useCase.GetArtist(r.Context(), chi.URLParam(r, "artistSlug"))
	if err != nil {
		writePublicError(w, r, err)
		return
	}

	view := artist.PublicView()

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toArtistPublicResponse(&view))
}

func (h *artistHandler) updateArtist(w http.ResponseWriter, r *http.Request) {
	var req updateArtistRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	artist, err := h.useCase.UpdateArtist(r.Context(), chi.URLParam(r, "artistSlug"), req.toPatch())
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toArtistResponse(artist))
}

func (h *artistHandler) deleteArtist(w http.ResponseWriter, r *http.Request) {
	if err := h.useCase.DeleteArtist(r.Context(), chi.URLParam(r, "artistSlug")); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
