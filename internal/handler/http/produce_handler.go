package http

import (
	"net/http"

	"github.com/Aditya2073/agrisample/internal/produce"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type ProduceHandler struct {
	service  produce.Service
	authn    *Authenticator
	validate *validator.Validate
}

func NewProduceHandler(service produce.Service, authn *Authenticator) *ProduceHandler {
	return &ProduceHandler{
		service:  service,
		authn:    authn,
		validate: validator.New(),
	}
}

func (h *ProduceHandler) RegisterRoutes(router chi.Router) {
	router.Get("/produce", h.handleCatalog)
	router.Get("/produce/{id}", h.handleGetListing)

	router.Group(func(r chi.Router) {
		r.Use(h.authn.RequireActor)
		r.Post("/produce", h.handleAddListing)
		r.Get("/produce/mine", h.handleMyListings)
	})
}

func (h *ProduceHandler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	mode, err := produce.ParseSortMode(r.URL.Query().Get("sort"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	listings, err := h.service.LoadCatalog(r.Context())
	if err != nil {
		respondWithDomainError(w, r, err, "Failed to load catalog")
		return
	}
	respondWithJSON(w, http.StatusOK, produce.Query(listings, r.URL.Query().Get("search"), mode))
}

func (h *ProduceHandler) handleGetListing(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.FromString(idParam)
	if err != nil {
		log.Warn().Err(err).Str("produce_id", idParam).Msg("Failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	listing, err := h.service.GetListing(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, r, err, "Failed to get listing")
		return
	}
	respondWithJSON(w, http.StatusOK, listing)
}

func (h *ProduceHandler) handleAddListing(w http.ResponseWriter, r *http.Request) {
	var req produce.NewListing
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	listing, err := h.service.AddListing(r.Context(), actorFromContext(r.Context()), req)
	if err != nil {
		respondWithDomainError(w, r, err, "Failed to add listing")
		return
	}
	respondWithJSON(w, http.StatusCreated, listing)
}

func (h *ProduceHandler) handleMyListings(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	if !actor.IsFarmer() {
		respondWithDomainError(w, r, produce.ErrNotFarmer, "Failed to list produce")
		return
	}

	listings, err := h.service.ListByFarmer(r.Context(), actor.ID)
	if err != nil {
		respondWithDomainError(w, r, err, "Failed to list produce")
		return
	}
	respondWithJSON(w, http.StatusOK, listings)
}
