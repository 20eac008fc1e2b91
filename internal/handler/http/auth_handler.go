package http

import (
	"net/http"

	"github.com/Aditya2073/agrisample/internal/auth"
	"github.com/Aditya2073/agrisample/internal/profile"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type SignUpResponse struct {
	Session *auth.Session    `json:"session"`
	Profile *profile.Profile `json:"profile"`
}

type AuthHandler struct {
	auth     auth.Service
	profiles profile.Service
	authn    *Authenticator
	validate *validator.Validate
}

func NewAuthHandler(authSvc auth.Service, profiles profile.Service, authn *Authenticator) *AuthHandler {
	return &AuthHandler{
		auth:     authSvc,
		profiles: profiles,
		authn:    authn,
		validate: validator.New(),
	}
}

func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/signup", h.handleSignUp)
	router.Post("/auth/signin", h.handleSignIn)

	router.Group(func(r chi.Router) {
		r.Use(h.authn.RequireSession)
		r.Post("/auth/signout", h.handleSignOut)
		r.Get("/auth/session", h.handleSession)
		// a session whose own profile is missing must see 404 here, not 401
		r.Get("/profiles/{id}", h.handleGetProfile)
	})
}

func (h *AuthHandler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req auth.SignUpInput
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	sess, p, err := h.auth.SignUp(r.Context(), req)
	if err != nil {
		respondWithDomainError(w, r, err, "Failed to sign up")
		return
	}
	respondWithJSON(w, http.StatusCreated, SignUpResponse{Session: sess, Profile: p})
}

func (h *AuthHandler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req auth.SignInInput
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	sess, err := h.auth.SignIn(r.Context(), req)
	if err != nil {
		respondWithDomainError(w, r, err, "Failed to sign in")
		return
	}
	respondWithJSON(w, http.StatusOK, sess)
}

func (h *AuthHandler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if err := h.auth.SignOut(r.Context(), sess.AccessToken); err != nil {
		respondWithDomainError(w, r, err, "Failed to sign out")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) handleSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	// токен клиент уже знает
	respondWithJSON(w, http.StatusOK, auth.Session{UserID: sess.UserID, ExpiresAt: sess.ExpiresAt})
}

func (h *AuthHandler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.FromString(idParam)
	if err != nil {
		log.Warn().Err(err).Str("user_id", idParam).Msg("Failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	p, err := h.profiles.GetProfileByID(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, r, err, "Failed to get profile")
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}
