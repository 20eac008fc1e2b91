package http

import (
	"net/http"

	"github.com/Aditya2073/agrisample/internal/assistant"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type ChatRequest struct {
	History []assistant.Message `json:"history" validate:"dive"`
	Message string              `json:"message" validate:"required,max=4000"`
}

type AssistantHandler struct {
	assistant *assistant.Assistant
	authn     *Authenticator
	validate  *validator.Validate
}

func NewAssistantHandler(a *assistant.Assistant, authn *Authenticator) *AssistantHandler {
	return &AssistantHandler{assistant: a, authn: authn, validate: validator.New()}
}

func (h *AssistantHandler) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(h.authn.RequireActor)
		r.Post("/assistant/chat", h.handleChat)
	})
}

func (h *AssistantHandler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	reply, err := h.assistant.Chat(r.Context(), actorFromContext(r.Context()), req.History, req.Message)
	if err != nil {
		respondWithDomainError(w, r, err, "Assistant failed to respond")
		return
	}
	respondWithJSON(w, http.StatusOK, reply)
}
