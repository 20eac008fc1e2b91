package http

import (
	"net/http"

	"github.com/Aditya2073/agrisample/internal/assistant"
	"github.com/Aditya2073/agrisample/internal/auth"
	"github.com/Aditya2073/agrisample/internal/metrics"
	"github.com/Aditya2073/agrisample/internal/order"
	"github.com/Aditya2073/agrisample/internal/produce"
	"github.com/Aditya2073/agrisample/internal/profile"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Deps struct {
	Auth      auth.Service
	Profiles  profile.Service
	Produce   produce.Service
	Orders    order.Engine
	Assistant *assistant.Assistant
	Metrics   *metrics.Metrics
}

func NewRouter(d Deps) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	if d.Metrics != nil {
		router.Use(d.Metrics.Middleware)
		router.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	authn := NewAuthenticator(d.Auth, d.Profiles)
	NewAuthHandler(d.Auth, d.Profiles, authn).RegisterRoutes(router)
	NewProduceHandler(d.Produce, authn).RegisterRoutes(router)
	NewOrderHandler(d.Orders, d.Produce, authn).RegisterRoutes(router)
	if d.Assistant != nil {
		NewAssistantHandler(d.Assistant, authn).RegisterRoutes(router)
	}
	return router
}
