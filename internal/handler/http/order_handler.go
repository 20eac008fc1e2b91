package http

import (
	"net/http"

	"github.com/Aditya2073/agrisample/internal/order"
	"github.com/Aditya2073/agrisample/internal/produce"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type PlaceOrderRequest struct {
	ProduceID uuid.UUID `json:"produce_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type DashboardResponse struct {
	Role      string                 `json:"role"`
	Sales     *order.SalesSummary    `json:"sales,omitempty"`
	Purchases *order.PurchaseSummary `json:"purchases,omitempty"`
}

type OrderHandler struct {
	engine   order.Engine
	listings produce.Service
	authn    *Authenticator
	validate *validator.Validate
}

func NewOrderHandler(engine order.Engine, listings produce.Service, authn *Authenticator) *OrderHandler {
	return &OrderHandler{
		engine:   engine,
		listings: listings,
		authn:    authn,
		validate: validator.New(),
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(h.authn.RequireActor)
		r.Post("/orders", h.handlePlaceOrder)
		r.Get("/orders/incoming", h.handleIncoming)
		r.Get("/orders/mine", h.handlePurchases)
		r.Get("/orders/{id}", h.handleGetOrder)
		r.Patch("/orders/{id}/status", h.handleUpdateStatus)
		r.Get("/dashboard", h.handleDashboard)
	})
}

func (h *OrderHandler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	o, err := h.engine.PlaceOrder(r.Context(), actorFromContext(r.Context()), req.ProduceID, req.Quantity)
	if err != nil {
		respondWithDomainError(w, r, err, "Failed to place order")
		return
	}
	respondWithJSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) handleIncoming(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	orders, err := h.engine.ListIncoming(r.Context(), actor.ID)
	if err != nil {
		respondWithDomainError(w, r, err, "Failed to list incoming orders")
		return
	}
	h.respondWithOrders(w, r, orders)
}

func (h *OrderHandler) handlePurchases(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	orders, err := h.engine.ListPurchases(r.Context(), actor.ID)
	if err != nil {
		respondWithDomainError(w, r, err, "Failed to list orders")
		return
	}
	h.respondWithOrders(w, r, orders)
}

// respondWithOrders supports ?status= to narrow the list and ?group=1 to bucket it.
func (h *OrderHandler) respondWithOrders(w http.ResponseWriter, r *http.Request, orders []order.Order) {
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, err := order.ParseStatus(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		filtered := make([]order.Order, 0, len(orders))
		for _, o := range orders {
			if o.Status == st {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}

	if r.URL.Query().Get("group") != "" {
		respondWithJSON(w, http.StatusOK, order.GroupByStatus(orders))
		return
	}
	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	o, err := h.engine.GetOrder(r.Context(), actorFromContext(r.Context()), id)
	if err != nil {
		respondWithDomainError(w, r, err, "Failed to get order")
		return
	}
	respondWithJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	target, err := order.ParseStatus(req.Status)
	if err != nil {
		respondWithDomainError(w, r, err, "Failed to update order status")
		return
	}

	o, err := h.engine.Transition(r.Context(), actorFromContext(r.Context()), id, target)
	if err != nil {
		respondWithDomainError(w, r, err, "Failed to update order status")
		return
	}
	respondWithJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	resp := DashboardResponse{Role: actor.Role.String()}

	if actor.IsFarmer() {
		listings, err := h.listings.ListByFarmer(r.Context(), actor.ID)
		if err != nil {
			respondWithDomainError(w, r, err, "Failed to load dashboard")
			return
		}
		incoming, err := h.engine.ListIncoming(r.Context(), actor.ID)
		if err != nil {
			respondWithDomainError(w, r, err, "Failed to load dashboard")
			return
		}
		sales := order.SummarizeSales(listings, incoming)
		resp.Sales = &sales
	} else {
		purchases, err := h.engine.ListPurchases(r.Context(), actor.ID)
		if err != nil {
			respondWithDomainError(w, r, err, "Failed to load dashboard")
			return
		}
		summary := order.SummarizePurchases(purchases)
		resp.Purchases = &summary
	}

	respondWithJSON(w, http.StatusOK, resp)
}

func parseOrderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.FromString(idParam)
	if err != nil {
		log.Warn().Err(err).Str("order_id", idParam).Msg("Failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return uuid.Nil, false
	}
	return id, true
}
