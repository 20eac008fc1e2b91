package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Aditya2073/agrisample/internal/assistant"
	"github.com/Aditya2073/agrisample/internal/order"
	"github.com/Aditya2073/agrisample/internal/produce"
	"github.com/gofrs/uuid"
)

type Dashboard struct {
	Role      string                 `json:"role"`
	Sales     *order.SalesSummary    `json:"sales,omitempty"`
	Purchases *order.PurchaseSummary `json:"purchases,omitempty"`
}

// LoadCatalog implements produce.CatalogSource. Filtering and sorting happen locally.
func (c *Client) LoadCatalog(ctx context.Context) ([]produce.Listing, error) {
	var listings []produce.Listing
	if err := c.do(ctx, http.MethodGet, "/produce", nil, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

func (c *Client) GetListing(ctx context.Context, id uuid.UUID) (*produce.Listing, error) {
	var l produce.Listing
	if err := c.do(ctx, http.MethodGet, "/produce/"+url.PathEscape(id.String()), nil, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *Client) AddListing(ctx context.Context, in produce.NewListing) (*produce.Listing, error) {
	var l produce.Listing
	if err := c.do(ctx, http.MethodPost, "/produce", in, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *Client) MyListings(ctx context.Context) ([]produce.Listing, error) {
	var listings []produce.Listing
	if err := c.do(ctx, http.MethodGet, "/produce/mine", nil, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

func (c *Client) PlaceOrder(ctx context.Context, produceID uuid.UUID, quantity int) (*order.Order, error) {
	body := map[string]any{"produce_id": produceID, "quantity": quantity}
	var o order.Order
	if err := c.do(ctx, http.MethodPost, "/orders", body, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) SetOrderStatus(ctx context.Context, id uuid.UUID, status order.Status) (*order.Order, error) {
	body := map[string]string{"status": status.String()}
	var o order.Order
	if err := c.do(ctx, http.MethodPatch, "/orders/"+url.PathEscape(id.String())+"/status", body, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id.String()), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) IncomingOrders(ctx context.Context) ([]order.Order, error) {
	var orders []order.Order
	if err := c.do(ctx, http.MethodGet, "/orders/incoming", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) MyOrders(ctx context.Context) ([]order.Order, error) {
	var orders []order.Order
	if err := c.do(ctx, http.MethodGet, "/orders/mine", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	if err := c.do(ctx, http.MethodGet, "/dashboard", nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) Chat(ctx context.Context, history []assistant.Message, message string) (*assistant.Reply, error) {
	body := map[string]any{"history": history, "message": message}
	var reply assistant.Reply
	if err := c.do(ctx, http.MethodPost, "/assistant/chat", body, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}
