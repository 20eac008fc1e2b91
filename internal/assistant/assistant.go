package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/Aditya2073/agrisample/internal/order"
	"github.com/Aditya2073/agrisample/internal/produce"
	"github.com/Aditya2073/agrisample/internal/profile"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotFarmer   = errors.New("the assistant is available to farmers only")
	ErrUnavailable = errors.New("assistant is not configured")
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// historyLimit caps how much of the conversation goes back into the prompt.
const historyLimit = 20

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ActionResult struct {
	Name    string `json:"name"`
	Applied bool   `json:"applied"`
	Error   string `json:"error,omitempty"`
}

type Reply struct {
	Message Message       `json:"message"`
	Action  *ActionResult `json:"action,omitempty"`
}

type Listings interface {
	ListByFarmer(ctx context.Context, farmerID uuid.UUID) ([]produce.Listing, error)
	AddListing(ctx context.Context, farmer *profile.Profile, input produce.NewListing) (*produce.Listing, error)
}

type Orders interface {
	ListIncoming(ctx context.Context, sellerID uuid.UUID) ([]order.Order, error)
	Transition(ctx context.Context, actor *profile.Profile, orderID uuid.UUID, target order.Status) (*order.Order, error)
}

type Assistant struct {
	gen      Generator
	listings Listings
	orders   Orders
}

// New returns an Assistant; a nil generator makes every Chat fail with ErrUnavailable.
func New(gen Generator, listings Listings, orders Orders) *Assistant {
	return &Assistant{gen: gen, listings: listings, orders: orders}
}

func (a *Assistant) Chat(ctx context.Context, farmer *profile.Profile, history []Message, input string) (*Reply, error) {
	if !farmer.IsFarmer() {
		return nil, ErrNotFarmer
	}
	if a.gen == nil {
		return nil, ErrUnavailable
	}

	// Контекст не обязателен: без него ассистент всё равно отвечает.
	listings, err := a.listings.ListByFarmer(ctx, farmer.ID)
	if err != nil {
		log.Warn().Err(err).Stringer("farmer_id", farmer.ID).Msg("assistant: failed to load produce context")
		listings = nil
	}
	incoming, err := a.orders.ListIncoming(ctx, farmer.ID)
	if err != nil {
		log.Warn().Err(err).Stringer("farmer_id", farmer.ID).Msg("assistant: failed to load order context")
		incoming = nil
	}

	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	prompt, err := buildPrompt(promptData{
		Farmer:   farmer.Name,
		Listings: listings,
		Orders:   incoming,
		History:  history,
		Input:    input,
	})
	if err != nil {
		return nil, fmt.Errorf("assistant: build prompt: %w", err)
	}

	text, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Stringer("farmer_id", farmer.ID).Msg("assistant: generation failed")
		return nil, fmt.Errorf("assistant: %w", err)
	}

	reply := &Reply{Message: Message{Role: RoleAssistant, Content: text}}

	action, ok := ParseAction(text)
	if !ok {
		return reply, nil
	}

	content, err := a.apply(ctx, farmer, action)
	result := &ActionResult{Name: action.Name, Applied: err == nil}
	if err != nil {
		log.Warn().Err(err).Str("action", action.Name).Stringer("farmer_id", farmer.ID).Msg("assistant: action rejected")
		result.Error = err.Error()
		content = fmt.Sprintf("Sorry, I could not do that: %v", err)
	}
	reply.Action = result
	reply.Message.Content = content
	return reply, nil
}

// apply runs a suggested action through the same services as any client request.
func (a *Assistant) apply(ctx context.Context, farmer *profile.Profile, action *Action) (string, error) {
	switch action.Name {
	case ActionAddProduce:
		var p AddProducePayload
		if err := decodePayload(action, &p); err != nil {
			return "", err
		}
		l, err := a.listings.AddListing(ctx, farmer, produce.NewListing{
			Name:        p.Name,
			Description: p.Description,
			Quantity:    p.Quantity,
			Unit:        p.Unit,
			Price:       p.Price,
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Added your produce:\n- Name: %s\n- Description: %s\n- Quantity: %d %s\n- Price: %s\n\nAnything else I can help with?",
			l.Name, l.Description, l.Quantity, l.Unit, l.Price.StringFixed(2)), nil

	case ActionUpdateOrder:
		var p UpdateOrderPayload
		if err := decodePayload(action, &p); err != nil {
			return "", err
		}
		id, err := uuid.FromString(p.ID)
		if err != nil {
			return "", fmt.Errorf("action %s: bad order id %q", action.Name, p.ID)
		}
		target, err := order.ParseStatus(p.Status)
		if err != nil {
			return "", err
		}
		o, err := a.orders.Transition(ctx, farmer, id, target)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Order #%s is now %s.\n\nAnything else I can help with?", shortID(o.ID), o.Status), nil
	}
	return "", fmt.Errorf("unknown action %q", action.Name)
}

func shortID(id uuid.UUID) string {
	s := id.String()
	return s[len(s)-6:]
}
