package assistant

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	ActionAddProduce  = "ADD_PRODUCE"
	ActionUpdateOrder = "UPDATE_ORDER"
)

// Only the first tag on a line is read; the payload runs to the last ')' of that line.
var actionPattern = regexp.MustCompile(`ACTION:\s*(\w+)\((.*)\)`)

type Action struct {
	Name    string
	Payload json.RawMessage
}

// ParseAction extracts an ACTION: NAME({json}) tag from model text. The result is
// an untrusted suggestion.
func ParseAction(text string) (*Action, bool) {
	m := actionPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	payload := strings.TrimSpace(m[2])
	if !json.Valid([]byte(payload)) {
		return &Action{Name: m[1]}, true
	}
	return &Action{Name: m[1], Payload: json.RawMessage(payload)}, true
}

type AddProducePayload struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	Unit        string          `json:"unit"`
	Price       decimal.Decimal `json:"price"`
}

type UpdateOrderPayload struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func decodePayload(a *Action, v any) error {
	if len(a.Payload) == 0 {
		return fmt.Errorf("action %s: payload is not valid JSON", a.Name)
	}
	if err := json.Unmarshal(a.Payload, v); err != nil {
		return fmt.Errorf("action %s: %w", a.Name, err)
	}
	return nil
}
