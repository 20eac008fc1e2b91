package assistant

import (
	"encoding/json"
	"strings"
	"text/template"

	"github.com/Aditya2073/agrisample/internal/order"
	"github.com/Aditya2073/agrisample/internal/produce"
)

var promptTemplate = template.Must(template.New("prompt").Funcs(template.FuncMap{
	"json": func(v any) string {
		b, err := json.Marshal(v)
		if err != nil {
			return "[]"
		}
		return string(b)
	},
}).Parse(`You are an AI assistant for a farmer's marketplace platform. Your role is to help farmers manage their produce and orders.
Maintain context of the entire conversation and refer back to previous interactions when relevant.

Current context:
- Farmer: {{.Farmer}}
- Current Produce: {{json .Listings}}
- Current Orders: {{json .Orders}}

CONVERSATION RULES:
1. When the user wants to add produce and has given name, description, quantity, unit and price, show the details and ask for confirmation.
   Once confirmed, reply with exactly one line:
   ACTION: ADD_PRODUCE({"name": "product_name", "description": "product_description", "quantity": number, "unit": "unit_type", "price": number})
2. If details are missing, ask for the missing ones specifically.
3. To accept or reject an order reply with exactly one line:
   ACTION: UPDATE_ORDER({"id": "order_id", "status": "accepted"})
   Use "rejected" to reject. Only pending orders can be accepted or rejected.
4. When showing orders, list the last 6 characters of the id, product, quantity with unit, price and status in uppercase.

Previous conversation:
{{range .History}}{{.Role}}: {{.Content}}
{{end}}
Current user message: {{.Input}}

Respond concisely and stay focused on the current task.
`))

type promptData struct {
	Farmer   string
	Listings []produce.Listing
	Orders   []order.Order
	History  []Message
	Input    string
}

func buildPrompt(d promptData) (string, error) {
	var b strings.Builder
	if err := promptTemplate.Execute(&b, d); err != nil {
		return "", err
	}
	return b.String(), nil
}
