package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"gogarment/internal/domain"
)

// flexID aceita identificadores numéricos ou textuais: o catálogo mistura ids
// relacionais (número) e legados (string) na mesma listagem.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*f = flexID(asString)
		return nil
	}
	var asNumber json.Number
	if err := json.Unmarshal(data, &asNumber); err != nil {
		return err
	}
	*f = flexID(asNumber.String())
	return nil
}

// rawOrder cobre as variações de forma que o catálogo devolve para pedidos
// (identificador em id ou _id, dados de contato no endereço ou no usuário).
type rawOrder struct {
	ID          flexID `json:"id"`
	LegacyID    flexID `json:"_id"`
	OrderedAt   string `json:"ordered_at"`
	Status      string `json:"status"`
	AddressData *struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	} `json:"address_data"`
	User *struct {
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
		PhoneNumber string `json:"phone_number"`
		Email       string `json:"email"`
	} `json:"user"`
	Items []struct {
		ProductName   string `json:"product_name"`
		FabricType    string `json:"fabric_type"`
		Quantity      int    `json:"quantity"`
		VariantDetail *struct {
			FabricType string `json:"fabric_type"`
		} `json:"variant_detail"`
	} `json:"items"`
}

// orderEnvelope cobre os três envelopes possíveis da listagem: array puro,
// {"orders": [...]} ou {"results": [...], "next": ...}.
type orderEnvelope struct {
	Orders  []rawOrder `json:"orders"`
	Results []rawOrder `json:"results"`
	Next    string     `json:"next"`
}

// ListOrders busca uma página de pedidos administrativos, normalizando o
// envelope heterogêneo do catálogo.
func (c *Client) ListOrders(ctx context.Context, nextURL string) (domain.OrderPage, error) {
	path := nextURL
	if path == "" {
		path = "/orders/admin/orders/"
	}

	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return domain.OrderPage{}, err
	}

	var orders []rawOrder
	var next string

	if strings.HasPrefix(strings.TrimSpace(string(raw)), "[") {
		if err := json.Unmarshal(raw, &orders); err != nil {
			c.logger.Warn("Formato inesperado na listagem de pedidos.", map[string]interface{}{"body_prefix": prefix(raw)})
		}
	} else {
		var envelope orderEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			c.logger.Warn("Formato inesperado na listagem de pedidos.", map[string]interface{}{"body_prefix": prefix(raw)})
		}
		switch {
		case len(envelope.Orders) > 0:
			orders = envelope.Orders
		default:
			orders = envelope.Results
		}
		next = envelope.Next
	}

	page := domain.OrderPage{Next: next}
	for _, o := range orders {
		page.Orders = append(page.Orders, o.toDomain())
	}
	return page, nil
}

// UpdateOrderStatus aplica a transição de status de um pedido. Rejeições usam
// o endpoint de cancelamento; as demais transições o de atualização.
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	endpoint := "/orders/order/" + id + "/update_status/"
	if status == domain.OrderRejected {
		endpoint = "/orders/order/" + id + "/cancel/"
	}

	body := map[string]string{"status": string(status)}
	return c.doJSON(ctx, http.MethodPatch, endpoint, body, nil)
}

func (o rawOrder) toDomain() domain.OrderRequest {
	order := domain.OrderRequest{
		OrderedAt: o.OrderedAt,
		Status:    domain.OrderStatus(o.Status),
	}
	if order.Status == "" {
		order.Status = domain.OrderPending
	}

	order.ID = string(o.ID)
	if order.ID == "" || order.ID == "0" {
		if legacy := string(o.LegacyID); legacy != "" {
			order.ID = legacy
		}
	}
	if order.ID == "" {
		order.ID = "unknown-id"
	}

	// Nome e contato: o endereço de entrega tem precedência sobre o cadastro.
	order.CustomerName = "Unknown"
	if o.AddressData != nil && o.AddressData.Name != "" {
		order.CustomerName = o.AddressData.Name
	} else if o.User != nil && (o.User.FirstName != "" || o.User.LastName != "") {
		order.CustomerName = strings.TrimSpace(o.User.FirstName + " " + o.User.LastName)
	}

	order.Contact = "N/A"
	switch {
	case o.AddressData != nil && o.AddressData.Phone != "":
		order.Contact = o.AddressData.Phone
	case o.User != nil && o.User.PhoneNumber != "":
		order.Contact = o.User.PhoneNumber
	case o.User != nil && o.User.Email != "":
		order.Contact = o.User.Email
	}

	order.Product = "N/A"
	order.Fabric = "N/A"
	if len(o.Items) > 0 {
		first := o.Items[0]
		if first.ProductName != "" {
			order.Product = first.ProductName
		}
		if first.FabricType != "" {
			order.Fabric = first.FabricType
		} else if first.VariantDetail != nil && first.VariantDetail.FabricType != "" {
			order.Fabric = first.VariantDetail.FabricType
		}
		order.Quantity = first.Quantity
	}
	return order
}

func prefix(raw json.RawMessage) string {
	s := string(raw)
	if len(s) > 48 {
		return s[:48]
	}
	return s
}
