package upstream

import (
	"context"
	"encoding/json"
	"net/http"

	"gogarment/internal/domain"
)

// rawNotification é a forma de fio de uma notificação como o catálogo a
// devolve. Os campos de data variam entre created_at e timestamp conforme a
// origem do evento.
type rawNotification struct {
	ID        json.Number `json:"id"`
	Message   string      `json:"message"`
	CreatedAt string      `json:"created_at"`
	Timestamp string      `json:"timestamp"`
	IsRead    *bool       `json:"is_read"`
	Type      string      `json:"type"`
	Buyer     *struct {
		Name    string `json:"name"`
		Company string `json:"company"`
	} `json:"buyer"`
	Items []struct {
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
		Variant  string `json:"variant"`
	} `json:"items"`
}

type notificationPage struct {
	Results []rawNotification `json:"results"`
	Next    string            `json:"next"`
}

// ListNotifications busca uma página de notificações. nextURL vazio busca a
// primeira página; caso contrário segue o cursor devolvido pelo catálogo.
func (c *Client) ListNotifications(ctx context.Context, nextURL string) ([]domain.Notification, string, error) {
	path := nextURL
	if path == "" {
		path = "/notifications/"
	}

	var page notificationPage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, "", err
	}

	notifications := make([]domain.Notification, 0, len(page.Results))
	for _, raw := range page.Results {
		notifications = append(notifications, raw.toDomain())
	}
	return notifications, page.Next, nil
}

// MarkNotificationRead marca uma notificação como lida.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodPost, "/notifications/"+id+"/mark-read/", nil, nil)
}

// MarkAllNotificationsRead marca todas as notificações como lidas.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/notifications/mark-all-read/", nil, nil)
}

func (raw rawNotification) toDomain() domain.Notification {
	n := domain.Notification{
		ID:      raw.ID.String(),
		Message: raw.Message,
		Type:    domain.SanitizeType(raw.Type),
	}

	// created_at tem precedência sobre timestamp.
	if raw.CreatedAt != "" {
		n.Timestamp = raw.CreatedAt
	} else {
		n.Timestamp = raw.Timestamp
	}

	if raw.IsRead != nil {
		n.IsRead = *raw.IsRead
	}

	if raw.Buyer != nil {
		n.Buyer = &domain.NotificationBuyer{
			Name:    raw.Buyer.Name,
			Company: raw.Buyer.Company,
		}
	}

	for _, item := range raw.Items {
		n.Items = append(n.Items, domain.NotificationItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Variant:  item.Variant,
		})
	}
	return n
}
