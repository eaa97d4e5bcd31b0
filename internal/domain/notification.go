package domain

// NotificationType classifica uma notificação administrativa. Tipos fora do
// conjunto conhecido são saneados para "system" antes de chegar ao console.
type NotificationType string

const (
	NotificationAlert    NotificationType = "alert"
	NotificationPurchase NotificationType = "purchase"
	NotificationSystem   NotificationType = "system"
)

// Notification é uma notificação do catálogo dirigida ao administrador
// (novo pedido, alerta de estoque, aviso de sistema).
type Notification struct {
	ID        string             `json:"id"`
	Message   string             `json:"message"`
	Timestamp string             `json:"timestamp"`
	IsRead    bool               `json:"is_read"`
	Type      NotificationType   `json:"type"`
	Buyer     *NotificationBuyer `json:"buyer,omitempty"`
	Items     []NotificationItem `json:"items,omitempty"`
}

// NotificationBuyer identifica o comprador associado a uma notificação de compra.
type NotificationBuyer struct {
	Name    string `json:"name"`
	Company string `json:"company"`
}

// NotificationItem é um item de pedido embutido em uma notificação de compra.
type NotificationItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Variant  string `json:"variant"`
}

// NotificationFeed é uma página de notificações já saneada, com a contagem de
// não lidas calculada sobre a própria página.
type NotificationFeed struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
	Next          string         `json:"next,omitempty"`
}

// HasMore indica se existe página seguinte de notificações.
func (f NotificationFeed) HasMore() bool { return f.Next != "" }

// SanitizeType normaliza o tipo vindo do catálogo: qualquer valor fora do
// conjunto conhecido vira "system".
func SanitizeType(raw string) NotificationType {
	switch NotificationType(raw) {
	case NotificationAlert, NotificationPurchase, NotificationSystem:
		return NotificationType(raw)
	default:
		return NotificationSystem
	}
}
