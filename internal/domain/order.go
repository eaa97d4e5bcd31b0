package domain

// OrderStatus é o estado de um pedido de compra no fluxo administrativo.
type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderApproved  OrderStatus = "Approved"
	OrderShipped   OrderStatus = "Shipped"
	OrderDelivered OrderStatus = "Delivered"
	OrderRejected  OrderStatus = "Rejected"
)

// IsFinal indica se o status é terminal: pedidos entregues ou rejeitados não
// aceitam nova transição.
func (s OrderStatus) IsFinal() bool {
	return s == OrderDelivered || s == OrderRejected
}

// IsValid indica se o status pertence ao conjunto conhecido.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderPending, OrderApproved, OrderShipped, OrderDelivered, OrderRejected:
		return true
	}
	return false
}

// OrderRequest é um pedido de compra normalizado para a revisão
// administrativa. O catálogo devolve pedidos em formatos heterogêneos; a
// normalização acontece na camada de integração.
type OrderRequest struct {
	ID           string      `json:"id"`
	OrderedAt    string      `json:"ordered_at"`
	Status       OrderStatus `json:"status"`
	CustomerName string      `json:"customer_name"`
	Contact      string      `json:"contact"`
	Product      string      `json:"product"`
	Fabric       string      `json:"fabric"`
	Quantity     int         `json:"quantity"`
}

// OrderPage é uma página de pedidos com o cursor da próxima página.
type OrderPage struct {
	Orders []OrderRequest `json:"orders"`
	Next   string         `json:"next,omitempty"`
}
