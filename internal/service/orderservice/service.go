package orderservice

import (
	"context"
	"fmt"

	"gogarment/internal/domain"
	apperror "gogarment/internal/errors"
	"gogarment/internal/pkg/logger"
)

// OrderAPI é o contrato das primitivas de pedidos do catálogo.
type OrderAPI interface {
	ListOrders(ctx context.Context, nextURL string) (domain.OrderPage, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error
}

// Service expõe a revisão administrativa de pedidos de compra.
type Service struct {
	api    OrderAPI
	logger logger.Logger
}

// NewService cria uma nova instância do serviço de pedidos.
func NewService(api OrderAPI, log logger.Logger) *Service {
	return &Service{api: api, logger: log}
}

// ListOrders lista uma página de pedidos. nextURL vazio busca a primeira.
func (s *Service) ListOrders(ctx context.Context, nextURL string) (domain.OrderPage, error) {
	return s.api.ListOrders(ctx, nextURL)
}

// UpdateStatus faz a transição de status de um pedido. Status desconhecidos e
// transições a partir de status terminais são rejeitados localmente, sem
// chamada de rede.
func (s *Service) UpdateStatus(ctx context.Context, id string, current, next domain.OrderStatus) error {
	if id == "" {
		return apperror.NewValidationError("O ID do pedido é obrigatório.")
	}
	if !next.IsValid() {
		return apperror.NewValidationError(fmt.Sprintf("Status de pedido desconhecido: '%s'.", next))
	}
	if current.IsFinal() {
		return apperror.NewConflictError(
			fmt.Sprintf("O pedido já está em um status terminal ('%s') e não aceita transição.", current),
		)
	}

	if err := s.api.UpdateOrderStatus(ctx, id, next); err != nil {
		return err
	}

	s.logger.Info("Status do pedido atualizado.", map[string]interface{}{
		"order_id": id,
		"status":   string(next),
	})
	return nil
}
