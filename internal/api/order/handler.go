package order

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"gogarment/internal/domain"
	apperror "gogarment/internal/errors"
	"gogarment/internal/pkg/logger"
)

// OrderService define o contrato da revisão administrativa de pedidos.
type OrderService interface {
	ListOrders(ctx context.Context, nextURL string) (domain.OrderPage, error)
	UpdateStatus(ctx context.Context, id string, current, next domain.OrderStatus) error
}

// StatusUpdateRequest representa o payload de transição de status.
type StatusUpdateRequest struct {
	Current domain.OrderStatus `json:"current_status"`
	Next    domain.OrderStatus `json:"status"`
}

// Handler agrupa todos os métodos de Handler dos pedidos.
type Handler struct {
	Service OrderService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc OrderService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse padroniza o tratamento de erros e respostas HTTP.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			json.NewEncoder(w).Encode(data)
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error("Erro interno no serviço de pedidos:", err)
	}

	errorResponse := map[string]interface{}{
		"code":     status,
		"category": category,
		"message":  message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse)
}

// ListOrdersHandler lida com GET /v1/orders.
// @Summary Lista os pedidos de compra para revisão administrativa
// @Tags orders
// @Produce json
// @Param next query string false "Cursor da página seguinte"
// @Success 200 {object} domain.OrderPage "Página de pedidos"
// @Failure 502 {object} domain.ErrorResponse "Catálogo indisponível"
// @Router /orders [get]
func (h *Handler) ListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	page, err := h.Service.ListOrders(r.Context(), r.URL.Query().Get("next"))
	h.handleServiceResponse(w, r, page, err, http.StatusOK)
}

// UpdateStatusHandler lida com PATCH /v1/orders/{id}/status.
// @Summary Transiciona o status de um pedido
// @Description Status terminais (Delivered, Rejected) não aceitam transição; Rejected encaminha para o cancelamento no catálogo.
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "ID do pedido"
// @Param transition body StatusUpdateRequest true "Status atual e status alvo"
// @Success 204 "Transição aplicada"
// @Failure 400 {object} domain.ErrorResponse "Status desconhecido"
// @Failure 409 {object} domain.ErrorResponse "Pedido em status terminal"
// @Router /orders/{id}/status [patch]
func (h *Handler) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/orders/"), "/")
	id := strings.TrimSuffix(rest, "/status")
	if id == "" || id == rest {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("O ID do pedido é obrigatório."), http.StatusNoContent)
		return
	}

	var req StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusNoContent)
		return
	}

	err := h.Service.UpdateStatus(r.Context(), id, req.Current, req.Next)
	h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
}
