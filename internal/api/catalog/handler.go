package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"gogarment/internal/domain"
	apperror "gogarment/internal/errors"
	"gogarment/internal/pkg/logger"
)

// CatalogService define o contrato das operações de navegação do catálogo.
type CatalogService interface {
	ListProducts(ctx context.Context, query domain.ProductQuery) (domain.ProductPage, error)
	GetProduct(ctx context.Context, id int64) (domain.ServerProduct, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// Handler agrupa todos os métodos de Handler da navegação do catálogo.
type Handler struct {
	Service CatalogService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc CatalogService, log logger.Logger) *Handler {
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
		h.Logger.Error("Erro interno no serviço de catálogo:", err)
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

// ListProductsHandler lida com GET /v1/products.
// @Summary Lista os produtos do catálogo
// @Description Listagem administrativa com paginação, busca textual e filtro de estoque (ALL, LOW, HIGH, RECENT).
// @Tags catalog
// @Produce json
// @Param page query int false "Página (padrão 1)"
// @Param page_size query int false "Itens por página (padrão 12, máx 100)"
// @Param search query string false "Busca textual"
// @Param filter query string false "Recorte de estoque: ALL, LOW, HIGH ou RECENT"
// @Success 200 {object} domain.ProductPage "Página de produtos"
// @Failure 502 {object} domain.ErrorResponse "Catálogo indisponível"
// @Router /products [get]
func (h *Handler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	query := domain.ProductQuery{
		Search: r.URL.Query().Get("search"),
		Filter: domain.StockFilter(strings.ToUpper(r.URL.Query().Get("filter"))),
	}
	query.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	query.PageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))

	page, err := h.Service.ListProducts(r.Context(), query)
	h.handleServiceResponse(w, r, page, err, http.StatusOK)
}

// ProductByIDHandler lida com GET e DELETE em /v1/products/{id}.
// @Summary Busca ou remove um produto pelo ID
// @Tags catalog
// @Produce json
// @Param id path int true "ID do produto no catálogo"
// @Success 200 {object} domain.ServerProduct "Produto completo"
// @Success 204 "Produto removido"
// @Failure 404 {object} domain.ErrorResponse "Produto não encontrado"
// @Failure 502 {object} domain.ErrorResponse "Catálogo indisponível"
// @Router /products/{id} [get]
func (h *Handler) ProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	idStr := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/products/"), "/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.handleServiceResponse(w, r, nil,
			apperror.NewValidationError("O ID do produto na URL deve ser um inteiro."), http.StatusOK)
		return
	}

	switch r.Method {
	case http.MethodGet:
		product, err := h.Service.GetProduct(r.Context(), id)
		h.handleServiceResponse(w, r, product, err, http.StatusOK)
	case http.MethodDelete:
		err := h.Service.DeleteProduct(r.Context(), id)
		h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}
