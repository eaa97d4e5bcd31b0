package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"gogarment/internal/domain"
	apperror "gogarment/internal/errors"
	"gogarment/internal/pkg/logger"
)

// NotificationService define o contrato do feed de notificações.
type NotificationService interface {
	Feed(ctx context.Context, nextURL string) (domain.NotificationFeed, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
}

// Handler agrupa todos os métodos de Handler das notificações.
type Handler struct {
	Service NotificationService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc NotificationService, log logger.Logger) *Handler {
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
		h.Logger.Error("Erro interno no serviço de notificações:", err)
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

// FeedHandler lida com GET /v1/notifications.
// @Summary Feed de notificações do catálogo
// @Description Primeira página por padrão; o cursor "next" devolvido segue para a página seguinte via ?next=.
// @Tags notifications
// @Produce json
// @Param next query string false "Cursor da página seguinte, como devolvido pelo feed anterior"
// @Success 200 {object} domain.NotificationFeed "Página do feed com a contagem de não lidas"
// @Failure 502 {object} domain.ErrorResponse "Catálogo indisponível"
// @Router /notifications [get]
func (h *Handler) FeedHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	feed, err := h.Service.Feed(r.Context(), r.URL.Query().Get("next"))
	h.handleServiceResponse(w, r, feed, err, http.StatusOK)
}

// MarkReadHandler lida com POST /v1/notifications/{id}/mark-read e
// POST /v1/notifications/mark-all-read.
// @Summary Marca notificações como lidas
// @Tags notifications
// @Produce json
// @Param id path string false "ID da notificação (ausente em mark-all-read)"
// @Success 204 "Marcada como lida"
// @Failure 404 {object} domain.ErrorResponse "Notificação não encontrada"
// @Router /notifications/{id}/mark-read [post]
func (h *Handler) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/notifications/"), "/")

	var err error
	switch {
	case rest == "mark-all-read":
		err = h.Service.MarkAllRead(r.Context())
	case strings.HasSuffix(rest, "/mark-read"):
		id := strings.TrimSuffix(rest, "/mark-read")
		err = h.Service.MarkRead(r.Context(), id)
	default:
		err = apperror.NewNotFoundError("Rota de notificação desconhecida.")
	}

	h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
}
