package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"gogarment/internal/domain"
	apperror "gogarment/internal/errors"
	"gogarment/internal/pkg/logger"
	"gogarment/internal/service/submitservice"
)

// maxSubmissionBytes limita o corpo multipart de um envio (produto + fotos).
const maxSubmissionBytes = 64 << 20 // 64 MiB

// SubmissionService define o contrato do controlador de envios.
type SubmissionService interface {
	Submit(ctx context.Context, draft domain.ProductDraft, mode domain.SubmissionMode) (domain.SubmissionResult, error)
	ResumeImages(ctx context.Context, submissionID string, draft domain.ProductDraft) (domain.SubmissionResult, error)
	IsSubmitting() bool
	LastError() string
	LastFailure() *domain.SubmissionFailure
	Succeeded() bool
}

// Handler agrupa todos os métodos de Handler do envio de produtos.
type Handler struct {
	Service SubmissionService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc SubmissionService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse padroniza o tratamento de erros e respostas HTTP. Uma
// falha de envio vira um corpo estruturado com estágio, índice da variante e o
// sinal de produto já persistido, que é o que o console usa para decidir entre
// reenvio completo e retomada de imagens.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			json.NewEncoder(w).Encode(data)
		}
		return
	}

	var failure *domain.SubmissionFailure
	if errors.As(err, &failure) {
		status, category, _ := apperror.MapToHTTPStatus(failure.Unwrap())
		if status >= 500 {
			h.Logger.Error("Falha de envio no serviço de submissão:", err)
		}

		errorResponse := map[string]interface{}{
			"code":              status,
			"category":          category,
			"message":           submitservice.HumanMessage(err),
			"submission_id":     failure.SubmissionID,
			"stage":             failure.Stage,
			"variant_index":     failure.VariantIndex,
			"product_persisted": failure.ProductPersisted,
			"retry_safe":        failure.RetrySafe(),
		}
		if failure.ProductID != 0 {
			errorResponse["product_id"] = failure.ProductID
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(errorResponse)
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)
	if status >= 500 {
		h.Logger.Error("Erro interno no serviço de submissão:", err)
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

// SubmitProductHandler lida com POST /v1/products/submit (modo criação).
// @Summary Envia um novo produto ao catálogo
// @Description Recebe o rascunho (JSON no campo "payload") e as fotos como multipart, e executa o envio encadeado em três estágios.
// @Tags submissions
// @Accept mpfd
// @Produce json
// @Param payload formData string true "Rascunho do produto em JSON"
// @Success 201 {object} domain.SubmissionResult "Produto enviado com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Rascunho inválido"
// @Failure 409 {object} domain.ErrorResponse "Já existe um envio em andamento"
// @Failure 502 {object} domain.ErrorResponse "Catálogo rejeitou ou está indisponível"
// @Router /products/submit [post]
func (h *Handler) SubmitProductHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	draft, err := h.parseDraft(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	result, err := h.Service.Submit(r.Context(), draft, domain.ModeCreate)
	h.handleServiceResponse(w, r, result, err, http.StatusCreated)
}

// UpdateProductHandler lida com PUT /v1/products/{id}/submit (modo edição).
// @Summary Reenvia um produto existente com alterações
// @Description Mesmo fluxo em três estágios do envio, no modo de edição: variantes pré-existentes correlacionam por ID.
// @Tags submissions
// @Accept mpfd
// @Produce json
// @Param id path int true "ID do produto no catálogo"
// @Param payload formData string true "Rascunho do produto em JSON"
// @Success 200 {object} domain.SubmissionResult "Produto atualizado com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Rascunho inválido"
// @Failure 409 {object} domain.ErrorResponse "Já existe um envio em andamento"
// @Failure 502 {object} domain.ErrorResponse "Catálogo rejeitou ou está indisponível"
// @Router /products/{id}/submit [put]
func (h *Handler) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	id, err := pathID(r.URL.Path, "/v1/products/", "/submit")
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	draft, err := h.parseDraft(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	draft.ExistingID = id

	result, err := h.Service.Submit(r.Context(), draft, domain.ModeEdit)
	h.handleServiceResponse(w, r, result, err, http.StatusOK)
}

// ResumeImagesHandler lida com POST /v1/submissions/{id}/resume-images.
// @Summary Retoma apenas os estágios de imagem de um envio que falhou
// @Description Para envios cujo produto já foi persistido: rebusca o produto e reexecuta apenas os uploads, sem duplicar o registro.
// @Tags submissions
// @Accept mpfd
// @Produce json
// @Param id path string true "ID do envio no diário"
// @Param payload formData string true "Rascunho do produto em JSON"
// @Success 200 {object} domain.SubmissionResult "Imagens enviadas com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Envio não persistiu o produto"
// @Failure 404 {object} domain.ErrorResponse "Envio não encontrado"
// @Router /submissions/{id}/resume-images [post]
func (h *Handler) ResumeImagesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	trimmed := strings.TrimPrefix(r.URL.Path, "/v1/submissions/")
	submissionID := strings.TrimSuffix(trimmed, "/resume-images")
	if submissionID == "" || submissionID == trimmed {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("O ID do envio é obrigatório."), http.StatusOK)
		return
	}

	draft, err := h.parseDraft(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	result, err := h.Service.ResumeImages(r.Context(), submissionID, draft)
	h.handleServiceResponse(w, r, result, err, http.StatusOK)
}

// StatusHandler lida com GET /v1/submissions/status: a superfície de
// observação do controlador.
// @Summary Estado atual do controlador de envios
// @Tags submissions
// @Produce json
// @Success 200 {object} map[string]interface{} "Estado do controlador"
// @Router /submissions/status [get]
func (h *Handler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	status := map[string]interface{}{
		"is_submitting": h.Service.IsSubmitting(),
		"succeeded":     h.Service.Succeeded(),
		"last_error":    h.Service.LastError(),
	}
	if failure := h.Service.LastFailure(); failure != nil {
		status["last_failure"] = failure
	}

	h.handleServiceResponse(w, r, status, nil, http.StatusOK)
}

// parseDraft monta o rascunho a partir do multipart: o campo "payload" traz o
// JSON do produto e das variantes; as fotos chegam como arquivos em "images"
// (nível de produto, com "view_types" alinhado por posição) e em
// "variant_images_{i}" / "variant_view_types_{i}" para a variante de índice i.
func (h *Handler) parseDraft(r *http.Request) (domain.ProductDraft, error) {
	if err := r.ParseMultipartForm(maxSubmissionBytes); err != nil {
		return domain.ProductDraft{}, apperror.NewValidationError("Corpo multipart inválido ou grande demais.")
	}

	payload := r.FormValue("payload")
	if payload == "" {
		return domain.ProductDraft{}, apperror.NewValidationError("O campo 'payload' com o rascunho em JSON é obrigatório.")
	}

	var draft domain.ProductDraft
	if err := json.Unmarshal([]byte(payload), &draft); err != nil {
		return domain.ProductDraft{}, apperror.NewValidationError("Payload JSON inválido.")
	}

	form := r.MultipartForm

	images, err := readAttachments(form, "images", "view_types")
	if err != nil {
		return domain.ProductDraft{}, err
	}
	draft.Images = images

	for i := range draft.Variants {
		attachments, err := readAttachments(form,
			fmt.Sprintf("variant_images_%d", i),
			fmt.Sprintf("variant_view_types_%d", i),
		)
		if err != nil {
			return domain.ProductDraft{}, err
		}
		draft.Variants[i].Images = attachments
	}

	return draft, nil
}

// readAttachments lê os arquivos de um campo do formulário, pareando cada um
// com sua marcação de visão pela posição.
func readAttachments(form *multipart.Form, fileField, viewField string) ([]domain.ImageAttachment, error) {
	files := form.File[fileField]
	if len(files) == 0 {
		return nil, nil
	}
	viewTypes := form.Value[viewField]

	attachments := make([]domain.ImageAttachment, 0, len(files))
	for i, header := range files {
		file, err := header.Open()
		if err != nil {
			return nil, apperror.NewInternalError("Falha ao ler o arquivo enviado.", err)
		}
		content, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, apperror.NewInternalError("Falha ao ler o arquivo enviado.", err)
		}

		attachment := domain.ImageAttachment{
			FileName: header.Filename,
			Content:  content,
			Position: i,
		}
		if i < len(viewTypes) {
			attachment.ViewType = viewTypes[i]
		}
		attachments = append(attachments, attachment)
	}
	return attachments, nil
}

// pathID extrai o ID numérico de um caminho no formato prefixo/{id}/sufixo.
func pathID(path, prefix, suffix string) (int64, error) {
	trimmed := strings.TrimPrefix(path, prefix)
	trimmed = strings.TrimSuffix(trimmed, suffix)
	id, err := strconv.ParseInt(strings.Trim(trimmed, "/"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NewValidationError("O ID do produto na URL deve ser um inteiro positivo.")
	}
	return id, nil
}
