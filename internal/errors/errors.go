package errors

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// AppError é a interface central para todos os erros customizados do gateway.
// Ela permite que o código externo (Handler) acesse a Categoria e a Mensagem do erro.
type AppError interface {
	Error() string    // Implementa a interface error padrão do Go
	Category() string // Categoria do erro (e.g., "VALIDATION", "NOT_FOUND", "INTERNAL")
	HTTPStatus() int  // Código HTTP sugerido para o Handler
	Unwrap() error    // Permite encapsular erros subjacentes (original error)
}

// --- Tipos de Erro Específicos (Erros de Domínio) ---

// ValidationError representa falhas de validação de dados de entrada.
// O campo Field, quando preenchido, atribui o erro a um campo específico do
// rascunho (ex: "variants[1].cost_price"), permitindo ao console destacá-lo.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("Erro de Validação [%s]: %s", e.Field, e.Msg)
	}
	return fmt.Sprintf("Erro de Validação: %s", e.Msg)
}
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) HTTPStatus() int  { return http.StatusBadRequest } // 400
func (e *ValidationError) Unwrap() error    { return nil }                   // Não encapsula erro subjacente

// NewValidationError cria um novo erro de validação sem atribuição de campo.
func NewValidationError(msg string) AppError {
	return &ValidationError{Msg: msg}
}

// NewFieldValidationError cria um erro de validação atribuído a um campo.
func NewFieldValidationError(field, msg string) AppError {
	return &ValidationError{Field: field, Msg: msg}
}

// NotFoundError representa a ausência de um recurso solicitado.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return fmt.Sprintf("Recurso não encontrado: %s", e.Msg) }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound } // 404
func (e *NotFoundError) Unwrap() error    { return nil }

// NewNotFoundError cria um novo erro de recurso não encontrado.
func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// ConflictError representa um conflito na regra de negócio (e.g., envio já em andamento).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string    { return fmt.Sprintf("Conflito de estado: %s", e.Msg) }
func (e *ConflictError) Category() string { return "CONFLICT" }
func (e *ConflictError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *ConflictError) Unwrap() error    { return nil }

// NewConflictError cria um novo erro de conflito.
func NewConflictError(msg string) AppError {
	return &ConflictError{Msg: msg}
}

// UnauthorizedError representa falhas de autenticação ou autorização.
type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string    { return fmt.Sprintf("Não autorizado: %s", e.Msg) }
func (e *UnauthorizedError) Category() string { return "UNAUTHORIZED" }
func (e *UnauthorizedError) HTTPStatus() int  { return http.StatusUnauthorized } // 401
func (e *UnauthorizedError) Unwrap() error    { return nil }

// NewUnauthorizedError cria um novo erro de autenticação/autorização.
func NewUnauthorizedError(msg string) AppError {
	return &UnauthorizedError{Msg: msg}
}

// --- Tipos de Erro de Integração (Catálogo Upstream) ---

// UpstreamError representa uma rejeição do catálogo upstream em qualquer
// estágio do envio. Carrega o status HTTP retornado pelo catálogo e a coleção
// de erros de campo quando o backend responde nesse formato.
type UpstreamError struct {
	StatusCode int
	Msg        string
	Fields     map[string][]string
	Err        error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Erro do catálogo (HTTP %d): %s", e.StatusCode, e.FlatMessage())
}
func (e *UpstreamError) Category() string { return "UPSTREAM_ERROR" }
func (e *UpstreamError) HTTPStatus() int {
	// Rejeições 4xx do catálogo são devolvidas como estão (o operador pode
	// corrigir o rascunho); falhas 5xx e de transporte viram 502.
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return e.StatusCode
	}
	return http.StatusBadGateway
}
func (e *UpstreamError) Unwrap() error { return e.Err }

/// FlatMessage devolve a mensagem legível ao operador: os erros de campo são
// achatados e unidos por vírgula (ordem de chave estável); na ausência deles,
// a mensagem simples do catálogo.
func (e *UpstreamError) FlatMessage() string {
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var parts []string
		for _, k := range keys {
			parts = append(parts, e.Fields[k]...)
		}
		return strings.Join(parts, ", ")
	}
	return e.Msg
}

// NewUpstreamError cria um erro de rejeição do catálogo upstream.
func NewUpstreamError(statusCode int, msg string, fields map[string][]string) *UpstreamError {
	return &UpstreamError{StatusCode: statusCode, Msg: msg, Fields: fields}
}

// NewTransportError encapsula uma falha de transporte (timeout, conexão) como
// erro de integração. Um timeout é tratado exatamente como qualquer outra
// falha do estágio em que ocorreu.
func NewTransportError(msg string, err error) *UpstreamError {
	return &UpstreamError{StatusCode: 0, Msg: msg, Err: err}
}

// DataIntegrityError sinaliza que a resposta do catálogo viola uma
// pré-condição estrutural (contagem ou ordem das variantes divergente da
// enviada). NUNCA deve ser ignorado silenciosamente: prosseguir associaria
// imagens à variante errada.
type DataIntegrityError struct {
	Msg string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("Erro de integridade de dados: %s", e.Msg)
}
func (e *DataIntegrityError) Category() string { return "DATA_INTEGRITY" }
func (e *DataIntegrityError) HTTPStatus() int  { return http.StatusBadGateway } // 502
func (e *DataIntegrityError) Unwrap() error    { return nil }

// NewDataIntegrityError cria um novo erro de integridade de dados.
func NewDataIntegrityError(msg string) AppError {
	return &DataIntegrityError{Msg: msg}
}

// --- Tipos de Erro de Infraestrutura (Encapsulamento) ---

// InternalError representa falhas inesperadas no servidor, serviço ou repositório.
type InternalError struct {
	Msg string
	Err error // Erro original subjacente (e.g., erro do driver SQL)
}

func (e *InternalError) Error() string    { return fmt.Sprintf("Erro Interno: %s", e.Msg) }
func (e *InternalError) Category() string { return "INTERNAL_ERROR" }
func (e *InternalError) HTTPStatus() int  { return http.StatusInternalServerError } // 500
func (e *InternalError) Unwrap() error    { return e.Err }

// NewInternalError cria um erro de servidor (para falhas de lógica ou código não esperado).
func NewInternalError(msg string, err error) AppError {
	return &InternalError{Msg: msg, Err: err}
}

// NewDBError é um atalho para criar um InternalError específico de falhas no DB.
func NewDBError(msg string, err error) AppError {
	return NewInternalError(fmt.Sprintf("%s (DB): %s", msg, err.Error()), err)
}

// --- Helper para o Handler (Tradução Final) ---

// MapToHTTPStatus recebe um erro e o traduz para o código HTTP e corpo de resposta.
func MapToHTTPStatus(err error) (int, string, string) {
	if appErr, ok := err.(AppError); ok {
		// O erro é tipado (ValidationError, UpstreamError, etc.)
		return appErr.HTTPStatus(), appErr.Category(), appErr.Error()
	}

	// Erro não tipado (e.g., erro simples de pacote Go que não implementa AppError)
	// Tratar como erro interno genérico.
	return http.StatusInternalServerError, "UNKNOWN_ERROR", "Ocorreu um erro inesperado."
}
