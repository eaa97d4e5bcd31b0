package upstream

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	apperror "gogarment/internal/errors"
)

// errorBody cobre os três formatos de erro que o catálogo produz:
// uma string pura, um objeto {"message": ...} ou uma coleção de erros de
// campo {"errors": {"campo": ["msg", ...]}}.
type errorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// decodeError lê o corpo de uma resposta não-2xx do catálogo e o achata em um
// UpstreamError com a mensagem legível ao operador.
func decodeError(resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apperror.NewUpstreamError(resp.StatusCode, genericMessage(resp.StatusCode), nil)
	}

	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return apperror.NewUpstreamError(resp.StatusCode, genericMessage(resp.StatusCode), nil)
	}

	// 1. String JSON pura ("mensagem")
	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil && plain != "" {
		return apperror.NewUpstreamError(resp.StatusCode, plain, nil)
	}

	// 2. Objeto com message e/ou errors
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		if len(body.Errors) > 0 {
			return apperror.NewUpstreamError(resp.StatusCode, body.Message, body.Errors)
		}
		if body.Message != "" {
			return apperror.NewUpstreamError(resp.StatusCode, body.Message, nil)
		}
	}

	// 3. Corpo não-JSON (HTML de proxy, texto): usa uma mensagem genérica,
	// preservando o status para o diagnóstico.
	return apperror.NewUpstreamError(resp.StatusCode, genericMessage(resp.StatusCode), nil)
}

func genericMessage(status int) string {
	if status >= 500 {
		return "O catálogo está indisponível no momento."
	}
	return "O catálogo rejeitou a requisição."
}
