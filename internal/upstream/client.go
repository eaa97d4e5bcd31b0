package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperror "gogarment/internal/errors"
	"gogarment/internal/pkg/logger"
	"gogarment/internal/pkg/upload"
)

// Config agrupa os parâmetros de conexão com o catálogo upstream.
type Config struct {
	// BaseURL é a raiz da API do catálogo (ex: "https://catalogo.example.com/api").
	BaseURL string
	// Token é o bearer token de serviço anexado a toda requisição.
	Token string
	// Timeout é o limite por requisição; um estouro aqui é tratado como
	// qualquer outra falha do estágio em que ocorreu.
	Timeout time.Duration
}

// Client é o cliente HTTP do catálogo upstream. Ele implementa as primitivas
// de rede consumidas pelo pipeline de envio e pelos serviços administrativos;
// as camadas de serviço dependem apenas das interfaces que declaram.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     logger.Logger
}

// NewClient cria e retorna um novo cliente do catálogo.
// Esta função é chamada no main.go.
func NewClient(cfg Config, log logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: log,
	}
}

// doJSON executa uma requisição com corpo e resposta JSON. out pode ser nil
// quando a resposta não interessa.
func (c *Client) doJSON(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return apperror.NewInternalError("Falha ao serializar o corpo da requisição.", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return apperror.NewInternalError("Falha ao montar a requisição ao catálogo.", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, out)
}

// doMultipart envia um lote multipart já montado pelo empacotador de uploads.
func (c *Client) doMultipart(ctx context.Context, path string, batch *upload.Batch) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(batch.Body))
	if err != nil {
		return apperror.NewInternalError("Falha ao montar a requisição de upload.", err)
	}
	req.Header.Set("Content-Type", batch.ContentType)

	return c.do(req, nil)
}

// do anexa o bearer token, executa a requisição e traduz falhas de transporte
// e rejeições do catálogo para a taxonomia de erros do gateway.
func (c *Client) do(req *http.Request, out interface{}) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Timeout, conexão recusada, DNS: tudo vira erro de transporte.
		return apperror.NewTransportError(
			fmt.Sprintf("Falha de transporte ao chamar o catálogo (%s %s).", req.Method, req.URL.Path),
			err,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apperror.NewInternalError("Falha ao decodificar a resposta do catálogo.", err)
		}
	}
	return nil
}

// url resolve um caminho contra a base. Caminhos absolutos (cursores "next"
// devolvidos pelo próprio catálogo) são usados como estão.
func (c *Client) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + path
}
