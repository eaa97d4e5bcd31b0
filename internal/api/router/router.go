package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"gogarment/internal/api/catalog"
	"gogarment/internal/api/notification"
	"gogarment/internal/api/operator"
	"gogarment/internal/api/order"
	"gogarment/internal/api/submission"
	"gogarment/internal/pkg/cache"
	"gogarment/internal/pkg/middleware"
)

// Deps agrupa os handlers e a infraestrutura que o roteador precisa receber
// por injeção de dependências.
type Deps struct {
	Operator     *operator.Handler
	Submission   *submission.Handler
	Catalog      *catalog.Handler
	Notification *notification.Handler
	Order        *order.Handler

	Auth func(next http.HandlerFunc) http.HandlerFunc

	Cache         cache.Client
	RateLimit     int
	RateLimitSpan int // segundos da janela
}

// NewRouter configura e retorna o roteador HTTP principal.
func NewRouter(deps Deps) http.Handler {

	// Usamos o ServeMux padrão do net/http para roteamento
	mux := http.NewServeMux()

	// --- 1. Rotas utilitárias ---
	mux.HandleFunc("/ping", PingHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// --- 2. Rotas públicas de operador (v1) ---
	mux.HandleFunc("/v1/register", deps.Operator.RegisterOperatorHandler)
	mux.HandleFunc("/v1/login", deps.Operator.LoginOperatorHandler)

	// --- 3. Rotas administrativas (v1), protegidas por JWT ---
	auth := deps.Auth

	// GET lista. POST /v1/products/submit cai no padrão com barra abaixo.
	mux.HandleFunc("/v1/products", auth(deps.Catalog.ListProductsHandler))

	// /v1/products/... despacha por sufixo: envios para o handler de
	// submissão, o restante para a navegação do catálogo.
	mux.HandleFunc("/v1/products/", auth(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/products/submit":
			deps.Submission.SubmitProductHandler(w, r)
		case strings.HasSuffix(r.URL.Path, "/submit"):
			deps.Submission.UpdateProductHandler(w, r)
		default:
			deps.Catalog.ProductByIDHandler(w, r)
		}
	}))

	mux.HandleFunc("/v1/submissions/status", auth(deps.Submission.StatusHandler))
	mux.HandleFunc("/v1/submissions/", auth(deps.Submission.ResumeImagesHandler))

	mux.HandleFunc("/v1/notifications", auth(deps.Notification.FeedHandler))
	mux.HandleFunc("/v1/notifications/", auth(deps.Notification.MarkReadHandler))

	mux.HandleFunc("/v1/orders", auth(deps.Order.ListOrdersHandler))
	mux.HandleFunc("/v1/orders/", auth(deps.Order.UpdateStatusHandler))

	// --- 4. Middlewares globais ---
	var handler http.Handler = mux
	if deps.Cache != nil && deps.RateLimit > 0 {
		handler = middleware.RateLimiter(deps.Cache, deps.RateLimit, spanSeconds(deps.RateLimitSpan))(handler)
	}
	handler = middleware.Metrics(handler)

	return handler
}

// spanSeconds converte a janela configurada (em segundos) para Duration,
// com um mínimo de um segundo.
func spanSeconds(s int) time.Duration {
	if s < 1 {
		s = 1
	}
	return time.Duration(s) * time.Second
}

// PingHandler é o health check do gateway.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
