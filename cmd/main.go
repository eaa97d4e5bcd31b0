package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Nossos pacotes de infraestrutura e utilitários
	"gogarment/config"
	"gogarment/internal/domain"
	"gogarment/internal/pkg/cache"
	"gogarment/internal/pkg/database"
	"gogarment/internal/pkg/logger"
	"gogarment/internal/pkg/token"
	"gogarment/internal/upstream"

	// Camadas do gateway para Injeção de Dependências
	"gogarment/internal/api/catalog"
	"gogarment/internal/api/notification"
	"gogarment/internal/api/operator"
	"gogarment/internal/api/order"
	"gogarment/internal/api/router"
	"gogarment/internal/api/submission"
	"gogarment/internal/pkg/middleware"
	"gogarment/internal/repository/journalrepo"
	"gogarment/internal/repository/operatorrepo"
	"gogarment/internal/service/catalogservice"
	"gogarment/internal/service/notifyservice"
	"gogarment/internal/service/operatorservice"
	"gogarment/internal/service/orderservice"
	"gogarment/internal/service/submitservice"
)

func main() {
	// 1. Configuração e Inicialização
	log.Println("⚡ Inicializando gateway GoGarment...")
	// O godotenv.Load() procura por um arquivo chamado .env na raiz.
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", nil)

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL): diário de envios e contas de operador
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis): listagem do catálogo e rate limiting
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	log.Info("Conexão Redis estabelecida.", nil)

	// C. Cliente do catálogo upstream
	catalogClient := upstream.NewClient(upstream.Config{
		BaseURL: cfg.CatalogAPIURL,
		Token:   cfg.CatalogToken,
		Timeout: cfg.CatalogTimeout,
	}, log)
	log.Info("Cliente do catálogo inicializado.", map[string]interface{}{"base_url": cfg.CatalogAPIURL})

	// 3. INJEÇÃO DE DEPENDÊNCIAS (Montagem da Clean Architecture)
	// Ordem: Repository -> Service -> Handler

	// A. Serviço de Tokens (JWT)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	log.Debug("Serviço de Tokens JWT inicializado.", nil)

	// B. Operadores (repositório + serviço + handler)
	operatorRepo := operatorrepo.NewOperatorRepository(db, cfg.DBTimeout, log)
	operatorSvc := operatorservice.NewService(operatorRepo, tokenSvc)
	operatorHandler := operator.NewHandler(operatorSvc, log)
	log.Debug("Módulo de Operadores inicializado.", nil)

	// C. Envio de produtos (diário + pipeline + controlador + handler)
	journalRepo := journalrepo.NewJournalRepository(db, cfg.DBTimeout, log)
	pipeline := submitservice.NewPipeline(catalogClient, journalRepo, log)
	submitSvc := submitservice.NewService(pipeline, log)
	submissionHandler := submission.NewHandler(submitSvc, log)
	log.Debug("Módulo de Envio de Produtos inicializado.", nil)

	// D. Navegação do catálogo
	catalogSvc := catalogservice.NewService(catalogClient, cacheClient, log)
	catalogHandler := catalog.NewHandler(catalogSvc, log)
	submitSvc.OnSuccess(catalogSvc.InvalidateListing)
	log.Debug("Módulo de Catálogo inicializado.", nil)

	// E. Notificações (serviço + poller + handler)
	notifySvc := notifyservice.NewService(catalogClient, log)
	notificationHandler := notification.NewHandler(notifySvc, log)
	log.Debug("Módulo de Notificações inicializado.", nil)

	// F. Pedidos
	orderSvc := orderservice.NewService(catalogClient, log)
	orderHandler := order.NewHandler(orderSvc, log)
	log.Debug("Módulo de Pedidos inicializado.", nil)

	// 4. Configuração e Início do Roteador/Servidor

	authMiddleware := middleware.NewAuthMiddleware(tokenSvc)

	r := router.NewRouter(router.Deps{
		Operator:      operatorHandler,
		Submission:    submissionHandler,
		Catalog:       catalogHandler,
		Notification:  notificationHandler,
		Order:         orderHandler,
		Auth:          authMiddleware,
		Cache:         cacheClient,
		RateLimit:     cfg.RateLimitMaxRequests,
		RateLimitSpan: int(cfg.RateLimitPeriod.Seconds()),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second, // envios com fotos podem demorar
		IdleTimeout:  60 * time.Second,
	}

	// 5. Sondagem de notificações em segundo plano
	pollCtx, stopPolling := context.WithCancel(context.Background())
	poller := notifyservice.NewPoller(notifySvc, cfg.NotifyPollInterval, cfg.NotifyMaxBackoff,
		func(feed domain.NotificationFeed) {
			if feed.UnreadCount > 0 {
				log.Info("Notificações não lidas no catálogo.", map[string]interface{}{"unread": feed.UnreadCount})
			}
		}, log)
	go poller.Run(pollCtx)

	// 6. Execução e Graceful Shutdown
	go func() {
		log.Info("Gateway GoGarment ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	stopPolling()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
