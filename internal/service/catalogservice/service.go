package catalogservice

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gogarment/internal/domain"
	apperror "gogarment/internal/errors"
	"gogarment/internal/pkg/cache"
	"gogarment/internal/pkg/logger"
)

// CatalogAPI é o contrato das primitivas de leitura e remoção do catálogo.
type CatalogAPI interface {
	ListProducts(ctx context.Context, query domain.ProductQuery) (domain.ProductPage, error)
	GetProduct(ctx context.Context, id int64) (domain.ServerProduct, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// Chave e TTL do cache da primeira página da listagem padrão. Só a listagem
// sem busca e sem filtro é cacheada: é a tela de entrada do console e a única
// consulta repetida o bastante para compensar a janela de dado velho.
const (
	firstPageCacheKey = "catalog:products:first_page"
	firstPageCacheTTL = 60 * time.Second
)

// Service implementa as operações de navegação do catálogo para o console.
type Service struct {
	api    CatalogAPI
	cache  cache.Client
	logger logger.Logger
}

// NewService cria uma nova instância do serviço de catálogo.
func NewService(api CatalogAPI, cacheClient cache.Client, log logger.Logger) *Service {
	return &Service{
		api:    api,
		cache:  cacheClient,
		logger: log,
	}
}

// ListProducts lista os produtos do catálogo com paginação, busca e filtro de
// estoque. Página e tamanho fora da faixa são normalizados, não rejeitados.
func (s *Service) ListProducts(ctx context.Context, query domain.ProductQuery) (domain.ProductPage, error) {
	query = normalize(query)

	if s.cacheable(query) {
		if page, ok := s.fromCache(ctx); ok {
			return page, nil
		}
	}

	page, err := s.api.ListProducts(ctx, query)
	if err != nil {
		return domain.ProductPage{}, err
	}

	if s.cacheable(query) {
		s.toCache(ctx, page)
	}
	return page, nil
}

// GetProduct busca um produto completo, com variantes e imagens, pelo ID.
func (s *Service) GetProduct(ctx context.Context, id int64) (domain.ServerProduct, error) {
	if id <= 0 {
		return domain.ServerProduct{}, apperror.NewValidationError("O ID do produto deve ser positivo.")
	}
	return s.api.GetProduct(ctx, id)
}

// DeleteProduct remove um produto do catálogo e invalida o cache da listagem.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperror.NewValidationError("O ID do produto deve ser positivo.")
	}

	if err := s.api.DeleteProduct(ctx, id); err != nil {
		return err
	}

	s.InvalidateListing(ctx)
	return nil
}

// InvalidateListing descarta a primeira página cacheada da listagem. Chamado
// após exclusões e após envios concluídos, que mudam o conteúdo da listagem.
func (s *Service) InvalidateListing(ctx context.Context) {
	if err := s.cache.Delete(ctx, firstPageCacheKey); err != nil {
		// Invalidação é melhor esforço: o TTL curto limita o dado velho.
		s.logger.Warn("Falha ao invalidar o cache da listagem.", map[string]interface{}{"error": err.Error()})
	}
}

// normalize aplica os limites de paginação e o filtro padrão.
func normalize(query domain.ProductQuery) domain.ProductQuery {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize < 1 {
		query.PageSize = domain.DefaultPageSize
	}
	if query.PageSize > domain.MaxPageSize {
		query.PageSize = domain.MaxPageSize
	}
	if query.Filter == "" {
		query.Filter = domain.FilterAll
	}
	return query
}

func (s *Service) cacheable(query domain.ProductQuery) bool {
	return query.Page == 1 &&
		query.PageSize == domain.DefaultPageSize &&
		query.Search == "" &&
		query.Filter == domain.FilterAll
}

func (s *Service) fromCache(ctx context.Context) (domain.ProductPage, bool) {
	raw, err := s.cache.Get(ctx, firstPageCacheKey)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("Falha ao ler o cache da listagem.", map[string]interface{}{"error": err.Error()})
		}
		return domain.ProductPage{}, false
	}

	var page domain.ProductPage
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		s.logger.Warn("Cache da listagem com payload inválido; ignorando.", map[string]interface{}{"error": err.Error()})
		return domain.ProductPage{}, false
	}
	return page, true
}

func (s *Service) toCache(ctx context.Context, page domain.ProductPage) {
	raw, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, firstPageCacheKey, string(raw), firstPageCacheTTL); err != nil {
		s.logger.Warn("Falha ao gravar o cache da listagem.", map[string]interface{}{"error": err.Error()})
	}
}
