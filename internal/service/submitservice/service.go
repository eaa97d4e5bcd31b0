package submitservice

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"gogarment/internal/domain"
	apperror "gogarment/internal/errors"
	"gogarment/internal/pkg/logger"
)

// Runner define o contrato que o controlador espera do pipeline.
type Runner interface {
	Run(ctx context.Context, draft domain.ProductDraft, mode domain.SubmissionMode) (domain.SubmissionResult, error)
	ResumeImages(ctx context.Context, submissionID string, draft domain.ProductDraft) (domain.SubmissionResult, error)
}

// Service adapta o pipeline a uma semântica de requisição/observação para o
// console: dispara o envio, garante voo único e expõe o último resultado.
//
// O voo único é garantido por um guard explícito (flag CAS + contador de
// geração), não por disciplina de UI: uma chamada concorrente é rejeitada
// imediatamente com erro de conflito, nunca descartada em silêncio. Reusar o
// identificador do produto em envios sobrepostos duplicaria registros no
// catálogo.
type Service struct {
	runner Runner
	logger logger.Logger

	busy       int32
	generation uint64

	mu          sync.RWMutex
	lastError   string
	lastFailure *domain.SubmissionFailure
	succeeded   bool

	onSuccess func(ctx context.Context)
}

// NewService cria e retorna uma nova instância do controlador de envio.
func NewService(runner Runner, log logger.Logger) *Service {
	return &Service{runner: runner, logger: log}
}

// ErrBusyMessage é a mensagem devolvida quando já existe um envio em voo.
const ErrBusyMessage = "Já existe um envio em andamento para este controlador."

// OnSuccess registra um gancho executado após cada envio concluído com
// sucesso. Usado para invalidar o cache da listagem de produtos.
func (s *Service) OnSuccess(fn func(ctx context.Context)) {
	s.onSuccess = fn
}

// Submit valida o rascunho e executa o pipeline completo. Erros de validação
// NUNCA alcançam a camada de rede: nenhum estágio é executado para um
// rascunho malformado.
func (s *Service) Submit(ctx context.Context, draft domain.ProductDraft, mode domain.SubmissionMode) (domain.SubmissionResult, error) {
	if !atomic.CompareAndSwapInt32(&s.busy, 0, 1) {
		// Não toca no estado observável: ele pertence ao envio em voo.
		return domain.SubmissionResult{}, apperror.NewConflictError(ErrBusyMessage)
	}
	defer atomic.StoreInt32(&s.busy, 0)

	generation := atomic.AddUint64(&s.generation, 1)
	s.resetState()

	s.logger.Debug("Envio aceito pelo controlador.", map[string]interface{}{
		"generation": generation,
		"mode":       string(mode),
	})

	if err := draft.Validate(); err != nil {
		s.recordOutcome(err)
		return domain.SubmissionResult{}, err
	}
	if mode == domain.ModeEdit && draft.ExistingID <= 0 {
		err := apperror.NewValidationError("Edição requer o identificador do produto existente.")
		s.recordOutcome(err)
		return domain.SubmissionResult{}, err
	}

	result, err := s.runner.Run(ctx, draft, mode)
	s.recordOutcome(err)
	if err != nil {
		return domain.SubmissionResult{}, err
	}
	if s.onSuccess != nil {
		s.onSuccess(ctx)
	}
	return result, nil
}

// ResumeImages retoma apenas os estágios de imagem de um envio que já
// persistiu o produto. Compartilha o guard de voo único com Submit.
func (s *Service) ResumeImages(ctx context.Context, submissionID string, draft domain.ProductDraft) (domain.SubmissionResult, error) {
	if !atomic.CompareAndSwapInt32(&s.busy, 0, 1) {
		return domain.SubmissionResult{}, apperror.NewConflictError(ErrBusyMessage)
	}
	defer atomic.StoreInt32(&s.busy, 0)

	atomic.AddUint64(&s.generation, 1)
	s.resetState()

	if err := draft.Validate(); err != nil {
		s.recordOutcome(err)
		return domain.SubmissionResult{}, err
	}

	result, err := s.runner.ResumeImages(ctx, submissionID, draft)
	s.recordOutcome(err)
	if err != nil {
		return domain.SubmissionResult{}, err
	}
	if s.onSuccess != nil {
		s.onSuccess(ctx)
	}
	return result, nil
}

// IsSubmitting indica se existe um envio em voo neste controlador.
func (s *Service) IsSubmitting() bool {
	return atomic.LoadInt32(&s.busy) == 1
}

// LastError devolve a última mensagem de erro legível ao operador
// (vazia quando o último envio teve sucesso).
func (s *Service) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// LastFailure devolve a última falha estruturada, para decisão programática
// (ex: desabilitar o reenvio completo quando o produto já persistiu).
func (s *Service) LastFailure() *domain.SubmissionFailure {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastFailure
}

// Succeeded indica se o último envio concluiu todos os estágios.
func (s *Service) Succeeded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.succeeded
}

func (s *Service) resetState() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = ""
	s.lastFailure = nil
	s.succeeded = false
}

func (s *Service) recordOutcome(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil {
		s.succeeded = true
		return
	}

	s.lastError = HumanMessage(err)

	var failure *domain.SubmissionFailure
	if errors.As(err, &failure) {
		s.lastFailure = failure
	}
}

// HumanMessage achata qualquer erro do envio em uma única mensagem legível:
// coleções de erros de campo do catálogo viram uma string unida por vírgula;
// erros sem forma conhecida caem na mensagem genérica.
func HumanMessage(err error) string {
	var upstreamErr *apperror.UpstreamError
	if errors.As(err, &upstreamErr) {
		if msg := upstreamErr.FlatMessage(); msg != "" {
			return msg
		}
		return "Falha ao enviar o produto."
	}

	var appErr apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Error()
	}

	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return "Falha ao enviar o produto."
}
