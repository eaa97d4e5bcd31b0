package submitservice_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gogarment/internal/domain"
	apperror "gogarment/internal/errors"
	"gogarment/internal/pkg/logger"
	"gogarment/internal/service/submitservice"
)

// MockRunner é uma implementação mock do executor de envios.
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, draft domain.ProductDraft, mode domain.SubmissionMode) (domain.SubmissionResult, error) {
	args := m.Called(ctx, draft, mode)
	return args.Get(0).(domain.SubmissionResult), args.Error(1)
}

func (m *MockRunner) ResumeImages(ctx context.Context, submissionID string, draft domain.ProductDraft) (domain.SubmissionResult, error) {
	args := m.Called(ctx, submissionID, draft)
	return args.Get(0).(domain.SubmissionResult), args.Error(1)
}

func newController(runner *MockRunner) *submitservice.Service {
	return submitservice.NewService(runner, logger.NewLogger("error"))
}

func validDraft() domain.ProductDraft {
	return domain.ProductDraft{
		CategoryID:  3,
		Name:        "Saree A",
		ProductType: "saree",
	}
}

// TestSubmit_InvalidDraft_NoNetworkCall: validação local falha antes de
// qualquer chamada de rede e o estado observável reflete o erro.
func TestSubmit_InvalidDraft_NoNetworkCall(t *testing.T) {
	runner := new(MockRunner)
	ctrl := newController(runner)

	draft := validDraft()
	draft.CategoryID = 0

	_, err := ctrl.Submit(context.Background(), draft, domain.ModeCreate)

	var validation *apperror.ValidationError
	require.ErrorAs(t, err, &validation)
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)

	assert.False(t, ctrl.Succeeded())
	assert.NotEmpty(t, ctrl.LastError())
	assert.False(t, ctrl.IsSubmitting())
}

// TestSubmit_NonNumericPrice_FieldAttributed: preço não numérico é rejeitado
// localmente com o caminho do campo da variante na mensagem.
func TestSubmit_NonNumericPrice_FieldAttributed(t *testing.T) {
	runner := new(MockRunner)
	ctrl := newController(runner)

	draft := validDraft()
	draft.Variants = []domain.VariantDraft{{Color: "red", Size: "M", CostPrice: "abc", WholesalePrice: "15"}}

	_, err := ctrl.Submit(context.Background(), draft, domain.ModeCreate)

	var validation *apperror.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "variants[0].cost_price", validation.Field)
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
}

// TestSubmit_EditWithoutID_Rejected: modo de edição sem identificador do
// produto existente é erro de validação, não chamada de rede.
func TestSubmit_EditWithoutID_Rejected(t *testing.T) {
	runner := new(MockRunner)
	ctrl := newController(runner)

	_, err := ctrl.Submit(context.Background(), validDraft(), domain.ModeEdit)

	var validation *apperror.ValidationError
	assert.ErrorAs(t, err, &validation)
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
}

// TestSubmit_Success_StateSurface: um envio bem-sucedido limpa o erro
// anterior e marca sucesso.
func TestSubmit_Success_StateSurface(t *testing.T) {
	runner := new(MockRunner)
	ctrl := newController(runner)

	runner.On("Run", mock.Anything, mock.Anything, domain.ModeCreate).
		Return(domain.SubmissionResult{SubmissionID: "sub-1", ProductID: 77}, nil).Once()

	result, err := ctrl.Submit(context.Background(), validDraft(), domain.ModeCreate)

	assert.NoError(t, err)
	assert.Equal(t, int64(77), result.ProductID)
	assert.True(t, ctrl.Succeeded())
	assert.Empty(t, ctrl.LastError())
	assert.Nil(t, ctrl.LastFailure())
}

// TestSubmit_SingleFlight: com um envio em voo, a segunda chamada é rejeitada
// imediatamente com erro de conflito, sem enfileirar.
func TestSubmit_SingleFlight(t *testing.T) {
	runner := new(MockRunner)
	ctrl := newController(runner)

	entered := make(chan struct{})
	release := make(chan struct{})

	runner.On("Run", mock.Anything, mock.Anything, domain.ModeCreate).
		Run(func(args mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(domain.SubmissionResult{SubmissionID: "sub-1"}, nil).Once()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := ctrl.Submit(context.Background(), validDraft(), domain.ModeCreate)
		assert.NoError(t, err)
	}()

	<-entered
	assert.True(t, ctrl.IsSubmitting())

	_, err := ctrl.Submit(context.Background(), validDraft(), domain.ModeCreate)
	var conflict *apperror.ConflictError
	assert.ErrorAs(t, err, &conflict)

	close(release)
	wg.Wait()

	assert.False(t, ctrl.IsSubmitting())
	runner.AssertNumberOfCalls(t, "Run", 1)
}

// TestSubmit_FailureSurface_FlattensFieldErrors: a falha com coleção de erros
// de campo do catálogo vira uma única mensagem unida por vírgula, e a falha
// estruturada fica disponível para o console decidir o caminho de reenvio.
func TestSubmit_FailureSurface_FlattensFieldErrors(t *testing.T) {
	runner := new(MockRunner)
	ctrl := newController(runner)

	upstream := apperror.NewUpstreamError(400, "", map[string][]string{
		"name":        {"Já existe um produto com este nome."},
		"category_id": {"Categoria inválida."},
	})
	failure := &domain.SubmissionFailure{
		SubmissionID:     "sub-2",
		Stage:            domain.StageCreateOrUpdate,
		VariantIndex:     -1,
		ProductPersisted: false,
		Err:              upstream,
	}
	runner.On("Run", mock.Anything, mock.Anything, domain.ModeCreate).
		Return(domain.SubmissionResult{}, failure).Once()

	_, err := ctrl.Submit(context.Background(), validDraft(), domain.ModeCreate)
	require.Error(t, err)

	// Chaves ordenadas: category_id antes de name.
	assert.Equal(t, "Categoria inválida., Já existe um produto com este nome.", ctrl.LastError())
	require.NotNil(t, ctrl.LastFailure())
	assert.True(t, ctrl.LastFailure().RetrySafe())
	assert.False(t, ctrl.Succeeded())
}

// TestSubmit_RetryAfterFailure_ResetsState: depois de uma falha, um novo
// envio completo é aceito e limpa o estado anterior.
func TestSubmit_RetryAfterFailure_ResetsState(t *testing.T) {
	runner := new(MockRunner)
	ctrl := newController(runner)

	runner.On("Run", mock.Anything, mock.Anything, domain.ModeCreate).
		Return(domain.SubmissionResult{}, apperror.NewTransportError("timeout", errors.New("eof"))).Once()
	runner.On("Run", mock.Anything, mock.Anything, domain.ModeCreate).
		Return(domain.SubmissionResult{SubmissionID: "sub-3", ProductID: 10}, nil).Once()

	_, err := ctrl.Submit(context.Background(), validDraft(), domain.ModeCreate)
	require.Error(t, err)
	assert.NotEmpty(t, ctrl.LastError())

	result, err := ctrl.Submit(context.Background(), validDraft(), domain.ModeCreate)
	assert.NoError(t, err)
	assert.Equal(t, int64(10), result.ProductID)
	assert.True(t, ctrl.Succeeded())
	assert.Empty(t, ctrl.LastError())
	assert.Nil(t, ctrl.LastFailure())
}

// TestResumeImages_SharesSingleFlightGuard: a retomada disputa o mesmo guard
// de voo único que o envio completo.
func TestResumeImages_SharesSingleFlightGuard(t *testing.T) {
	runner := new(MockRunner)
	ctrl := newController(runner)

	entered := make(chan struct{})
	release := make(chan struct{})

	runner.On("ResumeImages", mock.Anything, "sub-4", mock.Anything).
		Run(func(args mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(domain.SubmissionResult{SubmissionID: "sub-4"}, nil).Once()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := ctrl.ResumeImages(context.Background(), "sub-4", validDraft())
		assert.NoError(t, err)
	}()

	<-entered
	_, err := ctrl.Submit(context.Background(), validDraft(), domain.ModeCreate)
	var conflict *apperror.ConflictError
	assert.ErrorAs(t, err, &conflict)

	close(release)
	wg.Wait()
}

// TestHumanMessage: achatamento de cada forma de erro em mensagem única.
func TestHumanMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "mensagem simples do catálogo",
			err:      apperror.NewUpstreamError(400, "Requisição malformada.", nil),
			expected: "Requisição malformada.",
		},
		{
			name: "erros de campo unidos por vírgula em ordem de chave",
			err: apperror.NewUpstreamError(400, "", map[string][]string{
				"b_field": {"segundo"},
				"a_field": {"primeiro"},
			}),
			expected: "primeiro, segundo",
		},
		{
			name:     "erro sem forma conhecida cai na mensagem genérica",
			err:      apperror.NewUpstreamError(502, "", nil),
			expected: "Falha ao enviar o produto.",
		},
		{
			name:     "erro de validação usa a própria mensagem",
			err:      apperror.NewValidationError("Informe a categoria."),
			expected: "Erro de Validação: Informe a categoria.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, submitservice.HumanMessage(tt.err))
		})
	}
}
