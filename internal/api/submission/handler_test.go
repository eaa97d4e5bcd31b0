package submission_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gogarment/internal/api/submission"
	"gogarment/internal/domain"
	apperror "gogarment/internal/errors"
	"gogarment/internal/pkg/logger"
)

// MockSubmissionService é uma implementação mock do controlador de envios.
type MockSubmissionService struct {
	mock.Mock
}

func (m *MockSubmissionService) Submit(ctx context.Context, draft domain.ProductDraft, mode domain.SubmissionMode) (domain.SubmissionResult, error) {
	args := m.Called(ctx, draft, mode)
	return args.Get(0).(domain.SubmissionResult), args.Error(1)
}

func (m *MockSubmissionService) ResumeImages(ctx context.Context, submissionID string, draft domain.ProductDraft) (domain.SubmissionResult, error) {
	args := m.Called(ctx, submissionID, draft)
	return args.Get(0).(domain.SubmissionResult), args.Error(1)
}

func (m *MockSubmissionService) IsSubmitting() bool {
	return m.Called().Bool(0)
}

func (m *MockSubmissionService) LastError() string {
	return m.Called().String(0)
}

func (m *MockSubmissionService) LastFailure() *domain.SubmissionFailure {
	args := m.Called()
	if failure := args.Get(0); failure != nil {
		return failure.(*domain.SubmissionFailure)
	}
	return nil
}

func (m *MockSubmissionService) Succeeded() bool {
	return m.Called().Bool(0)
}

// buildSubmitBody monta um corpo multipart de envio: payload JSON + fotos.
func buildSubmitBody(t *testing.T, draft domain.ProductDraft, productImages int, variantImages map[int]int) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	payload, err := json.Marshal(draft)
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("payload", string(payload)))

	for i := 0; i < productImages; i++ {
		part, err := writer.CreateFormFile("images", "foto.jpg")
		require.NoError(t, err)
		_, _ = part.Write([]byte{0x1})
		require.NoError(t, writer.WriteField("view_types", "front"))
	}

	for index, count := range variantImages {
		field := fmt.Sprintf("variant_images_%d", index)
		for i := 0; i < count; i++ {
			part, err := writer.CreateFormFile(field, "variante.jpg")
			require.NoError(t, err)
			_, _ = part.Write([]byte{0x2})
		}
	}

	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

// TestSubmitProductHandler_ParsesMultipart: o handler remonta o rascunho com
// os binários nas posições certas antes de entregar ao controlador.
func TestSubmitProductHandler_ParsesMultipart(t *testing.T) {
	svc := new(MockSubmissionService)
	handler := submission.NewHandler(svc, logger.NewLogger("error"))

	draft := domain.ProductDraft{
		CategoryID:  3,
		Name:        "Saree A",
		ProductType: "saree",
		Variants: []domain.VariantDraft{
			{Color: "red", Size: "M", CostPrice: "10", WholesalePrice: "15"},
			{Color: "blue", Size: "L", CostPrice: "12", WholesalePrice: "18"},
		},
	}

	var captured domain.ProductDraft
	svc.On("Submit", mock.Anything, mock.Anything, domain.ModeCreate).
		Run(func(args mock.Arguments) { captured = args.Get(1).(domain.ProductDraft) }).
		Return(domain.SubmissionResult{SubmissionID: "sub-1", ProductID: 77}, nil).Once()

	body, contentType := buildSubmitBody(t, draft, 1, map[int]int{0: 2})
	req := httptest.NewRequest(http.MethodPost, "/v1/products/submit", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.SubmitProductHandler(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, captured.Images, 1)
	require.Len(t, captured.Variants, 2)
	assert.Len(t, captured.Variants[0].Images, 2)
	assert.Empty(t, captured.Variants[1].Images)

	var result domain.SubmissionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, int64(77), result.ProductID)
}

// TestSubmitProductHandler_MissingPayload: sem o campo payload o envio é
// rejeitado com 400 antes de chegar ao controlador.
func TestSubmitProductHandler_MissingPayload(t *testing.T) {
	svc := new(MockSubmissionService)
	handler := submission.NewHandler(svc, logger.NewLogger("error"))

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/products/submit", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	handler.SubmitProductHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
}

// TestSubmitProductHandler_FailureBody: uma falha de envio vira o corpo
// estruturado que o console usa para escolher o caminho de reenvio.
func TestSubmitProductHandler_FailureBody(t *testing.T) {
	svc := new(MockSubmissionService)
	handler := submission.NewHandler(svc, logger.NewLogger("error"))

	failure := &domain.SubmissionFailure{
		SubmissionID:     "sub-2",
		Stage:            domain.StageVariantImages,
		VariantIndex:     1,
		ProductPersisted: true,
		ProductID:        77,
		Err:              apperror.NewUpstreamError(400, "Arquivo grande demais.", nil),
	}
	svc.On("Submit", mock.Anything, mock.Anything, domain.ModeCreate).
		Return(domain.SubmissionResult{}, failure).Once()

	draft := domain.ProductDraft{CategoryID: 3, Name: "Saree A", ProductType: "saree"}
	body, contentType := buildSubmitBody(t, draft, 0, nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/products/submit", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.SubmitProductHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "VARIANT_IMAGES", got["stage"])
	assert.Equal(t, float64(1), got["variant_index"])
	assert.Equal(t, true, got["product_persisted"])
	assert.Equal(t, false, got["retry_safe"])
	assert.Equal(t, "Arquivo grande demais.", got["message"])
}

// TestUpdateProductHandler_PathID: o id da URL entra no rascunho como produto
// existente e o modo é edição.
func TestUpdateProductHandler_PathID(t *testing.T) {
	svc := new(MockSubmissionService)
	handler := submission.NewHandler(svc, logger.NewLogger("error"))

	var captured domain.ProductDraft
	svc.On("Submit", mock.Anything, mock.Anything, domain.ModeEdit).
		Run(func(args mock.Arguments) { captured = args.Get(1).(domain.ProductDraft) }).
		Return(domain.SubmissionResult{SubmissionID: "sub-3", ProductID: 41}, nil).Once()

	draft := domain.ProductDraft{CategoryID: 3, Name: "Saree A", ProductType: "saree"}
	body, contentType := buildSubmitBody(t, draft, 0, nil)
	req := httptest.NewRequest(http.MethodPut, "/v1/products/41/submit", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.UpdateProductHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(41), captured.ExistingID)
}
