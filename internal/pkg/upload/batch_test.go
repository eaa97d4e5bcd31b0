package upload_test

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gogarment/internal/domain"
	"gogarment/internal/pkg/upload"
)

// parseBatch reabre o corpo multipart gerado para inspecionar as partes.
func parseBatch(t *testing.T, batch *upload.Batch) ([]*multipart.FileHeader, map[string][]string) {
	t.Helper()

	_, params, err := mime.ParseMediaType(batch.ContentType)
	require.NoError(t, err)
	require.NotEmpty(t, params["boundary"])

	reader := multipart.NewReader(bytes.NewReader(batch.Body), params["boundary"])
	form, err := reader.ReadForm(10 << 20)
	require.NoError(t, err)

	return form.File["images"], form.Value
}

// TestBuildProductImageBatch_AlignsViewTypes verifica que cada parte binária
// tem um campo view_types correspondente, na mesma ordem.
func TestBuildProductImageBatch_AlignsViewTypes(t *testing.T) {
	attachments := []domain.ImageAttachment{
		{FileName: "frente.jpg", Content: []byte("jpg-1"), ViewType: "front"},
		{FileName: "costas.jpg", Content: []byte("jpg-2"), ViewType: "back"},
		{FileName: "detalhe.jpg", Content: []byte("jpg-3")}, // sem view type: assume "front"
	}

	batch, err := upload.BuildProductImageBatch(attachments)
	require.NoError(t, err)
	assert.Equal(t, 3, batch.Parts)

	files, values := parseBatch(t, batch)
	require.Len(t, files, 3)
	assert.Equal(t, []string{"front", "back", "front"}, values["view_types"])
	assert.NotContains(t, values, "variant_id")

	// Conteúdo binário preservado na ordem de envio
	first, err := files[0].Open()
	require.NoError(t, err)
	defer first.Close()
	content, err := io.ReadAll(first)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpg-1"), content)
	assert.Equal(t, "frente.jpg", files[0].Filename)
}

// TestBuildVariantImageBatch_CarriesVariantID verifica o campo escalar
// variant_id com o identificador emitido pelo catálogo.
func TestBuildVariantImageBatch_CarriesVariantID(t *testing.T) {
	attachments := []domain.ImageAttachment{
		{FileName: "v1.jpg", Content: []byte("v1"), ViewType: "front"},
		{FileName: "v2.jpg", Content: []byte("v2"), ViewType: "front"},
	}

	batch, err := upload.BuildVariantImageBatch(501, attachments)
	require.NoError(t, err)

	files, values := parseBatch(t, batch)
	require.Len(t, files, 2)
	assert.Equal(t, []string{"501"}, values["variant_id"])
	assert.Equal(t, []string{"front", "front"}, values["view_types"])
}

// TestBuildBatch_EmptyList garante que lista vazia nunca gera corpo: o
// chamador deve pular a chamada inteira.
func TestBuildBatch_EmptyList(t *testing.T) {
	_, err := upload.BuildProductImageBatch(nil)
	assert.ErrorIs(t, err, upload.ErrEmptyBatch)

	_, err = upload.BuildVariantImageBatch(77, []domain.ImageAttachment{})
	assert.ErrorIs(t, err, upload.ErrEmptyBatch)
}
