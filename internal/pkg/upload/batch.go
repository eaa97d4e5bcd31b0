package upload

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"

	"gogarment/internal/domain"
)

// ErrEmptyBatch é retornado quando a lista de anexos está vazia. O chamador
// DEVE pular a chamada de rede por completo em vez de enviar um lote vazio:
// é a única contrapressão que o cliente aplica ao catálogo.
var ErrEmptyBatch = errors.New("lote de upload sem anexos")

// Batch é um corpo multipart pronto para envio, com o Content-Type
// (incluindo o boundary) gerado pelo writer.
type Batch struct {
	Body        []byte
	ContentType string
	Parts       int
}

// BuildProductImageBatch monta o corpo multipart para as fotos de nível de
// produto: uma parte binária "images" por anexo e um campo "view_types"
// repetido, alinhado posicionalmente com cada parte binária.
func BuildProductImageBatch(attachments []domain.ImageAttachment) (*Batch, error) {
	if len(attachments) == 0 {
		return nil, ErrEmptyBatch
	}
	return build(attachments, nil)
}

// BuildVariantImageBatch monta o corpo multipart das fotos de uma variante.
// Mesma forma do lote de produto, acrescido do campo escalar "variant_id"
// com o identificador emitido pelo catálogo no estágio de criação.
func BuildVariantImageBatch(variantID int64, attachments []domain.ImageAttachment) (*Batch, error) {
	if len(attachments) == 0 {
		return nil, ErrEmptyBatch
	}
	extra := map[string]string{"variant_id": strconv.FormatInt(variantID, 10)}
	return build(attachments, extra)
}

func build(attachments []domain.ImageAttachment, scalarFields map[string]string) (*Batch, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for name, value := range scalarFields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("falha ao escrever campo %q do lote: %w", name, err)
		}
	}

	for i, att := range attachments {
		part, err := writer.CreateFormFile("images", att.FileName)
		if err != nil {
			return nil, fmt.Errorf("falha ao criar parte binária %d do lote: %w", i, err)
		}
		if _, err := part.Write(att.Content); err != nil {
			return nil, fmt.Errorf("falha ao escrever conteúdo do anexo %d: %w", i, err)
		}
		// O campo view_types acompanha cada binário na mesma posição.
		if err := writer.WriteField("view_types", att.EffectiveViewType()); err != nil {
			return nil, fmt.Errorf("falha ao escrever view_type do anexo %d: %w", i, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("falha ao finalizar o corpo multipart: %w", err)
	}

	return &Batch{
		Body:        buf.Bytes(),
		ContentType: writer.FormDataContentType(),
		Parts:       len(attachments),
	}, nil
}
