package submitservice

import (
	"context"
	"time"

	"github.com/google/uuid"

	"gogarment/internal/domain"
	apperror "gogarment/internal/errors"
	"gogarment/internal/pkg/logger"
	"gogarment/internal/pkg/middleware"
	"gogarment/internal/pkg/upload"
)

// ProductAPI define o contrato (interface) das primitivas de rede que o
// pipeline consome. A implementação concreta vive na camada de integração
// com o catálogo; o pipeline nunca conhece o transporte.
type ProductAPI interface {
	CreateProduct(ctx context.Context, payload domain.ProductCreateRequest) (domain.ServerProduct, error)
	UpdateProduct(ctx context.Context, id int64, payload domain.ProductUpdateRequest) (domain.ServerProduct, error)
	UploadProductImages(ctx context.Context, productID int64, batch *upload.Batch) error
	UploadVariantImages(ctx context.Context, batch *upload.Batch) error
	GetProduct(ctx context.Context, id int64) (domain.ServerProduct, error)
}

// Pipeline executa a cadeia ordenada de chamadas dependentes do envio:
// criar/atualizar produto -> fotos de produto -> fotos de cada variante.
// Os estágios são estritamente sequenciais porque cada um depende de dados
// produzidos pelo anterior; não há rollback de estágios concluídos em caso
// de falha (sucesso parcial aceito, registrado no diário).
type Pipeline struct {
	api     ProductAPI
	journal domain.SubmissionJournal
	logger  logger.Logger
}

// NewPipeline cria e retorna uma nova instância do pipeline de envio.
func NewPipeline(api ProductAPI, journal domain.SubmissionJournal, log logger.Logger) *Pipeline {
	return &Pipeline{api: api, journal: journal, logger: log}
}

// Run executa o envio completo de um rascunho. O rascunho DEVE ter sido
// validado antes: aqui nenhuma regra de formulário é reavaliada.
//
// Em caso de falha o erro retornado é sempre um *domain.SubmissionFailure,
// carregando o estágio, o índice da variante (quando aplicável) e se o
// produto já ficou durável no catálogo — informação decisiva para o chamador
// saber se um reenvio completo é seguro.
func (p *Pipeline) Run(ctx context.Context, draft domain.ProductDraft, mode domain.SubmissionMode) (domain.SubmissionResult, error) {
	record := domain.SubmissionRecord{
		ID:            uuid.NewString(),
		Mode:          mode,
		State:         domain.StateCreatingOrUpdating,
		Status:        domain.SubmissionRunning,
		FailedVariant: -1,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	p.saveRecord(ctx, record)

	p.logger.Info("Iniciando envio de produto.", map[string]interface{}{
		"submission_id": record.ID,
		"mode":          string(mode),
		"variants":      len(draft.Variants),
	})

	// --- Estágio 1: CreatingOrUpdating ---
	// Única fonte dos identificadores atribuídos pelo servidor. Falha aqui
	// significa que NADA foi persistido: o reenvio completo é seguro.
	product, err := p.createOrUpdate(ctx, draft, mode)
	middleware.RecordSubmissionStage(string(domain.StageCreateOrUpdate), err == nil)
	if err != nil {
		return domain.SubmissionResult{}, p.fail(ctx, record, domain.StageCreateOrUpdate, -1, false, 0, err)
	}

	record.ProductID = product.ID
	record.ProductPersisted = true

	return p.runImageStages(ctx, record, draft, product)
}

// ResumeImages retoma apenas os estágios de imagem de um envio cujo produto
// já ficou durável (o caminho de retry seguro quando o estágio 1 concluiu).
// Os identificadores de variante são rebuscados do catálogo, pois o diário
// não guarda o corpo da resposta original.
func (p *Pipeline) ResumeImages(ctx context.Context, submissionID string, draft domain.ProductDraft) (domain.SubmissionResult, error) {
	record, err := p.journal.FindByID(ctx, submissionID)
	if err != nil {
		return domain.SubmissionResult{}, err
	}
	if !record.ProductPersisted || record.ProductID == 0 {
		return domain.SubmissionResult{}, apperror.NewValidationError(
			"Este envio não persistiu o produto; refaça o envio completo em vez de retomá-lo.",
		)
	}

	product, err := p.api.GetProduct(ctx, record.ProductID)
	if err != nil {
		return domain.SubmissionResult{}, p.fail(ctx, record, domain.StageProductImages, -1, true, record.ProductID, err)
	}

	record.Status = domain.SubmissionRunning
	record.FailedStage = ""
	record.FailedVariant = -1
	record.ErrorMessage = ""

	p.logger.Info("Retomando estágios de imagem do envio.", map[string]interface{}{
		"submission_id": record.ID,
		"product_id":    record.ProductID,
	})

	return p.runImageStages(ctx, record, draft, product)
}

// runImageStages executa os estágios 2 e 3 sobre um produto já persistido.
func (p *Pipeline) runImageStages(ctx context.Context, record domain.SubmissionRecord, draft domain.ProductDraft, product domain.ServerProduct) (domain.SubmissionResult, error) {

	// --- Estágio 2: UploadingProductImages ---
	record.State = domain.StateUploadingProductImages
	p.updateRecord(ctx, record)

	if err := p.cancelled(ctx); err != nil {
		return domain.SubmissionResult{}, p.fail(ctx, record, domain.StageProductImages, -1, true, product.ID, err)
	}

	if len(draft.Images) > 0 {
		batch, err := upload.BuildProductImageBatch(draft.Images)
		if err == nil {
			err = p.api.UploadProductImages(ctx, product.ID, batch)
		}
		middleware.RecordSubmissionStage(string(domain.StageProductImages), err == nil)
		if err != nil {
			return domain.SubmissionResult{}, p.fail(ctx, record, domain.StageProductImages, -1, true, product.ID, err)
		}
	}
	// Lista vazia: o estágio é pulado em silêncio, nenhuma chamada é emitida.

	// --- Estágio 3: UploadingVariantImages ---
	record.State = domain.StateUploadingVariantImages
	p.updateRecord(ctx, record)

	targets, err := correlateVariants(draft.Variants, product.Variants)
	if err != nil {
		// Violação da pré-condição estrutural: falhar ANTES de qualquer
		// chamada do estágio 3, nunca associar imagens à variante errada.
		return domain.SubmissionResult{}, p.fail(ctx, record, domain.StageVariantImages, -1, true, product.ID, err)
	}

	for i := range draft.Variants {
		if err := p.cancelled(ctx); err != nil {
			return domain.SubmissionResult{}, p.fail(ctx, record, domain.StageVariantImages, i, true, product.ID, err)
		}

		if targets[i] == nil {
			p.logger.Warn("Variante sem correspondente no catálogo; upload pulado.", map[string]interface{}{
				"submission_id": record.ID,
				"variant_index": i,
			})
			continue
		}
		if len(draft.Variants[i].Images) == 0 {
			// Pulo não-fatal: uma variante sem fotos não impede as demais.
			continue
		}

		batch, err := upload.BuildVariantImageBatch(targets[i].ID, draft.Variants[i].Images)
		if err == nil {
			err = p.api.UploadVariantImages(ctx, batch)
		}
		middleware.RecordSubmissionStage(string(domain.StageVariantImages), err == nil)
		if err != nil {
			return domain.SubmissionResult{}, p.fail(ctx, record, domain.StageVariantImages, i, true, product.ID, err)
		}
	}

	// --- Concluído ---
	record.State = domain.StateCompleted
	record.Status = domain.SubmissionCompleted
	p.updateRecord(ctx, record)

	p.logger.Info("Envio de produto concluído.", map[string]interface{}{
		"submission_id": record.ID,
		"product_id":    product.ID,
	})

	return domain.SubmissionResult{
		SubmissionID: record.ID,
		ProductID:    product.ID,
		Product:      product,
	}, nil
}

func (p *Pipeline) createOrUpdate(ctx context.Context, draft domain.ProductDraft, mode domain.SubmissionMode) (domain.ServerProduct, error) {
	if mode == domain.ModeEdit {
		if draft.ExistingID <= 0 {
			return domain.ServerProduct{}, apperror.NewValidationError("Edição requer o identificador do produto existente.")
		}
		return p.api.UpdateProduct(ctx, draft.ExistingID, draft.ToUpdatePayload())
	}
	return p.api.CreateProduct(ctx, draft.ToCreatePayload())
}

// correlateVariants associa cada variante do rascunho à variante devolvida
// pelo catálogo. Pré-condição estrutural: mesmas contagens. Variantes
// pré-existentes correlacionam pelo ID; as novas caem no pareamento
// posicional sobre as posições ainda não reivindicadas, na ordem do envio.
func correlateVariants(draftVariants []domain.VariantDraft, serverVariants []domain.ServerVariant) ([]*domain.ServerVariant, error) {
	if len(serverVariants) != len(draftVariants) {
		return nil, apperror.NewDataIntegrityError(
			"O catálogo devolveu uma contagem de variantes diferente da enviada.",
		)
	}

	targets := make([]*domain.ServerVariant, len(draftVariants))
	claimed := make([]bool, len(serverVariants))

	// 1ª passada: correlação explícita por ID para variantes pré-existentes.
	for i, dv := range draftVariants {
		if dv.ExistingID <= 0 {
			continue
		}
		found := false
		for j := range serverVariants {
			if !claimed[j] && serverVariants[j].ID == dv.ExistingID {
				targets[i] = &serverVariants[j]
				claimed[j] = true
				found = true
				break
			}
		}
		if !found {
			return nil, apperror.NewDataIntegrityError(
				"Uma variante pré-existente não consta na resposta do catálogo.",
			)
		}
	}

	// 2ª passada: pareamento posicional das variantes novas com as posições
	// restantes, preservando a ordem.
	next := 0
	for i := range draftVariants {
		if targets[i] != nil {
			continue
		}
		for next < len(serverVariants) && claimed[next] {
			next++
		}
		if next >= len(serverVariants) {
			return nil, apperror.NewDataIntegrityError(
				"A resposta do catálogo não cobre todas as variantes enviadas.",
			)
		}
		targets[i] = &serverVariants[next]
		claimed[next] = true
	}

	return targets, nil
}

// cancelled traduz o cancelamento cooperativo em erro de transporte. Estágios
// já concluídos permanecem persistidos: cancelar não desfaz nada.
func (p *Pipeline) cancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return apperror.NewTransportError("Envio cancelado pelo chamador.", err)
	}
	return nil
}

// fail registra a falha no diário e devolve o SubmissionFailure estruturado.
func (p *Pipeline) fail(ctx context.Context, record domain.SubmissionRecord, stage domain.SubmissionStage, variantIndex int, persisted bool, productID int64, cause error) error {
	record.State = domain.StateFailed
	record.Status = domain.SubmissionFailed
	record.FailedStage = stage
	record.FailedVariant = variantIndex
	record.ProductPersisted = persisted
	record.ProductID = productID
	record.ErrorMessage = cause.Error()
	p.updateRecord(ctx, record)

	p.logger.Error("Falha no envio de produto.", cause)

	return &domain.SubmissionFailure{
		SubmissionID:     record.ID,
		Stage:            stage,
		VariantIndex:     variantIndex,
		ProductPersisted: persisted,
		ProductID:        productID,
		Err:              cause,
	}
}

// saveRecord / updateRecord: o diário é infraestrutura de acompanhamento; uma
// falha nele não pode abortar um envio em andamento, apenas gera aviso.
func (p *Pipeline) saveRecord(ctx context.Context, record domain.SubmissionRecord) {
	if err := p.journal.Save(ctx, record); err != nil {
		p.logger.Warn("Falha ao gravar registro no diário de envios.", map[string]interface{}{
			"submission_id": record.ID,
			"error":         err.Error(),
		})
	}
}

func (p *Pipeline) updateRecord(ctx context.Context, record domain.SubmissionRecord) {
	record.UpdatedAt = time.Now().UTC()
	if err := p.journal.Update(ctx, record); err != nil {
		p.logger.Warn("Falha ao atualizar registro no diário de envios.", map[string]interface{}{
			"submission_id": record.ID,
			"error":         err.Error(),
		})
	}
}
