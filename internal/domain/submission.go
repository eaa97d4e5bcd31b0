package domain

import (
	"fmt"
	"time"
)

// SubmissionMode distingue o envio de um produto novo da edição de um
// produto já existente no catálogo.
type SubmissionMode string

const (
	ModeCreate SubmissionMode = "create"
	ModeEdit   SubmissionMode = "edit"
)

// SubmissionStage identifica o estágio de rede do envio encadeado.
// Os estágios são estritamente sequenciais: o catálogo só aceita imagens de
// uma entidade que já existe, então o estágio 1 precede obrigatoriamente os
// uploads e cada upload de variante depende do ID emitido na resposta do
// estágio 1.
type SubmissionStage string

const (
	StageCreateOrUpdate SubmissionStage = "CREATE_OR_UPDATE"
	StageProductImages  SubmissionStage = "PRODUCT_IMAGES"
	StageVariantImages  SubmissionStage = "VARIANT_IMAGES"
)

// SubmissionState descreve a máquina de estados do envio.
type SubmissionState string

const (
	StateIdle                   SubmissionState = "IDLE"
	StateCreatingOrUpdating     SubmissionState = "CREATING_OR_UPDATING"
	StateUploadingProductImages SubmissionState = "UPLOADING_PRODUCT_IMAGES"
	StateUploadingVariantImages SubmissionState = "UPLOADING_VARIANT_IMAGES"
	StateCompleted              SubmissionState = "COMPLETED"
	StateFailed                 SubmissionState = "FAILED"
)

// SubmissionResult é o produto finalizado como devolvido pelo catálogo após o
// estágio 1, incluindo o ID do produto e os IDs por variante atribuídos pelo
// servidor. O pipeline não rebusca o produto após os uploads de imagem: os
// identificadores refletem o estado imediatamente após o estágio 1.
type SubmissionResult struct {
	SubmissionID string        `json:"submission_id"`
	ProductID    int64         `json:"product_id"`
	Product      ServerProduct `json:"product"`
}

// SubmissionFailure descreve uma falha estruturada do envio: em qual estágio
// ocorreu, qual variante estava sendo processada (quando aplicável) e se o
// registro do produto já estava durável no catálogo. Essa última informação é
// decisiva para o chamador: com ProductPersisted=true no modo de criação, um
// reenvio ingênuo do pipeline inteiro criaria um produto duplicado.
type SubmissionFailure struct {
	SubmissionID     string          `json:"submission_id"`
	Stage            SubmissionStage `json:"stage"`
	VariantIndex     int             `json:"variant_index"` // -1 fora do estágio de variantes
	ProductPersisted bool            `json:"product_persisted"`
	ProductID        int64           `json:"product_id,omitempty"`
	Err              error           `json:"-"`
}

func (f *SubmissionFailure) Error() string {
	if f.Stage == StageVariantImages {
		return fmt.Sprintf("Falha no envio (estágio %s, variante %d): %v", f.Stage, f.VariantIndex, f.Err)
	}
	return fmt.Sprintf("Falha no envio (estágio %s): %v", f.Stage, f.Err)
}

func (f *SubmissionFailure) Unwrap() error { return f.Err }

// RetrySafe indica se reexecutar o pipeline completo é seguro: apenas quando
// nada foi persistido (falha no estágio 1). Nos demais casos o caminho seguro
// é retomar somente os estágios de imagem.
func (f *SubmissionFailure) RetrySafe() bool { return !f.ProductPersisted }

// --- Diário de envios (saga) ---

// Estados de um registro no diário de envios.
const (
	SubmissionRunning   = "RUNNING"
	SubmissionCompleted = "COMPLETED"
	SubmissionFailed    = "FAILED"
)

// SubmissionRecord é a linha do diário que acompanha a progressão de um envio
// estágio a estágio. Como o catálogo não oferece transação multi-recurso, o
// diário é o que permite retomar apenas os estágios de imagem de um envio que
// persistiu o produto mas falhou adiante, sem refazer o estágio 1.
type SubmissionRecord struct {
	ID               string          `json:"id"`
	Mode             SubmissionMode  `json:"mode"`
	State            SubmissionState `json:"state"`
	Status           string          `json:"status"`
	ProductID        int64           `json:"product_id,omitempty"`
	ProductPersisted bool            `json:"product_persisted"`
	FailedStage      SubmissionStage `json:"failed_stage,omitempty"`
	FailedVariant    int             `json:"failed_variant"` // -1 quando não aplicável
	ErrorMessage     string          `json:"error_message,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// SubmissionJournal define o contrato de persistência do diário de envios.
type SubmissionJournal interface {
	Save(ctx Context, record SubmissionRecord) error
	Update(ctx Context, record SubmissionRecord) error
	FindByID(ctx Context, id string) (SubmissionRecord, error)
}
