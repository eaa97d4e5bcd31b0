package journalrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gogarment/internal/domain"
	apperror "gogarment/internal/errors"
	"gogarment/internal/pkg/logger"
)

// JournalRepository implementa a interface domain.SubmissionJournal sobre
// PostgreSQL. O diário é advisory: o pipeline grava nele o melhor que pode e
// segue em frente se a gravação falhar.
type JournalRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	SQLs      struct {
		Insert   string
		Update   string
		FindByID string
	}
	logger logger.Logger
}

// NewJournalRepository cria uma nova instância do JournalRepository, injetando o DB.
func NewJournalRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *JournalRepository {
	repo := &JournalRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
	repo.SQLs.Insert = `INSERT INTO submissions
        (id, mode, state, status, product_id, product_persisted, failed_stage, failed_variant, error_message, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	repo.SQLs.Update = `UPDATE submissions SET
        state = $2, status = $3, product_id = $4, product_persisted = $5,
        failed_stage = $6, failed_variant = $7, error_message = $8, updated_at = $9
        WHERE id = $1`
	repo.SQLs.FindByID = `SELECT id, mode, state, status, product_id, product_persisted,
        failed_stage, failed_variant, error_message, created_at, updated_at
        FROM submissions WHERE id = $1`
	return repo
}

// Save insere um novo registro de envio no diário.
func (r *JournalRepository) Save(ctx domain.Context, record domain.SubmissionRecord) error {
	r.logger.Debug("Iniciando Save de registro no diário de envios.", map[string]interface{}{"submission_id": record.ID})

	ctxTimeout, cancel := context.WithTimeout(ctx.(context.Context), r.DBTimeout)
	defer cancel()

	_, err := r.DB.ExecContext(
		ctxTimeout,
		r.SQLs.Insert,
		record.ID,
		string(record.Mode),
		string(record.State),
		record.Status,
		record.ProductID,
		record.ProductPersisted,
		string(record.FailedStage),
		record.FailedVariant,
		record.ErrorMessage,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao inserir registro no diário de envios.", err)
		return apperror.NewDBError("failed to insert submission record (DB)", err)
	}
	return nil
}

// Update atualiza a progressão de um envio existente no diário.
func (r *JournalRepository) Update(ctx domain.Context, record domain.SubmissionRecord) error {
	ctxTimeout, cancel := context.WithTimeout(ctx.(context.Context), r.DBTimeout)
	defer cancel()

	record.UpdatedAt = time.Now()

	result, err := r.DB.ExecContext(
		ctxTimeout,
		r.SQLs.Update,
		record.ID,
		string(record.State),
		record.Status,
		record.ProductID,
		record.ProductPersisted,
		string(record.FailedStage),
		record.FailedVariant,
		record.ErrorMessage,
		record.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao atualizar registro no diário de envios.", err)
		return apperror.NewDBError("failed to update submission record (DB)", err)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Envio com id '%s' não encontrado", record.ID))
	}
	return nil
}

// FindByID busca um registro de envio pelo identificador.
func (r *JournalRepository) FindByID(ctx domain.Context, id string) (domain.SubmissionRecord, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx.(context.Context), r.DBTimeout)
	defer cancel()

	row := r.DB.QueryRowContext(ctxTimeout, r.SQLs.FindByID, id)

	var record domain.SubmissionRecord
	var mode, state, failedStage string
	err := row.Scan(
		&record.ID,
		&mode,
		&state,
		&record.Status,
		&record.ProductID,
		&record.ProductPersisted,
		&failedStage,
		&record.FailedVariant,
		&record.ErrorMessage,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Info("Envio não encontrado no diário.", map[string]interface{}{"submission_id": id})
			return domain.SubmissionRecord{}, apperror.NewNotFoundError(fmt.Sprintf("Envio com id '%s' não encontrado", id))
		}
		r.logger.Error("Falha ao buscar registro no diário de envios.", err)
		return domain.SubmissionRecord{}, apperror.NewDBError("failed to find submission record (DB)", err)
	}

	record.Mode = domain.SubmissionMode(mode)
	record.State = domain.SubmissionState(state)
	record.FailedStage = domain.SubmissionStage(failedStage)
	return record, nil
}
