package operatorrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"gogarment/internal/domain"
	apperror "gogarment/internal/errors"
	"gogarment/internal/pkg/logger"
)

// uniqueViolation é o código SQLSTATE do PostgreSQL para violação de unicidade.
const uniqueViolation = "23505"

// OperatorRepository implementa a interface domain.OperatorRepository
type OperatorRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	SQLs      struct {
		Insert      string
		FindByEmail string
	}
	logger logger.Logger
}

// NewOperatorRepository cria uma nova instância do OperatorRepository, injetando o DB.
func NewOperatorRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *OperatorRepository {
	repo := &OperatorRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
	repo.SQLs.Insert = `INSERT INTO operators (id, email, password_hash, role, created_at, updated_at)
                        VALUES ($1, $2, $3, $4, $5, $6)`
	repo.SQLs.FindByEmail = `SELECT id, email, password_hash, role, created_at, updated_at
                             FROM operators WHERE email = $1`
	return repo
}

// Save insere um novo operador no banco de dados.
func (r *OperatorRepository) Save(ctx domain.Context, operator domain.Operator) (domain.Operator, error) {
	r.logger.Debug("Iniciando Save de operador no repositório.", map[string]interface{}{"email": operator.Email})

	ctxTimeout, cancel := context.WithTimeout(ctx.(context.Context), r.DBTimeout)
	defer cancel()

	operator.ID = uuid.NewString()
	operator.CreatedAt = time.Now()
	operator.UpdatedAt = operator.CreatedAt

	_, err := r.DB.ExecContext(
		ctxTimeout,
		r.SQLs.Insert,
		operator.ID,
		operator.Email,
		operator.PasswordHash,
		operator.Role,
		operator.CreatedAt,
		operator.UpdatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			r.logger.Info("Tentativa de registro com email duplicado.", map[string]interface{}{"email": operator.Email})
			return domain.Operator{}, apperror.NewConflictError(fmt.Sprintf("Operador com email '%s' já existe", operator.Email))
		}
		r.logger.Error("Falha ao inserir operador no DB.", err)
		return domain.Operator{}, apperror.NewDBError("failed to insert operator (DB)", err)
	}

	r.logger.Info("Operador salvo com sucesso no repositório.", map[string]interface{}{"operator_id": operator.ID, "email": operator.Email})
	return operator, nil
}

// FindByEmail busca um operador pelo endereço de e-mail.
func (r *OperatorRepository) FindByEmail(ctx domain.Context, email string) (domain.Operator, error) {
	r.logger.Debug("Iniciando FindByEmail de operador no repositório.", map[string]interface{}{"email_attempt": email})

	ctxTimeout, cancel := context.WithTimeout(ctx.(context.Context), r.DBTimeout)
	defer cancel()

	row := r.DB.QueryRowContext(ctxTimeout, r.SQLs.FindByEmail, email)

	var operator domain.Operator
	err := row.Scan(
		&operator.ID,
		&operator.Email,
		&operator.PasswordHash,
		&operator.Role,
		&operator.CreatedAt,
		&operator.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Info("Operador não encontrado no DB por email.", map[string]interface{}{"email": email})
			return domain.Operator{}, apperror.NewNotFoundError(fmt.Sprintf("Operador com email '%s' não encontrado", email))
		}
		r.logger.Error("Falha ao buscar operador por email no DB.", err)
		return domain.Operator{}, apperror.NewDBError("failed to find operator by email (DB)", err)
	}

	return operator, nil
}
