package domain

import "time"

// Operator representa a conta de um operador do console administrativo.
type Operator struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Oculta o hash da senha no JSON de resposta
	Role         OperatorRole `json:"role"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// OperatorRole é um tipo string para representar o papel do operador no gateway.
type OperatorRole string

// Constantes para os papéis de operador.
const (
	RoleAdmin  OperatorRole = "admin"
	RoleViewer OperatorRole = "viewer"
)

// OperatorRegistration representa o payload de entrada para o registro.
type OperatorRegistration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// OperatorRepository define o contrato de persistência para a entidade Operator.
type OperatorRepository interface {
	Save(ctx Context, operator Operator) (Operator, error)
	FindByEmail(ctx Context, email string) (Operator, error)
}

// OperatorService define o contrato de lógica de negócio para a entidade Operator.
type OperatorService interface {
	Register(ctx Context, registration OperatorRegistration) (Operator, error)
	Login(ctx Context, email string, password string) (string, error)
}
