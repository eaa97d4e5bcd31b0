package operatorservice

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"gogarment/internal/domain"
	apperror "gogarment/internal/errors"
	"gogarment/internal/pkg/token"
)

// OperatorService define o serviço de lógica de negócio para contas de operador.
type OperatorService struct {
	OperatorRepo domain.OperatorRepository
	TokenSvc     TokenService
}

// TokenService é o contrato da camada de token (internal/pkg/token)
type TokenService interface {
	GenerateToken(operatorID string, operatorRole string) (string, error)
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// NewService cria uma nova instância do OperatorService, injetando o Repositório.
func NewService(repo domain.OperatorRepository, tokenSvc TokenService) *OperatorService {
	return &OperatorService{
		OperatorRepo: repo,
		TokenSvc:     tokenSvc,
	}
}

// Register registra um novo operador do console.
// Ele faz o hashing da senha e lida com validações básicas.
func (s *OperatorService) Register(ctx context.Context, registration domain.OperatorRegistration) (domain.Operator, error) {
	if registration.Email == "" || registration.Password == "" {
		return domain.Operator{}, apperror.NewValidationError("Email e senha são obrigatórios.")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registration.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Operator{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	newOperator := domain.Operator{
		Email:        registration.Email,
		PasswordHash: string(hashedPassword),
		Role:         domain.RoleViewer, // Papel padrão; promoção a admin é manual
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	operator, err := s.OperatorRepo.Save(ctx, newOperator)
	if err != nil {
		// O repositório já traduz violação de unicidade em ConflictError.
		return domain.Operator{}, err
	}

	return operator, nil
}

// Login autentica um operador, verifica a senha e gera um JWT.
func (s *OperatorService) Login(ctx context.Context, email string, password string) (string, error) {
	if email == "" || password == "" {
		return "", apperror.NewUnauthorizedError("Email e senha são obrigatórios.")
	}

	operator, err := s.OperatorRepo.FindByEmail(ctx, email)
	if err != nil {
		// 404 vira 401 para não dar dicas a invasores.
		var notFoundErr *apperror.NotFoundError
		if errors.As(err, &notFoundErr) {
			return "", apperror.NewUnauthorizedError("Credenciais inválidas.")
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(operator.PasswordHash), []byte(password)); err != nil {
		return "", apperror.NewUnauthorizedError("Credenciais inválidas.")
	}

	tokenString, err := s.TokenSvc.GenerateToken(operator.ID, string(operator.Role))
	if err != nil {
		return "", apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	return tokenString, nil
}
