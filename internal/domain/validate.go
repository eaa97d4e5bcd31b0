package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	apperror "gogarment/internal/errors"
)

// validate é a instância única do validador de tags de struct.
// As tags `validate:` cobrem as restrições escalares; as regras de preço
// textual são aplicadas manualmente em Validate, pois dependem de conversão.
var validate = validator.New()

// Validate aplica todas as regras de normalização do rascunho ANTES de
// qualquer chamada de rede. Retorna o primeiro erro de validação encontrado,
// atribuído ao campo responsável. Um rascunho inválido nunca gera envio
// parcial: nenhum estágio do envio é executado.
func (d ProductDraft) Validate() error {
	if err := validate.Struct(d); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			switch fe.Field() {
			case "CategoryID":
				return apperror.NewFieldValidationError("category_id", "A categoria deve ser um identificador positivo.")
			case "Name":
				return apperror.NewFieldValidationError("name", "O nome do produto é obrigatório.")
			case "ProductType":
				return apperror.NewFieldValidationError("product_type", "O tipo do produto é obrigatório.")
			}
			return apperror.NewValidationError(fmt.Sprintf("Campo inválido: %s.", fe.Field()))
		}
		return apperror.NewValidationError("Rascunho de produto inválido.")
	}

	for i, v := range d.Variants {
		if err := v.validateAt(i); err != nil {
			return err
		}
	}
	return nil
}

// validateAt valida uma variante na posição informada do rascunho.
func (v VariantDraft) validateAt(index int) error {
	if _, ok := ParsePrice(v.CostPrice); !ok {
		return apperror.NewFieldValidationError(
			FieldPath(index, "cost_price"),
			"O preço de custo deve ser um número não-negativo.",
		)
	}
	if _, ok := ParsePrice(v.WholesalePrice); !ok {
		return apperror.NewFieldValidationError(
			FieldPath(index, "wholesale_price"),
			"O preço de atacado deve ser um número não-negativo.",
		)
	}
	if v.MinOrderQuantity < 0 {
		return apperror.NewFieldValidationError(
			FieldPath(index, "min_order_quantity"),
			"A quantidade mínima de pedido não pode ser negativa.",
		)
	}
	if v.CurrentStock < 0 {
		return apperror.NewFieldValidationError(
			FieldPath(index, "current_stock"),
			"O estoque atual não pode ser negativo.",
		)
	}
	return nil
}
