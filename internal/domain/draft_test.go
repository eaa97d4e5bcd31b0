package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gogarment/internal/domain"
	apperror "gogarment/internal/errors"
)

func validDraft() domain.ProductDraft {
	return domain.ProductDraft{
		CategoryID:  3,
		Name:        "Saree A",
		ProductType: "saree",
		Variants: []domain.VariantDraft{
			{Color: "red", Size: "M", CostPrice: "10.50", WholesalePrice: "15"},
		},
	}
}

// TestDraftValidate: tabela de regras de normalização do rascunho, com o
// campo atribuído a cada violação.
func TestDraftValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(d *domain.ProductDraft)
		wantField string
	}{
		{
			name:   "rascunho válido",
			mutate: func(d *domain.ProductDraft) {},
		},
		{
			name:      "categoria ausente",
			mutate:    func(d *domain.ProductDraft) { d.CategoryID = 0 },
			wantField: "category_id",
		},
		{
			name:      "nome vazio",
			mutate:    func(d *domain.ProductDraft) { d.Name = "" },
			wantField: "name",
		},
		{
			name:      "tipo de produto vazio",
			mutate:    func(d *domain.ProductDraft) { d.ProductType = "" },
			wantField: "product_type",
		},
		{
			name:      "preço de custo não numérico",
			mutate:    func(d *domain.ProductDraft) { d.Variants[0].CostPrice = "abc" },
			wantField: "variants[0].cost_price",
		},
		{
			name:      "preço de custo negativo",
			mutate:    func(d *domain.ProductDraft) { d.Variants[0].CostPrice = "-1" },
			wantField: "variants[0].cost_price",
		},
		{
			name:      "preço de atacado vazio",
			mutate:    func(d *domain.ProductDraft) { d.Variants[0].WholesalePrice = "" },
			wantField: "variants[0].wholesale_price",
		},
		{
			name:      "quantidade mínima negativa",
			mutate:    func(d *domain.ProductDraft) { d.Variants[0].MinOrderQuantity = -2 },
			wantField: "variants[0].min_order_quantity",
		},
		{
			name:      "estoque negativo",
			mutate:    func(d *domain.ProductDraft) { d.Variants[0].CurrentStock = -1 },
			wantField: "variants[0].current_stock",
		},
		{
			name: "violação na segunda variante aponta o índice 1",
			mutate: func(d *domain.ProductDraft) {
				d.Variants = append(d.Variants, domain.VariantDraft{
					Color: "blue", Size: "L", CostPrice: "1,99", WholesalePrice: "2",
				})
			},
			wantField: "variants[1].cost_price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := validDraft()
			tt.mutate(&draft)

			err := draft.Validate()

			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var validation *apperror.ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.wantField, validation.Field)
		})
	}
}

// TestToCreatePayload_OmitsIDsAndBinaries: o payload de criação não carrega
// ids de variantes novas nem binários; os preços já seguem como números.
func TestToCreatePayload_OmitsIDsAndBinaries(t *testing.T) {
	draft := validDraft()
	draft.Variants[0].Images = []domain.ImageAttachment{{FileName: "a.jpg", Content: []byte{0x1}}}

	payload := draft.ToCreatePayload()

	require.Len(t, payload.Variants, 1)
	assert.Nil(t, payload.Variants[0].ID)
	assert.Equal(t, 10.5, payload.Variants[0].CostPrice)
	assert.Equal(t, 15.0, payload.Variants[0].WholesalePrice)
	assert.Empty(t, payload.Variants[0].Images)
}

// TestToUpdatePayload_CarriesExistingIDs: na edição, variantes pré-existentes
// levam o id do catálogo; as novas seguem sem id.
func TestToUpdatePayload_CarriesExistingIDs(t *testing.T) {
	draft := validDraft()
	draft.ExistingID = 41
	draft.Variants[0].ExistingID = 9
	draft.Variants = append(draft.Variants, domain.VariantDraft{
		Color: "blue", Size: "L", CostPrice: "12", WholesalePrice: "18",
	})

	payload := draft.ToUpdatePayload()

	require.Len(t, payload.Variants, 2)
	require.NotNil(t, payload.Variants[0].ID)
	assert.Equal(t, int64(9), *payload.Variants[0].ID)
	assert.Nil(t, payload.Variants[1].ID)
}

// TestParsePrice.
func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"10.50", 10.5, true},
		{"0", 0, true},
		{"", 0, false},
		{"abc", 0, false},
		{"1,99", 0, false},
		{"-5", 0, false},
		{"NaN", 0, false},
	}

	for _, tt := range tests {
		got, ok := domain.ParsePrice(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

// TestEffectiveViewType_Default.
func TestEffectiveViewType_Default(t *testing.T) {
	assert.Equal(t, "front", domain.ImageAttachment{}.EffectiveViewType())
	assert.Equal(t, "back", domain.ImageAttachment{ViewType: "back"}.EffectiveViewType())
}
