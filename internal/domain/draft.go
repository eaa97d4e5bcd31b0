package domain

import (
	"fmt"
	"strconv"
)

// ProductDraft representa o estado editável de um produto mantido pelo console
// administrativo antes do envio ao catálogo. É um objeto de valor: nenhuma
// operação aqui realiza I/O.
type ProductDraft struct {
	// ExistingID é zero no modo de criação; no modo de edição carrega o ID
	// já atribuído pelo catálogo ao produto que está sendo alterado.
	ExistingID int64 `json:"existing_id,omitempty"`

	CategoryID  int64  `json:"category_id" validate:"required,gt=0"`
	Name        string `json:"name" validate:"required"`
	ProductType string `json:"product_type" validate:"required"`
	Description string `json:"description"`
	Fabric      string `json:"fabric"`
	IsDraft     bool   `json:"is_draft"`

	// Variants é uma sequência ORDENADA: a posição de cada variante é usada
	// como correlação de reserva quando ela ainda não possui ID do catálogo.
	Variants []VariantDraft `json:"variants"`

	// Images são os anexos de nível de produto (fotos gerais).
	Images []ImageAttachment `json:"images,omitempty"`
}

// VariantDraft representa uma variação de cor/tamanho do produto em edição.
type VariantDraft struct {
	// ExistingID é zero para variantes novas; preenchido ao editar uma
	// variante que o catálogo já conhece.
	ExistingID int64 `json:"existing_id,omitempty"`

	Color            string `json:"color"`
	Size             string `json:"size"`
	ProductCode      string `json:"product_code"`
	StockKeepingUnit string `json:"stock_keeping_unit"`

	// CostPrice e WholesalePrice chegam do formulário como texto e são
	// convertidos durante a validação. Um valor não numérico é um erro de
	// validação de campo, nunca um envio parcial.
	CostPrice      string `json:"cost_price"`
	WholesalePrice string `json:"wholesale_price"`

	MinOrderQuantity   int  `json:"min_order_quantity"`
	CurrentStock       int  `json:"current_stock"`
	AllowCustomization bool `json:"allow_customization"`

	// Images são os anexos próprios desta variante, em ordem de exibição.
	Images []ImageAttachment `json:"images,omitempty"`
}

// ImageAttachment é um anexo binário selecionado pelo operador, com a marcação
// de visão ("front" por padrão, mas o modelo aceita outras) e a posição de
// exibição. O conteúdo vive apenas em memória até o upload concluir.
type ImageAttachment struct {
	FileName string `json:"file_name"`
	Content  []byte `json:"-"`
	ViewType string `json:"view_type"`
	Position int    `json:"position"`
}

// DefaultViewType é a marcação de visão aplicada quando o anexo não informa uma.
const DefaultViewType = "front"

// EffectiveViewType retorna a marcação de visão do anexo, aplicando o padrão.
func (a ImageAttachment) EffectiveViewType() string {
	if a.ViewType == "" {
		return DefaultViewType
	}
	return a.ViewType
}

// --- Payloads de rede (Estágio 1) ---

// VariantPayload é a forma de fio de uma variante no corpo JSON do estágio 1.
// Os preços já validados seguem como números; as imagens NUNCA são embutidas
// aqui (campo placeholder vazio, os uploads ocorrem em estágios posteriores).
type VariantPayload struct {
	ID                 *int64   `json:"id,omitempty"`
	Color              string   `json:"color"`
	Size               string   `json:"size"`
	ProductCode        string   `json:"product_code"`
	StockKeepingUnit   string   `json:"stock_keeping_unit"`
	CostPrice          float64  `json:"cost_price"`
	WholesalePrice     float64  `json:"wholesale_price"`
	MinOrderQuantity   int      `json:"min_order_quantity"`
	CurrentStock       int      `json:"current_stock"`
	AllowCustomization bool     `json:"allow_customization"`
	Images             []string `json:"images"`
	VariantImages      []string `json:"variant_images,omitempty"`
}

// ProductCreateRequest é o corpo enviado em POST /products/create/.
type ProductCreateRequest struct {
	CategoryID  int64            `json:"category_id"`
	Name        string           `json:"name"`
	ProductType string           `json:"product_type"`
	Description string           `json:"description"`
	Fabric      string           `json:"fabric"`
	IsDraft     bool             `json:"is_draft"`
	Variants    []VariantPayload `json:"variants"`
}

// ProductUpdateRequest é o corpo enviado em PUT /products/{id}/update/.
// Idêntico ao de criação, exceto que cada variante pré-existente carrega seu
// ID para que o catálogo atualize em vez de inserir.
type ProductUpdateRequest struct {
	CategoryID  int64            `json:"category_id"`
	Name        string           `json:"name"`
	ProductType string           `json:"product_type"`
	Description string           `json:"description"`
	Fabric      string           `json:"fabric"`
	IsDraft     bool             `json:"is_draft"`
	Variants    []VariantPayload `json:"variants"`
}

// ToCreatePayload monta o corpo do estágio 1 no modo de criação.
// O rascunho DEVE ter passado por Validate antes; preços não numéricos aqui
// são tratados como zero apenas por segurança.
func (d ProductDraft) ToCreatePayload() ProductCreateRequest {
	req := ProductCreateRequest{
		CategoryID:  d.CategoryID,
		Name:        d.Name,
		ProductType: d.ProductType,
		Description: d.Description,
		Fabric:      d.Fabric,
		IsDraft:     d.IsDraft,
		Variants:    make([]VariantPayload, 0, len(d.Variants)),
	}
	for _, v := range d.Variants {
		req.Variants = append(req.Variants, v.toPayload(false))
	}
	return req
}

// ToUpdatePayload monta o corpo do estágio 1 no modo de edição, incluindo o ID
// de cada variante pré-existente.
func (d ProductDraft) ToUpdatePayload() ProductUpdateRequest {
	req := ProductUpdateRequest{
		CategoryID:  d.CategoryID,
		Name:        d.Name,
		ProductType: d.ProductType,
		Description: d.Description,
		Fabric:      d.Fabric,
		IsDraft:     d.IsDraft,
		Variants:    make([]VariantPayload, 0, len(d.Variants)),
	}
	for _, v := range d.Variants {
		req.Variants = append(req.Variants, v.toPayload(true))
	}
	return req
}

func (v VariantDraft) toPayload(includeID bool) VariantPayload {
	cost, _ := strconv.ParseFloat(v.CostPrice, 64)
	wholesale, _ := strconv.ParseFloat(v.WholesalePrice, 64)

	p := VariantPayload{
		Color:              v.Color,
		Size:               v.Size,
		ProductCode:        v.ProductCode,
		StockKeepingUnit:   v.StockKeepingUnit,
		CostPrice:          cost,
		WholesalePrice:     wholesale,
		MinOrderQuantity:   v.MinOrderQuantity,
		CurrentStock:       v.CurrentStock,
		AllowCustomization: v.AllowCustomization,
		Images:             []string{},
	}
	if includeID && v.ExistingID > 0 {
		id := v.ExistingID
		p.ID = &id
		p.VariantImages = []string{}
	}
	return p
}

// ParsePrice converte um campo de preço textual em número não-negativo.
// Retorna o valor e um indicador de validade (falha de parse OU negativo).
func ParsePrice(raw string) (float64, bool) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value != value { // value != value captura NaN explícito
		return 0, false
	}
	if value < 0 {
		return 0, false
	}
	return value, true
}

// FieldPath identifica um campo de variante em erros de validação
// (ex: "variants[2].cost_price").
func FieldPath(index int, field string) string {
	return fmt.Sprintf("variants[%d].%s", index, field)
}
