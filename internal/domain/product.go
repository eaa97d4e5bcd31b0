package domain

import "time"

// ServerProduct é a representação de um produto como o catálogo upstream a
// devolve após o estágio de criação/atualização. Os identificadores aqui são
// atribuídos pelo servidor: o cliente nunca os inventa.
type ServerProduct struct {
	ID          int64           `json:"id"`
	CategoryID  int64           `json:"category_id"`
	Name        string          `json:"name"`
	ProductType string          `json:"product_type"`
	Description string          `json:"description"`
	Fabric      string          `json:"fabric"`
	IsDraft     bool            `json:"is_draft"`
	Variants    []ServerVariant `json:"variants"`
	Images      []ServerImage   `json:"images,omitempty"`
	CreatedAt   time.Time       `json:"created_at,omitempty"`
}

// ServerVariant carrega, no mínimo, o identificador atribuído pelo catálogo.
// O catálogo preserva a correspondência de ordem com a lista enviada.
type ServerVariant struct {
	ID               int64  `json:"id"`
	Color            string `json:"color,omitempty"`
	Size             string `json:"size,omitempty"`
	ProductCode      string `json:"product_code,omitempty"`
	StockKeepingUnit string `json:"stock_keeping_unit,omitempty"`
	CurrentStock     int    `json:"current_stock,omitempty"`
}

// ServerImage é uma foto já persistida no catálogo.
type ServerImage struct {
	ID       int64  `json:"id"`
	ImageURL string `json:"image_url"`
	ViewType string `json:"view_type,omitempty"`
}

// --- Listagem administrativa (RF de catálogo) ---

// StockFilter seleciona o recorte da listagem administrativa de produtos.
type StockFilter string

const (
	FilterAll    StockFilter = "ALL"
	FilterLow    StockFilter = "LOW"    // estoque até 50
	FilterHigh   StockFilter = "HIGH"   // estoque a partir de 100
	FilterRecent StockFilter = "RECENT" // ordenado por criação decrescente
)

// Limiares de estoque usados pelos recortes LOW e HIGH da listagem.
const (
	LowStockCeiling = 50
	HighStockFloor  = 100
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// ProductQuery define os parâmetros de busca e paginação da listagem.
type ProductQuery struct {
	Page     int
	PageSize int
	Search   string
	Filter   StockFilter
}

// ProductPage é uma página da listagem, no formato de paginação do catálogo
// (contagem total + URL da próxima página, vazia na última).
type ProductPage struct {
	Results []ServerProduct `json:"results"`
	Count   int             `json:"count"`
	Next    string          `json:"next,omitempty"`
}

// HasMore indica se existe página seguinte.
func (p ProductPage) HasMore() bool { return p.Next != "" }

// Context é uma interface que encapsula o Go context.Context.
// É usado para propagar o timeout e sinais de cancelamento pelas camadas.
// Isso evita a dependência direta do pacote "context".
type Context interface{}
