package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"gogarment/internal/domain"
	"gogarment/internal/pkg/upload"
)

// CreateProduct executa o estágio 1 no modo de criação: envia o produto SEM
// imagens e recebe de volta os identificadores atribuídos pelo catálogo.
func (c *Client) CreateProduct(ctx context.Context, payload domain.ProductCreateRequest) (domain.ServerProduct, error) {
	c.logger.Debug("Criando produto no catálogo.", map[string]interface{}{
		"name":     payload.Name,
		"variants": len(payload.Variants),
	})

	var product domain.ServerProduct
	if err := c.doJSON(ctx, http.MethodPost, "/products/create/", payload, &product); err != nil {
		return domain.ServerProduct{}, err
	}
	return product, nil
}

// UpdateProduct executa o estágio 1 no modo de edição.
func (c *Client) UpdateProduct(ctx context.Context, id int64, payload domain.ProductUpdateRequest) (domain.ServerProduct, error) {
	c.logger.Debug("Atualizando produto no catálogo.", map[string]interface{}{
		"product_id": id,
		"variants":   len(payload.Variants),
	})

	var product domain.ServerProduct
	path := fmt.Sprintf("/products/%d/update/", id)
	if err := c.doJSON(ctx, http.MethodPut, path, payload, &product); err != nil {
		return domain.ServerProduct{}, err
	}
	// Alguns endpoints de atualização omitem o id no corpo; garantimos que o
	// resultado carregue o identificador alvo.
	if product.ID == 0 {
		product.ID = id
	}
	return product, nil
}

// UploadProductImages envia o lote de fotos de nível de produto. O produto já
// precisa existir no catálogo (dependência estrutural do encadeamento).
func (c *Client) UploadProductImages(ctx context.Context, productID int64, batch *upload.Batch) error {
	c.logger.Debug("Enviando imagens do produto.", map[string]interface{}{
		"product_id": productID,
		"parts":      batch.Parts,
	})

	path := fmt.Sprintf("/products/%d/upload_images/", productID)
	return c.doMultipart(ctx, path, batch)
}

// UploadVariantImages envia o lote de fotos de uma variante; o lote já carrega
// o variant_id emitido pelo catálogo.
func (c *Client) UploadVariantImages(ctx context.Context, batch *upload.Batch) error {
	c.logger.Debug("Enviando imagens de variante.", map[string]interface{}{
		"parts": batch.Parts,
	})

	return c.doMultipart(ctx, "/product-images/upload/", batch)
}

// GetProduct busca um produto completo (usado para popular o formulário de edição).
func (c *Client) GetProduct(ctx context.Context, id int64) (domain.ServerProduct, error) {
	var product domain.ServerProduct
	path := fmt.Sprintf("/products/%d/", id)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &product); err != nil {
		return domain.ServerProduct{}, err
	}
	return product, nil
}

// DeleteProduct remove um produto do catálogo.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/products/%d/", id)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// ListProducts consulta a listagem administrativa. O endpoint varia conforme o
// recorte: busca textual, filtro de estoque ou listagem simples.
func (c *Client) ListProducts(ctx context.Context, query domain.ProductQuery) (domain.ProductPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(query.Page))
	params.Set("page_size", strconv.Itoa(query.PageSize))

	endpoint := "/products/"
	switch {
	case query.Search != "":
		endpoint = "/products/search/"
		params.Set("search", query.Search)
	case query.Filter == domain.FilterLow:
		endpoint = "/products/filter/"
		params.Set("max_stock", strconv.Itoa(domain.LowStockCeiling))
	case query.Filter == domain.FilterHigh:
		endpoint = "/products/filter/"
		params.Set("min_stock", strconv.Itoa(domain.HighStockFloor))
	case query.Filter == domain.FilterRecent:
		endpoint = "/products/filter/"
		params.Set("ordering", "-created_at")
	}

	var page domain.ProductPage
	if err := c.doJSON(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil, &page); err != nil {
		return domain.ProductPage{}, err
	}
	return page, nil
}
