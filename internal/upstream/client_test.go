package upstream_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gogarment/internal/domain"
	apperror "gogarment/internal/errors"
	"gogarment/internal/pkg/logger"
	"gogarment/internal/pkg/upload"
	"gogarment/internal/upstream"
)

func newClient(t *testing.T, handler http.Handler) (*upstream.Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := upstream.NewClient(upstream.Config{
		BaseURL: server.URL,
		Token:   "service-token",
		Timeout: 5 * time.Second,
	}, logger.NewLogger("error"))
	return client, server
}

// TestCreateProduct_RoundTrip: o estágio 1 envia o payload JSON com o bearer
// token e devolve os identificadores atribuídos pelo catálogo.
func TestCreateProduct_RoundTrip(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]interface{}

	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/products/create/", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 77, "name": "Saree A", "variants": [{"id": 501}, {"id": 502}]}`))
	}))

	draft := domain.ProductDraft{
		CategoryID:  3,
		Name:        "Saree A",
		ProductType: "saree",
		Variants: []domain.VariantDraft{
			{Color: "red", Size: "M", CostPrice: "10", WholesalePrice: "15"},
			{Color: "blue", Size: "L", CostPrice: "12", WholesalePrice: "18"},
		},
	}

	product, err := client.CreateProduct(context.Background(), draft.ToCreatePayload())

	require.NoError(t, err)
	assert.Equal(t, "Bearer service-token", gotAuth)
	assert.Equal(t, int64(77), product.ID)
	require.Len(t, product.Variants, 2)
	assert.Equal(t, int64(501), product.Variants[0].ID)

	// O estágio 1 nunca carrega binários: as variantes vão com o marcador de
	// imagens vazio e sem campo de id para variantes novas.
	variants := gotPayload["variants"].([]interface{})
	first := variants[0].(map[string]interface{})
	_, hasID := first["id"]
	assert.False(t, hasID)
	assert.Empty(t, first["images"])
}

// TestUpdateProduct_BackfillsID: endpoints de atualização que omitem o id no
// corpo ainda devolvem um produto identificado.
func TestUpdateProduct_BackfillsID(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/products/41/update/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name": "Saree A", "variants": [{"id": 9}]}`))
	}))

	draft := domain.ProductDraft{ExistingID: 41, CategoryID: 3, Name: "Saree A", ProductType: "saree"}
	product, err := client.UpdateProduct(context.Background(), 41, draft.ToUpdatePayload())

	require.NoError(t, err)
	assert.Equal(t, int64(41), product.ID)
}

// TestUploadVariantImages_MultipartWireFormat: o lote chega como multipart com
// os campos na forma que o catálogo espera.
func TestUploadVariantImages_MultipartWireFormat(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/product-images/upload/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "501", r.FormValue("variant_id"))
		assert.Equal(t, []string{"front", "back"}, r.MultipartForm.Value["view_types"])
		require.Len(t, r.MultipartForm.File["images"], 2)

		w.WriteHeader(http.StatusCreated)
	}))

	batch, err := upload.BuildVariantImageBatch(501, []domain.ImageAttachment{
		{FileName: "a.jpg", Content: []byte{0x1}, ViewType: "front"},
		{FileName: "b.jpg", Content: []byte{0x2}, ViewType: "back"},
	})
	require.NoError(t, err)

	assert.NoError(t, client.UploadVariantImages(context.Background(), batch))
}

// TestErrorBody_PlainString: corpo de erro como string JSON simples.
func TestErrorBody_PlainString(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`"Produto duplicado."`))
	}))

	_, err := client.CreateProduct(context.Background(), domain.ProductCreateRequest{})

	var upstreamErr *apperror.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, http.StatusBadRequest, upstreamErr.StatusCode)
	assert.Equal(t, "Produto duplicado.", upstreamErr.FlatMessage())
}

// TestErrorBody_MessageObject: corpo de erro com campo message.
func TestErrorBody_MessageObject(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message": "Categoria inexistente."}`))
	}))

	_, err := client.CreateProduct(context.Background(), domain.ProductCreateRequest{})

	var upstreamErr *apperror.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, "Categoria inexistente.", upstreamErr.FlatMessage())
}

// TestErrorBody_FieldErrors: coleção de erros de campo achatada em mensagem
// única com chaves em ordem estável.
func TestErrorBody_FieldErrors(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors": {"name": ["Nome em uso."], "category_id": ["Categoria inválida."]}}`))
	}))

	_, err := client.CreateProduct(context.Background(), domain.ProductCreateRequest{})

	var upstreamErr *apperror.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, "Categoria inválida., Nome em uso.", upstreamErr.FlatMessage())
}

// TestErrorBody_Unparseable: corpo fora de qualquer forma conhecida cai na
// mensagem genérica com o status.
func TestErrorBody_Unparseable(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>gateway error</html>`))
	}))

	_, err := client.CreateProduct(context.Background(), domain.ProductCreateRequest{})

	var upstreamErr *apperror.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, http.StatusBadGateway, upstreamErr.StatusCode)
	assert.NotEmpty(t, upstreamErr.FlatMessage())
}

// TestTransportError: conexão recusada vira erro de transporte com status 0.
func TestTransportError(t *testing.T) {
	client, server := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := client.CreateProduct(context.Background(), domain.ProductCreateRequest{})

	var upstreamErr *apperror.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, 0, upstreamErr.StatusCode)
}

// TestListProducts_EndpointSelection: cada recorte da listagem usa o endpoint
// e os parâmetros próprios.
func TestListProducts_EndpointSelection(t *testing.T) {
	tests := []struct {
		name      string
		query     domain.ProductQuery
		wantPath  string
		wantQuery map[string]string
	}{
		{
			name:     "listagem simples",
			query:    domain.ProductQuery{Page: 1, PageSize: 12, Filter: domain.FilterAll},
			wantPath: "/products/",
		},
		{
			name:      "busca textual",
			query:     domain.ProductQuery{Page: 1, PageSize: 12, Search: "saree", Filter: domain.FilterAll},
			wantPath:  "/products/search/",
			wantQuery: map[string]string{"search": "saree"},
		},
		{
			name:      "estoque baixo",
			query:     domain.ProductQuery{Page: 1, PageSize: 12, Filter: domain.FilterLow},
			wantPath:  "/products/filter/",
			wantQuery: map[string]string{"max_stock": "50"},
		},
		{
			name:      "estoque alto",
			query:     domain.ProductQuery{Page: 2, PageSize: 12, Filter: domain.FilterHigh},
			wantPath:  "/products/filter/",
			wantQuery: map[string]string{"min_stock": "100", "page": "2"},
		},
		{
			name:      "recentes",
			query:     domain.ProductQuery{Page: 1, PageSize: 12, Filter: domain.FilterRecent},
			wantPath:  "/products/filter/",
			wantQuery: map[string]string{"ordering": "-created_at"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			var gotQuery map[string][]string

			client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotQuery = r.URL.Query()
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"results": [], "count": 0}`))
			}))

			_, err := client.ListProducts(context.Background(), tt.query)

			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, gotPath)
			for key, want := range tt.wantQuery {
				require.Contains(t, gotQuery, key)
				assert.Equal(t, want, gotQuery[key][0])
			}
		})
	}
}

// TestListNotifications_FollowsAbsoluteCursor: o cursor "next" absoluto
// devolvido pelo catálogo é seguido como está.
func TestListNotifications_FollowsAbsoluteCursor(t *testing.T) {
	var paths []string
	client, server := newClient(t, nil)
	server.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/notifications/" {
			_, _ = w.Write([]byte(`{"results": [{"id": 1, "message": "novo pedido", "type": "purchase", "created_at": "2026-08-29T10:00:00Z", "is_read": false}], "next": "` + server.URL + `/notifications/page2/"}`))
			return
		}
		_, _ = w.Write([]byte(`{"results": [], "next": null}`))
	})

	notifications, next, err := client.ListNotifications(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, domain.NotificationPurchase, notifications[0].Type)
	assert.NotEmpty(t, next)

	_, next, err = client.ListNotifications(context.Background(), next)
	require.NoError(t, err)
	assert.Empty(t, next)
	assert.Equal(t, []string{"/notifications/", "/notifications/page2/"}, paths)
}

// TestListOrders_NormalizesShapes: as três formas de resposta do endpoint de
// pedidos convergem para a mesma página normalizada.
func TestListOrders_NormalizesShapes(t *testing.T) {
	bodies := []string{
		`[{"id": "ord-1", "status": "Pending", "quantity": 3}]`,
		`{"orders": [{"id": "ord-1", "status": "Pending", "quantity": 3}]}`,
		`{"results": [{"_id": "ord-1", "status": "Pending", "quantity": 3}]}`,
	}

	for _, body := range bodies {
		client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		}))

		page, err := client.ListOrders(context.Background(), "")

		require.NoError(t, err, body)
		require.Len(t, page.Orders, 1, body)
		assert.Equal(t, "ord-1", page.Orders[0].ID, body)
		assert.Equal(t, domain.OrderPending, page.Orders[0].Status, body)
	}
}

// TestUpdateOrderStatus_RejectionRoutesToCancel: rejeitar um pedido usa o
// endpoint de cancelamento; as demais transições usam o de atualização.
func TestUpdateOrderStatus_RejectionRoutesToCancel(t *testing.T) {
	var gotPath string
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))

	require.NoError(t, client.UpdateOrderStatus(context.Background(), "ord-1", domain.OrderRejected))
	assert.Equal(t, "/orders/order/ord-1/cancel/", gotPath)

	require.NoError(t, client.UpdateOrderStatus(context.Background(), "ord-1", domain.OrderApproved))
	assert.Equal(t, "/orders/order/ord-1/update_status/", gotPath)
}
