package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go-order-ms/src/services/order/domain"
)

// ProductServiceClient fetches catalog snapshots and applies signed stock
// deltas. The create workflow only ever sends negative deltas; restocking
// is the product service's own concern.
type ProductServiceClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewProductServiceClient(baseURL string, timeout time.Duration) *ProductServiceClient {
	return &ProductServiceClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// productPayload mirrors the product service's response body. The ID is
// taken from the request rather than decoded, so the client does not care
// how the collaborator types its identifiers.
type productPayload struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

type stockUpdatePayload struct {
	StockModification int `json:"stockModification"`
}

func (c *ProductServiceClient) GetProduct(ctx context.Context, productID string) (*domain.ProductInfo, error) {
	url := fmt.Sprintf("%s/api/v1/products/%s", c.baseURL, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &domain.ExternalServiceError{Service: "product", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ExternalServiceError{Service: "product", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var payload productPayload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, &domain.ExternalServiceError{
				Service: "product",
				Err:     fmt.Errorf("malformed response body: %w", err),
			}
		}
		return &domain.ProductInfo{
			ID:    productID,
			Name:  payload.Name,
			Price: payload.Price,
			Stock: payload.Stock,
		}, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("product %s: %w", productID, domain.ErrProductNotFound)
	default:
		return nil, &domain.ExternalServiceError{
			Service: "product",
			Err:     fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
}

func (c *ProductServiceClient) AdjustStock(ctx context.Context, productID string, delta int) error {
	body, err := json.Marshal(stockUpdatePayload{StockModification: delta})
	if err != nil {
		return &domain.ExternalServiceError{Service: "product", Err: err}
	}

	url := fmt.Sprintf("%s/api/v1/products/%s/stock", c.baseURL, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return &domain.ExternalServiceError{Service: "product", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.ExternalServiceError{Service: "product", Err: err}
	}
	defer drain(resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("product %s: %w", productID, domain.ErrProductNotFound)
	default:
		return &domain.ExternalServiceError{
			Service: "product",
			Err:     fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
}
