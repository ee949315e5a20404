// Package clients holds the HTTP clients for the user and product
// collaborator services. Calls are synchronous and single-shot: a transport
// failure is surfaced immediately as a domain ExternalServiceError, there is
// no retry or backoff here.
package clients

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go-order-ms/src/services/order/domain"
)

// UserServiceClient answers the one question the order workflow asks the
// user service: does this user exist.
type UserServiceClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewUserServiceClient(baseURL string, timeout time.Duration) *UserServiceClient {
	return &UserServiceClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *UserServiceClient) EnsureExists(ctx context.Context, userID string) error {
	url := fmt.Sprintf("%s/api/v1/users/%s", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &domain.ExternalServiceError{Service: "user", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.ExternalServiceError{Service: "user", Err: err}
	}
	defer drain(resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("user %s: %w", userID, domain.ErrUserNotFound)
	default:
		return &domain.ExternalServiceError{
			Service: "user",
			Err:     fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
}

// drain discards the remaining body so the connection can be reused.
func drain(body io.ReadCloser) {
	io.Copy(io.Discard, body)
	body.Close()
}
