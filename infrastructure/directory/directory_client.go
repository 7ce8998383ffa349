// Package directory resolves recipient handles (usernames, payment tags)
// to chain addresses through the directory service.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crosspay-engine/domain/errors"
	"crosspay-engine/domain/interfaces"
)

// DefaultTimeout bounds each directory lookup.
const DefaultTimeout = 10 * time.Second

// directoryClient implements the DirectoryService interface over the
// directory's HTTP API.
type directoryClient struct {
	endpoint   string
	httpClient *http.Client
	logger     interfaces.Logger
}

// NewDirectoryClient creates a directory client for the service at endpoint.
func NewDirectoryClient(endpoint string, timeout time.Duration, logger interfaces.Logger) interfaces.DirectoryService {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &directoryClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type resolveResponse struct {
	Address string `json:"address"`
}

// Resolve maps a recipient handle to a chain address.
func (c *directoryClient) Resolve(ctx context.Context, recipient string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.endpoint+"/api/v1/handles/"+url.PathEscape(recipient), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.NewDomainError(errors.ErrConnection,
			fmt.Sprintf("directory service unreachable: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NewDomainError(errors.ErrConnection,
			fmt.Sprintf("reading directory response: %v", err))
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var result resolveResponse
		if err := json.Unmarshal(body, &result); err != nil {
			return "", fmt.Errorf("failed to decode directory response: %w, body: %s", err, string(body))
		}
		if result.Address == "" {
			return "", fmt.Errorf("directory returned no address for %q", recipient)
		}
		c.logger.Debug("Recipient resolved", "recipient", recipient, "address", result.Address)
		return result.Address, nil

	case http.StatusNotFound:
		return "", errors.NewDomainError(errors.ErrNotFound,
			fmt.Sprintf("recipient %q is not registered", recipient))

	default:
		return "", errors.NewDomainError(errors.ErrConnection,
			fmt.Sprintf("directory returned %d: %s", resp.StatusCode, string(body)))
	}
}
