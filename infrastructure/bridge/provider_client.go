// Package bridge talks to the cross-chain bridge aggregator: quoting
// routes, starting transfers, and reporting their progress.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crosspay-engine/domain/entities"
	"crosspay-engine/domain/errors"
	"crosspay-engine/domain/interfaces"
	"github.com/shopspring/decimal"
)

// DefaultTimeout bounds each provider call.
const DefaultTimeout = 30 * time.Second

// providerClient implements the BridgeProvider interface over the
// aggregator's HTTP API.
type providerClient struct {
	endpoint   string
	httpClient *http.Client
	logger     interfaces.Logger
}

// NewProviderClient creates a bridge provider talking to the aggregator at
// endpoint.
func NewProviderClient(endpoint string, timeout time.Duration, logger interfaces.Logger) interfaces.BridgeProvider {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &providerClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type quoteRequest struct {
	FromChain   string          `json:"from_chain"`
	ToChain     string          `json:"to_chain"`
	TokenSymbol string          `json:"token_symbol"`
	Amount      decimal.Decimal `json:"amount"`
}

type routePayload struct {
	Provider         string          `json:"provider"`
	FromChain        string          `json:"from_chain"`
	ToChain          string          `json:"to_chain"`
	TokenSymbol      string          `json:"token_symbol"`
	Amount           decimal.Decimal `json:"amount"`
	Fee              decimal.Decimal `json:"fee"`
	EstimatedSeconds int             `json:"estimated_seconds"`
}

type quotesResponse struct {
	Routes []routePayload `json:"routes"`
}

type executeRequest struct {
	routePayload
	OwnerID string `json:"owner_id"`
}

type executeResponse struct {
	TransferID string `json:"transfer_id"`
}

type statusResponse struct {
	State string `json:"state"`
}

// Quote returns the aggregator's preferred route, its first-ranked one.
func (c *providerClient) Quote(
	ctx context.Context,
	fromChain, toChain, tokenSymbol string,
	amount decimal.Decimal,
) (*entities.BridgeRoute, error) {
	routes, err := c.Quotes(ctx, fromChain, toChain, tokenSymbol, amount)
	if err != nil {
		return nil, err
	}
	return &routes[0], nil
}

// Quotes returns every route the aggregator offers for the transfer.
func (c *providerClient) Quotes(
	ctx context.Context,
	fromChain, toChain, tokenSymbol string,
	amount decimal.Decimal,
) ([]entities.BridgeRoute, error) {
	body, status, err := c.post(ctx, "/api/v1/quotes", quoteRequest{
		FromChain:   fromChain,
		ToChain:     toChain,
		TokenSymbol: tokenSymbol,
		Amount:      amount,
	})
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusOK:
		var result quotesResponse
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("failed to decode quotes: %w, body: %s", err, string(body))
		}
		if len(result.Routes) == 0 {
			return nil, &errors.UnsupportedRouteError{
				FromChain:   fromChain,
				ToChain:     toChain,
				TokenSymbol: tokenSymbol,
			}
		}
		routes := make([]entities.BridgeRoute, len(result.Routes))
		for i, r := range result.Routes {
			routes[i] = entities.BridgeRoute{
				Provider:         r.Provider,
				FromChain:        r.FromChain,
				ToChain:          r.ToChain,
				TokenSymbol:      r.TokenSymbol,
				Amount:           r.Amount,
				Fee:              r.Fee,
				EstimatedSeconds: r.EstimatedSeconds,
			}
		}
		return routes, nil

	case http.StatusNotFound, http.StatusUnprocessableEntity:
		return nil, &errors.UnsupportedRouteError{
			FromChain:   fromChain,
			ToChain:     toChain,
			TokenSymbol: tokenSymbol,
		}

	default:
		return nil, errors.NewDomainError(errors.ErrConnection,
			fmt.Sprintf("bridge quote returned %d: %s", status, string(body)))
	}
}

// Execute starts a quoted transfer and returns the provider's handle for it.
func (c *providerClient) Execute(
	ctx context.Context,
	route *entities.BridgeRoute,
	owner string,
) (entities.TxHandle, error) {
	body, status, err := c.post(ctx, "/api/v1/transfers", executeRequest{
		routePayload: routePayload{
			Provider:         route.Provider,
			FromChain:        route.FromChain,
			ToChain:          route.ToChain,
			TokenSymbol:      route.TokenSymbol,
			Amount:           route.Amount,
			Fee:              route.Fee,
			EstimatedSeconds: route.EstimatedSeconds,
		},
		OwnerID: owner,
	})
	if err != nil {
		return "", err
	}

	switch status {
	case http.StatusOK, http.StatusCreated:
		var result executeResponse
		if err := json.Unmarshal(body, &result); err != nil {
			return "", fmt.Errorf("failed to decode transfer response: %w, body: %s", err, string(body))
		}
		if result.TransferID == "" {
			return "", fmt.Errorf("bridge provider returned no transfer id")
		}
		c.logger.Info("Bridge transfer started",
			"provider", route.Provider,
			"from_chain", route.FromChain,
			"to_chain", route.ToChain,
			"transfer_id", result.TransferID)
		return entities.TxHandle(result.TransferID), nil

	case http.StatusPaymentRequired:
		return "", &errors.InsufficientFundsError{
			Chain:       route.FromChain,
			TokenSymbol: route.TokenSymbol,
			Needed:      route.TotalCost(),
		}

	case http.StatusNotFound, http.StatusUnprocessableEntity:
		return "", &errors.UnsupportedRouteError{
			FromChain:   route.FromChain,
			ToChain:     route.ToChain,
			TokenSymbol: route.TokenSymbol,
		}

	default:
		return "", errors.NewDomainError(errors.ErrConnection,
			fmt.Sprintf("bridge transfer returned %d: %s", status, string(body)))
	}
}

// Status reports the transfer's progress as the provider sees it.
func (c *providerClient) Status(ctx context.Context, handle entities.TxHandle) (entities.BridgeTransferState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.endpoint+"/api/v1/transfers/"+url.PathEscape(handle.String()), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.NewDomainError(errors.ErrConnection,
			fmt.Sprintf("bridge provider unreachable: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NewDomainError(errors.ErrConnection,
			fmt.Sprintf("reading bridge response: %v", err))
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var result statusResponse
		if err := json.Unmarshal(body, &result); err != nil {
			return "", fmt.Errorf("failed to decode transfer status: %w, body: %s", err, string(body))
		}
		switch state := entities.BridgeTransferState(result.State); state {
		case entities.BridgeTransferPending, entities.BridgeTransferArrived, entities.BridgeTransferFailed:
			return state, nil
		default:
			return "", fmt.Errorf("bridge provider reported unknown state %q", result.State)
		}

	case http.StatusNotFound:
		return "", errors.NewDomainError(errors.ErrNotFound,
			fmt.Sprintf("transfer %s unknown to provider", handle))

	default:
		return "", errors.NewDomainError(errors.ErrConnection,
			fmt.Sprintf("bridge status returned %d: %s", resp.StatusCode, string(body)))
	}
}

// post sends a JSON payload and returns the raw response body and status.
// Transport failures come back as connection errors.
func (c *providerClient) post(ctx context.Context, path string, payload interface{}) ([]byte, int, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewBuffer(encoded))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, errors.NewDomainError(errors.ErrConnection,
			fmt.Sprintf("bridge provider unreachable: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, errors.NewDomainError(errors.ErrConnection,
			fmt.Sprintf("reading bridge response: %v", err))
	}
	return body, resp.StatusCode, nil
}
