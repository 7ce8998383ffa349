// Package wallet calls the external custody service that holds owner funds
// and signs transfers. Key management never enters the engine; every
// transfer is submitted through this client and identified by the handle it
// returns.
package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"crosspay-engine/domain/entities"
	"crosspay-engine/domain/errors"
	"crosspay-engine/domain/interfaces"
	"github.com/shopspring/decimal"
)

// DefaultTimeout bounds each custody call.
const DefaultTimeout = 30 * time.Second

// executorClient implements the PaymentExecutor interface over the custody
// service's HTTP API.
type executorClient struct {
	endpoint   string
	httpClient *http.Client
	logger     interfaces.Logger
}

// NewExecutorClient creates a payment executor talking to the custody
// service at endpoint.
func NewExecutorClient(endpoint string, timeout time.Duration, logger interfaces.Logger) interfaces.PaymentExecutor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &executorClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type transferRequest struct {
	Chain       string          `json:"chain"`
	OwnerID     string          `json:"owner_id"`
	Recipient   string          `json:"recipient"`
	TokenSymbol string          `json:"token_symbol"`
	Amount      decimal.Decimal `json:"amount"`
}

type transferResponse struct {
	TxHandle string `json:"tx_handle"`
}

type errorResponse struct {
	Error     string          `json:"error"`
	Available decimal.Decimal `json:"available"`
}

func decodeError(body []byte) errorResponse {
	var result errorResponse
	_ = json.Unmarshal(body, &result)
	if result.Error == "" {
		result.Error = strings.TrimSpace(string(body))
	}
	return result
}

// Execute submits a transfer of amount tokens from the owner's custody
// account to the recipient address on the given chain.
func (c *executorClient) Execute(
	ctx context.Context,
	chain, owner, recipient, tokenSymbol string,
	amount decimal.Decimal,
) (entities.TxHandle, error) {
	payload, err := json.Marshal(transferRequest{
		Chain:       chain,
		OwnerID:     owner,
		Recipient:   recipient,
		TokenSymbol: tokenSymbol,
		Amount:      amount,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal transfer request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/v1/transfers", bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.NewDomainError(errors.ErrConnection,
			fmt.Sprintf("wallet service unreachable: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NewDomainError(errors.ErrConnection,
			fmt.Sprintf("reading wallet response: %v", err))
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var result transferResponse
		if err := json.Unmarshal(body, &result); err != nil {
			return "", fmt.Errorf("failed to decode transfer response: %w, body: %s", err, string(body))
		}
		if result.TxHandle == "" {
			return "", fmt.Errorf("wallet service returned no tx handle")
		}
		c.logger.Info("Transfer submitted",
			"chain", chain, "token", tokenSymbol, "amount", amount.String(), "tx_handle", result.TxHandle)
		return entities.TxHandle(result.TxHandle), nil

	case http.StatusPaymentRequired:
		return "", &errors.InsufficientFundsError{
			Chain:       chain,
			TokenSymbol: tokenSymbol,
			Needed:      amount,
			Available:   decodeError(body).Available,
		}

	case http.StatusUnprocessableEntity:
		return "", &errors.PaymentExecutionFailedError{
			Chain:  chain,
			Reason: fmt.Sprintf("transfer rejected: %s", decodeError(body).Error),
		}

	case http.StatusUnauthorized, http.StatusForbidden:
		return "", errors.NewDomainError(errors.ErrUnauthorized, "wallet service rejected credentials")

	case http.StatusNotFound:
		return "", errors.NewDomainError(errors.ErrNotFound,
			fmt.Sprintf("owner %s has no custody account", owner))

	default:
		return "", &errors.PaymentExecutionFailedError{
			Chain:     chain,
			Reason:    fmt.Sprintf("wallet service returned %d: %s", resp.StatusCode, decodeError(body).Error),
			Transient: true,
		}
	}
}
