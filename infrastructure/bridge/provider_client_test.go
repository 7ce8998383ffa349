package bridge

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"crosspay-engine/domain/entities"
	domainerrors "crosspay-engine/domain/errors"
	"crosspay-engine/infrastructure/logger"
	"crosspay-engine/test/helpers"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quotesHandler(t *testing.T, routes []map[string]interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/quotes", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"routes": routes})
	}
}

func TestProviderClient_Quotes(t *testing.T) {
	server := httptest.NewServer(quotesHandler(t, []map[string]interface{}{
		{
			"provider": "hop", "from_chain": "ethereum", "to_chain": "polygon",
			"token_symbol": "USDC", "amount": "25.50", "fee": "0.30", "estimated_seconds": 600,
		},
		{
			"provider": "across", "from_chain": "ethereum", "to_chain": "polygon",
			"token_symbol": "USDC", "amount": "25.50", "fee": "0.10", "estimated_seconds": 900,
		},
	}))
	defer server.Close()

	client := NewProviderClient(server.URL, 0, logger.NewNopLogger())

	routes, err := client.Quotes(helpers.TestContext(t), "ethereum", "polygon", "USDC", decimal.RequireFromString("25.50"))
	require.NoError(t, err)
	require.Len(t, routes, 2)
	assert.Equal(t, "hop", routes[0].Provider)
	assert.True(t, routes[1].Fee.Equal(decimal.RequireFromString("0.10")))

	// Quote returns the provider's first-ranked route.
	route, err := client.Quote(helpers.TestContext(t), "ethereum", "polygon", "USDC", decimal.RequireFromString("25.50"))
	require.NoError(t, err)
	assert.Equal(t, "hop", route.Provider)
	assert.True(t, route.TotalCost().Equal(decimal.RequireFromString("25.80")))
}

func TestProviderClient_UnsupportedRoute(t *testing.T) {
	t.Run("provider says not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewProviderClient(server.URL, 0, logger.NewNopLogger())
		_, err := client.Quotes(helpers.TestContext(t), "ethereum", "base", "WBTC", helpers.RandomAmount())

		var routeErr *domainerrors.UnsupportedRouteError
		require.ErrorAs(t, err, &routeErr)
		assert.Equal(t, "base", routeErr.ToChain)
		assert.False(t, domainerrors.IsRetryable(err))
	})

	t.Run("empty route list", func(t *testing.T) {
		server := httptest.NewServer(quotesHandler(t, nil))
		defer server.Close()

		client := NewProviderClient(server.URL, 0, logger.NewNopLogger())
		_, err := client.Quote(helpers.TestContext(t), "ethereum", "base", "WBTC", helpers.RandomAmount())

		var routeErr *domainerrors.UnsupportedRouteError
		require.ErrorAs(t, err, &routeErr)
	})
}

func TestProviderClient_ExecuteAndStatus(t *testing.T) {
	var executed executeRequest

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/transfers", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&executed))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"transfer_id": "tr-7f3a"})
	})
	mux.HandleFunc("/api/v1/transfers/tr-7f3a", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_ = json.NewEncoder(w).Encode(map[string]string{"state": "arrived"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewProviderClient(server.URL, 0, logger.NewNopLogger())

	route := &entities.BridgeRoute{
		Provider:         "hop",
		FromChain:        "ethereum",
		ToChain:          "polygon",
		TokenSymbol:      "USDC",
		Amount:           decimal.RequireFromString("25.50"),
		Fee:              decimal.RequireFromString("0.30"),
		EstimatedSeconds: 600,
	}

	handle, err := client.Execute(helpers.TestContext(t), route, "user-1")
	require.NoError(t, err)
	assert.Equal(t, entities.TxHandle("tr-7f3a"), handle)
	assert.Equal(t, "user-1", executed.OwnerID)
	assert.Equal(t, "hop", executed.Provider)

	state, err := client.Status(helpers.TestContext(t), handle)
	require.NoError(t, err)
	assert.Equal(t, entities.BridgeTransferArrived, state)
}

func TestProviderClient_StatusUnknownTransfer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewProviderClient(server.URL, 0, logger.NewNopLogger())
	_, err := client.Status(helpers.TestContext(t), entities.TxHandle("tr-missing"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestProviderClient_StatusUnknownState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"state": "teleported"})
	}))
	defer server.Close()

	client := NewProviderClient(server.URL, 0, logger.NewNopLogger())
	_, err := client.Status(helpers.TestContext(t), entities.TxHandle("tr-7f3a"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown state")
}

func TestProviderClient_ServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "aggregator overloaded", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewProviderClient(server.URL, 0, logger.NewNopLogger())
	_, err := client.Quotes(helpers.TestContext(t), "ethereum", "polygon", "USDC", helpers.RandomAmount())

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrConnection)
	assert.True(t, domainerrors.IsRetryable(err))
}
