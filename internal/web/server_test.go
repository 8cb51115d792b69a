package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartinvest/server/internal/services/auth"
	"github.com/smartinvest/server/internal/services/forecast"
	"github.com/smartinvest/server/internal/services/news"
	"github.com/smartinvest/server/internal/services/portfolio"
	"github.com/smartinvest/server/internal/services/pricer"
	"github.com/smartinvest/server/internal/services/trader"
	"github.com/smartinvest/server/internal/services/tutorial"
	"github.com/smartinvest/server/internal/storage/accounts"
	"github.com/smartinvest/server/internal/storage/progress"
	"github.com/smartinvest/server/internal/storage/transactions"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := zap.NewNop()

	accountStore, err := accounts.NewStore(t.TempDir())
	require.NoError(t, err)

	txStore, err := transactions.NewWALStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = txStore.Close() })

	progressStore, err := progress.NewStore(t.TempDir())
	require.NoError(t, err)

	quotes := pricer.NewSimulate(logger)

	authSvc, err := auth.NewService(accountStore, decimal.NewFromInt(100000), logger)
	require.NoError(t, err)

	traderSvc, err := trader.NewService(accountStore, txStore, quotes, logger)
	require.NoError(t, err)

	portfolioSvc, err := portfolio.NewService(txStore, accountStore, quotes, decimal.NewFromInt(100), logger)
	require.NoError(t, err)

	forecastSvc, err := forecast.NewService(quotes, logger)
	require.NoError(t, err)

	tutorialSvc, err := tutorial.NewService(progressStore, logger)
	require.NoError(t, err)

	newsSvc, err := news.NewService(news.Config{}, logger)
	require.NoError(t, err)

	srv, err := NewServer("127.0.0.1:0", Deps{
		Auth:      authSvc,
		Pricer:    quotes,
		Trader:    traderSvc,
		Portfolio: portfolioSvc,
		Forecast:  forecastSvc,
		Tutorial:  tutorialSvc,
		News:      newsSvc,
	}, logger)
	require.NoError(t, err)

	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func registerAndLogin(t *testing.T, srv *Server, username string) string {
	t.Helper()

	rec := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", jsonBody{
		"username": username, "password": "hunter22", "email": username + "@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodPost, "/api/auth/login", "", jsonBody{
		"username": username, "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_AuthFlow(t *testing.T) {
	srv := newTestServer(t)

	token := registerAndLogin(t, srv, "alice")

	rec := doJSON(t, srv, http.MethodGet, "/api/auth/user", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"alice"`)

	// duplicate registration rejected
	rec = doJSON(t, srv, http.MethodPost, "/api/auth/register", "", jsonBody{
		"username": "alice", "password": "other", "email": "a@example.com",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// wrong password rejected
	rec = doJSON(t, srv, http.MethodPost, "/api/auth/login", "", jsonBody{
		"username": "alice", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// logout invalidates the token
	rec = doJSON(t, srv, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, srv, http.MethodGet, "/api/auth/user", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_ProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/api/portfolio", "/api/transactions", "/api/auth/user"} {
		rec := doJSON(t, srv, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestServer_TradePreview(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv, "carol")

	rec := doJSON(t, srv, http.MethodGet, "/api/trade/preview?symbol=AAPL&quantity=3", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Symbol   string          `json:"symbol"`
		Quantity int64           `json:"quantity"`
		Total    decimal.Decimal `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "AAPL", resp.Symbol)
	assert.Equal(t, int64(3), resp.Quantity)
	assert.True(t, resp.Total.IsPositive())

	rec = doJSON(t, srv, http.MethodGet, "/api/trade/preview?symbol=AAPL&quantity=zero", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/trade/preview?symbol=NOPE&quantity=1", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/trade/preview?symbol=AAPL&quantity=1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_Quotes(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/stocks/AAPL", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"AAPL"`)

	rec = doJSON(t, srv, http.MethodGet, "/api/stocks/NOPE", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/stocks/search?q=apple", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"AAPL"`)
}

func TestServer_TradeAndPortfolio(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv, "bob")

	rec := doJSON(t, srv, http.MethodPost, "/api/trade/buy", token, jsonBody{
		"symbol": "AAPL", "stock_name": "Apple Inc.", "quantity": 5, "order_type": "market", "duration": "day",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodGet, "/api/portfolio", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		Holdings []struct {
			Symbol   string `json:"symbol"`
			Quantity int64  `json:"quantity"`
		} `json:"holdings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Len(t, view.Holdings, 1)
	assert.Equal(t, "AAPL", view.Holdings[0].Symbol)
	assert.EqualValues(t, 5, view.Holdings[0].Quantity)

	// oversell rejected
	rec = doJSON(t, srv, http.MethodPost, "/api/trade/sell", token, jsonBody{
		"symbol": "AAPL", "quantity": 10,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// partial sell accepted
	rec = doJSON(t, srv, http.MethodPost, "/api/trade/sell", token, jsonBody{
		"symbol": "AAPL", "quantity": 2,
	})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodGet, "/api/transactions?type=SELL", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var txResp struct {
		Transactions []struct {
			Action string `json:"action"`
		} `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txResp))
	require.Len(t, txResp.Transactions, 1)
	assert.Equal(t, "SELL", txResp.Transactions[0].Action)

	rec = doJSON(t, srv, http.MethodGet, "/api/portfolio/stats", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "available_cash")
}

func TestServer_TradeInsufficientFunds(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv, "carol")

	rec := doJSON(t, srv, http.MethodPost, "/api/trade/buy", token, jsonBody{
		"symbol": "NVDA", "quantity": 1000000,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestServer_Forecast(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/forecast/MSFT", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"predictions"`)

	rec = doJSON(t, srv, http.MethodGet, "/api/forecast/NOPE", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_News(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/news", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"articles"`)
}

func TestServer_Tutorials(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv, "dave")

	rec := doJSON(t, srv, http.MethodGet, "/api/tutorials", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/tutorial/stock-fundamentals", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Stock Market Fundamentals")

	rec = doJSON(t, srv, http.MethodGet, "/api/tutorial/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/tutorial/stock-fundamentals/quiz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// perfect submission passes and records progress
	rec = doJSON(t, srv, http.MethodPost, "/api/tutorial/stock-fundamentals/quiz", token, jsonBody{
		"answers": map[string]int{"0": 1, "1": 1, "2": 1, "3": 3},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"passed":true`)

	rec = doJSON(t, srv, http.MethodGet, "/api/tutorials/progress", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"stock-fundamentals":true`)

	rec = doJSON(t, srv, http.MethodPost, "/api/tutorial/stock-fundamentals/exercise", token, jsonBody{
		"answer": "50000000",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"correct":true`)

	rec = doJSON(t, srv, http.MethodPost, "/api/tutorials/progress/complete", token, jsonBody{
		"tutorial_id": "chart-reading",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_QuoteStream(t *testing.T) {
	srv := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/quotes/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "event:quotes")
	assert.Contains(t, rec.Body.String(), "AAPL")
}

func TestServer_Start_ShutsDownOnCancel(t *testing.T) {
	srv := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}

// jsonBody mirrors gin.H without importing gin into the test.
type jsonBody = map[string]any

