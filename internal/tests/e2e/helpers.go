package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DanielPopoola/solpay-gateway/internal/api"
	"github.com/DanielPopoola/solpay-gateway/internal/application/services"
	"github.com/DanielPopoola/solpay-gateway/internal/domain"
	"github.com/DanielPopoola/solpay-gateway/internal/infrastructure/ratelimit"
	"github.com/DanielPopoola/solpay-gateway/internal/infrastructure/replay"
	"github.com/DanielPopoola/solpay-gateway/internal/interfaces/rest/handlers"
	"github.com/DanielPopoola/solpay-gateway/internal/interfaces/rest/middleware"
	"github.com/DanielPopoola/solpay-gateway/internal/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	treasury = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
	payer    = "7YWHMfk9JZe0LM0g1ZauHuiSxhI9JwDHcEtyrZ53mCuv"
)

// Gateway runs the full HTTP stack in process, with memory stores and a
// mocked ledger.
type Gateway struct {
	Server *httptest.Server
	Ledger *mocks.MockLedgerClient
	Client *TestClient
}

func NewGateway(t *testing.T, exposeReasons bool) *Gateway {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ledger := mocks.NewMockLedgerClient(t)

	verificationService := services.NewVerificationService(
		ledger,
		replay.NewMemoryStore(1000, 100, logger),
		ratelimit.NewMemoryStore(time.Minute, 10),
		services.NewPaymentValidator(treasury, 5*time.Minute),
		logger,
	)

	doc, err := api.LoadSpec(context.Background())
	require.NoError(t, err)

	prices := map[string]decimal.Decimal{
		"impermanent_loss": decimal.RequireFromString("0.05"),
		"correlation":      decimal.RequireFromString("0.02"),
	}

	h := handlers.NewHandlers(verificationService, nil, nil, exposeReasons, logger)
	mux := http.NewServeMux()
	api.RegisterDocsRoutes(mux, doc)
	h.RegisterRoutes(mux, middleware.RequirePayment(verificationService, prices, exposeReasons, logger))

	validate, err := middleware.ValidateRequests(doc, logger)
	require.NoError(t, err)

	handler := validate(mux)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.Timeout(5 * time.Second)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(handler)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &Gateway{
		Server: server,
		Ledger: ledger,
		Client: NewTestClient(server.URL),
	}
}

// Payment builds a confirmed transfer from payer to the treasury.
func Payment(signature string, age time.Duration, lamports uint64) *domain.LedgerTransaction {
	bt := time.Now().Add(-age)
	return &domain.LedgerTransaction{
		Signature:    signature,
		Slot:         1,
		BlockTime:    &bt,
		AccountKeys:  []string{payer, treasury},
		PreBalances:  []uint64{5_000_000_000, 1_000_000_000},
		PostBalances: []uint64{5_000_000_000 - lamports - 5000, 1_000_000_000 + lamports},
	}
}

// Signature returns a distinct, well-formed-length signature for n.
func Signature(n int) string {
	return fmt.Sprintf("e2e%085d", n)
}

// Response is a decoded gateway reply.
type Response struct {
	Status  int
	Success bool
	Data    json.RawMessage
	Error   api.ErrorDetail
	Header  http.Header
}

// TestClient wraps HTTP calls to gateway
type TestClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewTestClient(baseURL string) *TestClient {
	return &TestClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Verify calls POST /api/v1/verifications.
func (c *TestClient) Verify(t *testing.T, signature, amount string) Response {
	t.Helper()

	body, err := json.Marshal(api.VerifyPaymentRequest{Signature: signature, RequiredAmount: amount})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/v1/verifications", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	return c.do(t, req)
}

// Access calls POST /api/v1/services/{service}/access. An empty signature
// sends no payment header.
func (c *TestClient) Access(t *testing.T, service, signature string) Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/v1/services/"+service+"/access", nil)
	require.NoError(t, err)
	if signature != "" {
		req.Header.Set(middleware.PaymentSignatureHeader, signature)
	}

	return c.do(t, req)
}

func (c *TestClient) do(t *testing.T, req *http.Request) Response {
	t.Helper()

	resp, err := c.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   api.ErrorDetail `json:"error"`
	}
	require.NoError(t, json.Unmarshal(bodyBytes, &envelope), "body: %s", bodyBytes)

	return Response{
		Status:  resp.StatusCode,
		Success: envelope.Success,
		Data:    envelope.Data,
		Error:   envelope.Error,
		Header:  resp.Header,
	}
}
