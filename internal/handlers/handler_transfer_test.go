package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	portssvc "github.com/payflo/money_transfer_app/internal/core/ports/services"
	"github.com/payflo/money_transfer_app/internal/core/services"
	"github.com/payflo/money_transfer_app/internal/dto"
	"github.com/payflo/money_transfer_app/internal/handlers"
	"github.com/payflo/money_transfer_app/internal/platform/config"
	"github.com/payflo/money_transfer_app/internal/repositories/memory"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// TransferHandlerTestSuite drives the full HTTP surface against the in-memory
// store: real routing, real auth middleware, real services.
type TransferHandlerTestSuite struct {
	suite.Suite
	router *gin.Engine
	store  *memory.Store
}

func (suite *TransferHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.store = memory.NewStore()

	cfg := &config.Config{
		Port:                 "8080",
		JWTSecret:            "test-secret-key-that-is-long-enough",
		JWTExpiryDuration:    time.Hour,
		JWTIssuer:            "mta-test",
		StartingBalanceMinor: 100000, // 1000.00
		MaxTransferAttempts:  3,
	}

	container := &portssvc.ServiceContainer{
		Account:  services.NewAccountService(suite.store, cfg.StartingBalanceMinor),
		Transfer: services.NewTransferService(suite.store, suite.store, cfg.MaxTransferAttempts),
		History:  services.NewHistoryService(suite.store, suite.store),
	}
	handlers.RegisterRoutes(suite.router, cfg, container)
}

func (suite *TransferHandlerTestSuite) doJSON(method, url, body, token string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req, err := http.NewRequest(method, url, reader)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *TransferHandlerTestSuite) register(name, email string) dto.AccountResponse {
	body := fmt.Sprintf(`{"name":%q,"email":%q,"password":"correct-horse"}`, name, email)
	w := suite.doJSON(http.MethodPost, "/api/v1/auth/register", body, "")
	suite.Require().Equal(http.StatusCreated, w.Code, "register should succeed: %s", w.Body.String())

	var resp dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (suite *TransferHandlerTestSuite) login(email string) string {
	body := fmt.Sprintf(`{"email":%q,"password":"correct-horse"}`, email)
	w := suite.doJSON(http.MethodPost, "/api/v1/auth/login", body, "")
	suite.Require().Equal(http.StatusOK, w.Code, "login should succeed: %s", w.Body.String())

	var resp dto.LoginResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().NotEmpty(resp.Token)
	return resp.Token
}

// --- Test Cases ---

func (suite *TransferHandlerTestSuite) TestRegisterTransferHistoryFlow() {
	alice := suite.register("Alice", "alice@example.com")
	suite.register("Bob", "bob@example.com")
	suite.True(decimal.RequireFromString("1000").Equal(alice.Balance), "new accounts get the starting balance")

	token := suite.login("alice@example.com")

	w := suite.doJSON(http.MethodPost, "/api/v1/transfer",
		`{"receiverEmail":"bob@example.com","amount":250.50}`, token)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var transferResp dto.TransferResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &transferResp))
	suite.True(decimal.RequireFromString("749.50").Equal(transferResp.NewSenderBalance))

	// Balance visible via /auth/me.
	w = suite.doJSON(http.MethodGet, "/api/v1/auth/me", "", token)
	suite.Require().Equal(http.StatusOK, w.Code)
	var me dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &me))
	suite.True(decimal.RequireFromString("749.50").Equal(me.Balance))

	// And the transfer shows up in the sender's history.
	w = suite.doJSON(http.MethodGet, "/api/v1/transactions", "", token)
	suite.Require().Equal(http.StatusOK, w.Code)
	var history dto.HistoryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &history))
	suite.Require().Len(history.Transactions, 1)
	suite.Equal("sent", history.Transactions[0].Direction)
	suite.Equal("bob@example.com", history.Transactions[0].CounterpartyRef)
	suite.Equal("SUCCESS", history.Transactions[0].Status)
	suite.True(decimal.RequireFromString("250.50").Equal(history.Transactions[0].Amount))
}

func (suite *TransferHandlerTestSuite) TestRegister_RejectsClientSuppliedBalance() {
	body := `{"name":"Mallory","email":"mallory@example.com","password":"correct-horse","balance":9999}`
	w := suite.doJSON(http.MethodPost, "/api/v1/auth/register", body, "")
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TransferHandlerTestSuite) TestRegister_DuplicateEmail() {
	suite.register("Alice", "alice@example.com")
	body := `{"name":"Alice Again","email":"alice@example.com","password":"correct-horse"}`
	w := suite.doJSON(http.MethodPost, "/api/v1/auth/register", body, "")
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *TransferHandlerTestSuite) TestLogin_WrongPassword() {
	suite.register("Alice", "alice@example.com")
	w := suite.doJSON(http.MethodPost, "/api/v1/auth/login",
		`{"email":"alice@example.com","password":"wrong-password"}`, "")
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *TransferHandlerTestSuite) TestTransfer_RequiresAuth() {
	w := suite.doJSON(http.MethodPost, "/api/v1/transfer",
		`{"receiverEmail":"bob@example.com","amount":10}`, "")
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *TransferHandlerTestSuite) TestTransfer_ErrorStatuses() {
	suite.register("Alice", "alice@example.com")
	suite.register("Bob", "bob@example.com")
	token := suite.login("alice@example.com")

	// Sub-minor precision is malformed.
	w := suite.doJSON(http.MethodPost, "/api/v1/transfer",
		`{"receiverEmail":"bob@example.com","amount":10.001}`, token)
	suite.Equal(http.StatusBadRequest, w.Code)

	// Zero amount.
	w = suite.doJSON(http.MethodPost, "/api/v1/transfer",
		`{"receiverEmail":"bob@example.com","amount":0}`, token)
	suite.Equal(http.StatusBadRequest, w.Code)

	// Self transfer.
	w = suite.doJSON(http.MethodPost, "/api/v1/transfer",
		`{"receiverEmail":"alice@example.com","amount":10}`, token)
	suite.Equal(http.StatusBadRequest, w.Code)

	// Unknown receiver.
	w = suite.doJSON(http.MethodPost, "/api/v1/transfer",
		`{"receiverEmail":"nobody@example.com","amount":10}`, token)
	suite.Equal(http.StatusNotFound, w.Code)

	// More than the sender holds.
	w = suite.doJSON(http.MethodPost, "/api/v1/transfer",
		`{"receiverEmail":"bob@example.com","amount":1000.01}`, token)
	suite.Equal(http.StatusBadRequest, w.Code)

	// None of the rejected requests may leave a journal record behind.
	w = suite.doJSON(http.MethodGet, "/api/v1/transactions", "", token)
	suite.Require().Equal(http.StatusOK, w.Code)
	var history dto.HistoryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &history))
	suite.Empty(history.Transactions)
}

func (suite *TransferHandlerTestSuite) TestTransfer_IdempotencyToken() {
	suite.register("Alice", "alice@example.com")
	suite.register("Bob", "bob@example.com")
	token := suite.login("alice@example.com")

	body := `{"receiverEmail":"bob@example.com","amount":100,"clientToken":"retry-abc"}`
	w := suite.doJSON(http.MethodPost, "/api/v1/transfer", body, token)
	suite.Require().Equal(http.StatusOK, w.Code)

	// The retry is absorbed, not re-applied.
	w = suite.doJSON(http.MethodPost, "/api/v1/transfer", body, token)
	suite.Require().Equal(http.StatusOK, w.Code)
	var resp dto.TransferResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(decimal.RequireFromString("900").Equal(resp.NewSenderBalance))

	w = suite.doJSON(http.MethodGet, "/api/v1/transactions", "", token)
	suite.Require().Equal(http.StatusOK, w.Code)
	var history dto.HistoryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &history))
	suite.Len(history.Transactions, 1)
}

func (suite *TransferHandlerTestSuite) TestHealthIsPublic() {
	w := suite.doJSON(http.MethodGet, "/health", "", "")
	suite.Equal(http.StatusOK, w.Code)
}

// --- Run Test Suite ---
func TestTransferHandler(t *testing.T) {
	suite.Run(t, new(TransferHandlerTestSuite))
}
