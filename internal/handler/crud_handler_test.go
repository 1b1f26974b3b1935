package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/auth"
	"github.com/dafibh/ledger/ledger-backend/internal/cache"
	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/dafibh/ledger/ledger-backend/internal/dto"
	"github.com/dafibh/ledger/ledger-backend/internal/i18n"
	"github.com/dafibh/ledger/ledger-backend/internal/middleware"
	"github.com/dafibh/ledger/ledger-backend/internal/service"
	"github.com/dafibh/ledger/ledger-backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAuth = auth.Settings{
	Secret:   strings.Repeat("s", auth.MinSecretLength),
	Issuer:   "ledger-test",
	Audience: "ledger-api",
}

type serverOptions struct {
	production bool
	withAuth   bool
	logoStore  *testutil.MockLogoStorage
}

type testServer struct {
	e      *echo.Echo
	banks  *testutil.CountingRepository[*domain.Bank]
	seeded *testutil.Seeded
	issuer *auth.Issuer
}

type envelope struct {
	Status       bool            `json:"status"`
	Message      string          `json:"message"`
	Response     json.RawMessage `json:"response"`
	TotalRecords *int64          `json:"totalRecords"`
}

func newTestServer(t *testing.T, opts serverOptions) *testServer {
	t.Helper()
	tr, err := i18n.New("en")
	require.NoError(t, err)

	repos := testutil.NewRepositories()
	seeded := repos.Seed(t)
	banks := testutil.NewCountingRepository[*domain.Bank](repos.Banks)
	c := cache.NewLocal(0)
	config := service.CRUDConfig{CacheTTL: time.Minute, DefaultPageSize: 10, MaxPageSize: 100}

	bankService := service.NewCRUDService[*domain.Bank, dto.Bank](banks, dto.FromBank, c, tr, nil, zerolog.Nop(), config)
	txService := service.NewCRUDService[*domain.Transaction, dto.Transaction](repos.Transactions, dto.FromTransaction, c, tr, nil, zerolog.Nop(), config)

	var logos *service.LogoService
	if opts.logoStore != nil {
		logos = service.NewLogoService(opts.logoStore, repos.Banks, zerolog.Nop())
	}

	e := echo.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(tr, opts.production)

	routes := Routes{
		BasePath: "/api",
		Entities: []EntityRoutes{
			NewCRUDHandler[dto.Bank](bankService, tr),
			NewCRUDHandler[dto.Transaction](txService, tr),
		},
		Logos:      NewLogoHandler(logos, tr),
		Middleware: []echo.MiddlewareFunc{middleware.Language(tr)},
	}

	var issuer *auth.Issuer
	if opts.withAuth {
		m, err := middleware.NewAuthMiddleware(testAuth, tr)
		require.NoError(t, err)
		routes.Guard = m.Authenticate()
		issuer, err = auth.NewIssuer(testAuth)
		require.NoError(t, err)
	}

	RegisterRoutes(e, routes)
	return &testServer{e: e, banks: banks, seeded: seeded, issuer: issuer}
}

func (s *testServer) do(t *testing.T, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func TestCRUDHandler_GetAll(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	for _, name := range []string{"Beta", "Gamma", "Delta"} {
		rec, _ := s.do(t, http.MethodPost, "/api/Bank", `{"name":"`+name+`"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, env := s.do(t, http.MethodGet, "/api/Bank?pageSize=2&offsetSize=1", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Status)
	require.NotNil(t, env.TotalRecords)
	assert.Equal(t, int64(4), *env.TotalRecords)

	var banks []dto.Bank
	require.NoError(t, json.Unmarshal(env.Response, &banks))
	require.Len(t, banks, 2)
	assert.Equal(t, "Beta", banks[0].Name)
	assert.Equal(t, "Gamma", banks[1].Name)
}

func TestCRUDHandler_GetAll_MalformedPageSize(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	rec, env := s.do(t, http.MethodGet, "/api/Bank?pageSize=ten", "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var errs []dto.FieldError
	require.NoError(t, json.Unmarshal(env.Response, &errs))
	require.Len(t, errs, 1)
	assert.Equal(t, "pageSize", errs[0].Field)
}

func TestCRUDHandler_GetByID(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	rec, env := s.do(t, http.MethodGet, "/api/Transaction/1", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var tx dto.Transaction
	require.NoError(t, json.Unmarshal(env.Response, &tx))
	assert.Equal(t, "Groceries at the market", tx.Description)
	assert.Equal(t, "18.4", tx.Amount.String())
	assert.Equal(t, s.seeded.Bank.ID, tx.BankID)
}

func TestCRUDHandler_InvalidIDs(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	for _, path := range []string{"/api/Bank/0", "/api/Bank/-3", "/api/Bank/abc", "/api/Bank/99999999999"} {
		t.Run(path, func(t *testing.T) {
			rec, env := s.do(t, http.MethodGet, path, "", nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, env.Status)
			assert.Equal(t, "The id must be a positive integer", env.Message)
		})
	}

	rec, _ := s.do(t, http.MethodDelete, "/api/Bank/0", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCRUDHandler_NotFoundIsBadRequest(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	rec, env := s.do(t, http.MethodGet, "/api/Bank/42", "", map[string]string{middleware.HeaderAPILanguage: "es"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Status)
	assert.Equal(t, "No se encontró Bank con id 42", env.Message)
}

func TestCRUDHandler_Create(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	rec, env := s.do(t, http.MethodPost, "/api/Bank", `{"name":"Northwind"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Status)
	assert.Equal(t, "Bank created successfully", env.Message)
	var bank dto.Bank
	require.NoError(t, json.Unmarshal(env.Response, &bank))
	assert.Equal(t, int32(2), bank.ID)
}

func TestCRUDHandler_Create_Failures(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	t.Run("duplicate name", func(t *testing.T) {
		rec, env := s.do(t, http.MethodPost, "/api/Bank", `{"name":"Acme"}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Bank with name 'Acme' already exists", env.Message)
	})

	t.Run("malformed json", func(t *testing.T) {
		rec, env := s.do(t, http.MethodPost, "/api/Bank", `{"name":`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "The request body is not valid JSON", env.Message)
	})

	t.Run("validation errors listed", func(t *testing.T) {
		rec, env := s.do(t, http.MethodPost, "/api/Transaction", `{"categoryId":0,"typeId":1,"bankId":1,"amount":"0"}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "The request contains invalid fields", env.Message)

		var errs []dto.FieldError
		require.NoError(t, json.Unmarshal(env.Response, &errs))
		fields := make([]string, len(errs))
		for i, e := range errs {
			fields[i] = e.Field
		}
		assert.Contains(t, fields, "categoryId")
		assert.Contains(t, fields, "amount")
		assert.Contains(t, fields, "date")
	})

	t.Run("missing parent", func(t *testing.T) {
		body := `{"categoryId":1,"typeId":1,"bankId":77,"amount":"5","date":"2025-04-03T00:00:00Z"}`
		rec, env := s.do(t, http.MethodPost, "/api/Transaction", body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, env.Status)
	})
}

func TestCRUDHandler_Update(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	rec, env := s.do(t, http.MethodPut, "/api/Bank", `{"id":1,"name":"Acme Savings"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bank updated successfully", env.Message)

	_, env = s.do(t, http.MethodGet, "/api/Bank/1", "", nil)
	var bank dto.Bank
	require.NoError(t, json.Unmarshal(env.Response, &bank))
	assert.Equal(t, "Acme Savings", bank.Name)
	assert.NotNil(t, bank.Modified)

	rec, _ = s.do(t, http.MethodPut, "/api/Bank", `{"name":"No id"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCRUDHandler_Delete(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	rec, env := s.do(t, http.MethodDelete, "/api/Bank/1", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Bank with id 1 cannot be deleted because it is referenced by Transaction", env.Message)

	rec, _ = s.do(t, http.MethodDelete, "/api/Transaction/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = s.do(t, http.MethodDelete, "/api/Bank/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", string(env.Response))

	rec, _ = s.do(t, http.MethodGet, "/api/Bank/1", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCRUDHandler_Search(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	rec, env := s.do(t, http.MethodGet, "/api/Transaction/Search?search=GROCER", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var txs []dto.Transaction
	require.NoError(t, json.Unmarshal(env.Response, &txs))
	assert.Len(t, txs, 1)

	rec, env = s.do(t, http.MethodGet, "/api/Transaction/Search?search=%20", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "The search text cannot be empty", env.Message)
}

func TestCRUDHandler_Find(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	rec, env := s.do(t, http.MethodPost, "/api/Bank/Find", `{"name":"Acme"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var banks []dto.Bank
	require.NoError(t, json.Unmarshal(env.Response, &banks))
	assert.Len(t, banks, 1)

	_, env = s.do(t, http.MethodPost, "/api/Bank/Find", `{}`, nil)
	require.NoError(t, json.Unmarshal(env.Response, &banks))
	assert.Empty(t, banks)
}

func TestCRUDHandler_FaultsAnswer500(t *testing.T) {
	tests := []struct {
		name       string
		production bool
		withTrace  bool
	}{
		{"development includes the trace", false, true},
		{"production hides the trace", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, serverOptions{production: tt.production})
			s.banks.Err = errors.New("connection refused")

			rec, env := s.do(t, http.MethodGet, "/api/Bank/7", "", nil)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.False(t, env.Status)
			assert.Equal(t, "An unexpected error occurred", env.Message)
			if tt.withTrace {
				assert.Contains(t, string(env.Response), "connection refused")
			} else {
				assert.Equal(t, "null", string(env.Response))
			}
		})
	}
}

func TestCRUDHandler_GuardedWrites(t *testing.T) {
	s := newTestServer(t, serverOptions{withAuth: true})

	rec, env := s.do(t, http.MethodPost, "/api/Bank", `{"name":"Northwind"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication is required", env.Message)

	rec, _ = s.do(t, http.MethodGet, "/api/Bank/1", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "reads stay open")

	token, err := s.issuer.Issue("user-1", time.Hour)
	require.NoError(t, err)
	rec, _ = s.do(t, http.MethodPost, "/api/Bank", `{"name":"Northwind"}`, map[string]string{
		echo.HeaderAuthorization: "Bearer " + token,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHTTPErrorHandler_UnknownRoute(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	rec, env := s.do(t, http.MethodGet, "/api/Loan", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Status)
}
