package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/electroitzone/report-dashboard/backend-go/internal/config"
	"github.com/electroitzone/report-dashboard/backend-go/internal/domain"
	"github.com/electroitzone/report-dashboard/backend-go/internal/report"
	"github.com/electroitzone/report-dashboard/backend-go/internal/repository"
	"github.com/electroitzone/report-dashboard/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubGateway struct {
	execute func(procedure string, params domain.Params) (*domain.RecordsetResult, error)
	raw     func(query string, params domain.Params) (*domain.RecordsetResult, error)
	calls   []string
}

func (g *stubGateway) Execute(_ context.Context, procedure string, params domain.Params) (*domain.RecordsetResult, error) {
	g.calls = append(g.calls, procedure)
	return g.execute(procedure, params)
}

func (g *stubGateway) ExecuteRaw(_ context.Context, query string, params domain.Params) (*domain.RecordsetResult, error) {
	g.calls = append(g.calls, query)
	return g.raw(query, params)
}

func (g *stubGateway) DashboardInfo(context.Context) (*domain.DashboardInfo, error) {
	return &domain.DashboardInfo{Database: "ElectronicStore", TableCount: 12}, nil
}

func (g *stubGateway) Connected() bool { return true }

func (g *stubGateway) Close() error { return nil }

func newTestRouter(gw repository.ProcedureGateway, authCfg config.AuthConfig, queryEnabled bool) *gin.Engine {
	services := &Services{
		Store:   service.NewStoreService(gw, "Electronic Store", "ElectronicStore"),
		Reports: service.NewReportService(gw, report.Default()),
		Auth:    service.NewAuthService(gw, "proc_logindone", authCfg),
	}
	return NewRouter(services, Options{
		AllowedOrigins: []string{"https://report.electroitzone.com"},
		MaxBodyBytes:   1 << 10,
		QueryEnabled:   queryEnabled,
	})
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func rowsResult(cols []string, rows ...[]any) *domain.RecordsetResult {
	rs := domain.NewRecordset(cols, rows...)
	return &domain.RecordsetResult{Recordsets: []domain.Recordset{rs}, RowsAffected: []int64{int64(rs.Len())}}
}

func TestHealthAndStore(t *testing.T) {
	r := newTestRouter(&stubGateway{}, config.AuthConfig{}, true)

	w := doJSON(t, r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["ok"])
	assert.Contains(t, body, "uptime")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = doJSON(t, r, http.MethodGet, "/api/store", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"store": "Electronic Store", "database": "ElectronicStore", "status": "connected"}, decode(t, w))
}

func TestDisconnectedStore(t *testing.T) {
	r := newTestRouter(repository.NewUnavailableGateway(), config.AuthConfig{}, true)

	w := doJSON(t, r, http.MethodGet, "/api/store", nil)
	assert.Equal(t, "disconnected", decode(t, w)["status"])

	w = doJSON(t, r, http.MethodPost, "/api/exec", map[string]any{"procedure": "proc_stock_report"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Electronic Store database is not connected", decode(t, w)["error"])

	w = doJSON(t, r, http.MethodGet, "/api/dashboard", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/reports/stock_report/run", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestExec(t *testing.T) {
	gw := &stubGateway{execute: func(procedure string, params domain.Params) (*domain.RecordsetResult, error) {
		if procedure == "proc_broken" {
			return nil, &domain.ProcedureExecutionError{Message: "Failed to execute stored procedure", Details: "Invalid object name 'tb_X'."}
		}
		return rowsResult([]string{"ITEM", "QTY"}, []any{"TV", params["qty"]}), nil
	}}
	r := newTestRouter(gw, config.AuthConfig{}, true)

	w := doJSON(t, r, http.MethodPost, "/api/exec", map[string]any{"params": map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "procedure is required", decode(t, w)["error"])
	assert.Empty(t, gw.calls)

	w = doJSON(t, r, http.MethodPost, "/api/exec", map[string]any{"procedure": "proc_items", "params": map[string]any{"qty": 3}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"recordsets":[[{"ITEM":"TV","QTY":3}]],"rowsAffected":[1]}`, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/exec", map[string]any{"procedure": "proc_broken"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, map[string]any{"error": "Failed to execute stored procedure", "details": "Invalid object name 'tb_X'."}, decode(t, w))
}

func TestExecRejectsBadBodies(t *testing.T) {
	r := newTestRouter(&stubGateway{}, config.AuthConfig{}, true)

	req := httptest.NewRequest(http.MethodPost, "/api/exec", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	big := map[string]any{"procedure": "proc_x", "params": map[string]any{"blob": strings.Repeat("x", 2048)}}
	w = doJSON(t, r, http.MethodPost, "/api/exec", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestQuery(t *testing.T) {
	gw := &stubGateway{raw: func(query string, params domain.Params) (*domain.RecordsetResult, error) {
		return rowsResult([]string{"N"}, []any{1}), nil
	}}

	r := newTestRouter(gw, config.AuthConfig{}, true)
	w := doJSON(t, r, http.MethodPost, "/api/query", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "query is required", decode(t, w)["error"])

	w = doJSON(t, r, http.MethodPost, "/api/query", map[string]any{"query": "SELECT 1 AS N"})
	assert.Equal(t, http.StatusOK, w.Code)

	r = newTestRouter(gw, config.AuthConfig{}, false)
	w = doJSON(t, r, http.MethodPost, "/api/query", map[string]any{"query": "SELECT 1 AS N"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRunReport(t *testing.T) {
	var got domain.Params
	gw := &stubGateway{execute: func(procedure string, params domain.Params) (*domain.RecordsetResult, error) {
		got = params
		return rowsResult([]string{"EMP_NAME", "PRESENT_DAYS"}, []any{"ASHA", 22}), nil
	}}
	r := newTestRouter(gw, config.AuthConfig{}, true)

	w := doJSON(t, r, http.MethodPost, "/api/reports/hr_report/run", map[string]any{"month": 2, "year": 2024})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.Params{"month1": 2, "year1": 2024}, got)

	body := decode(t, w)
	assert.Equal(t, "hr_report", body["report"])
	assert.Len(t, body["tables"], 1)

	w = doJSON(t, r, http.MethodPost, "/api/reports/hr_report/run", map[string]any{"month": 13})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/reports/nope/run", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "unsupported report: nope", decode(t, w)["error"])
}

func TestExportReport(t *testing.T) {
	gw := &stubGateway{execute: func(string, domain.Params) (*domain.RecordsetResult, error) {
		return rowsResult([]string{"BRAND", "STOCK_QTY"}, []any{"SONY", 4}), nil
	}}
	r := newTestRouter(gw, config.AuthConfig{}, true)

	w := doJSON(t, r, http.MethodPost, "/api/reports/stock_report/export", map[string]any{"kind": "tables", "format": "csv"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "SONY,4")

	w = doJSON(t, r, http.MethodPost, "/api/reports/stock_report/export", map[string]any{"kind": "charts"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "No data available for export", decode(t, w)["error"])

	w = doJSON(t, r, http.MethodPost, "/api/reports/stock_report/export", map[string]any{"format": "pdf"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDropdownsAndTodos(t *testing.T) {
	gw := &stubGateway{
		execute: func(string, domain.Params) (*domain.RecordsetResult, error) {
			brands := domain.NewRecordset([]string{"BRAND"}, []any{"SONY"})
			customers := domain.NewRecordset([]string{"CLIENTUNIQUE"}, []any{"ACME"})
			return &domain.RecordsetResult{Recordsets: []domain.Recordset{brands, customers}}, nil
		},
		raw: func(query string, params domain.Params) (*domain.RecordsetResult, error) {
			return rowsResult([]string{"TODONO", "REMARK"}, []any{params["todono"], "called"}), nil
		},
	}
	r := newTestRouter(gw, config.AuthConfig{}, true)

	w := doJSON(t, r, http.MethodGet, "/api/dropdowns", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"brands":["SONY"],"customers":["ACME"]}`, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/dropdowns?refresh=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"brands":["SONY"],"customers":["ACME"]}`, w.Body.String())
	assert.Len(t, gw.calls, 2)

	w = doJSON(t, r, http.MethodGet, "/api/todos/T-9/transactions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"TODONO":"T-9"`)
}

func loginStub() *stubGateway {
	return &stubGateway{execute: func(procedure string, params domain.Params) (*domain.RecordsetResult, error) {
		if procedure == "proc_logindone" {
			if params["usrname"] == "ravi" && params["passw"] == "secret" {
				return rowsResult([]string{"username"}, []any{"ravi"}), nil
			}
			return rowsResult([]string{"username"}), nil
		}
		return rowsResult([]string{"A"}, []any{1}), nil
	}}
}

func TestLoginWithoutAuth(t *testing.T) {
	r := newTestRouter(loginStub(), config.AuthConfig{}, true)

	w := doJSON(t, r, http.MethodPost, "/api/login", map[string]any{"username": "ravi", "password": "secret"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"username": "ravi", "isAuthenticated": true}, decode(t, w))

	w = doJSON(t, r, http.MethodPost, "/api/login", map[string]any{"username": "ravi", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid username or password", decode(t, w)["error"])

	w = doJSON(t, r, http.MethodPost, "/api/exec", map[string]any{"procedure": "proc_x"})
	assert.Equal(t, http.StatusOK, w.Code, "open when auth is disabled")
}

func TestLoginFlowWithAuth(t *testing.T) {
	r := newTestRouter(loginStub(), config.AuthConfig{Enabled: true, JWTSecret: "s3cret", TokenTTLMinutes: 5}, true)

	w := doJSON(t, r, http.MethodPost, "/api/exec", map[string]any{"procedure": "proc_x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/store", nil)
	assert.Equal(t, http.StatusOK, w.Code, "store status stays public")

	w = doJSON(t, r, http.MethodPost, "/api/login", map[string]any{"username": "ravi", "password": "secret"})
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := decode(t, w)["token"].(string)
	require.NotEmpty(t, token)

	w = doJSON(t, r, http.MethodPost, "/api/exec", map[string]any{"procedure": "proc_x"}, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/exec", map[string]any{"procedure": "proc_x"}, "Authorization", "Bearer "+token+"x")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCORS(t *testing.T) {
	r := newTestRouter(&stubGateway{}, config.AuthConfig{}, true)

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/exec", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", "POST")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := preflight("https://report.electroitzone.com")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://report.electroitzone.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = preflight("http://localhost:5174")
	assert.Equal(t, "http://localhost:5174", w.Header().Get("Access-Control-Allow-Origin"))

	w = preflight("https://localhost:5173")
	assert.Equal(t, "https://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	w = preflight("ftp://localhost:21")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = preflight("https://evil.example.com")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, all := normalizeAllowedOrigins([]string{" http://a.com/ ,http://b.com", ""})
	assert.Equal(t, []string{"http://a.com", "http://b.com"}, origins)
	assert.False(t, all)

	_, all = normalizeAllowedOrigins([]string{"*"})
	assert.True(t, all)
}
