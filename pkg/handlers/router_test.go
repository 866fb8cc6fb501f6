package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	config "telar-chat-api/configs"
	"telar-chat-api/pkg/services"
	"telar-chat-api/pkg/state"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// immediateScheduler は遅延なしで即座に実行します。
type immediateScheduler struct{}

func (immediateScheduler) After(_ time.Duration, f func()) { f() }

type testServer struct {
	router *gin.Engine
	store  *state.Store

	mu        sync.Mutex
	navigated []string
}

func (s *testServer) navigations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.navigated...)
}

func newTestServer(t *testing.T, apiKey string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Cleanup(func() { isMaintenanceMode.Store(false) })

	cfg := &config.Config{
		Environment:   "test",
		APIKey:        apiKey,
		AdminUsername: "admin",
		AdminPassword: "secret",
	}
	prompt := config.DefaultAssistantPrompt()
	monitoring := services.NewMonitoringService()
	data := services.NewDataService()
	store := state.NewStore(context.Background(), nil, nil)

	ts := &testServer{store: store}
	dispatcher := services.NewDispatcher(services.NewLocalInterpreter(prompt), data, store, prompt, services.DispatcherOptions{
		Navigator: services.NavigatorFunc(func(path string) {
			ts.mu.Lock()
			ts.navigated = append(ts.navigated, path)
			ts.mu.Unlock()
		}),
		Scheduler:  immediateScheduler{},
		Monitoring: monitoring,
	})

	ts.router = NewRouter(Dependencies{
		Config:     cfg,
		Monitoring: monitoring,
		Dispatcher: dispatcher,
		Data:       data,
		Store:      store,
	})
	return ts
}

func (s *testServer) do(method, path, body string, header ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestAPIKeyAuth(t *testing.T) {
	s := newTestServer(t, "k3y")

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/inventory", "").Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/inventory", "", "X-API-KEY", "wrong").Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/v1/inventory", "", "X-API-KEY", "k3y").Code)
	// ヘルスチェックは認証不要
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", "").Code)
}

func TestMaintenanceFlow(t *testing.T) {
	s := newTestServer(t, "")

	bad := `{"username":"admin","password":"nope"}`
	good := `{"username":"admin","password":"secret"}`

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/admin/maintenance/start", `{}`).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/v1/admin/maintenance/start", bad).Code)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/v1/admin/maintenance/start", good).Code)
	assert.Equal(t, http.StatusServiceUnavailable, s.do(http.MethodGet, "/api/v1/inventory", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, s.do(http.MethodGet, "/health", "").Code)

	w := s.do(http.MethodGet, "/api/v1/admin/health-status", "")
	assert.Equal(t, true, decode(t, w)["isMaintenanceMode"])

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/v1/admin/maintenance/stop", good).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/v1/inventory", "").Code)
}

func TestAssistantMessages(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(http.MethodPost, "/api/v1/assistant/messages", `{"message":"hola"}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["message"].(map[string]any)["content"])

	w = s.do(http.MethodGet, "/api/v1/assistant/messages", "")
	body = decode(t, w)
	assert.Len(t, body["data"], 2)
	assert.Equal(t, false, body["typing"])

	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/api/v1/assistant/messages", "").Code)
	assert.Empty(t, s.store.Messages())
}

func TestAssistantMessages_BadRequest(t *testing.T) {
	s := newTestServer(t, "")

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/assistant/messages", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/assistant/messages", `{"message":"   "}`).Code)
	assert.Empty(t, s.store.Messages())
}

func TestAssistantMessages_FilterNavigates(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(http.MethodPost, "/api/v1/assistant/messages", `{"message":"camisa XL"}`)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "camisa XL", s.store.InventoryFilter())
	assert.Equal(t, []string{"/dashboard/inventory"}, s.navigations())
	assert.Equal(t, "/dashboard/inventory", s.store.Snapshot().CurrentPage)
}

func TestAssistantClassify(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(http.MethodPost, "/api/v1/assistant/classify", `{"message":"llévame a inventario"}`)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "/dashboard/inventory", data["destination"].(map[string]any)["path"])
	assert.Contains(t, data, "scores")
}

func TestInventory(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(http.MethodGet, "/api/v1/inventory?gender=Hombre", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["count"])

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/inventory?stock=muchos", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/inventory?price=caro", "").Code)
}

func TestSalesAndMetrics(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(http.MethodGet, "/api/v1/sales?start=2025-11-05&end=2025-11-06", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decode(t, w)["count"])

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/sales?start=2025-11-06&end=2025-11-01", "").Code)

	w = s.do(http.MethodGet, "/api/v1/metrics/business", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.InDelta(t, 7268.15, data["totalSales"], 1e-9)
}

func TestReports(t *testing.T) {
	s := newTestServer(t, "")

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/reports/forecast", "").Code)

	w := s.do(http.MethodGet, "/api/v1/reports/sales", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "sales", body["type"])
	assert.NotEmpty(t, body["data"])
}

func TestCharts(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(http.MethodPost, "/api/v1/charts", `{"text":"gráfica circular por región"}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "pie", body["request"].(map[string]any)["type"])
	assert.Len(t, body["data"].(map[string]any)["labels"], 5)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/charts", `{}`).Code)
}

func TestState(t *testing.T) {
	s := newTestServer(t, "")

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPatch, "/api/v1/state", `{"theme":"sepia"}`).Code)

	w := s.do(http.MethodPatch, "/api/v1/state", `{"sidebarOpen":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["data"].(map[string]any)["sidebarOpen"])

	w = s.do(http.MethodPost, "/api/v1/state/theme/toggle", "")
	assert.Equal(t, "dark", decode(t, w)["theme"])

	w = s.do(http.MethodGet, "/api/v1/state", "")
	assert.Equal(t, "dark", decode(t, w)["data"].(map[string]any)["theme"])
}

func TestMonitoringEndpoints(t *testing.T) {
	s := newTestServer(t, "")
	s.do(http.MethodGet, "/api/v1/inventory", "")

	w := s.do(http.MethodGet, "/api/v1/monitoring/logs?period=1h", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "telar_http_requests_total")
}
