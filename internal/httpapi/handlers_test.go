package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Aeomar999/POS-sub000/internal/cache"
	"github.com/Aeomar999/POS-sub000/internal/domain"
	"github.com/Aeomar999/POS-sub000/internal/report"
	"github.com/Aeomar999/POS-sub000/internal/service"
	"github.com/Aeomar999/POS-sub000/internal/store/memory"
)

// newTestAPI builds a full API with an in-memory store, real AuthManager and
// real Service so handler tests exercise the complete request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	repo := memory.NewSeeded()
	engine := report.NewEngine(repo)
	svc := service.New(repo, engine, cache.NoopReportCache{}, time.Minute)
	auth := NewAuthManager("test-secret-key", time.Hour, repo)

	return New(svc, auth, "*")
}

// login authenticates one of the seeded accounts and returns the bearer token.
func login(t *testing.T, handler http.Handler, username string, password string) string {
	t.Helper()

	payload, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d (%s)", rec.Code, rec.Body.String())
	}
	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return body.AccessToken
}

func csrfToken(t *testing.T, handler http.Handler) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/csrf-token", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("csrf token fetch failed: %d", rec.Code)
	}
	var body struct {
		CSRFToken string `json:"csrf_token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode csrf response: %v", err)
	}
	return body.CSRFToken
}

func TestHandleHealth(t *testing.T) {
	handler := newTestAPI(t).Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	handler := newTestAPI(t).Handler()

	payload, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

// failingStaffDirectory simulates a repository outage during login.
type failingStaffDirectory struct{}

func (failingStaffDirectory) GetStaffByUsername(ctx context.Context, username string) (*domain.StaffUser, error) {
	return nil, errors.New("pq: connection refused")
}

func TestHandleLogin_BackendFailureReturnsGeneric500(t *testing.T) {
	repo := memory.NewSeeded()
	engine := report.NewEngine(repo)
	svc := service.New(repo, engine, cache.NoopReportCache{}, time.Minute)
	auth := NewAuthManager("test-secret-key", time.Hour, failingStaffDirectory{})
	handler := New(svc, auth, "*").Handler()

	payload, _ := json.Marshal(map[string]string{"username": "admin", "password": "admin123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for backend failure, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Fatalf("backend error text leaked: %s", rec.Body.String())
	}
}

func TestHandleLogin_RateLimit(t *testing.T) {
	handler := newTestAPI(t).Handler()

	var last int
	for i := 0; i < 7; i++ {
		payload, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "10.1.2.3:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after repeated failures, got %d", last)
	}
}

func TestProducts_RequireAuth(t *testing.T) {
	handler := newTestAPI(t).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestProducts_ListWithValidToken(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := login(t, handler, "sales", "sales123")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var body struct {
		Products []map[string]any `json:"products"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Products) == 0 {
		t.Fatalf("expected seeded products in response")
	}
}

func TestProducts_SalesRoleCannotCreate(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := login(t, handler, "sales", "sales123")
	csrf := csrfToken(t, handler)

	payload, _ := json.Marshal(map[string]any{
		"name": "Forbidden Product", "category": "cctv", "price_cents": 1000,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", csrf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for sales role, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestProducts_ManagerCanCreate(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := login(t, handler, "manager", "manager123")
	csrf := csrfToken(t, handler)

	payload, _ := json.Marshal(map[string]any{
		"name":                "PoE Injector",
		"category":            "networking",
		"price_cents":         159900,
		"stock_quantity":      20,
		"low_stock_threshold": 5,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", csrf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestMutationRejectedWithoutCSRFToken(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := login(t, handler, "manager", "manager123")

	payload, _ := json.Marshal(map[string]any{"name": "X", "category": "cctv", "price_cents": 100})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without CSRF token, got %d", rec.Code)
	}
}

func TestSales_CreateEndToEnd(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := login(t, handler, "sales", "sales123")
	csrf := csrfToken(t, handler)

	payload, _ := json.Marshal(map[string]any{
		"items": []map[string]any{
			{"name": "On-site Survey", "quantity": 1, "unit_price_cents": 250000},
		},
		"customer_name": "Ibu Sari",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", csrf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	var body struct {
		Sale struct {
			ID         string `json:"id"`
			SaleNumber string `json:"sale_number"`
			TotalCents int64  `json:"total_cents"`
		} `json:"sale"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Sale.TotalCents != 250000 {
		t.Fatalf("expected total 250000, got %d", body.Sale.TotalCents)
	}

	// The created sale is readable through the detail endpoint.
	get := httptest.NewRequest(http.MethodGet, "/api/v1/sales/"+body.Sale.ID, nil)
	get.Header.Set("Authorization", "Bearer "+token)
	getRec := httptest.NewRecorder()
	handler.ServeHTTP(getRec, get)
	if getRec.Code != http.StatusOK {
		t.Fatalf("expected 200 reading sale back, got %d", getRec.Code)
	}
}

func TestSales_CreateEmptyCartRejected(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := login(t, handler, "sales", "sales123")
	csrf := csrfToken(t, handler)

	payload := []byte(`{"items":[]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", csrf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty cart, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestReports_SalesRoleForbidden(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := login(t, handler, "sales", "sales123")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/sales?period=week", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for sales role on reports, got %d", rec.Code)
	}
}

func TestReports_CSVExport(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := login(t, handler, "admin", "admin123")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/sales?period=week&format=csv", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv; charset=utf-8" {
		t.Fatalf("expected CSV content type, got %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("section,key,value")) {
		t.Fatalf("expected CSV header row, got %q", rec.Body.String())
	}
}

func TestDashboard_AllRolesAllowed(t *testing.T) {
	handler := newTestAPI(t).Handler()

	for _, account := range []struct{ username, password string }{
		{"admin", "admin123"},
		{"manager", "manager123"},
		{"sales", "sales123"},
	} {
		token := login(t, handler, account.username, account.password)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/stats", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d", account.username, rec.Code)
		}
	}
}

func TestAuditLogs_AdminOnly(t *testing.T) {
	handler := newTestAPI(t).Handler()

	managerToken := login(t, handler, "manager", "manager123")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit-logs", nil)
	req.Header.Set("Authorization", "Bearer "+managerToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for manager on audit logs, got %d", rec.Code)
	}

	adminToken := login(t, handler, "admin", "admin123")
	req = httptest.NewRequest(http.MethodGet, "/api/v1/audit-logs", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin on audit logs, got %d", rec.Code)
	}
}

func TestAuditLogs_ToDateIsInclusive(t *testing.T) {
	handler := newTestAPI(t).Handler()
	adminToken := login(t, handler, "admin", "admin123")
	csrf := csrfToken(t, handler)

	payload, _ := json.Marshal(map[string]any{
		"name": "Patch Panel", "category": "networking", "price_cents": 2500, "stock_quantity": 4,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+adminToken)
	req.Header.Set("X-CSRF-Token", csrf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product: %d (%s)", rec.Code, rec.Body.String())
	}

	// Querying with to set to today must still return today's entries.
	day := time.Now().UTC().Format("2006-01-02")
	req = httptest.NewRequest(http.MethodGet, "/api/v1/audit-logs?from="+day+"&to="+day, nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list audit logs: %d (%s)", rec.Code, rec.Body.String())
	}
	var body struct {
		AuditLogs []domain.AuditLog `json:"audit_logs"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode audit logs: %v", err)
	}
	if len(body.AuditLogs) == 0 {
		t.Fatalf("expected audit entries for an inclusive to date, got none")
	}
}

func TestLowStockRouteNotShadowedByProductID(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := login(t, handler, "sales", "sales123")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/low-stock", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var body struct {
		Products []map[string]any `json:"products"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	for _, product := range body.Products {
		stock := product["stock_quantity"].(float64)
		threshold := product["low_stock_threshold"].(float64)
		if stock > threshold {
			t.Fatalf("product %v not low stock (%v > %v)", product["name"], stock, threshold)
		}
	}
}

func TestUnknownProductReturns404(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := login(t, handler, "sales", "sales123")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/prd-missing", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestParsePositiveLimitCaps(t *testing.T) {
	cases := []struct {
		raw      string
		fallback int
		max      int
		want     int
	}{
		{"", 50, 200, 50},
		{"10", 50, 200, 10},
		{"9999", 50, 200, 200},
		{"-3", 50, 200, 50},
		{"abc", 50, 200, 50},
	}
	for _, tc := range cases {
		if got := parsePositiveLimit(tc.raw, tc.fallback, tc.max); got != tc.want {
			t.Fatalf("parsePositiveLimit(%q)=%d, want %d", tc.raw, got, tc.want)
		}
	}
}

func TestMiddlewareSetsSecurityHeaders(t *testing.T) {
	handler := newTestAPI(t).Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Fatalf("expected %s=%q, got %q", header, want, got)
		}
	}
}

func TestJSONBodyTooLargeRejected(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := login(t, handler, "manager", "manager123")
	csrf := csrfToken(t, handler)

	big := bytes.Repeat([]byte("a"), 1<<20+1024)
	payload := []byte(fmt.Sprintf(`{"name":%q,"category":"cctv","price_cents":100}`, big))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", csrf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized body, got %d", rec.Code)
	}
}
