package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AliGanji14/cost-management/internal/log"
	"github.com/AliGanji14/cost-management/internal/middleware/ratelimit"
	"github.com/AliGanji14/cost-management/internal/services"
	"github.com/AliGanji14/cost-management/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	return newTestServerWithLimit(t, 100000)
}

func newTestServerWithLimit(t *testing.T, requestsPerMinute int) *Server {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	limiter := ratelimit.NewLimiter(ratelimit.Config{
		RequestsPerMinute: requestsPerMinute,
		CleanupInterval:   time.Minute,
	})
	t.Cleanup(limiter.Stop)

	return NewServer(":0", store, Services{
		Users:    services.NewUserService(store),
		Taxonomy: services.NewTaxonomyService(store),
		Expenses: services.NewExpenseService(store),
		Budgets:  services.NewBudgetService(store, 2),
	}, limiter, log.New(log.DefaultConfig()))
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for path, want := range map[string]string{
		"/healthz": "ok",
		"/readyz":  "ready",
	} {
		rr := doJSON(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Errorf("%s status = %d, want %d", path, rr.Code, http.StatusOK)
		}
		if rr.Body.String() != want {
			t.Errorf("%s body = %q, want %q", path, rr.Body.String(), want)
		}
	}

	rr := doJSON(t, srv, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want %d", rr.Code, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), "requests_total") {
		t.Errorf("/metrics body missing requests_total: %q", rr.Body.String())
	}
}

func TestUserLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/v1/users",
		`{"username": "ali", "email": "ali@example.com", "credential": "hash"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rr.Code, rr.Body.String())
	}
	if strings.Contains(rr.Body.String(), "credential") {
		t.Errorf("create response leaks credential: %s", rr.Body.String())
	}
	var created userResponse
	decodeBody(t, rr, &created)
	if created.Username != "ali" || !created.Active {
		t.Errorf("created = %+v, want username ali and active", created)
	}

	rr = doJSON(t, srv, http.MethodGet, "/v1/users/1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodPut, "/v1/users/1", `{"active": false}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rr.Code, rr.Body.String())
	}
	var updated userResponse
	decodeBody(t, rr, &updated)
	if updated.Active {
		t.Error("update did not deactivate user")
	}
	if updated.Username != "ali" {
		t.Errorf("update changed username to %q", updated.Username)
	}

	rr = doJSON(t, srv, http.MethodDelete, "/v1/users/1", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	rr = doJSON(t, srv, http.MethodGet, "/v1/users/1", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want %d", rr.Code, http.StatusNotFound)
	}
	rr = doJSON(t, srv, http.MethodDelete, "/v1/users/1", "")
	if rr.Code != http.StatusNoContent {
		t.Errorf("repeat delete status = %d, want %d", rr.Code, http.StatusNoContent)
	}
}

func TestDuplicateUsernameConflicts(t *testing.T) {
	srv := newTestServer(t)

	body := `{"username": "ali", "email": "ali@example.com", "credential": "hash"}`
	if rr := doJSON(t, srv, http.MethodPost, "/v1/users", body); rr.Code != http.StatusCreated {
		t.Fatalf("first create status = %d", rr.Code)
	}

	body = `{"username": "ali", "email": "other@example.com", "credential": "hash"}`
	rr := doJSON(t, srv, http.MethodPost, "/v1/users", body)
	if rr.Code != http.StatusConflict {
		t.Errorf("duplicate create status = %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestCategorySearch(t *testing.T) {
	srv := newTestServer(t)

	for _, name := range []string{"Groceries", "Rent", "Transport"} {
		body := fmt.Sprintf(`{"name": %q}`, name)
		if rr := doJSON(t, srv, http.MethodPost, "/v1/categories", body); rr.Code != http.StatusCreated {
			t.Fatalf("create %s status = %d", name, rr.Code)
		}
	}

	rr := doJSON(t, srv, http.MethodGet, "/v1/categories?q=ent", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("search status = %d", rr.Code)
	}
	var matched []map[string]any
	decodeBody(t, rr, &matched)
	if len(matched) != 1 || matched[0]["name"] != "Rent" {
		t.Errorf("search q=ent = %v, want only Rent", matched)
	}

	rr = doJSON(t, srv, http.MethodGet, "/v1/categories", "")
	var all []map[string]any
	decodeBody(t, rr, &all)
	if len(all) != 3 {
		t.Errorf("unfiltered list length = %d, want 3", len(all))
	}
}

func TestBadRequests(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"malformed json", http.MethodPost, "/v1/users", `{"username": `},
		{"unknown field", http.MethodPost, "/v1/users", `{"username": "a", "nickname": "b"}`},
		{"non-numeric id", http.MethodGet, "/v1/users/abc", ""},
		{"zero id", http.MethodGet, "/v1/users/0", ""},
		{"bad amount", http.MethodPost, "/v1/expenses", `{"user_id": 1, "description": "x", "amount": "abc", "date": "2024-01-01"}`},
		{"bad date", http.MethodPost, "/v1/expenses", `{"user_id": 1, "description": "x", "amount": "1.00", "date": "01/02/2024"}`},
		{"bad as_of", http.MethodGet, "/v1/budgets/1/status?as_of=notadate", ""},
		{"status without user", http.MethodGet, "/v1/budgets/status", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, srv, tt.method, tt.path, tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d (body %s)", rr.Code, http.StatusBadRequest, rr.Body.String())
			}
		})
	}
}

func TestExpenseEndpoints(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/v1/users",
		`{"username": "ali", "email": "ali@example.com", "credential": "hash"}`)
	doJSON(t, srv, http.MethodPost, "/v1/categories", `{"name": "Food"}`)

	rr := doJSON(t, srv, http.MethodPost, "/v1/expenses",
		`{"user_id": 1, "category_id": 1, "description": "groceries", "amount": "12.50", "date": "2024-03-10"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rr.Code, rr.Body.String())
	}
	var created expenseResponse
	decodeBody(t, rr, &created)
	if created.Amount != "12.50" || created.Date != "2024-03-10" {
		t.Errorf("created = %+v, want amount 12.50 on 2024-03-10", created)
	}

	// Referencing a missing user trips the foreign key.
	rr = doJSON(t, srv, http.MethodPost, "/v1/expenses",
		`{"user_id": 99, "description": "ghost", "amount": "1.00", "date": "2024-03-10"}`)
	if rr.Code != http.StatusConflict {
		t.Errorf("missing user status = %d, want %d", rr.Code, http.StatusConflict)
	}

	rr = doJSON(t, srv, http.MethodGet, "/v1/expenses/1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d", rr.Code)
	}
	var detail expenseDetailResponse
	decodeBody(t, rr, &detail)
	if detail.Tags == nil || len(detail.Tags) != 0 {
		t.Errorf("fresh expense tags = %v, want empty list", detail.Tags)
	}

	rr = doJSON(t, srv, http.MethodPut, "/v1/expenses/1",
		`{"amount": "20.00", "clear_category": true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rr.Code, rr.Body.String())
	}
	var updated expenseResponse
	decodeBody(t, rr, &updated)
	if updated.Amount != "20.00" {
		t.Errorf("updated amount = %q, want 20.00", updated.Amount)
	}
	if updated.CategoryID != nil {
		t.Errorf("clear_category left category %d", *updated.CategoryID)
	}
	if updated.Description != "groceries" {
		t.Errorf("partial update changed description to %q", updated.Description)
	}

	rr = doJSON(t, srv, http.MethodGet, "/v1/expenses?user_id=1&q=grocer", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	var list []expenseResponse
	decodeBody(t, rr, &list)
	if len(list) != 1 {
		t.Errorf("filtered list length = %d, want 1", len(list))
	}

	rr = doJSON(t, srv, http.MethodDelete, "/v1/expenses/1", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodGet, "/v1/expenses/1", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestTagAttachment(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/v1/users",
		`{"username": "ali", "email": "ali@example.com", "credential": "hash"}`)
	doJSON(t, srv, http.MethodPost, "/v1/expenses",
		`{"user_id": 1, "description": "team lunch", "amount": "30.00", "date": "2024-03-10"}`)
	doJSON(t, srv, http.MethodPost, "/v1/tags", `{"name": "work", "color": "#0000ff"}`)

	rr := doJSON(t, srv, http.MethodPut, "/v1/expenses/1/tags/1", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("attach status = %d, body %s", rr.Code, rr.Body.String())
	}
	// Attaching twice is a no-op.
	if rr := doJSON(t, srv, http.MethodPut, "/v1/expenses/1/tags/1", ""); rr.Code != http.StatusNoContent {
		t.Errorf("repeat attach status = %d, want %d", rr.Code, http.StatusNoContent)
	}

	rr = doJSON(t, srv, http.MethodPut, "/v1/expenses/1/tags/99", "")
	if rr.Code != http.StatusConflict {
		t.Errorf("attach missing tag status = %d, want %d", rr.Code, http.StatusConflict)
	}

	rr = doJSON(t, srv, http.MethodGet, "/v1/expenses/1", "")
	var detail expenseDetailResponse
	decodeBody(t, rr, &detail)
	if len(detail.Tags) != 1 || detail.Tags[0].Name != "work" {
		t.Errorf("tags = %+v, want single work tag", detail.Tags)
	}

	rr = doJSON(t, srv, http.MethodDelete, "/v1/expenses/1/tags/1", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("detach status = %d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodGet, "/v1/expenses/1", "")
	decodeBody(t, rr, &detail)
	if len(detail.Tags) != 0 {
		t.Errorf("tags after detach = %+v, want none", detail.Tags)
	}
}

func TestBudgetValidationStatuses(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/v1/users",
		`{"username": "ali", "email": "ali@example.com", "credential": "hash"}`)

	rr := doJSON(t, srv, http.MethodPost, "/v1/budgets",
		`{"user_id": 1, "amount": "100.00", "period": "fortnightly", "start_date": "2024-01-01"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("unknown period status = %d, want %d (body %s)",
			rr.Code, http.StatusUnprocessableEntity, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodPost, "/v1/budgets",
		`{"user_id": 1, "amount": "0.00", "period": "monthly", "start_date": "2024-01-01"}`)
	if rr.Code != http.StatusConflict {
		t.Errorf("zero amount status = %d, want %d (body %s)",
			rr.Code, http.StatusConflict, rr.Body.String())
	}
}

func TestBudgetStatusEndpoint(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/v1/users",
		`{"username": "ali", "email": "ali@example.com", "credential": "hash"}`)
	doJSON(t, srv, http.MethodPost, "/v1/expenses",
		`{"user_id": 1, "description": "rent share", "amount": "40.00", "date": "2024-01-05"}`)
	doJSON(t, srv, http.MethodPost, "/v1/expenses",
		`{"user_id": 1, "description": "groceries", "amount": "25.50", "date": "2024-01-20"}`)

	rr := doJSON(t, srv, http.MethodPost, "/v1/budgets",
		`{"user_id": 1, "amount": "100.00", "period": "monthly", "start_date": "2024-01-01"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create budget status = %d, body %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodGet, "/v1/budgets/1/status?as_of=2024-01-15", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status status = %d, body %s", rr.Code, rr.Body.String())
	}
	var status budgetStatusResponse
	decodeBody(t, rr, &status)
	if !status.Active {
		t.Fatal("budget should be active on 2024-01-15")
	}
	if status.Spent != "65.50" || status.Remaining != "34.50" || status.Overrun {
		t.Errorf("status = %+v, want spent 65.50 remaining 34.50 within limit", status)
	}
	if status.WindowStart != "2024-01-01" || status.WindowEnd != "2024-02-01" {
		t.Errorf("window = [%s, %s), want [2024-01-01, 2024-02-01)", status.WindowStart, status.WindowEnd)
	}

	// Before the anchor the budget is dormant and reports no totals.
	rr = doJSON(t, srv, http.MethodGet, "/v1/budgets/1/status?as_of=2023-12-31", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("dormant status = %d", rr.Code)
	}
	decodeBody(t, rr, &status)
	if status.Active {
		t.Error("budget should be inactive before its start date")
	}
	if strings.Contains(rr.Body.String(), "window_start") {
		t.Errorf("inactive status should omit window: %s", rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodGet, "/v1/budgets/99/status?as_of=2024-01-15", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("missing budget status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestAllBudgetStatusEndpoint(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/v1/users",
		`{"username": "ali", "email": "ali@example.com", "credential": "hash"}`)
	doJSON(t, srv, http.MethodPost, "/v1/expenses",
		`{"user_id": 1, "description": "groceries", "amount": "80.00", "date": "2024-01-10"}`)
	doJSON(t, srv, http.MethodPost, "/v1/budgets",
		`{"user_id": 1, "amount": "50.00", "period": "monthly", "start_date": "2024-01-01"}`)
	doJSON(t, srv, http.MethodPost, "/v1/budgets",
		`{"user_id": 1, "amount": "200.00", "period": "monthly", "start_date": "2024-01-01"}`)

	rr := doJSON(t, srv, http.MethodGet, "/v1/budgets/status?user_id=1&as_of=2024-01-15", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var statuses []budgetStatusResponse
	decodeBody(t, rr, &statuses)
	if len(statuses) != 2 {
		t.Fatalf("status count = %d, want 2", len(statuses))
	}
	if !statuses[0].Overrun {
		t.Error("first budget should be overrun at 80.00 spent of 50.00")
	}
	if statuses[1].Overrun {
		t.Error("second budget should be within its 200.00 limit")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPatch, "/v1/users/1", `{}`)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("PATCH status = %d, want %d", rr.Code, http.StatusMethodNotAllowed)
	}
}

func TestRateLimitRejects(t *testing.T) {
	srv := newTestServerWithLimit(t, 2)

	for i := 0; i < 2; i++ {
		if rr := doJSON(t, srv, http.MethodGet, "/healthz", ""); rr.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want %d", i+1, rr.Code, http.StatusOK)
		}
	}

	rr := doJSON(t, srv, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("limited request status = %d, want %d", rr.Code, http.StatusTooManyRequests)
	}
	if rr.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", rr.Header().Get("Retry-After"))
	}
	if !strings.Contains(rr.Body.String(), "rate limit exceeded") {
		t.Errorf("body = %q, want rate limit error", rr.Body.String())
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/healthz", "")
	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}
