package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jarvis/internal/domain"
	"github.com/kailas-cloud/jarvis/internal/domain/cart"
	"github.com/kailas-cloud/jarvis/internal/domain/food"
	"github.com/kailas-cloud/jarvis/internal/domain/recommendation"
	chatuc "github.com/kailas-cloud/jarvis/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/jarvis/internal/usecase/health"
	"github.com/kailas-cloud/jarvis/internal/usecase/pipeline"
	usageuc "github.com/kailas-cloud/jarvis/internal/usecase/usage"
)

// --- Mocks ---

type stubRunner struct{}

func (stubRunner) Run(ctx context.Context, req pipeline.Request) recommendation.Response {
	domain.UsageFromContext(ctx).Add(120)
	return recommendation.Response{
		Message:         "Hi " + req.User.DisplayName(),
		Recommendations: []recommendation.Recommendation{{ID: "pz1", Name: "Pizza", Price: 9.5}},
	}
}

type stubCart struct{ err error }

func (c stubCart) Add(_ context.Context, item cart.Item) (cart.Result, error) {
	return cart.Result{Success: true, Simulated: true, Count: 2 + item.Quantity}, c.err
}

func (c stubCart) Remove(context.Context, cart.Item) (cart.Result, error) {
	return cart.Result{Success: true}, c.err
}

func (c stubCart) Count(context.Context, string) (cart.Result, error) {
	return cart.Result{Success: true, Count: 4}, c.err
}

type stubSearcher struct{}

func (stubSearcher) SearchFood(_ context.Context, q string, f *food.SearchFilter) []food.FoodItem {
	return []food.FoodItem{{ID: "x", Name: q + "/" + string(f.Budget)}}
}

func (stubSearcher) SearchRestaurants(_ context.Context, q, cuisine string) []food.Restaurant {
	return []food.Restaurant{{RestaurantRef: food.RestaurantRef{Name: q + "/" + cuisine}}}
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newTestRouter(t *testing.T, c stubCart, dbErr error) http.Handler {
	t.Helper()
	srv := NewServer(
		chatuc.New(stubRunner{}, c, stubSearcher{}),
		usageuc.New(nil),
		healthuc.New(stubPinger{err: dbErr}, nil),
		zap.NewNop(),
	)
	r := chi.NewRouter()
	srv.Register(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	if body != "" {
		rdr = bytes.NewReader([]byte(body))
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return e
}

// --- Tests ---

func TestProcessChat(t *testing.T) {
	h := newTestRouter(t, stubCart{}, nil)
	rr := do(t, h, http.MethodPost, "/process-chat",
		`{"message":"pizza","user_context":{"id":"u1","name":"Ann"},"conversation_history":[{"role":"user","content":"hi"}]}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	var resp recommendation.Response
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Message != "Hi Ann" || len(resp.Recommendations) != 1 {
		t.Errorf("response = %+v", resp)
	}
	if resp.UserContext == nil || resp.UserContext.ID != "u1" || resp.ProcessedAt.IsZero() {
		t.Errorf("user context / processed_at missing: %+v", resp)
	}
	if rr.Header().Get("X-Reasoning-Tokens") != "120" || rr.Header().Get("X-Reasoning-Calls") != "1" {
		t.Errorf("usage headers = %v", rr.Header())
	}
}

func TestProcessChat_InvalidInput(t *testing.T) {
	h := newTestRouter(t, stubCart{}, nil)
	tests := []struct {
		name string
		body string
		code ErrorCode
	}{
		{"malformed json", `{"message":`, ErrorCodeBadRequest},
		{"empty message", `{"message":"  ","user_context":{"id":"u1"}}`, ErrorCodeValidationFailed},
		{"missing user", `{"message":"pizza"}`, ErrorCodeValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/process-chat", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", rr.Code)
			}
			if e := decodeError(t, rr); e.Code != tt.code {
				t.Errorf("code = %s, want %s", e.Code, tt.code)
			}
		})
	}
}

func TestProcessChat_ValidationMessageIsShown(t *testing.T) {
	h := newTestRouter(t, stubCart{}, nil)
	rr := do(t, h, http.MethodPost, "/process-chat", `{"message":"","user_context":{"id":"u1"}}`)
	if e := decodeError(t, rr); e.Message != "message is required" {
		t.Errorf("message = %q", e.Message)
	}
}

func TestCartEndpoints(t *testing.T) {
	h := newTestRouter(t, stubCart{}, nil)

	rr := do(t, h, http.MethodPost, "/add-to-cart", `{"item_id":"pz1","user_id":"u1","quantity":3}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("add status = %d", rr.Code)
	}
	var res cart.Result
	_ = json.NewDecoder(rr.Body).Decode(&res)
	if !res.Success || !res.Simulated || res.Count != 5 {
		t.Errorf("add result = %+v", res)
	}

	if rr := do(t, h, http.MethodPost, "/add-to-cart", `{"user_id":"u1"}`); rr.Code != http.StatusBadRequest {
		t.Errorf("missing item: status = %d", rr.Code)
	}
	if rr := do(t, h, http.MethodPost, "/remove-from-cart", `{"item_id":"pz1","user_id":"u1"}`); rr.Code != http.StatusOK {
		t.Errorf("remove: status = %d", rr.Code)
	}

	rr = do(t, h, http.MethodGet, "/cart/u1/count", "")
	_ = json.NewDecoder(rr.Body).Decode(&res)
	if rr.Code != http.StatusOK || res.Count != 4 {
		t.Errorf("count: %d %+v", rr.Code, res)
	}
}

func TestCart_UpstreamError(t *testing.T) {
	h := newTestRouter(t, stubCart{err: errors.Join(errors.New("dial"), domain.ErrUpstreamUnavailable)}, nil)
	rr := do(t, h, http.MethodPost, "/add-to-cart", `{"item_id":"pz1","user_id":"u1"}`)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != ErrorCodeUpstream || strings.Contains(e.Message, "dial") {
		t.Errorf("error = %+v", e)
	}
}

func TestRecommendations(t *testing.T) {
	h := newTestRouter(t, stubCart{}, nil)
	rr := do(t, h, http.MethodPost, "/recommendations", `{"query":"curry","filter":{"budget":"low"}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp FoodListResponse
	_ = json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Total != 1 || resp.Items[0].Name != "curry/low" {
		t.Errorf("response = %+v", resp)
	}

	if rr := do(t, h, http.MethodPost, "/recommendations", `{"filter":{"budget":"cheap"}}`); rr.Code != http.StatusBadRequest {
		t.Errorf("bad budget: status = %d", rr.Code)
	}
}

func TestRestaurants(t *testing.T) {
	h := newTestRouter(t, stubCart{}, nil)
	rr := do(t, h, http.MethodGet, "/restaurants?q=zen&cuisine=japanese", "")
	var resp RestaurantListResponse
	_ = json.NewDecoder(rr.Body).Decode(&resp)
	if rr.Code != http.StatusOK || resp.Items[0].Name != "zen/japanese" {
		t.Errorf("status %d response %+v", rr.Code, resp)
	}
}

func TestGetUsage(t *testing.T) {
	h := newTestRouter(t, stubCart{}, nil)

	rr := do(t, h, http.MethodGet, "/usage?period=month", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp UsageResponse
	_ = json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Period != "month" || resp.Budget.IsExhausted || !resp.PeriodEndAt.After(resp.PeriodStartAt) {
		t.Errorf("response = %+v", resp)
	}

	if rr := do(t, h, http.MethodGet, "/usage?period=year", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("bad period: status = %d", rr.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	rr := do(t, newTestRouter(t, stubCart{}, nil), http.MethodGet, "/health", "")
	var resp HealthResponse
	_ = json.NewDecoder(rr.Body).Decode(&resp)
	if rr.Code != http.StatusOK || resp.Status != "ok" || resp.Checks["database"] != "ok" {
		t.Errorf("healthy: %d %+v", rr.Code, resp)
	}

	rr = do(t, newTestRouter(t, stubCart{}, errors.New("down")), http.MethodGet, "/health", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy status = %d", rr.Code)
	}
}

func TestHandleDomainError_Internal(t *testing.T) {
	srv := NewServer(nil, nil, nil, zap.NewNop())
	rr := httptest.NewRecorder()
	srv.handleDomainError(rr, errors.New("secret connection string"))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	if e := decodeError(t, rr); e.Message != "internal error" {
		t.Errorf("internal details leaked: %q", e.Message)
	}
}
