package jarvis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// stageEngine answers per stage and records every instruction.
type stageEngine struct {
	mu      sync.Mutex
	replies map[string]string
	err     error
	seen    map[string]string
}

func (e *stageEngine) Invoke(_ context.Context, req ReasoningRequest) (ReasoningResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.seen == nil {
		e.seen = make(map[string]string)
	}
	e.seen[req.Stage] = req.Instruction
	if e.err != nil {
		return ReasoningResult{}, e.err
	}
	return ReasoningResult{Content: e.replies[req.Stage], PromptTokens: 20, CompletionTokens: 5, TotalTokens: 25}, nil
}

func catalogPath(t *testing.T) string {
	t.Helper()
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "data", "catalog.yaml")
}

func newCartServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/cart/add":
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/count"):
			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprint(w, `{"count":3}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, e Engine, opts ...Option) *Client {
	t.Helper()
	all := append([]Option{
		WithMemory(),
		WithEngine(e, "test-model"),
		WithRateLimit(600, false),
		WithStageTimeout(2 * time.Second),
	}, opts...)
	c, err := New(context.Background(), all...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(c.Close)
	if _, _, err := c.SeedCatalogFile(context.Background(), catalogPath(t)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return c
}

func TestNew_NoStore(t *testing.T) {
	if _, err := New(context.Background()); err == nil {
		t.Fatal("expected error when no store is configured")
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	if _, err := createStore(&clientConfig{driver: "mongo"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestNoopEngine(t *testing.T) {
	_, err := noopEngine{}.Invoke(context.Background(), domainRequest("intent"))
	if !errors.Is(err, ErrReasoningProviderError) {
		t.Fatalf("got %v, want ErrReasoningProviderError", err)
	}
}

func TestEngineAdapter(t *testing.T) {
	e := &stageEngine{replies: map[string]string{"intent": `{"foodType":"pizza"}`}}
	res, err := (&engineAdapter{inner: e}).Invoke(context.Background(), domainRequest("intent"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Content != `{"foodType":"pizza"}` || res.TotalTokens != 25 || res.PromptTokens != 20 {
		t.Errorf("result = %+v", res)
	}

	e.err = errors.New("provider down")
	if _, err := (&engineAdapter{inner: e}).Invoke(context.Background(), domainRequest("intent")); err == nil ||
		!strings.Contains(err.Error(), "invoke intent") {
		t.Errorf("error = %v", err)
	}
}

func TestChat_EndToEnd(t *testing.T) {
	e := &stageEngine{replies: map[string]string{
		"intent":     `{"foodType":"curry","budget":"medium","preferences":[]}`,
		"discovery":  "Three curries from Spice Garden fit.",
		"evaluation": "Chana Masala is the best value.",
		"recommendation": "```json\n" + `{"message":"Try these curries, Ann!","recommendations":[` +
			`{"id":"in2","name":"Chana Masala","price":12.49,"restaurant":{"name":"Spice Garden Indian","rating":4.7}}],` +
			`"actionRequired":{"type":"add_to_cart","message":"Add it?","item_id":"in2"}}` + "\n```",
	}}
	c := newTestClient(t, e)

	res, err := c.Chat(context.Background(), ChatRequest{
		Message: "any curry tonight?",
		User:    UserContext{ID: "u1", Name: "Ann"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Fallback {
		t.Fatalf("unexpected fallback: %+v", res.Response)
	}
	if res.Message != "Try these curries, Ann!" || len(res.Recommendations) != 1 {
		t.Errorf("response = %+v", res.Response)
	}
	if res.ActionRequired == nil || res.ActionRequired.ItemID != "in2" {
		t.Errorf("action = %+v", res.ActionRequired)
	}
	if res.ReasoningCalls != 4 || res.ReasoningTokens != 100 {
		t.Errorf("usage = %d calls, %d tokens", res.ReasoningCalls, res.ReasoningTokens)
	}
	if !strings.Contains(e.seen["discovery"], "Chana Masala") {
		t.Error("discovery instruction should carry the catalog search results")
	}
	if strings.Contains(e.seen["discovery"], "Margherita") {
		t.Error("pizza leaked into a curry search")
	}
}

func TestChat_EngineDownFallsBack(t *testing.T) {
	c := newTestClient(t, &stageEngine{err: errors.New("503 service unavailable")})

	res, err := c.Chat(context.Background(), ChatRequest{
		Message: "I want pizza",
		User:    UserContext{ID: "u1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Fallback || len(res.Recommendations) == 0 {
		t.Fatalf("expected keyword fallback, got %+v", res.Response)
	}
	if !strings.Contains(strings.ToLower(res.Recommendations[0].Name), "pizza") {
		t.Errorf("first fallback dish = %q", res.Recommendations[0].Name)
	}
}

func TestChat_NoEngine(t *testing.T) {
	c, err := New(context.Background(), WithMemory())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	res, err := c.Chat(context.Background(), ChatRequest{Message: "hello", User: UserContext{ID: "u1"}})
	if err != nil || !res.Fallback || res.ReasoningCalls != 0 {
		t.Fatalf("got %+v, %v", res, err)
	}
}

func TestChat_InvalidInput(t *testing.T) {
	c := newTestClient(t, &stageEngine{})
	_, err := c.Chat(context.Background(), ChatRequest{Message: " ", User: UserContext{ID: "u1"}})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
}

func TestRecommendAndRestaurants(t *testing.T) {
	c := newTestClient(t, &stageEngine{})
	ctx := context.Background()

	items, err := c.Recommend(ctx, "", &FoodFilter{FoodType: "curry", Budget: "low"})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(items) != 1 || items[0].ID != "in2" {
		t.Errorf("low-budget curry = %+v", items)
	}
	if items[0].Restaurant.Name != "Spice Garden Indian" {
		t.Errorf("restaurant join = %+v", items[0].Restaurant)
	}

	if _, err := c.Recommend(ctx, "", &FoodFilter{Budget: "free"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad budget: got %v", err)
	}

	rests, err := c.Restaurants(ctx, "", "japanese")
	if err != nil || len(rests) != 1 || rests[0].ID != "rest4" {
		t.Errorf("japanese restaurants = %+v, %v", rests, err)
	}
}

func TestCart(t *testing.T) {
	srv := newCartServer(t)
	c := newTestClient(t, &stageEngine{}, WithCartService(srv.URL, time.Second))
	ctx := context.Background()

	res, err := c.AddToCart(ctx, "u1", "in2", 0)
	if err != nil || !res.Success || res.Simulated {
		t.Fatalf("add = %+v, %v", res, err)
	}
	if res.Count != 4 {
		t.Errorf("count after add = %d, want 3+1", res.Count)
	}

	res, err = c.CartCount(ctx, "u1")
	if err != nil || res.Count != 3 {
		t.Errorf("count = %+v, %v", res, err)
	}

	if _, err := c.AddToCart(ctx, "", "in2", 1); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("missing user: got %v", err)
	}
}

func TestCart_Unreachable(t *testing.T) {
	srv := newCartServer(t)
	url := srv.URL
	srv.Close()

	c := newTestClient(t, &stageEngine{}, WithCartService(url, 200*time.Millisecond))
	res, err := c.AddToCart(context.Background(), "u1", "in2", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success || !res.Simulated {
		t.Errorf("expected simulated success, got %+v", res)
	}
}

func TestHealthAndUsage(t *testing.T) {
	c := newTestClient(t, &stageEngine{})
	ctx := context.Background()

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	h := c.Health(ctx)
	if h.Status != "ok" || h.Checks["database"] != "ok" {
		t.Errorf("health = %+v", h)
	}
	if _, ok := h.Checks["reasoning"]; ok {
		t.Error("engine without HealthCheck should not be probed")
	}

	u := c.Usage(ctx, PeriodMonth)
	if u.Period != PeriodMonth || u.Budget.TokensLimit != 0 || u.Budget.IsExhausted {
		t.Errorf("usage = %+v", u)
	}
	if !u.PeriodEnd.After(u.PeriodStart) {
		t.Errorf("period window = %s..%s", u.PeriodStart, u.PeriodEnd)
	}
}

func TestSeedCatalogFile_Errors(t *testing.T) {
	c := newTestClient(t, &stageEngine{})
	if _, _, err := c.SeedCatalogFile(context.Background(), ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty path: got %v", err)
	}
	if _, _, err := c.SeedCatalogFile(context.Background(), "/does/not/exist.yaml"); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestObserver_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := newTestClient(t, &stageEngine{err: errors.New("boom")},
		WithPrometheus(reg),
		WithLogger(slog.New(slog.DiscardHandler)),
	)

	_, _ = c.Chat(context.Background(), ChatRequest{Message: "pizza", User: UserContext{ID: "u1"}})
	_, _ = c.Chat(context.Background(), ChatRequest{Message: "", User: UserContext{ID: "u1"}})

	ops := c.obs.metrics.operations
	if got := testutil.ToFloat64(ops.WithLabelValues("chat", statusFallback)); got != 1 {
		t.Errorf("chat fallback = %v, want 1", got)
	}
	if got := testutil.ToFloat64(ops.WithLabelValues("chat", statusError)); got != 1 {
		t.Errorf("chat error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(ops.WithLabelValues("seed_catalog", statusOK)); got != 1 {
		t.Errorf("seed ok = %v, want 1", got)
	}
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := newObserver(nil, reg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("second observer: %v", err)
	}
	if first.metrics.operations != second.metrics.operations {
		t.Error("second observer should reuse the registered counter")
	}
}

func TestObserver_Nil(t *testing.T) {
	var o *observer
	o.observe("chat", time.Now(), nil)
	o.tokens(10)
}
