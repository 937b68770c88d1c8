package jarvis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/jarvis/internal/db"
	"github.com/kailas-cloud/jarvis/internal/db/memory"
	dbRedis "github.com/kailas-cloud/jarvis/internal/db/redis"
	"github.com/kailas-cloud/jarvis/internal/domain"
	"github.com/kailas-cloud/jarvis/internal/domain/cart"
	"github.com/kailas-cloud/jarvis/internal/domain/food"
	"github.com/kailas-cloud/jarvis/internal/domain/recommendation"
	catalogrepo "github.com/kailas-cloud/jarvis/internal/repository/catalog"
	cartclient "github.com/kailas-cloud/jarvis/internal/transport/cart"
	chatuc "github.com/kailas-cloud/jarvis/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/jarvis/internal/usecase/health"
	"github.com/kailas-cloud/jarvis/internal/usecase/pipeline"
	reasoninguc "github.com/kailas-cloud/jarvis/internal/usecase/reasoning"
	searchuc "github.com/kailas-cloud/jarvis/internal/usecase/search"
	usageuc "github.com/kailas-cloud/jarvis/internal/usecase/usage"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "jarvis:"
	defaultStageTimeout     = 25 * time.Second
	defaultRatePerMinute    = 10
	defaultCartURL          = "http://localhost:3001"
	defaultCartTimeout      = 5 * time.Second
)

// Internal interfaces, swapped for fakes in tests.
type chatUseCase interface {
	ProcessChat(ctx context.Context, req chatuc.ChatRequest) (recommendation.Response, error)
	AddToCart(ctx context.Context, req chatuc.CartRequest) (cart.Result, error)
	RemoveFromCart(ctx context.Context, req chatuc.CartRequest) (cart.Result, error)
	CartCount(ctx context.Context, userID string) (cart.Result, error)
	Recommend(ctx context.Context, req chatuc.RecommendRequest) ([]food.FoodItem, error)
	Restaurants(ctx context.Context, query, cuisine string) ([]food.Restaurant, error)
}

type catalogSeeder interface {
	Seed(ctx context.Context, restaurants []food.Restaurant, items []food.FoodItem) error
}

// Client is the jarvis SDK entry point.
type Client struct {
	store     db.Store
	catalog   catalogSeeder
	chatSvc   chatUseCase
	healthSvc healthUseCase
	usageSvc  usageUseCase
	obs       *observer
}

// New creates a Client, connects to the store and creates the catalog
// indexes. The provided context bounds the startup work.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix:     defaultKeyPrefix,
		stageTimeout:  defaultStageTimeout,
		ratePerMinute: defaultRatePerMinute,
		cartURL:       defaultCartURL,
		cartTimeout:   defaultCartTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("jarvis: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	c, err := wireClient(ctx, store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case driverMemory:
		return memory.New(), nil
	case driverRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("jarvis: create redis store: %w", err)
		}
		return s, nil
	case "":
		return nil, errors.New("jarvis: store required (use WithRedis or WithMemory)")
	default:
		return nil, fmt.Errorf("jarvis: unknown driver %q", cfg.driver)
	}
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	catalog := catalogrepo.New(store, cfg.keyPrefix)
	if err := catalog.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("jarvis: %w", err)
	}

	var base domain.Engine = noopEngine{}
	if cfg.engine != nil {
		base = &engineAdapter{inner: cfg.engine}
	}
	action := reasoninguc.RateWait
	if cfg.rejectOnLimit {
		action = reasoninguc.RateReject
	}
	engine := reasoninguc.NewEngine(base, reasoninguc.Options{
		Model:         cfg.model,
		Timeout:       cfg.stageTimeout,
		RatePerMinute: cfg.ratePerMinute,
		RateAction:    action,
	})

	searchSvc := searchuc.New(catalog, searchuc.Limits{})
	orchestrator, err := pipeline.NewOrchestrator(engine, pipeline.DefaultStages(), pipeline.SearchTools(searchSvc))
	if err != nil {
		return nil, fmt.Errorf("jarvis: %w", err)
	}

	var checker healthuc.ReasoningChecker
	if hc, ok := cfg.engine.(domain.HealthChecker); ok {
		checker = hc
	}

	return &Client{
		store:     store,
		catalog:   catalog,
		chatSvc:   chatuc.New(orchestrator, cartclient.New(cfg.cartURL, cfg.cartTimeout), searchSvc),
		healthSvc: healthuc.New(store, checker),
		usageSvc:  usageuc.New(nil), // nil = unlimited mode (no budget tracking in SDK)
		obs:       obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks store connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Chat runs a message through the pipeline. Engine failures are not errors:
// the answer then comes from the fallback policy and has Fallback set.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (res ChatResult, err error) {
	start := time.Now()
	defer func() {
		status := statusOK
		switch {
		case err != nil:
			status = statusError
		case res.Fallback:
			status = statusFallback
		}
		c.obs.observeStatus("chat", start, status, err)
	}()

	ctx, usage := domain.NewContextWithUsage(ctx)
	resp, err := c.chatSvc.ProcessChat(ctx, chatuc.ChatRequest{
		Message: req.Message,
		User:    req.User,
		History: req.History,
	})
	if err != nil {
		return ChatResult{}, fmt.Errorf("chat: %w", err)
	}
	c.obs.tokens(usage.TotalTokens())
	return ChatResult{
		Response:        resp,
		ReasoningCalls:  usage.Calls(),
		ReasoningTokens: usage.TotalTokens(),
	}, nil
}

// AddToCart adds quantity units of an item; zero means one.
func (c *Client) AddToCart(ctx context.Context, userID, itemID string, quantity int) (res CartResult, err error) {
	start := time.Now()
	defer func() { c.obs.observeStatus("add_to_cart", start, cartStatus(res, err), err) }()

	res, err = c.chatSvc.AddToCart(ctx, chatuc.CartRequest{ItemID: itemID, UserID: userID, Quantity: quantity})
	if err != nil {
		return CartResult{}, fmt.Errorf("add to cart: %w", err)
	}
	return res, nil
}

// RemoveFromCart removes an item from the user's cart.
func (c *Client) RemoveFromCart(ctx context.Context, userID, itemID string) (res CartResult, err error) {
	start := time.Now()
	defer func() { c.obs.observeStatus("remove_from_cart", start, cartStatus(res, err), err) }()

	res, err = c.chatSvc.RemoveFromCart(ctx, chatuc.CartRequest{ItemID: itemID, UserID: userID})
	if err != nil {
		return CartResult{}, fmt.Errorf("remove from cart: %w", err)
	}
	return res, nil
}

// CartCount returns the number of items in the user's cart.
func (c *Client) CartCount(ctx context.Context, userID string) (res CartResult, err error) {
	start := time.Now()
	defer func() { c.obs.observeStatus("cart_count", start, cartStatus(res, err), err) }()

	res, err = c.chatSvc.CartCount(ctx, userID)
	if err != nil {
		return CartResult{}, fmt.Errorf("cart count: %w", err)
	}
	return res, nil
}

// Recommend searches the catalog directly, without the engine.
func (c *Client) Recommend(ctx context.Context, query string, f *FoodFilter) (items []FoodItem, err error) {
	start := time.Now()
	defer func() { c.obs.observe("recommend", start, err) }()

	req := chatuc.RecommendRequest{Query: query}
	if f != nil {
		req.FoodType, req.Budget, req.Dietary, req.MealType = f.FoodType, f.Budget, f.Dietary, f.MealType
	}
	items, err = c.chatSvc.Recommend(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	return items, nil
}

// Restaurants searches restaurants by name and cuisine.
func (c *Client) Restaurants(ctx context.Context, query, cuisine string) (rests []Restaurant, err error) {
	start := time.Now()
	defer func() { c.obs.observe("restaurants", start, err) }()

	rests, err = c.chatSvc.Restaurants(ctx, query, cuisine)
	if err != nil {
		return nil, fmt.Errorf("restaurants: %w", err)
	}
	return rests, nil
}

// SeedCatalogFile loads a YAML catalog into the store and reports how many
// restaurants and food items it wrote.
func (c *Client) SeedCatalogFile(ctx context.Context, path string) (restaurants, items int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("seed_catalog", start, err) }()

	if strings.TrimSpace(path) == "" {
		return 0, 0, fmt.Errorf("seed catalog: %w: path is required", domain.ErrInvalidInput)
	}
	f, err := catalogrepo.LoadFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("seed catalog: %w", err)
	}
	rs, its := f.Records()
	if err = c.catalog.Seed(ctx, rs, its); err != nil {
		return 0, 0, fmt.Errorf("seed catalog: %w", err)
	}
	return len(rs), len(its), nil
}

func cartStatus(res CartResult, err error) string {
	switch {
	case err != nil:
		return statusError
	case res.Simulated:
		return statusFallback
	default:
		return statusOK
	}
}
