// Package cart is the HTTP client for the cart service. When the service
// cannot be reached, calls report a simulated success instead of failing.
package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jarvis/internal/domain/cart"
	"github.com/kailas-cloud/jarvis/internal/logger"
	"github.com/kailas-cloud/jarvis/internal/metrics"
)

// simulatedCount is reported as the cart size when the service is down.
const simulatedCount = 2

// Client calls the cart service REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client. timeout bounds each request.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type lineRequest struct {
	UserID   string `json:"userId"`
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// Add puts quantity units of an item into the user's cart. The result
// carries the cart size after the change.
func (c *Client) Add(ctx context.Context, item cart.Item) (cart.Result, error) {
	status, err := c.send(ctx, http.MethodPost, "/api/cart/add", item)
	if err != nil {
		if ctx.Err() != nil {
			return cart.Result{}, fmt.Errorf("cart add: %w", ctx.Err())
		}
		c.simulated(ctx, "add", err)
		return cart.Result{
			Success:   true,
			Simulated: true,
			Message:   fmt.Sprintf("Added %dx item %s to cart for user %s", item.Quantity, item.ItemID, item.UserID),
			Count:     simulatedCount + item.Quantity,
		}, nil
	}
	if status != http.StatusOK {
		metrics.CartRequestsTotal.WithLabelValues("add", "error").Inc()
		return cart.Result{Success: false, Message: "Failed to add item to cart"}, nil
	}

	metrics.CartRequestsTotal.WithLabelValues("add", "ok").Inc()
	// the add landed; a simulated count marks the size as an estimate
	count, _ := c.Count(ctx, item.UserID)
	return cart.Result{
		Success:   true,
		Simulated: count.Simulated,
		Message:   fmt.Sprintf("Added %d item(s) to cart", item.Quantity),
		Count:     count.Count + item.Quantity,
	}, nil
}

// Remove takes quantity units of an item out of the user's cart.
func (c *Client) Remove(ctx context.Context, item cart.Item) (cart.Result, error) {
	status, err := c.send(ctx, http.MethodDelete, "/api/cart/remove", item)
	if err != nil {
		if ctx.Err() != nil {
			return cart.Result{}, fmt.Errorf("cart remove: %w", ctx.Err())
		}
		c.simulated(ctx, "remove", err)
		return cart.Result{
			Success:   true,
			Simulated: true,
			Message:   fmt.Sprintf("Removed item %s from cart for user %s", item.ItemID, item.UserID),
		}, nil
	}
	if status != http.StatusOK {
		metrics.CartRequestsTotal.WithLabelValues("remove", "error").Inc()
		return cart.Result{Success: false, Message: "Failed to remove item from cart"}, nil
	}
	metrics.CartRequestsTotal.WithLabelValues("remove", "ok").Inc()
	return cart.Result{Success: true, Message: fmt.Sprintf("Removed %d item(s) from cart", item.Quantity)}, nil
}

// Count returns the number of items in the user's cart. A non-200 answer
// counts as an empty cart.
func (c *Client) Count(ctx context.Context, userID string) (cart.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/cart/"+url.PathEscape(userID)+"/count", http.NoBody)
	if err != nil {
		return cart.Result{}, fmt.Errorf("new request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return cart.Result{}, fmt.Errorf("cart count: %w", ctx.Err())
		}
		c.simulated(ctx, "count", err)
		return cart.Result{Success: true, Simulated: true, Count: simulatedCount}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		metrics.CartRequestsTotal.WithLabelValues("count", "error").Inc()
		return cart.Result{Success: false}, nil
	}

	var body struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		metrics.CartRequestsTotal.WithLabelValues("count", "error").Inc()
		return cart.Result{Success: false}, nil //nolint:nilerr // unreadable count is an empty cart
	}
	metrics.CartRequestsTotal.WithLabelValues("count", "ok").Inc()
	return cart.Result{Success: true, Count: body.Count}, nil
}

// send issues a JSON request and returns the status code. err is set only
// when no response was received.
func (c *Client) send(ctx context.Context, method, path string, item cart.Item) (int, error) {
	body, err := json.Marshal(lineRequest{UserID: item.UserID, ItemID: item.ItemID, Quantity: item.Quantity})
	if err != nil {
		return 0, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func (c *Client) simulated(ctx context.Context, op string, err error) {
	metrics.CartRequestsTotal.WithLabelValues(op, "simulated").Inc()
	logger.FromContext(ctx).Warn("Cart service unreachable, simulating success",
		zap.String("op", op),
		zap.Error(err),
	)
}
