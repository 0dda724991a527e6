package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/erp/ordersync/internal/domain/sync"
)

// maxResponseSize limits the response body size to prevent memory exhaustion
const maxResponseSize = 10 * 1024 * 1024

// Client implements the sync.MarketplaceFeed port against the marketplace
// seller API.
type Client struct {
	cfg    *Config
	client *http.Client
	logger *zap.Logger
}

// NewClient creates a marketplace client with the given configuration.
func NewClient(cfg *Config, logger *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger: logger,
	}, nil
}

// ListOrders fetches all orders created inside [from, to], walking the
// cursor-paginated listing until a short page signals the end.
func (c *Client) ListOrders(ctx context.Context, from, to time.Time) ([]sync.SourceOrder, error) {
	var (
		orders []sync.SourceOrder
		next   int64
	)
	for {
		u := fmt.Sprintf("%s/api/v3/orders?limit=%d&next=%d&dateFrom=%d&dateTo=%d",
			c.cfg.BaseURL, c.cfg.PageLimit, next, from.Unix(), to.Unix())

		var page ordersResponse
		if err := c.getJSON(ctx, u, &page); err != nil {
			return nil, err
		}

		for _, row := range page.Orders {
			order := sync.SourceOrder{
				ID:      strconv.FormatInt(row.ID, 10),
				Article: row.Article,
			}
			if createdAt, err := time.Parse(time.RFC3339, row.CreatedAt); err == nil {
				order.CreatedAt = createdAt
			}
			orders = append(orders, order)
		}

		if len(page.Orders) < c.cfg.PageLimit {
			return orders, nil
		}
		next = page.Next
	}
}

// GetStatuses queries the current status of the given orders in one batch.
// Ids that are not numeric never came from this marketplace and are skipped.
func (c *Client) GetStatuses(ctx context.Context, orderIDs []string) ([]sync.OrderStatus, error) {
	numeric := make([]int64, 0, len(orderIDs))
	for _, id := range orderIDs {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			c.logger.Warn("Skipping non-numeric order id in status query",
				zap.String("order_id", id))
			continue
		}
		numeric = append(numeric, n)
	}
	if len(numeric) == 0 {
		return nil, nil
	}

	u := c.cfg.BaseURL + "/api/v3/orders/status"
	payload, err := json.Marshal(statusRequest{Orders: numeric})
	if err != nil {
		return nil, fmt.Errorf("marketplace: failed to marshal status request: %w", err)
	}

	var resp statusResponse
	if err := c.doJSON(ctx, http.MethodPost, u, payload, &resp); err != nil {
		return nil, err
	}

	statuses := make([]sync.OrderStatus, 0, len(resp.Orders))
	for _, row := range resp.Orders {
		statuses = append(statuses, sync.OrderStatus{
			ID: strconv.FormatInt(row.ID, 10),
			Pair: sync.StatusPair{
				Stage:  sync.Stage(row.SupplierStatus),
				Status: sync.Status(row.WbStatus),
			},
		})
	}
	return statuses, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	return c.doJSON(ctx, http.MethodGet, url, nil, out)
}

func (c *Client) doJSON(ctx context.Context, method, url string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("marketplace: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.cfg.Token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("marketplace: %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("marketplace: %s %s: failed to read response: %w", method, url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("marketplace: %s %s: HTTP %d", method, url, resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("marketplace: %s %s: invalid json: %w", method, url, err)
	}
	return nil
}

// Ensure Client implements the MarketplaceFeed port
var _ sync.MarketplaceFeed = (*Client)(nil)
