package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetTrades fetches a single page of executed trades for a market.
// The API caps the page size at 1000; callers that need a bounded window
// pass MinTS/MaxTS and tolerate truncation beyond the cap.
func (c *Client) GetTrades(ctx context.Context, opts GetTradesOptions) (*TradesResponse, error) {
	query := url.Values{}

	if opts.Ticker != "" {
		query.Set("ticker", opts.Ticker)
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}
	if opts.MinTS > 0 {
		query.Set("min_ts", strconv.FormatInt(opts.MinTS, 10))
	}
	if opts.MaxTS > 0 {
		query.Set("max_ts", strconv.FormatInt(opts.MaxTS, 10))
	}

	var resp TradesResponse
	if err := c.get(ctx, "/markets/trades", query, &resp); err != nil {
		return nil, fmt.Errorf("get trades %s: %w", opts.Ticker, err)
	}

	return &resp, nil
}
