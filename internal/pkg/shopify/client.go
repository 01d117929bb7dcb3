// Package shopify is a small client for the Shopify Admin GraphQL API covering
// product search, product metafield writes and metafield definition listing.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	accessTokenHeader = "X-Shopify-Access-Token"
	maxErrorBody      = 2048
)

// Config addresses a single shop.
type Config struct {
	ShopDomain  string
	APIVersion  string
	AccessToken string
	Timeout     time.Duration
}

// Client issues GraphQL requests against one shop's Admin API.
type Client struct {
	endpoint    string
	accessToken string
	http        *http.Client
	logger      *zap.Logger
}

type Option func(*Client)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithEndpoint overrides the computed GraphQL endpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint = strings.TrimSpace(endpoint); endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

func New(cfg Config, opts ...Option) (*Client, error) {
	shop := strings.TrimSpace(cfg.ShopDomain)
	version := strings.TrimSpace(cfg.APIVersion)
	c := &Client{
		endpoint:    Endpoint(shop, version),
		accessToken: strings.TrimSpace(cfg.AccessToken),
		http:        &http.Client{Timeout: cfg.Timeout},
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if shop == "" && c.endpoint == Endpoint("", version) {
		return nil, errors.New("shopify shop domain is required")
	}
	if c.accessToken == "" {
		return nil, errors.New("shopify access token is required")
	}
	c.logger = c.logger.Named("ShopifyClient")
	return c, nil
}

// Endpoint returns the Admin GraphQL URL for shop and API version.
func Endpoint(shop, version string) string {
	return fmt.Sprintf("https://%s/admin/api/%s/graphql.json", shop, version)
}

type graphqlPayload struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

func (c *Client) graphqlRequest(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphqlPayload{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("encode graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(accessTokenHeader, c.accessToken)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("shopify request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read shopify response: %w", err)
	}
	c.logger.Debug("graphql request",
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(raw), maxErrorBody)}
	}

	var envelope graphqlResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode shopify response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return &GraphQLErrors{Errors: envelope.Errors}
	}
	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode shopify data: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
