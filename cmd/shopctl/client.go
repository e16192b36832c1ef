package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"woodcraft/internal/cart"
)

// apiClient talks to the storefront HTTP API.
type apiClient struct {
	base  string
	http  *http.Client
	token string
}

func newAPIClient(base string) *apiClient {
	return &apiClient{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// apiError carries the message of a non-2xx response.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

type product struct {
	ID           string     `json:"_id"`
	Name         string     `json:"name"`
	Category     string     `json:"category"`
	Price        cart.Price `json:"price"`
	Images       []string   `json:"images"`
	CountInStock int        `json:"countInStock"`
	Rating       float64    `json:"rating"`
	NumReviews   int        `json:"numReviews"`
}

type orderLine struct {
	ID       string `json:"_id"`
	Quantity int    `json:"quantity"`
}

type placedOrder struct {
	ID         string     `json:"_id"`
	TotalPrice cart.Price `json:"totalPrice"`
	Status     string     `json:"status"`
}

func (c *apiClient) listProducts(ctx context.Context, keyword string) ([]product, error) {
	path := "/api/products"
	if keyword != "" {
		path += "?keyword=" + url.QueryEscape(keyword)
	}
	var out []product
	return out, c.do(ctx, http.MethodGet, path, nil, &out)
}

func (c *apiClient) getProduct(ctx context.Context, id string) (*product, error) {
	var out product
	if err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) login(ctx context.Context, email, password string) (*cart.UserInfo, error) {
	var out cart.UserInfo
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) placeOrder(ctx context.Context, lines []orderLine, address string) (*placedOrder, error) {
	var out placedOrder
	body := map[string]any{"orderItems": lines, "shippingAddress": address}
	if err := c.do(ctx, http.MethodPost, "/api/orders", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var msg struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil || msg.Message == "" {
			msg.Message = http.StatusText(resp.StatusCode)
		}
		return &apiError{Status: resp.StatusCode, Message: msg.Message}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
