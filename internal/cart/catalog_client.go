package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const DefaultCatalogURL = "http://localhost:3333"

var (
	ErrCatalogNotFound    = errors.New("catalog product not found")
	ErrCatalogBadStatus   = errors.New("catalog bad status")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

// Catalog is the read-only view of the remote catalog service the cart
// depends on.
type Catalog interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id int) (Product, error)
	GetStock(ctx context.Context, id int) (Stock, error)
}

// CatalogClient carries no client-level timeout; callers bound each read
// through the context deadline.
type CatalogClient struct {
	BaseURL string
	Client  *http.Client
}

func NewCatalogClient(baseURL string) *CatalogClient {
	if baseURL == "" {
		baseURL = DefaultCatalogURL
	}
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	return &CatalogClient{
		BaseURL: baseURL,
		Client:  &http.Client{},
	}
}

func (c *CatalogClient) ListProducts(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.get(ctx, "/products", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) GetProduct(ctx context.Context, id int) (Product, error) {
	var p Product
	if err := c.get(ctx, fmt.Sprintf("/products/%d", id), &p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (c *CatalogClient) GetStock(ctx context.Context, id int) (Stock, error) {
	var s Stock
	if err := c.get(ctx, fmt.Sprintf("/stock/%d", id), &s); err != nil {
		return Stock{}, err
	}
	return s, nil
}

func (c *CatalogClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %s", ErrCatalogNotFound, path)
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: GET %s status=%d", ErrCatalogBadStatus, path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
