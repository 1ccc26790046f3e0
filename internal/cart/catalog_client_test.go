package cart_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"RocketShoes/internal/cart"
	"RocketShoes/internal/catalog"
	"RocketShoes/internal/notify"
)

func newCatalogTS(t *testing.T) *httptest.Server {
	t.Helper()

	s := &catalog.Server{
		Store: catalog.NewMemStore(
			[]catalog.Product{
				{ID: 1, Title: "Tênis Leve", Price: 179.9, Image: "1.png"},
				{ID: 7, Title: "Shoe", Price: 100, Image: "x.png"},
			},
			[]catalog.Stock{{ID: 1, Amount: 3}, {ID: 7, Amount: 0}},
		),
	}
	ts := httptest.NewServer(catalog.NewHandler(s, catalog.HTTPDeps{Log: zap.NewNop(), Service: "catalog"}))
	t.Cleanup(ts.Close)
	return ts
}

func TestCatalogClient_ReadsProductsAndStock(t *testing.T) {
	ts := newCatalogTS(t)
	c := cart.NewCatalogClient(ts.URL + "/")
	ctx := context.Background()

	products, err := c.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, 1, products[0].ID)
	assert.Equal(t, 7, products[1].ID)

	p, err := c.GetProduct(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, cart.Product{ID: 7, Title: "Shoe", Price: 100, Image: "x.png"}, p)

	st, err := c.GetStock(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, cart.Stock{ID: 1, Amount: 3}, st)
}

func TestCatalogClient_NotFound(t *testing.T) {
	c := cart.NewCatalogClient(newCatalogTS(t).URL)

	_, err := c.GetProduct(context.Background(), 42)
	assert.ErrorIs(t, err, cart.ErrCatalogNotFound)

	_, err = c.GetStock(context.Background(), 42)
	assert.ErrorIs(t, err, cart.ErrCatalogNotFound)
}

func TestCatalogClient_BadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(ts.Close)

	_, err := cart.NewCatalogClient(ts.URL).GetStock(context.Background(), 1)
	assert.ErrorIs(t, err, cart.ErrCatalogBadStatus)
}

func TestCatalogClient_BadBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	t.Cleanup(ts.Close)

	_, err := cart.NewCatalogClient(ts.URL).GetProduct(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, cart.ErrCatalogUnavailable)
}

func TestCatalogClient_Unavailable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := cart.NewCatalogClient(url).ListProducts(context.Background())
	assert.ErrorIs(t, err, cart.ErrCatalogUnavailable)
}

func TestCatalogClient_HonorsContextDeadline(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(ts.Close)
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := cart.NewCatalogClient(ts.URL).GetStock(ctx, 1)
	assert.ErrorIs(t, err, cart.ErrCatalogUnavailable)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestStore_AgainstCatalogService(t *testing.T) {
	ts := newCatalogTS(t)
	s := cart.New(context.Background(), cart.Deps{Catalog: cart.NewCatalogClient(ts.URL)})

	s.LoadCatalog(context.Background())
	require.Len(t, s.Products(), 2)

	s.AddProduct(context.Background(), 7)
	assert.Equal(t, []cart.Product{{ID: 7, Title: "Shoe", Price: 100, Image: "x.png", Amount: 1}}, s.Cart())
}

func TestStore_SlowCatalogWithinConfiguredTimeout(t *testing.T) {
	if testing.Short() {
		t.Skip("slow catalog test")
	}

	inner := newCatalogTS(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/stock/1" {
			time.Sleep(3500 * time.Millisecond)
		}
		http.Redirect(w, r, inner.URL+r.URL.Path, http.StatusTemporaryRedirect)
	}))
	t.Cleanup(ts.Close)

	var notes []string
	s := cart.New(context.Background(), cart.Deps{
		Catalog:  cart.NewCatalogClient(ts.URL),
		Notifier: notifierFunc(func(_ notify.Kind, _ notify.Level, msg string) { notes = append(notes, msg) }),
		Timeout:  10 * time.Second,
	})

	s.AddProduct(context.Background(), 1)

	assert.Empty(t, notes)
	assert.Equal(t, []cart.Product{{ID: 1, Title: "Tênis Leve", Price: 179.9, Image: "1.png", Amount: 1}}, s.Cart())
}

type notifierFunc func(kind notify.Kind, level notify.Level, msg string)

func (f notifierFunc) Notify(kind notify.Kind, level notify.Level, msg string) { f(kind, level, msg) }
