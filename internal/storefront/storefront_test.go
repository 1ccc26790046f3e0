package storefront_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"RocketShoes/internal/cart"
	"RocketShoes/internal/catalog"
	"RocketShoes/internal/notify"
	"RocketShoes/internal/slot"
	"RocketShoes/internal/storefront"
	"RocketShoes/pkg/kit"
)

type cartBody struct {
	Cart          []cart.Product        `json:"cart"`
	Notifications []notify.Notification `json:"notifications"`
}

type env struct {
	ts      *httptest.Server
	slot    slot.Slot
	catalog *catalog.MemStore
}

func newEnv(t *testing.T, limiter *kit.IPRateLimiter) *env {
	t.Helper()

	mem := catalog.NewMemStore(catalog.SeedProducts(), catalog.SeedStock())
	catalogTS := httptest.NewServer(catalog.NewHandler(&catalog.Server{Store: mem}, catalog.HTTPDeps{
		Log:     zap.NewNop(),
		Service: "catalog",
	}))
	t.Cleanup(catalogTS.Close)

	st := slot.NewMemory()
	toasts := notify.NewToaster(notify.Options{TTL: time.Minute})
	c := cart.New(context.Background(), cart.Deps{
		Catalog:  cart.NewCatalogClient(catalogTS.URL),
		Slot:     st,
		Notifier: toasts,
	})
	c.LoadCatalog(context.Background())

	h := storefront.NewHandler(&storefront.Server{Cart: c, Toasts: toasts, Slot: st}, storefront.HTTPDeps{
		Log:       zap.NewNop(),
		Service:   "storefront",
		RateLimit: limiter,
	})
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	return &env{ts: ts, slot: st, catalog: mem}
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func doCart(t *testing.T, method, url string, body any) cartBody {
	t.Helper()

	resp, raw := doJSON(t, method, url, body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("%s %s: status=%d body=%s", method, url, resp.StatusCode, string(raw))
	}
	var out cartBody
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode cart: %v body=%s", err, string(raw))
	}
	return out
}

func TestStorefront_CartFlow(t *testing.T) {
	e := newEnv(t, nil)

	{
		resp, raw := doJSON(t, http.MethodGet, e.ts.URL+"/products", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("products status=%d", resp.StatusCode)
		}
		var products []cart.Product
		if err := json.Unmarshal(raw, &products); err != nil {
			t.Fatalf("decode products: %v", err)
		}
		if len(products) != len(catalog.SeedProducts()) {
			t.Fatalf("products len=%d", len(products))
		}
	}

	got := doCart(t, http.MethodGet, e.ts.URL+"/cart", nil)
	if len(got.Cart) != 0 {
		t.Fatalf("cart should start empty: %+v", got.Cart)
	}

	doCart(t, http.MethodPost, e.ts.URL+"/cart/1", nil)
	doCart(t, http.MethodPost, e.ts.URL+"/cart/3", nil)
	got = doCart(t, http.MethodPost, e.ts.URL+"/cart/1", nil)

	if len(got.Cart) != 2 || got.Cart[0].ID != 1 || got.Cart[0].Amount != 2 || got.Cart[1].ID != 3 {
		t.Fatalf("cart after adds: %+v", got.Cart)
	}
	if got.Cart[1].Title != "Tênis Adidas Duramo Lite 2.0" || got.Cart[1].Price != 219.9 {
		t.Fatalf("product details not copied: %+v", got.Cart[1])
	}

	got = doCart(t, http.MethodPatch, e.ts.URL+"/cart/3", map[string]any{"amount": 5})
	if got.Cart[1].Amount != 2 {
		t.Fatalf("update should add one unit: %+v", got.Cart[1])
	}

	got = doCart(t, http.MethodPatch, e.ts.URL+"/cart/3", map[string]any{"amount": 0})
	if got.Cart[1].Amount != 2 {
		t.Fatalf("zero amount must be ignored: %+v", got.Cart[1])
	}

	got = doCart(t, http.MethodDelete, e.ts.URL+"/cart/1", nil)
	if len(got.Cart) != 1 || got.Cart[0].ID != 3 {
		t.Fatalf("cart after remove: %+v", got.Cart)
	}

	raw, ok, err := e.slot.Get(context.Background(), slot.CartKey)
	if err != nil || !ok {
		t.Fatalf("slot get: ok=%v err=%v", ok, err)
	}
	persisted, err := cart.DecodeCart(raw)
	if err != nil {
		t.Fatalf("decode slot: %v", err)
	}
	if len(persisted) != 1 || persisted[0] != got.Cart[0] {
		t.Fatalf("persisted=%+v in-memory=%+v", persisted, got.Cart)
	}

	if len(got.Notifications) != 0 {
		t.Fatalf("unexpected notifications: %+v", got.Notifications)
	}
}

func TestStorefront_StockExhaustedNotification(t *testing.T) {
	e := newEnv(t, nil)
	e.catalog.SetStock(4, 0)

	got := doCart(t, http.MethodPost, e.ts.URL+"/cart/4", nil)

	if len(got.Cart) != 1 || got.Cart[0].ID != 4 || got.Cart[0].Amount != 1 {
		t.Fatalf("cart=%+v", got.Cart)
	}
	if len(got.Notifications) != 1 || got.Notifications[0].Message != cart.MsgStockExhausted {
		t.Fatalf("notifications=%+v", got.Notifications)
	}

	id := got.Notifications[0].ID
	if resp, _ := doJSON(t, http.MethodDelete, e.ts.URL+"/notifications/"+id, nil); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("dismiss status=%d", resp.StatusCode)
	}
	if resp, _ := doJSON(t, http.MethodDelete, e.ts.URL+"/notifications/"+id, nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second dismiss status=%d", resp.StatusCode)
	}

	resp, raw := doJSON(t, http.MethodGet, e.ts.URL+"/notifications", nil)
	if resp.StatusCode != http.StatusOK || string(bytes.TrimSpace(raw)) != "[]" {
		t.Fatalf("notifications status=%d body=%s", resp.StatusCode, string(raw))
	}
}

func TestStorefront_AddUnknownProductNotifies(t *testing.T) {
	e := newEnv(t, nil)

	got := doCart(t, http.MethodPost, e.ts.URL+"/cart/404", nil)

	if len(got.Cart) != 0 {
		t.Fatalf("cart=%+v", got.Cart)
	}
	if len(got.Notifications) != 1 || got.Notifications[0].Kind != notify.KindAddFailed {
		t.Fatalf("notifications=%+v", got.Notifications)
	}
}

func TestStorefront_BadRequests(t *testing.T) {
	e := newEnv(t, nil)

	cases := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPost, "/cart/abc", nil},
		{http.MethodDelete, "/cart/1.5", nil},
		{http.MethodPatch, "/cart/1", map[string]any{"qty": 2}},
		{http.MethodPatch, "/cart/1", nil},
	}
	for _, tc := range cases {
		resp, raw := doJSON(t, tc.method, e.ts.URL+tc.path, tc.body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s %s: status=%d body=%s", tc.method, tc.path, resp.StatusCode, string(raw))
		}
	}
}

func TestStorefront_Health(t *testing.T) {
	e := newEnv(t, nil)

	for _, p := range []string{"/healthz", "/readyz"} {
		if resp, _ := doJSON(t, http.MethodGet, e.ts.URL+p, nil); resp.StatusCode != http.StatusOK {
			t.Fatalf("%s status=%d", p, resp.StatusCode)
		}
	}
}

func TestStorefront_RateLimited(t *testing.T) {
	e := newEnv(t, kit.NewIPRateLimiter(2, time.Minute))

	for i := 0; i < 2; i++ {
		if resp, _ := doJSON(t, http.MethodGet, e.ts.URL+"/cart", nil); resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d status=%d", i, resp.StatusCode)
		}
	}
	resp, _ := doJSON(t, http.MethodGet, e.ts.URL+"/cart", nil)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status=%d want=429", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") != "60" {
		t.Fatalf("Retry-After=%q", resp.Header.Get("Retry-After"))
	}
}
