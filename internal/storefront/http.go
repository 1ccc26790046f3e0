package storefront

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"RocketShoes/internal/cart"
	"RocketShoes/internal/notify"
	"RocketShoes/internal/slot"
	"RocketShoes/pkg/kit"
)

// Server exposes one shopper's cart to the storefront UI.
type Server struct {
	Cart   *cart.Store
	Toasts *notify.Toaster
	Slot   slot.Slot
	Log    *zap.Logger
}

type amountReq struct {
	Amount int `json:"amount"`
}

// cartResp is returned by every cart endpoint so the UI can re-render from
// the new snapshot and show whatever toasts are pending.
type cartResp struct {
	Cart          []cart.Product        `json:"cart"`
	Notifications []notify.Notification `json:"notifications"`
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.readyz)

	r.Get("/products", s.products)

	r.Route("/cart", func(cr chi.Router) {
		cr.Get("/", s.show)
		cr.Post("/{id}", s.add)
		cr.Delete("/{id}", s.remove)
		cr.Patch("/{id}", s.update)
	})

	r.Get("/notifications", s.notifications)
	r.Delete("/notifications/{id}", s.dismiss)

	return r
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if s.Slot == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
	defer cancel()

	if err := s.Slot.Ping(ctx); err != nil {
		s.logger().Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) products(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Cart.Products())
}

func (s *Server) show(w http.ResponseWriter, _ *http.Request) {
	s.writeCart(w)
}

func (s *Server) add(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	s.Cart.AddProduct(r.Context(), id)
	s.writeCart(w)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	s.Cart.RemoveProduct(r.Context(), id)
	s.writeCart(w)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	var req amountReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	s.Cart.UpdateProductAmount(r.Context(), cart.UpdateProductAmount{ProductID: id, Amount: req.Amount})
	s.writeCart(w)
}

func (s *Server) notifications(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.activeToasts())
}

func (s *Server) dismiss(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if s.Toasts == nil || !s.Toasts.Dismiss(id) {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeCart(w http.ResponseWriter) {
	kit.WriteJSON(w, http.StatusOK, cartResp{
		Cart:          s.Cart.Cart(),
		Notifications: s.activeToasts(),
	})
}

func (s *Server) activeToasts() []notify.Notification {
	if s.Toasts == nil {
		return []notify.Notification{}
	}
	return s.Toasts.Active()
}

func productID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad product id", map[string]any{"id": raw})
		return 0, false
	}
	return id, true
}
