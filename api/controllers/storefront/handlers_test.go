package storefront

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pizzeria/api/middleware"
	"github.com/angelmondragon/pizzeria/internal/amount"
	"github.com/angelmondragon/pizzeria/internal/cart"
	"github.com/angelmondragon/pizzeria/internal/catalog"
	"github.com/angelmondragon/pizzeria/internal/checkout"
	sf "github.com/angelmondragon/pizzeria/internal/storefront"
	"github.com/angelmondragon/pizzeria/pkg/logger"
)

func newSession(t *testing.T, submit checkout.SubmitterFunc) *sf.Session {
	t.Helper()
	data, err := os.ReadFile("../../../internal/catalog/testdata/catalog.json")
	if err != nil {
		t.Fatalf("read catalog: %v", err)
	}
	cat, err := catalog.Decode(data)
	if err != nil {
		t.Fatalf("decode catalog: %v", err)
	}
	s, err := sf.NewSession(sf.Params{
		Catalog:   cat,
		Submitter: submit,
		Amount:    amount.DefaultSettings,
		Cart:      cart.Settings{DeliveryFee: decimal.NewFromInt(20), Amount: amount.DefaultSettings},
		Logger:    logger.Nop(),
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx)
	t.Cleanup(cancel)
	return s
}

func serve(h http.HandlerFunc, s *sf.Session, method, body string, params map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "/", reader)
	routeCtx := chi.NewRouteContext()
	for k, v := range params {
		routeCtx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	if s != nil {
		ctx = middleware.WithSession(ctx, s)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(ctx))
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	env := struct {
		Data any `json:"data"`
	}{Data: dest}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v: %s", err, rec.Body.String())
	}
}

func accept(_ context.Context, p cart.OrderPayload) (checkout.Receipt, error) {
	return checkout.Receipt{Total: p.Total, ItemCount: p.ItemCount}, nil
}

func TestMissingSession(t *testing.T) {
	rec := serve(Menu(logger.Nop()), nil, http.MethodGet, "", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 without a session, got %d", rec.Code)
	}
}

func TestItemHandlers(t *testing.T) {
	logg := logger.Nop()
	s := newSession(t, accept)
	pizza := map[string]string{"productId": "pizza"}

	rec := serve(SetOptions(logg), s, http.MethodPut, `{"values":{"sauce":["cream"],"toppings":["olives"],"crust":["standard"]}}`, pizza)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var item sf.ItemView
	decodeData(t, rec, &item)
	if !item.PriceSingle.Equal(decimal.NewFromInt(14)) {
		t.Fatalf("expected 14, got %s", item.PriceSingle)
	}

	rec = serve(SetOptions(logg), s, http.MethodPut, `{"values":{"sauce":["tomato","cream"]}}`, pizza)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for two radio options, got %d", rec.Code)
	}

	rec = serve(SetAmount(logg), s, http.MethodPut, `{"delta":1}`, pizza)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	decodeData(t, rec, &item)
	if item.Amount != 2 || !item.Price.Equal(decimal.NewFromInt(28)) {
		t.Fatalf("expected 2 pizzas for 28, got %d for %s", item.Amount, item.Price)
	}

	rec = serve(SetAmount(logg), s, http.MethodPut, `{}`, pizza)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without value or delta, got %d", rec.Code)
	}

	rec = serve(Toggle(logg), s, http.MethodPost, "", pizza)
	var menu sf.MenuView
	decodeData(t, rec, &menu)
	if menu.Expanded != "pizza" {
		t.Fatalf("expected pizza expanded, got %q", menu.Expanded)
	}

	rec = serve(Item(logg), s, http.MethodGet, "", map[string]string{"productId": "calzone"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCartHandlers(t *testing.T) {
	logg := logger.Nop()
	s := newSession(t, accept)

	rec := serve(AddToCart(logg), s, http.MethodPost, "", map[string]string{"productId": "cake"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var added sf.AddedLine
	decodeData(t, rec, &added)
	lineParam := map[string]string{"lineId": added.Line.ID.String()}

	rec = serve(SetLineAmount(logg), s, http.MethodPut, `{"value":3}`, lineParam)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var view sf.CartView
	decodeData(t, rec, &view)
	if !view.Total.Equal(decimal.NewFromInt(47)) {
		t.Fatalf("expected total 47, got %s", view.Total)
	}

	rec = serve(SetLineAmount(logg), s, http.MethodPut, `{"delta":-1}`, map[string]string{"lineId": "00000000-0000-0000-0000-000000000001"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown line, got %d", rec.Code)
	}

	rec = serve(PlaceOrder(logg), s, http.MethodPost, `{"phone":"555-0100","address":"Via Roma 1"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var receipt checkout.Receipt
	decodeData(t, rec, &receipt)
	if !receipt.Total.Equal(decimal.NewFromInt(47)) || receipt.ItemCount != 3 {
		t.Fatalf("unexpected receipt %+v", receipt)
	}

	rec = serve(RemoveLine(logg), s, http.MethodDelete, "", lineParam)
	if rec.Code != http.StatusOK {
		t.Fatalf("removing a line that is gone should succeed, got %d", rec.Code)
	}
	decodeData(t, rec, &view)
	if len(view.Products) != 0 || view.ItemCount != 0 {
		t.Fatalf("expected an empty cart, got %+v", view)
	}

	rec = serve(PlaceOrder(logg), s, http.MethodPost, `{"phone":"555-0100","address":"Via Roma 1"}`, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for an empty cart, got %d", rec.Code)
	}
}
