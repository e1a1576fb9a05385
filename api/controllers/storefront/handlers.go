package storefront

import (
	"context"
	"net/http"

	"github.com/angelmondragon/pizzeria/api/middleware"
	"github.com/angelmondragon/pizzeria/api/responses"
	"github.com/angelmondragon/pizzeria/api/validators"
	"github.com/angelmondragon/pizzeria/internal/cart"
	sf "github.com/angelmondragon/pizzeria/internal/storefront"
	pkgerrors "github.com/angelmondragon/pizzeria/pkg/errors"
	"github.com/angelmondragon/pizzeria/pkg/logger"
)

func sessionFrom(r *http.Request) (*sf.Session, error) {
	if s := middleware.SessionFromContext(r.Context()); s != nil {
		return s, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "storefront session missing")
}

// handle runs fn against the request's session and writes its result.
func handle(logg *logger.Logger, status int, fn func(ctx context.Context, s *sf.Session, r *http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := fn(r.Context(), session, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, status, out)
	}
}

// Menu lists the menu items with their current configuration.
func Menu(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(ctx context.Context, s *sf.Session, _ *http.Request) (any, error) {
		return s.Menu(ctx)
	})
}

func Item(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(ctx context.Context, s *sf.Session, r *http.Request) (any, error) {
		productID, err := validators.ParseIDParam(r, "productId")
		if err != nil {
			return nil, err
		}
		return s.Item(ctx, productID)
	})
}

// SetOptions replaces the posted option values of one item.
func SetOptions(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload optionsRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		handle(logg, http.StatusOK, func(ctx context.Context, s *sf.Session, r *http.Request) (any, error) {
			productID, err := validators.ParseIDParam(r, "productId")
			if err != nil {
				return nil, err
			}
			return s.SetOptions(ctx, productID, payload.Values)
		})(w, r)
	}
}

// SetAmount feeds the item's amount input or applies a +/- press.
func SetAmount(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload amountRequest
		if err := decodeAmount(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		handle(logg, http.StatusOK, func(ctx context.Context, s *sf.Session, r *http.Request) (any, error) {
			productID, err := validators.ParseIDParam(r, "productId")
			if err != nil {
				return nil, err
			}
			if payload.Delta != nil {
				return s.AdjustAmount(ctx, productID, *payload.Delta)
			}
			raw, _, _ := payload.raw()
			return s.SetAmount(ctx, productID, raw)
		})(w, r)
	}
}

// AddToCart adds the item, as configured now, to the cart.
func AddToCart(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusCreated, func(ctx context.Context, s *sf.Session, r *http.Request) (any, error) {
		productID, err := validators.ParseIDParam(r, "productId")
		if err != nil {
			return nil, err
		}
		return s.AddToCart(ctx, productID)
	})
}

// Toggle opens or closes one item of the menu accordion.
func Toggle(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(ctx context.Context, s *sf.Session, r *http.Request) (any, error) {
		productID, err := validators.ParseIDParam(r, "productId")
		if err != nil {
			return nil, err
		}
		return s.Toggle(ctx, productID)
	})
}

func Cart(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(ctx context.Context, s *sf.Session, _ *http.Request) (any, error) {
		return s.Cart(ctx)
	})
}

// SetLineAmount feeds a cart line's amount input or applies a +/- press.
func SetLineAmount(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload amountRequest
		if err := decodeAmount(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		handle(logg, http.StatusOK, func(ctx context.Context, s *sf.Session, r *http.Request) (any, error) {
			lineID, err := validators.ParseUUIDParam(r, "lineId")
			if err != nil {
				return nil, err
			}
			if payload.Delta != nil {
				return s.AdjustLineAmount(ctx, lineID, *payload.Delta)
			}
			raw, _, _ := payload.raw()
			return s.SetLineAmount(ctx, lineID, raw)
		})(w, r)
	}
}

// RemoveLine drops a cart line. Unknown lines are ignored.
func RemoveLine(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(ctx context.Context, s *sf.Session, r *http.Request) (any, error) {
		lineID, err := validators.ParseUUIDParam(r, "lineId")
		if err != nil {
			return nil, err
		}
		return s.RemoveLine(ctx, lineID)
	})
}

// PlaceOrder submits the cart with the posted contact details.
func PlaceOrder(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload orderRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		contact := cart.Contact{
			Phone:   validators.SanitizeString(payload.Phone, 0),
			Address: validators.SanitizeString(payload.Address, 0),
		}
		handle(logg, http.StatusCreated, func(ctx context.Context, s *sf.Session, _ *http.Request) (any, error) {
			return s.PlaceOrder(ctx, contact)
		})(w, r)
	}
}

func decodeAmount(w http.ResponseWriter, r *http.Request, payload *amountRequest) error {
	if err := validators.DecodeJSONBody(w, r, payload); err != nil {
		return err
	}
	return payload.check()
}
