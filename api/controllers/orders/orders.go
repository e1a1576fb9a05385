package orders

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/pizzeria/api/responses"
	"github.com/angelmondragon/pizzeria/api/validators"
	internalorders "github.com/angelmondragon/pizzeria/internal/orders"
	pkgerrors "github.com/angelmondragon/pizzeria/pkg/errors"
	"github.com/angelmondragon/pizzeria/pkg/logger"
)

type orderService interface {
	Place(ctx context.Context, req internalorders.PlaceOrderRequest) (*internalorders.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*internalorders.Order, error)
}

// Place accepts the storefront's order document, re-prices it against the
// stored catalog and persists it.
func Place(svc orderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var payload internalorders.PlaceOrderRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload.Phone = validators.SanitizeString(payload.Phone, 0)
		payload.Address = validators.SanitizeString(payload.Address, 0)

		order, err := svc.Place(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, internalorders.ToDTO(order))
	}
}

// Detail returns a stored order with its lines.
func Detail(svc orderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, internalorders.ToDTO(order))
	}
}
