// Package checkout turns the cart into an order submission and clears the
// cart once the order service accepts it.
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pizzeria/internal/cart"
	pkgerrors "github.com/angelmondragon/pizzeria/pkg/errors"
	"github.com/angelmondragon/pizzeria/pkg/logger"
	"github.com/angelmondragon/pizzeria/pkg/validate"
)

// Receipt is the order service's acknowledgement.
type Receipt struct {
	OrderID   uuid.UUID       `json:"orderId"`
	Total     decimal.Decimal `json:"totalPrice"`
	ItemCount int             `json:"totalNumber"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Submitter delivers an order payload to the order service.
type Submitter interface {
	Submit(ctx context.Context, payload cart.OrderPayload) (Receipt, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, payload cart.OrderPayload) (Receipt, error)

func (fn SubmitterFunc) Submit(ctx context.Context, payload cart.OrderPayload) (Receipt, error) {
	return fn(ctx, payload)
}

type recorder interface {
	OrderSubmitted(total decimal.Decimal)
	OrderFailed()
}

type Service struct {
	cart      *cart.Cart
	submitter Submitter
	logg      *logger.Logger
	metrics   recorder
}

// NewService builds a checkout over c. metrics may be nil.
func NewService(c *cart.Cart, submitter Submitter, logg *logger.Logger, metrics recorder) (*Service, error) {
	if c == nil {
		return nil, fmt.Errorf("cart required")
	}
	if submitter == nil {
		return nil, fmt.Errorf("order submitter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{cart: c, submitter: submitter, logg: logg, metrics: metrics}, nil
}

// Prepare validates contact details and snapshots the cart. It never
// mutates the cart.
func (s *Service) Prepare(contact cart.Contact) (cart.OrderPayload, error) {
	if err := validate.Struct(contact); err != nil {
		return cart.OrderPayload{}, err
	}
	if s.cart.Len() == 0 {
		return cart.OrderPayload{}, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}
	return s.cart.BuildOrderPayload(contact), nil
}

// Submit sends payload to the order service. Failures come back as
// CodeDependency errors and leave the cart as it was.
func (s *Service) Submit(ctx context.Context, payload cart.OrderPayload) (Receipt, error) {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"lines":       len(payload.Products),
		"total_price": payload.Total.String(),
	})

	receipt, err := s.submitter.Submit(ctx, payload)
	if err != nil {
		s.recordFailure()
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() == pkgerrors.CodeInternal {
			err = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order submission failed")
		}
		s.logg.Error(ctx, "checkout.submit_failed", err)
		return Receipt{}, err
	}

	if s.metrics != nil {
		s.metrics.OrderSubmitted(payload.Total)
	}
	s.logg.Info(s.logg.WithField(ctx, "order_id", receipt.OrderID.String()), "checkout.submitted")
	return receipt, nil
}

// Complete clears the cart after an accepted order.
func (s *Service) Complete(Receipt) {
	s.cart.Reset()
}

// Checkout runs Prepare, Submit and Complete in one call.
func (s *Service) Checkout(ctx context.Context, contact cart.Contact) (Receipt, error) {
	payload, err := s.Prepare(contact)
	if err != nil {
		return Receipt{}, err
	}
	receipt, err := s.Submit(ctx, payload)
	if err != nil {
		return Receipt{}, err
	}
	s.Complete(receipt)
	return receipt, nil
}

func (s *Service) recordFailure() {
	if s.metrics != nil {
		s.metrics.OrderFailed()
	}
}
