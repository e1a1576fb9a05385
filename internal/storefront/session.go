// Package storefront runs one shopper's menu, cart and checkout on a single
// event loop and exposes them as plain view data.
package storefront

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/angelmondragon/pizzeria/internal/amount"
	"github.com/angelmondragon/pizzeria/internal/cart"
	"github.com/angelmondragon/pizzeria/internal/catalog"
	"github.com/angelmondragon/pizzeria/internal/checkout"
	"github.com/angelmondragon/pizzeria/internal/menu"
	pkgerrors "github.com/angelmondragon/pizzeria/pkg/errors"
	"github.com/angelmondragon/pizzeria/pkg/logger"
	"github.com/angelmondragon/pizzeria/pkg/metrics"
)

// Params wires a Session.
type Params struct {
	ID        string
	Catalog   *catalog.Catalog
	Submitter checkout.Submitter
	Amount    amount.Settings
	Cart      cart.Settings
	Logger    *logger.Logger
	Metrics   *metrics.Storefront
}

// Session owns the models of one shopper. Every operation runs as a closure
// on the session loop, so the models are never touched concurrently.
type Session struct {
	id       string
	form     *formState
	view     *viewState
	items    []*menu.ConfigurableItem
	byID     map[string]*menu.ConfigurableItem
	cart     *cart.Cart
	checkout *checkout.Service
	logg     *logger.Logger
	metrics  *metrics.Storefront

	expanded   string
	submitting bool

	ops     chan func()
	stopped chan struct{}
}

// NewSession builds the menu from the catalog in catalog order, an empty
// cart and the checkout. Call Run to start serving operations.
func NewSession(p Params) (*Session, error) {
	if p.Catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	s := &Session{
		id:      p.ID,
		view:    newViewState(),
		byID:    map[string]*menu.ConfigurableItem{},
		logg:    p.Logger,
		metrics: p.Metrics,
		ops:     make(chan func()),
		stopped: make(chan struct{}),
	}

	products := p.Catalog.Items()
	s.form = newFormState(products)
	for _, product := range products {
		item := menu.New(product, menu.Params{
			Form:   s.form,
			View:   s.view,
			Amount: p.Amount,
		})
		s.items = append(s.items, item)
		s.byID[product.ID] = item
	}

	s.cart = cart.New(p.Cart, s.view)
	svc, err := checkout.NewService(s.cart, p.Submitter, p.Logger, p.Metrics)
	if err != nil {
		return nil, err
	}
	s.checkout = svc

	base := p.Logger.WithSessionID(context.Background(), s.id)
	s.cart.OnLineAdded(func(line cart.LineSnapshot) {
		s.metrics.LineAdded()
		ctx := s.logg.WithProductID(s.logg.WithLineID(base, line.ID.String()), line.ProductID)
		s.logg.Info(ctx, "cart.line_added")
	})
	s.cart.OnLineRemoved(func(line cart.LineSnapshot) {
		s.metrics.LineRemoved()
		s.logg.Info(s.logg.WithLineID(base, line.ID.String()), "cart.line_removed")
	})
	return s, nil
}

func (s *Session) ID() string { return s.id }

// Run processes operations until ctx is done. Operations queued after that
// fail with CodeUnavailable.
func (s *Session) Run(ctx context.Context) {
	defer close(s.stopped)
	for {
		select {
		case <-ctx.Done():
			return
		case op := <-s.ops:
			op()
		}
	}
}

// Done is closed once the loop has stopped.
func (s *Session) Done() <-chan struct{} {
	return s.stopped
}

// do runs fn on the loop and waits for it. A panic inside fn is turned into
// an internal error so one bad request cannot take the session down.
func (s *Session) do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	op := func() {
		defer func() {
			if r := recover(); r != nil {
				err := pkgerrors.New(pkgerrors.CodeInternal, "storefront operation failed").
					WithDetails(map[string]any{"panic": fmt.Sprint(r)})
				s.logg.Error(s.logg.WithSessionID(ctx, s.id), "storefront.panic", err)
				result <- err
			}
		}()
		result <- fn()
	}

	select {
	case s.ops <- op:
	case <-s.stopped:
		return errSessionClosed()
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-result
}

func errSessionClosed() error {
	return pkgerrors.New(pkgerrors.CodeUnavailable, "storefront session closed")
}

// Menu returns every item in catalog order.
func (s *Session) Menu(ctx context.Context) (MenuView, error) {
	var out MenuView
	err := s.do(ctx, func() error {
		out = s.menuView()
		return nil
	})
	return out, err
}

// Item returns one menu item.
func (s *Session) Item(ctx context.Context, productID string) (ItemView, error) {
	var out ItemView
	err := s.do(ctx, func() error {
		item, err := s.item(productID)
		if err != nil {
			return err
		}
		out = s.itemView(item)
		return nil
	})
	return out, err
}

// SetOptions replaces the form values of one item and reprices it. Params
// left out of values end up with nothing selected.
func (s *Session) SetOptions(ctx context.Context, productID string, values map[string][]string) (ItemView, error) {
	var out ItemView
	err := s.do(ctx, func() error {
		item, err := s.item(productID)
		if err != nil {
			return err
		}
		if err := checkValues(item.Item(), values); err != nil {
			return err
		}
		s.form.replace(productID, values)
		item.SelectionsChanged()
		out = s.itemView(item)
		return nil
	})
	return out, err
}

// SetAmount feeds raw input to the item's counter. Rejected input leaves
// the amount unchanged and is echoed back as the current value.
func (s *Session) SetAmount(ctx context.Context, productID, raw string) (ItemView, error) {
	var out ItemView
	err := s.do(ctx, func() error {
		item, err := s.item(productID)
		if err != nil {
			return err
		}
		item.Amount().SetValue(raw)
		out = s.itemView(item)
		return nil
	})
	return out, err
}

// AdjustAmount applies the +/- buttons. Only 1 and -1 are accepted.
func (s *Session) AdjustAmount(ctx context.Context, productID string, delta int) (ItemView, error) {
	var out ItemView
	err := s.do(ctx, func() error {
		item, err := s.item(productID)
		if err != nil {
			return err
		}
		if err := step(item.Amount(), delta); err != nil {
			return err
		}
		out = s.itemView(item)
		return nil
	})
	return out, err
}

// AddToCart reprices the item from the form and appends a line built from
// it. The item keeps its configuration.
func (s *Session) AddToCart(ctx context.Context, productID string) (AddedLine, error) {
	var out AddedLine
	err := s.do(ctx, func() error {
		item, err := s.item(productID)
		if err != nil {
			return err
		}
		item.Recompute()
		line := s.cart.AddItem(item)
		out = AddedLine{Line: line.Snapshot(), Totals: s.cart.Totals()}
		return nil
	})
	return out, err
}

// Toggle expands productID and collapses whatever was open. Toggling the
// expanded item collapses it.
func (s *Session) Toggle(ctx context.Context, productID string) (MenuView, error) {
	var out MenuView
	err := s.do(ctx, func() error {
		if _, err := s.item(productID); err != nil {
			return err
		}
		if s.expanded == productID {
			s.expanded = ""
		} else {
			s.expanded = productID
		}
		out = s.menuView()
		return nil
	})
	return out, err
}

// Cart returns the lines and the totals.
func (s *Session) Cart(ctx context.Context) (CartView, error) {
	var out CartView
	err := s.do(ctx, func() error {
		out = s.cartView()
		return nil
	})
	return out, err
}

// SetLineAmount feeds raw input to a line's counter.
func (s *Session) SetLineAmount(ctx context.Context, lineID uuid.UUID, raw string) (CartView, error) {
	var out CartView
	err := s.do(ctx, func() error {
		line, ok := s.cart.Line(lineID)
		if !ok {
			return lineNotFound(lineID)
		}
		line.Amount().SetValue(raw)
		out = s.cartView()
		return nil
	})
	return out, err
}

// AdjustLineAmount applies the +/- buttons of a cart line.
func (s *Session) AdjustLineAmount(ctx context.Context, lineID uuid.UUID, delta int) (CartView, error) {
	var out CartView
	err := s.do(ctx, func() error {
		line, ok := s.cart.Line(lineID)
		if !ok {
			return lineNotFound(lineID)
		}
		if err := step(line.Amount(), delta); err != nil {
			return err
		}
		out = s.cartView()
		return nil
	})
	return out, err
}

// RemoveLine asks the line to remove itself. Unknown lines are ignored.
func (s *Session) RemoveLine(ctx context.Context, lineID uuid.UUID) (CartView, error) {
	var out CartView
	err := s.do(ctx, func() error {
		if line, ok := s.cart.Line(lineID); ok {
			line.RequestRemoval()
		}
		out = s.cartView()
		return nil
	})
	return out, err
}

// PlaceOrder snapshots the cart on the loop, submits it off the loop and
// resets the cart on the loop once the order is accepted. The cart stays
// usable while the order is in flight. A second checkout during that time
// is rejected.
func (s *Session) PlaceOrder(ctx context.Context, contact cart.Contact) (checkout.Receipt, error) {
	var payload cart.OrderPayload
	err := s.do(ctx, func() error {
		if s.submitting {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "an order is already being submitted")
		}
		p, err := s.checkout.Prepare(contact)
		if err != nil {
			return err
		}
		payload = p
		s.submitting = true
		return nil
	})
	if err != nil {
		return checkout.Receipt{}, err
	}

	receipt, submitErr := s.checkout.Submit(s.logg.WithSessionID(ctx, s.id), payload)

	// completion must land even if the caller has gone away
	err = s.do(context.WithoutCancel(ctx), func() error {
		s.submitting = false
		if submitErr == nil {
			s.checkout.Complete(receipt)
		}
		return nil
	})
	if submitErr != nil {
		return checkout.Receipt{}, submitErr
	}
	if err != nil {
		// the order is placed; only the cart reset was lost with the loop
		logCtx := s.logg.WithField(s.logg.WithSessionID(ctx, s.id), "error", err.Error())
		s.logg.Warn(logCtx, "storefront.order_completion_lost")
	}
	return receipt, nil
}

func (s *Session) item(productID string) (*menu.ConfigurableItem, error) {
	item, ok := s.byID[productID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
			WithDetails(map[string]any{"productId": productID})
	}
	return item, nil
}

func lineNotFound(lineID uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found").
		WithDetails(map[string]any{"lineId": lineID.String()})
}

func step(c *amount.Counter, delta int) error {
	switch delta {
	case 1:
		c.Increment()
	case -1:
		c.Decrement()
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid amount delta").
			WithDetails(map[string]string{"delta": "must be 1 or -1"})
	}
	return nil
}

// checkValues rejects ids the item does not define and more than one choice
// for single-choice params.
func checkValues(item catalog.Item, values map[string][]string) error {
	details := map[string]string{}
	for paramID, optionIDs := range values {
		param, ok := item.Param(paramID)
		if !ok {
			details[paramID] = "unknown param"
			continue
		}
		if param.Type != "checkboxes" && len(optionIDs) > 1 {
			details[paramID] = "accepts a single option, got " + strconv.Itoa(len(optionIDs))
			continue
		}
		for _, optionID := range optionIDs {
			if _, ok := param.Option(optionID); !ok {
				details[paramID] = "unknown option " + optionID
				break
			}
		}
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid options").WithDetails(details)
	}
	return nil
}
