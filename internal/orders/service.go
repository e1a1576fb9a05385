package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/pizzeria/internal/amount"
	"github.com/angelmondragon/pizzeria/internal/catalog"
	"github.com/angelmondragon/pizzeria/internal/products"
	"github.com/angelmondragon/pizzeria/pkg/db"
	pkgerrors "github.com/angelmondragon/pizzeria/pkg/errors"
	"github.com/angelmondragon/pizzeria/pkg/logger"
	"github.com/angelmondragon/pizzeria/pkg/validate"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productFinder interface {
	FindByID(ctx context.Context, id string) (*products.Product, error)
}

// Service places and reads orders. Submitted figures are never trusted:
// every line is re-priced from the stored catalog before anything is written.
type Service struct {
	repo        *Repository
	tx          txRunner
	products    productFinder
	deliveryFee decimal.Decimal
	bounds      amount.Settings
	logg        *logger.Logger
}

// ServiceParams wires a Service.
type ServiceParams struct {
	Repo        *Repository
	Tx          txRunner
	Products    productFinder
	DeliveryFee decimal.Decimal
	Amount      amount.Settings
	Logger      *logger.Logger
}

func NewService(p ServiceParams) (*Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if p.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if p.Products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if p.DeliveryFee.IsNegative() {
		return nil, fmt.Errorf("delivery fee must not be negative")
	}
	return &Service{
		repo:        p.Repo,
		tx:          p.Tx,
		products:    p.Products,
		deliveryFee: p.DeliveryFee,
		bounds:      p.Amount,
		logg:        p.Logger,
	}, nil
}

// Place verifies req against the catalog and persists it in one transaction.
func (s *Service) Place(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	var violations []Violation
	lines := make([]pricedLine, 0, len(req.Products))
	for i, lineReq := range req.Products {
		item, err := s.lookup(ctx, lineReq.ProductID)
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
				idx := i
				violations = append(violations, Violation{Field: "id", Line: &idx, Got: lineReq.ProductID, Reason: "unknown product"})
				continue
			}
			return nil, err
		}
		priced, lineViolations := verifyLine(i, item, lineReq, s.bounds)
		violations = append(violations, lineViolations...)
		lines = append(lines, priced)
	}
	if err := violationError(violations); err != nil {
		return nil, err
	}

	sums, violations := verifyTotals(req, lines, s.deliveryFee)
	if err := violationError(violations); err != nil {
		return nil, err
	}

	order := buildOrder(req, lines, sums, s.deliveryFee)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, order)
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist order")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":     order.ID.String(),
		"lines":        len(order.Lines),
		"total_number": order.TotalNumber,
		"total_price":  order.TotalPrice.String(),
	}), "orders.placed")
	return order, nil
}

// Get loads a placed order.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}

func (s *Service) lookup(ctx context.Context, productID string) (catalog.Item, error) {
	row, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return catalog.Item{}, err
		}
		return catalog.Item{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	item, err := row.ToItem()
	if err != nil {
		return catalog.Item{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode product")
	}
	return item, nil
}

func buildOrder(req PlaceOrderRequest, lines []pricedLine, sums totals, fee decimal.Decimal) *Order {
	order := &Order{
		ID:            uuid.New(),
		Phone:         req.Phone,
		Address:       req.Address,
		TotalNumber:   sums.count,
		SubtotalPrice: sums.subtotal,
		DeliveryFee:   fee,
		TotalPrice:    sums.total,
		Status:        StatusPlaced,
	}
	for i, line := range lines {
		order.Lines = append(order.Lines, OrderLine{
			ID:          uuid.New(),
			OrderID:     order.ID,
			Position:    i,
			ProductID:   line.item.ID,
			Name:        line.item.Name,
			Amount:      line.request.Amount,
			PriceSingle: line.unitPrice,
			Price:       line.total,
			Params:      line.selections,
		})
	}
	return order
}
