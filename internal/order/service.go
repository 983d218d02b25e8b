package order

import (
	"context"
	"errors"
	"fmt"

	"papeleria-be/internal/address"
	"papeleria-be/internal/logger"
	"papeleria-be/internal/metrics"
	"papeleria-be/internal/product"
	"papeleria-be/internal/user"

	"go.uber.org/zap"
)

// Service owns order pricing and cart reconciliation. Every operation keeps
// the invariant that the order total equals the sum of its line totals.
type Service interface {
	Create(ctx context.Context, params CreateOrderParams) (*Order, error)
	Get(ctx context.Context, orderID uint) (*Order, error)
	GetCart(ctx context.Context, userID uint) (*Order, error)
	List(ctx context.Context, userID uint) ([]*Order, error)
	Update(ctx context.Context, orderID uint, params UpdateOrderParams) (*Order, error)
	UpdateLine(ctx context.Context, lineID uint, patch LinePatch, actor Actor) (*LineUpdateResult, error)
	DeleteLine(ctx context.Context, lineID uint, actor Actor) (*LineUpdateResult, error)
}

type service struct {
	repo        Repository
	userRepo    user.Repository
	addressRepo address.Repository
	productRepo product.Repository
	metrics     *metrics.OrderMetrics
}

func NewService(
	repo Repository,
	userRepo user.Repository,
	addressRepo address.Repository,
	productRepo product.Repository,
	m *metrics.OrderMetrics,
) Service {
	if m == nil {
		m = &metrics.OrderMetrics{}
	}
	return &service{
		repo:        repo,
		userRepo:    userRepo,
		addressRepo: addressRepo,
		productRepo: productRepo,
		metrics:     m,
	}
}

func (s *service) Create(ctx context.Context, params CreateOrderParams) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
		zap.Uint("user_id", params.UserID),
		zap.Int("line_count", len(params.Lines)),
	)

	timer := metrics.StartTimer()

	u, err := s.userRepo.GetByID(ctx, params.UserID)
	if err != nil {
		return nil, err
	}
	if u.Tier == user.TierAdmin {
		log.Warn("administrator attempted to place an order")
		return nil, ErrAdminCannotPurchase
	}

	if params.AddressID != nil {
		if _, err := s.addressRepo.GetByID(ctx, *params.AddressID); err != nil {
			return nil, err
		}
	}

	status := params.Status
	if status == 0 {
		status = StatusCart
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	if len(params.Lines) == 0 {
		return nil, ErrEmptyOrder
	}

	lines := make([]Line, 0, len(params.Lines))
	catalog := make(map[uint]*product.Product, len(params.Lines))

	for _, req := range params.Lines {
		if req.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}

		p, err := s.catalogLookup(ctx, catalog, req.ProductID)
		if err != nil {
			return nil, err
		}

		lines = append(lines, Line{
			ProductID:   req.ProductID,
			ProductName: p.Name,
			Quantity:    req.Quantity,
		})
	}

	total, discounted := priceOrder(lines, catalog, u.Tier == user.TierWholesale)
	if discounted {
		s.metrics.WholesaleApplied.Inc()
	}

	o := &Order{
		UserID:    params.UserID,
		AddressID: params.AddressID,
		Status:    status,
		Total:     total,
		Lines:     lines,
	}

	if err := s.repo.CreateOrderTx(ctx, o); err != nil {
		return nil, err
	}

	s.metrics.OrdersCreated.Inc()
	log.Info("order created",
		zap.Uint("order_id", o.ID),
		zap.Int64("total", o.Total),
		zap.Bool("wholesale_applied", discounted),
		zap.Duration("duration", timer.Duration()),
	)

	return o, nil
}

func (s *service) Get(ctx context.Context, orderID uint) (*Order, error) {
	return s.repo.GetOrderWithLines(ctx, orderID)
}

func (s *service) GetCart(ctx context.Context, userID uint) (*Order, error) {
	return s.repo.GetCartByUser(ctx, userID)
}

func (s *service) List(ctx context.Context, userID uint) ([]*Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Update merges incoming lines into the order, reprices everything, re-runs
// the wholesale threshold test and applies status/address changes, all
// persisted in a single transaction.
func (s *service) Update(ctx context.Context, orderID uint, params UpdateOrderParams) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateOrder"),
		zap.Uint("order_id", orderID),
		zap.Int("incoming_lines", len(params.Lines)),
	)

	o, err := s.repo.GetOrderWithLines(ctx, orderID)
	if err != nil {
		return nil, err
	}

	u, err := s.userRepo.GetByID(ctx, o.UserID)
	if err != nil {
		return nil, err
	}

	if params.AddressID != nil {
		if _, err := s.addressRepo.GetByID(ctx, *params.AddressID); err != nil {
			return nil, err
		}
		o.AddressID = params.AddressID
	}

	if params.Status != nil {
		if !params.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		o.Status = *params.Status
	}

	var discounted bool

	if len(params.Lines) > 0 {
		// Merge: an incoming pair for a product already on the order
		// adds to its quantity, never replaces it.
		for _, req := range params.Lines {
			if req.Quantity <= 0 {
				return nil, ErrInvalidQuantity
			}

			merged := false
			for i := range o.Lines {
				if o.Lines[i].ProductID == req.ProductID {
					o.Lines[i].Quantity += req.Quantity
					merged = true
					break
				}
			}
			if merged {
				continue
			}

			p, err := s.catalogLookup(ctx, nil, req.ProductID)
			if err != nil {
				return nil, err
			}
			o.Lines = append(o.Lines, Line{
				OrderID:     o.ID,
				ProductID:   req.ProductID,
				ProductName: p.Name,
				Quantity:    req.Quantity,
			})
		}

		catalog := make(map[uint]*product.Product, len(o.Lines))
		for i := range o.Lines {
			if _, err := s.catalogLookup(ctx, catalog, o.Lines[i].ProductID); err != nil {
				return nil, err
			}
		}

		o.Total, discounted = priceOrder(o.Lines, catalog, u.Tier == user.TierWholesale)
		if discounted {
			s.metrics.WholesaleApplied.Inc()
		}
	} else {
		// No line changes: defensive recompute from the stored lines.
		o.Total = sumLineTotals(o.Lines)
	}

	if err := s.repo.SaveOrderTx(ctx, o); err != nil {
		return nil, err
	}

	s.metrics.OrdersUpdated.Inc()
	log.Info("order updated",
		zap.Int64("total", o.Total),
		zap.Bool("wholesale_applied", discounted),
	)

	return o, nil
}

func (s *service) UpdateLine(ctx context.Context, lineID uint, patch LinePatch, actor Actor) (*LineUpdateResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateLine"),
		zap.Uint("line_id", lineID),
	)

	result, err := s.repo.UpdateLineTx(ctx, lineID, patch, actor)
	if err != nil {
		return nil, err
	}

	if result.Removed {
		s.metrics.LinesRemoved.Inc()
		if result.OrderDeleted {
			s.metrics.OrdersDeleted.Inc()
			log.Info("empty draft order deleted with its last line")
		}
	}

	return result, nil
}

func (s *service) DeleteLine(ctx context.Context, lineID uint, actor Actor) (*LineUpdateResult, error) {
	result, err := s.repo.DeleteLineTx(ctx, lineID, actor)
	if err != nil {
		return nil, err
	}

	s.metrics.LinesRemoved.Inc()
	if result.OrderDeleted {
		s.metrics.OrdersDeleted.Inc()
	}

	return result, nil
}

// catalogLookup fetches a product, caching it in the given map when one is
// supplied. A missing product aborts the whole operation.
func (s *service) catalogLookup(ctx context.Context, catalog map[uint]*product.Product, id uint) (*product.Product, error) {
	if catalog != nil {
		if p, ok := catalog[id]; ok {
			return p, nil
		}
	}

	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, product.ErrProductNotFound)
		}
		return nil, err
	}

	if catalog != nil {
		catalog[id] = p
	}
	return p, nil
}
