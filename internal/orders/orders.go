// Package orders turns a checkout request into a durable order.
//
// Placement runs as one store transaction: the referenced product rows are
// locked in ascending id order, prices and stock are checked against the
// locked rows, the order and its item snapshots are inserted, stock is
// decremented, the user's cart is cleared and an "Order Placed!"
// notification is appended. Any failure rolls the whole unit back.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/config"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/notifications"
	"github.com/google/uuid"
)

// ErrOrderNotFound is returned by a Store when the order does not exist or
// belongs to someone else.
var ErrOrderNotFound = errors.New("order not found")

// Tx is the set of writes available inside a placement or status
// transaction.
type Tx interface {
	// LockProducts locks and returns the rows for ids. Missing ids are absent
	// from the map.
	LockProducts(ctx context.Context, ids []int64) (map[int64]models.Product, error)
	// InsertOrder fills o.ID, o.CreatedAt and o.UpdatedAt.
	InsertOrder(ctx context.Context, o *models.Order) error
	// InsertItem fills it.ID and it.CreatedAt.
	InsertItem(ctx context.Context, it *models.OrderItem) error
	DecrementStock(ctx context.Context, productID int64, qty int) error
	ClearCart(ctx context.Context, userID int64) error
	// AddNotification inserts n and keeps only the newest keep rows.
	AddNotification(ctx context.Context, n *models.Notification, keep int) error
	// LockOrder returns the order owned by userID or ErrOrderNotFound.
	LockOrder(ctx context.Context, userID, orderID int64) (models.Order, error)
	// SetStatus persists o.Status and refreshes o.UpdatedAt.
	SetStatus(ctx context.Context, o *models.Order) error
}

// Store runs transactions and serves order history.
type Store interface {
	// WithinTx commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	List(ctx context.Context, userID int64) ([]models.Order, error)
	Get(ctx context.Context, userID, orderID int64) (models.Order, []models.OrderItem, error)
	// Items returns every item of every order of userID, keyed by order id.
	Items(ctx context.Context, userID int64) (map[int64][]models.OrderItem, error)
	Count(ctx context.Context, userID int64) (int64, error)
}

type Options struct {
	Pricing        Pricing
	PricePolicy    string
	AllowBackorder bool
	TxTimeout      time.Duration
	Retention      int
}

// OptionsFrom maps the loaded configuration onto Options.
func OptionsFrom(cfg config.OrderConfig, retention int) Options {
	return Options{
		Pricing: Pricing{
			FreeShippingThreshold: cfg.FreeShippingThreshold,
			ShippingFee:           cfg.ShippingFee,
			TaxRate:               cfg.TaxRate,
		},
		PricePolicy:    cfg.PricePolicy,
		AllowBackorder: cfg.AllowBackorder,
		TxTimeout:      cfg.TxTimeout,
		Retention:      retention,
	}
}

type Service struct {
	store Store
	pub   notifications.Publisher
	opts  Options
	log   *slog.Logger

	now       func() time.Time
	newNumber func(time.Time) string
}

func NewService(store Store, pub notifications.Publisher, opts Options, log *slog.Logger) *Service {
	return &Service{
		store:     store,
		pub:       pub,
		opts:      opts,
		log:       log,
		now:       time.Now,
		newNumber: NewOrderNumber,
	}
}

// NewOrderNumber builds a human-facing order number such as
// ORD-1718031234567-9F2C1A. Uniqueness is still enforced by the store.
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), strings.ToUpper(uuid.NewString()[:6]))
}

// PlaceOrderInput is a checkout request.
type PlaceOrderInput struct {
	UserID          int64
	ShippingAddress models.ShippingAddress
	PaymentMethod   models.PaymentMethod
	Lines           []models.OrderLine
}

// Placement is a created order with its items.
type Placement struct {
	Order models.Order       `json:"order"`
	Items []models.OrderItem `json:"items"`
}

// mergeLines validates the lines and folds repeated products into one
// line, keeping first-seen order.
func mergeLines(lines []models.OrderLine) ([]models.OrderLine, error) {
	if len(lines) == 0 {
		return nil, apperr.Validation("Order must contain at least one item")
	}
	merged := make([]models.OrderLine, 0, len(lines))
	index := make(map[int64]int, len(lines))
	for i, l := range lines {
		if l.ProductID <= 0 {
			return nil, apperr.Validation(fmt.Sprintf("Item %d: productId is required", i+1))
		}
		if l.Quantity < 1 {
			return nil, apperr.Validation(fmt.Sprintf("Item %d: quantity must be at least 1", i+1))
		}
		if l.Price.IsNegative() {
			return nil, apperr.Validation(fmt.Sprintf("Item %d: price cannot be negative", i+1))
		}
		if j, ok := index[l.ProductID]; ok {
			if !merged[j].Price.Equal(l.Price) {
				return nil, apperr.Validation(fmt.Sprintf("Product %d is listed twice with different prices", l.ProductID))
			}
			merged[j].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(merged)
		merged = append(merged, l)
	}
	return merged, nil
}

func (s *Service) validate(in PlaceOrderInput) ([]models.OrderLine, error) {
	if missing := in.ShippingAddress.Missing(); len(missing) > 0 {
		return nil, apperr.Validation("Shipping address is missing: " + strings.Join(missing, ", "))
	}
	if !in.PaymentMethod.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("Unsupported payment method %q", in.PaymentMethod))
	}
	return mergeLines(in.Lines)
}

// PlaceOrder validates the request and runs the placement transaction.
func (s *Service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (Placement, error) {
	// 1. --- Validate before any write ---
	lines, err := s.validate(in)
	if err != nil {
		return Placement{}, err
	}

	ids := make([]int64, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if s.opts.TxTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.TxTimeout)
		defer cancel()
	}

	var (
		placed Placement
		note   models.Notification
	)

	// 2. --- Run the unit ---
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		// a. Lock the product rows, lowest id first.
		products, err := tx.LockProducts(ctx, ids)
		if err != nil {
			return fmt.Errorf("lock products: %w", err)
		}

		// b. Check every line against its locked row and snapshot it.
		items := make([]models.OrderItem, 0, len(lines))
		for _, l := range lines {
			p, ok := products[l.ProductID]
			if !ok {
				return apperr.NotFound(fmt.Sprintf("Product %d not found", l.ProductID))
			}
			if s.opts.PricePolicy != config.PricePolicyCatalog && !l.Price.Equal(p.Price) {
				return apperr.Conflict(fmt.Sprintf("Price changed for %s: now %s", p.Name, p.Price.StringFixed(2)))
			}
			if !s.opts.AllowBackorder && p.Stock < l.Quantity {
				return apperr.Conflict(fmt.Sprintf("Insufficient stock for %s: %d available", p.Name, p.Stock))
			}
			pid := p.ID
			items = append(items, models.OrderItem{
				ProductID:    &pid,
				ProductName:  p.Name,
				ProductImage: p.Image,
				Quantity:     l.Quantity,
				Price:        p.Price,
			})
		}

		// c. Price and insert the order.
		totals := s.opts.Pricing.Compute(items)
		userID := in.UserID
		order := models.Order{
			UserID:          &userID,
			OrderNumber:     s.newNumber(s.now()),
			Subtotal:        totals.Subtotal,
			Shipping:        totals.Shipping,
			Tax:             totals.Tax,
			Total:           totals.Total,
			Status:          models.OrderStatusPending,
			PaymentMethod:   in.PaymentMethod,
			PaymentStatus:   models.PaymentStatusPending,
			ShippingAddress: in.ShippingAddress,
			ItemsCount:      len(items),
		}
		if err := tx.InsertOrder(ctx, &order); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		// d. Snapshot the items and take the stock.
		for i := range items {
			items[i].OrderID = order.ID
			if err := tx.InsertItem(ctx, &items[i]); err != nil {
				return fmt.Errorf("insert item %d: %w", i+1, err)
			}
			if err := tx.DecrementStock(ctx, *items[i].ProductID, items[i].Quantity); err != nil {
				return fmt.Errorf("decrement stock for product %d: %w", *items[i].ProductID, err)
			}
		}

		// e. Empty the cart.
		if err := tx.ClearCart(ctx, in.UserID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		// f. Tell the user.
		note = notifications.OrderPlaced(in.UserID, order.OrderNumber)
		if err := tx.AddNotification(ctx, &note, s.opts.Retention); err != nil {
			return fmt.Errorf("add notification: %w", err)
		}

		placed = Placement{Order: order, Items: items}
		return nil
	})
	if err != nil {
		return Placement{}, s.txError(ctx, "place order", "Failed to place order", in.UserID, err)
	}

	// 3. --- Push after commit ---
	if s.pub != nil {
		s.pub.Publish(in.UserID, note)
	}

	s.log.InfoContext(ctx, "order placed",
		"user_id", in.UserID,
		"order_id", placed.Order.ID,
		"order_number", placed.Order.OrderNumber,
		"total", placed.Order.Total.StringFixed(2),
	)
	return placed, nil
}

// UpdateStatus moves an order forward along its lifecycle and appends an
// "Order Update" notification in the same transaction.
func (s *Service) UpdateStatus(ctx context.Context, userID, orderID int64, next models.OrderStatus) (models.Order, error) {
	if !next.Valid() {
		return models.Order{}, apperr.Validation(fmt.Sprintf("Unknown order status %q", next))
	}

	if s.opts.TxTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.TxTimeout)
		defer cancel()
	}

	var (
		updated models.Order
		note    models.Notification
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		o, err := tx.LockOrder(ctx, userID, orderID)
		if err != nil {
			if errors.Is(err, ErrOrderNotFound) {
				return apperr.NotFound("Order not found")
			}
			return fmt.Errorf("lock order: %w", err)
		}
		if !o.Status.CanTransitionTo(next) {
			return apperr.Conflict(fmt.Sprintf("Cannot change order status from %s to %s", o.Status, next))
		}

		o.Status = next
		if err := tx.SetStatus(ctx, &o); err != nil {
			return fmt.Errorf("set status: %w", err)
		}

		note = notifications.StatusChanged(userID, next)
		if err := tx.AddNotification(ctx, &note, s.opts.Retention); err != nil {
			return fmt.Errorf("add notification: %w", err)
		}
		updated = o
		return nil
	})
	if err != nil {
		return models.Order{}, s.txError(ctx, "update order status", "Failed to update order status", userID, err)
	}

	if s.pub != nil {
		s.pub.Publish(userID, note)
	}
	return updated, nil
}

// txError maps a rolled back unit onto the caller-facing taxonomy and logs
// the cause.
func (s *Service) txError(ctx context.Context, op, msg string, userID int64, err error) error {
	var appErr *apperr.Error
	switch {
	case errors.As(err, &appErr) && apperr.KindOf(err) != apperr.KindInternal:
		if appErr.Kind == apperr.KindTransaction || appErr.Kind == apperr.KindUnavailable {
			s.log.ErrorContext(ctx, op+" failed", "user_id", userID, "error", err)
		}
		return err
	case errors.Is(err, context.DeadlineExceeded):
		s.log.ErrorContext(ctx, op+" timed out", "user_id", userID, "error", err)
		return apperr.Unavailable("Request timed out, please retry", err)
	default:
		s.log.ErrorContext(ctx, op+" rolled back", "user_id", userID, "error", err)
		return apperr.Transaction(msg, err)
	}
}

func (s *Service) List(ctx context.Context, userID int64) ([]models.Order, error) {
	list, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Failed to get orders", err)
	}
	if list == nil {
		list = []models.Order{}
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, userID, orderID int64) (Placement, error) {
	o, items, err := s.store.Get(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return Placement{}, apperr.NotFound("Order not found")
		}
		return Placement{}, apperr.Internal("Failed to get order", err)
	}
	if items == nil {
		items = []models.OrderItem{}
	}
	return Placement{Order: o, Items: items}, nil
}

func (s *Service) Count(ctx context.Context, userID int64) (int64, error) {
	return s.store.Count(ctx, userID)
}
