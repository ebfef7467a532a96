package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// statusRank orders the forward path. Cancelled sits outside it.
var statusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusProcessing: 1,
	OrderStatusShipped:    2,
	OrderStatusDelivered:  3,
}

func (s OrderStatus) Valid() bool {
	return Validator.Var(string(s), "oneof=pending processing shipped delivered cancelled") == nil
}

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo allows forward moves along
// pending → processing → shipped → delivered, and cancellation from any
// non-terminal state. Staying in place is not a transition.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.Terminal() || !next.Valid() || s == next {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	return statusRank[next] > statusRank[s]
}

// PaymentMethod is how the shopper chose to pay. Only the choice is
// recorded; no gateway is contacted.
type PaymentMethod string

const (
	PaymentCard         PaymentMethod = "card"
	PaymentMpesa        PaymentMethod = "mpesa"
	PaymentPayPal       PaymentMethod = "paypal"
	PaymentCrypto       PaymentMethod = "crypto"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCOD          PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	return Validator.Var(string(m), "oneof=card mpesa paypal crypto bank_transfer cod") == nil
}

const PaymentStatusPending = "pending"

// ShippingAddress is stored as JSONB on the order row.
type ShippingAddress struct {
	Name    string `json:"name" validate:"notblank"`
	Street  string `json:"street" validate:"notblank"`
	City    string `json:"city" validate:"notblank"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`
	Country string `json:"country" validate:"notblank"`
	Phone   string `json:"phone,omitempty"`
}

// Missing lists the required fields that are blank.
func (a ShippingAddress) Missing() []string {
	return InvalidFields(a)
}

// Value encodes the address as JSON text; lib/pq would send raw bytes as
// bytea, which JSONB rejects.
func (a ShippingAddress) Value() (driver.Value, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *ShippingAddress) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = ShippingAddress{}
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("shipping address: unsupported type %T", src)
	}
}

// Order is the model for the 'orders' table.
type Order struct {
	ID              int64           `json:"id" db:"id"`
	UserID          *int64          `json:"userId" db:"user_id"` // NULL once the owner is deleted
	OrderNumber     string          `json:"orderNumber" db:"order_number"`
	Subtotal        decimal.Decimal `json:"subtotal" db:"subtotal"`
	Shipping        decimal.Decimal `json:"shipping" db:"shipping"`
	Tax             decimal.Decimal `json:"tax" db:"tax"`
	Total           decimal.Decimal `json:"total" db:"total"`
	Status          OrderStatus     `json:"status" db:"status"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod" db:"payment_method"`
	PaymentStatus   string          `json:"paymentStatus" db:"payment_status"`
	ShippingAddress ShippingAddress `json:"shippingAddress" db:"shipping_address"`
	ItemsCount      int             `json:"itemsCount" db:"items_count"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem is an immutable snapshot of a purchased line.
type OrderItem struct {
	ID           int64           `json:"id" db:"id"`
	OrderID      int64           `json:"orderId" db:"order_id"`
	ProductID    *int64          `json:"productId" db:"product_id"` // NULL once the product is deleted
	ProductName  string          `json:"productName" db:"product_name"`
	ProductImage string          `json:"productImage" db:"product_image"`
	Quantity     int             `json:"quantity" db:"quantity"`
	Price        decimal.Decimal `json:"price" db:"price"` // Price at the time of purchase
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
}

// LineTotal is Price × Quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderLine is one line of a checkout request: the product, how many, and
// the unit price the shopper was shown.
type OrderLine struct {
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}
