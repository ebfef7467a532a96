package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusPending, OrderStatusDelivered, true},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, true},
		{OrderStatusShipped, OrderStatusPending, false},
		{OrderStatusPending, OrderStatusPending, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusProcessing, false},
		{OrderStatusPending, OrderStatus("refunded"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Fatalf("CanTransitionTo = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPaymentMethodValid(t *testing.T) {
	for _, m := range []PaymentMethod{PaymentCard, PaymentMpesa, PaymentPayPal, PaymentCrypto, PaymentBankTransfer, PaymentCOD} {
		if !m.Valid() {
			t.Errorf("%q should be valid", m)
		}
	}
	if PaymentMethod("cheque").Valid() {
		t.Error("cheque should be rejected")
	}
}

func TestShippingAddressMissing(t *testing.T) {
	a := ShippingAddress{Name: "Ada", Street: "  ", City: "Nairobi"}
	got := a.Missing()
	if len(got) != 2 || got[0] != "street" || got[1] != "country" {
		t.Fatalf("Missing = %v, want [street country]", got)
	}
	a.Street, a.Country = "1 Loop Rd", "KE"
	if m := a.Missing(); len(m) != 0 {
		t.Fatalf("Missing = %v, want none", m)
	}
}

func TestShippingAddressValueScan(t *testing.T) {
	in := ShippingAddress{Name: "Ada", Street: "1 Loop Rd", City: "Nairobi", Country: "KE"}
	v, err := in.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	s, ok := v.(string)
	if !ok {
		t.Fatalf("Value type = %T, want string", v)
	}

	var fromText, fromBytes ShippingAddress
	if err := fromText.Scan(s); err != nil {
		t.Fatalf("Scan(string): %v", err)
	}
	if err := fromBytes.Scan([]byte(s)); err != nil {
		t.Fatalf("Scan([]byte): %v", err)
	}
	if fromText != in || fromBytes != in {
		t.Fatalf("scanned %+v / %+v, want %+v", fromText, fromBytes, in)
	}
	if err := fromText.Scan(42); err == nil {
		t.Fatal("Scan(int) should fail")
	}
}

func TestOrderItemLineTotal(t *testing.T) {
	it := OrderItem{Price: decimal.RequireFromString("19.99"), Quantity: 3}
	if got := it.LineTotal().StringFixed(2); got != "59.97" {
		t.Fatalf("LineTotal = %s", got)
	}
}

func TestDecimalMarshalsAsNumber(t *testing.T) {
	b, err := json.Marshal(OrderLine{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("9.5")})
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"productId":1,"quantity":2,"price":9.5}`; string(b) != want {
		t.Fatalf("got %s, want %s", b, want)
	}
}
