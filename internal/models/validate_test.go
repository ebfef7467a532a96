package models

import (
	"reflect"
	"testing"
)

func TestInvalidFields(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{"valid address", Address{Type: AddressWork, Street: "1 Loop Rd", City: "Nairobi", Country: "KE"}, nil},
		{"json names in order", Address{Type: "villa", Street: " \t", City: "Nairobi"}, []string{"type", "street", "country"}},
		{"blank shipping", ShippingAddress{}, []string{"name", "street", "city", "country"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InvalidFields(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("InvalidFields = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []OrderStatus{"", "lost", "Pending"} {
		if s.Valid() {
			t.Errorf("%q should be rejected", s)
		}
	}
}
