package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		code      string
		unique    bool
		fk        bool
		retryable bool
	}{
		{"plain error", errors.New("boom"), "", false, false, false},
		{"unique", &pq.Error{Code: CodeUniqueViolation}, CodeUniqueViolation, true, false, false},
		{"wrapped unique", fmt.Errorf("insert user: %w", &pq.Error{Code: CodeUniqueViolation}), CodeUniqueViolation, true, false, false},
		{"foreign key", &pq.Error{Code: CodeForeignKeyViolation}, CodeForeignKeyViolation, false, true, false},
		{"statement timeout", &pq.Error{Code: CodeQueryCanceled}, CodeQueryCanceled, false, false, true},
		{"deadlock", &pq.Error{Code: CodeDeadlockDetected}, CodeDeadlockDetected, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCode(tt.err); got != tt.code {
				t.Errorf("ErrorCode() = %q, want %q", got, tt.code)
			}
			if got := IsUniqueViolation(tt.err); got != tt.unique {
				t.Errorf("IsUniqueViolation() = %v", got)
			}
			if got := IsForeignKeyViolation(tt.err); got != tt.fk {
				t.Errorf("IsForeignKeyViolation() = %v", got)
			}
			if got := IsRetryable(tt.err); got != tt.retryable {
				t.Errorf("IsRetryable() = %v", got)
			}
		})
	}
}

func TestSampleProducts(t *testing.T) {
	products := SampleProducts()
	if len(products) != 10 {
		t.Fatalf("got %d sample products, want 10", len(products))
	}
	for _, p := range products {
		if p.Stock < 0 {
			t.Errorf("%s: negative stock", p.Name)
		}
		if !p.OriginalPrice.GreaterThan(p.Price) {
			t.Errorf("%s: original price %s not above price %s", p.Name, p.OriginalPrice, p.Price)
		}
	}
}
