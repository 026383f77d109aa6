package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeClearsPaymentDate(t *testing.T) {
	paid := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		kind     TransactionKind
		status   TransactionStatus
		wantKept bool
	}{
		{name: "paid expense keeps date", kind: KindExpense, status: StatusPaid, wantKept: true},
		{name: "pending expense drops date", kind: KindExpense, status: StatusPending},
		{name: "paid income drops date", kind: KindIncome, status: StatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := Transaction{Kind: tt.kind, Status: tt.status, PaymentDate: &paid}
			txn.Normalize()
			if tt.wantKept {
				assert.NotNil(t, txn.PaymentDate)
			} else {
				assert.Nil(t, txn.PaymentDate)
			}
		})
	}
}

func TestDueIn(t *testing.T) {
	txn := Transaction{Date: time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)}

	assert.True(t, txn.DueIn(2024, time.March))
	assert.False(t, txn.DueIn(2024, time.April))
	assert.False(t, txn.DueIn(2023, time.March))
}
