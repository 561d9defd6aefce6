package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWallet_CanDebit(t *testing.T) {
	tests := []struct {
		name    string
		balance int64
		amount  int64
		want    bool
	}{
		{"sufficient", 1000, 500, true},
		{"exact balance", 1000, 1000, true},
		{"insufficient", 400, 500, false},
		{"zero amount", 1000, 0, false},
		{"negative amount", 1000, -100, false},
		{"empty wallet", 0, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &Wallet{Balance: tt.balance}
			assert.Equal(t, tt.want, w.CanDebit(tt.amount))
		})
	}
}

func TestTransaction_IsCredit(t *testing.T) {
	assert.True(t, (&Transaction{Amount: 500}).IsCredit())
	assert.False(t, (&Transaction{Amount: -500}).IsCredit())
	assert.False(t, (&Transaction{Amount: 0}).IsCredit())
}

func TestTransactionType_CountsAsEarnings(t *testing.T) {
	tests := []struct {
		txType TransactionType
		want   bool
	}{
		{TransactionTypeSale, true},
		{TransactionTypeRoyalty, true},
		{TransactionTypePurchase, false},
		{TransactionTypeDeposit, false},
		{TransactionTypeRefund, false},
		{TransactionTypeFee, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.txType), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.txType.CountsAsEarnings())
		})
	}
}

func TestTransactionType_CountsAsSpending(t *testing.T) {
	assert.True(t, TransactionTypePurchase.CountsAsSpending())
	assert.False(t, TransactionTypeWithdrawal.CountsAsSpending())
	assert.False(t, TransactionTypeFee.CountsAsSpending())
}

func TestOrder_IsSettled(t *testing.T) {
	tests := []struct {
		name   string
		status OrderStatus
		want   bool
	}{
		{"pending", OrderStatusPending, false},
		{"paid", OrderStatusPaid, true},
		{"failed", OrderStatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{Status: tt.status}
			assert.Equal(t, tt.want, o.IsSettled())
		})
	}
}

func TestShopItem_SizeByID(t *testing.T) {
	item := &ShopItem{
		PrintSizes: []PrintSize{
			{ID: "8x10", Label: `8" x 10"`, Price: 2500},
			{ID: "16x20", Label: `16" x 20"`, Price: 4500},
		},
	}

	sz, ok := item.SizeByID("16x20")
	assert.True(t, ok)
	assert.Equal(t, int64(4500), sz.Price)

	_, ok = item.SizeByID("24x36")
	assert.False(t, ok)
}

func TestPriceForBoost(t *testing.T) {
	tests := []struct {
		level BoostLevel
		price int64
		ok    bool
	}{
		{BoostLevelBasic, 99, true},
		{BoostLevelFeatured, 299, true},
		{BoostLevelPremium, 499, true},
		{BoostLevel(0), 0, false},
		{BoostLevel(4), 0, false},
	}

	for _, tt := range tests {
		price, ok := PriceForBoost(tt.level)
		assert.Equal(t, tt.ok, ok, "level %d", tt.level)
		assert.Equal(t, tt.price, price, "level %d", tt.level)
	}
}

func TestTransactionType_Constants(t *testing.T) {
	assert.Equal(t, TransactionType("sale"), TransactionTypeSale)
	assert.Equal(t, TransactionType("purchase"), TransactionTypePurchase)
	assert.Equal(t, TransactionType("royalty"), TransactionTypeRoyalty)
	assert.Equal(t, TransactionType("refund"), TransactionTypeRefund)
	assert.Equal(t, TransactionType("deposit"), TransactionTypeDeposit)
	assert.Equal(t, TransactionType("withdrawal"), TransactionTypeWithdrawal)
	assert.Equal(t, TransactionType("fee"), TransactionTypeFee)
}
