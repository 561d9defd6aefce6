package integration

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two purchases race for a balance that covers only one of them.
// The transactor serializes transactions, so exactly one must win.
func TestConcurrentDebitsSingleWinner(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.deposit(t, "buyer", 3000)
	token := app.token(t, "buyer")

	var created, rejected int64
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, _ := app.doJSON(t, http.MethodPost, "/api/v1/purchases/primary", token, map[string]interface{}{
				"seller_id": "seller",
				"item_id":   "item-1",
				"amount":    2500,
			})
			switch resp.StatusCode {
			case http.StatusCreated:
				atomic.AddInt64(&created, 1)
			case http.StatusPaymentRequired:
				atomic.AddInt64(&rejected, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), created)
	assert.Equal(t, int64(1), rejected)

	assert.Equal(t, int64(500), app.getBalance(t, "buyer"))
	assert.Equal(t, int64(2500), app.getBalance(t, "seller"))
	app.assertLedgerMatchesBalances(t)
}

// Many concurrent credits to the same wallet must all land.
func TestConcurrentCreditsAllLand(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	const workers = 10
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.deposit(t, "artist", 100)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(workers*100), app.getBalance(t, "artist"))

	history, err := app.walletSvc.ListTransactions(context.Background(), "artist", 50)
	require.NoError(t, err)
	assert.Len(t, history, workers)
	app.assertLedgerMatchesBalances(t)
}

// Concurrent redeliveries of one payment event settle exactly once.
func TestConcurrentWebhookDeliveries(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	payload, sig := signedSettlementEvent(t, "cs_race_1", 4500, "buyer", "seller", "item-1", "8x10")

	const deliveries = 5
	var wg sync.WaitGroup
	var okCount int64
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := postWebhook(t, app, payload, sig)
			if resp.StatusCode == http.StatusOK {
				atomic.AddInt64(&okCount, 1)
			}
		}()
	}
	wg.Wait()

	// Every delivery is acknowledged, exactly one settles.
	assert.Equal(t, int64(deliveries), okCount)
	assert.Equal(t, 1, app.orderRepo.count())
	assert.Equal(t, int64(1980), app.getBalance(t, "seller"))
	assert.Equal(t, int64(1320), app.getBalance(t, platformAccountID))
	app.assertLedgerMatchesBalances(t)
}
