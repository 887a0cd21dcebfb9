package support

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRetryLedgerCounts(t *testing.T) {
	ledger := NewRetryLedger()

	assert.Zero(t, ledger.Count("listing_52"))
	assert.Equal(t, 1, ledger.Increment("listing_52"))
	assert.Equal(t, 2, ledger.Increment("listing_52"))
	assert.Equal(t, 1, ledger.Increment("user_52"), "keys are independent per operation")

	ledger.Reset("listing_52")
	assert.Zero(t, ledger.Count("listing_52"))
	assert.Equal(t, 1, ledger.Count("user_52"), "reset touches only its own key")

	// Resetting an absent key is a no-op.
	ledger.Reset("missing")
}

func TestRetryLedgerConcurrentIncrement(t *testing.T) {
	ledger := NewRetryLedger()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ledger.Increment("user_500")
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, ledger.Count("user_500"))
}
