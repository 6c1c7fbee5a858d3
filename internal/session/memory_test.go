package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beespeak/honeypot/internal/intel"
)

func testMeta() Metadata {
	return Metadata{Channel: "SMS", Language: "English", Locale: "IN"}
}

func TestMemoryStoreTurnAccumulates(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first, err := store.StoreTurn(ctx, "s1", testMeta(), 0.95, true, intel.Indicators{
		PhoneNumbers: []string{"+919876543210"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.TurnCount)
	assert.True(t, first.LatestScamDetected)
	assert.Equal(t, []string{"+919876543210"}, first.Indicators.PhoneNumbers)

	second, err := store.StoreTurn(ctx, "s1", testMeta(), 0.2, false, intel.Indicators{
		PhoneNumbers: []string{"+919876543210"},
		UPIIDs:       []string{"a@okbank"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.TurnCount)

	// verdict reflects the latest turn, not a running maximum
	assert.False(t, second.LatestScamDetected)
	assert.Equal(t, 0.2, second.LatestScamConfidence)

	// indicators only grow
	assert.Equal(t, []string{"+919876543210"}, second.Indicators.PhoneNumbers)
	assert.Equal(t, []string{"a@okbank"}, second.Indicators.UPIIDs)
}

func TestMemoryStoreMetadataLastWriteWins(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.StoreTurn(ctx, "s1", Metadata{Channel: "SMS", Language: "Hindi", Locale: "IN"}, 0, false, intel.Indicators{})
	require.NoError(t, err)
	state, err := store.StoreTurn(ctx, "s1", Metadata{Channel: "WhatsApp", Language: "English", Locale: "IN"}, 0, false, intel.Indicators{})
	require.NoError(t, err)
	assert.Equal(t, "WhatsApp", state.Channel)
	assert.Equal(t, "English", state.Language)
}

func TestMemoryStoreReturnsSnapshots(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	state, err := store.StoreTurn(ctx, "s1", testMeta(), 0.95, true, intel.Indicators{
		UPIIDs: []string{"a@okbank"},
	})
	require.NoError(t, err)

	// mutating the returned copy must not leak into the store
	state.Indicators.UPIIDs[0] = "tampered"
	state.TurnCount = 99

	fresh, err := store.StoreTurn(ctx, "s1", testMeta(), 0.95, true, intel.Indicators{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@okbank"}, fresh.Indicators.UPIIDs)
	assert.Equal(t, 2, fresh.TurnCount)
}

func TestMemoryStoreCallbackLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	cb, err := store.GetCallbackStatus(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, cb.Sent)
	assert.Empty(t, cb.IdempotencyKey)

	key := "final-result:s1"
	status := "attempted"
	cb, err = store.UpdateCallbackStatus(ctx, "s1", CallbackUpdate{
		IdempotencyKey: &key,
		LastStatus:     &status,
	})
	require.NoError(t, err)
	assert.Equal(t, key, cb.IdempotencyKey)
	assert.Equal(t, "attempted", cb.LastStatus)
	assert.False(t, cb.Sent)

	sent := true
	done := "success: HTTP 200"
	cb, err = store.UpdateCallbackStatus(ctx, "s1", CallbackUpdate{Sent: &sent, LastStatus: &done})
	require.NoError(t, err)
	assert.True(t, cb.Sent)

	// partial update leaves untouched fields alone
	another := "noop"
	cb, err = store.UpdateCallbackStatus(ctx, "s1", CallbackUpdate{LastStatus: &another})
	require.NoError(t, err)
	assert.True(t, cb.Sent)
	assert.Equal(t, key, cb.IdempotencyKey)
}

func TestMemoryStoreClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.StoreTurn(ctx, "s1", testMeta(), 0.95, true, intel.Indicators{UPIIDs: []string{"a@okbank"}})
	require.NoError(t, err)
	require.NoError(t, store.Clear(ctx, "s1"))

	state, err := store.StoreTurn(ctx, "s1", testMeta(), 0, false, intel.Indicators{})
	require.NoError(t, err)
	assert.Equal(t, 1, state.TurnCount)
	assert.Empty(t, state.Indicators.UPIIDs)
}

func TestMemoryStoreConcurrentTurns(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.StoreTurn(ctx, "s1", testMeta(), 0.95, true, intel.Indicators{
				SuspiciousKeywords: []string{"otp"},
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := store.StoreTurn(ctx, "s1", testMeta(), 0.95, true, intel.Indicators{})
	require.NoError(t, err)
	assert.Equal(t, workers+1, state.TurnCount)
	assert.Equal(t, []string{"otp"}, state.Indicators.SuspiciousKeywords)
}
