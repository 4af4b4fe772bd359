package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinbridge/checkout-gateway/internal/domain"
)

type fakeExpireStore struct {
	cutoffs []time.Time
	n       int64
	err     error
}

func (f *fakeExpireStore) ExpireStale(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.n, f.err
}

type fakeSettingsLoader struct {
	settings *domain.GatewaySettings
	err      error
}

func (f *fakeSettingsLoader) Load(context.Context) (*domain.GatewaySettings, error) {
	return f.settings, f.err
}

func TestSweep_CutoffIncludesGrace(t *testing.T) {
	store := &fakeExpireStore{n: 2}
	loader := &fakeSettingsLoader{settings: domain.DefaultSettings("merchant-1")}
	sweeper := NewExpirySweeper(store, loader, discardLogger(), time.Minute, 10*time.Minute)

	before := time.Now().UTC()
	sweeper.sweep(context.Background())
	after := time.Now().UTC()

	require.Len(t, store.cutoffs, 1)
	lifetime := time.Duration(domain.DefaultPaymentTimeoutMinutes) * time.Minute
	cutoff := store.cutoffs[0]
	assert.False(t, cutoff.Before(before.Add(-(lifetime + 10*time.Minute))))
	assert.False(t, cutoff.After(after.Add(-(lifetime + 10*time.Minute))))
}

func TestSweep_SkipsWhenSettingsUnavailable(t *testing.T) {
	store := &fakeExpireStore{}
	loader := &fakeSettingsLoader{err: errors.New("db down")}
	sweeper := NewExpirySweeper(store, loader, discardLogger(), time.Minute, 10*time.Minute)

	sweeper.sweep(context.Background())

	assert.Empty(t, store.cutoffs)
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	sweeper := NewExpirySweeper(&fakeExpireStore{}, &fakeSettingsLoader{settings: domain.DefaultSettings("m")}, discardLogger(), time.Hour, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}
}
