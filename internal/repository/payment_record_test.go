package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinbridge/checkout-gateway/internal/domain"
	"github.com/coinbridge/checkout-gateway/internal/testutil"
)

func TestPaymentRecordInsert_DuplicatePendingOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := NewPaymentRecordRepository(db)

	now := time.Now().UTC()
	testutil.SeedPaymentRecord(t, db, "order-1", "inv-1", domain.PaymentStatusPending, now)

	err := repo.Insert(ctx, testutil.NewPaymentRecord("order-1", "inv-2", now))
	assert.ErrorIs(t, err, domain.ErrDuplicateOrder)
}

func TestPaymentRecordInsert_NewInvoiceAfterTerminal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := NewPaymentRecordRepository(db)

	now := time.Now().UTC()
	testutil.SeedPaymentRecord(t, db, "order-1", "inv-1", domain.PaymentStatusFailed, now)

	// A failed invoice does not block the customer from retrying checkout.
	err := repo.Insert(ctx, testutil.NewPaymentRecord("order-1", "inv-2", now))
	require.NoError(t, err)

	found, err := repo.GetActiveByOrderID(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, "inv-2", found.RemoteInvoiceID)
}

func TestGetByRemoteInvoiceID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewPaymentRecordRepository(db)

	_, err := repo.GetByRemoteInvoiceID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransition(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := NewPaymentRecordRepository(db)

	now := time.Now().UTC()
	testutil.SeedPaymentRecord(t, db, "order-1", "inv-1", domain.PaymentStatusPending, now)

	outcome, err := repo.Transition(ctx, "inv-1", domain.PaymentStatusPaid, nil)
	require.NoError(t, err)
	assert.Equal(t, TransitionApplied, outcome)

	rec, err := repo.GetByRemoteInvoiceID(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, rec.Status)
	require.NotNil(t, rec.PaidAt)

	// Duplicate delivery of the same terminal state is a silent no-op.
	outcome, err = repo.Transition(ctx, "inv-1", domain.PaymentStatusPaid, nil)
	require.NoError(t, err)
	assert.Equal(t, TransitionDuplicate, outcome)

	// The first terminal state wins; a contradicting target is rejected
	// without error and without mutation.
	reason := "expired"
	outcome, err = repo.Transition(ctx, "inv-1", domain.PaymentStatusFailed, &reason)
	require.NoError(t, err)
	assert.Equal(t, TransitionConflict, outcome)

	rec, err = repo.GetByRemoteInvoiceID(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, rec.Status)
	assert.Nil(t, rec.FailureReason)
}

func TestTransition_FirstFailureWins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := NewPaymentRecordRepository(db)

	testutil.SeedPaymentRecord(t, db, "order-1", "inv-1", domain.PaymentStatusPending, time.Now().UTC())

	reason := "not-paid"
	outcome, err := repo.Transition(ctx, "inv-1", domain.PaymentStatusFailed, &reason)
	require.NoError(t, err)
	assert.Equal(t, TransitionApplied, outcome)

	outcome, err = repo.Transition(ctx, "inv-1", domain.PaymentStatusPaid, nil)
	require.NoError(t, err)
	assert.Equal(t, TransitionConflict, outcome)

	rec, err := repo.GetByRemoteInvoiceID(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusFailed, rec.Status)
	require.NotNil(t, rec.FailureReason)
	assert.Equal(t, "not-paid", *rec.FailureReason)
}

func TestTransition_RejectsNonTerminalTarget(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewPaymentRecordRepository(db)

	testutil.SeedPaymentRecord(t, db, "order-1", "inv-1", domain.PaymentStatusPending, time.Now().UTC())

	_, err := repo.Transition(context.Background(), "inv-1", domain.PaymentStatusPending, nil)
	assert.ErrorIs(t, err, domain.ErrTerminalState)
}

func TestTransition_UnknownInvoice(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewPaymentRecordRepository(db)

	_, err := repo.Transition(context.Background(), "missing", domain.PaymentStatusPaid, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExpireStale(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := NewPaymentRecordRepository(db)

	now := time.Now().UTC()
	testutil.SeedPaymentRecord(t, db, "order-old", "inv-old", domain.PaymentStatusPending, now.Add(-3*time.Hour))
	testutil.SeedPaymentRecord(t, db, "order-new", "inv-new", domain.PaymentStatusPending, now)
	testutil.SeedPaymentRecord(t, db, "order-paid", "inv-paid", domain.PaymentStatusPaid, now.Add(-3*time.Hour))

	n, err := repo.ExpireStale(ctx, now.Add(-2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.Equal(t, domain.PaymentStatusFailed, testutil.GetRecordStatus(t, db, "inv-old"))
	assert.Equal(t, domain.PaymentStatusPending, testutil.GetRecordStatus(t, db, "inv-new"))
	assert.Equal(t, domain.PaymentStatusPaid, testutil.GetRecordStatus(t, db, "inv-paid"))

	stale, err := repo.GetByRemoteInvoiceID(ctx, "inv-old")
	require.NoError(t, err)
	require.NotNil(t, stale.FailureReason)
	assert.Equal(t, "expired", *stale.FailureReason)
}
