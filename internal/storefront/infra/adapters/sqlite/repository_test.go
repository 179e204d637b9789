package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/tradehub/internal/storefront/core/domain/entity"
)

func openTemp(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "storefront.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.db")
	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer second.Close()
	assert.NoError(t, second.Ping(context.Background()))
}

func TestWebhookLogs(t *testing.T) {
	ctx := context.Background()
	repo := openTemp(t)
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	processed := base.Add(time.Second)

	require.NoError(t, repo.SaveWebhook(ctx, &entity.WebhookLog{
		ID: "wh_1", Reference: "REF-1", PaymentStatus: entity.PaymentSuccess, Amount: 3188,
		SignatureValid: true, Processed: true, ProcessedAt: &processed, CreatedAt: base,
	}))
	require.NoError(t, repo.SaveWebhook(ctx, &entity.WebhookLog{
		ID: "wh_2", Reference: "REF-2", PaymentStatus: entity.PaymentFailed, Amount: 10,
		ErrorMessage: "invalid signature", CreatedAt: base.Add(time.Minute),
	}))

	all, err := repo.ListWebhooks(ctx, entity.WebhookFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "wh_2", all[0].ID)
	assert.Equal(t, "invalid signature", all[0].ErrorMessage)
	assert.Nil(t, all[0].ProcessedAt)
	assert.False(t, all[0].SignatureValid)

	assert.True(t, all[1].Processed)
	require.NotNil(t, all[1].ProcessedAt)
	assert.True(t, processed.Equal(*all[1].ProcessedAt))
	assert.Equal(t, 3188.0, all[1].Amount)

	success, err := repo.ListWebhooks(ctx, entity.WebhookFilter{Status: entity.PaymentSuccess})
	require.NoError(t, err)
	require.Len(t, success, 1)
	assert.Equal(t, "REF-1", success[0].Reference)

	paged, err := repo.ListWebhooks(ctx, entity.WebhookFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "wh_1", paged[0].ID)

	n, err := repo.CountWebhooks(ctx, entity.WebhookFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.CountWebhooks(ctx, entity.WebhookFilter{Status: entity.PaymentFailed, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCheckoutHistory(t *testing.T) {
	ctx := context.Background()
	repo := openTemp(t)
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	entries := []entity.CheckoutLog{
		{CheckoutID: "chk_1", Status: entity.CheckoutStarted, Payload: `{"items":1}`, UpdatedAt: base},
		{CheckoutID: "chk_2", Status: entity.CheckoutStarted, UpdatedAt: base},
		{CheckoutID: "chk_1", Status: entity.CheckoutStepDone, CurrentStep: "create_order", TraceID: "abc", SpanID: "def", UpdatedAt: base.Add(time.Millisecond)},
		{CheckoutID: "chk_1", Status: entity.CheckoutFailed, CurrentStep: "initiate_payment", ErrorMessages: `["boom"]`, UpdatedAt: base.Add(2 * time.Millisecond)},
	}
	for i := range entries {
		require.NoError(t, repo.AppendCheckout(ctx, &entries[i]))
	}

	history, err := repo.CheckoutHistory(ctx, "chk_1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, entity.CheckoutStarted, history[0].Status)
	assert.Equal(t, `{"items":1}`, history[0].Payload)
	assert.Equal(t, "[]", history[0].ErrorMessages)
	assert.Equal(t, "abc", history[1].TraceID)
	assert.Equal(t, `["boom"]`, history[2].ErrorMessages)
	assert.Empty(t, history[2].Payload)

	none, err := repo.CheckoutHistory(ctx, "chk_missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}
