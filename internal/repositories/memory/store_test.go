package memory

import (
	"context"
	"testing"
	"time"

	"github.com/payflo/money_transfer_app/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTransfers(t *testing.T, store *Store, accountID string, n int) {
	t.Helper()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		require.NoError(t, store.AppendTransfer(context.Background(), domain.TransferRecord{
			TransferID: string(rune('a'+i)) + "-transfer",
			SenderID:   accountID,
			ReceiverID: "other",
			Amount:     int64(100 + i),
			Status:     domain.TransferSuccess,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}
}

// Repeating the same participant query with no intervening appends must
// return identical ordered results, on the first page and on cursor pages.
func TestListTransfersByParticipant_RepeatQueryIsStable(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	seedTransfers(t, store, "acct-1", 5)

	first, token, err := store.ListTransfersByParticipant(ctx, "acct-1", 3, nil)
	require.NoError(t, err)
	require.Len(t, first, 3)
	require.NotNil(t, token)

	firstAgain, tokenAgain, err := store.ListTransfersByParticipant(ctx, "acct-1", 3, nil)
	require.NoError(t, err)
	assert.Equal(t, first, firstAgain)
	require.NotNil(t, tokenAgain)
	assert.Equal(t, *token, *tokenAgain)

	second, _, err := store.ListTransfersByParticipant(ctx, "acct-1", 3, token)
	require.NoError(t, err)
	require.Len(t, second, 2)

	secondAgain, _, err := store.ListTransfersByParticipant(ctx, "acct-1", 3, tokenAgain)
	require.NoError(t, err)
	assert.Equal(t, second, secondAgain)
}

// Records sharing a timestamp still get a total order via the transfer ID
// tie-break, so re-queries cannot reshuffle them.
func TestListTransfersByParticipant_TiedTimestampsAreOrdered(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for _, id := range []string{"t-b", "t-a", "t-c"} {
		require.NoError(t, store.AppendTransfer(ctx, domain.TransferRecord{
			TransferID: id,
			SenderID:   "acct-1",
			ReceiverID: "other",
			Amount:     100,
			Status:     domain.TransferSuccess,
			CreatedAt:  at,
		}))
	}

	records, _, err := store.ListTransfersByParticipant(ctx, "acct-1", 10, nil)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "t-c", records[0].TransferID)
	assert.Equal(t, "t-b", records[1].TransferID)
	assert.Equal(t, "t-a", records[2].TransferID)

	again, _, err := store.ListTransfersByParticipant(ctx, "acct-1", 10, nil)
	require.NoError(t, err)
	assert.Equal(t, records, again)
}
