package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"srtm-gateway/internal/audit"
)

func TestInMemoryStoreInsertAndList(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, audit.Record{IMEI: "355195000000017", MessageType: "1001"}))
	require.NoError(t, store.Insert(ctx, audit.Record{IMEI: "355195000000025", MessageType: "2001"}))

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(1), records[0].ID)
	assert.Equal(t, int64(2), records[1].ID)
	assert.Equal(t, "1001", records[0].MessageType)
}

func TestInMemoryStoreFindByIMEI(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, audit.Record{IMEI: "355195000000017", MessageType: "1001"}))
	require.NoError(t, store.Insert(ctx, audit.Record{IMEI: "355195000000025", MessageType: "2001"}))
	require.NoError(t, store.Insert(ctx, audit.Record{IMEI: "355195000000017", MessageType: "3001"}))

	records, err := store.FindByIMEI(ctx, "355195000000017")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1001", records[0].MessageType)
	assert.Equal(t, "3001", records[1].MessageType)

	none, err := store.FindByIMEI(ctx, "000000000000000")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestInMemoryStoreConcurrentInserts(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	const n = 100
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Insert(ctx, audit.Record{IMEI: "355195000000017"})
		}()
	}
	wg.Wait()

	records, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, n)

	ids := make(map[int64]bool, n)
	for _, rec := range records {
		assert.False(t, ids[rec.ID], "duplicate id %d", rec.ID)
		ids[rec.ID] = true
	}
}
