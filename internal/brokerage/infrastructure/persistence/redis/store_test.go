package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/hguiagoussou/brokeragesim/internal/brokerage/domain"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client, time.Second, nil), mr
}

func TestStoreGetSet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, found, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, store.Set(ctx, "k", "v"))
	val, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v", val)
}

func TestStoreSetNXReservesOnce(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	won, err := store.SetNX(ctx, "reserve", "run-1")
	require.NoError(t, err)
	require.True(t, won)

	won, err = store.SetNX(ctx, "reserve", "run-2")
	require.NoError(t, err)
	require.False(t, won)

	val, found, err := store.Get(ctx, "reserve")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "run-1", val)
}

func TestStoreHashFields(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	fields, err := store.GetAllFields(ctx, "missing")
	require.NoError(t, err)
	require.Empty(t, fields)

	require.NoError(t, store.SetFields(ctx, "h", map[string]string{"a": "1", "b": "2"}))
	require.NoError(t, store.SetField(ctx, "h", "c", "3"))

	fields, err = store.GetAllFields(ctx, "h")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"a": "1", "b": "2", "c": "3"}, fields)

	val, found, err := store.GetField(ctx, "h", "b")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "2", val)

	_, found, err = store.GetField(ctx, "h", "z")
	require.NoError(t, err)
	require.False(t, found)
}

func TestStoreListPreservesOrder(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "l", "a"))
	require.NoError(t, store.Append(ctx, "l", "b", "c"))

	vals, err := store.Range(ctx, "l", 0, -1)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, vals)

	vals, err = store.Range(ctx, "empty", 0, -1)
	require.NoError(t, err)
	require.Empty(t, vals)
}

func TestStoreScanKeys(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "account:ACC-1", "x"))
	require.NoError(t, store.Set(ctx, "account:ACC-2", "x"))
	require.NoError(t, store.Set(ctx, "investor:INV-1", "x"))

	keys, err := store.ScanKeys(ctx, "account:*")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"account:ACC-1", "account:ACC-2"}, keys)

	// The pattern the broken join substitute relied on: account ids carry no
	// investor prefix, so the scan finds nothing.
	keys, err = store.ScanKeys(ctx, "account:INV-1*")
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestStorePipelineFlushesInOrder(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	pipe := store.Pipeline()
	pipe.SetFields("investor:INV-1", map[string]string{"id": "INV-1"})
	pipe.Set("username:jane@x", "INV-1")
	pipe.Append("investor_keys", "investor:INV-1")
	require.Equal(t, 3, pipe.Len())

	require.NoError(t, pipe.Exec(ctx))

	fields, err := store.GetAllFields(ctx, "investor:INV-1")
	require.NoError(t, err)
	require.Equal(t, "INV-1", fields["id"])

	val, found, err := store.Get(ctx, "username:jane@x")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "INV-1", val)
}

func TestStoreEmptyPipelineExecIsNoop(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Pipeline().Exec(context.Background()))
}

func TestStoreSurfacesUnavailability(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	mr.Close()

	_, _, err := store.Get(ctx, "k")
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)

	err = store.SetFields(ctx, "h", map[string]string{"a": "1"})
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)

	pipe := store.Pipeline()
	pipe.Set("k", "v")
	require.ErrorIs(t, pipe.Exec(ctx), domain.ErrStoreUnavailable)
}
