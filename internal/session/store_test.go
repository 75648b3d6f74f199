package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client, time.Hour), mr
}

func TestStore_SaveLoad(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()

	sess := New()
	sess.Cart = map[string]CartLine{"3": {Quantity: 2, Price: "10.00"}}
	sess.AddMessage(LevelSuccess, "Book added")
	require.True(t, sess.Modified())
	require.NoError(t, store.Save(ctx, sess))
	assert.False(t, sess.Modified())
	assert.True(t, mr.Exists(keyPrefix+sess.ID))
	assert.Equal(t, time.Hour, mr.TTL(keyPrefix+sess.ID))

	got, err := store.Load(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, 2, got.Cart["3"].Quantity)
	assert.Equal(t, "10.00", got.Cart["3"].Price)
	require.Len(t, got.Messages, 1)
}

func TestStore_Load_NotFound(t *testing.T) {
	store, _ := setupTestStore(t)
	_, err := store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Load_Corrupt(t *testing.T) {
	store, mr := setupTestStore(t)
	require.NoError(t, mr.Set(keyPrefix+"bad", "{not json"))
	_, err := store.Load(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestStore_LoginRotatesID(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()

	sess := New()
	sess.Cart = map[string]CartLine{"1": {Quantity: 1, Price: "5.00"}}
	sess.MarkModified()
	require.NoError(t, store.Save(ctx, sess))
	oldID := sess.ID

	sess.Login("user-1")
	assert.NotEqual(t, oldID, sess.ID)
	require.NoError(t, store.Save(ctx, sess))

	assert.False(t, mr.Exists(keyPrefix+oldID))
	got, err := store.Load(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.Len(t, got.Cart, 1)
}

func TestStore_FlushDropsCart(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	sess := New()
	sess.Login("user-1")
	sess.Cart = map[string]CartLine{"1": {Quantity: 1, Price: "5.00"}}
	require.NoError(t, store.Save(ctx, sess))

	sess.Flush()
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Load(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, got.IsAuthenticated())
	assert.Empty(t, got.Cart)
}

func TestStore_Delete(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()
	sess := New()
	require.NoError(t, store.Save(ctx, sess))
	require.NoError(t, store.Delete(ctx, sess.ID))
	assert.False(t, mr.Exists(keyPrefix+sess.ID))
}

func TestPopMessages(t *testing.T) {
	sess := New()
	assert.Nil(t, sess.PopMessages())
	assert.False(t, sess.Modified())

	sess.AddMessage(LevelInfo, "one")
	sess.AddMessage(LevelError, "two")
	msgs := sess.PopMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, LevelError, msgs[1].Level)
	assert.Empty(t, sess.Messages)
}

func TestSignVerify(t *testing.T) {
	v := Sign("abc", "secret")
	id, ok := Verify(v, "secret")
	assert.True(t, ok)
	assert.Equal(t, "abc", id)

	_, ok = Verify(v, "other-secret")
	assert.False(t, ok)
	_, ok = Verify("abc", "secret")
	assert.False(t, ok)
	_, ok = Verify("xyz"+v[3:], "secret")
	assert.False(t, ok)
}
