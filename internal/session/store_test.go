package session

import (
	"context"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/ghaggin/growtech/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestContext(t *testing.T) (*scs.SessionManager, context.Context) {
	t.Helper()
	sm := scs.New()
	ctx, err := sm.Load(context.Background(), "")
	require.NoError(t, err)
	return sm, ctx
}

var teacher = model.User{ID: 7, Email: "t@example.com", FullName: "Tina Teach", Role: model.RoleTeacher}

func TestStoreSaveLoad(t *testing.T) {
	sm, ctx := newTestContext(t)
	store := NewStore(sm, zap.NewNop())

	assert.False(t, store.Load(ctx).Authenticated())

	require.NoError(t, store.Save(ctx, "tok-1", teacher))
	sess := store.Load(ctx)
	require.True(t, sess.Authenticated())
	assert.Equal(t, "tok-1", sess.Token)
	assert.Equal(t, teacher, *sess.User)
	assert.Equal(t, model.RoleTeacher, sess.Role())

	// raw slot layout matches the JSON-encoded user convention
	assert.JSONEq(t, `{"id":7,"email":"t@example.com","fullName":"Tina Teach","role":"TEACHER","createdAt":"0001-01-01T00:00:00Z"}`,
		sm.GetString(ctx, userKey))
}

func TestStoreSaveOverwrites(t *testing.T) {
	sm, ctx := newTestContext(t)
	store := NewStore(sm, zap.NewNop())

	require.NoError(t, store.Save(ctx, "tok-1", teacher))
	admin := model.User{ID: 1, Email: "a@example.com", Role: model.RoleAdmin}
	require.NoError(t, store.Save(ctx, "tok-2", admin))

	sess := store.Load(ctx)
	assert.Equal(t, "tok-2", sess.Token)
	assert.Equal(t, model.RoleAdmin, sess.Role())
}

func TestStoreClearRemovesBothSlots(t *testing.T) {
	sm, ctx := newTestContext(t)
	store := NewStore(sm, zap.NewNop())

	require.NoError(t, store.Save(ctx, "tok-1", teacher))
	require.NoError(t, store.Clear(ctx))

	assert.False(t, sm.Exists(ctx, tokenKey))
	assert.False(t, sm.Exists(ctx, userKey))

	_, err := store.Require(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStoreCorruptUserFailsClosed(t *testing.T) {
	sm, ctx := newTestContext(t)
	store := NewStore(sm, zap.NewNop())

	sm.Put(ctx, tokenKey, "tok-1")
	sm.Put(ctx, userKey, "{not json")

	sess := store.Load(ctx)
	assert.Equal(t, "tok-1", sess.Token)
	assert.Nil(t, sess.User)
	assert.Equal(t, model.Role(""), sess.Role())
	assert.False(t, sess.Authenticated())

	for _, raw := range []string{`{}`, `{"id":3,"role":"teacher"}`} {
		sm.Put(ctx, userKey, raw)
		assert.Nil(t, store.Load(ctx).User, raw)
	}
}

func TestStorePartialSlots(t *testing.T) {
	sm, ctx := newTestContext(t)
	store := NewStore(sm, zap.NewNop())

	sm.Put(ctx, userKey, `{"id":3,"role":"ADMIN"}`)
	sess := store.Load(ctx)
	assert.Empty(t, sess.Token)
	require.NotNil(t, sess.User)
	assert.Equal(t, model.RoleAdmin, sess.Role())

	_, err := store.Require(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestNotices(t *testing.T) {
	sm, ctx := newTestContext(t)
	notices := NewNotices(sm)

	notices.Add(ctx, Notice{Title: "one"})
	notices.Add(ctx, Notice{Title: "two", Variant: VariantDestructive})

	got := notices.Pop(ctx)
	require.Len(t, got, 2)
	assert.Equal(t, VariantDefault, got[0].Variant)
	assert.Equal(t, "two", got[1].Title)
	assert.Empty(t, notices.Pop(ctx))

	assert.Equal(t, Modal(""), notices.PopPrompt(ctx))
	notices.Prompt(ctx, ModalLogin)
	assert.Equal(t, ModalLogin, notices.PopPrompt(ctx))
	assert.Equal(t, Modal(""), notices.PopPrompt(ctx))
}
