package gate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/ghaggin/growtech/internal/events"
	"github.com/ghaggin/growtech/internal/model"
	"github.com/ghaggin/growtech/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	sm      *scs.SessionManager
	store   *session.Store
	notices *session.Notices
	bus     *events.Bus
	gate    *Gate

	prompts int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{sm: scs.New(), bus: events.NewBus()}
	f.store = session.NewStore(f.sm, zap.NewNop())
	f.notices = session.NewNotices(f.sm)
	f.gate = New(Params{Store: f.store, Notices: f.notices, Bus: f.bus, Log: zap.NewNop()})
	t.Cleanup(f.bus.Subscribe(events.OpenLoginModal, func(context.Context) { f.prompts++ }))
	return f
}

type result struct {
	code     int
	location string
	rendered bool
	notices  []session.Notice
	session  model.Session
}

// serve runs one request through the gate. prepare seeds the session before
// the gate sees it.
func (f *fixture) serve(t *testing.T, rule Rule, prepare func(ctx context.Context)) result {
	t.Helper()

	var res result
	protected := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		res.rendered = true
		s, ok := FromContext(r.Context())
		require.True(t, ok)
		res.session = s
	})

	handler := f.sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if prepare != nil {
			prepare(r.Context())
		}
		f.gate.Require(rule)(protected).ServeHTTP(w, r)
		res.notices = f.notices.Pop(r.Context())
	}))

	rr := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, "/teacher", nil)
	require.NoError(t, err)
	handler.ServeHTTP(rr, req)

	res.code = rr.Code
	res.location = rr.Result().Header.Get("Location")
	return res
}

func TestRequireResolvesMatchingRole(t *testing.T) {
	f := newFixture(t)

	res := f.serve(t, Teacher, func(ctx context.Context) {
		require.NoError(t, f.store.Save(ctx, "tok", model.User{ID: 2, Role: model.RoleTeacher}))
	})

	assert.True(t, res.rendered)
	assert.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "tok", res.session.Token)
	assert.Empty(t, res.notices)
	assert.Equal(t, 0, f.prompts)
}

func TestRequireRejectsEveryOtherRole(t *testing.T) {
	cases := map[string]func(f *fixture, ctx context.Context){
		"no session": func(*fixture, context.Context) {},
		"student": func(f *fixture, ctx context.Context) {
			_ = f.store.Save(ctx, "tok", model.User{Role: model.RoleStudent})
		},
		"admin": func(f *fixture, ctx context.Context) {
			_ = f.store.Save(ctx, "tok", model.User{Role: model.RoleAdmin})
		},
		"lowercase role": func(f *fixture, ctx context.Context) {
			_ = f.store.Save(ctx, "tok", model.User{Role: "teacher"})
		},
		"corrupt user": func(f *fixture, ctx context.Context) {
			f.sm.Put(ctx, "user", "{{{")
		},
		"empty object": func(f *fixture, ctx context.Context) {
			f.sm.Put(ctx, "user", "{}")
		},
	}

	for name, prepare := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			res := f.serve(t, Teacher, func(ctx context.Context) { prepare(f, ctx) })

			assert.False(t, res.rendered)
			assert.Equal(t, http.StatusSeeOther, res.code)
			assert.Equal(t, "/", res.location)
			require.Len(t, res.notices, 1)
			assert.Equal(t, "Access Denied", res.notices[0].Title)
			assert.Equal(t, session.VariantDestructive, res.notices[0].Variant)
			assert.Equal(t, 1, f.prompts)
		})
	}
}

func TestAdminRuleDoesNotPromptLogin(t *testing.T) {
	f := newFixture(t)

	res := f.serve(t, Admin, func(ctx context.Context) {
		_ = f.store.Save(ctx, "tok", model.User{Role: model.RoleTeacher})
	})

	assert.False(t, res.rendered)
	assert.Equal(t, "/", res.location)
	require.Len(t, res.notices, 1)
	assert.Equal(t, Admin.Message, res.notices[0].Description)
	assert.Equal(t, 0, f.prompts)
}

func TestLogoutThenEveryProtectedRouteRejects(t *testing.T) {
	for _, rule := range []Rule{Admin, Teacher} {
		f := newFixture(t)
		res := f.serve(t, rule, func(ctx context.Context) {
			require.NoError(t, f.store.Save(ctx, "tok", model.User{Role: rule.Role}))
			require.NoError(t, f.store.Clear(ctx))
		})
		assert.False(t, res.rendered, rule.Role)
		assert.Equal(t, "/", res.location, rule.Role)
	}
}

func TestCheckStates(t *testing.T) {
	f := newFixture(t)
	ctx, err := f.sm.Load(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, Rejected, f.gate.Check(ctx, model.RoleAdmin).State)

	require.NoError(t, f.store.Save(ctx, "tok", model.User{Role: model.RoleAdmin}))
	d := f.gate.Check(ctx, model.RoleAdmin)
	assert.Equal(t, Resolved, d.State)
	assert.Equal(t, "resolved", d.State.String())
}
