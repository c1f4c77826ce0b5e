// Package gate turns visitors away from pages their cached role does not
// allow. It only shapes navigation: the external API must still authorize
// every call made on the visitor's behalf.
package gate

import (
	"context"
	"net/http"

	"github.com/ghaggin/growtech/internal/events"
	"github.com/ghaggin/growtech/internal/metrics"
	"github.com/ghaggin/growtech/internal/model"
	"github.com/ghaggin/growtech/internal/session"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type State int

const (
	Checking State = iota
	Resolved
	Rejected
)

func (s State) String() string {
	switch s {
	case Checking:
		return "checking"
	case Resolved:
		return "resolved"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

type Decision struct {
	State   State
	Session model.Session
}

type Rule struct {
	Role    model.Role
	Message string
	// PromptLogin also asks the shell to open the login dialog.
	PromptLogin bool
}

var (
	Admin = Rule{
		Role:    model.RoleAdmin,
		Message: "You must be an admin to access this page",
	}
	Teacher = Rule{
		Role:        model.RoleTeacher,
		Message:     "You must be a teacher to access this page",
		PromptLogin: true,
	}
)

const redirectTo = "/"

type ctxKey struct{}

type Gate struct {
	store   *session.Store
	notices *session.Notices
	bus     *events.Bus
	log     *zap.Logger
}

type Params struct {
	fx.In

	Store   *session.Store
	Notices *session.Notices
	Bus     *events.Bus
	Log     *zap.Logger
}

func New(p Params) *Gate {
	return &Gate{
		store:   p.Store,
		notices: p.Notices,
		bus:     p.Bus,
		log:     p.Log,
	}
}

// Check reads the session once and compares its role to role.
func (g *Gate) Check(ctx context.Context, role model.Role) Decision {
	d := Decision{State: Checking}

	d.Session = g.store.Load(ctx)
	if d.Session.Role() != role {
		d.State = Rejected
		return d
	}

	d.State = Resolved
	return d
}

// Require runs Check once per request. Resolved requests continue with the
// session attached to their context; anything else is redirected home.
func (g *Gate) Require(rule Rule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := g.Check(r.Context(), rule.Role)
			if d.State != Resolved {
				g.reject(w, r, rule, d)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, d.Session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (g *Gate) reject(w http.ResponseWriter, r *http.Request, rule Rule, d Decision) {
	ctx := r.Context()

	g.log.Info("role gate rejected visit",
		zap.String("path", r.URL.Path),
		zap.String("required", string(rule.Role)),
		zap.String("have", string(d.Session.Role())),
	)
	metrics.GateRejections.WithLabelValues(string(rule.Role)).Inc()

	g.notices.Add(ctx, session.Notice{
		Title:       "Access Denied",
		Description: rule.Message,
		Variant:     session.VariantDestructive,
	})
	if rule.PromptLogin {
		g.bus.Publish(ctx, events.OpenLoginModal)
	}

	http.Redirect(w, r, redirectTo, http.StatusSeeOther)
}

// FromContext returns the session a resolved gate attached to ctx.
func FromContext(ctx context.Context) (model.Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(model.Session)
	return s, ok
}
