package site

import (
	"github.com/alexedwards/scs/v2"
	"github.com/ghaggin/growtech/internal/api"
	"github.com/ghaggin/growtech/internal/catalog"
	"github.com/ghaggin/growtech/internal/config"
	"github.com/ghaggin/growtech/internal/events"
	"github.com/ghaggin/growtech/internal/forms"
	"github.com/ghaggin/growtech/internal/gate"
	"github.com/ghaggin/growtech/internal/session"
	"github.com/ghaggin/growtech/internal/template"
	"go.uber.org/fx"
)

func newPreviews(cfg *config.Config) *catalog.Previews {
	return catalog.NewPreviews(cfg.Session.Lifetime, cfg.Teacher.MaxPreviewBytes)
}

func newCatalogs(sm *scs.SessionManager, cfg *config.Config) *catalog.Sessions {
	return catalog.NewSessions(sm, cfg.Session.Lifetime)
}

var Module = fx.Options(
	fx.Provide(
		config.New,
		session.NewManager,
		session.NewStore,
		session.NewNotices,
		events.NewBus,
		gate.New,
		api.New,
		newCatalogs,
		newPreviews,
		template.New,
		forms.NewInFlight,
		New,
	),
)
