package site

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/ghaggin/growtech/internal/api"
	"github.com/ghaggin/growtech/internal/catalog"
	"github.com/ghaggin/growtech/internal/config"
	"github.com/ghaggin/growtech/internal/events"
	"github.com/ghaggin/growtech/internal/forms"
	"github.com/ghaggin/growtech/internal/gate"
	"github.com/ghaggin/growtech/internal/session"
	"github.com/ghaggin/growtech/internal/template"
	"github.com/ghaggin/growtech/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Server struct {
	log      *zap.Logger
	cfg      *config.Config
	sm       *scs.SessionManager
	store    *session.Store
	notices  *session.Notices
	bus      *events.Bus
	gate     *gate.Gate
	api      *api.Client
	catalogs *catalog.Sessions
	previews *catalog.Previews
	renderer *template.Renderer
	inflight *forms.InFlight

	shell   *shell
	unmount func()
	handler http.Handler
	server  *http.Server
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Config   *config.Config
	Sessions *scs.SessionManager
	Store    *session.Store
	Notices  *session.Notices
	Bus      *events.Bus
	Gate     *gate.Gate
	API      *api.Client
	Catalogs *catalog.Sessions
	Previews *catalog.Previews
	Renderer *template.Renderer
	InFlight *forms.InFlight
}

func New(p Params) (*Server, error) {
	s := &Server{
		log:      p.Log,
		cfg:      p.Config,
		sm:       p.Sessions,
		store:    p.Store,
		notices:  p.Notices,
		bus:      p.Bus,
		gate:     p.Gate,
		api:      p.API,
		catalogs: p.Catalogs,
		previews: p.Previews,
		renderer: p.Renderer,
		inflight: p.InFlight,
		shell:    newShell(p.Bus, p.Notices),
	}

	static, err := fs.Sub(web.FS, "static")
	if err != nil {
		return nil, err
	}

	root := chi.NewRouter()
	root.Use(middleware.RequestID)
	root.Use(middleware.RealIP)
	root.Use(requestLogger(p.Log))
	root.Use(middleware.Recoverer)

	root.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	root.Handle("/metrics", promhttp.Handler())
	root.Handle("/static/*", http.StripPrefix("/static", http.FileServer(http.FS(static))))

	root.Group(func(r chi.Router) {
		r.Use(s.sm.LoadAndSave)
		r.Use(limitUploads(p.Config.Teacher.MaxUploadBytes))
		if p.Config.CSRF.Enabled {
			r.Use(s.csrfProtect())
		}

		r.Get("/", s.index)
		r.Get("/modal/{name}", s.openModal)

		r.Get("/login", s.loginPage)
		r.Post("/login", s.login)
		r.Get("/signup", s.signupPage)
		r.Post("/signup", s.signup)
		r.Post("/logout", s.logout)

		// Admin
		r.Group(func(r chi.Router) {
			r.Use(s.gate.Require(gate.Admin))
			r.Get("/admin", s.adminPage)
			r.Post("/admin/users", s.createUser)
		})

		// Teacher
		r.Group(func(r chi.Router) {
			r.Use(s.gate.Require(gate.Teacher))
			r.Get("/teacher", s.teacherPage)
			r.Post(videoUploadPath, s.addVideo)
			r.Post("/teacher/classes", s.scheduleClass)
			r.Get("/teacher/videos/{id}/preview", s.preview)
		})
	})

	root.NotFound(s.sm.LoadAndSave(http.HandlerFunc(s.notFound)).ServeHTTP)

	s.handler = root
	s.server = &http.Server{
		Addr:              p.Config.Server.Addr,
		Handler:           root,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// RegisterHooks should be invoked by fx
func RegisterHooks(lc fx.Lifecycle, s *Server) {
	lc.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.Stop,
	})
}

func (s *Server) Start(_ context.Context) error {
	s.unmount = s.shell.mount()

	go func() {
		s.log.Info("listening", zap.String("addr", s.server.Addr))
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("error starting server", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.unmount != nil {
		s.unmount()
	}
	return s.server.Shutdown(ctx)
}
