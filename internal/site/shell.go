package site

import (
	"context"
	"encoding/json"
	"errors"
	htmltemplate "html/template"
	"net/http"

	"github.com/ghaggin/growtech/internal/api"
	"github.com/ghaggin/growtech/internal/events"
	"github.com/ghaggin/growtech/internal/forms"
	"github.com/ghaggin/growtech/internal/model"
	"github.com/ghaggin/growtech/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

const connectivityMessage = "Could not connect to server. Please try again."

// shell turns modal signals into a prompt on the visitor's next page.
type shell struct {
	bus     *events.Bus
	notices *session.Notices
}

func newShell(bus *events.Bus, notices *session.Notices) *shell {
	return &shell{bus: bus, notices: notices}
}

func (sh *shell) mount() func() {
	offLogin := sh.bus.Subscribe(events.OpenLoginModal, func(ctx context.Context) {
		sh.notices.Prompt(ctx, session.ModalLogin)
	})
	offSignup := sh.bus.Subscribe(events.OpenSignupModal, func(ctx context.Context) {
		sh.notices.Prompt(ctx, session.ModalSignup)
	})
	return func() {
		offLogin()
		offSignup()
	}
}

// formValues are echoed back into a form after a failed submit. Passwords
// are never echoed.
type formValues struct {
	Email    string
	FullName string
	Role     model.Role
}

type Page struct {
	Title    string
	User     *model.User
	Notices  []session.Notice
	Modal    session.Modal
	CSRF     htmltemplate.HTML
	FormID   string
	RelayURL string
	Form     formValues
	Data     any
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, tmpl string, p *Page) {
	ctx := r.Context()

	p.User = s.store.Load(ctx).User
	p.Notices = append(s.notices.Pop(ctx), p.Notices...)
	if p.Modal == "" {
		p.Modal = s.notices.PopPrompt(ctx)
	}
	p.CSRF = csrf.TemplateField(r)
	p.FormID = forms.NewFormID()
	p.RelayURL = s.cfg.Feedback.RelayURL

	if err := s.renderer.Render(w, status, tmpl, p); err != nil {
		s.log.Error("error rendering template", zap.String("template", tmpl), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "index.html", &Page{Title: "Home"})
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.log.Debug("no route", zap.String("path", r.URL.Path))
	s.render(w, r, http.StatusNotFound, "notfound.html", &Page{Title: "Not found"})
}

func (s *Server) openModal(w http.ResponseWriter, r *http.Request) {
	var sig events.Signal
	switch session.Modal(chi.URLParam(r, "name")) {
	case session.ModalLogin:
		sig = events.OpenLoginModal
	case session.ModalSignup:
		sig = events.OpenSignupModal
	default:
		s.notFound(w, r)
		return
	}

	s.bus.Publish(r.Context(), sig)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// begin guards a submission of the named form. Without any key to tell
// form instances apart the submission runs unguarded.
func (s *Server) begin(r *http.Request, name string) (release func(), ok bool) {
	id := r.PostFormValue("form_id")
	if id == "" {
		id = s.sm.Token(r.Context())
	}
	if id == "" {
		return func() {}, true
	}
	return s.inflight.Begin(name + ":" + id)
}

func (s *Server) busy(w http.ResponseWriter, r *http.Request, tmpl, title string, form formValues) {
	s.render(w, r, http.StatusConflict, tmpl, &Page{
		Title: title,
		Form:  form,
		Notices: []session.Notice{{
			Title:       "Please wait",
			Description: "This form is already being submitted.",
			Variant:     session.VariantDestructive,
		}},
	})
}

func validationNotice(err error) session.Notice {
	var verr *forms.ValidationError
	msg := err.Error()
	if errors.As(err, &verr) {
		msg = verr.Message
	}
	return session.Notice{
		Title:       "Validation Error",
		Description: msg,
		Variant:     session.VariantDestructive,
	}
}

// apiFailure maps an API error to the notice shown and the status returned.
func apiFailure(err error, title, fallback string) (session.Notice, int) {
	var serverErr *api.ServerError
	if errors.As(err, &serverErr) {
		status := http.StatusBadGateway
		if serverErr.StatusCode >= 400 && serverErr.StatusCode < 500 {
			status = serverErr.StatusCode
		}
		return session.Notice{
			Title:       title,
			Description: serverErr.MessageOr(fallback),
			Variant:     session.VariantDestructive,
		}, status
	}

	return session.Notice{
		Title:       "Error",
		Description: connectivityMessage,
		Variant:     session.VariantDestructive,
	}, http.StatusBadGateway
}

// gone reports whether the visitor abandoned the request while the API call
// was running, in which case the session must be left alone.
func (s *Server) gone(r *http.Request, op string) bool {
	if err := r.Context().Err(); err != nil {
		s.log.Info("visitor left before request finished", zap.String("op", op), zap.Error(err))
		return true
	}
	return false
}

func (s *Server) serverError(w http.ResponseWriter, err error) {
	s.log.Error("internal error", zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
