package site

import (
	"net/http"

	"github.com/ghaggin/growtech/internal/forms"
	"github.com/ghaggin/growtech/internal/model"
	"github.com/ghaggin/growtech/internal/session"
	"go.uber.org/zap"
)

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login.html", &Page{Title: "Log in"})
}

func (s *Server) signupPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "signup.html", &Page{Title: "Sign up"})
}

func (s *Server) loginFailed(w http.ResponseWriter, r *http.Request, status int, f forms.Login, n session.Notice) {
	s.render(w, r, status, "login.html", &Page{
		Title:   "Log in",
		Form:    formValues{Email: f.Email},
		Notices: []session.Notice{n},
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	f := forms.Login{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	if err := forms.Validate(&f); err != nil {
		s.loginFailed(w, r, http.StatusUnprocessableEntity, f, validationNotice(err))
		return
	}

	release, ok := s.begin(r, "login")
	if !ok {
		s.busy(w, r, "login.html", "Log in", formValues{Email: f.Email})
		return
	}
	defer release()

	sess, err := s.api.Login(ctx, f)
	if s.gone(r, "login") {
		return
	}
	if err != nil {
		n, status := apiFailure(err, "Login failed", "Invalid email or password")
		s.loginFailed(w, r, status, f, n)
		return
	}

	if err := s.store.Save(ctx, sess.Token, *sess.User); err != nil {
		s.serverError(w, err)
		return
	}

	s.log.Info("visitor logged in", zap.Int64("user_id", sess.User.ID), zap.String("role", string(sess.User.Role)))
	s.notices.Add(ctx, session.Notice{
		Title:       "Welcome back",
		Description: "You are now logged in.",
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) signupFailed(w http.ResponseWriter, r *http.Request, status int, f forms.Signup, n session.Notice) {
	s.render(w, r, status, "signup.html", &Page{
		Title:   "Sign up",
		Form:    formValues{Email: f.Email, FullName: f.FullName},
		Notices: []session.Notice{n},
	})
}

// signup creates a student account and sends the visitor to the login
// page. The session is not touched.
func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	f := forms.Signup{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		FullName: r.PostFormValue("fullName"),
	}
	if err := forms.Validate(&f); err != nil {
		s.signupFailed(w, r, http.StatusUnprocessableEntity, f, validationNotice(err))
		return
	}

	release, ok := s.begin(r, "signup")
	if !ok {
		s.busy(w, r, "signup.html", "Sign up", formValues{Email: f.Email, FullName: f.FullName})
		return
	}
	defer release()

	err := s.api.Signup(ctx, f)
	if s.gone(r, "signup") {
		return
	}
	if err != nil {
		n, status := apiFailure(err, "Signup failed", "Failed to create account")
		s.signupFailed(w, r, status, f, n)
		return
	}

	s.notices.Add(ctx, session.Notice{
		Title:       "Success!",
		Description: "Account created successfully. Please login.",
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// logout sends admins to the login page and everyone else home.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	to := "/"
	if s.store.Load(ctx).Role() == model.RoleAdmin {
		to = "/login"
	}

	c := s.catalogs.Drop(ctx)
	s.previews.Delete(c.VideoIDs()...)

	if err := s.store.Clear(ctx); err != nil {
		s.serverError(w, err)
		return
	}

	http.Redirect(w, r, to, http.StatusSeeOther)
}
