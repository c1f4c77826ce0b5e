package site

import (
	"fmt"
	"net/http"

	"github.com/ghaggin/growtech/internal/forms"
	"github.com/ghaggin/growtech/internal/gate"
	"github.com/ghaggin/growtech/internal/model"
	"github.com/ghaggin/growtech/internal/session"
	"go.uber.org/zap"
)

type adminData struct {
	Users []model.User
}

// users fetches the directory for the gated visitor. A failure is shown as
// a notice and an empty list.
func (s *Server) users(r *http.Request) ([]model.User, *session.Notice) {
	sess, _ := gate.FromContext(r.Context())

	users, err := s.api.ListUsers(r.Context(), sess.Token)
	if err != nil {
		s.log.Warn("error listing users", zap.Error(err))
		n, _ := apiFailure(err, "Could not load users", "Failed to fetch users")
		return nil, &n
	}
	return users, nil
}

func (s *Server) adminPage(w http.ResponseWriter, r *http.Request) {
	users, n := s.users(r)

	p := &Page{
		Title: "Admin",
		Form:  formValues{Role: model.RoleTeacher},
		Data:  adminData{Users: users},
	}
	if n != nil {
		p.Notices = append(p.Notices, *n)
	}
	s.render(w, r, http.StatusOK, "admin.html", p)
}

func (s *Server) createUserFailed(w http.ResponseWriter, r *http.Request, status int, f forms.CreateUser, n session.Notice) {
	users, listErr := s.users(r)

	p := &Page{
		Title:   "Admin",
		Form:    formValues{Email: f.Email, FullName: f.FullName, Role: f.Role},
		Notices: []session.Notice{n},
		Data:    adminData{Users: users},
	}
	if listErr != nil {
		p.Notices = append(p.Notices, *listErr)
	}
	s.render(w, r, status, "admin.html", p)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := gate.FromContext(ctx)

	f := forms.CreateUser{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		FullName: r.PostFormValue("fullName"),
		Role:     model.Role(r.PostFormValue("role")),
	}
	if f.Role == "" {
		f.Role = model.RoleTeacher
	}
	if err := forms.Validate(&f); err != nil {
		s.createUserFailed(w, r, http.StatusUnprocessableEntity, f, validationNotice(err))
		return
	}

	release, ok := s.begin(r, "create-user")
	if !ok {
		s.busy(w, r, "admin.html", "Admin", formValues{Email: f.Email, FullName: f.FullName, Role: f.Role})
		return
	}
	defer release()

	created, err := s.api.CreateUser(ctx, sess.Token, f)
	if s.gone(r, "create-user") {
		return
	}
	if err != nil {
		n, status := apiFailure(err, "Failed to create user", "An error occurred")
		s.createUserFailed(w, r, status, f, n)
		return
	}

	s.log.Info("user created",
		zap.Int64("admin_id", sess.User.ID),
		zap.Int64("user_id", created.ID),
		zap.String("role", string(created.Role)),
	)
	s.notices.Add(ctx, session.Notice{
		Title:       "Success!",
		Description: fmt.Sprintf("%s account created successfully", f.Role),
	})
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}
