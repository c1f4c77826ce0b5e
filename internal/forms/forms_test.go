package forms

import (
	"strings"
	"testing"

	"github.com/ghaggin/growtech/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstError(t *testing.T, f form) *ValidationError {
	t.Helper()
	err := Validate(f)
	if err == nil {
		return nil
	}
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	return verr
}

func TestLoginValidation(t *testing.T) {
	tests := []struct {
		name string
		form Login
		want string
	}{
		{"ok", Login{Email: "a@b.co", Password: "secret"}, ""},
		{"empty email", Login{Email: "", Password: "secret"}, "Invalid email address"},
		{"bad email", Login{Email: "not-an-email", Password: "secret"}, "Invalid email address"},
		{"short password", Login{Email: "a@b.co", Password: "12345"}, "Password must be at least 6 characters"},
		{"long password", Login{Email: "a@b.co", Password: strings.Repeat("x", 101)}, "Password must be at most 100 characters"},
		{"email reported before password", Login{Email: "nope", Password: "1"}, "Invalid email address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := firstError(t, &tt.form)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Message)
		})
	}
}

func TestSignupTrimsFullName(t *testing.T) {
	f := Signup{Email: "a@b.co", Password: "secret", FullName: "  Ada Lovelace  "}
	require.NoError(t, Validate(&f))
	assert.Equal(t, "Ada Lovelace", f.FullName)

	blank := Signup{Email: "a@b.co", Password: "secret", FullName: "   "}
	got := firstError(t, &blank)
	require.NotNil(t, got)
	assert.Equal(t, "FullName", got.Field)
	assert.Equal(t, "Name is required", got.Message)

	long := Signup{Email: "a@b.co", Password: "secret", FullName: strings.Repeat("n", 101)}
	got = firstError(t, &long)
	require.NotNil(t, got)
	assert.Equal(t, "Name must be at most 100 characters", got.Message)
}

func TestCreateUserRole(t *testing.T) {
	base := CreateUser{Email: "a@b.co", Password: "secret", FullName: "T"}

	for _, role := range []string{"TEACHER", "STUDENT"} {
		f := base
		f.Role = model.Role(role)
		assert.NoError(t, Validate(&f), role)
	}

	for _, role := range []string{"ADMIN", "", "teacher"} {
		f := base
		f.Role = model.Role(role)
		got := firstError(t, &f)
		require.NotNil(t, got, role)
		assert.Equal(t, "Role", got.Field)
	}
}

func TestInFlightSingleSubmission(t *testing.T) {
	f := NewInFlight()

	release, ok := f.Begin("form-1")
	require.True(t, ok)

	_, ok = f.Begin("form-1")
	assert.False(t, ok)

	other, ok := f.Begin("form-2")
	require.True(t, ok)
	other()

	release()
	release()
	assert.Equal(t, 0, f.Len())

	again, ok := f.Begin("form-1")
	require.True(t, ok)
	again()
}

func TestNewFormIDUnique(t *testing.T) {
	assert.NotEqual(t, NewFormID(), NewFormID())
}
