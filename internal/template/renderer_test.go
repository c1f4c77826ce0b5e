package template

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFS = fstest.MapFS{
	"tmpl/base.html": {Data: []byte(`{{define "base"}}<main>{{template "content" .}}</main>{{end}}`)},
	"tmpl/page.html": {Data: []byte(`{{define "content"}}{{markdown .Text}}|{{money .Price}}|{{when .At}}{{end}}`)},
	"tmpl/bad.html":  {Data: []byte(`{{define "content"}}{{.Missing.Field}}{{end}}`)},
}

type pageData struct {
	Text  string
	Price decimal.Decimal
	At    time.Time
}

func TestRenderWritesStatusAndBody(t *testing.T) {
	r := NewFromFS(testFS)
	rr := httptest.NewRecorder()

	err := r.Render(rr, http.StatusCreated, "page.html", pageData{
		Text:  "**arrays** first\n<script>alert(1)</script>",
		Price: decimal.RequireFromString("9.5"),
		At:    time.Date(2025, 3, 1, 18, 30, 0, 0, time.FixedZone("CET", 3600)),
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))

	body := rr.Body.String()
	assert.Contains(t, body, "<strong>arrays</strong>")
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "|9.50|")
	assert.Contains(t, body, "Sat 1 Mar 2025, 17:30 UTC")
}

func TestRenderFailureWritesNothing(t *testing.T) {
	r := NewFromFS(testFS)

	rr := httptest.NewRecorder()
	require.Error(t, r.Render(rr, http.StatusOK, "nope.html", nil))
	assert.Empty(t, rr.Body.String())

	rr = httptest.NewRecorder()
	require.Error(t, r.Render(rr, http.StatusOK, "bad.html", pageData{}))
	assert.Empty(t, rr.Body.String())
	assert.Empty(t, rr.Header().Get("Content-Type"))
}

// shellData has the fields the embedded layout reads.
type shellData struct {
	Title    string
	User     *struct{ FullName, Role string }
	Notices  []struct{ Title, Description, Variant string }
	Modal    string
	CSRF     string
	FormID   string
	RelayURL string
	Form     struct{ Email, FullName string }
}

func TestEmbeddedPagesRender(t *testing.T) {
	r := New()
	for _, page := range []string{"index.html", "login.html", "signup.html", "notfound.html"} {
		rr := httptest.NewRecorder()
		require.NoError(t, r.Render(rr, http.StatusOK, page, shellData{Title: "t", Modal: "login"}), page)
		assert.Contains(t, rr.Body.String(), `id="login-modal" class="auth-modal" open`, page)
	}
}
