package template

import (
	"bytes"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/ghaggin/growtech/web"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

const (
	templateDir string = "tmpl"
	baseLayout  string = "base.html"
)

// raw HTML in descriptions is escaped since WithUnsafe is not set
var md = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

type Renderer struct {
	fs    fs.FS
	funcs template.FuncMap
}

func New() *Renderer {
	return NewFromFS(web.FS)
}

func NewFromFS(fsys fs.FS) *Renderer {
	return &Renderer{
		fs: fsys,
		funcs: template.FuncMap{
			"markdown": markdown,
			"money":    money,
			"when":     when,
		},
	}
}

// Render executes tmpl inside the base layout and writes it with status.
// Nothing is written if execution fails.
func (r *Renderer) Render(w http.ResponseWriter, status int, tmpl string, data any) error {
	t, err := template.New(tmpl).Funcs(r.funcs).ParseFS(r.fs,
		templateDir+"/"+tmpl,
		templateDir+"/"+baseLayout,
	)
	if err != nil {
		return err
	}

	buf := &bytes.Buffer{}

	err = t.ExecuteTemplate(buf, "base", data)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}

func markdown(s string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(s), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(s))
	}
	return template.HTML(buf.String())
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func when(t time.Time) string {
	return t.UTC().Format("Mon 2 Jan 2006, 15:04 UTC")
}
