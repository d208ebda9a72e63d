package render

import (
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/cehbz/torrentname"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"mediatasks/internal/entry"
	"mediatasks/internal/services"
)

// Renderer expands templates for an entry.
type Renderer interface {
	Render(tmpl string, e *entry.Entry) (string, error)
}

// TemplateRenderer renders text/template strings and caches parsed templates.
type TemplateRenderer struct {
	mu    sync.Mutex
	cache map[string]*template.Template
}

var _ Renderer = (*TemplateRenderer)(nil)

// New returns a TemplateRenderer.
func New() *TemplateRenderer {
	return &TemplateRenderer{cache: make(map[string]*template.Template)}
}

var funcs = template.FuncMap{
	"pad": func(width int, value any) string {
		return fmt.Sprintf("%0*v", width, value)
	},
	"lower": strings.ToLower,
	"upper": strings.ToUpper,
	"title": titleCase,
	"default": func(fallback, value any) any {
		if value == nil || fmt.Sprint(value) == "" {
			return fallback
		}
		return value
	},
}

// Render expands tmpl against e. An empty template renders to "". Parse and
// execution failures are marked services.ErrRender.
func (r *TemplateRenderer) Render(tmpl string, e *entry.Entry) (string, error) {
	if tmpl == "" {
		return "", nil
	}
	if e == nil {
		return "", services.Wrap(services.ErrRender, "render", "render", "no entry", nil)
	}
	parsed, err := r.parse(tmpl)
	if err != nil {
		return "", services.Wrap(services.ErrRender, "render", "parse", fmt.Sprintf("template %q", tmpl), err)
	}
	var out strings.Builder
	if err := parsed.Execute(&out, Context(e)); err != nil {
		return "", services.Wrap(services.ErrRender, "render", "execute", fmt.Sprintf("template %q for %q", tmpl, e.Title), err)
	}
	return out.String(), nil
}

func (r *TemplateRenderer) parse(tmpl string) (*template.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cache == nil {
		r.cache = make(map[string]*template.Template)
	}
	if cached, ok := r.cache[tmpl]; ok {
		return cached, nil
	}
	parsed, err := template.New("entry").Funcs(funcs).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return nil, err
	}
	r.cache[tmpl] = parsed
	return parsed, nil
}

// Context builds the template data for e. Entry fields win over values parsed
// from the title.
func Context(e *entry.Entry) map[string]any {
	data := make(map[string]any)
	if info := torrentname.Parse(e.Title); info != nil {
		if info.Title != "" {
			data["series"] = titleCase(info.Title)
		}
		if info.Season > 0 {
			data["season"] = info.Season
		}
		if info.Episode > 0 {
			data["episode"] = info.Episode
		}
		if info.Year > 0 {
			data["year"] = info.Year
		}
		if info.Resolution != "" {
			data["resolution"] = info.Resolution
		}
		if info.Source != "" {
			data["source"] = info.Source
		}
		if info.Codec != "" {
			data["codec"] = info.Codec
		}
	}
	for k, v := range e.Map() {
		data[k] = v
	}
	if e.SeriesName != "" {
		data["series"] = e.SeriesName
	}
	return data
}

func titleCase(value string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(value))
}
