package ui

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page template names.
const (
	PageHome         = "home"
	PageAccounts     = "accounts"
	PageOverview     = "overview"
	PageTransactions = "transactions"
	PageSettings     = "settings"
)

var pageNames = []string{PageHome, PageAccounts, PageOverview, PageTransactions, PageSettings}

type lazySection struct {
	ID  string
	URL string
}

type loadState struct {
	Load Load
	Noun string
}

var funcs = template.FuncMap{
	"shorten": ShortenAddress,
	"compact": CompactAddress,
	"inc":     func(i int) int { return i + 1 },
	"loadState": func(l Load, noun string) loadState {
		return loadState{Load: l, Noun: noun}
	},
	"lazy": func(account, section string) lazySection {
		return lazySection{ID: "lazy-" + section, URL: fmt.Sprintf("/partials/%s/%s", account, section)}
	},
	"lazyURL": func(id, url string) lazySection {
		return lazySection{ID: "lazy-" + id, URL: url}
	},
}

// Renderer executes full pages and the fragments they load.
type Renderer struct {
	partials *template.Template
	pages    map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	base, err := template.New("base").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r := &Renderer{partials: base, pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		page, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone templates for %s: %w", name, err)
		}
		if _, err := page.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		r.pages[name] = page
	}
	return r, nil
}

// Page renders a full document.
func (r *Renderer) Page(w io.Writer, name string, data any) error {
	page, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return page.ExecuteTemplate(w, "layout", data)
}

// Partial renders one fragment such as "members-compact".
func (r *Renderer) Partial(w io.Writer, name string, data any) error {
	if r.partials.Lookup(name) == nil {
		return fmt.Errorf("unknown partial %q", name)
	}
	return r.partials.ExecuteTemplate(w, name, data)
}
