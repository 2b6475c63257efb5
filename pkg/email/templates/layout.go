package templates

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/a-h/templ"
)

// DefaultLayout is the name of the built-in HTML email layout.
const DefaultLayout = "mail_default"

// ErrLayoutNotFound is returned when no layout is registered under a name.
var ErrLayoutNotFound = errors.New("templates: layout not found")

// LayoutData is passed to a layout when wrapping a message body.
type LayoutData struct {
	Title    string // already expanded subject line
	Language string
	Body     string // raw HTML body, inserted unescaped
}

// Layout builds the component that wraps a message body.
type Layout func(data LayoutData) templ.Component

// Registry holds named layouts. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	layouts map[string]Layout
}

// NewRegistry returns a registry preloaded with DefaultLayout.
func NewRegistry() *Registry {
	r := &Registry{layouts: make(map[string]Layout)}
	r.Register(DefaultLayout, Default)
	return r
}

// Register adds or replaces the layout stored under name.
func (r *Registry) Register(name string, l Layout) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.layouts[name] = l
}

// Has reports whether a layout is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.layouts[name]
	return ok
}

// Wrap renders data.Body inside the named layout. An empty name selects DefaultLayout.
func (r *Registry) Wrap(ctx context.Context, name string, data LayoutData) (string, error) {
	if name == "" {
		name = DefaultLayout
	}

	r.mu.RLock()
	l, ok := r.layouts[name]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrLayoutNotFound, name)
	}

	return Render(ctx, l(data))
}

// Default is a minimal HTML document around the body.
func Default(data LayoutData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		lang := data.Language
		if lang == "" {
			lang = "en"
		}
		if _, err := io.WriteString(w, `<!DOCTYPE html>`+"\n"+`<html lang="`+templ.EscapeString(lang)+`">`+
			`<head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`+
			`<title>`+templ.EscapeString(data.Title)+`</title></head><body>`); err != nil {
			return err
		}
		if err := templ.Raw(data.Body).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

// Bare renders the body without any wrapper.
func Bare(data LayoutData) templ.Component {
	return templ.Raw(data.Body)
}
