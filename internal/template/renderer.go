package template

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Renderer renders text templates with the sprig function set. Parsed
// templates are cached by content so a listing is parsed once.
type Renderer struct {
	funcs template.FuncMap

	mu        sync.Mutex
	templates map[string]*template.Template
}

// NewRenderer creates a renderer; extra functions override the built-in ones
func NewRenderer(extra template.FuncMap) *Renderer {
	funcs := sprig.TxtFuncMap()
	maps.Copy(funcs, extra)

	return &Renderer{
		funcs:     funcs,
		templates: make(map[string]*template.Template),
	}
}

// generateTemplateName generates a unique name for a template based on its content
func generateTemplateName(tmpl string) string {
	hash := sha256.Sum256([]byte(tmpl))
	return fmt.Sprintf("tmpl_%s", hex.EncodeToString(hash[:8]))
}

// Render renders tmpl against data
func (r *Renderer) Render(tmpl string, data any) (string, error) {
	t, err := r.parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Validate reports whether tmpl parses
func (r *Renderer) Validate(tmpl string) error {
	_, err := r.parse(tmpl)
	return err
}

func (r *Renderer) parse(tmpl string) (*template.Template, error) {
	name := generateTemplateName(tmpl)

	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.templates[name]; ok {
		return t, nil
	}
	t, err := template.New(name).Funcs(r.funcs).Parse(tmpl)
	if err != nil {
		return nil, err
	}
	r.templates[name] = t
	return t, nil
}
