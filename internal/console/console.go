package console

import (
	"fmt"
	"io"
	"strings"
	"sync"
	gotemplate "text/template"

	"github.com/fatih/color"

	"github.com/amoylab/coursechat/internal/common/cnst"
	"github.com/amoylab/coursechat/internal/i18n"
	"github.com/amoylab/coursechat/internal/media"
	"github.com/amoylab/coursechat/internal/overlay"
	"github.com/amoylab/coursechat/internal/template"
	"github.com/amoylab/coursechat/internal/widget"
)

const upcomingTemplate = `{{ bold (t "UpcomingTitle") }}
{{- range . }}

  {{ bold .Name }}
    {{ t "UpcomingLocation" | printf "%-12s" }}{{ .Location | default "-" }}
    {{ t "UpcomingLength" | printf "%-12s" }}{{ .Length | default "-" }}
    {{ t "UpcomingStartDate" | printf "%-12s" }}{{ .StartDate | default "-" }}
    {{ .LinkLabel }}: {{ link .RegistrationLink }}
{{- end }}
`

// Options configures a Renderer
type Options struct {
	Persona string
	Color   bool

	// Translator localizes listing labels; English when nil
	Translator *i18n.Translator
}

// Renderer draws the widget as plain lines on a terminal. It implements
// widget.Views and is safe for concurrent use.
type Renderer struct {
	out     io.Writer
	persona string
	tmpl    *template.Renderer

	user, assistant, dim, accent, bold *color.Color

	mu       sync.Mutex
	messages []widget.Message
	choices  []*widget.Choice
	disabled map[uint64]bool
	panels   []overlay.Panel
	overlay  string
}

func New(out io.Writer, opts Options) *Renderer {
	r := &Renderer{
		out:       out,
		persona:   opts.Persona,
		user:      color.New(color.FgGreen, color.Bold),
		assistant: color.New(color.FgCyan, color.Bold),
		dim:       color.New(color.Faint),
		accent:    color.New(color.FgYellow),
		bold:      color.New(color.Bold),
		disabled:  make(map[uint64]bool),
	}
	for _, c := range []*color.Color{r.user, r.assistant, r.dim, r.accent, r.bold} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	if r.persona == "" {
		r.persona = "Assistant"
	}
	tr := opts.Translator
	if tr == nil {
		tr = i18n.MustNew(cnst.LangDefault)
	}
	r.tmpl = template.NewRenderer(gotemplate.FuncMap{
		"bold": r.bold.Sprint,
		"link": r.accent.Sprint,
		"t":    func(id string) string { return tr.T(id, nil) },
	})
	return r
}

func (r *Renderer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// Transcript returns the messages currently in the chat log
func (r *Renderer) Transcript() []widget.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]widget.Message(nil), r.messages...)
}

// Overlay returns the name of the open overlay, or "" when none is open
func (r *Renderer) Overlay() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overlay
}

// Choice returns the n-th (1-based) choice of the latest offer
func (r *Renderer) Choice(n int) (*widget.Choice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n < 1 || n > len(r.choices) {
		return nil, false
	}
	return r.choices[n-1], true
}

func (r *Renderer) AddMessage(msg widget.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	switch msg.Role {
	case widget.RoleUser:
		r.printf("%s %s\n", r.user.Sprint("You:"), msg.Text)
	default:
		r.printf("%s %s\n", r.assistant.Sprint(r.persona+":"), msg.Text)
	}
}

// RemoveMessage drops msg from the transcript; printed lines stay on screen
func (r *Renderer) RemoveMessage(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.messages {
		if m.ID == id {
			r.messages = append(r.messages[:i], r.messages[i+1:]...)
			return
		}
	}
}

// ClearInput is a no-op: the REPL reads every line fresh
func (r *Renderer) ClearInput() {}

func (r *Renderer) ShowChoices(prompt string, choices []*widget.Choice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.choices = choices
	r.printf("%s\n", r.accent.Sprint(prompt))
	for i, ch := range choices {
		r.printf("  [%d] %s\n", i+1, ch.Label())
	}
	r.printf("%s\n", r.dim.Sprint("  use /choose N"))
}

func (r *Renderer) DisableChoice(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disabled[id] = true
}

// ChoiceDisabled reports whether the choice with id was already used
func (r *Renderer) ChoiceDisabled(id uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.disabled[id]
}

func (r *Renderer) setOverlay(name string, open bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case open:
		r.overlay = name
		r.printf("%s\n", r.dim.Sprintf("-- %s --", name))
	case r.overlay == name:
		r.overlay = ""
		r.printf("%s\n", r.dim.Sprintf("-- %s closed --", name))
	}
}

func (r *Renderer) ShowSlideshow() { r.setOverlay("slideshow", true) }
func (r *Renderer) HideSlideshow() { r.setOverlay("slideshow", false) }
func (r *Renderer) FadeOut()       {}
func (r *Renderer) FadeIn()        {}

func (r *Renderer) RenderSlide(slide media.Slide, index, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.printf("%s %s\n    %s\n", r.bold.Sprintf("[%d/%d]", index+1, total), slide.Caption, r.accent.Sprint(slide.Src))
}

func (r *Renderer) PauseVideo() {}
func (r *Renderer) ClearVideo() {}

func (r *Renderer) LoadVideo(src, caption string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.printf("%s %s\n    %s\n", r.bold.Sprint(">"), caption, r.accent.Sprint(src))
}

func (r *Renderer) ShowVideo() { r.setOverlay("video", true) }
func (r *Renderer) HideVideo() { r.setOverlay("video", false) }

func (r *Renderer) RenderSyllabus(caption string, panels []overlay.Panel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.panels = panels
	if caption != "" {
		r.printf("%s\n", r.bold.Sprint(caption))
	}
	for i := range panels {
		r.printPanelLocked(i)
	}
	r.printf("%s\n", r.dim.Sprint("  use /toggle N"))
}

func (r *Renderer) SetPanelExpanded(index int, expanded bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= len(r.panels) {
		return
	}
	r.panels[index].Expanded = expanded
	r.printPanelLocked(index)
}

func (r *Renderer) printPanelLocked(i int) {
	p := r.panels[i]
	icon := "+"
	if p.Expanded {
		icon = "–"
	}
	r.printf("  %d. %s %s\n", i+1, p.Title, r.accent.Sprint(icon))
	if p.Expanded && p.Description != "" {
		for _, line := range strings.Split(p.Description, "\n") {
			r.printf("       %s\n", line)
		}
	}
}

func (r *Renderer) ShowSyllabus() { r.setOverlay("syllabus", true) }
func (r *Renderer) HideSyllabus() { r.setOverlay("syllabus", false) }

func (r *Renderer) RenderUpcoming(entries []overlay.UpcomingEntry, emptyText string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(entries) == 0 {
		r.printf("%s\n", emptyText)
		return
	}
	out, err := r.tmpl.Render(upcomingTemplate, entries)
	if err != nil {
		r.printf("%s\n", emptyText)
		return
	}
	r.printf("%s", out)
}

func (r *Renderer) ShowUpcoming() { r.setOverlay("upcoming", true) }
func (r *Renderer) HideUpcoming() { r.setOverlay("upcoming", false) }

var _ widget.Views = (*Renderer)(nil)
