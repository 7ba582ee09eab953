package overlay

import (
	"fmt"
	"sync"

	"github.com/amoylab/coursechat/internal/i18n"
	"github.com/amoylab/coursechat/internal/media"
)

// Panel is one collapsible syllabus section
type Panel struct {
	Title       string
	Description string
	Expanded    bool
}

// Syllabus shows course sections as collapsible panels
type Syllabus struct {
	view SyllabusView
	tr   *i18n.Translator

	mu     sync.Mutex
	open   bool
	panels []Panel
}

func NewSyllabus(view SyllabusView, tr *i18n.Translator) *Syllabus {
	return &Syllabus{view: view, tr: tr}
}

// Show replaces the panels with s, all collapsed
func (o *Syllabus) Show(s *media.Syllabus) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.panels = make([]Panel, len(s.Entries))
	for i, e := range s.Entries {
		title := e.Title
		if title == "" {
			title = o.tr.T(i18n.MsgUntitled, nil)
		}
		o.panels[i] = Panel{Title: title, Description: e.Description}
	}
	o.view.RenderSyllabus(s.Caption, append([]Panel(nil), o.panels...))
	o.view.ShowSyllabus()
	o.open = true
}

// Toggle flips panel i and returns its new state
func (o *Syllabus) Toggle(i int) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.open || i < 0 || i >= len(o.panels) {
		return false, fmt.Errorf("no syllabus panel %d", i)
	}
	o.panels[i].Expanded = !o.panels[i].Expanded
	o.view.SetPanelExpanded(i, o.panels[i].Expanded)
	return o.panels[i].Expanded, nil
}

// Close hides the syllabus
func (o *Syllabus) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.open {
		return
	}
	o.view.HideSyllabus()
	o.open = false
	o.panels = nil
}

// Panels returns a snapshot of the panels
func (o *Syllabus) Panels() []Panel {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Panel(nil), o.panels...)
}
