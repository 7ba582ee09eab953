package widget

import (
	"sync"

	"github.com/amoylab/coursechat/internal/media"
	"github.com/amoylab/coursechat/internal/overlay"
)

// fakeViews implements Views and keeps the visible state
type fakeViews struct {
	mu        sync.Mutex
	messages  []Message
	cleared   int
	prompt    string
	choices   []*Choice
	disabled  []uint64
	slides    []int
	video     string
	panels    []overlay.Panel
	upcoming  []overlay.UpcomingEntry
	emptyText string
	visible   map[string]bool
}

func newFakeViews() *fakeViews {
	return &fakeViews{visible: make(map[string]bool)}
}

func (f *fakeViews) AddMessage(msg Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
}

func (f *fakeViews) RemoveMessage(id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.messages {
		if m.ID == id {
			f.messages = append(f.messages[:i], f.messages[i+1:]...)
			return
		}
	}
}

func (f *fakeViews) ClearInput() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared++
}

func (f *fakeViews) ShowChoices(prompt string, choices []*Choice) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompt, f.choices = prompt, choices
}

func (f *fakeViews) DisableChoice(id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disabled = append(f.disabled, id)
}

func (f *fakeViews) setVisible(name string, v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visible[name] = v
}

func (f *fakeViews) ShowSlideshow() { f.setVisible("slideshow", true) }
func (f *fakeViews) HideSlideshow() { f.setVisible("slideshow", false) }
func (f *fakeViews) FadeOut()       {}
func (f *fakeViews) FadeIn()        {}
func (f *fakeViews) RenderSlide(_ media.Slide, index, _ int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slides = append(f.slides, index)
}

func (f *fakeViews) PauseVideo() {}
func (f *fakeViews) ClearVideo() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.video = ""
}
func (f *fakeViews) LoadVideo(src, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.video = src
}
func (f *fakeViews) ShowVideo() { f.setVisible("video", true) }
func (f *fakeViews) HideVideo() { f.setVisible("video", false) }

func (f *fakeViews) RenderSyllabus(_ string, panels []overlay.Panel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.panels = panels
}
func (f *fakeViews) SetPanelExpanded(int, bool) {}
func (f *fakeViews) ShowSyllabus()              { f.setVisible("syllabus", true) }
func (f *fakeViews) HideSyllabus()              { f.setVisible("syllabus", false) }

func (f *fakeViews) RenderUpcoming(entries []overlay.UpcomingEntry, emptyText string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upcoming, f.emptyText = entries, emptyText
}
func (f *fakeViews) ShowUpcoming() { f.setVisible("upcoming", true) }
func (f *fakeViews) HideUpcoming() { f.setVisible("upcoming", false) }

func (f *fakeViews) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.messages))
	for i, m := range f.messages {
		out[i] = string(m.Role) + ": " + m.Text
	}
	return out
}

func (f *fakeViews) isVisible(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visible[name]
}
