package overlay

import (
	"fmt"
	"sync"

	"github.com/amoylab/coursechat/internal/media"
)

// recorder implements every view and records calls in order
type recorder struct {
	mu       sync.Mutex
	calls    []string
	panels   []Panel
	entries  []UpcomingEntry
	empty    string
	rendered chan int
}

func newRecorder() *recorder {
	return &recorder{rendered: make(chan int, 64)}
}

func (r *recorder) add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recorder) ShowSlideshow() { r.add("show") }
func (r *recorder) HideSlideshow() { r.add("hide") }
func (r *recorder) FadeOut()       { r.add("fade-out") }
func (r *recorder) FadeIn()        { r.add("fade-in") }
func (r *recorder) RenderSlide(slide media.Slide, index, total int) {
	r.add("render %d/%d %s", index, total, slide.Src)
	r.rendered <- index
}

func (r *recorder) PauseVideo()                   { r.add("pause") }
func (r *recorder) ClearVideo()                   { r.add("clear") }
func (r *recorder) LoadVideo(src, caption string) { r.add("load %s %s", src, caption) }
func (r *recorder) ShowVideo()                    { r.add("show") }
func (r *recorder) HideVideo()                    { r.add("hide") }

func (r *recorder) RenderSyllabus(caption string, panels []Panel) {
	r.mu.Lock()
	r.panels = panels
	r.mu.Unlock()
	r.add("syllabus %s %d", caption, len(panels))
}
func (r *recorder) SetPanelExpanded(index int, expanded bool) { r.add("panel %d %t", index, expanded) }
func (r *recorder) ShowSyllabus()                             { r.add("show") }
func (r *recorder) HideSyllabus()                             { r.add("hide") }

func (r *recorder) RenderUpcoming(entries []UpcomingEntry, emptyText string) {
	r.mu.Lock()
	r.entries, r.empty = entries, emptyText
	r.mu.Unlock()
	r.add("upcoming %d", len(entries))
}
func (r *recorder) ShowUpcoming() { r.add("show") }
func (r *recorder) HideUpcoming() { r.add("hide") }
