package overlay

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/amoylab/coursechat/internal/common/cnst"
	"github.com/amoylab/coursechat/internal/common/errorx"
	"github.com/amoylab/coursechat/internal/media"
)

// Slideshow shows one slide at a time with a fade transition
type Slideshow struct {
	logger      *zap.Logger
	view        SlideshowView
	transition  time.Duration
	autoAdvance time.Duration

	mu     sync.Mutex
	open   bool
	slides []media.Slide
	index  int
	gen    uint64 // bumped by every render; stale transitions are dropped
	timer  *time.Timer
	stop   chan struct{}
}

type SlideshowOption func(*Slideshow)

// WithTransition sets the delay between fade-out and rendering the next slide
func WithTransition(d time.Duration) SlideshowOption {
	return func(s *Slideshow) { s.transition = d }
}

// WithAutoAdvance moves to the next slide every d while open; 0 disables it
func WithAutoAdvance(d time.Duration) SlideshowOption {
	return func(s *Slideshow) { s.autoAdvance = d }
}

func NewSlideshow(view SlideshowView, logger *zap.Logger, opts ...SlideshowOption) *Slideshow {
	s := &Slideshow{
		logger:     logger.Named("overlay.slideshow"),
		view:       view,
		transition: cnst.SlideTransition,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the slideshow at the first slide, replacing any current content
func (s *Slideshow) Start(slides []media.Slide) error {
	if len(slides) == 0 {
		return errorx.ErrNoSlides
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTimersLocked()
	s.slides = append([]media.Slide(nil), slides...)
	s.index = 0
	s.open = true
	s.renderLocked()
	s.view.ShowSlideshow()

	if s.autoAdvance > 0 {
		s.stop = make(chan struct{})
		go s.advanceLoop(s.stop, s.autoAdvance)
	}
	s.logger.Debug("slideshow started", zap.Int("slides", len(slides)))
	return nil
}

// Next shows the following slide, wrapping to the first
func (s *Slideshow) Next() {
	s.step(1)
}

// Prev shows the preceding slide, wrapping to the last
func (s *Slideshow) Prev() {
	s.step(-1)
}

func (s *Slideshow) step(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return
	}
	n := len(s.slides)
	s.index = ((s.index+delta)%n + n) % n
	s.renderLocked()
}

// Close hides the slideshow and resets its state
func (s *Slideshow) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return
	}
	s.stopTimersLocked()
	s.gen++
	s.open = false
	s.slides = nil
	s.index = 0
	s.view.HideSlideshow()
}

// Current returns the current slide index and whether the slideshow is open
func (s *Slideshow) Current() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index, s.open
}

func (s *Slideshow) renderLocked() {
	s.gen++
	gen, index, slide, total := s.gen, s.index, s.slides[s.index], len(s.slides)

	s.view.FadeOut()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.transition, func() {
		if !s.current(gen) {
			return
		}
		s.view.RenderSlide(slide, index, total)
		if s.current(gen) {
			s.view.FadeIn()
		}
	})
}

func (s *Slideshow) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open && s.gen == gen
}

func (s *Slideshow) stopTimersLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

func (s *Slideshow) advanceLoop(stop <-chan struct{}, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.Next()
		}
	}
}
