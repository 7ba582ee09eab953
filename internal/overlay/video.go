package overlay

import (
	"sync"

	"github.com/amoylab/coursechat/internal/media"
)

// Video plays a single clip
type Video struct {
	view VideoView

	mu      sync.Mutex
	open    bool
	current *media.Video
}

func NewVideo(view VideoView) *Video {
	return &Video{view: view}
}

// Play stops whatever is playing and starts v
func (o *Video) Play(v *media.Video) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.current != nil {
		o.view.PauseVideo()
		o.view.ClearVideo()
	}
	clip := *v
	o.current = &clip
	o.view.LoadVideo(clip.Src, clip.Caption)
	o.view.ShowVideo()
	o.open = true
}

// Close pauses playback, releases the source and hides the overlay
func (o *Video) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.open {
		return
	}
	o.view.PauseVideo()
	o.view.ClearVideo()
	o.view.HideVideo()
	o.current = nil
	o.open = false
}

// Current returns the clip being played, nil when closed
func (o *Video) Current() *media.Video {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil {
		return nil
	}
	clip := *o.current
	return &clip
}
