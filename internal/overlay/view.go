package overlay

import "github.com/amoylab/coursechat/internal/media"

// Views are called from controller goroutines and must be safe for concurrent use.

type SlideshowView interface {
	ShowSlideshow()
	HideSlideshow()
	FadeOut()
	// RenderSlide displays slide and returns once its image is ready
	RenderSlide(slide media.Slide, index, total int)
	FadeIn()
}

type VideoView interface {
	PauseVideo()
	ClearVideo()
	LoadVideo(src, caption string)
	ShowVideo()
	HideVideo()
}

type SyllabusView interface {
	RenderSyllabus(caption string, panels []Panel)
	SetPanelExpanded(index int, expanded bool)
	ShowSyllabus()
	HideSyllabus()
}

type UpcomingView interface {
	// RenderUpcoming lists entries; with no entries emptyText is shown instead
	RenderUpcoming(entries []UpcomingEntry, emptyText string)
	ShowUpcoming()
	HideUpcoming()
}
