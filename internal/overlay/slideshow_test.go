package overlay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/amoylab/coursechat/internal/common/errorx"
	"github.com/amoylab/coursechat/internal/media"
)

var threeSlides = []media.Slide{{Src: "a.jpg"}, {Src: "b.jpg"}, {Src: "c.jpg"}}

func waitRendered(t *testing.T, r *recorder) int {
	t.Helper()
	select {
	case i := <-r.rendered:
		return i
	case <-time.After(time.Second):
		t.Fatal("slide was not rendered")
		return -1
	}
}

func TestSlideshow_StartRendersFirstSlide(t *testing.T) {
	view := newRecorder()
	s := NewSlideshow(view, zap.NewNop(), WithTransition(time.Millisecond))

	require.NoError(t, s.Start(threeSlides))
	assert.Equal(t, 0, waitRendered(t, view))

	assert.Eventually(t, func() bool {
		calls := view.Calls()
		return len(calls) == 4 && calls[3] == "fade-in"
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"fade-out", "show", "render 0/3 a.jpg", "fade-in"}, view.Calls())

	i, open := s.Current()
	assert.True(t, open)
	assert.Equal(t, 0, i)
}

func TestSlideshow_EmptyListIsRejected(t *testing.T) {
	view := newRecorder()
	s := NewSlideshow(view, zap.NewNop())

	assert.ErrorIs(t, s.Start(nil), errorx.ErrNoSlides)
	_, open := s.Current()
	assert.False(t, open)
	assert.Empty(t, view.Calls())
}

func TestSlideshow_NavigationWraps(t *testing.T) {
	view := newRecorder()
	s := NewSlideshow(view, zap.NewNop(), WithTransition(time.Millisecond))
	require.NoError(t, s.Start(threeSlides))
	waitRendered(t, view)

	s.Prev()
	assert.Equal(t, 2, waitRendered(t, view))
	s.Next()
	assert.Equal(t, 0, waitRendered(t, view))
	s.Next()
	assert.Equal(t, 1, waitRendered(t, view))

	i, _ := s.Current()
	assert.Equal(t, 1, i)
}

func TestSlideshow_NewerRenderSupersedesPending(t *testing.T) {
	view := newRecorder()
	s := NewSlideshow(view, zap.NewNop(), WithTransition(50*time.Millisecond))
	require.NoError(t, s.Start(threeSlides))

	s.Next()
	s.Next()
	assert.Equal(t, 2, waitRendered(t, view))

	select {
	case i := <-view.rendered:
		t.Fatalf("stale slide %d rendered", i)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSlideshow_CloseResetsAndCancelsTransition(t *testing.T) {
	view := newRecorder()
	s := NewSlideshow(view, zap.NewNop(), WithTransition(30*time.Millisecond))
	require.NoError(t, s.Start(threeSlides))
	s.Close()

	i, open := s.Current()
	assert.False(t, open)
	assert.Equal(t, 0, i)

	select {
	case <-view.rendered:
		t.Fatal("render after close")
	case <-time.After(80 * time.Millisecond):
	}
	assert.Equal(t, []string{"fade-out", "show", "hide"}, view.Calls())

	s.Next()
	s.Close()
	assert.Equal(t, []string{"fade-out", "show", "hide"}, view.Calls(), "closed slideshow ignores input")
}

func TestSlideshow_AutoAdvance(t *testing.T) {
	view := newRecorder()
	s := NewSlideshow(view, zap.NewNop(), WithTransition(time.Millisecond), WithAutoAdvance(10*time.Millisecond))
	require.NoError(t, s.Start(threeSlides))

	assert.Equal(t, 0, waitRendered(t, view))
	assert.Equal(t, 1, waitRendered(t, view))
	assert.Equal(t, 2, waitRendered(t, view))
	s.Close()

	time.Sleep(30 * time.Millisecond)
	for len(view.rendered) > 0 {
		<-view.rendered
	}
	select {
	case <-view.rendered:
		t.Fatal("auto-advance kept running after close")
	case <-time.After(50 * time.Millisecond):
	}
}
