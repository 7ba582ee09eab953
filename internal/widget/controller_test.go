package widget

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/amoylab/coursechat/internal/common/cnst"
	"github.com/amoylab/coursechat/internal/common/dto"
	"github.com/amoylab/coursechat/internal/common/errorx"
	"github.com/amoylab/coursechat/internal/i18n"
	"github.com/amoylab/coursechat/internal/media"
	"github.com/amoylab/coursechat/internal/overlay"
)

type stubQuery struct {
	mu       sync.Mutex
	reqs     []dto.QueryRequest
	respond  func(req dto.QueryRequest) (*dto.QueryResponse, error)
	released chan struct{}
}

func (s *stubQuery) Query(ctx context.Context, req dto.QueryRequest) (*dto.QueryResponse, error) {
	s.mu.Lock()
	s.reqs = append(s.reqs, req)
	s.mu.Unlock()
	if s.released != nil {
		<-s.released
	}
	return s.respond(req)
}

func reply(text string) func(dto.QueryRequest) (*dto.QueryResponse, error) {
	return func(dto.QueryRequest) (*dto.QueryResponse, error) {
		return &dto.QueryResponse{Response: text}, nil
	}
}

type stubLoader struct {
	mu      sync.Mutex
	calls   []string
	payload map[cnst.ContentKind]media.Payload
	err     error
}

func (s *stubLoader) Load(_ context.Context, kind cnst.ContentKind, tag string) (media.Payload, error) {
	s.mu.Lock()
	s.calls = append(s.calls, kind.String()+":"+tag)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if !kind.IsMedia() {
		return nil, errorx.ErrUnknownMediaType
	}
	return s.payload[kind], nil
}

type stubSession struct{}

func (stubSession) SessionID(context.Context) string { return "sess-1" }

type stubMeta struct {
	mu       sync.Mutex
	sent     bool
	enriched int
}

func (s *stubMeta) PayloadOnce() *dto.Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sent {
		return nil
	}
	s.sent = true
	return &dto.Metadata{OSName: "linux"}
}

func (s *stubMeta) Enrich(_ context.Context, m *dto.Metadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enriched++
	m.Country = "US"
}

type harness struct {
	c      *Controller
	views  *fakeViews
	query  *stubQuery
	loader *stubLoader
	meta   *stubMeta
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	views := newFakeViews()
	tr := i18n.MustNew("en")
	h := &harness{
		views: views,
		query: &stubQuery{respond: reply("ok")},
		loader: &stubLoader{payload: map[cnst.ContentKind]media.Payload{
			cnst.KindSlideshow: &media.Slideshow{Slides: []media.Slide{{Src: "a.jpg"}, {Src: "b.jpg"}}},
			cnst.KindVideo:     &media.Video{Src: "intro.mp4"},
			cnst.KindSyllabus:  &media.Syllabus{Entries: []media.Entry{{Title: "Basics"}, {}}},
		}},
		meta: &stubMeta{},
	}
	h.c = NewController(Deps{
		View:     views,
		Tr:       tr,
		Query:    h.query,
		Loader:   h.loader,
		Session:  stubSession{},
		Metadata: h.meta,
		Overlays: Overlays{
			Slideshow: overlay.NewSlideshow(views, zap.NewNop(), overlay.WithTransition(time.Millisecond)),
			Video:     overlay.NewVideo(views),
			Syllabus:  overlay.NewSyllabus(views, tr),
			Upcoming:  overlay.NewUpcoming(views, upcomingStub{}, tr, "", zap.NewNop()),
		},
	}, zap.NewNop())
	return h
}

type upcomingStub struct{ err error }

func (u upcomingStub) UpcomingClasses(context.Context) ([]dto.UpcomingClass, error) {
	return nil, u.err
}

func submit(t *testing.T, h *harness, text string) {
	t.Helper()
	p, err := h.c.Submit(context.Background(), text)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, p.Wait(ctx))
}

func TestSubmit_RejectsBlankInput(t *testing.T) {
	h := newHarness(t)
	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := h.c.Submit(context.Background(), text)
		assert.ErrorIs(t, err, errorx.ErrEmptyInput)
	}
	assert.Empty(t, h.views.texts())
	assert.Zero(t, h.views.cleared)
}

func TestSubmit_PlainReply(t *testing.T) {
	h := newHarness(t)
	h.query.respond = reply("Our Python course runs 8 weeks.")

	submit(t, h, "How long is Python?")

	assert.Equal(t, []string{
		"user: How long is Python?",
		"assistant: Our Python course runs 8 weeks.",
	}, h.views.texts())
	assert.Equal(t, 1, h.views.cleared)

	require.Len(t, h.query.reqs, 1)
	req := h.query.reqs[0]
	assert.Equal(t, "How long is Python?", req.Query)
	assert.Equal(t, "Adam", req.PersonaID)
	assert.Equal(t, "sess-1", req.SessionID)
}

func TestSubmit_MetadataOnlyOnFirstQuery(t *testing.T) {
	h := newHarness(t)
	submit(t, h, "one")
	submit(t, h, "two")

	require.Len(t, h.query.reqs, 2)
	require.NotNil(t, h.query.reqs[0].Metadata)
	assert.Equal(t, "US", h.query.reqs[0].Metadata.Country)
	assert.Nil(t, h.query.reqs[1].Metadata)
	assert.Equal(t, 1, h.meta.enriched)
}

func TestSubmit_PlaceholderShownWhileWaiting(t *testing.T) {
	h := newHarness(t)
	h.query.released = make(chan struct{})

	p, err := h.c.Submit(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, []string{"user: hi", "assistant: Thinking..."}, h.views.texts())

	close(h.query.released)
	require.NoError(t, p.Wait(context.Background()))
	assert.Equal(t, []string{"user: hi", "assistant: ok"}, h.views.texts())
}

func TestSubmit_ConcurrentSubmitsRemoveOwnPlaceholder(t *testing.T) {
	h := newHarness(t)
	release := map[string]chan struct{}{"first": make(chan struct{}), "second": make(chan struct{})}
	h.query.respond = func(req dto.QueryRequest) (*dto.QueryResponse, error) {
		<-release[req.Query]
		return &dto.QueryResponse{Response: "re " + req.Query}, nil
	}

	p1, err := h.c.Submit(context.Background(), "first")
	require.NoError(t, err)
	p2, err := h.c.Submit(context.Background(), "second")
	require.NoError(t, err)

	close(release["second"])
	require.NoError(t, p2.Wait(context.Background()))
	assert.Equal(t, []string{
		"user: first", "assistant: Thinking...",
		"user: second", "assistant: re second",
	}, h.views.texts())

	close(release["first"])
	require.NoError(t, p1.Wait(context.Background()))
	assert.Equal(t, []string{
		"user: first", "user: second", "assistant: re second", "assistant: re first",
	}, h.views.texts())
}

func TestSubmit_TransportFailure(t *testing.T) {
	h := newHarness(t)
	h.query.respond = func(dto.QueryRequest) (*dto.QueryResponse, error) {
		return nil, errorx.NewTransportError("query", errors.New("connection refused"))
	}

	submit(t, h, "hi")
	assert.Equal(t, []string{"user: hi", "assistant: Fetch error: query: connection refused"}, h.views.texts())
}

func TestSubmit_ErrorBody(t *testing.T) {
	h := newHarness(t)
	h.query.respond = func(dto.QueryRequest) (*dto.QueryResponse, error) {
		return &dto.QueryResponse{Error: "Persona not found"}, nil
	}

	submit(t, h, "hi")
	assert.Equal(t, []string{"user: hi", "assistant: Persona not found"}, h.views.texts())
}

func TestSubmit_EmptyResponseRendersNothing(t *testing.T) {
	h := newHarness(t)
	h.query.respond = reply("")

	submit(t, h, "hi")
	assert.Equal(t, []string{"user: hi"}, h.views.texts())
}

func TestSubmit_DirectDirectiveOpensOverlay(t *testing.T) {
	tests := []struct {
		reply   string
		overlay string
	}{
		{"Here is a tour [SHOW_SLIDESHOW:campus]", "slideshow"},
		{"Watch this [SHOW_VIDEO:intro]", "video"},
		{"The outline: [SHOW_SYLLABUS:python]", "syllabus"},
	}
	for _, tt := range tests {
		t.Run(tt.overlay, func(t *testing.T) {
			h := newHarness(t)
			h.query.respond = reply(tt.reply)

			submit(t, h, "show me")
			assert.True(t, h.views.isVisible(tt.overlay))
			texts := h.views.texts()
			require.Len(t, texts, 2)
			assert.NotContains(t, texts[1], "[SHOW_")
		})
	}
}

func TestSubmit_SyllabusTitlesDefaulted(t *testing.T) {
	h := newHarness(t)
	h.query.respond = reply("[SHOW_SYLLABUS:python]")

	submit(t, h, "outline")
	assert.Equal(t, []string{"user: outline"}, h.views.texts())
	require.Len(t, h.views.panels, 2)
	assert.Equal(t, "Untitled", h.views.panels[1].Title)
}

func TestSubmit_MediaErrorsBecomeMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no visuals", errorx.ErrNoVisuals, "No visuals found for that category."},
		{"transport", errorx.NewTransportError("media-match", errors.New("x")), "Failed to load visual content."},
		{"not array", &errorx.FormatError{Reason: errorx.NotArray}, "Syllabus format error: Not a valid array."},
		{"unparseable", &errorx.FormatError{Reason: errorx.Unparseable}, "Syllabus format error: Could not parse data."},
		{"unknown", errorx.ErrUnknownMediaType, "Unknown media type."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.query.respond = reply("Sure [SHOW_VIDEO:intro]")
			h.loader.err = tt.err

			submit(t, h, "video")
			assert.Equal(t, []string{"user: video", "assistant: Sure", "assistant: " + tt.want}, h.views.texts())
			assert.False(t, h.views.isVisible("video"))
		})
	}
}

func TestSubmit_OfferChoicesAreSingleUse(t *testing.T) {
	h := newHarness(t)
	h.query.respond = reply("Want more? [SHOW_OFFER:video,syllabus:python]")

	submit(t, h, "python")
	assert.Equal(t, []string{"user: python", "assistant: Want more?"}, h.views.texts())
	assert.Empty(t, h.loader.calls, "offers load nothing until chosen")

	require.Len(t, h.views.choices, 2)
	assert.Equal(t, "Would you like to see more?", h.views.prompt)
	video, syllabus := h.views.choices[0], h.views.choices[1]
	assert.Equal(t, cnst.KindVideo, video.Kind())
	assert.Equal(t, "Watch video", video.Label())
	assert.Equal(t, "python", syllabus.Tag())

	p, err := video.Activate(context.Background())
	require.NoError(t, err)
	require.NoError(t, p.Wait(context.Background()))
	assert.True(t, video.Used())
	assert.True(t, h.views.isVisible("video"))

	_, err = video.Activate(context.Background())
	assert.ErrorIs(t, err, errorx.ErrChoiceUsed)

	assert.False(t, syllabus.Used(), "choices are independent")
	p, err = syllabus.Activate(context.Background())
	require.NoError(t, err)
	require.NoError(t, p.Wait(context.Background()))

	assert.Equal(t, []string{"VIDEO:python", "SYLLABUS:python"}, h.loader.calls)
	assert.Equal(t, []uint64{video.ID(), syllabus.ID()}, h.views.disabled)
}

func TestLoadSelected(t *testing.T) {
	h := newHarness(t)

	p, err := h.c.LoadSelected(context.Background(), "python", "video")
	require.NoError(t, err)
	require.NoError(t, p.Wait(context.Background()))
	assert.Equal(t, []string{"VIDEO:python"}, h.loader.calls)

	p, err = h.c.LoadSelected(context.Background(), "python", "podcast")
	require.NoError(t, err)
	require.NoError(t, p.Wait(context.Background()))
	assert.Equal(t, []string{"assistant: Unknown media type."}, h.views.texts())

	_, err = h.c.LoadSelected(context.Background(), "", "video")
	assert.ErrorIs(t, err, errorx.ErrEmptyInput)
}

func TestShowUpcoming(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.c.ShowUpcoming(context.Background()).Wait(context.Background()))
	assert.True(t, h.views.isVisible("upcoming"))
	assert.Equal(t, "No upcoming classes found.", h.views.emptyText)
}

func TestWait(t *testing.T) {
	h := newHarness(t)
	h.query.released = make(chan struct{})
	_, err := h.c.Submit(context.Background(), "hi")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, h.c.Wait(ctx), context.DeadlineExceeded)

	close(h.query.released)
	assert.NoError(t, h.c.Wait(context.Background()))
}
