package widget

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/amoylab/coursechat/internal/common/cnst"
	"github.com/amoylab/coursechat/internal/common/config"
	"github.com/amoylab/coursechat/internal/common/dto"
)

type fakeBackend struct {
	mu      sync.Mutex
	queries []dto.QueryRequest
	cookies []string
	clicks  []dto.SessionClicksRequest
	moves   []dto.SessionMovesRequest
}

func (b *fakeBackend) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(cnst.PathQuery, func(w http.ResponseWriter, r *http.Request) {
		var req dto.QueryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		b.mu.Lock()
		b.queries = append(b.queries, req)
		if c, err := r.Cookie(cnst.SessionKey); err == nil {
			b.cookies = append(b.cookies, c.Value)
		}
		b.mu.Unlock()
		_ = json.NewEncoder(w).Encode(dto.QueryResponse{Response: "Have a look [SHOW_VIDEO:intro]"})
	})
	mux.HandleFunc(cnst.PathMediaMatch, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]dto.MediaRecord{{MediaURL: "https://cdn.example.com/intro.mp4", Caption: "Intro"}})
	})
	mux.HandleFunc(cnst.PathSessionClicks, func(w http.ResponseWriter, r *http.Request) {
		var req dto.SessionClicksRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		b.mu.Lock()
		b.clicks = append(b.clicks, req)
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc(cnst.PathSessionMove, func(w http.ResponseWriter, r *http.Request) {
		var req dto.SessionMovesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		b.mu.Lock()
		b.moves = append(b.moves, req)
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func newTestWidget(t *testing.T) (*Widget, *fakeViews, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{}
	srv := httptest.NewServer(backend.handler(t))
	t.Cleanup(srv.Close)

	cfg := config.Default[config.WidgetConfig]()
	cfg.Backend.BaseURL = srv.URL
	cfg.Backend.Timeout = 5 * time.Second
	cfg.Identity.Store.Type = "memory"
	cfg.Environment.UserAgent = "Mozilla/5.0 (X11; Linux x86_64)"
	cfg.Overlay.Slideshow.Transition = time.Millisecond

	views := newFakeViews()
	w, err := New(context.Background(), cfg, views, zap.NewNop())
	require.NoError(t, err)
	return w, views, backend
}

func TestWidget_EndToEnd(t *testing.T) {
	w, views, backend := newTestWidget(t)
	ctx := context.Background()
	sid := w.SessionID(ctx)
	require.NotEmpty(t, sid)

	p, err := w.Submit(ctx, "tell me about python")
	require.NoError(t, err)
	require.NoError(t, p.Wait(ctx))

	p, err = w.Submit(ctx, "and java?")
	require.NoError(t, err)
	require.NoError(t, p.Wait(ctx))

	assert.Equal(t, []string{
		"user: tell me about python", "assistant: Have a look",
		"user: and java?", "assistant: Have a look",
	}, views.texts())
	assert.True(t, views.isVisible("video"))
	assert.Equal(t, "https://cdn.example.com/intro.mp4", views.video)

	require.Len(t, backend.queries, 2)
	assert.Equal(t, sid, backend.queries[0].SessionID)
	assert.Equal(t, "Adam", backend.queries[0].PersonaID)
	require.NotNil(t, backend.queries[0].Metadata)
	assert.Equal(t, "Mozilla", backend.queries[0].Metadata.BrowserName)
	assert.Nil(t, backend.queries[1].Metadata)
	assert.Equal(t, []string{sid, sid}, backend.cookies)

	w.CloseVideo()
	assert.False(t, views.isVisible("video"))
}

func TestWidget_CloseFlushesTelemetry(t *testing.T) {
	w, _, backend := newTestWidget(t)

	w.Click("sendBtn")
	w.Click("suggestion")
	w.PointerMoved(10, 20)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, w.Close(ctx))

	require.Len(t, backend.clicks, 1)
	assert.Equal(t, w.SessionID(ctx), backend.clicks[0].SessionID)
	require.Len(t, backend.clicks[0].Clicks, 2)
	assert.Equal(t, "sendBtn", backend.clicks[0].Clicks[0].Label)

	require.Len(t, backend.moves, 1)
	assert.Equal(t, []dto.MoveEvent{{X: 10, Y: 20, T: backend.moves[0].Moves[0].T}}, backend.moves[0].Moves)
}

func TestWidget_FlushAtThreshold(t *testing.T) {
	w, _, backend := newTestWidget(t)
	for i := 0; i < cnst.ClickFlushThreshold; i++ {
		w.Click("btn")
	}
	require.Eventually(t, func() bool {
		backend.mu.Lock()
		defer backend.mu.Unlock()
		return len(backend.clicks) == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, w.Close(context.Background()))

	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Len(t, backend.clicks, 1, "nothing left to flush on close")
	assert.Len(t, backend.clicks[0].Clicks, cnst.ClickFlushThreshold)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default[config.WidgetConfig]()
	cfg.Backend.BaseURL = "not a url"
	_, err := New(context.Background(), cfg, newFakeViews(), zap.NewNop())
	assert.Error(t, err)

	cfg = config.Default[config.WidgetConfig]()
	cfg.Identity.Store.Type = "etcd"
	_, err = New(context.Background(), cfg, newFakeViews(), zap.NewNop())
	assert.Error(t, err)
}

func TestNew_UnreachableRedisFallsBackToMemory(t *testing.T) {
	backend := &fakeBackend{}
	srv := httptest.NewServer(backend.handler(t))
	t.Cleanup(srv.Close)

	cfg := config.Default[config.WidgetConfig]()
	cfg.Backend.BaseURL = srv.URL
	cfg.Identity.Store.Type = "redis"
	cfg.Identity.Store.Redis.Addr = "127.0.0.1:1"

	core, logs := observer.New(zap.WarnLevel)
	w, err := New(context.Background(), cfg, newFakeViews(), zap.New(core))
	require.NoError(t, err)
	require.NotNil(t, w)
	t.Cleanup(func() { _ = w.Close(context.Background()) })

	id := w.SessionID(context.Background())
	assert.NotEmpty(t, id)
	assert.Equal(t, id, w.SessionID(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("identity store unavailable, using memory store").Len())
}
