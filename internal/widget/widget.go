package widget

import (
	"context"
	"errors"
	"fmt"
	"net/http/cookiejar"

	"go.uber.org/zap"

	"github.com/amoylab/coursechat/internal/client"
	"github.com/amoylab/coursechat/internal/common/config"
	"github.com/amoylab/coursechat/internal/i18n"
	"github.com/amoylab/coursechat/internal/identity"
	"github.com/amoylab/coursechat/internal/media"
	"github.com/amoylab/coursechat/internal/metadata"
	"github.com/amoylab/coursechat/internal/overlay"
	"github.com/amoylab/coursechat/internal/telemetry"
)

// Widget owns the lifetime of one embedded chat widget ("page")
type Widget struct {
	logger     *zap.Logger
	store      identity.Store
	identity   *identity.Identity
	recorder   *telemetry.Recorder
	overlays   Overlays
	controller *Controller
}

// New builds a widget from configuration. The session id is resolved
// immediately so the cookie is in place before the first request.
func New(ctx context.Context, cfg *config.WidgetConfig, views Views, logger *zap.Logger) (*Widget, error) {
	logger = logger.Named("widget")

	tr, err := i18n.New(cfg.Language)
	if err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	backend, err := client.New(cfg.Backend, jar, logger)
	if err != nil {
		return nil, err
	}

	store, err := identity.NewStore(ctx, logger, &cfg.Identity.Store)
	if err != nil {
		// the session id then lives for this process only
		logger.Warn("identity store unavailable, using memory store",
			zap.String("type", cfg.Identity.Store.Type), zap.Error(err))
		store = identity.NewMemoryStore()
	}
	ident := identity.New(store, jar, backend.BaseURL(), logger)

	var geo metadata.GeoLookup
	if cfg.Geo.Enabled {
		gc, err := client.NewGeoClient(cfg.Geo)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		geo = gc
	}
	collector := metadata.NewCollector(cfg.Environment, geo, cfg.Geo.Enabled, logger)

	overlays := Overlays{
		Slideshow: overlay.NewSlideshow(views, logger,
			overlay.WithTransition(cfg.Overlay.Slideshow.Transition),
			overlay.WithAutoAdvance(cfg.Overlay.Slideshow.AutoAdvance)),
		Video:    overlay.NewVideo(views),
		Syllabus: overlay.NewSyllabus(views, tr),
		Upcoming: overlay.NewUpcoming(views, backend, tr, cfg.Overlay.Upcoming.DateLayout, logger),
	}

	w := &Widget{
		logger:   logger,
		store:    store,
		identity: ident,
		recorder: telemetry.NewRecorder(backend, ident, cfg.Telemetry, logger),
		overlays: overlays,
		controller: NewController(Deps{
			View:     views,
			Tr:       tr,
			Query:    backend,
			Loader:   media.NewLoader(backend, logger),
			Session:  ident,
			Metadata: collector,
			Overlays: overlays,
			Persona:  cfg.Persona,
		}, logger),
	}

	logger.Info("widget ready",
		zap.String("backend", cfg.Backend.BaseURL),
		zap.String("session_id", ident.SessionID(ctx)),
		zap.String("persona", cfg.Persona),
		zap.String("language", tr.Lang()))
	return w, nil
}

// SessionID returns the visitor session id
func (w *Widget) SessionID(ctx context.Context) string {
	return w.identity.SessionID(ctx)
}

// Controller returns the conversation controller
func (w *Widget) Controller() *Controller {
	return w.controller
}

// Submit is Controller().Submit
func (w *Widget) Submit(ctx context.Context, text string) (*Pending, error) {
	return w.controller.Submit(ctx, text)
}

// Click records a click on the element labelled label
func (w *Widget) Click(label string) {
	w.recorder.Click(label)
}

// PointerMoved records a pointer position
func (w *Widget) PointerMoved(x, y int) {
	w.recorder.Move(x, y)
}

func (w *Widget) NextSlide()      { w.overlays.Slideshow.Next() }
func (w *Widget) PrevSlide()      { w.overlays.Slideshow.Prev() }
func (w *Widget) CloseSlideshow() { w.overlays.Slideshow.Close() }
func (w *Widget) CloseVideo()     { w.overlays.Video.Close() }
func (w *Widget) CloseSyllabus()  { w.overlays.Syllabus.Close() }
func (w *Widget) CloseUpcoming()  { w.overlays.Upcoming.Close() }

// ToggleSyllabusPanel expands or collapses syllabus panel i
func (w *Widget) ToggleSyllabusPanel(i int) (bool, error) {
	return w.overlays.Syllabus.Toggle(i)
}

// Close is the page-exit hook: it flushes telemetry, waits for in-flight
// work and closes every overlay.
func (w *Widget) Close(ctx context.Context) error {
	var errs []error
	if err := w.recorder.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("telemetry: %w", err))
	}
	if err := w.controller.Wait(ctx); err != nil {
		errs = append(errs, fmt.Errorf("pending work: %w", err))
	}

	w.CloseSlideshow()
	w.CloseVideo()
	w.CloseSyllabus()
	w.CloseUpcoming()

	if err := w.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("identity store: %w", err))
	}
	w.logger.Info("widget closed")
	return errors.Join(errs...)
}
