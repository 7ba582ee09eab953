package overlay

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/amoylab/coursechat/internal/common/cnst"
	"github.com/amoylab/coursechat/internal/common/dto"
	"github.com/amoylab/coursechat/internal/i18n"
	"github.com/amoylab/coursechat/pkg/trace"
)

var startDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// UpcomingFetcher lists classes that have not started yet
type UpcomingFetcher interface {
	UpcomingClasses(ctx context.Context) ([]dto.UpcomingClass, error)
}

// UpcomingEntry is a class ready for display
type UpcomingEntry struct {
	Name             string
	Location         string
	Length           string
	StartDate        string
	RegistrationLink string
	LinkLabel        string
}

// Upcoming lists the upcoming classes
type Upcoming struct {
	logger     *zap.Logger
	view       UpcomingView
	fetcher    UpcomingFetcher
	tr         *i18n.Translator
	dateLayout string

	mu   sync.Mutex
	open bool
}

func NewUpcoming(view UpcomingView, fetcher UpcomingFetcher, tr *i18n.Translator, dateLayout string, logger *zap.Logger) *Upcoming {
	if dateLayout == "" {
		dateLayout = cnst.DefaultDateLayout
	}
	return &Upcoming{
		logger:     logger.Named("overlay.upcoming"),
		view:       view,
		fetcher:    fetcher,
		tr:         tr,
		dateLayout: dateLayout,
	}
}

// Open fetches the listing and shows it. On failure the overlay stays closed.
func (o *Upcoming) Open(ctx context.Context) error {
	span := trace.Tracer(cnst.TraceWidget).Start(ctx, cnst.SpanUpcomingFetch)
	defer span.End()

	classes, err := o.fetcher.UpcomingClasses(span.Ctx)
	if err != nil {
		span.Fail(err)
		o.logger.Error("failed to load upcoming classes", zap.Error(err))
		return err
	}

	entries := make([]UpcomingEntry, len(classes))
	for i, c := range classes {
		entries[i] = UpcomingEntry{
			Name:             c.CourseName,
			Location:         c.CourseLocation,
			Length:           c.CourseLength,
			StartDate:        o.formatDate(c.StartDate),
			RegistrationLink: c.RegistrationLink,
			LinkLabel:        o.tr.T(i18n.MsgRegisterInfo, nil),
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.view.RenderUpcoming(entries, o.tr.T(i18n.MsgNoUpcomingClasses, nil))
	o.view.ShowUpcoming()
	o.open = true
	return nil
}

// Close hides the listing
func (o *Upcoming) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.open {
		return
	}
	o.view.HideUpcoming()
	o.open = false
}

// IsOpen reports whether the listing is shown
func (o *Upcoming) IsOpen() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.open
}

// formatDate renders raw with the configured layout, or returns it unchanged
// when it is not a recognised date.
func (o *Upcoming) formatDate(raw string) string {
	for _, layout := range startDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(o.dateLayout)
		}
	}
	return raw
}
