package widget

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/amoylab/coursechat/internal/common/cnst"
	"github.com/amoylab/coursechat/internal/common/dto"
	"github.com/amoylab/coursechat/internal/common/errorx"
	"github.com/amoylab/coursechat/internal/i18n"
	"github.com/amoylab/coursechat/internal/media"
	"github.com/amoylab/coursechat/internal/overlay"
	"github.com/amoylab/coursechat/pkg/directive"
	"github.com/amoylab/coursechat/pkg/trace"
)

// QueryClient sends user queries to the conversational backend
type QueryClient interface {
	Query(ctx context.Context, req dto.QueryRequest) (*dto.QueryResponse, error)
}

// MediaLoader resolves a directive into displayable content
type MediaLoader interface {
	Load(ctx context.Context, kind cnst.ContentKind, tag string) (media.Payload, error)
}

// SessionSource provides the visitor session id
type SessionSource interface {
	SessionID(ctx context.Context) string
}

// MetadataSource provides the one-time session metadata
type MetadataSource interface {
	PayloadOnce() *dto.Metadata
	Enrich(ctx context.Context, m *dto.Metadata)
}

// Overlays groups the overlay controllers the conversation can open
type Overlays struct {
	Slideshow *overlay.Slideshow
	Video     *overlay.Video
	Syllabus  *overlay.Syllabus
	Upcoming  *overlay.Upcoming
}

// Controller runs the query/response loop of the chat
type Controller struct {
	logger   *zap.Logger
	view     ChatView
	tr       *i18n.Translator
	query    QueryClient
	loader   MediaLoader
	session  SessionSource
	meta     MetadataSource
	overlays Overlays
	persona  string

	ids atomic.Uint64
	wg  sync.WaitGroup
}

// Deps are the collaborators of a Controller
type Deps struct {
	View     ChatView
	Tr       *i18n.Translator
	Query    QueryClient
	Loader   MediaLoader
	Session  SessionSource
	Metadata MetadataSource
	Overlays Overlays
	Persona  string
}

func NewController(deps Deps, logger *zap.Logger) *Controller {
	persona := deps.Persona
	if persona == "" {
		persona = cnst.DefaultPersona
	}
	return &Controller{
		logger:   logger.Named("controller"),
		view:     deps.View,
		tr:       deps.Tr,
		query:    deps.Query,
		loader:   deps.Loader,
		session:  deps.Session,
		meta:     deps.Metadata,
		overlays: deps.Overlays,
		persona:  persona,
	}
}

// Submit sends text as a query. The reply is handled in the background and
// the returned Pending completes once it, and any content it asks for, is shown.
func (c *Controller) Submit(ctx context.Context, text string) (*Pending, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errorx.ErrEmptyInput
	}

	c.addMessage(RoleUser, text)
	c.view.ClearInput()
	placeholder := c.addMessage(RoleAssistant, c.tr.T(i18n.MsgThinking, nil))
	metadata := c.meta.PayloadOnce()

	return c.goPending(func() {
		span := trace.Tracer(cnst.TraceWidget).Start(ctx, cnst.SpanQuerySubmit).
			WithAttrs(attribute.String(cnst.AttrPersona, c.persona))
		defer span.End()

		if metadata != nil {
			c.meta.Enrich(span.Ctx, metadata)
		}
		req := dto.QueryRequest{
			Query:     text,
			PersonaID: c.persona,
			SessionID: c.session.SessionID(span.Ctx),
			Metadata:  metadata,
		}
		span.WithAttrs(attribute.String(cnst.AttrSessionID, req.SessionID))

		resp, err := c.query.Query(span.Ctx, req)
		c.view.RemoveMessage(placeholder)

		switch {
		case err != nil:
			span.Fail(err)
			c.logger.Error("query failed", zap.Error(err))
			c.addMessage(RoleAssistant, c.tr.FetchError(err))
		case resp.Error != "":
			c.logger.Warn("backend returned an error", zap.String("error", resp.Error))
			c.addMessage(RoleAssistant, resp.Error)
		default:
			c.handleReply(span.Ctx, resp.Response)
		}
	}), nil
}

func (c *Controller) handleReply(ctx context.Context, reply string) {
	res := directive.Parse(reply)
	if res.CleanedText != "" {
		c.addMessage(RoleAssistant, res.CleanedText)
	}
	if res.Directive == nil {
		return
	}

	d := res.Directive
	c.logger.Debug("directive received",
		zap.String("kind", d.Kind.String()),
		zap.String("tag", d.Tag))

	if d.Kind != cnst.KindOffer {
		c.showMedia(ctx, d.Kind, d.Tag)
		return
	}

	choices := make([]*Choice, len(d.Types))
	for i, kind := range d.Types {
		choices[i] = &Choice{
			id:    c.ids.Add(1),
			kind:  kind,
			tag:   d.Tag,
			label: c.tr.OfferLabel(kind),
			c:     c,
		}
	}
	c.view.ShowChoices(c.tr.T(i18n.MsgOfferPrompt, nil), choices)
}

// ShowMedia loads content of kind tagged with tag and opens its overlay.
// Failures are reported in the chat log.
func (c *Controller) ShowMedia(ctx context.Context, kind cnst.ContentKind, tag string) *Pending {
	return c.goPending(func() {
		c.showMedia(ctx, kind, tag)
	})
}

// LoadSelected shows the media picked for a program, e.g. ("python", "video")
func (c *Controller) LoadSelected(ctx context.Context, program, mediaType string) (*Pending, error) {
	program, mediaType = strings.TrimSpace(program), strings.TrimSpace(mediaType)
	if program == "" || mediaType == "" {
		return nil, errorx.ErrEmptyInput
	}
	return c.ShowMedia(ctx, cnst.ContentKind(strings.ToUpper(mediaType)), program), nil
}

// ShowUpcoming opens the upcoming classes listing; a failed fetch is only logged
func (c *Controller) ShowUpcoming(ctx context.Context) *Pending {
	return c.goPending(func() {
		_ = c.overlays.Upcoming.Open(ctx)
	})
}

// Wait blocks until all background work has finished or ctx is done
func (c *Controller) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) showMedia(ctx context.Context, kind cnst.ContentKind, tag string) {
	payload, err := c.loader.Load(ctx, kind, tag)
	if err != nil {
		c.addMessage(RoleAssistant, c.mediaErrorText(err))
		return
	}

	switch p := payload.(type) {
	case *media.Slideshow:
		if err := c.overlays.Slideshow.Start(p.Slides); err != nil {
			c.logger.Warn("failed to start slideshow", zap.Error(err))
			c.addMessage(RoleAssistant, c.tr.T(i18n.MsgNoVisuals, nil))
		}
	case *media.Video:
		c.overlays.Video.Play(p)
	case *media.Syllabus:
		c.overlays.Syllabus.Show(p)
	default:
		c.addMessage(RoleAssistant, c.tr.T(i18n.MsgUnknownMediaType, nil))
	}
}

func (c *Controller) mediaErrorText(err error) string {
	var fe *errorx.FormatError
	switch {
	case errors.Is(err, errorx.ErrUnknownMediaType):
		return c.tr.T(i18n.MsgUnknownMediaType, nil)
	case errors.Is(err, errorx.ErrNoVisuals):
		return c.tr.T(i18n.MsgNoVisuals, nil)
	case errors.As(err, &fe) && fe.Reason == errorx.NotArray:
		return c.tr.T(i18n.MsgSyllabusNotArray, nil)
	case errors.As(err, &fe):
		return c.tr.T(i18n.MsgSyllabusUnparseable, nil)
	default:
		return c.tr.T(i18n.MsgLoadFailed, nil)
	}
}

func (c *Controller) addMessage(role Role, text string) uint64 {
	id := c.ids.Add(1)
	c.view.AddMessage(Message{ID: id, Role: role, Text: text})
	return id
}

func (c *Controller) goPending(fn func()) *Pending {
	p := newPending()
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer p.finish()
		fn()
	}()
	return p
}
