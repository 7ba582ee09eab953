package media

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/amoylab/coursechat/internal/common/cnst"
	"github.com/amoylab/coursechat/internal/common/errorx"
	"github.com/amoylab/coursechat/pkg/trace"
)

// Fetcher returns the raw JSON body of a media-match lookup
type Fetcher interface {
	MediaMatch(ctx context.Context, kind cnst.ContentKind, tag string) ([]byte, error)
}

// Loader fetches media records and decodes them into payloads
type Loader struct {
	logger  *zap.Logger
	fetcher Fetcher
}

func NewLoader(fetcher Fetcher, logger *zap.Logger) *Loader {
	return &Loader{
		logger:  logger.Named("media"),
		fetcher: fetcher,
	}
}

// Load looks up media of kind tagged with tag. Errors are one of
// errorx.ErrUnknownMediaType, *errorx.TransportError, errorx.ErrNoVisuals or
// *errorx.FormatError.
func (l *Loader) Load(ctx context.Context, kind cnst.ContentKind, tag string) (Payload, error) {
	if !kind.IsMedia() {
		return nil, fmt.Errorf("%w: %q", errorx.ErrUnknownMediaType, kind)
	}

	span := trace.Tracer(cnst.TraceWidget).Start(ctx, cnst.SpanMediaLoad).
		WithAttrs(attribute.String(cnst.AttrMediaKind, kind.String()), attribute.String(cnst.AttrMediaTag, tag))
	defer span.End()

	body, err := l.fetcher.MediaMatch(span.Ctx, kind, tag)
	if err != nil {
		span.Fail(err)
		l.logger.Error("failed to load visual content",
			zap.String("kind", kind.String()),
			zap.String("tag", tag),
			zap.Error(err))
		if errorx.IsTransport(err) {
			return nil, err
		}
		return nil, errorx.NewTransportError("media-match", err)
	}

	items := gjson.ParseBytes(body)
	if !items.IsArray() || len(items.Array()) == 0 {
		l.logger.Info("no visuals found", zap.String("kind", kind.String()), zap.String("tag", tag))
		return nil, errorx.ErrNoVisuals
	}
	span.WithAttrs(attribute.Int(cnst.AttrMediaCount, len(items.Array())))

	switch kind {
	case cnst.KindSlideshow:
		return decodeSlideshow(items), nil
	case cnst.KindVideo:
		first := items.Get("0")
		return &Video{Src: first.Get("media_url").String(), Caption: first.Get("caption").String()}, nil
	default:
		syllabus, err := decodeSyllabus(items.Get("0"))
		if err != nil {
			span.Fail(err)
			l.logger.Warn("failed to parse syllabus", zap.String("tag", tag), zap.Error(err))
			return nil, err
		}
		return syllabus, nil
	}
}

func decodeSlideshow(items gjson.Result) *Slideshow {
	show := &Slideshow{}
	items.ForEach(func(_, item gjson.Result) bool {
		show.Slides = append(show.Slides, Slide{
			Src:     item.Get("media_url").String(),
			Caption: item.Get("caption").String(),
		})
		return true
	})
	return show
}

// decodeSyllabus accepts syllabus_json either as an inline array or as a
// JSON-encoded string holding one.
func decodeSyllabus(record gjson.Result) (*Syllabus, error) {
	raw := record.Get("syllabus_json")
	parsed := raw
	if raw.Type == gjson.String {
		if !gjson.Valid(raw.Str) {
			return nil, &errorx.FormatError{Reason: errorx.Unparseable, Err: fmt.Errorf("syllabus_json is not valid JSON")}
		}
		parsed = gjson.Parse(raw.Str)
	}
	if !parsed.IsArray() {
		return nil, &errorx.FormatError{Reason: errorx.NotArray}
	}

	syllabus := &Syllabus{Caption: record.Get("caption").String(), Entries: []Entry{}}
	parsed.ForEach(func(_, item gjson.Result) bool {
		syllabus.Entries = append(syllabus.Entries, Entry{
			Title:       item.Get("title").String(),
			Description: item.Get("description").String(),
		})
		return true
	})
	return syllabus, nil
}
