package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/amoylab/coursechat/internal/common/cnst"
)

//go:embed locales/*.toml
var locales embed.FS

// Translator renders widget strings in one language, falling back to English
type Translator struct {
	lang      string
	localizer *i18n.Localizer
}

// NewBundle loads every embedded locale into a bundle with English as default
func NewBundle() (*i18n.Bundle, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := fs.Glob(locales, "locales/*.toml")
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if _, err := bundle.LoadMessageFileFS(locales, f); err != nil {
			return nil, fmt.Errorf("failed to load locale %s: %w", path.Base(f), err)
		}
	}
	return bundle, nil
}

// New creates a Translator for lang (e.g. "en", "zh", "zh-CN")
func New(lang string) (*Translator, error) {
	bundle, err := NewBundle()
	if err != nil {
		return nil, err
	}
	lang = normalizeLang(lang)
	return &Translator{
		lang:      lang,
		localizer: i18n.NewLocalizer(bundle, lang, cnst.LangDefault),
	}, nil
}

// MustNew is New for embedded locales that are known to be valid
func MustNew(lang string) *Translator {
	t, err := New(lang)
	if err != nil {
		panic(err)
	}
	return t
}

// Lang returns the normalized language of the translator
func (t *Translator) Lang() string {
	return t.lang
}

// T returns the localized message, or the message ID if it is unknown
func (t *Translator) T(msgID string, templateData map[string]any) string {
	lc := &i18n.LocalizeConfig{MessageID: msgID}
	if len(templateData) > 0 {
		lc.TemplateData = templateData
	}
	msg, err := t.localizer.Localize(lc)
	if err != nil {
		return msgID
	}
	return msg
}

// FetchError renders the message shown when the query request fails
func (t *Translator) FetchError(err error) string {
	return t.T(MsgFetchError, map[string]any{"Error": err.Error()})
}

// OfferLabel renders the label of the offer choice for kind
func (t *Translator) OfferLabel(kind cnst.ContentKind) string {
	msg := t.T(msgOfferPrefix+kind.String(), nil)
	if msg == msgOfferPrefix+kind.String() {
		return kind.String()
	}
	return msg
}

// normalizeLang reduces a language tag to its base, e.g. zh-CN to zh
func normalizeLang(lang string) string {
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		return cnst.LangDefault
	}
	base, _ := tag.Base()
	switch base.String() {
	case cnst.LangZH:
		return cnst.LangZH
	case cnst.LangEN:
		return cnst.LangEN
	default:
		return cnst.LangDefault
	}
}
