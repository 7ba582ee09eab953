// Package directive parses the in-band markers that ask the widget to show
// auxiliary content, e.g. [SHOW_VIDEO:python] or [SHOW_OFFER:video,syllabus:python].
package directive

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/amoylab/coursechat/internal/common/cnst"
)

var (
	showPattern  = regexp.MustCompile(`\[SHOW_(SLIDESHOW|VIDEO|SYLLABUS):([^\]]+)\]`)
	offerPattern = regexp.MustCompile(`(?i)\[SHOW_OFFER:([a-z,]+):([^\]]+)\]`)
)

// Directive is a parsed marker. Types is set only for KindOffer.
type Directive struct {
	Kind  cnst.ContentKind
	Tag   string
	Types []cnst.ContentKind
}

// Result is the outcome of parsing one reply
type Result struct {
	CleanedText string
	Directive   *Directive
}

// Parse detects the first directive in reply. A direct SHOW marker is looked
// for before an OFFER marker; only the first match of the winning form is
// removed together with the whitespace around it. Without a marker the reply
// is returned unchanged.
func Parse(reply string) Result {
	if loc := showPattern.FindStringSubmatchIndex(reply); loc != nil {
		return Result{
			CleanedText: strip(reply, loc),
			Directive: &Directive{
				Kind: cnst.ContentKind(reply[loc[2]:loc[3]]),
				Tag:  reply[loc[4]:loc[5]],
			},
		}
	}

	if loc := offerPattern.FindStringSubmatchIndex(reply); loc != nil {
		res := Result{CleanedText: strip(reply, loc)}
		if types := offerTypes(reply[loc[2]:loc[3]]); len(types) > 0 {
			res.Directive = &Directive{
				Kind:  cnst.KindOffer,
				Tag:   reply[loc[4]:loc[5]],
				Types: types,
			}
		}
		return res
	}

	return Result{CleanedText: reply}
}

// strip cuts reply[loc[0]:loc[1]] and the whitespace touching it. When text
// remains on both sides, one run of the removed whitespace separates them.
func strip(reply string, loc []int) string {
	before := strings.TrimRightFunc(reply[:loc[0]], unicode.IsSpace)
	after := strings.TrimLeftFunc(reply[loc[1]:], unicode.IsSpace)
	if before == "" || after == "" {
		return before + after
	}
	sep := reply[len(before):loc[0]]
	if sep == "" {
		sep = reply[loc[1] : len(reply)-len(after)]
	}
	return before + sep + after
}

// offerTypes upper-cases the comma separated list, keeping order and
// dropping empty or unknown entries.
func offerTypes(list string) []cnst.ContentKind {
	var types []cnst.ContentKind
	for _, s := range strings.Split(list, ",") {
		if k, ok := ParseKind(s); ok {
			types = append(types, k)
		}
	}
	return types
}

// ParseKind maps a case-insensitive name to a media kind
func ParseKind(s string) (cnst.ContentKind, bool) {
	k := cnst.ContentKind(strings.ToUpper(strings.TrimSpace(s)))
	if !k.IsMedia() {
		return "", false
	}
	return k, true
}

// Marker renders d back into its bracket form
func Marker(d Directive) string {
	if d.Kind != cnst.KindOffer {
		return fmt.Sprintf("[SHOW_%s:%s]", d.Kind, d.Tag)
	}
	names := make([]string, len(d.Types))
	for i, k := range d.Types {
		names[i] = strings.ToLower(k.String())
	}
	return fmt.Sprintf("[SHOW_OFFER:%s:%s]", strings.Join(names, ","), d.Tag)
}
