package cnst

// ContentKind identifies the auxiliary content a directive asks for
type ContentKind string

const (
	KindSlideshow ContentKind = "SLIDESHOW"
	KindVideo     ContentKind = "VIDEO"
	KindSyllabus  ContentKind = "SYLLABUS"
	// KindOffer is only valid as a directive kind, never as media
	KindOffer ContentKind = "OFFER"
)

// IsMedia reports whether k names a loadable media kind
func (k ContentKind) IsMedia() bool {
	switch k {
	case KindSlideshow, KindVideo, KindSyllabus:
		return true
	}
	return false
}

func (k ContentKind) String() string {
	return string(k)
}
