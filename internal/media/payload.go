package media

import "github.com/amoylab/coursechat/internal/common/cnst"

// Payload is the decoded result of a media lookup: *Slideshow, *Video or *Syllabus
type Payload interface {
	Kind() cnst.ContentKind
}

type Slide struct {
	Src     string
	Caption string
}

type Slideshow struct {
	Slides []Slide
}

type Video struct {
	Src     string
	Caption string
}

// Entry is one syllabus section; an empty Title is rendered as a placeholder
type Entry struct {
	Title       string
	Description string
}

type Syllabus struct {
	Caption string
	Entries []Entry
}

func (*Slideshow) Kind() cnst.ContentKind { return cnst.KindSlideshow }
func (*Video) Kind() cnst.ContentKind     { return cnst.KindVideo }
func (*Syllabus) Kind() cnst.ContentKind  { return cnst.KindSyllabus }
