package dto

// MediaMatchRequest is the body of POST /api/media-match
type MediaMatchRequest struct {
	Type string `json:"type"`
	Tag  string `json:"tag"`
}

// MediaRecord is one element of the media-match response.
// SyllabusJSON is either a JSON-encoded string or an inline array.
type MediaRecord struct {
	MediaURL     string `json:"media_url"`
	Title        string `json:"title"`
	Caption      string `json:"caption"`
	SyllabusJSON any    `json:"syllabus_json,omitempty"`
}

// SyllabusEntry is one section of a course syllabus
type SyllabusEntry struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpcomingClass is one element of GET /api/upcoming-classes
type UpcomingClass struct {
	CourseName       string `json:"course_name"`
	CourseLocation   string `json:"course_location"`
	CourseLength     string `json:"course_length"`
	StartDate        string `json:"start_date"`
	RegistrationLink string `json:"registration_link"`
}
