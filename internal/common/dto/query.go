package dto

// QueryRequest is the body of POST /api/query
type QueryRequest struct {
	Query     string    `json:"query"`
	PersonaID string    `json:"persona_id"`
	SessionID string    `json:"session_id"`
	Metadata  *Metadata `json:"metadata,omitempty"`
}

// QueryResponse carries either a reply or an error text
type QueryResponse struct {
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Metadata is the one-time environment payload attached to the first query
type Metadata struct {
	BrowserName      string  `json:"browser_name"`
	BrowserVersion   string  `json:"browser_version"`
	OSName           string  `json:"os_name"`
	OSVersion        string  `json:"os_version"`
	ScreenResolution string  `json:"screen_resolution"`
	Referrer         *string `json:"referrer"`
	UTMSource        *string `json:"utm_source"`
	UTMMedium        *string `json:"utm_medium"`
	UTMCampaign      *string `json:"utm_campaign"`
	UTMTerm          *string `json:"utm_term"`
	UTMContent       *string `json:"utm_content"`
	Country          string  `json:"geo_country,omitempty"`
	City             string  `json:"geo_city,omitempty"`
}

// GeoData is the subset of the geo lookup the widget keeps
type GeoData struct {
	Country string `json:"country"`
	City    string `json:"city"`
}

// IsZero reports whether the lookup produced nothing
func (g GeoData) IsZero() bool {
	return g.Country == "" && g.City == ""
}
