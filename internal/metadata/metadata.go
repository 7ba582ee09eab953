package metadata

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/amoylab/coursechat/internal/common/config"
	"github.com/amoylab/coursechat/internal/common/dto"
)

const unknown = "unknown"

var utmKeys = [...]string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content"}

// GeoLookup resolves the visitor location
type GeoLookup interface {
	Lookup(ctx context.Context) (dto.GeoData, error)
}

// Collector gathers the one-time session metadata
type Collector struct {
	logger *zap.Logger
	env    config.EnvironmentConfig
	geo    GeoLookup
	enrich bool
	sent   atomic.Bool
}

// NewCollector creates a Collector. geo may be nil; enrich controls whether
// Enrich merges the geo lookup into a payload.
func NewCollector(env config.EnvironmentConfig, geo GeoLookup, enrich bool, logger *zap.Logger) *Collector {
	return &Collector{
		logger: logger.Named("metadata"),
		env:    env,
		geo:    geo,
		enrich: enrich && geo != nil,
	}
}

// SessionMetadata describes the runtime environment
func (c *Collector) SessionMetadata() dto.Metadata {
	name, version := c.browser()
	osName := c.env.Platform
	if osName == "" {
		osName = unknown
	}

	m := dto.Metadata{
		BrowserName:      name,
		BrowserVersion:   version,
		OSName:           osName,
		OSVersion:        unknown,
		ScreenResolution: fmt.Sprintf("%dx%d", c.env.ScreenWidth, c.env.ScreenHeight),
		Referrer:         nonEmpty(c.env.Referrer),
	}

	utm := c.utmParams()
	m.UTMSource, m.UTMMedium, m.UTMCampaign, m.UTMTerm, m.UTMContent = utm[0], utm[1], utm[2], utm[3], utm[4]
	return m
}

// browser returns the configured brand, else the first product/version token
// of the user agent, else the user agent itself.
func (c *Collector) browser() (string, string) {
	if c.env.BrowserName != "" {
		return c.env.BrowserName, c.env.BrowserVersion
	}
	ua := strings.TrimSpace(c.env.UserAgent)
	if ua == "" {
		return unknown, unknown
	}
	first, _, _ := strings.Cut(ua, " ")
	if name, version, ok := strings.Cut(first, "/"); ok && name != "" {
		return name, version
	}
	return ua, ua
}

func (c *Collector) utmParams() [len(utmKeys)]*string {
	var out [len(utmKeys)]*string
	if c.env.PageURL == "" {
		return out
	}
	u, err := url.Parse(c.env.PageURL)
	if err != nil {
		c.logger.Debug("ignoring unparseable page url", zap.String("url", c.env.PageURL), zap.Error(err))
		return out
	}
	q := u.Query()
	for i, k := range utmKeys {
		if q.Has(k) {
			v := q.Get(k)
			out[i] = &v
		}
	}
	return out
}

// FetchGeo calls the geo service; failures are logged and yield the zero value
func (c *Collector) FetchGeo(ctx context.Context) dto.GeoData {
	if c.geo == nil {
		return dto.GeoData{}
	}
	geo, err := c.geo.Lookup(ctx)
	if err != nil {
		c.logger.Warn("geo enrichment skipped", zap.Error(err))
		return dto.GeoData{}
	}
	return geo
}

// PayloadOnce returns the metadata on the first call in this process and nil afterwards
func (c *Collector) PayloadOnce() *dto.Metadata {
	if !c.sent.CompareAndSwap(false, true) {
		return nil
	}
	m := c.SessionMetadata()
	return &m
}

// Enrich merges the geo lookup into m when geo enrichment is enabled
func (c *Collector) Enrich(ctx context.Context, m *dto.Metadata) {
	if m == nil || !c.enrich {
		return
	}
	geo := c.FetchGeo(ctx)
	m.Country = geo.Country
	m.City = geo.City
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
