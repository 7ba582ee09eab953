package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Message string
	Keys    []string
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	for _, key := range e.Keys {
		sb.WriteString("\n--> ")
		sb.WriteString(key)
	}
	return sb.String()
}

type validator interface {
	Validate() error
}

// ValidationErrors collects every problem found in one document
type ValidationErrors []*ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n\n")
}

func (errs *ValidationErrors) add(msg string, keys ...string) {
	*errs = append(*errs, &ValidationError{Message: msg, Keys: keys})
}

func (errs ValidationErrors) orNil() error {
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Validate checks the widget configuration after defaults are applied
func (c *WidgetConfig) Validate() error {
	var errs ValidationErrors

	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs.add(fmt.Sprintf("invalid backend url %q", c.Backend.BaseURL), "backend.base_url")
	}
	if c.Backend.Timeout < 0 {
		errs.add("timeout must not be negative", "backend.timeout")
	}

	switch c.Identity.Store.Type {
	case "memory":
	case "disk":
		if c.Identity.Store.Disk.Path == "" {
			errs.add("disk store requires a path", "identity.store.disk.path")
		}
	case "redis":
		if c.Identity.Store.Redis.Addr == "" {
			errs.add("redis store requires an address", "identity.store.redis.addr")
		}
	default:
		errs.add(fmt.Sprintf("unsupported identity store type %q", c.Identity.Store.Type), "identity.store.type")
	}

	if c.Geo.Enabled && c.Geo.URL == "" {
		errs.add("geo lookup is enabled without a url", "geo.enabled", "geo.url")
	}
	if c.Overlay.Slideshow.AutoAdvance < 0 {
		errs.add("auto advance must not be negative", "overlay.slideshow.auto_advance")
	}

	c.Tracing.validate(&errs)
	return errs.orNil()
}

// Validate checks the backend configuration after defaults are applied
func (c *BackendConfig) Validate() error {
	var errs ValidationErrors

	if !slices.Contains([]string{"sqlite", "postgres", "mysql"}, c.Database.Type) {
		errs.add(fmt.Sprintf("unsupported database type %q", c.Database.Type), "database.type")
	}
	if c.Database.DBName == "" {
		errs.add("database name is required", "database.dbname")
	}

	switch c.Answerer.Type {
	case "rules":
	case "openai":
		if c.Answerer.OpenAI.APIKey == "" {
			errs.add("openai answerer requires an api key", "answerer.type", "answerer.openai.api_key")
		}
	default:
		errs.add(fmt.Sprintf("unsupported answerer type %q", c.Answerer.Type), "answerer.type")
	}

	if !strings.HasPrefix(c.Metrics.Path, "/") {
		errs.add(fmt.Sprintf("metrics path %q must start with /", c.Metrics.Path), "metrics.path")
	}
	if c.CORS.AllowCredentials && slices.Contains(c.CORS.AllowOrigins, "*") {
		errs.add("credentials cannot be allowed for a wildcard origin", "cors.allow_origins", "cors.allow_credentials")
	}

	c.Tracing.validate(&errs)
	return errs.orNil()
}

func (c *TracingConfig) validate(errs *ValidationErrors) {
	if !c.Enabled {
		return
	}
	if c.Protocol != "grpc" && c.Protocol != "http" {
		errs.add(fmt.Sprintf("unsupported tracing protocol %q", c.Protocol), "tracing.protocol")
	}
	if c.SamplerRate < 0 || c.SamplerRate > 1 {
		errs.add("sampler rate must be within [0, 1]", "tracing.sampler_rate")
	}
}
