package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/amoylab/coursechat/internal/common/config"
	"github.com/amoylab/coursechat/internal/common/dto"
	"github.com/amoylab/coursechat/internal/common/errorx"
)

// GeoClient looks up the visitor location by public IP
type GeoClient struct {
	endpoint string
	http     *http.Client
}

// NewGeoClient creates a lookup client for cfg.URL with the token as query parameter
func NewGeoClient(cfg config.GeoConfig) (*GeoClient, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid geo url: %w", err)
	}
	if cfg.Token != "" {
		q := u.Query()
		q.Set("token", cfg.Token)
		u.RawQuery = q.Encode()
	}
	return &GeoClient{
		endpoint: u.String(),
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.Timeout,
		},
	}, nil
}

// Lookup returns the country and city reported by the geo service
func (g *GeoClient) Lookup(ctx context.Context) (dto.GeoData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint, nil)
	if err != nil {
		return dto.GeoData{}, err
	}
	resp, err := g.http.Do(req)
	if err != nil {
		return dto.GeoData{}, errorx.NewTransportError("geo", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return dto.GeoData{}, errorx.NewTransportError("geo", err)
	}
	if resp.StatusCode/100 != 2 {
		return dto.GeoData{}, errorx.NewTransportError("geo", &errorx.StatusError{StatusCode: resp.StatusCode, Body: preview(body)})
	}
	if !gjson.ValidBytes(body) {
		return dto.GeoData{}, errorx.NewTransportError("geo", fmt.Errorf("invalid JSON body"))
	}

	res := gjson.GetManyBytes(body, "country", "city")
	return dto.GeoData{Country: res[0].String(), City: res[1].String()}, nil
}
