package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/multierr"

	pkgerrors "github.com/angelmondragon/pizzeria/pkg/errors"
	"github.com/angelmondragon/pizzeria/pkg/logger"
)

// Source supplies the catalog. The storefront registry loads it once per new
// shopper session; wrap remote sources in CachedSource to spare the backend.
type Source interface {
	Load(ctx context.Context) (*Catalog, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (*Catalog, error)

func (fn SourceFunc) Load(ctx context.Context) (*Catalog, error) {
	return fn(ctx)
}

// FileSource reads a catalog document from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Load(ctx context.Context) (*Catalog, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file %s: %w", s.Path, err)
	}
	return Decode(data)
}

// HTTPSource fetches the catalog from the product endpoint of the backend.
type HTTPSource struct {
	Client *http.Client
	URL    string
}

// NewHTTPSource builds a source with its own client bounded by timeout.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{Client: &http.Client{Timeout: timeout}, URL: url}
}

func (s *HTTPSource) Load(ctx context.Context) (*Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build catalog request")
	}
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch catalog")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read catalog response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("catalog endpoint returned %d", resp.StatusCode))
	}
	return decodeResponse(body)
}

// decodeResponse accepts a bare document or the API success envelope.
func decodeResponse(body []byte) (*Catalog, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 {
		return Decode(envelope.Data)
	}
	return Decode(body)
}

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// CachedSource remembers the last catalog its upstream produced and serves it
// when the upstream fails.
type CachedSource struct {
	upstream Source
	cache    cacheStore
	key      string
	ttl      time.Duration
	logg     *logger.Logger
}

func NewCachedSource(upstream Source, cache cacheStore, key string, ttl time.Duration, logg *logger.Logger) *CachedSource {
	return &CachedSource{upstream: upstream, cache: cache, key: key, ttl: ttl, logg: logg}
}

func (s *CachedSource) Load(ctx context.Context) (*Catalog, error) {
	cat, upstreamErr := s.upstream.Load(ctx)
	if upstreamErr == nil {
		s.store(ctx, cat)
		return cat, nil
	}

	raw, cacheErr := s.cache.Get(ctx, s.key)
	if cacheErr != nil {
		return nil, multierr.Append(upstreamErr, fmt.Errorf("reading cached catalog: %w", cacheErr))
	}
	cached, decodeErr := Decode([]byte(raw))
	if decodeErr != nil {
		return nil, multierr.Append(upstreamErr, decodeErr)
	}
	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{"cache_key": s.key, "items": cached.Len()})
		s.logg.Warn(ctx, "catalog.served_from_cache")
	}
	return cached, nil
}

func (s *CachedSource) store(ctx context.Context, cat *Catalog) {
	payload, err := json.Marshal(cat)
	if err == nil {
		err = s.cache.Set(ctx, s.key, string(payload), s.ttl)
	}
	if err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithField(ctx, "cache_key", s.key), "catalog.cache_write_failed", err)
	}
}
