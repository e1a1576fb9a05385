package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/pizzeria/pkg/errors"
)

func TestHTTPSourceLoadsBareDocument(t *testing.T) {
	t.Parallel()

	body, err := os.ReadFile("testdata/catalog.json")
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/product", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	cat, err := NewHTTPSource(srv.URL+"/product", time.Second).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, cat.Len())
}

func TestHTTPSourceUnwrapsEnvelope(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":"cake","name":"Cake","price":9}]}`))
	}))
	defer srv.Close()

	cat, err := NewHTTPSource(srv.URL, time.Second).Load(context.Background())
	require.NoError(t, err)
	_, ok := cat.Find("cake")
	assert.True(t, ok)
}

func TestHTTPSourceReportsDependencyFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, time.Second).Load(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

type fakeCache struct {
	values map[string]string
	getErr error
	setErr error
	sets   int
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.values[key]
	if !ok {
		return "", errors.New("miss")
	}
	return v, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	if f.values == nil {
		f.values = map[string]string{}
	}
	f.values[key] = value.(string)
	return nil
}

func TestCachedSourceStoresThenServesFromCache(t *testing.T) {
	t.Parallel()

	cache := &fakeCache{}
	healthy := FileSource{Path: "testdata/catalog.json"}
	src := NewCachedSource(healthy, cache, "pz:catalog", time.Hour, nil)

	cat, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
	require.Contains(t, cache.values, "pz:catalog")

	failing := SourceFunc(func(ctx context.Context) (*Catalog, error) {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "backend down")
	})
	fallback := NewCachedSource(failing, cache, "pz:catalog", time.Hour, nil)

	cached, err := fallback.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cat.Items(), cached.Items())
}

func TestCachedSourceCombinesErrorsOnMiss(t *testing.T) {
	t.Parallel()

	upstreamErr := pkgerrors.New(pkgerrors.CodeDependency, "backend down")
	failing := SourceFunc(func(ctx context.Context) (*Catalog, error) { return nil, upstreamErr })
	src := NewCachedSource(failing, &fakeCache{getErr: errors.New("redis: nil")}, "pz:catalog", time.Hour, nil)

	_, err := src.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, upstreamErr)
	assert.Contains(t, err.Error(), "redis: nil")
}

func TestCachedSourceIgnoresCacheWriteFailure(t *testing.T) {
	t.Parallel()

	cache := &fakeCache{setErr: errors.New("readonly")}
	src := NewCachedSource(FileSource{Path: "testdata/catalog.json"}, cache, "k", time.Minute, nil)

	cat, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, cat.Len())
}
