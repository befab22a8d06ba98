package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopHeadline(t *testing.T) {
	var gotKey, gotPageSize string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		gotPageSize = r.URL.Query().Get("pageSize")
		w.Write([]byte(`{"articles":[{"title":"  Moon base opens first coffee shop "}]}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, "secret-key")

	headline, err := p.TopHeadline(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Moon base opens first coffee shop", headline)
	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, "1", gotPageSize)
}

func TestTopHeadlineEmptyFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"articles":[]}`))
	}))
	defer srv.Close()

	_, err := NewHTTPProvider(srv.URL, "").TopHeadline(context.Background())
	assert.ErrorIs(t, err, ErrNoHeadline)
}

func TestTopHeadlineBlankTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"articles":[{"title":"   "}]}`))
	}))
	defer srv.Close()

	_, err := NewHTTPProvider(srv.URL, "").TopHeadline(context.Background())
	assert.ErrorIs(t, err, ErrNoHeadline)
}

func TestTopHeadlineUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewHTTPProvider(srv.URL, "").TopHeadline(context.Background())
	assert.Error(t, err)
}

func TestNewHTTPProviderDefaultsEndpoint(t *testing.T) {
	p := NewHTTPProvider("  ", "key")
	assert.Equal(t, "https://newsapi.org/v2/top-headlines", p.endpoint)
}
