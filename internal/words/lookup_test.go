package words

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChecker(t *testing.T, handler http.HandlerFunc) (*Checker, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewChecker(srv.URL + "/%s"), &hits
}

func TestCheckerLocalSetShortCircuits(t *testing.T) {
	require.NoError(t, Init())

	c, hits := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	assert.True(t, c.Valid(context.Background(), "DREAM"))
	assert.Zero(t, atomic.LoadInt32(hits), "local words never hit the API")
}

func TestCheckerFallsBackToAPI(t *testing.T) {
	require.NoError(t, Init())

	c, hits := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		// The API is keyed by the lowercase word.
		if r.URL.Path == "/which" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	assert.True(t, c.Valid(context.Background(), "WHICH"))
	assert.False(t, c.Valid(context.Background(), "QZJXK"))
	assert.Equal(t, int32(2), atomic.LoadInt32(hits))
}

func TestCheckerFailsClosed(t *testing.T) {
	require.NoError(t, Init())

	t.Run("unreachable endpoint", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		c := NewChecker(srv.URL + "/%s")
		assert.False(t, c.Valid(context.Background(), "WHICH"))
	})

	t.Run("server error", func(t *testing.T) {
		c, _ := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		assert.False(t, c.Valid(context.Background(), "WHICH"))
	})

	t.Run("cancelled context", func(t *testing.T) {
		c, _ := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.False(t, c.Valid(ctx, "WHICH"))
	})
}

func TestCheckerRejectsMalformedInput(t *testing.T) {
	c, hits := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	assert.False(t, c.Valid(context.Background(), "cat"))
	assert.False(t, c.Valid(context.Background(), "TOOLONGX"))
	assert.Zero(t, atomic.LoadInt32(hits))
}
