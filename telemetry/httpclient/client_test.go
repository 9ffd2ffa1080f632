package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Methods(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Method", r.Method)
		w.Header().Set("X-Content-Type", r.Header.Get("Content-Type"))
		w.Write(body)
	}))
	defer srv.Close()

	ctx := context.Background()
	c := New(nil, 5*time.Second)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := c.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.MethodGet, resp.Header.Get("X-Method"))

	resp, err = c.Post(ctx, srv.URL, "application/json", strings.NewReader(`{"a":1}`))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.MethodPost, resp.Header.Get("X-Method"))
	assert.Equal(t, "application/json", resp.Header.Get("X-Content-Type"))
	assert.Equal(t, `{"a":1}`, string(body))

	req, err = http.NewRequestWithContext(ctx, http.MethodDelete, srv.URL, nil)
	require.NoError(t, err)
	resp, err = DefaultClient().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.MethodDelete, resp.Header.Get("X-Method"))
}
