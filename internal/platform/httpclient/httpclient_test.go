package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON_RelativePathAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/echo", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "k", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "goteo-test", r.Header.Get("User-Agent"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["msg"]})
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL + "/", UserAgent: "goteo-test"})
	require.NoError(t, err)

	var out struct {
		Echo string `json:"echo"`
	}
	err = c.DoJSON(context.Background(), http.MethodPost, "v1/echo", map[string]string{"X-Api-Key": "k"}, map[string]string{"msg": "hola"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "hola", out.Echo)
}

func TestPostForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "abc", r.PostForm.Get("token"))
		_, _ = w.Write([]byte(`{"status":1}`))
	}))
	defer srv.Close()

	c, err := New(Options{})
	require.NoError(t, err)

	var out struct {
		Status int `json:"status"`
	}
	require.NoError(t, c.PostForm(context.Background(), srv.URL, url.Values{"token": {"abc"}}, &out))
	assert.Equal(t, 1, out.Status)
}

func TestNon2xxIsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := New(Options{})
	require.NoError(t, err)

	err = c.DoJSON(context.Background(), http.MethodGet, srv.URL, nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
	assert.Contains(t, err.Error(), "nope")
}

func TestRelativePathNeedsBaseURL(t *testing.T) {
	c, err := New(Options{})
	require.NoError(t, err)
	assert.Error(t, c.DoJSON(context.Background(), http.MethodGet, "/x", nil, nil, nil))

	_, err = New(Options{BaseURL: "::bad"})
	assert.Error(t, err)
}
