package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/repodocs/internal/apperror"
)

// newTestClient points a Client at an httptest server.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(5*time.Second, WithAPIBase(srv.URL))
}

func TestGet_PassesTokenAndReturnsBodyVerbatim(t *testing.T) {
	const body = `[{"name":"repodocs","private":false}]`

	var gotAuth, gotAccept string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		assert.Equal(t, "/user/repos", r.URL.Path)
		w.Write([]byte(body))
	})

	got, err := c.Get(context.Background(), "gho_secret", "/user/repos", nil)
	assert.NoError(t, err)
	assert.Equal(t, body, string(got), "proxy must return the body exactly as received")
	assert.Equal(t, "Bearer gho_secret", gotAuth)
	assert.Equal(t, "application/vnd.github.v3+json", gotAccept)
}

func TestGet_HeaderOverrides(t *testing.T) {
	var gotAccept string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte("# README"))
	})

	header := http.Header{}
	header.Set("Accept", RawMediaType)
	_, err := c.Get(context.Background(), "tok", "/repos/o/r/readme", header)
	assert.NoError(t, err)
	assert.Equal(t, RawMediaType, gotAccept)
}

func TestGet_NonOKPropagatesStatusAndMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not Found","documentation_url":"https://docs.github.com"}`))
	})

	_, err := c.Get(context.Background(), "tok", "/repos/o/r/readme", nil)
	assert.Error(t, err)

	var appErr *apperror.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "Not Found", appErr.Message)
	assert.True(t, errors.Is(err, apperror.ErrUpstream))
}

func TestGet_NonJSONErrorBodyFallsBackToStatusText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>gateway error</html>"))
	})

	_, err := c.Get(context.Background(), "tok", "/user/repos", nil)

	var appErr *apperror.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadGateway, appErr.Status)
	assert.Equal(t, "Bad Gateway", appErr.Message)
}

func TestGetRaw(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, RawMediaType, r.Header.Get("Accept"))
		w.Write([]byte("# my project\n"))
	})

	got, err := c.GetRaw(context.Background(), "tok", "/repos/o/r/readme")
	assert.NoError(t, err)
	assert.Equal(t, "# my project\n", got)
}

func TestGet_ContextCancellation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Get(ctx, "tok", "/user/repos", nil)
	assert.Error(t, err)
}
