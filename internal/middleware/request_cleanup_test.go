package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func TestDrainAndCloseRequest(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader(`{"field":"wakeup","value":true}`)}

	var readErr error
	handler := DrainAndCloseRequest(1024)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// reads only a part, the rest is drained afterwards
		_, readErr = r.Body.Read(make([]byte, 4))
	}))

	req := httptest.NewRequest(http.MethodPost, "/checkin", nil)
	req.Body = body
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NoError(t, readErr)
	assert.True(t, body.closed)
	rest, err := io.ReadAll(body.Reader)
	require.NoError(t, err)
	assert.Empty(t, rest)
}

func TestDrainAndCloseRequest_BodyTooLarge(t *testing.T) {
	var readErr error
	handler := DrainAndCloseRequest(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	req := httptest.NewRequest(http.MethodPost, "/import", strings.NewReader(`{"currentWeek": 3}`))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var tooLarge *http.MaxBytesError
	require.True(t, errors.As(readErr, &tooLarge))
	assert.Equal(t, int64(8), tooLarge.Limit)
}

func TestDrainAndCloseRequest_NoBody(t *testing.T) {
	called := false
	handler := DrainAndCloseRequest(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/today", nil))
	assert.True(t, called)
}
