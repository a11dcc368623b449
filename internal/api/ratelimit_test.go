package api

import (
	"bytes"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/aligner/internal/ratelimit"
)

func TestRateLimit_Uploads(t *testing.T) {
	ts := setupTestServerWith(t, testServerOptions{limiter: ratelimit.PerMinute(1, 1)})
	defer ts.cleanup()

	sessionID := ts.createSession(t)
	ts.upload(t, sessionID, "a.wav")

	resp := ts.api.Post("/api/v1/sessions/"+sessionID+"/entries?filename=b.wav",
		"Content-Type: audio/wav",
		bytes.NewReader(fakeWAV()))
	require.Equal(t, http.StatusTooManyRequests, resp.Code)

	envelope := decodeError(t, resp.Body.Bytes())
	assert.Equal(t, "RATE_LIMITED", envelope.Code)

	retry, err := strconv.Atoi(resp.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Positive(t, retry)

	// Reads are not limited.
	resp = ts.api.Get("/api/v1/sessions/" + sessionID)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestRateLimit_KeyedByForwardedClient(t *testing.T) {
	ts := setupTestServerWith(t, testServerOptions{limiter: ratelimit.PerMinute(1, 1)})
	defer ts.cleanup()

	sessionID := ts.createSession(t)

	for _, ip := range []string{"203.0.113.1", "203.0.113.2"} {
		resp := ts.api.Post("/api/v1/sessions/"+sessionID+"/entries?filename=a.wav",
			"Content-Type: audio/wav",
			"X-Forwarded-For: "+ip+", 10.0.0.1",
			bytes.NewReader(fakeWAV()))
		assert.Equal(t, http.StatusCreated, resp.Code, "first request from %s", ip)
	}

	resp := ts.api.Post("/api/v1/sessions/"+sessionID+"/entries?filename=a.wav",
		"Content-Type: audio/wav",
		"X-Forwarded-For: 203.0.113.1",
		bytes.NewReader(fakeWAV()))
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
}
