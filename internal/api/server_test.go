package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/aligner/internal/aligner"
	"github.com/listenupapp/aligner/internal/ratelimit"
	"github.com/listenupapp/aligner/internal/service"
	"github.com/listenupapp/aligner/internal/sse"
	"github.com/listenupapp/aligner/internal/store"
	"github.com/listenupapp/aligner/internal/validation"
)

// testEnvelope mirrors the success envelope with typed data.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

// testErrorEnvelope mirrors APIErrorEnvelope.
type testErrorEnvelope struct {
	Version int               `json:"v"`
	Success bool              `json:"success"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

type testServer struct {
	*Server
	api     humatest.TestAPI
	cleanup func()
}

type testServerOptions struct {
	delay   time.Duration
	limiter *ratelimit.KeyedRateLimiter
	maxBody int64
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	return setupTestServerWith(t, testServerOptions{})
}

func setupTestServerWith(t *testing.T, opts testServerOptions) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	st, err := store.New(logger, time.Hour)
	require.NoError(t, err)

	sseManager := sse.NewManager(logger)
	sessionService := service.NewSessionService(st, validation.New(), logger)
	alignmentService := service.NewAlignmentService(st, aligner.NewSeeded(42), sseManager, logger, opts.delay)

	services := &Services{
		Session:   sessionService,
		Alignment: alignmentService,
	}
	sseHandler := sse.NewHandler(sseManager, logger, sessionService.CheckSession)

	s := NewServer(st, services, sseManager, sseHandler, opts.limiter, Options{
		Version:        "test",
		AllowedOrigins: []string{"*"},
		MaxUploadBytes: opts.maxBody,
	}, logger)

	testAPI := humatest.Wrap(t, s.api)

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Close(ctx)
		_ = sseManager.Shutdown(ctx)
		if opts.limiter != nil {
			opts.limiter.Stop()
		}
		_ = st.Close()
	}

	return &testServer{
		Server:  s,
		api:     testAPI,
		cleanup: cleanup,
	}
}

// createSession creates a session through the API and returns its ID.
func (ts *testServer) createSession(t *testing.T) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/sessions")
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var envelope testEnvelope[SessionResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data.ID
}

// upload adds an audio entry and returns it.
func (ts *testServer) upload(t *testing.T, sessionID, filename string) EntryResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/sessions/"+sessionID+"/entries?filename="+filename,
		"Content-Type: audio/wav",
		bytes.NewReader(fakeWAV()))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var envelope testEnvelope[EntryResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data
}

// setTranscript replaces an entry's transcript.
func (ts *testServer) setTranscript(t *testing.T, sessionID, entryID, text string) {
	t.Helper()

	resp := ts.api.Put("/api/v1/sessions/"+sessionID+"/entries/"+entryID+"/transcript",
		map[string]any{"transcript": text})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

// decodeError parses a coded error response.
func decodeError(t *testing.T, body []byte) testErrorEnvelope {
	t.Helper()

	var envelope testErrorEnvelope
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope
}

// fakeWAV returns a byte slice standing in for an uploaded file.
func fakeWAV() []byte {
	return []byte("RIFF\x24\x00\x00\x00WAVEfmt ")
}
