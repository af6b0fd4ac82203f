package server_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hellybrine/terraforms/internal/metrics"
	"github.com/hellybrine/terraforms/internal/server"
)

type fakeStore struct {
	key         string
	contentType string
	data        []byte
	err         error
}

func (f *fakeStore) Put(_ context.Context, key string, data []byte, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.key = key
	f.data = data
	f.contentType = contentType
	return "https://test-bucket.s3.amazonaws.com/" + key, nil
}

func newTestServer(store *fakeStore) *server.Server {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return server.NewServer(store, server.Config{MaxWidth: 800, MaxHeight: 600}, metrics.New(), logger)
}

func testImageBase64(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(&fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "image-resizer", body["service"])
}

func TestServer_Resize(t *testing.T) {
	store := &fakeStore{}
	srv := newTestServer(store)

	req := httptest.NewRequest(http.MethodPost, "/resize?width=20&filename=photo.png",
		strings.NewReader(testImageBase64(t)))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "image/png", body["content_type"])
	assert.Contains(t, body["resized_url"], "https://test-bucket.s3.amazonaws.com/")

	assert.True(t, strings.HasSuffix(store.key, ".png"), "uuid key keeps original extension, got %q", store.key)
	assert.NotEmpty(t, store.data)
}

func TestServer_Resize_DataURLPrefix(t *testing.T) {
	store := &fakeStore{}
	srv := newTestServer(store)

	body := "data:image/png;base64," + testImageBase64(t)
	req := httptest.NewRequest(http.MethodPost, "/resize", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_Resize_EmptyBody(t *testing.T) {
	srv := newTestServer(&fakeStore{})

	req := httptest.NewRequest(http.MethodPost, "/resize", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Contains(t, body["error"], "No image data")
}

func TestServer_Resize_InvalidBase64(t *testing.T) {
	srv := newTestServer(&fakeStore{})

	req := httptest.NewRequest(http.MethodPost, "/resize", strings.NewReader("!!not base64!!"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Resize_InvalidWidth(t *testing.T) {
	srv := newTestServer(&fakeStore{})

	req := httptest.NewRequest(http.MethodPost, "/resize?width=abc",
		strings.NewReader(testImageBase64(t)))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Resize_UploadFailure(t *testing.T) {
	srv := newTestServer(&fakeStore{err: errors.New("bucket gone")})

	req := httptest.NewRequest(http.MethodPost, "/resize", strings.NewReader(testImageBase64(t)))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, false, body["success"])
}

func TestServer_Metrics(t *testing.T) {
	srv := newTestServer(&fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
