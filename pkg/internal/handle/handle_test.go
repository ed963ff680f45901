package handle_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/audiovault/pkg/configs"
	"github.com/yeisme/audiovault/pkg/internal/handle"
	"github.com/yeisme/audiovault/pkg/internal/router"
	"github.com/yeisme/audiovault/pkg/internal/service"
	"github.com/yeisme/audiovault/pkg/internal/storage"
	"github.com/yeisme/audiovault/pkg/internal/storage/blob"
	"github.com/yeisme/audiovault/pkg/internal/storage/meta"
	"github.com/yeisme/audiovault/pkg/internal/types"
	"github.com/yeisme/audiovault/pkg/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const maxUpload = 1024

func newEngine(t *testing.T, public string) *gin.Engine {
	t.Helper()

	store, err := blob.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	cfg := configs.AudioConfig{MaxUploadBytes: maxUpload, MultipartOverhead: 4096, PublicBaseURL: public}
	svc := service.NewAudioService(service.Deps{Blob: store, Meta: meta.NewMemory(), Audio: cfg})

	engine := gin.New()
	router.RegisterAudioRoutes(engine.Group("/api"), handle.NewAudioHandlers(svc, cfg), router.Options{
		Upload: []gin.HandlerFunc{middleware.BodyLimitMiddleware(cfg.MaxRequestBytes())},
	})

	return engine
}

func multipartBody(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := part.Write(data); err != nil {
		t.Fatal(err)
	}

	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	return &buf, mw.FormDataContentType()
}

func do(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	return w
}

func uploadFile(t *testing.T, engine *gin.Engine, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	body, ct := multipartBody(t, handle.FormFieldAudio, filename, contentType, data)

	req := httptest.NewRequest(http.MethodPost, "/api/audio/upload", body)
	req.Header.Set("Content-Type", ct)

	return do(engine, req)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}

	return v
}

func mustUpload(t *testing.T, engine *gin.Engine, filename string, data []byte) types.UploadResponse {
	t.Helper()

	w := uploadFile(t, engine, filename, "audio/mpeg", data)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload status = %d body = %s", w.Code, w.Body.String())
	}

	return decode[types.UploadResponse](t, w)
}

func TestUploadAndList(t *testing.T) {
	engine := newEngine(t, "")

	resp := mustUpload(t, engine, "song.mp3", []byte("ID3-audio"))

	if resp.OriginalFilename != "song.mp3" || resp.FileSize != 9 || resp.FormattedSize != "9.0 Bytes" {
		t.Fatalf("resp = %+v", resp)
	}

	if resp.DownloadURL != "http://example.com/api/audio/download/"+resp.UUID {
		t.Fatalf("downloadUrl = %q", resp.DownloadURL)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/audio/files", nil)
	w := do(engine, req)

	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}

	list := decode[[]types.AudioFileInfo](t, w)
	if len(list) != 1 || list[0].UUID != resp.UUID {
		t.Fatalf("list = %+v", list)
	}
}

func TestListEmptyIsArray(t *testing.T) {
	engine := newEngine(t, "")

	w := do(engine, httptest.NewRequest(http.MethodGet, "/api/audio/files", nil))
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("status = %d body = %q", w.Code, w.Body.String())
	}
}

func TestListGzip(t *testing.T) {
	engine := newEngine(t, "")
	mustUpload(t, engine, "a.mp3", []byte("abc"))

	req := httptest.NewRequest(http.MethodGet, "/api/audio/files", nil)
	req.Header.Set("Accept-Encoding", "gzip")

	if w := do(engine, req); w.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("Content-Encoding = %q", w.Header().Get("Content-Encoding"))
	}
}

func TestUploadRejections(t *testing.T) {
	engine := newEngine(t, "")

	cases := []struct {
		name   string
		field  string
		ct     string
		data   []byte
		status int
	}{
		{"not audio", handle.FormFieldAudio, "text/plain", []byte("hello"), http.StatusUnsupportedMediaType},
		{"wrong field", "file", "audio/mpeg", []byte("abc"), http.StatusBadRequest},
		{"too large", handle.FormFieldAudio, "audio/mpeg", make([]byte, maxUpload+1), http.StatusRequestEntityTooLarge},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, ct := multipartBody(t, tc.field, "x.mp3", tc.ct, tc.data)

			req := httptest.NewRequest(http.MethodPost, "/api/audio/upload", body)
			req.Header.Set("Content-Type", ct)

			w := do(engine, req)
			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tc.status, w.Body.String())
			}

			if msg := decode[types.ErrorResponse](t, w).Message; msg == "" {
				t.Fatal("empty message")
			}
		})
	}

	w := do(engine, httptest.NewRequest(http.MethodGet, "/api/audio/files", nil))
	if list := decode[[]types.AudioFileInfo](t, w); len(list) != 0 {
		t.Fatalf("rejected uploads visible: %+v", list)
	}
}

func TestUploadBodyLimit(t *testing.T) {
	engine := newEngine(t, "")

	body, ct := multipartBody(t, handle.FormFieldAudio, "big.mp3", "audio/mpeg", make([]byte, maxUpload+8192))

	req := httptest.NewRequest(http.MethodPost, "/api/audio/upload", body)
	req.Header.Set("Content-Type", ct)

	if w := do(engine, req); w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestGetByUUID(t *testing.T) {
	engine := newEngine(t, "https://audio.example.org/")
	resp := mustUpload(t, engine, "a.mp3", []byte("abc"))

	w := do(engine, httptest.NewRequest(http.MethodGet, "/api/audio/file/"+resp.UUID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	info := decode[types.AudioFileInfo](t, w)
	if info.DownloadURL != "https://audio.example.org/api/audio/download/"+resp.UUID {
		t.Fatalf("downloadUrl = %q", info.DownloadURL)
	}

	for _, id := range []string{"nope", strings.ToUpper(resp.UUID), "00000000-0000-4000-8000-000000000000"} {
		w := do(engine, httptest.NewRequest(http.MethodGet, "/api/audio/file/"+id, nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("GET %s status = %d", id, w.Code)
		}

		if msg := decode[types.ErrorResponse](t, w).Message; msg != service.ErrNotFound.Error() {
			t.Fatalf("message = %q", msg)
		}
	}
}

func TestForwardedProto(t *testing.T) {
	engine := newEngine(t, "")

	body, ct := multipartBody(t, handle.FormFieldAudio, "a.mp3", "audio/mpeg", []byte("abc"))

	req := httptest.NewRequest(http.MethodPost, "/api/audio/upload", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("X-Forwarded-Proto", "https")
	req.Host = "audio.internal:8443"

	w := do(engine, req)

	resp := decode[types.UploadResponse](t, w)
	if !strings.HasPrefix(resp.DownloadURL, "https://audio.internal:8443/api/audio/download/") {
		t.Fatalf("downloadUrl = %q", resp.DownloadURL)
	}
}

func TestDownload(t *testing.T) {
	engine := newEngine(t, "")
	data := []byte("0123456789")
	resp := mustUpload(t, engine, "My Track.mp3", data)

	w := do(engine, httptest.NewRequest(http.MethodGet, "/api/audio/download/"+resp.UUID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	if !bytes.Equal(w.Body.Bytes(), data) {
		t.Fatalf("body = %q", w.Body.Bytes())
	}

	if cd := w.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment") || !strings.Contains(cd, "My Track.mp3") {
		t.Fatalf("Content-Disposition = %q", cd)
	}

	if ct := w.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Fatalf("Content-Type = %q", ct)
	}

	etag := w.Header().Get("ETag")
	if etag != handle.ETag(resp.UUID, resp.FileSize) {
		t.Fatalf("ETag = %q", etag)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/audio/download/"+resp.UUID, nil)
	req.Header.Set("If-None-Match", etag)

	if w := do(engine, req); w.Code != http.StatusNotModified {
		t.Fatalf("conditional status = %d", w.Code)
	}

	if w := do(engine, httptest.NewRequest(http.MethodGet, "/api/audio/download/missing", nil)); w.Code != http.StatusNotFound {
		t.Fatalf("missing status = %d", w.Code)
	}
}

func TestStreamRange(t *testing.T) {
	engine := newEngine(t, "")
	resp := mustUpload(t, engine, "a.mp3", []byte("0123456789"))

	w := do(engine, httptest.NewRequest(http.MethodGet, "/api/audio/stream/"+resp.UUID, nil))
	if w.Code != http.StatusOK || w.Header().Get("Accept-Ranges") != "bytes" {
		t.Fatalf("status = %d Accept-Ranges = %q", w.Code, w.Header().Get("Accept-Ranges"))
	}

	if cd := w.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "inline") {
		t.Fatalf("Content-Disposition = %q", cd)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/audio/stream/"+resp.UUID, nil)
	req.Header.Set("Range", "bytes=2-4")

	w = do(engine, req)
	if w.Code != http.StatusPartialContent {
		t.Fatalf("range status = %d", w.Code)
	}

	if w.Body.String() != "234" || w.Header().Get("Content-Range") != "bytes 2-4/10" {
		t.Fatalf("body = %q Content-Range = %q", w.Body.String(), w.Header().Get("Content-Range"))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/audio/stream/"+resp.UUID, nil)
	req.Header.Set("Range", "bytes=20-30")

	if w := do(engine, req); w.Code != http.StatusRequestedRangeNotSatisfiable {
		t.Fatalf("unsatisfiable status = %d", w.Code)
	}
}

func TestDelete(t *testing.T) {
	engine := newEngine(t, "")
	resp := mustUpload(t, engine, "a.mp3", []byte("abc"))

	path := fmt.Sprintf("/api/audio/files/%d", resp.ID)

	if w := do(engine, httptest.NewRequest(http.MethodDelete, path, nil)); w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}

	if w := do(engine, httptest.NewRequest(http.MethodDelete, path, nil)); w.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d", w.Code)
	}

	for _, id := range []string{"abc", "-1", "1.5"} {
		if w := do(engine, httptest.NewRequest(http.MethodDelete, "/api/audio/files/"+id, nil)); w.Code != http.StatusBadRequest {
			t.Fatalf("delete %s status = %d", id, w.Code)
		}
	}

	// 0 是合法的数字 id，只是没有对应记录
	if w := do(engine, httptest.NewRequest(http.MethodDelete, "/api/audio/files/0", nil)); w.Code != http.StatusNotFound {
		t.Fatalf("delete 0 status = %d", w.Code)
	}

	if w := do(engine, httptest.NewRequest(http.MethodGet, "/api/audio/download/"+resp.UUID, nil)); w.Code != http.StatusNotFound {
		t.Fatalf("download after delete status = %d", w.Code)
	}
}

func TestUnwiredRoutes(t *testing.T) {
	engine := gin.New()
	router.RegisterAudioRoutes(engine.Group("/api"), nil, router.Options{})

	if w := do(engine, httptest.NewRequest(http.MethodGet, "/api/audio/files", nil)); w.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d", w.Code)
	}
}

type fakeChecker map[storage.Component]error

func (f fakeChecker) Check(_ context.Context, c storage.Component) error { return f[c] }

func TestHealth(t *testing.T) {
	engine := gin.New()
	router.RegisterHealthCheckRoute(engine.Group("/api"), fakeChecker{
		storage.ComponentBlob: errors.New("root missing"),
		storage.ComponentKV:   storage.ErrDisabled,
	})

	cases := map[string]struct {
		code   int
		status string
	}{
		"db":   {http.StatusOK, "ok"},
		"blob": {http.StatusServiceUnavailable, "unhealthy"},
		"kv":   {http.StatusOK, "disabled"},
		"mq":   {http.StatusOK, "ok"},
	}

	for name, want := range cases {
		w := do(engine, httptest.NewRequest(http.MethodGet, "/api/health/"+name, nil))
		if w.Code != want.code {
			t.Fatalf("%s status = %d", name, w.Code)
		}

		if got := decode[types.HealthResponse](t, w); got.Status != want.status || got.Component != name {
			t.Fatalf("%s = %+v", name, got)
		}
	}
}

func TestContentDispositionEscapes(t *testing.T) {
	engine := newEngine(t, "")
	resp := mustUpload(t, engine, "песня.mp3", []byte("abc"))

	w := do(engine, httptest.NewRequest(http.MethodGet, "/api/audio/download/"+resp.UUID, nil))

	cd := w.Header().Get("Content-Disposition")
	if !strings.Contains(cd, "filename*=utf-8''") {
		t.Fatalf("Content-Disposition = %q", cd)
	}
}
