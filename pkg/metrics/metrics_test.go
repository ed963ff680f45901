package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yeisme/audiovault/pkg/configs"
	"github.com/yeisme/audiovault/pkg/metrics"
)

func TestObserveUpload(t *testing.T) {
	before := testutil.ToFloat64(metrics.AudioUploads.WithLabelValues(metrics.ResultOK))
	bytesBefore := testutil.ToFloat64(metrics.AudioUploadBytes)

	metrics.ObserveUpload(metrics.ResultOK, 100)
	metrics.ObserveUpload(metrics.ResultRejected, 100)

	if got := testutil.ToFloat64(metrics.AudioUploads.WithLabelValues(metrics.ResultOK)) - before; got != 1 {
		t.Fatalf("ok uploads delta = %v", got)
	}

	if got := testutil.ToFloat64(metrics.AudioUploadBytes) - bytesBefore; got != 100 {
		t.Fatalf("upload bytes delta = %v, rejected uploads must not count", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := configs.MetricsConfig{Enabled: true, Path: "/metrics", Labels: map[string]string{"service": "test"}}
	if err := metrics.InitMetrics(cfg); err != nil {
		t.Fatalf("InitMetrics: %v", err)
	}

	metrics.ObserveDelete(metrics.ResultOK)

	r := gin.New()
	metrics.StartMetricsServer(cfg, r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	if !strings.Contains(w.Body.String(), "audio_deletes_total") {
		t.Fatal("audio_deletes_total missing from /metrics")
	}
}
