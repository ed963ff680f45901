package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yeisme/audiovault/pkg/app"
	"github.com/yeisme/audiovault/pkg/configs"
)

func testConfig(t *testing.T) *configs.AppConfig {
	t.Helper()

	if err := configs.InitConfig(t.TempDir()); err != nil {
		t.Fatal(err)
	}

	cfg := configs.GetConfig()
	cfg.DB.Type = configs.Memory
	cfg.Blob.Type = configs.BlobTypeLocal
	cfg.Blob.Local.Root = t.TempDir()
	cfg.KV.Type = "memory"
	cfg.MQ.Type = configs.MQTypeGoChannel
	cfg.Server.Port = 0

	return cfg
}

func TestNewAppServesHealth(t *testing.T) {
	ctx := context.Background()

	a, err := app.NewApp(ctx, testConfig(t))
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { _ = a.Close(context.Background()) })

	for _, c := range []string{"db", "blob", "kv", "mq"} {
		w := httptest.NewRecorder()
		a.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health/"+c, nil))

		if w.Code != http.StatusOK {
			t.Fatalf("%s status = %d body = %s", c, w.Code, w.Body.String())
		}
	}

	w := httptest.NewRecorder()
	a.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/audio/files", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := testConfig(t)
	cfg.Server.Host = "127.0.0.1"

	a, err := app.NewApp(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)

	go func() { done <- a.Run(ctx) }()

	cancel()

	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}
