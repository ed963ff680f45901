package context_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	actx "github.com/yeisme/audiovault/pkg/context"
)

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer

	base := zerolog.New(&buf).With().Str("request_id", "r-1").Logger()
	ctx := actx.WithLogger(context.Background(), base)

	l := actx.Logger(ctx)
	l.Info().Msg("hello")

	if !strings.Contains(buf.String(), `"request_id":"r-1"`) {
		t.Fatalf("log line = %s", buf.String())
	}
}

func TestRequestIDAndTraceID(t *testing.T) {
	ctx := actx.WithRequestID(context.Background(), "abc")

	if got := actx.RequestID(ctx); got != "abc" {
		t.Fatalf("RequestID = %q", got)
	}

	if got := actx.RequestID(context.Background()); got != "" {
		t.Fatalf("RequestID on empty ctx = %q", got)
	}

	if got := actx.TraceID(ctx); got != "" {
		t.Fatalf("TraceID without span = %q", got)
	}
}
