package observability

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestWithRenderIDAndURL(t *testing.T) {
	ctx := WithURL(WithRenderID(context.Background(), "r-1"), "pages/a.html")

	lc := GetContext(ctx)
	if lc.RenderID != "r-1" || lc.URL != "pages/a.html" {
		t.Fatalf("unexpected context: %+v", lc)
	}

	// child contexts do not leak back into the parent
	parent := WithRenderID(context.Background(), "r-2")
	_ = WithURL(parent, "index.html")
	if GetContext(parent).URL != "" {
		t.Fatal("parent context was modified")
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithPlugin(WithRenderID(context.Background(), "r-1"), "journal")
	Logger(ctx, base).Info("hello")

	line := buf.String()
	for _, want := range []string{"render_id=r-1", "plugin=journal", "msg=hello"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q missing %q", line, want)
		}
	}
	if strings.Contains(line, "url=") {
		t.Errorf("empty URL should be omitted: %q", line)
	}
}

func TestLogger_NoContext(t *testing.T) {
	base := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	if Logger(context.Background(), base) != base {
		t.Fatal("expected base logger to be returned unchanged")
	}
}
