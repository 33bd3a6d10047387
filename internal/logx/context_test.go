package logx

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestContextHandlerInjectsAttrs(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(ContextHandler{Handler: slog.NewTextHandler(&buf, nil)})

	ctx := WithAttrs(context.Background(), slog.String("query", "vim"))
	ctx = WithAttrs(ctx, slog.String("engine", "duckduckgo"))

	logger.InfoContext(ctx, "searching")

	output := buf.String()
	if !strings.Contains(output, "query=vim") {
		t.Errorf("expected the query attribute in %q", output)
	}

	if !strings.Contains(output, "engine=duckduckgo") {
		t.Errorf("expected the engine attribute in %q", output)
	}
}

func TestContextHandlerWithoutAttrs(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(ContextHandler{Handler: slog.NewTextHandler(&buf, nil)})

	logger.InfoContext(context.Background(), "searching")

	if !strings.Contains(buf.String(), "searching") {
		t.Errorf("expected the record to pass through, got %q", buf.String())
	}
}
