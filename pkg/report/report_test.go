package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bornholm/skimmer/pkg/harvest"
	"github.com/pkg/errors"
)

func fixtureResult() *harvest.Result {
	return &harvest.Result{
		Query:     "best console editor for linux",
		StartedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Pages: []harvest.Page{
			{URL: "https://example.com/a", Title: "A", Text: "first page text", Words: 3},
			{URL: "https://example.org/b", Title: "B", Text: "second page text", Words: 3},
		},
		Skipped: []string{"https://example.net/c"},
	}
}

func TestWriteTo(t *testing.T) {
	var sb strings.Builder

	document := NewDocument(fixtureResult(), "duckduckgo", false)
	if _, err := document.WriteTo(&sb); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	got := sb.String()
	want := "## https://example.com/a\n\nfirst page text\n\n---\n\n## https://example.org/b\n\nsecond page text\n\n"

	if got != want {
		t.Errorf("unexpected document:\n%q\nwant:\n%q", got, want)
	}
}

func TestWriteToFrontMatter(t *testing.T) {
	var sb strings.Builder

	document := NewDocument(fixtureResult(), "duckduckgo", true)
	if _, err := document.WriteTo(&sb); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	got := sb.String()

	if !strings.HasPrefix(got, "---\n") {
		t.Errorf("expected a front matter block, got:\n%s", got)
	}

	for _, want := range []string{"query: best console editor for linux", "engine: duckduckgo", "scraped: 2", "skipped: 1"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected front matter to contain %q, got:\n%s", want, got)
		}
	}
}

func TestSaveAppend(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "output.md")

	document := NewDocument(fixtureResult(), "duckduckgo", false)

	if err := document.Save(filename, false); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if err := document.Save(filename, true); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if count := strings.Count(string(data), "## https://example.com/a"); count != 2 {
		t.Errorf("expected 2 sections after append, got %d", count)
	}

	// Overwriting must drop the previous content.
	if err := document.Save(filename, false); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	data, err = os.ReadFile(filename)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if count := strings.Count(string(data), "## https://example.com/a"); count != 1 {
		t.Errorf("expected 1 section after overwrite, got %d", count)
	}
}

func TestDefaultFilename(t *testing.T) {
	if got := DefaultFilename("Best Console Editor for Linux"); got != "best-console-editor-for-linux.md" {
		t.Errorf("unexpected filename %q", got)
	}

	if got := DefaultFilename("   "); got != "output.md" {
		t.Errorf("unexpected filename %q", got)
	}
}
