package searx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

const resultsFixture = `<html><body>
<div class="result">
	<h3><a href="https://example.com/editors">Best console editors</a></h3>
	<div class="content">A comparison of terminal editors.</div>
</div>
<div class="result">
	<h3><a href="https://example.org/vim">Vim tips</a></h3>
	<div class="content">Getting faster with vim.</div>
</div>
<div class="result">
	<h3><a href="">Broken</a></h3>
	<div class="content">No link.</div>
</div>
</body></html>`

func TestDoSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			http.NotFound(w, r)
			return
		}

		if r.URL.Query().Get("q") != "console editors" {
			t.Errorf("unexpected query %q", r.URL.Query().Get("q"))
		}

		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(resultsFixture))
	}))
	defer server.Close()

	serverURL, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	client := NewClient()

	results, err := client.doSearch(context.Background(), serverURL, "console editors")
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	spew.Dump(results)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	if results[0].URL != "https://example.com/editors" {
		t.Errorf("unexpected first url %q", results[0].URL)
	}
}
