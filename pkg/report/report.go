package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bornholm/skimmer/pkg/harvest"
	"github.com/gosimple/slug"
	"github.com/pkg/errors"
	"go.yaml.in/yaml/v3"
)

// Metadata is rendered as a yaml front matter block when enabled.
type Metadata struct {
	Query       string    `yaml:"query"`
	Engine      string    `yaml:"engine"`
	GeneratedAt time.Time `yaml:"generated_at"`
	Scraped     int       `yaml:"scraped"`
	Skipped     int       `yaml:"skipped"`
}

// Document renders harvest results as a markdown file.
type Document struct {
	result      *harvest.Result
	engine      string
	frontMatter bool
}

func NewDocument(result *harvest.Result, engine string, frontMatter bool) *Document {
	return &Document{
		result:      result,
		engine:      engine,
		frontMatter: frontMatter,
	}
}

// WriteTo renders the document: one `## <url>` section per page, with a
// horizontal rule between consecutive sections.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	var buff bytes.Buffer

	if d.frontMatter {
		if err := d.writeFrontMatter(&buff); err != nil {
			return 0, errors.WithStack(err)
		}
	}

	for i, page := range d.result.Pages {
		if _, err := fmt.Fprintf(&buff, "## %s\n\n", page.URL); err != nil {
			return 0, errors.WithStack(err)
		}

		if _, err := fmt.Fprintf(&buff, "%s\n\n", page.Text); err != nil {
			return 0, errors.WithStack(err)
		}

		if i < len(d.result.Pages)-1 {
			if _, err := io.WriteString(&buff, "---\n\n"); err != nil {
				return 0, errors.WithStack(err)
			}
		}
	}

	return buff.WriteTo(w)
}

func (d *Document) writeFrontMatter(w io.Writer) error {
	if _, err := io.WriteString(w, "---\n"); err != nil {
		return errors.WithStack(err)
	}

	encoder := yaml.NewEncoder(w)
	metadata := Metadata{
		Query:       d.result.Query,
		Engine:      d.engine,
		GeneratedAt: d.result.StartedAt,
		Scraped:     len(d.result.Pages),
		Skipped:     len(d.result.Skipped),
	}
	if err := encoder.Encode(metadata); err != nil {
		return errors.Wrapf(err, "failed to write document metadata")
	}

	if err := encoder.Close(); err != nil {
		return errors.WithStack(err)
	}

	if _, err := io.WriteString(w, "---\n\n"); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// Save writes the document to the given file, appending instead of
// truncating when append is set.
func (d *Document) Save(filename string, appendFile bool) error {
	flags := os.O_CREATE | os.O_WRONLY
	if appendFile {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(filename, flags, 0644)
	if err != nil {
		return errors.Wrapf(err, "failed to open %q", filename)
	}

	defer file.Close()

	if _, err := d.WriteTo(file); err != nil {
		return errors.Wrapf(err, "failed to write %q", filename)
	}

	return nil
}

// DefaultFilename returns a markdown filename derived from the query.
func DefaultFilename(query string) string {
	s := slug.Make(strings.TrimSpace(query))
	if s == "" {
		return "output.md"
	}

	return s + ".md"
}
