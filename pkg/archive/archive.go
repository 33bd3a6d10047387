package archive

import (
	"os"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/bornholm/skimmer/pkg/harvest"
	"github.com/pkg/errors"
)

// Entry is one archived page.
type Entry struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Query     string    `json:"query"`
	ScrapedAt time.Time `json:"scraped_at"`
}

// Match is a search hit in the archive.
type Match struct {
	Entry
	Score float64
}

// Archive is a persistent full-text index of scraped pages.
type Archive struct {
	index bleve.Index
}

// Open opens the archive at path, creating it when missing.
func Open(path string) (*Archive, error) {
	index, err := bleve.Open(path)
	if err == nil {
		return &Archive{index: index}, nil
	}

	if !errors.Is(err, bleve.ErrorIndexPathDoesNotExist) && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "failed to open archive %q", path)
	}

	index, err = bleve.New(path, newIndexMapping())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create archive %q", path)
	}

	return &Archive{index: index}, nil
}

// OpenMemory opens a throwaway in-memory archive.
func OpenMemory() (*Archive, error) {
	index, err := bleve.NewMemOnly(newIndexMapping())
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &Archive{index: index}, nil
}

func newIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()

	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Store = true
	titleFieldMapping.Index = true
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Store = true
	textFieldMapping.Index = true
	docMapping.AddFieldMappingsAt("text", textFieldMapping)

	queryFieldMapping := bleve.NewTextFieldMapping()
	queryFieldMapping.Store = true
	queryFieldMapping.Index = true
	docMapping.AddFieldMappingsAt("query", queryFieldMapping)

	urlFieldMapping := bleve.NewKeywordFieldMapping()
	urlFieldMapping.Store = true
	urlFieldMapping.Index = true
	docMapping.AddFieldMappingsAt("url", urlFieldMapping)

	indexMapping.AddDocumentMapping("page", docMapping)

	return indexMapping
}

// AddResult indexes every page of a harvest result, keyed by url so a
// page scraped again replaces its previous entry.
func (a *Archive) AddResult(result *harvest.Result) error {
	for _, page := range result.Pages {
		entry := Entry{
			URL:       page.URL,
			Title:     page.Title,
			Text:      page.Text,
			Query:     result.Query,
			ScrapedAt: result.StartedAt,
		}

		if err := a.index.Index(page.URL, entry); err != nil {
			return errors.Wrapf(err, "failed to index %q", page.URL)
		}
	}

	return nil
}

// Search runs a full-text query against the archive.
func (a *Archive) Search(query string, limit int) ([]Match, error) {
	request := bleve.NewSearchRequest(bleve.NewQueryStringQuery(query))
	request.Size = limit
	request.Fields = []string{"url", "title", "text", "query"}

	results, err := a.index.Search(request)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	matches := make([]Match, 0, len(results.Hits))
	for _, hit := range results.Hits {
		match := Match{Score: hit.Score}
		match.URL, _ = hit.Fields["url"].(string)
		match.Title, _ = hit.Fields["title"].(string)
		match.Text, _ = hit.Fields["text"].(string)
		match.Query, _ = hit.Fields["query"].(string)

		matches = append(matches, match)
	}

	return matches, nil
}

// Count returns the number of archived pages.
func (a *Archive) Count() (uint64, error) {
	count, err := a.index.DocCount()
	if err != nil {
		return 0, errors.WithStack(err)
	}

	return count, nil
}

func (a *Archive) Close() error {
	return errors.WithStack(a.index.Close())
}
