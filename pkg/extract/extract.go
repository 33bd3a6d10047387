package extract

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/pkg/errors"
)

// ErrNoContent is returned when no readable text could be extracted
// from a page.
var ErrNoContent = errors.New("no readable content")

// Pages whose extracted text is shorter than this are considered
// readability failures and retried with the plain text fallback.
const minTextLength = 50

// Content is the readable part of a web page.
type Content struct {
	Title string
	Text  string
	HTML  string
}

// FromHTML runs the readability algorithm over raw HTML and returns the
// main article content. When readability fails or finds next to nothing,
// it falls back to the stripped text of the document body. ErrNoContent
// is returned when neither approach yields usable text.
func FromHTML(rawHTML string, pageURL string) (*Content, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse page url %q", pageURL)
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err == nil {
		text := normalizeText(article.TextContent)
		if len(text) >= minTextLength {
			return &Content{
				Title: article.Title,
				Text:  text,
				HTML:  article.Content,
			}, nil
		}
	}

	return fallbackFromBody(rawHTML)
}

// fallbackFromBody strips scripts and styles and keeps the bare text of
// the document body.
func fallbackFromBody(rawHTML string) (*Content, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	doc.Find("script, style, noscript, iframe").Remove()

	text := normalizeText(doc.Find("body").Text())
	if text == "" {
		return nil, errors.WithStack(ErrNoContent)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	html, err := doc.Find("body").Html()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &Content{
		Title: title,
		Text:  text,
		HTML:  html,
	}, nil
}

// normalizeText collapses runs of blank lines and trims every line.
func normalizeText(text string) string {
	lines := strings.Split(text, "\n")

	normalized := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		normalized = append(normalized, line)
	}

	return strings.Join(normalized, "\n")
}

// TruncateWords keeps at most maxWords whitespace-separated words.
func TruncateWords(text string, maxWords int) string {
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return strings.TrimSpace(text)
	}

	return strings.Join(words[:maxWords], " ")
}

// CountWords returns the number of whitespace-separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// TruncateWordsKeepLayout keeps at most maxWords words without
// collapsing the original whitespace, so markdown structure survives.
func TruncateWordsKeepLayout(text string, maxWords int) string {
	if maxWords <= 0 {
		return ""
	}

	inWord := false
	count := 0

	for i, r := range text {
		if unicode.IsSpace(r) {
			inWord = false
			continue
		}

		if !inWord {
			inWord = true
			count++

			if count > maxWords {
				return strings.TrimSpace(text[:i])
			}
		}
	}

	return strings.TrimSpace(text)
}
