package captcha

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

// ErrDetected is returned when a page looks like a captcha or
// bot-detection challenge. The scraper never tries to solve those.
var ErrDetected = errors.New("captcha or bot detection encountered")

var bodyKeywords = []string{
	"are you human",
	"verify you are human",
	"unusual traffic",
	"complete the captcha",
	"please verify",
	"captcha",
	"robot check",
	"security check",
}

var selectors = []string{
	`[id*="captcha"]`,
	`[class*="captcha"]`,
	"div.g-recaptcha",
	"div.h-captcha",
	`iframe[src*="recaptcha"]`,
	`iframe[src*="hcaptcha"]`,
	"#challenge-form",
}

// IsChallenge reports whether the document looks like a captcha or
// bot-detection screen, using keyword and selector heuristics.
func IsChallenge(doc *goquery.Document) bool {
	body := strings.ToLower(doc.Find("body").Text())
	for _, keyword := range bodyKeywords {
		if strings.Contains(body, keyword) {
			return true
		}
	}

	for _, selector := range selectors {
		if doc.Find(selector).Length() > 0 {
			return true
		}
	}

	return false
}

// Check parses the HTML document from r and returns ErrDetected when it
// looks like a challenge page.
func Check(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if IsChallenge(doc) {
		return nil, errors.WithStack(ErrDetected)
	}

	return doc, nil
}
