package extract

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/pkg/errors"
)

// Markdown converts the extracted article HTML to markdown. The domain
// is used to resolve relative links so the output is self contained.
func (c *Content) Markdown(domain string) (string, error) {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)

	markdown, err := conv.ConvertString(c.HTML, converter.WithDomain(domain))
	if err != nil {
		return "", errors.WithStack(err)
	}

	return strings.TrimSpace(markdown), nil
}
