// Package formatter renders a fetched document's raw HTML into the
// response shape requested by FetchRequest.Format: stripped-content
// HTML via go-readability, or Markdown via html-to-markdown layered on
// top of the same stripped extraction.
package formatter

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/go-shiori/go-readability"

	"github.com/archfetch/fetchcore"
)

// Formatter renders a raw HTML fetch result into the requested output
// format, in place on the result.
type Formatter struct {
	conv *converter.Converter
}

// New creates a Formatter with the commonmark+table Markdown plugin
// set, matching the teacher's htmltomarkdown.Converter configuration.
func New() *Formatter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Formatter{conv: conv}
}

// Apply mutates result in place according to format:
//   - FormatHTML: no change, result.Content stays raw HTML.
//   - FormatHTMLStripped: result.Content becomes go-readability's
//     extracted article HTML.
//   - FormatMarkdown: result.Markdown is set to the Markdown rendering
//     of the stripped content (extracted as above); result.Content
//     stays raw HTML.
//
// ResponseBase64 results are never reformatted: Format only applies to
// text responses, matching the fast engine's base64-forces-fast rule.
func (f *Formatter) Apply(result *fetchcore.FetchResult, format fetchcore.Format) error {
	if result.ResponseType == fetchcore.ResponseBase64 {
		return nil
	}
	switch format {
	case "", fetchcore.FormatHTML:
		return nil
	case fetchcore.FormatHTMLStripped:
		stripped, err := f.strip(result.Content)
		if err != nil {
			return err
		}
		result.Content = stripped
		return nil
	case fetchcore.FormatMarkdown:
		stripped, err := f.strip(result.Content)
		if err != nil {
			return err
		}
		md, err := f.markdown(stripped)
		if err != nil {
			return err
		}
		result.Markdown = md
		return nil
	default:
		return fetchcore.Errorf(fetchcore.EBADREQUEST, "unknown format %q", format)
	}
}

func (f *Formatter) strip(rawHTML string) (string, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return "", nil
	}
	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return "", fetchcore.Errorf(fetchcore.EENGINE, "formatter: extracting content: %v", err)
	}
	return article.Content, nil
}

func (f *Formatter) markdown(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}
	md, err := f.conv.ConvertString(html)
	if err != nil {
		return "", fetchcore.Errorf(fetchcore.EENGINE, "formatter: converting to markdown: %v", err)
	}
	return md, nil
}
