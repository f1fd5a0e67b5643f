package formatter_test

import (
	"strings"
	"testing"

	"github.com/archfetch/fetchcore"
	"github.com/archfetch/fetchcore/formatter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHTML = `<html><body><article><h1>Title</h1><p>` +
	`This is a reasonably long paragraph of prose so that go-readability ` +
	`has enough text density to treat it as the main article content ` +
	`rather than discarding the page as boilerplate.</p></article></body></html>`

func TestFormatter_Apply_HTMLLeavesContentUnchanged(t *testing.T) {
	t.Parallel()

	f := formatter.New()
	result := &fetchcore.FetchResult{Content: sampleHTML}
	require.NoError(t, f.Apply(result, fetchcore.FormatHTML))
	assert.Equal(t, sampleHTML, result.Content)
}

func TestFormatter_Apply_HTMLStripped(t *testing.T) {
	t.Parallel()

	f := formatter.New()
	result := &fetchcore.FetchResult{Content: sampleHTML}
	require.NoError(t, f.Apply(result, fetchcore.FormatHTMLStripped))
	assert.Contains(t, result.Content, "reasonably long paragraph")
}

func TestFormatter_Apply_Markdown(t *testing.T) {
	t.Parallel()

	f := formatter.New()
	result := &fetchcore.FetchResult{Content: sampleHTML}
	require.NoError(t, f.Apply(result, fetchcore.FormatMarkdown))
	assert.True(t, strings.Contains(result.Markdown, "Title") || strings.Contains(result.Markdown, "paragraph"))
}

func TestFormatter_Apply_SkipsBase64Responses(t *testing.T) {
	t.Parallel()

	f := formatter.New()
	result := &fetchcore.FetchResult{Content: "aGVsbG8=", ResponseType: fetchcore.ResponseBase64}
	require.NoError(t, f.Apply(result, fetchcore.FormatMarkdown))
	assert.Equal(t, "aGVsbG8=", result.Content)
	assert.Empty(t, result.Markdown)
}

func TestFormatter_Apply_UnknownFormat(t *testing.T) {
	t.Parallel()

	f := formatter.New()
	result := &fetchcore.FetchResult{Content: sampleHTML}
	err := f.Apply(result, fetchcore.Format("bogus"))
	require.Error(t, err)
	assert.Equal(t, fetchcore.EBADREQUEST, fetchcore.ErrorCode(err))
}
