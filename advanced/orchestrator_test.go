package advanced

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
)

func mustCompileAll(t *testing.T, patterns ...string) []*regexp.Regexp {
	t.Helper()
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		res = append(res, regexp.MustCompile(p))
	}
	return res
}

func TestSynthesizeFilename(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"image/png":       "png",
		"image/jpeg":       "jpg",
		"image/webp":       "webp",
		"image/gif":        "gif",
		"application/pdf":  "pdf",
		"application/octet-stream": "bin",
		"":                 "bin",
	}
	for mimeType, wantExt := range cases {
		name := synthesizeFilename(mimeType)
		assert.True(t, len(name) > len("crawl_.")+len(wantExt))
		assert.Equal(t, "crawl_", name[:6])
		assert.Equal(t, "."+wantExt, name[len(name)-len(wantExt)-1:])
	}
}

func TestMatchesAny(t *testing.T) {
	t.Parallel()

	assert.True(t, matchesAny("https://api.example.com/v1/products", mustCompileAll(t, "/v1/products")))
	assert.False(t, matchesAny("https://api.example.com/v1/products", mustCompileAll(t, "/v2/")))
	assert.False(t, matchesAny("https://api.example.com/v1/products", nil))
}

func TestMatchesAny_RegexAnchors(t *testing.T) {
	t.Parallel()

	assert.True(t, matchesAny("https://api.example.com/api/data", mustCompileAll(t, "/api/data$")))
	assert.False(t, matchesAny("https://api.example.com/api/data/extra", mustCompileAll(t, "/api/data$")))
}

func TestBodyHash_StableAndDeterministic(t *testing.T) {
	t.Parallel()

	body := `{"id":1,"name":"widget"}`
	h1 := fmt.Sprintf("%016x", xxhash.Sum64String(body))
	h2 := fmt.Sprintf("%016x", xxhash.Sum64String(body))
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 16)

	other := fmt.Sprintf("%016x", xxhash.Sum64String(body+"x"))
	assert.NotEqual(t, h1, other)
}
