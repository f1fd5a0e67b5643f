// Package quality implements the Content Quality Judge: pure functions
// deciding whether a fetched response is a real document or a shell/
// block that should trigger escalation to the next ladder step.
package quality

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// shellPatterns are common empty SPA root containers.
var shellPatterns = []*regexp.Regexp{
	regexp.MustCompile(`<div\s+id=["']root["']\s*>\s*</div>`),
	regexp.MustCompile(`<div\s+id=["']app["']\s*>\s*</div>`),
	regexp.MustCompile(`<div\s+id=["']__next["']\s*>\s*</div>`),
	regexp.MustCompile(`<div\s+id=["']__nuxt["']\s*>\s*</div>`),
	regexp.MustCompile(`(?s)<body[^>]*>\s*<noscript>`),
}

// textBearingElementRe matches tags commonly holding real prose, with
// at least 10 characters of non-tag text inside.
var textBearingElementRe = regexp.MustCompile(`(?i)<(p|h[1-6]|li|td|span|a|div)[^>]*>[^<]{10,}`)

// structuralTags are elements whose presence suggests a real document
// layout rather than a shell.
var structuralTags = map[string]bool{
	"table": true, "ul": true, "ol": true, "article": true,
	"section": true, "main": true, "header": true,
}

// blockingStatuses are status codes that, regardless of body content,
// indicate the fetch was blocked rather than successful.
var blockingStatuses = map[int]bool{403: true, 429: true, 503: true}

// Sufficient is the Content Quality Judge: a pure predicate deciding
// whether a fetched response is a real page versus a shell or block.
// Rules are evaluated in order; the first rule that decides wins.
func Sufficient(content string, statusCode int) bool {
	if blockingStatuses[statusCode] {
		return false
	}
	if len(content) < 500 {
		return false
	}
	if isEmptySPAShell(content) && len(content) < 2000 {
		return false
	}
	if matches := textBearingElementRe.FindAllStringIndex(content, -1); len(matches) >= 3 && len(content) >= 1000 {
		return true
	}
	if len(content) > 5000 {
		return true
	}
	if hasStructuralElement(content) {
		return true
	}
	return true
}

func isEmptySPAShell(content string) bool {
	for _, re := range shellPatterns {
		if re.MatchString(content) {
			return true
		}
	}
	return false
}

// hasStructuralElement reports whether content's body contains at
// least one structural element (table, ul, ol, article, section,
// main, header), using a real HTML tokenizer rather than string
// scanning so nested/malformed markup is handled correctly.
func hasStructuralElement(content string) bool {
	tok := html.NewTokenizer(strings.NewReader(content))
	for {
		tt := tok.Next()
		switch tt {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tok.TagName()
			if structuralTags[string(name)] {
				return true
			}
		}
	}
}
