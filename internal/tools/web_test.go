package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTMLToTextBasic(t *testing.T) {
	html := `<html><body><h1>Hello World</h1><p>This is a paragraph.</p></body></html>`
	text := htmlToText(html)
	assert.Contains(t, text, "Hello World")
	assert.Contains(t, text, "This is a paragraph.")
}

func TestHTMLToTextRemovesScripts(t *testing.T) {
	html := `<html><body><p>Visible text</p><script>console.log('hidden')</script></body></html>`
	text := htmlToText(html)
	assert.Contains(t, text, "Visible text")
	assert.NotContains(t, text, "console.log")
}

func TestCleanTextCollapsesWhitespace(t *testing.T) {
	messy := "  Hello    world\n\n\n\nMultiple    spaces  "
	assert.Equal(t, "Hello world\nMultiple spaces", cleanText(messy))
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", truncateText("short", 10))
	assert.Equal(t, "this is a ...", truncateText("this is a long string", 10))
}

func TestFetchRejectsNonHTTPURL(t *testing.T) {
	ctx := newTestContext(t)
	res := FetchTool{}.Execute(map[string]any{"url": "not-a-url"}, ctx)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content, "http")
}

func TestFetchMissingURL(t *testing.T) {
	ctx := newTestContext(t)
	res := FetchTool{}.Execute(map[string]any{}, ctx)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content, "url is required")
}

func TestSearchMissingQuery(t *testing.T) {
	ctx := newTestContext(t)
	res := SearchTool{}.Execute(map[string]any{}, ctx)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content, "query is required")
}
