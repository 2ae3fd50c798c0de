package tools

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// FetchTool retrieves a URL and converts HTML responses to readable text
// (spec.md §4.10).
type FetchTool struct{}

func (FetchTool) Name() string        { return "fetch" }
func (FetchTool) Description() string { return "Fetch content from a URL. Converts HTML to readable text." }
func (FetchTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{"type": "string", "description": "URL to fetch"},
		},
		"required": []string{"url"},
	}
}

var fetchClient = &http.Client{Timeout: 30 * time.Second}

func (FetchTool) Execute(input map[string]any, ctx *Context) Result {
	rawURL, ok := stringArg(input, "url")
	if !ok {
		return ErrorResult("url is required")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return ErrorResult("URL must start with http:// or https://")
	}

	resp, err := fetchClient.Get(rawURL)
	if err != nil {
		return ErrorResult("Failed to fetch URL: %s", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ErrorResult("HTTP error: %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1_000_001))
	if err != nil {
		return ErrorResult("Failed to read response: %s", err)
	}
	if len(body) > 1_000_000 {
		return ErrorResult("Response too large (> 1MB)")
	}

	var output string
	switch {
	case strings.Contains(contentType, "text/html") || strings.Contains(contentType, "application/xhtml"):
		output = htmlToText(string(body))
	case strings.Contains(contentType, "application/json"):
		var v any
		if err := json.Unmarshal(body, &v); err == nil {
			if pretty, err := json.MarshalIndent(v, "", "  "); err == nil {
				output = string(pretty)
			} else {
				output = string(body)
			}
		} else {
			output = string(body)
		}
	default:
		output = string(body)
	}

	const maxChars = 50_000
	if len(output) > maxChars {
		output = fmt.Sprintf("%s...\n[truncated, %d chars total]", output[:maxChars], len(output))
	}
	return OKResult(output)
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "li": true, "tr": true,
}

var skipElements = map[string]bool{"script": true, "style": true, "noscript": true}

func htmlToText(src string) string {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return src
	}
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			parts = append(parts, "\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return cleanText(strings.Join(parts, " "))
}

func cleanText(text string) string {
	var b strings.Builder
	prevWhitespace := false
	prevNewline := false
	for _, ch := range text {
		switch {
		case ch == '\n':
			if !prevNewline {
				b.WriteByte('\n')
			}
			prevNewline = true
			prevWhitespace = true
		case ch == ' ' || ch == '\t' || ch == '\r':
			if !prevWhitespace {
				b.WriteByte(' ')
			}
			prevWhitespace = true
		default:
			b.WriteRune(ch)
			prevWhitespace = false
			prevNewline = false
		}
	}
	return strings.TrimSpace(b.String())
}

// SearchTool searches the web via whichever provider has an API key
// configured in the environment (spec.md §4.10).
type SearchTool struct{}

func (SearchTool) Name() string { return "search" }
func (SearchTool) Description() string {
	return "Search the web for information. Requires TAVILY_API_KEY, BRAVE_API_KEY, or SERPAPI_KEY."
}
func (SearchTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query":       map[string]any{"type": "string", "description": "Search query"},
			"max_results": map[string]any{"type": "integer", "description": "Maximum results to return (default: 5)"},
		},
		"required": []string{"query"},
	}
}

var searchClient = &http.Client{Timeout: 30 * time.Second}

func (SearchTool) Execute(input map[string]any, ctx *Context) Result {
	query, ok := stringArg(input, "query")
	if !ok {
		return ErrorResult("query is required")
	}
	maxResults := intArg(input, "max_results", 5)

	if apiKey := os.Getenv("TAVILY_API_KEY"); apiKey != "" {
		return searchTavily(query, maxResults, apiKey)
	}
	if apiKey := os.Getenv("BRAVE_API_KEY"); apiKey != "" {
		return searchBrave(query, maxResults, apiKey)
	}
	if apiKey := os.Getenv("SERPAPI_KEY"); apiKey != "" {
		return searchSerpAPI(query, maxResults, apiKey)
	}
	return ErrorResult("No search API configured. Set TAVILY_API_KEY, BRAVE_API_KEY, or SERPAPI_KEY environment variable.")
}

func searchTavily(query string, maxResults int, apiKey string) Result {
	body, err := json.Marshal(map[string]any{
		"api_key": apiKey, "query": query, "max_results": maxResults, "search_depth": "basic",
	})
	if err != nil {
		return ErrorResult("Search request failed: %s", err)
	}
	resp, err := searchClient.Post("https://api.tavily.com/search", "application/json", strings.NewReader(string(body)))
	if err != nil {
		return ErrorResult("Search request failed: %s", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ErrorResult("Tavily API error %d: %s", resp.StatusCode, string(data))
	}
	var parsed struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return ErrorResult("Failed to parse response: %s", err)
	}
	return formatSearchResults(len(parsed.Results), func(i int) (string, string, string) {
		r := parsed.Results[i]
		return r.Title, r.URL, r.Content
	})
}

func searchBrave(query string, maxResults int, apiKey string) Result {
	u := "https://api.search.brave.com/res/v1/web/search?" + url.Values{
		"q": {query}, "count": {fmt.Sprint(maxResults)},
	}.Encode()
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return ErrorResult("Search request failed: %s", err)
	}
	req.Header.Set("X-Subscription-Token", apiKey)
	resp, err := searchClient.Do(req)
	if err != nil {
		return ErrorResult("Search request failed: %s", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ErrorResult("Brave API error %d: %s", resp.StatusCode, string(data))
	}
	var parsed struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return ErrorResult("Failed to parse response: %s", err)
	}
	return formatSearchResults(len(parsed.Web.Results), func(i int) (string, string, string) {
		r := parsed.Web.Results[i]
		return r.Title, r.URL, r.Description
	})
}

func searchSerpAPI(query string, maxResults int, apiKey string) Result {
	u := "https://serpapi.com/search?" + url.Values{
		"q": {query}, "api_key": {apiKey}, "num": {fmt.Sprint(maxResults)}, "engine": {"google"},
	}.Encode()
	resp, err := searchClient.Get(u)
	if err != nil {
		return ErrorResult("Search request failed: %s", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ErrorResult("SerpAPI error %d: %s", resp.StatusCode, string(data))
	}
	var parsed struct {
		OrganicResults []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic_results"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return ErrorResult("Failed to parse response: %s", err)
	}
	return formatSearchResults(len(parsed.OrganicResults), func(i int) (string, string, string) {
		r := parsed.OrganicResults[i]
		return r.Title, r.Link, r.Snippet
	})
}

func formatSearchResults(n int, get func(i int) (title, link, snippet string)) Result {
	if n == 0 {
		return OKResult("No results found")
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		title, link, snippet := get(i)
		if title == "" {
			title = "(no title)"
		}
		fmt.Fprintf(&b, "%d. %s\n   %s\n   %s\n\n", i+1, title, link, truncateText(snippet, 200))
	}
	return OKResult(strings.TrimRight(b.String(), "\n"))
}

func truncateText(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
