// Package webfetch provides the source-reading tool: it fetches a web page
// and converts its HTML to Markdown so an agent can quote the actual text of
// a source surfaced by web search.
package webfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/leofalp/parliament/internal/utils"
	"github.com/leofalp/parliament/providers/tool"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second
	// MaxBodySize caps the response body at 10MB.
	MaxBodySize = 10 * 1024 * 1024
	// MaxMarkdownLength caps the converted content handed back to the model.
	MaxMarkdownLength = 8000

	userAgent = "parliament-read-source/1.0"
)

// New returns the source-reading tool, ready to be registered in a catalog.
func New() *tool.Tool[Input, Output] {
	return tool.NewTool[Input, Output](
		"read_source",
		Fetch,
		tool.WithDescription("Fetch a web page and return its content as Markdown. Use this to read an article found via web_search before quoting it. Partial URLs like 'example.com' are normalized to https."),
	)
}

// Input holds the parameters passed to the tool by the language model.
type Input struct {
	URL string `json:"url" jsonschema:"description=The URL of the page to read,required"`

	// TimeoutSeconds overrides the default request timeout.
	TimeoutSeconds int `json:"timeout_seconds,omitempty" jsonschema:"description=Request timeout in seconds (default: 30),minimum=1,maximum=300"`
}

// Output holds the fetched page. URL reflects the final destination after
// redirects; Markdown is truncated to [MaxMarkdownLength] characters.
type Output struct {
	URL      string `json:"url" jsonschema:"description=The final URL after redirects"`
	Markdown string `json:"markdown" jsonschema:"description=The page content converted to Markdown"`
}

// Fetch retrieves the page at input.URL and returns its content as Markdown.
// It follows up to ten redirects, enforces the body size limit, and respects
// context cancellation.
func Fetch(ctx context.Context, input Input) (Output, error) {
	url := strings.TrimSpace(input.URL)
	if url == "" {
		return Output{}, fmt.Errorf("URL cannot be empty")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	timeout := DefaultTimeout
	if input.TimeoutSeconds > 0 {
		timeout = time.Duration(input.TimeoutSeconds) * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctxWithTimeout, http.MethodGet, url, nil)
	if err != nil {
		return Output{}, fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("User-Agent", userAgent)

	client := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects (>10)")
			}
			return nil
		},
	}

	response, err := client.Do(request)
	if err != nil {
		if ctxWithTimeout.Err() != nil {
			return Output{}, fmt.Errorf("request timeout or canceled: %w", err)
		}
		return Output{}, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer utils.CloseWithLog(response.Body)

	if response.StatusCode != http.StatusOK {
		return Output{}, fmt.Errorf("unexpected status code: %d %s", response.StatusCode, response.Status)
	}

	htmlBytes, err := io.ReadAll(io.LimitReader(response.Body, MaxBodySize))
	if err != nil {
		return Output{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(htmlBytes) == MaxBodySize {
		return Output{}, fmt.Errorf("response body exceeds maximum size of %d bytes", MaxBodySize)
	}

	markdown, err := htmltomarkdown.ConvertString(string(htmlBytes))
	if err != nil {
		return Output{}, fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}

	return Output{
		URL:      response.Request.URL.String(),
		Markdown: utils.TruncateString(markdown, MaxMarkdownLength),
	}, nil
}
