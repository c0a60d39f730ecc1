// Package bravesearch provides the web search tool the debating agents use
// to ground their arguments in current sources. It wraps the Brave Search API
// and produces a compact, readable summary of the top results.
//
// When BRAVE_SEARCH_API_KEY is unset the tool degrades gracefully: it returns
// an explanatory summary instead of an error, so the agent can continue the
// debate on its own knowledge.
package bravesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/leofalp/parliament/internal/utils"
	"github.com/leofalp/parliament/providers/tool"
)

const defaultBaseURL = "https://api.search.brave.com/res/v1"

// baseURL is a variable so tests can point the tool at a local server.
var baseURL = defaultBaseURL

// New returns the web search tool, ready to be registered in a catalog.
func New() *tool.Tool[Input, Output] {
	return tool.NewTool[Input, Output](
		"web_search",
		Search,
		tool.WithDescription("Search the web for current information, facts, statistics, and sources to support an argument. Returns a summary of top results with titles, URLs, and descriptions."),
	)
}

// Input holds the query parameters forwarded to the Brave Search API. Query
// is the only required field.
type Input struct {
	Query     string `json:"query" jsonschema:"description=The search query string,required"`
	Count     int    `json:"count,omitempty" jsonschema:"description=Number of results to return (default: 5 max: 20)"`
	Freshness string `json:"freshness,omitempty" jsonschema:"description=Time filter: 'pd' (past day) 'pw' (past week) 'pm' (past month) 'py' (past year)"`
}

// Output holds a summarized view of a search response, shaped for direct use
// by a language model.
type Output struct {
	Query   string         `json:"query" jsonschema:"description=The original search query"`
	Summary string         `json:"summary" jsonschema:"description=Formatted summary of search results"`
	Results []SearchResult `json:"results,omitempty" jsonschema:"description=List of top search results"`
}

// SearchResult holds one web result.
type SearchResult struct {
	Title       string `json:"title" jsonschema:"description=Title of the result"`
	URL         string `json:"url" jsonschema:"description=URL of the result"`
	Description string `json:"description" jsonschema:"description=Description snippet of the result"`
	Age         string `json:"age,omitempty" jsonschema:"description=Age of the content"`
}

// apiResponse mirrors the subset of the Brave Search response this tool
// consumes.
type apiResponse struct {
	Web *struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
			Age         string `json:"age,omitempty"`
		} `json:"results"`
	} `json:"web,omitempty"`
	News *struct {
		Results []struct {
			Title string `json:"title"`
			Age   string `json:"age"`
		} `json:"results"`
	} `json:"news,omitempty"`
}

// Search performs a web search via the Brave Search API and summarizes the
// top results. A missing API key yields an explanatory Output, not an error.
func Search(ctx context.Context, input Input) (Output, error) {
	apiKey := os.Getenv("BRAVE_SEARCH_API_KEY")
	if apiKey == "" {
		return Output{
			Query:   input.Query,
			Summary: "Web search is unavailable: BRAVE_SEARCH_API_KEY is not set. Continue the debate using your own knowledge.",
		}, nil
	}

	response, err := fetchResults(ctx, apiKey, input)
	if err != nil {
		return Output{}, err
	}
	return summarize(input.Query, response), nil
}

func fetchResults(ctx context.Context, apiKey string, input Input) (*apiResponse, error) {
	params := url.Values{}
	params.Add("q", input.Query)

	count := input.Count
	if count <= 0 {
		count = 5
	}
	if count > 20 {
		count = 20
	}
	params.Add("count", fmt.Sprintf("%d", count))
	if input.Freshness != "" {
		params.Add("freshness", input.Freshness)
	}
	params.Add("result_filter", "web,news")

	fullURL := fmt.Sprintf("%s/web/search?%s", baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", apiKey)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer utils.CloseWithLog(resp.Body)

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("unexpected status code %d (failed to read error body: %w)", resp.StatusCode, readErr)
		}
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}
	return &parsed, nil
}

func summarize(query string, response *apiResponse) Output {
	var (
		results      []SearchResult
		summaryParts []string
	)

	if response.Web != nil && len(response.Web.Results) > 0 {
		summaryParts = append(summaryParts, fmt.Sprintf("Found %d web results:", len(response.Web.Results)))
		for i, webResult := range response.Web.Results {
			if i >= 10 {
				break
			}
			desc := cleanHTML(webResult.Description)
			result := SearchResult{
				Title:       webResult.Title,
				URL:         webResult.URL,
				Description: desc,
				Age:         webResult.Age,
			}
			results = append(results, result)
			summaryParts = append(summaryParts, fmt.Sprintf("\n%d. %s\n   URL: %s\n   %s",
				i+1, result.Title, result.URL, utils.TruncateString(desc, 200)))
		}
	}

	if response.News != nil && len(response.News.Results) > 0 {
		summaryParts = append(summaryParts, fmt.Sprintf("\n\nRecent news (%d articles):", len(response.News.Results)))
		for i, news := range response.News.Results {
			if i >= 3 {
				break
			}
			summaryParts = append(summaryParts, fmt.Sprintf("- %s (%s)", news.Title, news.Age))
		}
	}

	summary := strings.Join(summaryParts, "\n")
	if summary == "" {
		summary = fmt.Sprintf("No results found for %q. Try a different query.", query)
	}

	return Output{
		Query:   query,
		Summary: summary,
		Results: results,
	}
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// cleanHTML strips HTML tags and unescapes the entities Brave embeds in
// description snippets.
func cleanHTML(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, "")
	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	)
	return strings.TrimSpace(replacer.Replace(s))
}
