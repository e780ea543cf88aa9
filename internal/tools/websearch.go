package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	duckDuckGoBaseURL = "https://api.duckduckgo.com/"
	maxRelatedTopics  = 3
)

type SearchWebInput struct {
	Query string `json:"query" jsonschema_description:"The search query."`
}

func searchWebTool(client *http.Client, baseURL string) ToolDefinition {
	return ToolDefinition{
		Name:        "search_web",
		Description: "Search the web via the DuckDuckGo instant answer API.",
		InputSchema: GenerateSchema[SearchWebInput](),
		Run: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in SearchWebInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", err
			}
			if strings.TrimSpace(in.Query) == "" {
				return "", errors.New("no query provided")
			}
			return searchWeb(ctx, client, baseURL, in.Query)
		},
	}
}

func searchWeb(ctx context.Context, client *http.Client, baseURL, query string) (string, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("no_html", "1")
	q.Set("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search service returned %s", resp.Status)
	}

	doc := gjson.ParseBytes(body)
	if abstract := doc.Get("AbstractText").String(); abstract != "" {
		heading := doc.Get("Heading").String()
		if heading != "" {
			return fmt.Sprintf("%s: %s", heading, abstract), nil
		}
		return abstract, nil
	}

	var lines []string
	doc.Get("RelatedTopics").ForEach(func(_, topic gjson.Result) bool {
		text := topic.Get("Text").String()
		if text != "" {
			lines = append(lines, "- "+text)
		}
		return len(lines) < maxRelatedTopics
	})
	if len(lines) == 0 {
		return fmt.Sprintf("No instant answer found for %q.", query), nil
	}
	return "Related results:\n" + strings.Join(lines, "\n"), nil
}
