package tools

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const shortCodeLength = 8

type ShortenURLInput struct {
	URL string `json:"url" jsonschema_description:"The URL to shorten."`
}

func shortenURLTool() ToolDefinition {
	return ToolDefinition{
		Name:        "shorten_url",
		Description: "Produce a short, deterministic code for a URL.",
		InputSchema: GenerateSchema[ShortenURLInput](),
		Run: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in ShortenURLInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", err
			}
			code, err := shortenURL(in.URL)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Short code for %s: %s", in.URL, code), nil
		},
	}
}

// shortenURL derives a stable 8-character code from the URL. The same URL
// always yields the same code.
func shortenURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("no url provided")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid url %q", raw)
	}
	sum := md5.Sum([]byte(raw))
	code := base64.RawURLEncoding.EncodeToString(sum[:])
	return code[:shortCodeLength], nil
}
