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

const openWeatherBaseURL = "https://api.openweathermap.org/data/2.5/weather"

type WeatherInput struct {
	City string `json:"city" jsonschema_description:"City name, optionally with country code, e.g. \"Berlin,DE\"."`
}

func weatherTool(apiKey string, client *http.Client, baseURL string) ToolDefinition {
	return ToolDefinition{
		Name:        "get_weather",
		Description: "Fetch current weather for a city from OpenWeatherMap.",
		InputSchema: GenerateSchema[WeatherInput](),
		Run: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in WeatherInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", err
			}
			if strings.TrimSpace(in.City) == "" {
				return "", errors.New("no city provided")
			}
			if apiKey == "" {
				return "Weather lookups are not configured. Set OPENWEATHER_API_KEY to enable them.", nil
			}
			return fetchWeather(ctx, client, baseURL, apiKey, in.City)
		},
	}
}

func fetchWeather(ctx context.Context, client *http.Client, baseURL, apiKey, city string) (string, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("weather response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("city %q not found", city)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("weather service returned %s", resp.Status)
	}

	doc := gjson.ParseBytes(body)
	name := doc.Get("name").String()
	country := doc.Get("sys.country").String()
	if country != "" {
		name = name + ", " + country
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Weather in %s:\n", name)
	fmt.Fprintf(&b, "- Conditions: %s\n", doc.Get("weather.0.description").String())
	fmt.Fprintf(&b, "- Temperature: %.1f C (feels like %.1f C)\n", doc.Get("main.temp").Float(), doc.Get("main.feels_like").Float())
	fmt.Fprintf(&b, "- Humidity: %d%%\n", doc.Get("main.humidity").Int())
	fmt.Fprintf(&b, "- Wind: %.1f m/s", doc.Get("wind.speed").Float())
	return b.String(), nil
}
