package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/devinlabs/devin/internal/tools"
)

// Router answers messages without an LLM by matching keyword intents and
// dispatching the corresponding tool. It exists so the assistant keeps
// working when no API key is configured.
type Router struct {
	tools *tools.Dispatcher
}

func NewRouter(d *tools.Dispatcher) *Router {
	return &Router{tools: d}
}

var (
	remindRe   = regexp.MustCompile(`(?i)remind me (?:to |about )?(.+?)(?: in (\d+) minutes?)?$`)
	rememberRe = regexp.MustCompile(`(?i)^remember (?:that )?(.+)$`)
	weatherRe  = regexp.MustCompile(`(?i)weather (?:in|for|at) (.+)$`)
	searchRe   = regexp.MustCompile(`(?i)^(?:search for|look up|google) (.+)$`)
	recallRe   = regexp.MustCompile(`(?i)(?:recall|what do you (?:remember|know) about) (.+?)\??$`)
	calcRe     = regexp.MustCompile(`(?i)^(?:calculate|compute|what is|what's) (.+?)\??$`)
	shortenRe  = regexp.MustCompile(`(?i)shorten (?:this url[: ]*|url[: ]*)?(\S+)$`)
	analyzeRe  = regexp.MustCompile(`(?is)^analyze(?: this)?(?: text)?[: ]+(.+)$`)
)

// Route matches the message against known intents and runs the first tool
// that fits. Unmatched messages get the help text.
func (r *Router) Route(ctx context.Context, content string) (string, error) {
	text := strings.TrimSpace(content)
	lower := strings.ToLower(text)

	switch {
	case lower == "help" || lower == "?":
		return r.helpText(), nil

	case strings.Contains(lower, "remind me"):
		return r.remind(ctx, text)

	case rememberRe.MatchString(text):
		m := rememberRe.FindStringSubmatch(text)
		return r.dispatch(ctx, "manage_memory", tools.ManageMemoryInput{Action: "add", Content: m[1]})

	case recallRe.MatchString(text):
		m := recallRe.FindStringSubmatch(text)
		return r.dispatch(ctx, "manage_memory", tools.ManageMemoryInput{Action: "search", Content: m[1]})

	case strings.Contains(lower, "memory summary") || strings.Contains(lower, "summarize memor"):
		return r.dispatch(ctx, "manage_memory", tools.ManageMemoryInput{Action: "summary"})

	case strings.Contains(lower, "preference"):
		return r.dispatch(ctx, "manage_memory", tools.ManageMemoryInput{Action: "preferences"})

	case weatherRe.MatchString(text):
		m := weatherRe.FindStringSubmatch(text)
		return r.dispatch(ctx, "get_weather", tools.WeatherInput{City: strings.TrimRight(m[1], "?.! ")})

	case searchRe.MatchString(text):
		m := searchRe.FindStringSubmatch(text)
		return r.dispatch(ctx, "search_web", tools.SearchWebInput{Query: m[1]})

	case strings.Contains(lower, "time") && !strings.Contains(lower, "times"):
		return r.dispatch(ctx, "current_time", tools.CurrentTimeInput{})

	case calcRe.MatchString(text) && looksArithmetic(calcRe.FindStringSubmatch(text)[1]):
		m := calcRe.FindStringSubmatch(text)
		return r.dispatch(ctx, "calculate", tools.CalculateInput{Expression: m[1]})

	case strings.Contains(lower, "password"):
		return r.dispatch(ctx, "generate_password", tools.GeneratePasswordInput{})

	case shortenRe.MatchString(text):
		m := shortenRe.FindStringSubmatch(text)
		return r.dispatch(ctx, "shorten_url", tools.ShortenURLInput{URL: m[1]})

	case strings.Contains(lower, "system info") || strings.Contains(lower, "system status"):
		return r.dispatch(ctx, "system_info", tools.SystemInfoInput{})

	case analyzeRe.MatchString(text):
		m := analyzeRe.FindStringSubmatch(text)
		return r.dispatch(ctx, "analyze_text", tools.AnalyzeTextInput{Text: m[1]})

	default:
		return r.helpText(), nil
	}
}

func (r *Router) remind(ctx context.Context, text string) (string, error) {
	m := remindRe.FindStringSubmatch(text)
	if m == nil {
		return "Try: \"remind me to stretch in 10 minutes\".", nil
	}
	in := tools.RemindInput{Text: strings.TrimSpace(m[1])}
	if m[2] != "" {
		minutes, err := strconv.Atoi(m[2])
		if err == nil {
			in.Minutes = minutes
		}
	}
	return r.dispatch(ctx, "remind", in)
}

func (r *Router) dispatch(ctx context.Context, name string, input any) (string, error) {
	raw, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("encode %s input: %w", name, err)
	}
	return r.tools.Dispatch(ctx, name, raw)
}

// looksArithmetic filters "what is ..." questions down to ones the
// calculator can actually answer.
func looksArithmetic(s string) bool {
	if strings.ContainsAny(s, "+-*/%^") {
		return true
	}
	for _, fn := range []string{"sqrt", "pow", "sin", "cos", "tan", "abs", "round"} {
		if strings.Contains(strings.ToLower(s), fn) {
			return true
		}
	}
	return false
}

func (r *Router) helpText() string {
	return strings.TrimSpace(`I can help with:
- remember <fact> / recall <topic> / memory summary / preferences
- remind me to <task> in <N> minutes
- weather in <city>
- search for <query>
- calculate <expression>
- what time is it
- generate a password
- shorten url <url>
- analyze: <text>
- system info`)
}
