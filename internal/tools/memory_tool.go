package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/devinlabs/devin/internal/memory"
)

type ManageMemoryInput struct {
	Action  string `json:"action" jsonschema_description:"One of: add, search, summary, clean, preferences, set, get."`
	Content string `json:"content,omitempty" jsonschema_description:"Content for add, or the query for search."`
	Key     string `json:"key,omitempty" jsonschema_description:"Preference key for set/get."`
	Value   string `json:"value,omitempty" jsonschema_description:"Preference value for set."`
	Limit   int    `json:"limit,omitempty" jsonschema_description:"Maximum results for search (default 10)."`
	Days    int    `json:"days,omitempty" jsonschema_description:"Age cutoff in days for clean (default 30)."`
}

const defaultCleanDays = 30

// manageMemoryTool exposes the memory store as a callable tool. All
// user-facing formatting happens here; the store itself only returns data.
func manageMemoryTool(store *memory.Store) ToolDefinition {
	return ToolDefinition{
		Name:        "manage_memory",
		Description: "Manage personal memories and preferences: add entries, search them, summarize, clean old ones, or get/set preference keys.",
		InputSchema: GenerateSchema[ManageMemoryInput](),
		Run: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in ManageMemoryInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", err
			}

			switch strings.ToLower(strings.TrimSpace(in.Action)) {
			case "add":
				if strings.TrimSpace(in.Content) == "" {
					return "", errors.New("manage_memory add: content is required")
				}
				if _, err := store.AddEntry(memory.RoleUser, in.Content); err != nil {
					return "", fmt.Errorf("add memory: %w", err)
				}
				return "Added to memory: " + in.Content, nil

			case "search":
				found := store.Search(in.Content, in.Limit)
				if len(found) == 0 {
					return "No matching memories found.", nil
				}
				var sb strings.Builder
				sb.WriteString("Found memories:\n")
				for _, e := range found {
					sb.WriteString("- ")
					sb.WriteString(e.Content)
					sb.WriteString("\n")
				}
				return strings.TrimSpace(sb.String()), nil

			case "summary":
				return formatSummary(store.Summarize(0)), nil

			case "clean":
				days := in.Days
				if days <= 0 {
					days = defaultCleanDays
				}
				removed, err := store.Prune(time.Duration(days) * 24 * time.Hour)
				if err != nil {
					return "", fmt.Errorf("clean memories: %w", err)
				}
				return fmt.Sprintf("Removed %d memories older than %d days.", removed, days), nil

			case "preferences":
				prefs := store.Preferences()
				if len(prefs) == 0 {
					return "No preferences stored yet.", nil
				}
				keys := make([]string, 0, len(prefs))
				for k := range prefs {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				var sb strings.Builder
				sb.WriteString("Your preferences:\n")
				for _, k := range keys {
					fmt.Fprintf(&sb, "- %s: %s\n", k, prefs[k])
				}
				return strings.TrimSpace(sb.String()), nil

			case "set":
				if strings.TrimSpace(in.Key) == "" {
					return "", errors.New("manage_memory set: key is required")
				}
				if err := store.SetPreference(in.Key, in.Value); err != nil {
					return "", fmt.Errorf("set preference: %w", err)
				}
				return fmt.Sprintf("Preference %q set.", in.Key), nil

			case "get":
				if strings.TrimSpace(in.Key) == "" {
					return "", errors.New("manage_memory get: key is required")
				}
				value, err := store.GetPreference(in.Key)
				if errors.Is(err, memory.ErrNotFound) {
					return fmt.Sprintf("No preference stored for %q.", in.Key), nil
				}
				if err != nil {
					return "", fmt.Errorf("get preference: %w", err)
				}
				return fmt.Sprintf("%s: %s", in.Key, value), nil

			default:
				return "Available actions: add, search, summary, clean, preferences, set, get", nil
			}
		},
	}
}

func formatSummary(sum memory.Summary) string {
	if sum.TotalEntries == 0 && sum.TotalPreferences == 0 {
		return "No memories stored yet."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Total memories: %d\n", sum.TotalEntries)
	fmt.Fprintf(&sb, "Total preferences: %d\n", sum.TotalPreferences)

	roles := make([]string, 0, len(sum.RoleCounts))
	for role := range sum.RoleCounts {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	for _, role := range roles {
		fmt.Fprintf(&sb, "- %s: %d\n", role, sum.RoleCounts[role])
	}

	if !sum.Oldest.IsZero() {
		fmt.Fprintf(&sb, "Oldest memory: %s\n", sum.Oldest.Format("2006-01-02"))
		fmt.Fprintf(&sb, "Newest memory: %s\n", sum.Newest.Format("2006-01-02"))
	}
	if len(sum.Recent) > 0 {
		sb.WriteString("Recent:\n")
		for _, e := range sum.Recent {
			fmt.Fprintf(&sb, "- [%s] %s\n", e.Role, e.Content)
		}
	}
	return strings.TrimSpace(sb.String())
}
