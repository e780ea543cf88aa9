package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

type CurrentTimeInput struct {
	Timezone string `json:"timezone,omitempty" jsonschema_description:"IANA timezone name such as \"Europe/Berlin\". Defaults to the local timezone."`
}

func currentTimeTool() ToolDefinition {
	return ToolDefinition{
		Name:        "current_time",
		Description: "Report the current date and time, optionally in a given IANA timezone.",
		InputSchema: GenerateSchema[CurrentTimeInput](),
		Run: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in CurrentTimeInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", err
			}
			loc := time.Local
			if in.Timezone != "" {
				l, err := time.LoadLocation(in.Timezone)
				if err != nil {
					return "", fmt.Errorf("unknown timezone %q", in.Timezone)
				}
				loc = l
			}
			now := time.Now().In(loc)
			return fmt.Sprintf("Current time: %s (%s)", now.Format("Monday, January 2, 2006 at 15:04:05"), now.Format("MST")), nil
		},
	}
}
