package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/devinlabs/devin/internal/reminder"
)

const defaultRemindMinutes = 5

type RemindInput struct {
	Text    string `json:"text" jsonschema_description:"What to remind about."`
	Minutes int    `json:"minutes,omitempty" jsonschema_description:"Minutes from now for a one-shot reminder. Defaults to 5. Ignored when cron is set."`
	Cron    string `json:"cron,omitempty" jsonschema_description:"Optional cron expression with seconds, e.g. \"0 0 9 * * *\" for daily at 09:00."`
}

func remindTool(svc *reminder.Service, delivery reminder.Delivery) ToolDefinition {
	return ToolDefinition{
		Name:        "remind",
		Description: "Schedule a reminder, either a one-shot N minutes from now or a recurring cron schedule.",
		InputSchema: GenerateSchema[RemindInput](),
		Run: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in RemindInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", err
			}
			if strings.TrimSpace(in.Text) == "" {
				return "", errors.New("no reminder text provided")
			}

			var sched reminder.Schedule
			if in.Cron != "" {
				sched = reminder.Cron(in.Cron)
			} else {
				minutes := in.Minutes
				if minutes <= 0 {
					minutes = defaultRemindMinutes
				}
				sched = reminder.At(time.Now().Add(time.Duration(minutes) * time.Minute))
			}

			if _, err := svc.Add(in.Text, sched, delivery); err != nil {
				return "", fmt.Errorf("schedule reminder: %w", err)
			}
			if sched.Kind == reminder.KindCron {
				return fmt.Sprintf("Recurring reminder set (%s): %s", sched.Expr, in.Text), nil
			}
			at := time.UnixMilli(sched.AtMs)
			return fmt.Sprintf("Reminder set for %s: %s", at.Format("15:04"), in.Text), nil
		},
	}
}
