package reminder

import (
	"time"

	"github.com/google/uuid"
)

// Schedule kinds: "at" fires once at a wall-clock instant, "cron" fires on a
// cron expression (with seconds field).
const (
	KindAt   = "at"
	KindCron = "cron"
)

type Schedule struct {
	Kind string `json:"kind"`
	AtMs int64  `json:"atMs,omitempty"`
	Expr string `json:"expr,omitempty"`
}

// Delivery says where a fired reminder should be sent.
type Delivery struct {
	Channel string `json:"channel,omitempty"`
	ChatID  string `json:"chatId,omitempty"`
}

type State struct {
	LastRunAtMs int64  `json:"lastRunAtMs,omitempty"`
	LastStatus  string `json:"lastStatus,omitempty"`
	LastError   string `json:"lastError,omitempty"`
}

type Reminder struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	Schedule    Schedule `json:"schedule"`
	Delivery    Delivery `json:"delivery"`
	Enabled     bool     `json:"enabled"`
	CreatedAtMs int64    `json:"createdAtMs"`
	State       State    `json:"state"`
}

func NewReminder(text string, sched Schedule, delivery Delivery) Reminder {
	return Reminder{
		ID:          uuid.NewString(),
		Text:        text,
		Schedule:    sched,
		Delivery:    delivery,
		Enabled:     true,
		CreatedAtMs: time.Now().UnixMilli(),
	}
}

// At builds a one-shot schedule firing at t.
func At(t time.Time) Schedule {
	return Schedule{Kind: KindAt, AtMs: t.UnixMilli()}
}

// Cron builds a recurring schedule from a cron expression with seconds.
func Cron(expr string) Schedule {
	return Schedule{Kind: KindCron, Expr: expr}
}
