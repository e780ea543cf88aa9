package memory

import "time"

// Entry roles. Unknown roles are preserved as written; empty defaults to user.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Entry is one recorded conversation turn or fact. Immutable once written;
// insertion order equals chronological order.
type Entry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags,omitempty"`
}

// Preference is a durable key-value user setting, separate from the
// conversation history. A later write to the same key overwrites it.
type Preference struct {
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Summary is a compact overview of the store used for status reporting and
// for feeding back into an LLM context window.
type Summary struct {
	TotalEntries     int
	TotalPreferences int
	Recent           []Entry
	RoleCounts       map[string]int
	Oldest           time.Time
	Newest           time.Time
}

func normalizeRole(role string) string {
	if role == "" {
		return RoleUser
	}
	return role
}
