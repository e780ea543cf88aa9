// Package memory is the assistant's durable store of conversation entries
// and user preferences.
//
// Persistence model:
//   - One JSON document on disk: {"entries": [...], "preferences": {...}}.
//   - Loaded fully at startup, flushed atomically on every mutation
//     (write temp file, rename).
//   - Missing or corrupt state never blocks startup; unreadable records are
//     discarded on load.
package memory
