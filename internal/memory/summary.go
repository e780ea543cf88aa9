package memory

// DefaultSummaryEntries caps Summary.Recent when the caller does not pass a
// limit.
const DefaultSummaryEntries = 5

// Summarize produces a point-in-time overview of the store: totals, per-role
// counts, the newest entries (most recent first, capped at maxEntries) and
// the oldest/newest timestamps. Pure read, deterministic for a given state.
func (s *Store) Summarize(maxEntries int) Summary {
	if maxEntries <= 0 {
		maxEntries = DefaultSummaryEntries
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := Summary{
		TotalEntries:     len(s.entries),
		TotalPreferences: len(s.prefs),
		Recent:           s.recentLocked(maxEntries),
		RoleCounts:       make(map[string]int),
	}
	for _, e := range s.entries {
		sum.RoleCounts[e.Role]++
	}
	if len(s.entries) > 0 {
		sum.Oldest = s.entries[0].Timestamp
		sum.Newest = s.entries[len(s.entries)-1].Timestamp
	}
	return sum
}
