package memory

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultSearchLimit bounds search and recency results when the caller does
// not pass a limit.
const DefaultSearchLimit = 10

var wordRegex = regexp.MustCompile(`[a-zA-Z0-9][a-zA-Z0-9_\-]*`)

// Search finds entries relevant to a query string: case-insensitive keyword
// match against content and tags, ranked by distinct-keyword match count
// with ties broken by newer timestamp. An empty query falls back to the most
// recent entries; no match yields an empty slice, never an error.
func (s *Store) Search(query string, limit int) []Entry {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	keywords := extractKeywords(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(keywords) == 0 {
		return s.recentLocked(limit)
	}

	type scored struct {
		entry Entry
		score int
	}
	matches := make([]scored, 0)
	for _, e := range s.entries {
		if score := matchScore(e, keywords); score > 0 {
			matches = append(matches, scored{entry: e, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		if !matches[i].entry.Timestamp.Equal(matches[j].entry.Timestamp) {
			return matches[i].entry.Timestamp.After(matches[j].entry.Timestamp)
		}
		return matches[i].entry.ID > matches[j].entry.ID
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]Entry, len(matches))
	for i, m := range matches {
		out[i] = m.entry
	}
	return out
}

// matchScore counts how many distinct keywords appear in the entry's
// content or tags.
func matchScore(e Entry, keywords []string) int {
	content := strings.ToLower(e.Content)
	score := 0
	for _, kw := range keywords {
		if strings.Contains(content, kw) {
			score++
			continue
		}
		for _, tag := range e.Tags {
			if strings.Contains(strings.ToLower(tag), kw) {
				score++
				break
			}
		}
	}
	return score
}

func extractKeywords(query string) []string {
	trimmed := strings.TrimSpace(strings.ToLower(query))
	if trimmed == "" {
		return nil
	}

	words := wordRegex.FindAllString(trimmed, -1)
	if len(words) == 0 {
		// Query has no word characters; match it verbatim.
		return []string{trimmed}
	}

	keywords := make([]string, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		keywords = append(keywords, w)
	}
	return keywords
}
