package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const readingWordsPerMinute = 200

type AnalyzeTextInput struct {
	Text string `json:"text" jsonschema_description:"The text to analyze."`
}

func analyzeTextTool() ToolDefinition {
	return ToolDefinition{
		Name:        "analyze_text",
		Description: "Count characters, words, sentences and paragraphs in a text and estimate its reading time.",
		InputSchema: GenerateSchema[AnalyzeTextInput](),
		Run: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in AnalyzeTextInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", err
			}
			if strings.TrimSpace(in.Text) == "" {
				return "", errors.New("no text provided")
			}
			stats := analyzeText(in.Text)
			return stats.String(), nil
		},
	}
}

type textStats struct {
	Chars          int
	CharsNoSpaces  int
	Words          int
	Sentences      int
	Paragraphs     int
	AvgWordLen     float64
	ReadingMinutes float64
}

func analyzeText(text string) textStats {
	var s textStats
	s.Chars = len([]rune(text))
	for _, r := range text {
		if !unicode.IsSpace(r) {
			s.CharsNoSpaces++
		}
	}

	words := strings.Fields(text)
	s.Words = len(words)
	var letters int
	for _, w := range words {
		letters += len([]rune(strings.Trim(w, ".,!?;:\"'")))
	}
	if s.Words > 0 {
		s.AvgWordLen = float64(letters) / float64(s.Words)
	}

	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			s.Sentences++
		}
	}
	if s.Sentences == 0 && s.Words > 0 {
		s.Sentences = 1
	}

	for _, p := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if strings.TrimSpace(p) != "" {
			s.Paragraphs++
		}
	}

	s.ReadingMinutes = float64(s.Words) / readingWordsPerMinute
	return s
}

func (s textStats) String() string {
	var b strings.Builder
	b.WriteString("Text analysis:\n")
	fmt.Fprintf(&b, "- Characters: %d (%d without spaces)\n", s.Chars, s.CharsNoSpaces)
	fmt.Fprintf(&b, "- Words: %d\n", s.Words)
	fmt.Fprintf(&b, "- Sentences: %d\n", s.Sentences)
	fmt.Fprintf(&b, "- Paragraphs: %d\n", s.Paragraphs)
	fmt.Fprintf(&b, "- Average word length: %.1f\n", s.AvgWordLen)
	fmt.Fprintf(&b, "- Estimated reading time: %.1f min", s.ReadingMinutes)
	return b.String()
}
