package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSearchWebAbstract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") != "json" {
			t.Errorf("format = %q, want json", r.URL.Query().Get("format"))
		}
		w.Write([]byte(`{"Heading": "Go", "AbstractText": "Go is a programming language."}`))
	}))
	defer srv.Close()

	out, err := searchWeb(context.Background(), srv.Client(), srv.URL, "golang")
	if err != nil {
		t.Fatalf("searchWeb: %v", err)
	}
	if out != "Go: Go is a programming language." {
		t.Errorf("unexpected output %q", out)
	}
}

func TestSearchWebRelatedTopics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"AbstractText": "",
			"RelatedTopics": [
				{"Text": "First topic"},
				{"Text": "Second topic"},
				{"Text": "Third topic"},
				{"Text": "Fourth topic"}
			]
		}`))
	}))
	defer srv.Close()

	out, err := searchWeb(context.Background(), srv.Client(), srv.URL, "something")
	if err != nil {
		t.Fatalf("searchWeb: %v", err)
	}
	if !strings.Contains(out, "First topic") || !strings.Contains(out, "Third topic") {
		t.Errorf("missing topics:\n%s", out)
	}
	if strings.Contains(out, "Fourth topic") {
		t.Errorf("should cap at %d topics:\n%s", maxRelatedTopics, out)
	}
}

func TestSearchWebNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"AbstractText": "", "RelatedTopics": []}`))
	}))
	defer srv.Close()

	out, err := searchWeb(context.Background(), srv.Client(), srv.URL, "gibberish")
	if err != nil {
		t.Fatalf("searchWeb: %v", err)
	}
	if !strings.Contains(out, "No instant answer") {
		t.Errorf("unexpected output %q", out)
	}
}
