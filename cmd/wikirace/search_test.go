package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRankTitles(t *testing.T) {
	t.Parallel()

	got := rankTitles("banana", []string{"Banana bread", "Bananas (film)", "Banana", "Bandana"})

	want := []rankedTitle{
		{Title: "Banana", Distance: 0},
		{Title: "Bandana", Distance: 1},
		{Title: "Banana bread", Distance: 6},
		{Title: "Bananas (film)", Distance: 8},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rankTitles mismatch (-want +got):\n%s", diff)
	}
}

// TestSearchCmd tests the search command against a fake API.
func TestSearchCmd(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("srsearch") == "nothing" {
			_, _ = w.Write([]byte(`{"query":{"search":[]}}`))
			return
		}
		if q.Get("srlimit") != "3" {
			t.Errorf("expected srlimit=3, got %q", q.Get("srlimit"))
		}
		_, _ = w.Write([]byte(`{"query":{"search":[{"ns":0,"title":"Banana bread"},{"ns":0,"title":"Banana"}]}}`))
	}))
	t.Cleanup(server.Close)

	configPath := writeConfig(t, "api_url: "+server.URL+"/w/api.php\n")

	t.Run("ranked results", func(t *testing.T) {
		t.Parallel()

		out, err := execute(t, "--config", configPath, "search", "banana", "--limit", "3")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		first := strings.Index(out, "1. Banana\n")
		second := strings.Index(out, "2. Banana bread")
		if first < 0 || second < 0 {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("no results", func(t *testing.T) {
		t.Parallel()

		out, err := execute(t, "--config", configPath, "search", "nothing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, `No articles found for "nothing"`) {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("invalid limit", func(t *testing.T) {
		t.Parallel()

		if _, err := execute(t, "--config", configPath, "search", "x", "--limit", "0"); err == nil {
			t.Error("expected error for zero limit")
		}
	})

	t.Run("requires a query", func(t *testing.T) {
		t.Parallel()

		if _, err := execute(t, "--config", configPath, "search"); err == nil {
			t.Error("expected error without query")
		}
	})
}
