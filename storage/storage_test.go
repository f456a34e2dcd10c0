package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/seo-optimizer/tagscope/analyzer"
)

func str(s string) *string { return &s }

func sampleRecord(url string, overall int) Record {
	tags := analyzer.TagRecord{
		Title:          str("Example Domain: a page about examples"),
		OGTags:         map[string]string{"og:type": "website"},
		TwitterTags:    map[string]string{},
		CanonicalURL:   str(url),
		StructuredData: []string{`{"@type":"WebSite"}`},
	}
	result := analyzer.Analyze(url, tags)
	rec := NewRecord(tags, result, time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC))
	rec.OverallScore = overall
	return rec
}

func runStoreSuite(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("SaveAndGet", func(t *testing.T) {
		saved, err := store.Save(ctx, sampleRecord("https://www.example.com/a", 40))
		if err != nil {
			t.Fatalf("Failed to save record: %v", err)
		}
		if saved.ID == 0 {
			t.Fatal("Expected an id to be assigned")
		}

		got, err := store.Get(ctx, saved.ID)
		if err != nil {
			t.Fatalf("Failed to get record: %v", err)
		}
		if got.URL != "https://www.example.com/a" || got.Domain != "example.com" {
			t.Errorf("Unexpected record: %+v", got)
		}
		if got.Title == nil || *got.Title != "Example Domain: a page about examples" {
			t.Errorf("Unexpected title: %v", got.Title)
		}
		if got.MetaDescription != nil {
			t.Errorf("Expected nil description, got %q", *got.MetaDescription)
		}
		if got.OGTags["og:type"] != "website" || len(got.SchemaData) != 1 {
			t.Errorf("Unexpected tags: %+v / %+v", got.OGTags, got.SchemaData)
		}
		if len(got.Recommendations) == 0 || got.Recommendations[0].Category != analyzer.CategoryImprovement {
			t.Errorf("Unexpected recommendations: %+v", got.Recommendations)
		}
		if !got.AnalyzedAt.Equal(time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)) {
			t.Errorf("Unexpected analyzedAt: %s", got.AnalyzedAt)
		}
	})

	t.Run("UpsertKeepsID", func(t *testing.T) {
		first, err := store.Save(ctx, sampleRecord("https://www.example.com/b", 10))
		if err != nil {
			t.Fatalf("Failed to save record: %v", err)
		}
		second, err := store.Save(ctx, sampleRecord("HTTPS://WWW.EXAMPLE.COM/b/", 90))
		if err != nil {
			t.Fatalf("Failed to save record: %v", err)
		}
		if first.ID != second.ID {
			t.Errorf("Expected id %d to be reused, got %d", first.ID, second.ID)
		}

		got, err := store.GetByURL(ctx, "https://www.example.com/b")
		if err != nil {
			t.Fatalf("Failed to get record by URL: %v", err)
		}
		if got.OverallScore != 90 {
			t.Errorf("Expected overwritten score 90, got %d", got.OverallScore)
		}
	})

	t.Run("Recent", func(t *testing.T) {
		for _, u := range []string{"https://c.example.org", "https://d.example.org", "https://e.example.org"} {
			if _, err := store.Save(ctx, sampleRecord(u, 50)); err != nil {
				t.Fatalf("Failed to save %s: %v", u, err)
			}
		}

		recent, err := store.Recent(ctx, 2)
		if err != nil {
			t.Fatalf("Failed to list recent: %v", err)
		}
		if len(recent) != 2 {
			t.Fatalf("Expected 2 records, got %d", len(recent))
		}
		if recent[0].URL != "https://e.example.org" || recent[0].ID < recent[1].ID {
			t.Errorf("Expected newest first, got %s then %s", recent[0].URL, recent[1].URL)
		}

		all, err := store.Recent(ctx, 0)
		if err != nil {
			t.Fatalf("Failed to list recent: %v", err)
		}
		if len(all) != 5 {
			t.Errorf("Expected default limit to return all 5 records, got %d", len(all))
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		if _, err := store.Get(ctx, 9999); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
		if _, err := store.GetByURL(ctx, "https://nowhere.example.net"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analyses.db")
	store, err := NewSQLiteStore(context.Background(), path)
	if err != nil {
		t.Fatalf("Failed to open SQLite store: %v", err)
	}
	defer store.Close()

	runStoreSuite(t, store)

	// Reopening applies no migrations twice and keeps the data.
	store.Close()
	reopened, err := NewSQLiteStore(context.Background(), path)
	if err != nil {
		t.Fatalf("Failed to reopen SQLite store: %v", err)
	}
	defer reopened.Close()

	recent, err := reopened.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Failed to list recent after reopen: %v", err)
	}
	if len(recent) != 5 {
		t.Errorf("Expected 5 records after reopen, got %d", len(recent))
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://Example.com/", "https://example.com"},
		{"https://example.com/Path/", "https://example.com/path"},
		{"https://example.com:443/a", "https://example.com/a"},
		{"http://example.com:8080/a", "http://example.com:8080/a"},
		{"https://example.com/a?Q=1", "https://example.com/a?Q=1"},
		{"https://bücher.example/", "https://xn--bcher-kva.example"},
		{"http://[::1]:8080/x", "http://[::1]:8080/x"},
		{"Not A URL", "not a url"},
	}

	for _, tt := range tests {
		if got := NormalizeURL(tt.in); got != tt.want {
			t.Errorf("NormalizeURL(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestDomain(t *testing.T) {
	tests := map[string]string{
		"https://www.example.co.uk/page": "example.co.uk",
		"https://blog.example.com":       "example.com",
		"http://localhost:8080":          "localhost",
		"::bad":                          "",
	}
	for in, want := range tests {
		if got := Domain(in); got != want {
			t.Errorf("Domain(%q): expected %q, got %q", in, want, got)
		}
	}
}
