package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore persists analyses in a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and applies pending
// migrations.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	return &SQLiteStore{db: db}, nil
}

// dsn attaches the connection pragmas so that every pooled connection gets them.
func dsn(path string) string {
	pragmas := []string{
		"journal_mode(WAL)",
		"synchronous(NORMAL)",
		"busy_timeout(5000)",
		"temp_store(MEMORY)",
	}
	values := url.Values{}
	for _, p := range pragmas {
		values.Add("_pragma", p)
	}
	return "file:" + path + "?" + values.Encode()
}

func migrate(ctx context.Context, db *sql.DB) error {
	migrations, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	for _, r := range results {
		log.Printf("Applied migration %s in %s", r.Source.Path, r.Duration)
	}
	return nil
}

const upsertAnalysis = `
INSERT INTO seo_analyses (
	normalized_url, url, domain, title, meta_description, og_tags, twitter_tags,
	canonical_url, robots_tags, schema_data, essential_score, social_score,
	advanced_score, overall_score, recommendations, analyzed_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(normalized_url) DO UPDATE SET
	url = excluded.url,
	domain = excluded.domain,
	title = excluded.title,
	meta_description = excluded.meta_description,
	og_tags = excluded.og_tags,
	twitter_tags = excluded.twitter_tags,
	canonical_url = excluded.canonical_url,
	robots_tags = excluded.robots_tags,
	schema_data = excluded.schema_data,
	essential_score = excluded.essential_score,
	social_score = excluded.social_score,
	advanced_score = excluded.advanced_score,
	overall_score = excluded.overall_score,
	recommendations = excluded.recommendations,
	analyzed_at = excluded.analyzed_at
RETURNING id`

const selectAnalysis = `
SELECT id, url, domain, title, meta_description, og_tags, twitter_tags,
	canonical_url, robots_tags, schema_data, essential_score, social_score,
	advanced_score, overall_score, recommendations, analyzed_at
FROM seo_analyses`

func (s *SQLiteStore) Save(ctx context.Context, rec Record) (Record, error) {
	ogTags, err := marshalJSON(rec.OGTags, "{}")
	if err != nil {
		return Record{}, fmt.Errorf("encode og tags: %w", err)
	}
	twitterTags, err := marshalJSON(rec.TwitterTags, "{}")
	if err != nil {
		return Record{}, fmt.Errorf("encode twitter tags: %w", err)
	}
	schemaData, err := marshalJSON(rec.SchemaData, "[]")
	if err != nil {
		return Record{}, fmt.Errorf("encode schema data: %w", err)
	}
	recommendations, err := marshalJSON(rec.Recommendations, "[]")
	if err != nil {
		return Record{}, fmt.Errorf("encode recommendations: %w", err)
	}

	if rec.AnalyzedAt.IsZero() {
		rec.AnalyzedAt = time.Now().UTC()
	}

	err = s.db.QueryRowContext(ctx, upsertAnalysis,
		NormalizeURL(rec.URL), rec.URL, rec.Domain,
		nullString(rec.Title), nullString(rec.MetaDescription),
		ogTags, twitterTags,
		nullString(rec.CanonicalURL), nullString(rec.Robots),
		schemaData,
		rec.EssentialScore, rec.SocialScore, rec.AdvancedScore, rec.OverallScore,
		recommendations, rec.AnalyzedAt.UnixMilli(),
	).Scan(&rec.ID)
	if err != nil {
		return Record{}, fmt.Errorf("save analysis: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id int64) (Record, error) {
	row := s.db.QueryRowContext(ctx, selectAnalysis+" WHERE id = ?", id)
	return scanRecord(row)
}

func (s *SQLiteStore) GetByURL(ctx context.Context, rawURL string) (Record, error) {
	row := s.db.QueryRowContext(ctx, selectAnalysis+" WHERE normalized_url = ?", NormalizeURL(rawURL))
	return scanRecord(row)
}

func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	rows, err := s.db.QueryContext(ctx, selectAnalysis+" ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query recent analyses: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent analyses: %w", err)
	}
	return records, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec                                       Record
		title, description, canonical, robots     sql.NullString
		ogTags, twitterTags, schemaData, recsJSON string
		analyzedAt                                int64
	)

	err := row.Scan(
		&rec.ID, &rec.URL, &rec.Domain, &title, &description, &ogTags, &twitterTags,
		&canonical, &robots, &schemaData, &rec.EssentialScore, &rec.SocialScore,
		&rec.AdvancedScore, &rec.OverallScore, &recsJSON, &analyzedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("scan analysis: %w", err)
	}

	rec.Title = stringPtr(title)
	rec.MetaDescription = stringPtr(description)
	rec.CanonicalURL = stringPtr(canonical)
	rec.Robots = stringPtr(robots)
	rec.AnalyzedAt = time.UnixMilli(analyzedAt).UTC()

	if err := json.Unmarshal([]byte(ogTags), &rec.OGTags); err != nil {
		return Record{}, fmt.Errorf("decode og tags: %w", err)
	}
	if err := json.Unmarshal([]byte(twitterTags), &rec.TwitterTags); err != nil {
		return Record{}, fmt.Errorf("decode twitter tags: %w", err)
	}
	if err := json.Unmarshal([]byte(schemaData), &rec.SchemaData); err != nil {
		return Record{}, fmt.Errorf("decode schema data: %w", err)
	}
	if err := json.Unmarshal([]byte(recsJSON), &rec.Recommendations); err != nil {
		return Record{}, fmt.Errorf("decode recommendations: %w", err)
	}
	return rec, nil
}

// marshalJSON encodes v, storing empty when v is nil.
func marshalJSON(v any, empty string) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(data) == "null" {
		return empty, nil
	}
	return string(data), nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
