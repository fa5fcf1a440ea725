package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/wikirace/internal/wiki"
)

// FileName is the name of the cache database inside the cache directory.
const FileName = "articles.db"

// ArticleCache provides SQLite-based storage for fetched articles.
// It implements wiki.ArticleStore.
//
// Design decision: Entries older than the TTL are treated as missing on
// read but are not deleted there. Deletion happens only through Prune and
// Clear, so a read never needs the write lock.
type ArticleCache struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// ttl is the maximum age of a usable entry. Zero disables expiry.
	ttl time.Duration

	// now returns the current time. Replaced in tests.
	now func() time.Time
}

var _ wiki.ArticleStore = (*ArticleCache)(nil)

// Options configures ArticleCache behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool

	// TTL is the maximum age of a cached article. Zero keeps entries forever.
	TTL time.Duration
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
		TTL:               7 * 24 * time.Hour,
	}
}

// Open opens or creates an ArticleCache in the specified directory.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ArticleCache, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite: mode=rw refuses to create the file, mode=rwc allows it.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cache := &ArticleCache{
		db:     db,
		dbPath: dbPath,
		ttl:    opts.TTL,
		now:    time.Now,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cache.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cache, nil
}

// ErrNotFound is returned by Open when the database file is missing and
// creation was not requested.
var ErrNotFound = errors.New("article cache not found")

// Path returns the database file path.
func (c *ArticleCache) Path() string {
	return c.dbPath
}

// Close closes the database connection.
func (c *ArticleCache) Close() error {
	return c.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (c *ArticleCache) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS articles (
		key TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		markup TEXT NOT NULL,
		links_json TEXT NOT NULL,
		redirects_json TEXT NOT NULL,
		fetched_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_articles_fetched_at ON articles(fetched_at);
	`

	_, err := c.db.ExecContext(context.Background(), schema)
	return err
}

// GetArticle returns the article stored under key. Expired entries are
// reported as missing.
func (c *ArticleCache) GetArticle(ctx context.Context, key string) (*wiki.Article, bool, error) {
	query := `
	SELECT title, markup, links_json, redirects_json, fetched_at
	FROM articles
	WHERE key = ?
	`

	var (
		article       wiki.Article
		linksJSON     string
		redirectsJSON string
		fetchedAt     int64
	)
	err := c.db.QueryRowContext(ctx, query, key).Scan(
		&article.Title,
		&article.Markup,
		&linksJSON,
		&redirectsJSON,
		&fetchedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get article: %w", err)
	}

	if c.expired(fetchedAt) {
		return nil, false, nil
	}

	if err := json.Unmarshal([]byte(linksJSON), &article.Links); err != nil {
		return nil, false, fmt.Errorf("failed to parse links: %w", err)
	}
	if err := json.Unmarshal([]byte(redirectsJSON), &article.Redirects); err != nil {
		return nil, false, fmt.Errorf("failed to parse redirects: %w", err)
	}

	return &article, true, nil
}

// PutArticle inserts or replaces the article stored under key.
func (c *ArticleCache) PutArticle(ctx context.Context, key string, article *wiki.Article) error {
	if article == nil {
		return errors.New("nil article")
	}

	links := article.Links
	if links == nil {
		links = []string{}
	}
	redirects := article.Redirects
	if redirects == nil {
		redirects = []string{}
	}

	linksJSON, err := json.Marshal(links)
	if err != nil {
		return fmt.Errorf("failed to serialize links: %w", err)
	}
	redirectsJSON, err := json.Marshal(redirects)
	if err != nil {
		return fmt.Errorf("failed to serialize redirects: %w", err)
	}

	query := `
	INSERT INTO articles (key, title, markup, links_json, redirects_json, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		title = excluded.title,
		markup = excluded.markup,
		links_json = excluded.links_json,
		redirects_json = excluded.redirects_json,
		fetched_at = excluded.fetched_at
	`

	if _, err := c.db.ExecContext(ctx, query,
		key,
		article.Title,
		article.Markup,
		string(linksJSON),
		string(redirectsJSON),
		c.now().Unix(),
	); err != nil {
		return fmt.Errorf("failed to store article: %w", err)
	}

	return nil
}

// Prune deletes expired entries and returns how many were removed.
// With no TTL configured nothing expires.
func (c *ArticleCache) Prune(ctx context.Context) (int64, error) {
	if c.ttl <= 0 {
		return 0, nil
	}

	cutoff := c.now().Add(-c.ttl).Unix()
	result, err := c.db.ExecContext(ctx, "DELETE FROM articles WHERE fetched_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune articles: %w", err)
	}
	return result.RowsAffected()
}

// Clear deletes every entry and returns how many were removed.
func (c *ArticleCache) Clear(ctx context.Context) (int64, error) {
	result, err := c.db.ExecContext(ctx, "DELETE FROM articles")
	if err != nil {
		return 0, fmt.Errorf("failed to clear articles: %w", err)
	}
	return result.RowsAffected()
}

// Stats summarizes the cache contents.
type Stats struct {
	// Entries is the number of stored rows, expired ones included.
	Entries int64 `json:"entries"`

	// Expired is the number of rows older than the TTL.
	Expired int64 `json:"expired"`

	// MarkupBytes is the total size of stored markup.
	MarkupBytes int64 `json:"markup_bytes"`

	// Oldest and Newest are the fetch times of the oldest and newest rows.
	// Zero when the cache is empty.
	Oldest time.Time `json:"oldest"`
	Newest time.Time `json:"newest"`
}

// Stats returns a summary of the cache contents.
func (c *ArticleCache) Stats(ctx context.Context) (Stats, error) {
	query := `
	SELECT COUNT(*), COALESCE(SUM(LENGTH(markup)), 0),
		COALESCE(MIN(fetched_at), 0), COALESCE(MAX(fetched_at), 0)
	FROM articles
	`

	var (
		stats          Stats
		oldest, newest int64
	)
	if err := c.db.QueryRowContext(ctx, query).Scan(&stats.Entries, &stats.MarkupBytes, &oldest, &newest); err != nil {
		return Stats{}, fmt.Errorf("failed to read cache stats: %w", err)
	}

	if stats.Entries > 0 {
		stats.Oldest = time.Unix(oldest, 0)
		stats.Newest = time.Unix(newest, 0)
	}

	if c.ttl > 0 {
		cutoff := c.now().Add(-c.ttl).Unix()
		if err := c.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM articles WHERE fetched_at < ?", cutoff,
		).Scan(&stats.Expired); err != nil {
			return Stats{}, fmt.Errorf("failed to count expired articles: %w", err)
		}
	}

	return stats, nil
}

// expired reports whether a row fetched at the given unix time is past the TTL.
func (c *ArticleCache) expired(fetchedAt int64) bool {
	if c.ttl <= 0 {
		return false
	}
	return c.now().Sub(time.Unix(fetchedAt, 0)) > c.ttl
}
