package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	_ "modernc.org/sqlite"

	errx "github.com/tripgram/server/internal/core/error"
	logx "github.com/tripgram/server/pkg/logger"
)

// SchemaDescription is handed to the retrieval model so it can translate
// natural language into SQL against the social store.
const SchemaDescription = `Available tables:
- users(id, username, email, bio, avatar_url)
- posts(id, user_id, media_id, caption, timestamp)
- media(id, external_resource_url, meta)
- places(id, name, description, latitude, longitude, address, category)
- follows(id, follower_id, following_id, timestamp)
- timeline(id, user_id, post_id, timestamp)
Foreign keys: posts.user_id -> users.id, posts.media_id -> media.id,
timeline.user_id -> users.id, timeline.post_id -> posts.id,
follows.follower_id -> users.id, follows.following_id -> users.id.
media.external_resource_url holds image URLs.`

// maxQueryRows bounds result sets handed back to the model.
const maxQueryRows = 50

var forbiddenSQLPattern = regexp.MustCompile(`(?i)\b(insert|update|delete|drop|alter|create|replace|attach|pragma|vacuum)\b`)

// SocialStore is a read-only view over the application's relational data.
type SocialStore struct {
	db *sql.DB
}

// OpenSocialStore opens the store at the given database/sql DSN.
func OpenSocialStore(dsn string) (*SocialStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open social store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errx.WrapStore(err)
	}
	return &SocialStore{db: db}, nil
}

// NewSocialStore wraps an existing handle; the caller keeps ownership.
func NewSocialStore(db *sql.DB) *SocialStore {
	return &SocialStore{db: db}
}

func (s *SocialStore) Close() error {
	return s.db.Close()
}

// RunReadOnlyQuery executes a single SELECT and returns the rows as a JSON
// array of objects. Anything that is not a plain read is rejected before it
// reaches the database.
func (s *SocialStore) RunReadOnlyQuery(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(query), ";"))
	if query == "" {
		return "", fmt.Errorf("empty query")
	}
	upper := strings.ToUpper(query)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return "", fmt.Errorf("only SELECT queries are allowed")
	}
	if strings.Contains(query, ";") {
		return "", fmt.Errorf("multiple statements are not allowed")
	}
	if forbiddenSQLPattern.MatchString(query) {
		return "", fmt.Errorf("query contains a forbidden statement")
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		logx.Error().Err(err).Str("query", query).Msg("social store query failed")
		return "", errx.WrapStore(err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return "", errx.WrapStore(err)
	}

	var out []map[string]any
	for rows.Next() {
		if len(out) >= maxQueryRows {
			break
		}
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return "", errx.WrapStore(err)
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			if b, ok := values[i].([]byte); ok {
				row[c] = string(b)
			} else {
				row[c] = values[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return "", errx.WrapStore(err)
	}

	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("marshal query result: %w", err)
	}
	return string(b), nil
}

// Seed creates the schema and a small data set. Used by the demo runner
// and tests; production data arrives through migrations owned elsewhere.
func (s *SocialStore) Seed(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			username TEXT NOT NULL,
			email TEXT NOT NULL,
			bio TEXT,
			avatar_url TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS media (
			id INTEGER PRIMARY KEY,
			external_resource_url TEXT,
			meta TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS posts (
			id INTEGER PRIMARY KEY,
			user_id INTEGER REFERENCES users(id),
			media_id INTEGER REFERENCES media(id),
			caption TEXT,
			timestamp TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS places (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			latitude REAL,
			longitude REAL,
			address TEXT,
			category TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS follows (
			id INTEGER PRIMARY KEY,
			follower_id INTEGER REFERENCES users(id),
			following_id INTEGER REFERENCES users(id),
			timestamp TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS timeline (
			id INTEGER PRIMARY KEY,
			user_id INTEGER REFERENCES users(id),
			post_id INTEGER REFERENCES posts(id),
			timestamp TEXT
		)`,
		`INSERT OR IGNORE INTO users (id, username, email, bio, avatar_url) VALUES
			(1, 'alice', 'alice@example.com', 'Chasing sunsets', 'http://minio:9000/media/avatars/alice.png'),
			(2, 'bob', 'bob@example.com', 'Coffee and coastlines', 'http://minio:9000/media/avatars/bob.png')`,
		`INSERT OR IGNORE INTO media (id, external_resource_url, meta) VALUES
			(1, 'http://minio:9000/media/posts/lighthouse.jpg', '{"tags":["coast"]}'),
			(2, 'http://minio:9000/media/posts/market.jpg', '{"tags":["food"]}')`,
		`INSERT OR IGNORE INTO posts (id, user_id, media_id, caption, timestamp) VALUES
			(1, 1, 1, 'Lighthouse at dawn', '2026-08-01T06:30:00Z'),
			(2, 2, 2, 'Morning market finds', '2026-08-02T09:00:00Z')`,
		`INSERT OR IGNORE INTO places (id, name, description, latitude, longitude, address, category) VALUES
			(1, 'Harbor Lighthouse', 'Historic lighthouse with coastal views', 43.07, -70.71, '1 Harbor Rd', 'landmark'),
			(2, 'Old Town Market', 'Street food and local produce', 43.08, -70.76, '12 Market St', 'food')`,
		`INSERT OR IGNORE INTO follows (id, follower_id, following_id, timestamp) VALUES
			(1, 2, 1, '2026-07-15T12:00:00Z')`,
		`INSERT OR IGNORE INTO timeline (id, user_id, post_id, timestamp) VALUES
			(1, 2, 1, '2026-08-01T07:00:00Z')`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errx.WrapStore(err)
		}
	}
	return nil
}
