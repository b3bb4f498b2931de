package storage

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func openSeededStore(t *testing.T) *SocialStore {
	t.Helper()
	store, err := OpenSocialStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Seed(context.Background()); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store
}

func TestRunReadOnlyQueryReturnsJSONRows(t *testing.T) {
	store := openSeededStore(t)

	out, err := store.RunReadOnlyQuery(context.Background(), "SELECT username, email FROM users ORDER BY id")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}

	var rows []map[string]any
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("output is not a JSON array: %v\n%s", err, out)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0]["username"] != "alice" || rows[1]["username"] != "bob" {
		t.Errorf("unexpected rows: %v", rows)
	}
}

func TestRunReadOnlyQueryJoinsMedia(t *testing.T) {
	store := openSeededStore(t)

	out, err := store.RunReadOnlyQuery(context.Background(),
		"SELECT p.caption, m.external_resource_url FROM posts p JOIN media m ON p.media_id = m.id WHERE p.user_id = 1")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if !strings.Contains(out, "http://minio:9000/media/posts/lighthouse.jpg") {
		t.Errorf("media url missing from result: %s", out)
	}
}

func TestRunReadOnlyQueryTrailingSemicolonAllowed(t *testing.T) {
	store := openSeededStore(t)

	if _, err := store.RunReadOnlyQuery(context.Background(), "SELECT 1;"); err != nil {
		t.Errorf("trailing semicolon rejected: %v", err)
	}
}

func TestRunReadOnlyQueryRowLimit(t *testing.T) {
	store := openSeededStore(t)

	out, err := store.RunReadOnlyQuery(context.Background(),
		"WITH RECURSIVE cnt(x) AS (SELECT 1 UNION ALL SELECT x+1 FROM cnt WHERE x < 200) SELECT x FROM cnt")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	var rows []map[string]any
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(rows) != maxQueryRows {
		t.Errorf("expected %d rows, got %d", maxQueryRows, len(rows))
	}
}

func TestRunReadOnlyQueryRejectsWrites(t *testing.T) {
	store := openSeededStore(t)

	cases := []string{
		"",
		"DELETE FROM users",
		"INSERT INTO users (id) VALUES (3)",
		"UPDATE users SET username = 'x'",
		"DROP TABLE users",
		"PRAGMA table_info(users)",
		"SELECT 1; DROP TABLE users",
		"SELECT * FROM users WHERE username = 'x'; DELETE FROM users",
	}
	for _, q := range cases {
		if _, err := store.RunReadOnlyQuery(context.Background(), q); err == nil {
			t.Errorf("query %q was not rejected", q)
		}
	}

	// the data is still intact afterwards
	out, err := store.RunReadOnlyQuery(context.Background(), "select count(*) AS n FROM users")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if !strings.Contains(out, `"n":2`) {
		t.Errorf("user rows changed: %s", out)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	store := openSeededStore(t)

	if err := store.Seed(context.Background()); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	out, err := store.RunReadOnlyQuery(context.Background(), "SELECT count(*) AS n FROM posts")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if !strings.Contains(out, `"n":2`) {
		t.Errorf("seed duplicated rows: %s", out)
	}
}
