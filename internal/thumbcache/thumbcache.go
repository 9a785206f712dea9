/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package thumbcache stores rendered layout thumbnails in a small SQLite
// database so the layout picker does not re-render them on every start.
// Rows are evicted least-recently-used first once the byte cap is exceeded.
package thumbcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"gocollage/internal/config"
	applog "gocollage/internal/log"
)

const (
	FileName      = "thumbs.sqlite"
	schemaVersion = "1"
)

// Key identifies one thumbnail variant. Style distinguishes renders of the
// same layout with different colors.
type Key struct {
	Layout string
	W, H   int
	Style  string
}

func (k Key) String() string { return fmt.Sprintf("%s@%dx%d/%s", k.Layout, k.W, k.H, k.Style) }

// StyleKey encodes every canvas setting that changes a thumbnail render.
// Width and height are left out; the thumbnail size is part of Key.
func StyleKey(c config.CanvasConfig) string {
	hex := func(v string) string { return strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(v), "#")) }
	return fmt.Sprintf("bg=%s,frame=%s,sel=%s,sp=%g,fw=%g,r=%g",
		hex(c.Background), hex(c.FrameColor), hex(c.SelectionColor), c.Spacing, c.FrameWidth, c.CornerRadius)
}

// Cache is a handle to the thumbnail database. It is safe for concurrent
// use; database/sql serializes access over a single connection.
type Cache struct {
	db       *sql.DB
	path     string
	maxBytes int64
	log      *slog.Logger
	now      func() time.Time
}

// Open creates or opens dir/thumbs.sqlite. maxBytes <= 0 disables eviction.
func Open(dir string, maxBytes int64) (*Cache, error) {
	l := applog.WithOperation(applog.WithComponent("thumbcache"), "open").With(slog.String("dir", dir))
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("cache dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		l.Error("create cache dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	path := filepath.Join(dir, FileName)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("thumbnail cache ready", slog.String("path", path))
	return &Cache{db: db, path: path, maxBytes: maxBytes, log: applog.WithComponent("thumbcache"), now: time.Now}, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS thumbs (
			id          INTEGER PRIMARY KEY,
			layout      TEXT    NOT NULL,
			w           INTEGER NOT NULL,
			h           INTEGER NOT NULL,
			style       TEXT    NOT NULL DEFAULT '',
			data        BLOB    NOT NULL,
			size        INTEGER NOT NULL,
			updated_at  TEXT    NOT NULL,
			last_access INTEGER NOT NULL
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_thumbs_variant ON thumbs(layout, w, h, style);`,
		`CREATE INDEX IF NOT EXISTS idx_thumbs_access ON thumbs(last_access);`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	var v string
	err := db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key='schema_version'`).Scan(&v)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO meta(key,value) VALUES('schema_version',?)`, schemaVersion); err != nil {
			return fmt.Errorf("write schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case v != schemaVersion:
		// thumbnails are disposable; start over instead of migrating
		if _, err := db.ExecContext(ctx, `DELETE FROM thumbs`); err != nil {
			return fmt.Errorf("reset thumbs: %w", err)
		}
		if _, err := db.ExecContext(ctx, `UPDATE meta SET value=? WHERE key='schema_version'`, schemaVersion); err != nil {
			return fmt.Errorf("write schema version: %w", err)
		}
	}
	return nil
}

func (c *Cache) Path() string { return c.path }

func (c *Cache) Close() error { return c.db.Close() }

// stamp is a strictly increasing access counter so that LRU order survives
// several accesses within one clock tick.
func (c *Cache) stamp(ctx context.Context) int64 {
	n := c.now().UnixNano()
	var last sql.NullInt64
	_ = c.db.QueryRowContext(ctx, `SELECT MAX(last_access) FROM thumbs`).Scan(&last)
	if last.Valid && n <= last.Int64 {
		n = last.Int64 + 1
	}
	return n
}

// Get returns the thumbnail for k and marks it as recently used.
// A miss returns nil, nil.
func (c *Cache) Get(ctx context.Context, k Key) ([]byte, error) {
	var blob []byte
	err := c.db.QueryRowContext(ctx, `SELECT data FROM thumbs WHERE layout=? AND w=? AND h=? AND style=?`,
		k.Layout, k.W, k.H, k.Style).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query thumb: %w", err)
	}
	_, _ = c.db.ExecContext(ctx, `UPDATE thumbs SET last_access=? WHERE layout=? AND w=? AND h=? AND style=?`,
		c.stamp(ctx), k.Layout, k.W, k.H, k.Style)
	return blob, nil
}

// Put upserts the thumbnail for k and evicts old rows beyond the byte cap.
func (c *Cache) Put(ctx context.Context, k Key, blob []byte) error {
	if k.Layout == "" || k.W <= 0 || k.H <= 0 {
		return fmt.Errorf("invalid thumbnail key %s", k)
	}
	if len(blob) == 0 {
		return fmt.Errorf("empty thumbnail for %s", k)
	}
	now := c.now().UTC().Format(time.RFC3339)
	_, err := c.db.ExecContext(ctx, `INSERT INTO thumbs(layout,w,h,style,data,size,updated_at,last_access)
		VALUES(?,?,?,?,?,?,?,?)
		ON CONFLICT(layout,w,h,style) DO UPDATE SET data=excluded.data, size=excluded.size, updated_at=excluded.updated_at, last_access=excluded.last_access`,
		k.Layout, k.W, k.H, k.Style, blob, len(blob), now, c.stamp(ctx))
	if err != nil {
		return fmt.Errorf("upsert thumb: %w", err)
	}
	if c.maxBytes > 0 {
		return c.EvictToFit(ctx, c.maxBytes)
	}
	return nil
}

// GetOrCreate returns the cached thumbnail or renders, stores and returns a
// new one. hit reports whether the cache answered. A failure to store the
// new thumbnail is logged, not returned.
func (c *Cache) GetOrCreate(ctx context.Context, k Key, gen func(context.Context) ([]byte, error)) (data []byte, hit bool, err error) {
	if b, err := c.Get(ctx, k); err != nil {
		return nil, false, err
	} else if b != nil {
		return b, true, nil
	}
	if gen == nil {
		return nil, false, nil
	}
	data, err = gen(ctx)
	if err != nil {
		return nil, false, err
	}
	if len(data) == 0 {
		return nil, false, nil
	}
	if err := c.Put(ctx, k, data); err != nil {
		c.log.Warn("cache thumbnail failed", slog.String("key", k.String()), slog.Any("err", err))
	}
	return data, false, nil
}

// EvictToFit deletes least-recently-used rows until the total size is at most capBytes.
func (c *Cache) EvictToFit(ctx context.Context, capBytes int64) error {
	total, err := c.Total(ctx)
	if err != nil {
		return err
	}
	if total <= capBytes {
		return nil
	}
	rows, err := c.db.QueryContext(ctx, `SELECT id, size FROM thumbs ORDER BY last_access ASC`)
	if err != nil {
		return fmt.Errorf("select victims: %w", err)
	}
	var victims []any
	cur := total
	for rows.Next() {
		var id, sz int64
		if err := rows.Scan(&id, &sz); err != nil {
			_ = rows.Close()
			return err
		}
		victims = append(victims, id)
		cur -= sz
		if cur <= capBytes {
			break
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	// the single connection must be released before the delete
	if err := rows.Close(); err != nil {
		return err
	}
	if len(victims) == 0 {
		return nil
	}
	q := `DELETE FROM thumbs WHERE id IN (?` + strings.Repeat(",?", len(victims)-1) + `)`
	if _, err := c.db.ExecContext(ctx, q, victims...); err != nil {
		return fmt.Errorf("evict delete: %w", err)
	}
	c.log.Debug("evicted thumbnails", slog.Int("count", len(victims)), slog.Int64("bytes", total-cur))
	return nil
}

// Total returns the bytes currently stored.
func (c *Cache) Total(ctx context.Context) (int64, error) {
	var total int64
	if err := c.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM thumbs`).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum thumbs size: %w", err)
	}
	return total, nil
}

// Len returns the number of cached thumbnails.
func (c *Cache) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM thumbs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count thumbs: %w", err)
	}
	return n, nil
}
