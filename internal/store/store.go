// Package store provides local persistence for mosaic.
//
// SQLite holds everything that must survive restart: key-value settings,
// favorite media, favorite subreddits, and folders. Media snapshots are
// stored as JSON - they are immutable copies, never joined against.
//
// # Thread Safety
//
// Store is safe for concurrent use. The underlying sql.DB handles
// connection pooling and serialization. Individual operations are
// atomic; read-modify-write sequences need external synchronization.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/abelbrown/mosaic/internal/logging"
	"github.com/abelbrown/mosaic/internal/media"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// Store handles persistence of settings and saved media.
type Store struct {
	db *sql.DB
}

// Open creates a new SQLite store at the given path. The database is
// created if it doesn't exist and the schema applied automatically.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS favorites (
		source TEXT NOT NULL,
		id TEXT NOT NULL,
		item TEXT NOT NULL,
		added_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (source, id)
	);

	CREATE TABLE IF NOT EXISTS favorite_subreddits (
		name TEXT PRIMARY KEY,
		added_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS folders (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		color TEXT,
		thumbnail TEXT,
		items TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get reads a settings value. ok is false when the key has never been
// set.
func (s *Store) Get(key string) (json.RawMessage, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return json.RawMessage(value), true, nil
}

// Set writes a settings value as JSON.
func (s *Store) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode setting %s: %w", key, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(data), time.Now())
	if err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

// GetInto reads a settings value into out. ok is false on a missing key.
func (s *Store) GetInto(key string, out any) (bool, error) {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("failed to decode setting %s: %w", key, err)
	}
	return true, nil
}

// SaveFavorite upserts a favorite media snapshot.
func (s *Store) SaveFavorite(item media.Item) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to encode favorite: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO favorites (source, id, item) VALUES (?, ?, ?)
		ON CONFLICT(source, id) DO UPDATE SET item = excluded.item
	`, string(item.Source), item.ID, string(data))
	if err != nil {
		return fmt.Errorf("failed to save favorite: %w", err)
	}
	return nil
}

// DeleteFavorite removes a favorite. Missing rows are not an error.
func (s *Store) DeleteFavorite(source media.SourceType, id string) error {
	_, err := s.db.Exec("DELETE FROM favorites WHERE source = ? AND id = ?", string(source), id)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	return nil
}

// Favorites returns all favorite snapshots, newest saved first.
func (s *Store) Favorites() ([]media.Item, error) {
	rows, err := s.db.Query("SELECT item FROM favorites ORDER BY added_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	var items []media.Item
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		var item media.Item
		if err := json.Unmarshal([]byte(data), &item); err != nil {
			// A corrupt row should not hide every other favorite.
			logging.Warn("skipping undecodable favorite row", "error", err)
			continue
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorites: %w", err)
	}
	return items, nil
}

// SaveSubreddit upserts a favorite subreddit.
func (s *Store) SaveSubreddit(name string) error {
	_, err := s.db.Exec(`
		INSERT INTO favorite_subreddits (name) VALUES (?)
		ON CONFLICT(name) DO NOTHING
	`, name)
	if err != nil {
		return fmt.Errorf("failed to save subreddit: %w", err)
	}
	return nil
}

// DeleteSubreddit removes a favorite subreddit.
func (s *Store) DeleteSubreddit(name string) error {
	_, err := s.db.Exec("DELETE FROM favorite_subreddits WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete subreddit: %w", err)
	}
	return nil
}

// Subreddits returns favorite subreddits in the order they were added.
func (s *Store) Subreddits() ([]string, error) {
	rows, err := s.db.Query("SELECT name FROM favorite_subreddits ORDER BY added_at")
	if err != nil {
		return nil, fmt.Errorf("failed to query subreddits: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan subreddit: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subreddits: %w", err)
	}
	return names, nil
}

// SaveFolder upserts a folder, items serialized as one JSON snapshot.
func (s *Store) SaveFolder(f media.Folder) error {
	items, err := json.Marshal(f.Items)
	if err != nil {
		return fmt.Errorf("failed to encode folder items: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO folders (id, name, color, thumbnail, items, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			color = excluded.color,
			thumbnail = excluded.thumbnail,
			items = excluded.items
	`, f.ID, f.Name, f.Color, f.Thumbnail, string(items), f.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save folder: %w", err)
	}
	return nil
}

// DeleteFolder removes a folder.
func (s *Store) DeleteFolder(id string) error {
	_, err := s.db.Exec("DELETE FROM folders WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}
	return nil
}

// Folders returns all folders, oldest first.
func (s *Store) Folders() ([]media.Folder, error) {
	rows, err := s.db.Query("SELECT id, name, color, thumbnail, items, created_at FROM folders ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to query folders: %w", err)
	}
	defer rows.Close()

	var folders []media.Folder
	for rows.Next() {
		var f media.Folder
		var color, thumbnail sql.NullString
		var items string
		if err := rows.Scan(&f.ID, &f.Name, &color, &thumbnail, &items, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan folder: %w", err)
		}
		f.Color = color.String
		f.Thumbnail = thumbnail.String
		if err := json.Unmarshal([]byte(items), &f.Items); err != nil {
			logging.Warn("skipping undecodable folder items", "folder", f.ID, "error", err)
		}
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating folders: %w", err)
	}
	return folders, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
