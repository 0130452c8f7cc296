// Package store provides the session-scoped content store for Orbit:
// feed posts, chat messages and the track catalog.
//
// Content lives in an in-memory SQLite database that is never written to
// disk and disappears when the Store is closed.
package store

import (
	"database/sql"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	// MaxPosts is the feed capacity; the oldest posts are evicted beyond it.
	MaxPosts = 16

	// MaxCaption is the caption bound in runes.
	MaxCaption = 100

	// DefaultAuthor is the handle stamped on posts created in-session.
	DefaultAuthor = "curator"
)

// ImageSource turns a seed into an image locator.
type ImageSource interface {
	Locator(seed string) string
}

// Options configures a Store. Zero values fall back to time.Now, a
// time-seeded random source and DefaultAuthor.
type Options struct {
	Now    func() time.Time
	Rand   *rand.Rand
	Images ImageSource
	Author string
}

// Store is the in-memory content store. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.Mutex // Protects db and rnd

	now    func() time.Time
	rnd    *rand.Rand
	images ImageSource
	author string
}

// Post is a single feed entry. Immutable after creation.
type Post struct {
	ID        string
	Image     string
	Handle    string
	Timestamp time.Time
	Caption   string
}

// Message is a read-only chat message.
type Message struct {
	ID     int
	Handle string
	Text   string
	Time   string
	Unread bool
	Voice  bool
}

// Open creates a Store backed by a private in-memory database.
func Open(opts Options) (*Store, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Images == nil {
		return nil, fmt.Errorf("open store: no image source")
	}
	if opts.Author == "" {
		opts.Author = DefaultAuthor
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Every new connection to ":memory:" is a fresh, empty database, so the
	// pool must never hold more than one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{
		db:     db,
		now:    opts.Now,
		rnd:    opts.Rand,
		images: opts.Images,
		author: opts.Author,
	}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

// createTables creates the required tables if they don't exist.
func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS posts (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		image TEXT NOT NULL,
		handle TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		caption TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY,
		handle TEXT NOT NULL,
		body TEXT NOT NULL,
		time_label TEXT NOT NULL,
		unread INTEGER DEFAULT 0,
		voice INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS tracks (
		pos INTEGER PRIMARY KEY,
		title TEXT NOT NULL
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close releases the database; all content is discarded.
// Thread-safe: acquires lock to prevent closing during in-flight operations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// AddPost synthesizes a post from caption, prepends it to the feed and
// evicts everything beyond the newest MaxPosts. Captions longer than
// MaxCaption runes are truncated.
// Thread-safe: acquires lock.
func (s *Store) AddPost(caption string) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Post{
		ID:        uuid.NewString(),
		Image:     s.images.Locator(fmt.Sprintf("%016x", s.rnd.Uint64())),
		Handle:    s.author,
		Timestamp: s.now(),
		Caption:   ClampCaption(caption),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Post{}, fmt.Errorf("begin add post: %w", err)
	}
	defer tx.Rollback()

	if err := insertPost(tx, p); err != nil {
		return Post{}, err
	}
	if err := truncatePosts(tx); err != nil {
		return Post{}, err
	}
	if err := tx.Commit(); err != nil {
		return Post{}, fmt.Errorf("commit add post: %w", err)
	}
	return p, nil
}

// Posts returns the feed, newest first.
// Thread-safe: acquires lock.
func (s *Store) Posts() ([]Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT id, image, handle, created_at, caption
		FROM posts
		ORDER BY seq DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		var created int64
		if err := rows.Scan(&p.ID, &p.Image, &p.Handle, &created, &p.Caption); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		p.Timestamp = time.Unix(0, created)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

// Messages returns the chat messages in seed order.
// Thread-safe: acquires lock.
func (s *Store) Messages() ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT id, handle, body, time_label, unread, voice
		FROM messages
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		var unread, voice int
		if err := rows.Scan(&m.ID, &m.Handle, &m.Text, &m.Time, &unread, &voice); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Unread = unread != 0
		m.Voice = voice != 0
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return msgs, nil
}

// Tracks returns the track catalog in order.
// Thread-safe: acquires lock.
func (s *Store) Tracks() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracks()
}

// FilterTracks runs FilterTracks over the stored catalog.
// Thread-safe: acquires lock.
func (s *Store) FilterTracks(query string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	catalog, err := s.tracks()
	if err != nil {
		return nil, err
	}
	return FilterTracks(catalog, query), nil
}

// tracks reads the catalog. Caller must hold s.mu.
func (s *Store) tracks() ([]string, error) {
	rows, err := s.db.Query("SELECT title FROM tracks ORDER BY pos")
	if err != nil {
		return nil, fmt.Errorf("query tracks: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracks: %w", err)
	}
	return titles, nil
}

// insertPost writes p as the newest post.
func insertPost(tx *sql.Tx, p Post) error {
	_, err := tx.Exec(`
		INSERT INTO posts (id, image, handle, created_at, caption)
		VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.Image, p.Handle, p.Timestamp.UnixNano(), p.Caption)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// truncatePosts keeps only the newest MaxPosts rows.
func truncatePosts(tx *sql.Tx) error {
	_, err := tx.Exec(`
		DELETE FROM posts
		WHERE seq NOT IN (SELECT seq FROM posts ORDER BY seq DESC LIMIT ?)
	`, MaxPosts)
	if err != nil {
		return fmt.Errorf("truncate posts: %w", err)
	}
	return nil
}

// boolToInt converts a bool to an int for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
