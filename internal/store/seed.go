package store

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// SeedHandle authors every seeded post.
const SeedHandle = "null_pointer"

// seedCaption is shared by all seeded posts.
const seedCaption = "The architecture of silence is often louder than the noise of the crowd. We build grids to hide the void."

// seedPostCount and seedImageBase fix the initial batch: images 42..49.
const (
	seedPostCount = 8
	seedImageBase = 42
)

// seedNamespace derives stable post IDs for the seeded batch.
var seedNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("orbit:seed"))

// Catalog is the static track list.
var Catalog = []string{
	"Visions - Grimes",
	"Solitude - M83",
	"Atmosphere - Joy Division",
	"Windowlicker - Aphex Twin",
	"Selected Ambient Works - Autechre",
}

// SeedMessages are the two chat messages shown in Atmosphere.
var SeedMessages = []Message{
	{ID: 1, Handle: "void_walker", Text: "Did you see the light hit the concrete today?", Time: "14:02", Unread: true, Voice: true},
	{ID: 2, Handle: "arch_mask", Text: "The grid is shifting. 16 slots remaining.", Time: "09:15", Unread: false, Voice: false},
}

// SeedPostID returns the deterministic ID of the i-th seeded post.
func SeedPostID(i int) string {
	return uuid.NewSHA1(seedNamespace, []byte(strconv.Itoa(i))).String()
}

// Seed replaces all content with the initial batch: 8 posts, 2 messages
// and the 5-track catalog. Post identities and images are deterministic;
// only timestamps are jittered (up to 24h into the past).
// Thread-safe: acquires lock.
func (s *Store) Seed() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"posts", "messages", "tracks"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	now := s.now()
	posts := make([]Post, seedPostCount)
	for i := range posts {
		jitter := time.Duration(s.rnd.Float64() * float64(24*time.Hour))
		posts[i] = Post{
			ID:        SeedPostID(i),
			Image:     s.images.Locator(strconv.Itoa(i + seedImageBase)),
			Handle:    SeedHandle,
			Timestamp: now.Add(-jitter),
			Caption:   seedCaption,
		}
	}
	// Insert oldest-first so post 0 ends up at the front of the feed.
	for i := len(posts) - 1; i >= 0; i-- {
		if err := insertPost(tx, posts[i]); err != nil {
			return err
		}
	}

	for _, m := range SeedMessages {
		_, err := tx.Exec(`
			INSERT INTO messages (id, handle, body, time_label, unread, voice)
			VALUES (?, ?, ?, ?, ?, ?)
		`, m.ID, m.Handle, m.Text, m.Time, boolToInt(m.Unread), boolToInt(m.Voice))
		if err != nil {
			return fmt.Errorf("insert message %d: %w", m.ID, err)
		}
	}

	for i, title := range Catalog {
		if _, err := tx.Exec("INSERT INTO tracks (pos, title) VALUES (?, ?)", i, title); err != nil {
			return fmt.Errorf("insert track %q: %w", title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}
