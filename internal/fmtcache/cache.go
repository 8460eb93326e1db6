// Package fmtcache remembers which file contents are already formatted, so
// repeated runs over large trees skip the pipeline for untouched files.
package fmtcache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when Entry format changes
const schemaVersion uint16 = 1

// Key identifies formatted content under a specific set of options.
type Key [32]byte

// NewKey combines the content hash with the options fingerprint.
func NewKey(contentHash, options [32]byte) Key {
	h := sha256.New()
	_, _ = h.Write(contentHash[:])
	_, _ = h.Write(options[:])
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

func (k Key) String() string { return hex.EncodeToString(k[:]) }

// Entry is stored for content that formatting leaves unchanged.
type Entry struct {
	Schema    uint16
	Path      string
	Size      uint64
	CheckedAt int64 // unix seconds
}

// Cache stores entries as msgpack files under dir. Safe for concurrent use.
// A nil *Cache is a valid, always-missing cache.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// Open uses dir as the cache directory, creating it if needed.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// OpenDefault initializes the cache at the standard location for app.
func OpenDefault(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cache: %w", err)
		}
		base = filepath.Join(home, ".cache")
	}
	return Open(filepath.Join(base, app))
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *Cache) pathFor(key Key) string {
	hexKey := key.String()
	// подкаталог по первым двум символам, чтобы не держать всё в одной папке
	return filepath.Join(c.dir, "formatted", hexKey[:2], hexKey+".mp")
}

// MarkFormatted records that content with key needs no changes.
func (c *Cache) MarkFormatted(key Key, path string, size int) error {
	if c == nil {
		return nil
	}
	usize, err := safecast.Conv[uint64](size)
	if err != nil {
		return fmt.Errorf("cache: size: %w", err)
	}
	return c.put(key, &Entry{
		Schema:    schemaVersion,
		Path:      path,
		Size:      usize,
		CheckedAt: time.Now().Unix(),
	})
}

func (c *Cache) put(key Key, entry *Entry) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(entry); err != nil {
		return fmt.Errorf("cache: encode: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	// Атомарная замена
	if err = os.Rename(f.Name(), p); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return nil
}

// Lookup reports whether key is known to be formatted. Entries written by a
// different schema count as misses.
func (c *Cache) Lookup(key Key) (Entry, bool, error) {
	if c == nil {
		return Entry{}, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("cache: %w", err)
	}
	defer f.Close()

	var entry Entry
	if err := msgpack.NewDecoder(f).Decode(&entry); err != nil {
		return Entry{}, false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	if entry.Schema != schemaVersion {
		return Entry{}, false, nil
	}
	return entry, true, nil
}

// DropAll invalidates the cache.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("cache: %w", err)
	}
	if err := os.RemoveAll(old); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return os.MkdirAll(c.dir, 0o755)
}
