package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"rustidy/internal/source"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// CacheKey identifies one input under one formatter configuration.
type CacheKey [sha256.Size]byte

// DiskCache помнит входы, которые уже отформатированы, чтобы не разбирать их повторно.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is what is stored per key. The key already covers content and
// config; the payload fields guard against hash collisions and stale schemas.
type DiskPayload struct {
	Schema      uint16
	Fingerprint string
	Size        int
	// CheckedAt is a unix timestamp, informational only.
	CheckedAt int64
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt opens (creating if needed) a cache rooted at dir.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir is the cache root.
func (c *DiskCache) Dir() string { return c.dir }

// KeyFor derives the cache key of a normalized file under fingerprint.
// Line ending flags take part: the same text with CRLF endings is a different input.
func KeyFor(f *source.File, fingerprint string) CacheKey {
	h := sha256.New()
	h.Write([]byte(fingerprint))
	h.Write([]byte{0, byte(f.Flags &^ source.FileVirtual)})
	h.Write(f.Hash[:])
	var k CacheKey
	copy(k[:], h.Sum(nil))
	return k
}

func (c *DiskCache) pathFor(key CacheKey) string {
	hexKey := hex.EncodeToString(key[:])
	// подкаталог по первому байту, чтобы не держать всё в одной директории
	return filepath.Join(c.dir, "fmt", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key CacheKey, payload *DiskPayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		// после успешного Rename временного файла уже нет
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	payload.Schema = diskCacheSchemaVersion
	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the disk cache.
func (c *DiskCache) Get(key CacheKey, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := c.pathFor(key)
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(out); err != nil {
		return false, err
	}
	return true, nil
}

// Known reports whether f is recorded as already formatted under fingerprint.
// Unreadable or stale entries count as unknown.
func (c *DiskCache) Known(f *source.File, fingerprint string) bool {
	var p DiskPayload
	ok, err := c.Get(KeyFor(f, fingerprint), &p)
	if err != nil || !ok {
		return false
	}
	return p.Schema == diskCacheSchemaVersion && p.Fingerprint == fingerprint && p.Size == len(f.Content)
}

// Remember records f as already formatted under fingerprint.
func (c *DiskCache) Remember(f *source.File, fingerprint string) error {
	return c.Put(KeyFor(f, fingerprint), &DiskPayload{
		Fingerprint: fingerprint,
		Size:        len(f.Content),
		CheckedAt:   time.Now().Unix(),
	})
}

// DropAll invalidates the cache.
func (c *DiskCache) DropAll() error {
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
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
