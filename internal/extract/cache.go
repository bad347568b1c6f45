package extract

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zeebo/blake3"
	"gonum.org/v1/gonum/mat"

	"github.com/KyungWonPark/lsdgrad/internal/io"
)

// Cache stores extracted time series by key
type Cache interface {
	Get(key string) (*mat.Dense, bool)
	Put(key string, m *mat.Dense) error
}

// NopCache never stores anything
type NopCache struct{}

// Get implements Cache
func (NopCache) Get(string) (*mat.Dense, bool) { return nil, false }

// Put implements Cache
func (NopCache) Put(string, *mat.Dense) error { return nil }

// DiskCache keeps up to maxEntries npy files in dir and evicts the least recently used
type DiskCache struct {
	dir        string
	maxEntries int
	mu         sync.Mutex
}

// NewDiskCache opens (creating if needed) a cache directory
func NewDiskCache(dir string, maxEntries int) (*DiskCache, error) {
	if maxEntries < 1 {
		return nil, fmt.Errorf("cache must hold at least one entry, got %d", maxEntries)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}

	return &DiskCache{dir: dir, maxEntries: maxEntries}, nil
}

func (c *DiskCache) path(key string) string {
	return filepath.Join(c.dir, key+".npy")
}

// Get implements Cache; a hit refreshes the entry's recency
func (c *DiskCache) Get(key string) (*mat.Dense, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.path(key)
	if _, err := os.Stat(p); err != nil {
		return nil, false
	}

	m, err := io.NpytoMat64(p)
	if err != nil {
		log.Warn().Err(err).Str("entry", p).Msg("dropping unreadable cache entry")
		os.Remove(p)
		return nil, false
	}

	now := time.Now()
	os.Chtimes(p, now, now)

	return m, true
}

// Put implements Cache
func (c *DiskCache) Put(key string, m *mat.Dense) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.path(key)
	tmp := p + ".tmp"
	if err := io.Mat64toNpy(tmp, m); err != nil {
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to store cache entry: %w", err)
	}

	return c.evict()
}

// Len returns the number of cached entries
func (c *DiskCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	files, _ := filepath.Glob(filepath.Join(c.dir, "*.npy"))
	return len(files)
}

func (c *DiskCache) evict() error {
	files, err := filepath.Glob(filepath.Join(c.dir, "*.npy"))
	if err != nil || len(files) <= c.maxEntries {
		return err
	}

	type entry struct {
		path    string
		modTime time.Time
	}

	entries := make([]entry, 0, len(files))
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			continue
		}
		entries = append(entries, entry{f, info.ModTime()})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].modTime.Before(entries[j].modTime)
	})

	for i := 0; i < len(entries)-c.maxEntries; i++ {
		if err := os.Remove(entries[i].path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to evict cache entry: %w", err)
		}
		log.Debug().Str("entry", entries[i].path).Msg("evicted cache entry")
	}

	return nil
}

// Fingerprint hashes parts into a hex cache key
func Fingerprint(parts ...string) string {
	sum := blake3.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}

// FileKey fingerprints a file by absolute path, size and modification time, plus extra parts
func FileKey(path string, extra ...string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}

	parts := append([]string{
		abs,
		strconv.FormatInt(info.Size(), 10),
		strconv.FormatInt(info.ModTime().UnixNano(), 10),
	}, extra...)

	return Fingerprint(parts...), nil
}
