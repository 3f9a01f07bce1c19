// Package cache stores fetched resource text on disk. Each root address gets
// its own bucket directory; each resolved resource address is one plain text
// file inside it. Presence alone is a cache hit: there is no expiry.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// DirName is the cache directory under the application data root.
const DirName = "TempFiles"

const metaFile = "meta.json"

type ResourceCache struct {
	dir string
}

// BucketMeta records which root address a bucket belongs to, since the
// bucket name is only a hash.
type BucketMeta struct {
	Root      string    `json:"root"`
	CreatedAt time.Time `json:"created_at"`
	StoredAt  time.Time `json:"stored_at"`
}

// Entry describes one bucket for listing.
type Entry struct {
	BucketMeta
	Hash         string
	Files        int
	Size         int64
	LastAccessed time.Time
	Path         string
}

// New creates a cache rooted at <dataDir>/TempFiles.
func New(dataDir string) (*ResourceCache, error) {
	dir := filepath.Join(dataDir, DirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &ResourceCache{dir: dir}, nil
}

func (rc *ResourceCache) Dir() string {
	return rc.dir
}

// Hash returns the deterministic key used for bucket and file names.
func Hash(address string) string {
	sum := sha256.Sum256([]byte(address))
	return hex.EncodeToString(sum[:16])
}

func (rc *ResourceCache) bucketDir(root string) string {
	return filepath.Join(rc.dir, Hash(root))
}

// Path returns the file path a resource is cached under.
func (rc *ResourceCache) Path(root, resolved string) string {
	return filepath.Join(rc.bucketDir(root), Hash(resolved))
}

// TryLoad returns the cached text for resolved, and false on a miss.
func (rc *ResourceCache) TryLoad(root, resolved string) (string, bool, error) {
	data, err := os.ReadFile(rc.Path(root, resolved))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read cached resource: %w", err)
	}
	return string(data), true, nil
}

// Store writes text for resolved into root's bucket, creating the bucket
// (again, after a purge) as needed.
func (rc *ResourceCache) Store(root, resolved, text string) error {
	dir := rc.bucketDir(root)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache bucket: %w", err)
	}
	if err := os.WriteFile(rc.Path(root, resolved), []byte(text), 0o644); err != nil {
		return fmt.Errorf("write cached resource: %w", err)
	}
	return rc.touchMeta(root)
}

func (rc *ResourceCache) touchMeta(root string) error {
	now := time.Now()
	meta, err := rc.ReadMeta(root)
	if err != nil {
		meta = &BucketMeta{Root: root, CreatedAt: now}
	}
	meta.StoredAt = now
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(rc.bucketDir(root), metaFile), data, 0o644)
}

// ReadMeta reads meta.json from root's bucket.
func (rc *ResourceCache) ReadMeta(root string) (*BucketMeta, error) {
	return readMeta(rc.bucketDir(root))
}

func readMeta(bucket string) (*BucketMeta, error) {
	data, err := os.ReadFile(filepath.Join(bucket, metaFile))
	if err != nil {
		return nil, err
	}
	var meta BucketMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// PurgeAll deletes the whole cache tree. It returns "" on success or a
// human-readable error; it never panics or returns an error value.
func (rc *ResourceCache) PurgeAll() string {
	if err := os.RemoveAll(rc.dir); err != nil {
		return "Error:" + err.Error()
	}
	return ""
}

// ListEntries scans the cache directory and returns one entry per bucket,
// most recently used first.
func (rc *ResourceCache) ListEntries() ([]Entry, error) {
	dirs, err := os.ReadDir(rc.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var result []Entry
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		path := filepath.Join(rc.dir, d.Name())
		entry := Entry{Hash: d.Name(), Path: path}
		if meta, err := readMeta(path); err == nil {
			entry.BucketMeta = *meta
		}
		entry.Files, entry.Size, entry.LastAccessed = scanBucket(path)
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LastAccessed.After(result[j].LastAccessed)
	})
	return result, nil
}

// DeleteEntry removes a single bucket by its hash.
func (rc *ResourceCache) DeleteEntry(hash string) error {
	if hash == "" || filepath.Base(hash) != hash {
		return fmt.Errorf("invalid bucket name %q", hash)
	}
	return os.RemoveAll(filepath.Join(rc.dir, hash))
}

// TotalSize returns total cache size in bytes.
func (rc *ResourceCache) TotalSize() (int64, error) {
	var total int64
	err := filepath.Walk(rc.dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip errors
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return 0, err
	}
	return total, nil
}

// scanBucket counts resource files (meta.json excluded) and returns their
// total size and latest modification time.
func scanBucket(path string) (files int, size int64, latest time.Time) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return 0, 0, time.Time{}
	}
	for _, e := range entries {
		info, err := e.Info()
		if err != nil || info.IsDir() {
			continue
		}
		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}
		if e.Name() == metaFile {
			continue
		}
		files++
		size += info.Size()
	}
	return files, size, latest
}
