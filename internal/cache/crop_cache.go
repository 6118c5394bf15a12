// Package cache remembers crops that were already written so a rerun of a
// preparation job can skip them.
package cache

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/forest-guardian/treeindex/internal/log"
	"go.uber.org/zap"
)

// Entry ties a record to the crop file it describes. The file size is kept
// so a crop rewritten behind the cache's back is noticed.
type Entry[T any] struct {
	Record    T         `json:"record"`
	Output    string    `json:"output"`
	Size      int64     `json:"size"`
	WrittenAt time.Time `json:"written_at"`
	Checksum  string    `json:"checksum"`
}

type CropCache[T any] interface {
	Key(parts ...any) string
	Lookup(key string) (T, bool)
	Remember(key, output string, rec T) error
	Forget(key string) error
}

// FileCache stores one JSON entry per key under a directory. A hit needs a
// matching checksum and an output file of the recorded size; anything else
// is a miss and the entry is dropped.
type FileCache[T any] struct {
	dir    string
	logTag string
}

func NewFileCache[T any](dir string) *FileCache[T] {
	return &FileCache[T]{dir: dir, logTag: "CropCache:"}
}

func (c *FileCache[T]) Dir() string { return c.dir }

// Key hashes parts in order; "a","b" and "ab" give different keys.
func (c *FileCache[T]) Key(parts ...any) string {
	h := sha1.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%v\x00", p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *FileCache[T]) entryPath(key string) string {
	return filepath.Join(c.dir, key+".json")
}

func (c *FileCache[T]) Lookup(key string) (T, bool) {
	var zero T
	raw, err := os.ReadFile(c.entryPath(key))
	if err != nil {
		return zero, false
	}
	var e Entry[T]
	if err := json.Unmarshal(raw, &e); err != nil {
		log.Warn(c.logTag+"unreadable entry", zap.String("key", key), zap.Error(err))
		c.Forget(key)
		return zero, false
	}
	if e.Checksum != checksum(e) {
		log.Warn(c.logTag+"checksum mismatch", zap.String("key", key), zap.String("output", e.Output))
		c.Forget(key)
		return zero, false
	}
	st, err := os.Stat(e.Output)
	if err != nil || st.Size() != e.Size {
		log.Info(c.logTag+"stale entry", zap.String("key", key), zap.String("output", e.Output))
		c.Forget(key)
		return zero, false
	}
	return e.Record, true
}

// Remember records rec for the crop already written at output.
func (c *FileCache[T]) Remember(key, output string, rec T) error {
	st, err := os.Stat(output)
	if err != nil {
		return fmt.Errorf("failed to stat crop %s: %w", output, err)
	}
	e := Entry[T]{Record: rec, Output: output, Size: st.Size(), WrittenAt: time.Now().UTC()}
	e.Checksum = checksum(e)
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(c.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create cache entry: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.entryPath(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

func (c *FileCache[T]) Forget(key string) error {
	if err := os.Remove(c.entryPath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// checksum covers everything but WrittenAt and the checksum itself.
func checksum[T any](e Entry[T]) string {
	raw, _ := json.Marshal(struct {
		Record T      `json:"record"`
		Output string `json:"output"`
		Size   int64  `json:"size"`
	}{e.Record, e.Output, e.Size})
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
