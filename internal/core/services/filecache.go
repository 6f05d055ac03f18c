package services

import (
	"fmt"
	"os"
)

// FileCache is a read-through, in-memory cache of file contents keyed
// by path. It is owned by a single pipeline run and never invalidated
// within it; create a fresh cache per run rather than sharing one
// across invocations.
//
// Not safe for concurrent use; the pipeline reads files sequentially.
type FileCache struct {
	contents map[string]string
}

// NewFileCache creates an empty cache.
func NewFileCache() *FileCache {
	return &FileCache{contents: make(map[string]string)}
}

// Read returns the file's contents, loading it from disk on first use.
func (c *FileCache) Read(path string) (string, error) {
	if content, ok := c.contents[path]; ok {
		return content, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	content := string(raw)
	c.contents[path] = content
	return content, nil
}

// Len returns the number of cached files.
func (c *FileCache) Len() int {
	return len(c.contents)
}
