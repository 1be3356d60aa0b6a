// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/jeranaias/thinkly/internal/util"
)

// fileExt is appended to every key on disk.
const fileExt = ".json"

// =============================================================================
// FILE BACKEND
// =============================================================================

// FileKV stores each key as <dir>/<key>.json.
type FileKV struct {
	dir string

	mu     sync.RWMutex
	closed bool
}

// NewFileKV creates the directory if needed and returns a store rooted there.
func NewFileKV(dir string) (*FileKV, error) {
	if dir == "" {
		return nil, errors.New("storage directory is empty")
	}
	// SECURITY: Conversation history is private; owner-only directory.
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileKV{dir: dir}, nil
}

// Dir returns the directory backing the store.
func (s *FileKV) Dir() string {
	return s.dir
}

func (s *FileKV) path(key string) string {
	return filepath.Join(s.dir, key+fileExt)
}

// Get reads the value for key.
func (s *FileKV) Get(key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("get %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return data, nil
}

// Set atomically replaces the value for key.
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func (s *FileKV) Set(key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if err := util.AtomicWriteFile(s.path(key), value, 0600); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *FileKV) Delete(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close marks the store closed. Files stay on disk.
func (s *FileKV) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// =============================================================================
// CHANGE NOTIFICATION
// =============================================================================

// Watch calls fn with the key name whenever a key file is written, replaced
// or removed, including by other processes sharing the directory. It blocks
// until ctx is done and returns nil, or returns a watcher error.
func (s *FileKV) Watch(ctx context.Context, fn func(key string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", s.dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if key, ok := keyFromPath(event.Name); ok {
				fn(key)
			}

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", s.dir, werr)
		}
	}
}

// keyFromPath maps a file event back to its key, skipping temp files.
func keyFromPath(path string) (string, bool) {
	name := filepath.Base(path)
	if util.IsTempFile(name) || !strings.HasSuffix(name, fileExt) {
		return "", false
	}
	key := strings.TrimSuffix(name, fileExt)
	if validateKey(key) != nil {
		return "", false
	}
	return key, true
}
