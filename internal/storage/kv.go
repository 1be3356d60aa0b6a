// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jeranaias/thinkly/internal/config"
)

// =============================================================================
// KEYS
// =============================================================================

// Well-known keys.
const (
	KeyMessages      = "chat_messages"
	KeySelectedModel = "selected_model"
	KeyDarkMode      = "darkMode"
	KeyAuthToken     = "authToken"
)

// SECURITY: Keys become file names; restrict them so they cannot escape DataDir.
var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

func validateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// =============================================================================
// KV INTERFACE
// =============================================================================

// KV is a durable string-keyed byte store.
type KV interface {
	// Get returns the stored value or an error wrapping ErrNotFound.
	Get(key string) ([]byte, error)
	// Set replaces the value for key in one atomic step.
	Set(key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	Close() error
}

// =============================================================================
// ERRORS
// =============================================================================

// StorageError represents a storage-related error.
// It implements the error interface and can be compared using errors.Is.
type StorageError struct {
	Message string
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing storage errors.
func (e *StorageError) Is(target error) bool {
	t, ok := target.(*StorageError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

var (
	// ErrNotFound is returned by Get for keys that were never set or were deleted.
	ErrNotFound = &StorageError{Message: "key not found"}
	// ErrInvalidKey is returned for keys outside [A-Za-z0-9_-]{1,64}.
	ErrInvalidKey = &StorageError{Message: "invalid key"}
	// ErrClosed is returned after Close.
	ErrClosed = &StorageError{Message: "store closed"}
)

// =============================================================================
// BACKEND SELECTION
// =============================================================================

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// SQLiteFileName is the database file created inside DataDir.
const SQLiteFileName = "thinkly.db"

// Open returns the backend selected by cfg.Backend, rooted at cfg.DataDir.
func Open(cfg config.StorageConfig) (KV, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendFile:
		return NewFileKV(cfg.DataDir)
	case BackendSQLite:
		return NewSQLiteKV(filepath.Join(cfg.DataDir, SQLiteFileName))
	case BackendMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
